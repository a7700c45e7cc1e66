package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/wolfeidau/tutorcontrol/internal/journal"
	"github.com/wolfeidau/tutorcontrol/internal/routes"
	"github.com/wolfeidau/tutorcontrol/internal/store"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

var errInvalid = errors.New("invalid request")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalid, fmt.Sprintf(format, args...))
}

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, errorBody{Detail: detail})
}

// writeError maps sentinel errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, journal.ErrStudentNotFound):
		writeDetail(w, http.StatusNotFound, "Student not found")
	case errors.Is(err, store.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, store.ErrAlreadyExists):
		writeDetail(w, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalidReference), errors.Is(err, errInvalid):
		writeDetail(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, journal.ErrNoLessons):
		writeDetail(w, http.StatusBadRequest, "No lessons found for this student")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		writeDetail(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return invalid("request body is empty")
		}
		return invalid("malformed JSON: %v", err)
	}
	return nil
}

func pathID(r *http.Request) (int64, error) {
	id := routes.ParseIntID(chi.URLParam(r, "id"))
	if id == nil {
		return 0, store.ErrNotFound
	}
	return *id, nil
}

// queryID parses an optional integer filter. A present but non-numeric
// value is rejected rather than silently ignored.
func queryID(r *http.Request, name string) (*int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	id := routes.ParseIntID(raw)
	if id == nil {
		return nil, invalid("%s must be an integer", name)
	}
	return id, nil
}
