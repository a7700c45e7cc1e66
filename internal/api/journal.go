package api

import (
	"net/http"

	"github.com/wolfeidau/tutorcontrol/internal/journal"
)

type generateRequest struct {
	StudentID    int64 `json:"student_id"`
	LessonsCount int   `json:"lessons_count"`
}

func (h *Handler) listJournal(w http.ResponseWriter, r *http.Request) {
	studentID, err := queryID(r, "student")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := h.store.ListJournalEntries(r.Context(), studentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) getJournalEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.store.GetJournalEntry(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) generateJournal(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.StudentID == 0 {
		writeError(w, r, invalid("student_id is required"))
		return
	}
	if req.LessonsCount < 0 {
		writeError(w, r, invalid("lessons_count must not be negative"))
		return
	}

	entry, err := journal.Generate(r.Context(), h.store, req.StudentID, req.LessonsCount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}
