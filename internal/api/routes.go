package api

import (
	"net/http"

	"github.com/wolfeidau/tutorcontrol/internal/routes"
)

type resolvedRoute struct {
	Path      string        `json:"path"`
	Component string        `json:"component"`
	Params    routes.Params `json:"params"`
	Props     routes.Props  `json:"props"`
}

func (h *Handler) listRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.table.Manifest())
}

// resolveRoute lets the client router ask the server which view a path maps to.
func (h *Handler) resolveRoute(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, r, invalid("path is required"))
		return
	}

	resolved := resolvedRoute{Path: path, Component: routes.NotFound, Params: routes.Params{}}
	if m, ok := h.table.Match(path); ok {
		resolved.Component = m.Component()
		resolved.Params = m.Params
		resolved.Props = m.Props
	}
	writeJSON(w, http.StatusOK, resolved)
}
