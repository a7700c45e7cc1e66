// Package api serves the tutor REST resources under /api.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wolfeidau/tutorcontrol/internal/routes"
	"github.com/wolfeidau/tutorcontrol/internal/store"
)

// Router registers routes on a chi router.
type Router interface {
	Register(router chi.Router)
}

var _ Router = (*Handler)(nil)

// Pinger is implemented by stores that can check their backing database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler exposes the store as JSON resources.
type Handler struct {
	store store.Store
	table routes.Table
}

// New creates the API handler. The route table backs the resolve endpoint.
func New(st store.Store, table routes.Table) *Handler {
	return &Handler{store: st, table: table}
}

// Routes returns a router with every resource mounted at its root.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

// Register adds all API endpoints to r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/", h.root)
	r.Get("/health", h.health)

	r.Route("/teachers", func(r chi.Router) {
		r.Get("/", h.listTeachers)
		r.Post("/", h.createTeacher)
		r.Get("/{id}", h.getTeacher)
		r.Put("/{id}", h.updateTeacher)
		r.Delete("/{id}", h.deleteTeacher)
	})

	r.Route("/learning-categories", func(r chi.Router) {
		r.Get("/", h.listCategories)
		r.Post("/", h.createCategory)
		r.Get("/{id}", h.getCategory)
		r.Put("/{id}", h.updateCategory)
		r.Delete("/{id}", h.deleteCategory)
	})

	r.Route("/learning-goals", func(r chi.Router) {
		r.Get("/", h.listGoals)
		r.Post("/", h.createGoal)
		r.Get("/{id}", h.getGoal)
		r.Put("/{id}", h.updateGoal)
		r.Delete("/{id}", h.deleteGoal)
	})

	r.Route("/students", func(r chi.Router) {
		r.Get("/", h.listStudents)
		r.Post("/", h.createStudent)
		r.Get("/{id}", h.getStudent)
		r.Put("/{id}", h.updateStudent)
		r.Delete("/{id}", h.deleteStudent)
	})

	r.Route("/lesson-types", func(r chi.Router) {
		r.Get("/", h.listLessonTypes)
		r.Post("/", h.createLessonType)
		r.Get("/{id}", h.getLessonType)
		r.Delete("/{id}", h.deleteLessonType)
	})

	r.Route("/topics", func(r chi.Router) {
		r.Get("/", h.listTopics)
		r.Post("/", h.createTopic)
		r.Get("/{id}", h.getTopic)
		r.Delete("/{id}", h.deleteTopic)
	})

	r.Route("/lessons", func(r chi.Router) {
		r.Get("/", h.listLessons)
		r.Post("/", h.createLesson)
		r.Get("/{id}", h.getLesson)
		r.Delete("/{id}", h.deleteLesson)
	})

	r.Route("/homework", func(r chi.Router) {
		r.Get("/", h.listHomework)
		r.Post("/", h.createHomework)
		r.Get("/{id}", h.getHomework)
		r.Get("/{id}/results", h.homeworkResults)
	})

	r.Get("/homework-results", h.listResults)

	r.Route("/journal", func(r chi.Router) {
		r.Get("/", h.listJournal)
		r.Post("/generate", h.generateJournal)
		r.Get("/{id}", h.getJournalEntry)
	})

	r.Route("/routes", func(r chi.Router) {
		r.Get("/", h.listRoutes)
		r.Get("/resolve", h.resolveRoute)
	})
}

var resources = []string{
	"teachers",
	"learning-categories",
	"learning-goals",
	"students",
	"lesson-types",
	"topics",
	"lessons",
	"homework",
	"homework-results",
	"journal",
	"routes",
}

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	base := strings.TrimSuffix(r.URL.Path, "/")

	links := make(map[string]string, len(resources))
	for _, name := range resources {
		links[name] = base + "/" + name + "/"
	}
	writeJSON(w, http.StatusOK, links)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.store.(Pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "detail": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
