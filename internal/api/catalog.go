package api

import (
	"net/http"
	"strings"

	"github.com/wolfeidau/tutorcontrol/internal/models"
	"github.com/wolfeidau/tutorcontrol/internal/routes"
)

func validateCategory(c *models.Category) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Slug = strings.TrimSpace(c.Slug)
	if c.Name == "" {
		return invalid("name is required")
	}
	c.EnsureSlug()
	if c.Slug == "" {
		return invalid("name %q does not produce a usable slug", c.Name)
	}
	if routes.IsReserved(c.Slug) {
		return invalid("slug %q is reserved", c.Slug)
	}
	return nil
}

// listCategories returns every category, or the single category matching ?slug=.
func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	if slug := r.URL.Query().Get("slug"); slug != "" {
		category, err := h.store.GetCategoryBySlug(r.Context(), slug)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, category)
		return
	}

	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var category models.Category
	if err := decode(w, r, &category); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateCategory(&category); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.CreateCategory(r.Context(), &category); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	category, err := h.store.GetCategory(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var category models.Category
	if err := decode(w, r, &category); err != nil {
		writeError(w, r, err)
		return
	}
	category.ID = id
	if err := validateCategory(&category); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.UpdateCategory(r.Context(), &category); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.DeleteCategory(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateGoal(g *models.Goal) error {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" {
		return invalid("name is required")
	}
	if g.CategoryIDs == nil {
		g.CategoryIDs = []int64{}
	}
	return nil
}

func (h *Handler) listGoals(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryID(r, "category")
	if err != nil {
		writeError(w, r, err)
		return
	}
	goals, err := h.store.ListGoals(r.Context(), categoryID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (h *Handler) createGoal(w http.ResponseWriter, r *http.Request) {
	var goal models.Goal
	if err := decode(w, r, &goal); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateGoal(&goal); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.CreateGoal(r.Context(), &goal); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

func (h *Handler) getGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	goal, err := h.store.GetGoal(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *Handler) updateGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var goal models.Goal
	if err := decode(w, r, &goal); err != nil {
		writeError(w, r, err)
		return
	}
	goal.ID = id
	if err := validateGoal(&goal); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.UpdateGoal(r.Context(), &goal); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (h *Handler) deleteGoal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.DeleteGoal(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listLessonTypes(w http.ResponseWriter, r *http.Request) {
	lessonTypes, err := h.store.ListLessonTypes(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lessonTypes)
}

func (h *Handler) createLessonType(w http.ResponseWriter, r *http.Request) {
	var lessonType models.LessonType
	if err := decode(w, r, &lessonType); err != nil {
		writeError(w, r, err)
		return
	}
	lessonType.Name = strings.TrimSpace(lessonType.Name)
	if lessonType.Name == "" {
		writeError(w, r, invalid("name is required"))
		return
	}
	if err := h.store.CreateLessonType(r.Context(), &lessonType); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lessonType)
}

func (h *Handler) getLessonType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lessonType, err := h.store.GetLessonType(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lessonType)
}

func (h *Handler) deleteLessonType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.DeleteLessonType(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listTopics(w http.ResponseWriter, r *http.Request) {
	studentID, err := queryID(r, "students")
	if err != nil {
		writeError(w, r, err)
		return
	}
	topics, err := h.store.ListTopics(r.Context(), studentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topics)
}

func (h *Handler) createTopic(w http.ResponseWriter, r *http.Request) {
	var topic models.Topic
	if err := decode(w, r, &topic); err != nil {
		writeError(w, r, err)
		return
	}
	topic.Name = strings.TrimSpace(topic.Name)
	if topic.Name == "" {
		writeError(w, r, invalid("name is required"))
		return
	}
	if topic.StudentIDs == nil {
		topic.StudentIDs = []int64{}
	}
	if err := h.store.CreateTopic(r.Context(), &topic); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, topic)
}

func (h *Handler) getTopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	topic, err := h.store.GetTopic(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, topic)
}

func (h *Handler) deleteTopic(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.DeleteTopic(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
