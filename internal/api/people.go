package api

import (
	"net/http"
	"strings"

	"github.com/wolfeidau/tutorcontrol/internal/models"
	"github.com/wolfeidau/tutorcontrol/internal/store"
)

func validateTeacher(t *models.Teacher) error {
	t.FullName = strings.TrimSpace(t.FullName)
	t.Subject = strings.TrimSpace(t.Subject)
	if t.FullName == "" {
		return invalid("full_name is required")
	}
	if t.Subject == "" {
		return invalid("subject is required")
	}
	return nil
}

func (h *Handler) listTeachers(w http.ResponseWriter, r *http.Request) {
	teachers, err := h.store.ListTeachers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teachers)
}

func (h *Handler) createTeacher(w http.ResponseWriter, r *http.Request) {
	var teacher models.Teacher
	if err := decode(w, r, &teacher); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateTeacher(&teacher); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.CreateTeacher(r.Context(), &teacher); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, teacher)
}

func (h *Handler) getTeacher(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	teacher, err := h.store.GetTeacher(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teacher)
}

func (h *Handler) updateTeacher(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var teacher models.Teacher
	if err := decode(w, r, &teacher); err != nil {
		writeError(w, r, err)
		return
	}
	teacher.ID = id
	if err := validateTeacher(&teacher); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.UpdateTeacher(r.Context(), &teacher); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, teacher)
}

func (h *Handler) deleteTeacher(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.DeleteTeacher(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateStudent(s *models.Student) error {
	s.FullName = strings.TrimSpace(s.FullName)
	switch {
	case s.FullName == "":
		return invalid("full_name is required")
	case s.Grade < 0:
		return invalid("grade must not be negative")
	case s.GoalID == 0:
		return invalid("learning_goal_id is required")
	case s.CategoryID == 0:
		return invalid("learning_category_id is required")
	case s.TeacherID == 0:
		return invalid("teacher_id is required")
	}
	return nil
}

func (h *Handler) listStudents(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryID(r, "learning_category")
	if err != nil {
		writeError(w, r, err)
		return
	}
	students, err := h.store.ListStudents(r.Context(), store.ListStudentsOptions{CategoryID: categoryID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, students)
}

func (h *Handler) createStudent(w http.ResponseWriter, r *http.Request) {
	var student models.Student
	if err := decode(w, r, &student); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateStudent(&student); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.CreateStudent(r.Context(), &student); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, student)
}

func (h *Handler) getStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	student, err := h.store.GetStudent(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *Handler) updateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var student models.Student
	if err := decode(w, r, &student); err != nil {
		writeError(w, r, err)
		return
	}
	student.ID = id
	if student.Grade == 0 {
		student.Grade = models.DefaultGrade
	}
	if err := validateStudent(&student); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.UpdateStudent(r.Context(), &student); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *Handler) deleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.DeleteStudent(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
