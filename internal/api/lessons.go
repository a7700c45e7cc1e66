package api

import (
	"net/http"

	"github.com/wolfeidau/tutorcontrol/internal/models"
	"github.com/wolfeidau/tutorcontrol/internal/store"
)

func validateLesson(l *models.Lesson) error {
	switch {
	case l.StudentID == 0:
		return invalid("student_id is required")
	case l.LessonTypeID == 0:
		return invalid("lesson_type_id is required")
	case l.TopicID == 0:
		return invalid("topic_id is required")
	}
	return nil
}

func (h *Handler) listLessons(w http.ResponseWriter, r *http.Request) {
	studentID, err := queryID(r, "student")
	if err != nil {
		writeError(w, r, err)
		return
	}
	lessons, err := h.store.ListLessons(r.Context(), store.ListLessonsOptions{StudentID: studentID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lessons)
}

func (h *Handler) createLesson(w http.ResponseWriter, r *http.Request) {
	var lesson models.Lesson
	if err := decode(w, r, &lesson); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateLesson(&lesson); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.CreateLesson(r.Context(), &lesson); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lesson)
}

func (h *Handler) getLesson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	lesson, err := h.store.GetLesson(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

func (h *Handler) deleteLesson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.DeleteLesson(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validateHomework(hw *models.Homework) error {
	if hw.LessonID == 0 {
		return invalid("lesson_id is required")
	}
	if hw.TopicIDs == nil {
		hw.TopicIDs = []int64{}
	}
	if hw.Results == nil {
		hw.Results = []models.HomeworkResult{}
	}
	for i, result := range hw.Results {
		switch {
		case result.TopicID == 0:
			return invalid("results[%d].topic_id is required", i)
		case !result.Difficulty.Valid():
			return invalid("results[%d].difficulty must be one of EASY, MEDIUM, HARD", i)
		case result.CorrectCount < 0 || result.TotalCount < 0:
			return invalid("results[%d] counts must not be negative", i)
		case result.CorrectCount > result.TotalCount && result.TotalCount > 0:
			return invalid("results[%d].correct_count exceeds total_count", i)
		}
	}
	return nil
}

// listHomework filters by ?lesson= and ?lesson__student=.
func (h *Handler) listHomework(w http.ResponseWriter, r *http.Request) {
	lessonID, err := queryID(r, "lesson")
	if err != nil {
		writeError(w, r, err)
		return
	}
	studentID, err := queryID(r, "lesson__student")
	if err != nil {
		writeError(w, r, err)
		return
	}
	homework, err := h.store.ListHomework(r.Context(), store.ListHomeworkOptions{LessonID: lessonID, StudentID: studentID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, homework)
}

// createHomework stores the homework together with inline results.
func (h *Handler) createHomework(w http.ResponseWriter, r *http.Request) {
	var hw models.Homework
	if err := decode(w, r, &hw); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validateHomework(&hw); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.store.CreateHomework(r.Context(), &hw); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, hw)
}

func (h *Handler) getHomework(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	hw, err := h.store.GetHomework(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hw)
}

func (h *Handler) homeworkResults(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.store.GetHomework(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	results, err := h.store.ListResults(r.Context(), store.ListResultsOptions{HomeworkIDs: []int64{id}})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// listResults filters by ?homework__lesson=.
func (h *Handler) listResults(w http.ResponseWriter, r *http.Request) {
	lessonID, err := queryID(r, "homework__lesson")
	if err != nil {
		writeError(w, r, err)
		return
	}
	results, err := h.store.ListResults(r.Context(), store.ListResultsOptions{LessonID: lessonID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}
