package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/tutorcontrol/internal/models"
	"github.com/wolfeidau/tutorcontrol/internal/routes"
	"github.com/wolfeidau/tutorcontrol/internal/store"
	"github.com/wolfeidau/tutorcontrol/internal/store/memory"
)

type client struct {
	t       *testing.T
	handler http.Handler
}

func newClient(t *testing.T) *client {
	t.Helper()
	return &client{t: t, handler: New(memory.NewStore(), routes.Default()).Routes()}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(c.t, err)
		reader = bytes.NewReader(data)
	}

	r := httptest.NewRequest(method, path, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, r)
	return w
}

func (c *client) create(path string, body any, out any) {
	c.t.Helper()
	w := c.do(http.MethodPost, path, body)
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
	require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), out))
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type seeded struct {
	teacher    models.Teacher
	category   models.Category
	goal       models.Goal
	student    models.Student
	lessonType models.LessonType
	topic      models.Topic
	lesson     models.Lesson
}

func (c *client) seed() seeded {
	var s seeded
	c.create("/teachers", map[string]any{"full_name": "Anna Petrova", "subject": "Math"}, &s.teacher)
	c.create("/learning-categories", map[string]any{"name": "Математика"}, &s.category)
	c.create("/learning-goals", map[string]any{"name": "Exam", "category_ids": []int64{s.category.ID}}, &s.goal)
	c.create("/students", map[string]any{
		"full_name":            "Ivan",
		"learning_goal_id":     s.goal.ID,
		"learning_category_id": s.category.ID,
		"teacher_id":           s.teacher.ID,
	}, &s.student)
	c.create("/lesson-types", map[string]any{"name": "practice"}, &s.lessonType)
	c.create("/topics", map[string]any{"name": "Fractions", "students": []int64{s.student.ID}}, &s.topic)
	c.create("/lessons", map[string]any{
		"student_id":     s.student.ID,
		"lesson_type_id": s.lessonType.ID,
		"topic_id":       s.topic.ID,
		"date":           "2025-02-01T10:00:00Z",
	}, &s.lesson)
	return s
}

func TestAPI_RootAndHealth(t *testing.T) {
	c := newClient(t)

	w := c.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	links := decodeBody[map[string]string](t, w)
	require.Equal(t, "/teachers/", links["teachers"])
	require.Contains(t, links, "journal")

	w = c.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestAPI_Teachers(t *testing.T) {
	c := newClient(t)

	var teacher models.Teacher
	c.create("/teachers", map[string]any{"full_name": "Anna", "subject": "Math"}, &teacher)
	require.NotZero(t, teacher.ID)

	w := c.do(http.MethodGet, "/teachers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeBody[[]models.Teacher](t, w), 1)

	path := "/teachers/" + itoa(teacher.ID)
	w = c.do(http.MethodPut, path, map[string]any{"full_name": "Anna P", "subject": "Physics"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Physics", decodeBody[models.Teacher](t, w).Subject)

	w = c.do(http.MethodPost, "/teachers", map[string]any{"full_name": "  "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), `"detail"`)

	w = c.do(http.MethodPost, "/teachers", "{not json")
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodDelete, path, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = c.do(http.MethodGet, path, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"detail":"Not found."}`, w.Body.String())

	w = c.do(http.MethodGet, "/teachers/abc", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_Categories(t *testing.T) {
	c := newClient(t)
	s := c.seed()

	require.Equal(t, "matematika", s.category.Slug)

	t.Run("lookup by slug", func(t *testing.T) {
		w := c.do(http.MethodGet, "/learning-categories?slug=matematika", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, s.category.ID, decodeBody[models.Category](t, w).ID)

		w = c.do(http.MethodGet, "/learning-categories?slug=missing", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("reserved slugs are rejected", func(t *testing.T) {
		w := c.do(http.MethodPost, "/learning-categories", map[string]any{"name": "Metrics"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, w.Body.String(), "reserved")

		w = c.do(http.MethodPost, "/learning-categories", map[string]any{"name": "Assets", "slug": "api"})
		require.Equal(t, http.StatusBadRequest, w.Code)

		w = c.do(http.MethodPut, "/learning-categories/"+itoa(s.category.ID), map[string]any{"name": "Math", "slug": "assets"})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate slug conflicts", func(t *testing.T) {
		w := c.do(http.MethodPost, "/learning-categories", map[string]any{"name": "Математика"})
		require.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("goals by category", func(t *testing.T) {
		w := c.do(http.MethodGet, "/learning-goals?category="+itoa(s.category.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, decodeBody[[]models.Goal](t, w), 1)

		w = c.do(http.MethodGet, "/learning-goals?category=x", nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAPI_Students(t *testing.T) {
	c := newClient(t)
	s := c.seed()

	require.Equal(t, models.DefaultGrade, s.student.Grade)

	w := c.do(http.MethodGet, "/students?learning_category="+itoa(s.category.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeBody[[]models.Student](t, w), 1)

	w = c.do(http.MethodPost, "/students", map[string]any{
		"full_name":            "Ghost",
		"learning_goal_id":     s.goal.ID,
		"learning_category_id": s.category.ID,
		"teacher_id":           999,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodGet, "/topics?students="+itoa(s.student.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	topics := decodeBody[[]models.Topic](t, w)
	require.Len(t, topics, 1)
	require.Equal(t, []int64{s.student.ID}, topics[0].StudentIDs)
}

// topicless loses every topic while the rest of the data stays reachable.
type topicless struct {
	store.Store
}

func (topicless) GetTopic(context.Context, int64) (*models.Topic, error) {
	return nil, store.ErrNotFound
}

func TestAPI_GenerateJournalMissingTopic(t *testing.T) {
	st := memory.NewStore()
	seeder := &client{t: t, handler: New(st, routes.Default()).Routes()}
	s := seeder.seed()
	w := seeder.do(http.MethodPost, "/homework", map[string]any{
		"lesson_id": s.lesson.ID,
		"results": []map[string]any{
			{"topic_id": s.topic.ID, "difficulty": "EASY", "correct_count": 1, "total_count": 2},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	c := &client{t: t, handler: New(topicless{st}, routes.Default()).Routes()}
	w = c.do(http.MethodPost, "/journal/generate", map[string]any{"student_id": s.student.ID})
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"detail":"Not found."}`, w.Body.String())
}

func TestAPI_HomeworkAndJournal(t *testing.T) {
	c := newClient(t)
	s := c.seed()

	w := c.do(http.MethodPost, "/homework", map[string]any{
		"lesson_id": s.lesson.ID,
		"topic_ids": []int64{s.topic.ID},
		"results": []map[string]any{
			{"topic_id": s.topic.ID, "difficulty": "EASY", "correct_count": 5, "total_count": 5},
			{"topic_id": s.topic.ID, "difficulty": "HARD", "correct_count": 1, "total_count": 4},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	hw := decodeBody[models.Homework](t, w)
	require.Len(t, hw.Results, 2)
	require.InDelta(t, 25.0, hw.Results[1].Percentage, 0.001)

	t.Run("invalid difficulty", func(t *testing.T) {
		w := c.do(http.MethodPost, "/homework", map[string]any{
			"lesson_id": s.lesson.ID,
			"results":   []map[string]any{{"topic_id": s.topic.ID, "difficulty": "easy"}},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("filters", func(t *testing.T) {
		w := c.do(http.MethodGet, "/homework?lesson__student="+itoa(s.student.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, decodeBody[[]models.Homework](t, w), 1)

		w = c.do(http.MethodGet, "/homework/"+itoa(hw.ID)+"/results", nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, decodeBody[[]models.HomeworkResult](t, w), 2)

		w = c.do(http.MethodGet, "/homework-results?homework__lesson="+itoa(s.lesson.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, decodeBody[[]models.HomeworkResult](t, w), 2)

		w = c.do(http.MethodGet, "/homework/999/results", nil)
		require.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("generate journal", func(t *testing.T) {
		w := c.do(http.MethodPost, "/journal/generate", map[string]any{"student_id": s.student.ID})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		entry := decodeBody[models.JournalEntry](t, w)
		require.Equal(t, 1, entry.RecommendedLessons)
		require.Contains(t, entry.WorkingOn, "Fractions (hard level)")

		w = c.do(http.MethodGet, "/journal?student="+itoa(s.student.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		require.Len(t, decodeBody[[]models.JournalEntry](t, w), 1)

		w = c.do(http.MethodGet, "/journal/"+itoa(entry.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("generate errors", func(t *testing.T) {
		w := c.do(http.MethodPost, "/journal/generate", map[string]any{"student_id": 999})
		require.Equal(t, http.StatusNotFound, w.Code)
		require.JSONEq(t, `{"detail":"Student not found"}`, w.Body.String())

		var other models.Student
		c.create("/students", map[string]any{
			"full_name":            "New",
			"learning_goal_id":     s.goal.ID,
			"learning_category_id": s.category.ID,
			"teacher_id":           s.teacher.ID,
		}, &other)
		w = c.do(http.MethodPost, "/journal/generate", map[string]any{"student_id": other.ID})
		require.Equal(t, http.StatusBadRequest, w.Code)
		require.JSONEq(t, `{"detail":"No lessons found for this student"}`, w.Body.String())
	})
}

func TestAPI_Routes(t *testing.T) {
	c := newClient(t)

	w := c.do(http.MethodGet, "/routes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decodeBody[[]routes.ManifestEntry](t, w), 4)

	w = c.do(http.MethodGet, "/routes/resolve?path=/math/42/lessons", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{
		"path": "/math/42/lessons",
		"component": "LessonList",
		"params": {"category": "math", "studentId": "42"},
		"props": {"studentId": 42}
	}`, w.Body.String())

	w = c.do(http.MethodGet, "/routes/resolve?path=/a/b/c/d", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, routes.NotFound, decodeBody[resolvedRoute](t, w).Component)

	w = c.do(http.MethodGet, "/routes/resolve", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
