package store

import (
	"context"
	"errors"

	"github.com/wolfeidau/tutorcontrol/internal/models"
)

// Sentinel errors shared by all tutor store implementations
var (
	ErrNotFound         = errors.New("not found")
	ErrAlreadyExists    = errors.New("already exists")
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// Store is the complete persistence surface used by the API and journal generator.
type Store interface {
	TeacherStore
	CategoryStore
	GoalStore
	StudentStore
	LessonTypeStore
	TopicStore
	LessonStore
	HomeworkStore
	JournalStore
}

// TeacherStore manages teachers.
type TeacherStore interface {
	CreateTeacher(ctx context.Context, teacher *models.Teacher) error
	GetTeacher(ctx context.Context, id int64) (*models.Teacher, error)
	ListTeachers(ctx context.Context) ([]*models.Teacher, error)
	UpdateTeacher(ctx context.Context, teacher *models.Teacher) error
	// DeleteTeacher cascades to the teacher's students.
	DeleteTeacher(ctx context.Context, id int64) error
}

// CategoryStore manages learning categories. Slugs are unique.
type CategoryStore interface {
	// CreateCategory derives the slug from the name when it is empty.
	// Returns ErrAlreadyExists when the slug is taken.
	CreateCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id int64) (*models.Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]*models.Category, error)
	UpdateCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id int64) error
}

// GoalStore manages learning goals.
type GoalStore interface {
	CreateGoal(ctx context.Context, goal *models.Goal) error
	GetGoal(ctx context.Context, id int64) (*models.Goal, error)
	// ListGoals filters by category when categoryID is non-nil.
	ListGoals(ctx context.Context, categoryID *int64) ([]*models.Goal, error)
	UpdateGoal(ctx context.Context, goal *models.Goal) error
	DeleteGoal(ctx context.Context, id int64) error
}

// ListStudentsOptions specifies filters for listing students
type ListStudentsOptions struct {
	CategoryID *int64
}

// StudentStore manages students. Teacher, goal and category must exist.
type StudentStore interface {
	CreateStudent(ctx context.Context, student *models.Student) error
	GetStudent(ctx context.Context, id int64) (*models.Student, error)
	ListStudents(ctx context.Context, opts ListStudentsOptions) ([]*models.Student, error)
	UpdateStudent(ctx context.Context, student *models.Student) error
	// DeleteStudent cascades to lessons, homework and journal entries.
	DeleteStudent(ctx context.Context, id int64) error
}

// LessonTypeStore manages lesson types.
type LessonTypeStore interface {
	CreateLessonType(ctx context.Context, lessonType *models.LessonType) error
	GetLessonType(ctx context.Context, id int64) (*models.LessonType, error)
	ListLessonTypes(ctx context.Context) ([]*models.LessonType, error)
	DeleteLessonType(ctx context.Context, id int64) error
}

// TopicStore manages topics.
type TopicStore interface {
	CreateTopic(ctx context.Context, topic *models.Topic) error
	GetTopic(ctx context.Context, id int64) (*models.Topic, error)
	// ListTopics filters to topics studied by the student when studentID is non-nil.
	ListTopics(ctx context.Context, studentID *int64) ([]*models.Topic, error)
	DeleteTopic(ctx context.Context, id int64) error
}

// ListLessonsOptions specifies filters for listing lessons
type ListLessonsOptions struct {
	StudentID *int64
	Limit     int // Max results (0 = all)
}

// LessonStore manages lessons. Lists are ordered newest first.
type LessonStore interface {
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	GetLesson(ctx context.Context, id int64) (*models.Lesson, error)
	ListLessons(ctx context.Context, opts ListLessonsOptions) ([]*models.Lesson, error)
	DeleteLesson(ctx context.Context, id int64) error
}

// ListHomeworkOptions specifies filters for listing homework
type ListHomeworkOptions struct {
	LessonID  *int64
	StudentID *int64
	LessonIDs []int64
}

// ListResultsOptions specifies filters for listing homework results
type ListResultsOptions struct {
	HomeworkIDs []int64
	LessonID    *int64
}

// HomeworkStore manages homework and the per-topic results recorded against it.
type HomeworkStore interface {
	// CreateHomework stores the homework and its results in one step,
	// computing each result's percentage.
	CreateHomework(ctx context.Context, homework *models.Homework) error
	GetHomework(ctx context.Context, id int64) (*models.Homework, error)
	ListHomework(ctx context.Context, opts ListHomeworkOptions) ([]*models.Homework, error)
	// ListResults returns results ordered by topic, difficulty, newest first.
	ListResults(ctx context.Context, opts ListResultsOptions) ([]*models.HomeworkResult, error)
}

// JournalStore manages journal entries. Lists are ordered newest first.
type JournalStore interface {
	CreateJournalEntry(ctx context.Context, entry *models.JournalEntry) error
	GetJournalEntry(ctx context.Context, id int64) (*models.JournalEntry, error)
	ListJournalEntries(ctx context.Context, studentID *int64) ([]*models.JournalEntry, error)
}
