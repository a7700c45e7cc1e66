package memory

import (
	"cmp"
	"slices"
	"sync"

	"github.com/wolfeidau/tutorcontrol/internal/models"
	"github.com/wolfeidau/tutorcontrol/internal/store"
)

var _ store.Store = (*Store)(nil)

// Store implements store.Store using in-memory maps.
// Data is lost on restart; deletes cascade the same way the postgres schema does.
type Store struct {
	mu sync.RWMutex

	seq int64

	teachers    map[int64]*models.Teacher
	categories  map[int64]*models.Category
	goals       map[int64]*models.Goal
	students    map[int64]*models.Student
	lessonTypes map[int64]*models.LessonType
	topics      map[int64]*models.Topic
	lessons     map[int64]*models.Lesson
	homework    map[int64]*models.Homework
	journal     map[int64]*models.JournalEntry
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		teachers:    make(map[int64]*models.Teacher),
		categories:  make(map[int64]*models.Category),
		goals:       make(map[int64]*models.Goal),
		students:    make(map[int64]*models.Student),
		lessonTypes: make(map[int64]*models.LessonType),
		topics:      make(map[int64]*models.Topic),
		lessons:     make(map[int64]*models.Lesson),
		homework:    make(map[int64]*models.Homework),
		journal:     make(map[int64]*models.JournalEntry),
	}
}

// nextID hands out ids from a single sequence; callers hold the write lock.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// sortedValues returns clones of the map values ordered by id.
func sortedValues[T any](items map[int64]*T, id func(*T) int64, clone func(*T) *T) []*T {
	result := make([]*T, 0, len(items))
	for _, item := range items {
		result = append(result, clone(item))
	}
	slices.SortFunc(result, func(a, b *T) int {
		return cmp.Compare(id(a), id(b))
	})
	return result
}

func shallow[T any](v *T) *T {
	clone := *v
	return &clone
}
