package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/wolfeidau/tutorcontrol/internal/models"
	"github.com/wolfeidau/tutorcontrol/internal/store"
)

// CreateLesson stores a lesson, stamping the date when unset.
func (s *Store) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[lesson.StudentID]; !ok {
		return store.ErrInvalidReference
	}
	if _, ok := s.lessonTypes[lesson.LessonTypeID]; !ok {
		return store.ErrInvalidReference
	}
	if _, ok := s.topics[lesson.TopicID]; !ok {
		return store.ErrInvalidReference
	}
	if lesson.Date.IsZero() {
		lesson.Date = time.Now().UTC()
	}

	lesson.ID = s.nextID()
	s.lessons[lesson.ID] = cloneLesson(lesson)
	return nil
}

// GetLesson retrieves a lesson by id.
func (s *Store) GetLesson(ctx context.Context, id int64) (*models.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lesson, ok := s.lessons[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneLesson(lesson), nil
}

// ListLessons returns lessons newest first.
func (s *Store) ListLessons(ctx context.Context, opts store.ListLessonsOptions) ([]*models.Lesson, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.Lesson{}
	for _, lesson := range s.lessons {
		if opts.StudentID != nil && lesson.StudentID != *opts.StudentID {
			continue
		}
		result = append(result, cloneLesson(lesson))
	}

	slices.SortFunc(result, func(a, b *models.Lesson) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result, nil
}

// DeleteLesson removes a lesson and its homework.
func (s *Store) DeleteLesson(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lessons[id]; !ok {
		return store.ErrNotFound
	}
	s.deleteLessonLocked(id)
	return nil
}

func (s *Store) deleteLessonLocked(id int64) {
	delete(s.lessons, id)
	for hwID, hw := range s.homework {
		if hw.LessonID == id {
			delete(s.homework, hwID)
		}
	}
}

// CreateHomework stores homework with its results, computing percentages.
func (s *Store) CreateHomework(ctx context.Context, homework *models.Homework) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lessons[homework.LessonID]; !ok {
		return store.ErrInvalidReference
	}
	topicExists := func(id int64) bool { _, ok := s.topics[id]; return ok }
	if !s.allExistLocked(homework.TopicIDs, topicExists) {
		return store.ErrInvalidReference
	}
	for _, result := range homework.Results {
		if !topicExists(result.TopicID) {
			return store.ErrInvalidReference
		}
	}

	now := time.Now().UTC()
	if homework.CreatedAt.IsZero() {
		homework.CreatedAt = now
	}
	homework.ID = s.nextID()

	for i := range homework.Results {
		result := &homework.Results[i]
		result.ID = s.nextID()
		result.HomeworkID = homework.ID
		if result.CreatedAt.IsZero() {
			result.CreatedAt = now
		}
		result.ComputePercentage()
	}

	s.homework[homework.ID] = cloneHomework(homework)
	return nil
}

// GetHomework retrieves homework and its results by id.
func (s *Store) GetHomework(ctx context.Context, id int64) (*models.Homework, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hw, ok := s.homework[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneHomework(hw), nil
}

// ListHomework returns homework ordered by id.
func (s *Store) ListHomework(ctx context.Context, opts store.ListHomeworkOptions) ([]*models.Homework, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.Homework{}
	for _, hw := range sortedValues(s.homework, func(h *models.Homework) int64 { return h.ID }, cloneHomework) {
		if !s.homeworkMatchesLocked(hw, opts) {
			continue
		}
		result = append(result, hw)
	}
	return result, nil
}

func (s *Store) homeworkMatchesLocked(hw *models.Homework, opts store.ListHomeworkOptions) bool {
	if opts.LessonID != nil && hw.LessonID != *opts.LessonID {
		return false
	}
	if opts.LessonIDs != nil && !slices.Contains(opts.LessonIDs, hw.LessonID) {
		return false
	}
	if opts.StudentID != nil {
		lesson, ok := s.lessons[hw.LessonID]
		if !ok || lesson.StudentID != *opts.StudentID {
			return false
		}
	}
	return true
}

// ListResults returns results ordered by topic, difficulty, newest first.
func (s *Store) ListResults(ctx context.Context, opts store.ListResultsOptions) ([]*models.HomeworkResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []*models.HomeworkResult{}
	for _, hw := range s.homework {
		if opts.HomeworkIDs != nil && !slices.Contains(opts.HomeworkIDs, hw.ID) {
			continue
		}
		if opts.LessonID != nil && hw.LessonID != *opts.LessonID {
			continue
		}
		for _, r := range hw.Results {
			clone := r
			result = append(result, &clone)
		}
	}

	slices.SortFunc(result, compareResults)
	return result, nil
}

func compareResults(a, b *models.HomeworkResult) int {
	if c := cmp.Compare(a.TopicID, b.TopicID); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Difficulty, b.Difficulty); c != 0 {
		return c
	}
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(b.ID, a.ID)
}

func cloneLesson(l *models.Lesson) *models.Lesson {
	clone := *l
	if l.Comment != nil {
		comment := *l.Comment
		clone.Comment = &comment
	}
	return &clone
}

func cloneHomework(h *models.Homework) *models.Homework {
	clone := *h
	clone.TopicIDs = slices.Clone(h.TopicIDs)
	clone.Results = slices.Clone(h.Results)
	return &clone
}
