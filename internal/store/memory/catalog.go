package memory

import (
	"context"
	"slices"

	"github.com/wolfeidau/tutorcontrol/internal/models"
	"github.com/wolfeidau/tutorcontrol/internal/store"
)

// CreateCategory stores a category, deriving its slug when empty.
func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	category.EnsureSlug()
	if s.slugTakenLocked(category.Slug, 0) {
		return store.ErrAlreadyExists
	}

	category.ID = s.nextID()
	s.categories[category.ID] = shallow(category)
	return nil
}

// GetCategory retrieves a category by id.
func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.categories[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return shallow(category), nil
}

// GetCategoryBySlug retrieves a category by its unique slug.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, category := range s.categories {
		if category.Slug == slug {
			return shallow(category), nil
		}
	}
	return nil, store.ErrNotFound
}

// ListCategories returns all categories ordered by id.
func (s *Store) ListCategories(ctx context.Context) ([]*models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.categories, func(c *models.Category) int64 { return c.ID }, shallow[models.Category]), nil
}

// UpdateCategory replaces an existing category.
func (s *Store) UpdateCategory(ctx context.Context, category *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[category.ID]; !ok {
		return store.ErrNotFound
	}
	category.EnsureSlug()
	if s.slugTakenLocked(category.Slug, category.ID) {
		return store.ErrAlreadyExists
	}
	s.categories[category.ID] = shallow(category)
	return nil
}

// DeleteCategory removes a category, its students and its goal links.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.categories, id)

	for studentID, student := range s.students {
		if student.CategoryID == id {
			s.deleteStudentLocked(studentID)
		}
	}
	for _, goal := range s.goals {
		goal.CategoryIDs = removeID(goal.CategoryIDs, id)
	}
	return nil
}

func (s *Store) slugTakenLocked(slug string, exceptID int64) bool {
	for _, category := range s.categories {
		if category.Slug == slug && category.ID != exceptID {
			return true
		}
	}
	return false
}

// CreateGoal stores a goal linked to existing categories.
func (s *Store) CreateGoal(ctx context.Context, goal *models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.allExistLocked(goal.CategoryIDs, func(id int64) bool { _, ok := s.categories[id]; return ok }) {
		return store.ErrInvalidReference
	}

	goal.ID = s.nextID()
	s.goals[goal.ID] = cloneGoal(goal)
	return nil
}

// GetGoal retrieves a goal by id.
func (s *Store) GetGoal(ctx context.Context, id int64) (*models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	goal, ok := s.goals[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneGoal(goal), nil
}

// ListGoals returns goals ordered by id, optionally only those in a category.
func (s *Store) ListGoals(ctx context.Context, categoryID *int64) ([]*models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := sortedValues(s.goals, func(g *models.Goal) int64 { return g.ID }, cloneGoal)
	if categoryID == nil {
		return all, nil
	}

	result := []*models.Goal{}
	for _, goal := range all {
		if slices.Contains(goal.CategoryIDs, *categoryID) {
			result = append(result, goal)
		}
	}
	return result, nil
}

// UpdateGoal replaces an existing goal.
func (s *Store) UpdateGoal(ctx context.Context, goal *models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[goal.ID]; !ok {
		return store.ErrNotFound
	}
	if !s.allExistLocked(goal.CategoryIDs, func(id int64) bool { _, ok := s.categories[id]; return ok }) {
		return store.ErrInvalidReference
	}
	s.goals[goal.ID] = cloneGoal(goal)
	return nil
}

// DeleteGoal removes a goal and the students working towards it.
func (s *Store) DeleteGoal(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.goals[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.goals, id)

	for studentID, student := range s.students {
		if student.GoalID == id {
			s.deleteStudentLocked(studentID)
		}
	}
	return nil
}

// CreateLessonType stores a lesson type.
func (s *Store) CreateLessonType(ctx context.Context, lessonType *models.LessonType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lessonType.ID = s.nextID()
	s.lessonTypes[lessonType.ID] = shallow(lessonType)
	return nil
}

// GetLessonType retrieves a lesson type by id.
func (s *Store) GetLessonType(ctx context.Context, id int64) (*models.LessonType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lessonType, ok := s.lessonTypes[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return shallow(lessonType), nil
}

// ListLessonTypes returns all lesson types ordered by id.
func (s *Store) ListLessonTypes(ctx context.Context) ([]*models.LessonType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.lessonTypes, func(l *models.LessonType) int64 { return l.ID }, shallow[models.LessonType]), nil
}

// DeleteLessonType removes a lesson type and the lessons of that type.
func (s *Store) DeleteLessonType(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lessonTypes[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.lessonTypes, id)

	for lessonID, lesson := range s.lessons {
		if lesson.LessonTypeID == id {
			s.deleteLessonLocked(lessonID)
		}
	}
	return nil
}

// CreateTopic stores a topic linked to existing students.
func (s *Store) CreateTopic(ctx context.Context, topic *models.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.allExistLocked(topic.StudentIDs, func(id int64) bool { _, ok := s.students[id]; return ok }) {
		return store.ErrInvalidReference
	}

	topic.ID = s.nextID()
	s.topics[topic.ID] = cloneTopic(topic)
	return nil
}

// GetTopic retrieves a topic by id.
func (s *Store) GetTopic(ctx context.Context, id int64) (*models.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	topic, ok := s.topics[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneTopic(topic), nil
}

// ListTopics returns topics ordered by id, optionally only those a student studies.
func (s *Store) ListTopics(ctx context.Context, studentID *int64) ([]*models.Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := sortedValues(s.topics, func(t *models.Topic) int64 { return t.ID }, cloneTopic)
	if studentID == nil {
		return all, nil
	}

	result := []*models.Topic{}
	for _, topic := range all {
		if slices.Contains(topic.StudentIDs, *studentID) {
			result = append(result, topic)
		}
	}
	return result, nil
}

// DeleteTopic removes a topic along with the lessons and results that reference it.
func (s *Store) DeleteTopic(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.topics[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.topics, id)

	for lessonID, lesson := range s.lessons {
		if lesson.TopicID == id {
			s.deleteLessonLocked(lessonID)
		}
	}
	for _, hw := range s.homework {
		hw.TopicIDs = removeID(hw.TopicIDs, id)
		hw.Results = slices.DeleteFunc(hw.Results, func(r models.HomeworkResult) bool {
			return r.TopicID == id
		})
	}
	return nil
}

func (s *Store) allExistLocked(ids []int64, exists func(int64) bool) bool {
	for _, id := range ids {
		if !exists(id) {
			return false
		}
	}
	return true
}

func cloneGoal(g *models.Goal) *models.Goal {
	clone := *g
	clone.CategoryIDs = slices.Clone(g.CategoryIDs)
	return &clone
}

func cloneTopic(t *models.Topic) *models.Topic {
	clone := *t
	clone.StudentIDs = slices.Clone(t.StudentIDs)
	return &clone
}

func removeID(ids []int64, id int64) []int64 {
	return slices.DeleteFunc(ids, func(v int64) bool { return v == id })
}
