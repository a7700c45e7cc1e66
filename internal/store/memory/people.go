package memory

import (
	"context"

	"github.com/wolfeidau/tutorcontrol/internal/models"
	"github.com/wolfeidau/tutorcontrol/internal/store"
)

// CreateTeacher stores a new teacher and assigns its id.
func (s *Store) CreateTeacher(ctx context.Context, teacher *models.Teacher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	teacher.ID = s.nextID()
	s.teachers[teacher.ID] = shallow(teacher)
	return nil
}

// GetTeacher retrieves a teacher by id.
func (s *Store) GetTeacher(ctx context.Context, id int64) (*models.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	teacher, ok := s.teachers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return shallow(teacher), nil
}

// ListTeachers returns all teachers ordered by id.
func (s *Store) ListTeachers(ctx context.Context) ([]*models.Teacher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return sortedValues(s.teachers, func(t *models.Teacher) int64 { return t.ID }, shallow[models.Teacher]), nil
}

// UpdateTeacher replaces an existing teacher.
func (s *Store) UpdateTeacher(ctx context.Context, teacher *models.Teacher) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teachers[teacher.ID]; !ok {
		return store.ErrNotFound
	}
	s.teachers[teacher.ID] = shallow(teacher)
	return nil
}

// DeleteTeacher removes a teacher and their students.
func (s *Store) DeleteTeacher(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.teachers[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.teachers, id)

	for studentID, student := range s.students {
		if student.TeacherID == id {
			s.deleteStudentLocked(studentID)
		}
	}
	return nil
}

// CreateStudent stores a new student after checking its references.
func (s *Store) CreateStudent(ctx context.Context, student *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkStudentRefsLocked(student); err != nil {
		return err
	}
	if student.Grade == 0 {
		student.Grade = models.DefaultGrade
	}

	student.ID = s.nextID()
	s.students[student.ID] = shallow(student)
	return nil
}

// GetStudent retrieves a student by id.
func (s *Store) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	student, ok := s.students[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return shallow(student), nil
}

// ListStudents returns students ordered by id, optionally filtered by category.
func (s *Store) ListStudents(ctx context.Context, opts store.ListStudentsOptions) ([]*models.Student, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := sortedValues(s.students, func(st *models.Student) int64 { return st.ID }, shallow[models.Student])
	if opts.CategoryID == nil {
		return all, nil
	}

	result := []*models.Student{}
	for _, student := range all {
		if student.CategoryID == *opts.CategoryID {
			result = append(result, student)
		}
	}
	return result, nil
}

// UpdateStudent replaces an existing student.
func (s *Store) UpdateStudent(ctx context.Context, student *models.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[student.ID]; !ok {
		return store.ErrNotFound
	}
	if err := s.checkStudentRefsLocked(student); err != nil {
		return err
	}
	s.students[student.ID] = shallow(student)
	return nil
}

// DeleteStudent removes a student and everything recorded for them.
func (s *Store) DeleteStudent(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.students[id]; !ok {
		return store.ErrNotFound
	}
	s.deleteStudentLocked(id)
	return nil
}

func (s *Store) checkStudentRefsLocked(student *models.Student) error {
	if _, ok := s.teachers[student.TeacherID]; !ok {
		return store.ErrInvalidReference
	}
	if _, ok := s.goals[student.GoalID]; !ok {
		return store.ErrInvalidReference
	}
	if _, ok := s.categories[student.CategoryID]; !ok {
		return store.ErrInvalidReference
	}
	return nil
}

func (s *Store) deleteStudentLocked(id int64) {
	delete(s.students, id)

	for lessonID, lesson := range s.lessons {
		if lesson.StudentID == id {
			s.deleteLessonLocked(lessonID)
		}
	}
	for entryID, entry := range s.journal {
		if entry.StudentID == id {
			delete(s.journal, entryID)
		}
	}
	for _, topic := range s.topics {
		topic.StudentIDs = removeID(topic.StudentIDs, id)
	}
}
