package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/tutorcontrol/internal/models"
	"github.com/wolfeidau/tutorcontrol/internal/store"
)

// CreateTeacher inserts a teacher and assigns its id.
func (s *Store) CreateTeacher(ctx context.Context, teacher *models.Teacher) error {
	query := `INSERT INTO teachers (full_name, subject) VALUES ($1, $2) RETURNING id`

	if err := s.pool.QueryRow(ctx, query, teacher.FullName, teacher.Subject).Scan(&teacher.ID); err != nil {
		return wrap("create teacher", err)
	}

	log.Debug().Int64("teacher_id", teacher.ID).Msg("Created teacher")
	return nil
}

// GetTeacher retrieves a teacher by id.
func (s *Store) GetTeacher(ctx context.Context, id int64) (*models.Teacher, error) {
	query := `SELECT id, full_name, subject FROM teachers WHERE id = $1`

	var t models.Teacher
	if err := s.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.FullName, &t.Subject); err != nil {
		return nil, wrap("get teacher", err)
	}
	return &t, nil
}

// ListTeachers returns all teachers ordered by id.
func (s *Store) ListTeachers(ctx context.Context) ([]*models.Teacher, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, full_name, subject FROM teachers ORDER BY id`)
	if err != nil {
		return nil, wrap("list teachers", err)
	}

	teachers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Teacher, error) {
		var t models.Teacher
		err := row.Scan(&t.ID, &t.FullName, &t.Subject)
		return &t, err
	})
	if err != nil {
		return nil, wrap("scan teachers", err)
	}
	return teachers, nil
}

// UpdateTeacher updates an existing teacher.
func (s *Store) UpdateTeacher(ctx context.Context, teacher *models.Teacher) error {
	query := `UPDATE teachers SET full_name = $2, subject = $3 WHERE id = $1`

	result, err := s.pool.Exec(ctx, query, teacher.ID, teacher.FullName, teacher.Subject)
	if err != nil {
		return wrap("update teacher", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteTeacher deletes a teacher; students cascade via FK constraint.
func (s *Store) DeleteTeacher(ctx context.Context, id int64) error {
	if err := s.deleteByID(ctx, "teachers", id); err != nil {
		return err
	}

	log.Info().Int64("teacher_id", id).Msg("Deleted teacher (and cascade-deleted students)")
	return nil
}

const studentColumns = `id, full_name, grade, learning_goal_id, learning_category_id, teacher_id`

func scanStudent(row pgx.Row) (*models.Student, error) {
	var st models.Student
	err := row.Scan(&st.ID, &st.FullName, &st.Grade, &st.GoalID, &st.CategoryID, &st.TeacherID)
	return &st, err
}

// CreateStudent inserts a student; missing references map to ErrInvalidReference.
func (s *Store) CreateStudent(ctx context.Context, student *models.Student) error {
	if student.Grade == 0 {
		student.Grade = models.DefaultGrade
	}

	query := `
		INSERT INTO students (full_name, grade, learning_goal_id, learning_category_id, teacher_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query,
		student.FullName,
		student.Grade,
		student.GoalID,
		student.CategoryID,
		student.TeacherID,
	).Scan(&student.ID)
	if err != nil {
		return wrap("create student", err)
	}

	log.Debug().Int64("student_id", student.ID).Msg("Created student")
	return nil
}

// GetStudent retrieves a student by id.
func (s *Store) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	student, err := scanStudent(s.pool.QueryRow(ctx, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("get student", err)
	}
	return student, nil
}

// ListStudents returns students ordered by id, optionally filtered by category.
func (s *Store) ListStudents(ctx context.Context, opts store.ListStudentsOptions) ([]*models.Student, error) {
	query := `
		SELECT ` + studentColumns + `
		FROM students
		WHERE ($1::bigint IS NULL OR learning_category_id = $1)
		ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query, opts.CategoryID)
	if err != nil {
		return nil, wrap("list students", err)
	}

	students, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Student, error) {
		return scanStudent(row)
	})
	if err != nil {
		return nil, wrap("scan students", err)
	}
	return students, nil
}

// UpdateStudent updates an existing student.
func (s *Store) UpdateStudent(ctx context.Context, student *models.Student) error {
	query := `
		UPDATE students SET
			full_name = $2,
			grade = $3,
			learning_goal_id = $4,
			learning_category_id = $5,
			teacher_id = $6
		WHERE id = $1
	`

	result, err := s.pool.Exec(ctx, query,
		student.ID,
		student.FullName,
		student.Grade,
		student.GoalID,
		student.CategoryID,
		student.TeacherID,
	)
	if err != nil {
		return wrap("update student", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteStudent deletes a student; lessons, homework and journal entries cascade.
func (s *Store) DeleteStudent(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "students", id)
}
