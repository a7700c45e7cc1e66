package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/tutorcontrol/internal/models"
	"github.com/wolfeidau/tutorcontrol/internal/store"
)

const lessonColumns = `id, student_id, lesson_type_id, topic_id, date, comment`

func scanLesson(row pgx.Row) (*models.Lesson, error) {
	var l models.Lesson
	err := row.Scan(&l.ID, &l.StudentID, &l.LessonTypeID, &l.TopicID, &l.Date, &l.Comment)
	return &l, err
}

// CreateLesson inserts a lesson, stamping the date when unset.
func (s *Store) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	if lesson.Date.IsZero() {
		lesson.Date = time.Now().UTC()
	}

	query := `
		INSERT INTO lessons (student_id, lesson_type_id, topic_id, date, comment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query,
		lesson.StudentID,
		lesson.LessonTypeID,
		lesson.TopicID,
		lesson.Date,
		lesson.Comment,
	).Scan(&lesson.ID)
	if err != nil {
		return wrap("create lesson", err)
	}
	return nil
}

// GetLesson retrieves a lesson by id.
func (s *Store) GetLesson(ctx context.Context, id int64) (*models.Lesson, error) {
	lesson, err := scanLesson(s.pool.QueryRow(ctx, `SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("get lesson", err)
	}
	return lesson, nil
}

// ListLessons returns lessons newest first.
func (s *Store) ListLessons(ctx context.Context, opts store.ListLessonsOptions) ([]*models.Lesson, error) {
	query := `
		SELECT ` + lessonColumns + `
		FROM lessons
		WHERE ($1::bigint IS NULL OR student_id = $1)
		ORDER BY date DESC, id DESC
	`
	args := []any{opts.StudentID}
	if opts.Limit > 0 {
		query += ` LIMIT $2`
		args = append(args, opts.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list lessons", err)
	}

	lessons, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Lesson, error) {
		return scanLesson(row)
	})
	if err != nil {
		return nil, wrap("scan lessons", err)
	}
	return lessons, nil
}

// DeleteLesson deletes a lesson; its homework cascades.
func (s *Store) DeleteLesson(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "lessons", id)
}

// CreateHomework inserts homework, its topic links and its results in one transaction.
func (s *Store) CreateHomework(ctx context.Context, homework *models.Homework) error {
	now := time.Now().UTC()
	if homework.CreatedAt.IsZero() {
		homework.CreatedAt = now
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO homework (lesson_id, created_at) VALUES ($1, $2) RETURNING id`,
			homework.LessonID, homework.CreatedAt,
		).Scan(&homework.ID)
		if err != nil {
			return err
		}

		if err := replaceLinks(ctx, tx, "homework_topics", "homework_id", "topic_id", homework.ID, homework.TopicIDs); err != nil {
			return err
		}

		for i := range homework.Results {
			result := &homework.Results[i]
			result.HomeworkID = homework.ID
			if result.CreatedAt.IsZero() {
				result.CreatedAt = now
			}
			result.ComputePercentage()

			err := tx.QueryRow(ctx, `
				INSERT INTO homework_results
					(homework_id, topic_id, difficulty, correct_count, total_count, percentage, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id
			`,
				result.HomeworkID,
				result.TopicID,
				string(result.Difficulty),
				result.CorrectCount,
				result.TotalCount,
				result.Percentage,
				result.CreatedAt,
			).Scan(&result.ID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return wrap("create homework", err)
	}

	log.Debug().Int64("homework_id", homework.ID).Int("results", len(homework.Results)).Msg("Created homework")
	return nil
}

// GetHomework retrieves homework and its results by id.
func (s *Store) GetHomework(ctx context.Context, id int64) (*models.Homework, error) {
	list, err := s.listHomework(ctx, `h.id = $1`, id)
	if err != nil {
		return nil, wrap("get homework", err)
	}
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[0], nil
}

// ListHomework returns homework ordered by id.
func (s *Store) ListHomework(ctx context.Context, opts store.ListHomeworkOptions) ([]*models.Homework, error) {
	list, err := s.listHomework(ctx, `
		($1::bigint IS NULL OR h.lesson_id = $1)
		AND ($2::bigint IS NULL OR l.student_id = $2)
		AND ($3::bigint[] IS NULL OR h.lesson_id = ANY($3))
	`, opts.LessonID, opts.StudentID, opts.LessonIDs)
	if err != nil {
		return nil, wrap("list homework", err)
	}
	return list, nil
}

func (s *Store) listHomework(ctx context.Context, where string, args ...any) ([]*models.Homework, error) {
	query := `
		SELECT h.id, h.lesson_id, h.created_at,
			COALESCE(ARRAY(SELECT topic_id FROM homework_topics t WHERE t.homework_id = h.id ORDER BY topic_id), '{}')
		FROM homework h
		JOIN lessons l ON l.id = h.lesson_id
		WHERE ` + where + `
		ORDER BY h.id
	`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Homework, error) {
		var h models.Homework
		err := row.Scan(&h.ID, &h.LessonID, &h.CreatedAt, &h.TopicIDs)
		h.Results = []models.HomeworkResult{}
		return &h, err
	})
	if err != nil || len(list) == 0 {
		return list, err
	}

	ids := make([]int64, len(list))
	byID := make(map[int64]*models.Homework, len(list))
	for i, h := range list {
		ids[i] = h.ID
		byID[h.ID] = h
	}

	results, err := s.queryResults(ctx, store.ListResultsOptions{HomeworkIDs: ids})
	if err != nil {
		return nil, err
	}
	for _, r := range results {
		hw := byID[r.HomeworkID]
		hw.Results = append(hw.Results, *r)
	}
	return list, nil
}

// ListResults returns results ordered by topic, difficulty, newest first.
func (s *Store) ListResults(ctx context.Context, opts store.ListResultsOptions) ([]*models.HomeworkResult, error) {
	results, err := s.queryResults(ctx, opts)
	if err != nil {
		return nil, wrap("list homework results", err)
	}
	return results, nil
}

func (s *Store) queryResults(ctx context.Context, opts store.ListResultsOptions) ([]*models.HomeworkResult, error) {
	query := `
		SELECT r.id, r.homework_id, r.topic_id, r.difficulty, r.correct_count, r.total_count, r.percentage, r.created_at
		FROM homework_results r
		JOIN homework h ON h.id = r.homework_id
		WHERE ($1::bigint[] IS NULL OR r.homework_id = ANY($1))
			AND ($2::bigint IS NULL OR h.lesson_id = $2)
		ORDER BY r.topic_id, r.difficulty, r.created_at DESC, r.id DESC
	`

	rows, err := s.pool.Query(ctx, query, opts.HomeworkIDs, opts.LessonID)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.HomeworkResult, error) {
		var r models.HomeworkResult
		var difficulty string
		err := row.Scan(&r.ID, &r.HomeworkID, &r.TopicID, &difficulty,
			&r.CorrectCount, &r.TotalCount, &r.Percentage, &r.CreatedAt)
		r.Difficulty = models.Difficulty(difficulty)
		return &r, err
	})
}
