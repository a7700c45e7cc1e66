package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/wolfeidau/tutorcontrol/internal/models"
	"github.com/wolfeidau/tutorcontrol/internal/store"
)

// CreateCategory inserts a category, deriving its slug when empty.
func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	category.EnsureSlug()

	query := `INSERT INTO learning_categories (name, slug) VALUES ($1, $2) RETURNING id`
	if err := s.pool.QueryRow(ctx, query, category.Name, category.Slug).Scan(&category.ID); err != nil {
		return wrap("create category", err)
	}
	return nil
}

// GetCategory retrieves a category by id.
func (s *Store) GetCategory(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := s.pool.QueryRow(ctx, `SELECT id, name, slug FROM learning_categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		return nil, wrap("get category", err)
	}
	return &c, nil
}

// GetCategoryBySlug retrieves a category by its unique slug.
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	err := s.pool.QueryRow(ctx, `SELECT id, name, slug FROM learning_categories WHERE slug = $1`, slug).
		Scan(&c.ID, &c.Name, &c.Slug)
	if err != nil {
		return nil, wrap("get category by slug", err)
	}
	return &c, nil
}

// ListCategories returns all categories ordered by id.
func (s *Store) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, slug FROM learning_categories ORDER BY id`)
	if err != nil {
		return nil, wrap("list categories", err)
	}

	categories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Category, error) {
		var c models.Category
		err := row.Scan(&c.ID, &c.Name, &c.Slug)
		return &c, err
	})
	if err != nil {
		return nil, wrap("scan categories", err)
	}
	return categories, nil
}

// UpdateCategory updates an existing category.
func (s *Store) UpdateCategory(ctx context.Context, category *models.Category) error {
	category.EnsureSlug()

	result, err := s.pool.Exec(ctx,
		`UPDATE learning_categories SET name = $2, slug = $3 WHERE id = $1`,
		category.ID, category.Name, category.Slug)
	if err != nil {
		return wrap("update category", err)
	}
	if result.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteCategory deletes a category; students and goal links cascade.
func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "learning_categories", id)
}

const goalSelect = `
	SELECT g.id, g.name,
		COALESCE(array_agg(gc.category_id ORDER BY gc.category_id) FILTER (WHERE gc.category_id IS NOT NULL), '{}')
	FROM learning_goals g
	LEFT JOIN learning_goal_categories gc ON gc.goal_id = g.id
`

func scanGoal(row pgx.Row) (*models.Goal, error) {
	var g models.Goal
	err := row.Scan(&g.ID, &g.Name, &g.CategoryIDs)
	return &g, err
}

// CreateGoal inserts a goal and its category links in one transaction.
func (s *Store) CreateGoal(ctx context.Context, goal *models.Goal) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `INSERT INTO learning_goals (name) VALUES ($1) RETURNING id`, goal.Name).Scan(&goal.ID); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, "learning_goal_categories", "goal_id", "category_id", goal.ID, goal.CategoryIDs)
	})
	if err != nil {
		return wrap("create goal", err)
	}
	return nil
}

// GetGoal retrieves a goal by id.
func (s *Store) GetGoal(ctx context.Context, id int64) (*models.Goal, error) {
	goal, err := scanGoal(s.pool.QueryRow(ctx, goalSelect+` WHERE g.id = $1 GROUP BY g.id`, id))
	if err != nil {
		return nil, wrap("get goal", err)
	}
	return goal, nil
}

// ListGoals returns goals ordered by id, optionally only those in a category.
func (s *Store) ListGoals(ctx context.Context, categoryID *int64) ([]*models.Goal, error) {
	query := goalSelect + `
		WHERE $1::bigint IS NULL OR EXISTS (
			SELECT 1 FROM learning_goal_categories f WHERE f.goal_id = g.id AND f.category_id = $1
		)
		GROUP BY g.id
		ORDER BY g.id
	`

	rows, err := s.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, wrap("list goals", err)
	}

	goals, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Goal, error) {
		return scanGoal(row)
	})
	if err != nil {
		return nil, wrap("scan goals", err)
	}
	return goals, nil
}

// UpdateGoal updates a goal and replaces its category links.
func (s *Store) UpdateGoal(ctx context.Context, goal *models.Goal) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `UPDATE learning_goals SET name = $2 WHERE id = $1`, goal.ID, goal.Name)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return store.ErrNotFound
		}
		return replaceLinks(ctx, tx, "learning_goal_categories", "goal_id", "category_id", goal.ID, goal.CategoryIDs)
	})
	if err != nil {
		return wrap("update goal", err)
	}
	return nil
}

// DeleteGoal deletes a goal; students working towards it cascade.
func (s *Store) DeleteGoal(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "learning_goals", id)
}

// CreateLessonType inserts a lesson type.
func (s *Store) CreateLessonType(ctx context.Context, lessonType *models.LessonType) error {
	err := s.pool.QueryRow(ctx, `INSERT INTO lesson_types (name) VALUES ($1) RETURNING id`, lessonType.Name).
		Scan(&lessonType.ID)
	if err != nil {
		return wrap("create lesson type", err)
	}
	return nil
}

// GetLessonType retrieves a lesson type by id.
func (s *Store) GetLessonType(ctx context.Context, id int64) (*models.LessonType, error) {
	var lt models.LessonType
	if err := s.pool.QueryRow(ctx, `SELECT id, name FROM lesson_types WHERE id = $1`, id).Scan(&lt.ID, &lt.Name); err != nil {
		return nil, wrap("get lesson type", err)
	}
	return &lt, nil
}

// ListLessonTypes returns all lesson types ordered by id.
func (s *Store) ListLessonTypes(ctx context.Context) ([]*models.LessonType, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name FROM lesson_types ORDER BY id`)
	if err != nil {
		return nil, wrap("list lesson types", err)
	}

	lessonTypes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.LessonType, error) {
		var lt models.LessonType
		err := row.Scan(&lt.ID, &lt.Name)
		return &lt, err
	})
	if err != nil {
		return nil, wrap("scan lesson types", err)
	}
	return lessonTypes, nil
}

// DeleteLessonType deletes a lesson type; lessons of that type cascade.
func (s *Store) DeleteLessonType(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "lesson_types", id)
}

const topicSelect = `
	SELECT t.id, t.name,
		COALESCE(array_agg(ts.student_id ORDER BY ts.student_id) FILTER (WHERE ts.student_id IS NOT NULL), '{}')
	FROM topics t
	LEFT JOIN topic_students ts ON ts.topic_id = t.id
`

func scanTopic(row pgx.Row) (*models.Topic, error) {
	var t models.Topic
	err := row.Scan(&t.ID, &t.Name, &t.StudentIDs)
	return &t, err
}

// CreateTopic inserts a topic and its student links in one transaction.
func (s *Store) CreateTopic(ctx context.Context, topic *models.Topic) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `INSERT INTO topics (name) VALUES ($1) RETURNING id`, topic.Name).Scan(&topic.ID); err != nil {
			return err
		}
		return replaceLinks(ctx, tx, "topic_students", "topic_id", "student_id", topic.ID, topic.StudentIDs)
	})
	if err != nil {
		return wrap("create topic", err)
	}
	return nil
}

// GetTopic retrieves a topic by id.
func (s *Store) GetTopic(ctx context.Context, id int64) (*models.Topic, error) {
	topic, err := scanTopic(s.pool.QueryRow(ctx, topicSelect+` WHERE t.id = $1 GROUP BY t.id`, id))
	if err != nil {
		return nil, wrap("get topic", err)
	}
	return topic, nil
}

// ListTopics returns topics ordered by id, optionally only those a student studies.
func (s *Store) ListTopics(ctx context.Context, studentID *int64) ([]*models.Topic, error) {
	query := topicSelect + `
		WHERE $1::bigint IS NULL OR EXISTS (
			SELECT 1 FROM topic_students f WHERE f.topic_id = t.id AND f.student_id = $1
		)
		GROUP BY t.id
		ORDER BY t.id
	`

	rows, err := s.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, wrap("list topics", err)
	}

	topics, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Topic, error) {
		return scanTopic(row)
	})
	if err != nil {
		return nil, wrap("scan topics", err)
	}
	return topics, nil
}

// DeleteTopic deletes a topic; lessons and results that reference it cascade.
func (s *Store) DeleteTopic(ctx context.Context, id int64) error {
	return s.deleteByID(ctx, "topics", id)
}
