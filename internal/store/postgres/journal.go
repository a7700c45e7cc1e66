package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/wolfeidau/tutorcontrol/internal/models"
)

const journalColumns = `id, student_id, created_at, good_results, bad_results, covered_topics,
	working_on, recommended_lessons, recommendation_reason`

func scanJournalEntry(row pgx.Row) (*models.JournalEntry, error) {
	var e models.JournalEntry
	err := row.Scan(&e.ID, &e.StudentID, &e.CreatedAt, &e.GoodResults, &e.BadResults,
		&e.CoveredTopics, &e.WorkingOn, &e.RecommendedLessons, &e.RecommendationReason)
	return &e, err
}

// CreateJournalEntry inserts a journal entry.
func (s *Store) CreateJournalEntry(ctx context.Context, entry *models.JournalEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO journal_entries (
			student_id, created_at, good_results, bad_results, covered_topics,
			working_on, recommended_lessons, recommendation_reason
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query,
		entry.StudentID,
		entry.CreatedAt,
		entry.GoodResults,
		entry.BadResults,
		entry.CoveredTopics,
		entry.WorkingOn,
		entry.RecommendedLessons,
		entry.RecommendationReason,
	).Scan(&entry.ID)
	if err != nil {
		return wrap("create journal entry", err)
	}
	return nil
}

// GetJournalEntry retrieves a journal entry by id.
func (s *Store) GetJournalEntry(ctx context.Context, id int64) (*models.JournalEntry, error) {
	entry, err := scanJournalEntry(s.pool.QueryRow(ctx, `SELECT `+journalColumns+` FROM journal_entries WHERE id = $1`, id))
	if err != nil {
		return nil, wrap("get journal entry", err)
	}
	return entry, nil
}

// ListJournalEntries returns entries newest first, optionally for one student.
func (s *Store) ListJournalEntries(ctx context.Context, studentID *int64) ([]*models.JournalEntry, error) {
	query := `
		SELECT ` + journalColumns + `
		FROM journal_entries
		WHERE ($1::bigint IS NULL OR student_id = $1)
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.pool.Query(ctx, query, studentID)
	if err != nil {
		return nil, wrap("list journal entries", err)
	}

	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.JournalEntry, error) {
		return scanJournalEntry(row)
	})
	if err != nil {
		return nil, wrap("scan journal entries", err)
	}
	return entries, nil
}
