package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/tutorcontrol/internal/store"
)

func TestMapPostgresError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		contains string
	}{
		{
			name:     "no rows",
			err:      fmt.Errorf("scan: %w", pgx.ErrNoRows),
			sentinel: store.ErrNotFound,
		},
		{
			name:     "unique violation",
			err:      &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "learning_categories_slug_key"},
			sentinel: store.ErrAlreadyExists,
			contains: "learning_categories_slug_key",
		},
		{
			name:     "foreign key violation",
			err:      &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, Detail: "Key (teacher_id)=(9) is not present"},
			sentinel: store.ErrInvalidReference,
			contains: "teacher_id",
		},
		{
			name:     "deadlock",
			err:      &pgconn.PgError{Code: pgerrcode.DeadlockDetected},
			contains: "retryable",
		},
		{
			name:     "check violation",
			err:      &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "homework_results_difficulty_check"},
			contains: "constraint homework_results_difficulty_check violated",
		},
		{
			name:     "serialization failure",
			err:      &pgconn.PgError{Code: pgerrcode.SerializationFailure},
			contains: "retryable",
		},
		{
			name:     "admin shutdown",
			err:      &pgconn.PgError{Code: pgerrcode.AdminShutdown},
			contains: "database unavailable",
		},
		{
			name:     "too many connections",
			err:      &pgconn.PgError{Code: pgerrcode.TooManyConnections},
			contains: "resource limit",
		},
		{
			name:     "unknown code",
			err:      &pgconn.PgError{Code: "XX999", Message: "boom"},
			contains: "postgres error [XX999]: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapped := mapPostgresError(tt.err)
			if tt.sentinel != nil {
				require.ErrorIs(t, mapped, tt.sentinel)
			}
			if tt.contains != "" {
				require.ErrorContains(t, mapped, tt.contains)
			}
		})
	}

	require.NoError(t, mapPostgresError(nil))

	plain := errors.New("plain")
	require.Equal(t, plain, mapPostgresError(plain))
}

func TestWrap(t *testing.T) {
	err := wrap("get teacher", pgx.ErrNoRows)
	require.Equal(t, store.ErrNotFound, err)

	err = wrap("create student", &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
	require.ErrorIs(t, err, store.ErrInvalidReference)
	require.ErrorContains(t, err, "failed to create student")
}
