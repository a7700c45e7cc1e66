package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/wolfeidau/tutorcontrol/internal/store"
)

// mapPostgresError turns driver errors into the store sentinels where one
// applies and labels the rest by SQLSTATE class. Non-postgres errors pass
// through untouched.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	code := pgErr.Code
	switch {
	case code == pgerrcode.UniqueViolation:
		return fmt.Errorf("%w: %s", store.ErrAlreadyExists, pgErr.ConstraintName)
	case code == pgerrcode.ForeignKeyViolation:
		// raised both for a dangling id on insert and for deleting a row still in use
		return fmt.Errorf("%w: %s", store.ErrInvalidReference, pgErr.Detail)
	case pgerrcode.IsIntegrityConstraintViolation(code):
		return fmt.Errorf("constraint %s violated: %w", pgErr.ConstraintName, err)
	case code == pgerrcode.QueryCanceled:
		return fmt.Errorf("query canceled: %w", err)
	case pgerrcode.IsTransactionRollback(code):
		return fmt.Errorf("transaction conflict (retryable): %w", err)
	case pgerrcode.IsConnectionException(code), pgerrcode.IsOperatorIntervention(code):
		return fmt.Errorf("database unavailable: %w", err)
	case pgerrcode.IsInsufficientResources(code):
		return fmt.Errorf("database resource limit: %w", err)
	}

	return fmt.Errorf("postgres error [%s]: %s: %w", code, pgErr.Message, err)
}

// wrap maps err and names the failed operation. ErrNotFound is returned
// bare so handlers can answer 404 without unwrapping.
func wrap(op string, err error) error {
	mapped := mapPostgresError(err)
	if errors.Is(mapped, store.ErrNotFound) {
		return mapped
	}
	return fmt.Errorf("failed to %s: %w", op, mapped)
}
