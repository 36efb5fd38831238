package repository

import (
	"context"
	"time"

	"telegram-tutoring-bot/internal/domain/model"
)

// StudentRepository is the durable store of enrollment records, keyed by
// Telegram chat ID.
//
// Mutations for the same chat ID must be atomic with respect to one another:
// an approval and an expiry sweep racing on one row may not interleave. The
// Postgres implementation takes a per-row advisory lock inside a transaction.
type StudentRepository interface {
	// Upsert inserts or fully replaces the record for the student's chat ID.
	Upsert(ctx context.Context, tx Tx, s *model.Student) error
	// Find returns domain.ErrNotFound when the chat has no record.
	Find(ctx context.Context, tx Tx, chatID int64) (*model.Student, error)
	// UpdateStatus mutates only the lifecycle fields of an existing record.
	// joinedAt/expiresAt/startLink are applied as given (nil clears nothing;
	// pending records keep them nil). Returns domain.ErrNotFound if the row
	// is missing.
	UpdateStatus(ctx context.Context, tx Tx, chatID int64, status model.StudentStatus, joinedAt, expiresAt *time.Time, startLink string) error
	// ListByStatus returns all records in the given status.
	ListByStatus(ctx context.Context, tx Tx, status model.StudentStatus) ([]*model.Student, error)
	// Delete removes the record entirely. Deleting a missing record is not
	// an error.
	Delete(ctx context.Context, chatID int64) error
	// CountByStatus returns record counts grouped by status.
	CountByStatus(ctx context.Context, tx Tx) (map[model.StudentStatus]int, error)
	// LockRow serializes mutations for one chat ID within the supplied
	// transaction. In-memory implementations may no-op.
	LockRow(ctx context.Context, tx Tx, chatID int64) error
}
