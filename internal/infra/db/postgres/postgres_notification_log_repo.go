package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-tutoring-bot/internal/domain"
	"telegram-tutoring-bot/internal/domain/ports/repository"
)

var _ repository.NotificationLogRepository = (*notificationLogRepo)(nil)

type notificationLogRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationLogRepo(pool *pgxpool.Pool) repository.NotificationLogRepository {
	return &notificationLogRepo{pool: pool}
}

func (r *notificationLogRepo) Save(ctx context.Context, tx repository.Tx, chatID int64, kind string) error {
	const q = `
INSERT INTO student_notifications (id, chat_id, kind)
VALUES ($1, $2, $3)
ON CONFLICT (chat_id, kind) DO NOTHING;`

	_, err := execSQL(ctx, r.pool, tx, q, uuid.NewString(), chatID, kind)
	return err
}

func (r *notificationLogRepo) Exists(ctx context.Context, tx repository.Tx, chatID int64, kind string) (bool, error) {
	const q = `
SELECT EXISTS(
    SELECT 1 FROM student_notifications
    WHERE chat_id = $1 AND kind = $2
)`
	var exists bool
	row, err := pickRow(ctx, r.pool, tx, q, chatID, kind)
	if err != nil {
		return false, err
	}
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, domain.ErrReadDatabaseRow
	}
	return exists, nil
}
