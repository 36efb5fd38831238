package repository

import "context"

// Notification kinds recorded against a student.
const (
	NotificationKindApproved = "approved"
	NotificationKindExpired  = "expired"
)

// NotificationLogRepository records lifecycle notices sent to students so a
// repeated sweep does not notify the same expiry twice.
type NotificationLogRepository interface {
	Save(ctx context.Context, tx Tx, chatID int64, kind string) error
	Exists(ctx context.Context, tx Tx, chatID int64, kind string) (bool, error)
}
