package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-tutoring-bot/internal/domain/model"
	"telegram-tutoring-bot/internal/domain/ports/adapter"
	"telegram-tutoring-bot/internal/domain/ports/repository"
	"telegram-tutoring-bot/internal/infra/logging"
)

// ExpiryUseCase lapses approved subscriptions whose expiry date has passed.
// One sweep is idempotent: a second run at the same instant finds nothing
// left in approved state to transition.
type ExpiryUseCase struct {
	students repository.StudentRepository
	notified repository.NotificationLogRepository
	tm       repository.TransactionManager
	bot      adapter.TelegramBotAdapter
	adminID  int64
	log      *zerolog.Logger
	now      func() time.Time
}

func NewExpiryUseCase(
	students repository.StudentRepository,
	notified repository.NotificationLogRepository,
	tm repository.TransactionManager,
	bot adapter.TelegramBotAdapter,
	adminID int64,
	logger *zerolog.Logger,
) *ExpiryUseCase {
	ucLog := logger.With().Str("component", "ExpiryUC").Logger()
	return &ExpiryUseCase{
		students: students,
		notified: notified,
		tm:       tm,
		bot:      bot,
		adminID:  adminID,
		log:      &ucLog,
		now:      time.Now,
	}
}

// SweepExpired transitions every overdue approved record to expired and
// notifies the student and the admin. A failure on one record is logged and
// does not abort the rest of the cycle. Returns how many records lapsed.
func (uc *ExpiryUseCase) SweepExpired(ctx context.Context) (int, error) {
	approved, err := uc.students.ListByStatus(ctx, repository.NoTX, model.StudentStatusApproved)
	if err != nil {
		return 0, fmt.Errorf("list approved: %w", err)
	}

	now := uc.now()
	expired := 0
	for _, s := range approved {
		if !s.ExpiredAt(now) {
			continue
		}
		changed, err := uc.expireOne(ctx, s.ChatID)
		if err != nil {
			logging.With(ctx, uc.log).Error().Err(err).Int64("student_id", s.ChatID).Msg("expiry transition failed")
			continue
		}
		if !changed {
			continue
		}
		expired++
		uc.notify(ctx, s.ChatID)
	}
	return expired, nil
}

// expireOne flips a single record under the per-row lock, re-reading inside
// the transaction in case an approval or reset won the race.
func (uc *ExpiryUseCase) expireOne(ctx context.Context, chatID int64) (bool, error) {
	changed := false
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.students.LockRow(ctx, tx, chatID); err != nil {
			return err
		}
		s, err := uc.students.Find(ctx, tx, chatID)
		if err != nil {
			return err
		}
		if !s.ExpiredAt(uc.now()) {
			return nil
		}
		if err := uc.students.UpdateStatus(ctx, tx, chatID, model.StudentStatusExpired, nil, nil, ""); err != nil {
			return err
		}
		changed = true
		return nil
	})
	return changed, err
}

func (uc *ExpiryUseCase) notify(ctx context.Context, chatID int64) {
	if uc.notified != nil {
		if seen, err := uc.notified.Exists(ctx, repository.NoTX, chatID, repository.NotificationKindExpired); err == nil && seen {
			return
		}
	}
	log := logging.With(ctx, uc.log)
	if err := uc.bot.SendMessage(ctx, chatID, replyPlanExpired); err != nil {
		log.Warn().Err(err).Int64("student_id", chatID).Msg("expiry notice failed")
	}
	if err := uc.bot.SendMessage(ctx, uc.adminID, fmt.Sprintf("Student %d expired.", chatID)); err != nil {
		log.Warn().Err(err).Msg("admin expiry notice failed")
	}
	if uc.notified != nil {
		if err := uc.notified.Save(ctx, repository.NoTX, chatID, repository.NotificationKindExpired); err != nil {
			log.Warn().Err(err).Int64("student_id", chatID).Msg("notification log write failed")
		}
	}
}
