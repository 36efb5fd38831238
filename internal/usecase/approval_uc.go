package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-tutoring-bot/internal/domain"
	"telegram-tutoring-bot/internal/domain/model"
	"telegram-tutoring-bot/internal/domain/ports/adapter"
	"telegram-tutoring-bot/internal/domain/ports/repository"
	"telegram-tutoring-bot/internal/infra/logging"
	"telegram-tutoring-bot/internal/infra/metrics"
)

const approveUsage = "❌ Format:\n/approve USERID https://startlink"

// ApprovalUseCase turns a pending enrollment into an approved subscription.
// The transport layer has already restricted the caller to the admin
// allowlist; all replies here go back to the admin chat.
type ApprovalUseCase struct {
	students repository.StudentRepository
	notified repository.NotificationLogRepository
	tm       repository.TransactionManager
	bot      adapter.TelegramBotAdapter
	adminID  int64
	log      *zerolog.Logger
	now      func() time.Time
}

func NewApprovalUseCase(
	students repository.StudentRepository,
	notified repository.NotificationLogRepository,
	tm repository.TransactionManager,
	bot adapter.TelegramBotAdapter,
	adminID int64,
	logger *zerolog.Logger,
) *ApprovalUseCase {
	ucLog := logger.With().Str("component", "ApprovalUC").Logger()
	return &ApprovalUseCase{
		students: students,
		notified: notified,
		tm:       tm,
		bot:      bot,
		adminID:  adminID,
		log:      &ucLog,
		now:      time.Now,
	}
}

// Approve processes the arguments of `/approve <chatID> <startLink>`.
// Join date is the time of the call; expiry follows from the stored plan.
// Every outcome, including failure, is reported back to the admin.
func (uc *ApprovalUseCase) Approve(ctx context.Context, args []string) error {
	if len(args) != 2 {
		metrics.IncApproval("malformed")
		_ = uc.bot.SendMessage(ctx, uc.adminID, approveUsage)
		return domain.ErrMalformedCommand
	}
	chatID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || chatID <= 0 {
		metrics.IncApproval("malformed")
		_ = uc.bot.SendMessage(ctx, uc.adminID, approveUsage)
		return domain.ErrMalformedCommand
	}
	startLink := args[1]

	var approved *model.Student
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.students.LockRow(ctx, tx, chatID); err != nil {
			return err
		}
		s, err := uc.students.Find(ctx, tx, chatID)
		if err != nil {
			return err
		}
		a, err := s.Approve(uc.now(), startLink)
		if err != nil {
			return err
		}
		if err := uc.students.UpdateStatus(ctx, tx, chatID, model.StudentStatusApproved, a.JoinedAt, a.ExpiresAt, a.StartLink); err != nil {
			return err
		}
		approved = a
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.IncApproval("unknown_student")
			_ = uc.bot.SendMessage(ctx, uc.adminID, "❌ Student not found.")
			return fmt.Errorf("approve %d: %w", chatID, domain.ErrUnknownStudent)
		}
		metrics.IncApproval("error")
		logging.With(ctx, uc.log).Error().Err(err).Int64("student_id", chatID).Msg("approval failed")
		_ = uc.bot.SendMessage(ctx, uc.adminID, "Error: "+err.Error())
		return err
	}

	metrics.IncApproval("ok")
	log := logging.With(ctx, uc.log)
	log.Info().Int64("student_id", chatID).
		Str("plan", string(approved.Plan)).
		Time("expires_at", *approved.ExpiresAt).
		Msg("student approved")

	if err := uc.bot.SendMessage(ctx, chatID, approvalNotice(approved)); err != nil {
		log.Warn().Err(err).Int64("student_id", chatID).Msg("approval notice failed")
	} else if uc.notified != nil {
		if err := uc.notified.Save(ctx, repository.NoTX, chatID, repository.NotificationKindApproved); err != nil {
			log.Warn().Err(err).Int64("student_id", chatID).Msg("notification log write failed")
		}
	}
	if err := uc.bot.SendMessage(ctx, uc.adminID, "✅ Student Approved."); err != nil {
		log.Warn().Err(err).Msg("admin confirmation failed")
	}
	return nil
}
