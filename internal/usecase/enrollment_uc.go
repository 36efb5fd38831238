package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"telegram-tutoring-bot/internal/config"
	"telegram-tutoring-bot/internal/domain"
	"telegram-tutoring-bot/internal/domain/model"
	"telegram-tutoring-bot/internal/domain/ports/adapter"
	"telegram-tutoring-bot/internal/domain/ports/repository"
	"telegram-tutoring-bot/internal/infra/logging"
	"telegram-tutoring-bot/internal/infra/metrics"
)

// Answer keys in ConversationState.Data, one per collected field.
const (
	fieldName     = "name"
	fieldGrade    = "grade"
	fieldExam     = "exam_info"
	fieldSubjects = "subjects"
	fieldParent   = "parent_phone"
	fieldSchedule = "weekly_schedule"
	fieldPlan     = "plan"
	fieldTarget   = "target"
)

// EnrollmentUseCase runs the registration dialog: a strictly linear state
// machine that collects one field per inbound message and, on receipt upload,
// commits a pending Student and hands the submission to the admin.
type EnrollmentUseCase struct {
	students repository.StudentRepository
	states   repository.ConversationStateRepository
	bot      adapter.TelegramBotAdapter
	adminID  int64
	copyCfg  config.EnrollmentConfig
	log      *zerolog.Logger
	now      func() time.Time
}

func NewEnrollmentUseCase(
	students repository.StudentRepository,
	states repository.ConversationStateRepository,
	bot adapter.TelegramBotAdapter,
	adminID int64,
	copyCfg config.EnrollmentConfig,
	logger *zerolog.Logger,
) *EnrollmentUseCase {
	ucLog := logger.With().Str("component", "EnrollmentUC").Logger()
	return &EnrollmentUseCase{
		students: students,
		states:   states,
		bot:      bot,
		adminID:  adminID,
		copyCfg:  copyCfg,
		log:      &ucLog,
		now:      time.Now,
	}
}

// HandleStart serves /start: dashboard for an approved, unexpired student,
// an expiry notice for a lapsed one, a reminder while pending, and a fresh
// dialog otherwise.
func (uc *EnrollmentUseCase) HandleStart(ctx context.Context, chatID int64) error {
	if chatID == uc.adminID {
		return uc.bot.SendMessage(ctx, chatID, adminHelp)
	}

	s, err := uc.students.Find(ctx, repository.NoTX, chatID)
	switch {
	case err == nil && s.Status == model.StudentStatusApproved:
		if s.ExpiredAt(uc.now()) {
			return uc.bot.SendMessage(ctx, chatID, replyPlanExpired)
		}
		return uc.bot.SendMessage(ctx, chatID, dashboard(s, uc.now()))
	case err == nil && s.Status == model.StudentStatusPending:
		return uc.bot.SendMessage(ctx, chatID, replyAwaitingReview)
	case err == nil && s.Status == model.StudentStatusExpired:
		return uc.bot.SendMessage(ctx, chatID, replyPlanExpired)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return err
	}

	return uc.begin(ctx, chatID)
}

// HandleText feeds one inbound text message to the dialog. A chat with no
// active dialog is treated exactly like /start.
func (uc *EnrollmentUseCase) HandleText(ctx context.Context, chatID int64, text string) error {
	state, err := uc.states.GetState(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uc.HandleStart(ctx, chatID)
		}
		return err
	}
	return uc.advance(ctx, chatID, state, text)
}

// HandlePhoto feeds an inbound photo. Only the receipt step accepts one;
// any other step repeats its own question.
func (uc *EnrollmentUseCase) HandlePhoto(ctx context.Context, chatID int64, fileID string) error {
	state, err := uc.states.GetState(ctx, chatID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uc.HandleStart(ctx, chatID)
		}
		return err
	}
	if state.Step != repository.StepAwaitReceipt {
		return uc.promptStep(ctx, chatID, state.Step)
	}
	return uc.finish(ctx, chatID, state, fileID)
}

// Reset unconditionally wipes the record and any dialog, then restarts.
// Resetting an unregistered chat is not an error.
func (uc *EnrollmentUseCase) Reset(ctx context.Context, chatID int64) error {
	if err := uc.students.Delete(ctx, chatID); err != nil {
		return err
	}
	if err := uc.states.ClearState(ctx, chatID); err != nil {
		return err
	}
	if err := uc.bot.SendMessage(ctx, chatID, replyProfileReset); err != nil {
		logging.With(ctx, uc.log).Warn().Err(err).Msg("reset notice failed")
	}
	return uc.begin(ctx, chatID)
}

func (uc *EnrollmentUseCase) begin(ctx context.Context, chatID int64) error {
	state := repository.NewConversationState()
	if err := uc.states.SetState(ctx, chatID, state); err != nil {
		return err
	}
	metrics.IncEnrollmentStarted()
	return uc.bot.SendMessage(ctx, chatID, promptName)
}

// advance stores the answer for the current step and prompts the next one.
func (uc *EnrollmentUseCase) advance(ctx context.Context, chatID int64, state *repository.ConversationState, text string) error {
	switch state.Step {
	case repository.StepAwaitName:
		state.Data[fieldName] = text
		state.Step = repository.StepAwaitGrade
	case repository.StepAwaitGrade:
		state.Data[fieldGrade] = text
		state.Step = repository.StepAwaitExam
	case repository.StepAwaitExam:
		state.Data[fieldExam] = text
		state.Step = repository.StepAwaitSubjects
	case repository.StepAwaitSubjects:
		state.Data[fieldSubjects] = text
		state.Step = repository.StepAwaitParentPhone
	case repository.StepAwaitParentPhone:
		state.Data[fieldParent] = text
		state.Step = repository.StepAwaitSchedule
	case repository.StepAwaitSchedule:
		state.Data[fieldSchedule] = text
		state.Step = repository.StepAwaitPlan
	case repository.StepAwaitPlan:
		plan, err := model.ParsePlan(text)
		if err != nil {
			// Stay put and show the keyboard again rather than guessing.
			return uc.bot.SendKeyboard(ctx, chatID, replyPlanRetry, uc.planKeyboard())
		}
		state.Data[fieldPlan] = string(plan)
		state.Step = repository.StepAwaitTarget
	case repository.StepAwaitTarget:
		state.Data[fieldTarget] = text
		state.Step = repository.StepAwaitReceipt
	case repository.StepAwaitReceipt:
		// Self-loop: the receipt step only advances on a photo.
		if err := uc.states.SetState(ctx, chatID, state); err != nil {
			return err
		}
		return uc.bot.SendMessage(ctx, chatID, replyReceiptRequired)
	default:
		logging.With(ctx, uc.log).Error().Str("step", string(state.Step)).Msg("unknown conversation step")
		if err := uc.states.ClearState(ctx, chatID); err != nil {
			return err
		}
		return uc.bot.SendMessage(ctx, chatID, replyProfileReset)
	}

	if err := uc.states.SetState(ctx, chatID, state); err != nil {
		return err
	}
	return uc.promptStep(ctx, chatID, state.Step)
}

// promptStep asks the question belonging to the step about to be answered.
func (uc *EnrollmentUseCase) promptStep(ctx context.Context, chatID int64, step repository.ConversationStep) error {
	switch step {
	case repository.StepAwaitName:
		return uc.bot.SendMessage(ctx, chatID, promptName)
	case repository.StepAwaitGrade:
		return uc.bot.SendMessage(ctx, chatID, promptGrade)
	case repository.StepAwaitExam:
		return uc.bot.SendMessage(ctx, chatID, promptExam)
	case repository.StepAwaitSubjects:
		return uc.bot.SendMessage(ctx, chatID, promptSubjects)
	case repository.StepAwaitParentPhone:
		return uc.bot.SendMessage(ctx, chatID, promptParent)
	case repository.StepAwaitSchedule:
		return uc.bot.SendMessage(ctx, chatID, promptSchedule)
	case repository.StepAwaitPlan:
		return uc.bot.SendKeyboard(ctx, chatID, promptPlan, uc.planKeyboard())
	case repository.StepAwaitTarget:
		return uc.bot.RemoveKeyboard(ctx, chatID, promptTarget)
	case repository.StepAwaitReceipt:
		if uc.copyCfg.BankDetails != "" {
			if err := uc.bot.SendMessage(ctx, chatID, uc.copyCfg.BankDetails); err != nil {
				return err
			}
		}
		return uc.bot.SendMessage(ctx, chatID, promptReceipt)
	}
	return domain.ErrInvalidArgument
}

func (uc *EnrollmentUseCase) planKeyboard() [][]string {
	return [][]string{
		{uc.copyCfg.TwoWeekLabel},
		{uc.copyCfg.OneMonthLabel},
	}
}

// finish commits the collected answers as a pending record, discards the
// dialog, and notifies both sides. The receipt file ID is fixed here for the
// record's lifetime.
func (uc *EnrollmentUseCase) finish(ctx context.Context, chatID int64, state *repository.ConversationState, fileID string) error {
	d := state.Data
	student, err := model.NewPendingStudent(chatID,
		d[fieldName], d[fieldGrade], d[fieldExam], d[fieldSubjects],
		d[fieldParent], d[fieldSchedule], model.Plan(d[fieldPlan]), d[fieldTarget],
		fileID)
	if err != nil {
		return err
	}

	if err := uc.students.Upsert(ctx, repository.NoTX, student); err != nil {
		return err
	}
	log := logging.With(ctx, uc.log)
	if err := uc.states.ClearState(ctx, chatID); err != nil {
		log.Warn().Err(err).Msg("clearing finished dialog failed")
	}
	metrics.IncEnrollmentSubmitted()
	log.Info().Str("plan", d[fieldPlan]).
		Str("parent_phone", logging.Redact(student.ParentPhone, false)).
		Msg("enrollment submitted")

	if err := uc.bot.SendMessage(ctx, chatID, replyAwaitingReview); err != nil {
		log.Warn().Err(err).Msg("submission ack failed")
	}
	if err := uc.bot.SendPhoto(ctx, uc.adminID, fileID, enrollmentSummary(student)); err != nil {
		log.Error().Err(err).Msg("admin summary failed")
	}
	return nil
}
