package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-tutoring-bot/internal/config"
	"telegram-tutoring-bot/internal/domain/ports/adapter"
	"telegram-tutoring-bot/internal/infra/logging"
	"telegram-tutoring-bot/internal/infra/metrics"
	red "telegram-tutoring-bot/internal/infra/redis"
	"telegram-tutoring-bot/internal/usecase"
)

// Ensure the adapter satisfies the outbound port.
var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// RealTelegramBotAdapter polls updates with tgbotapi and routes them to the
// enrollment and approval use cases. Updates fan out over a worker pool, but
// one chat's updates are serialized by a per-chat mutex so a user's answers
// are consumed strictly in arrival order.
type RealTelegramBotAdapter struct {
	bot          *tgbotapi.BotAPI
	cfg          *config.BotConfig
	enrollmentUC *usecase.EnrollmentUseCase
	approvalUC   *usecase.ApprovalUseCase
	rateLimiter  *red.RateLimiter
	log          *zerolog.Logger

	chatLocks     sync.Map // chat ID -> *sync.Mutex
	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(
	cfg *config.BotConfig,
	rateLimiter *red.RateLimiter,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	botLog := logger.With().Str("component", "TelegramBot").Logger()

	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		rateLimiter:   rateLimiter,
		log:           &botLog,
		updateWorkers: workers,
	}, nil
}

// Bind attaches the inbound handlers. The use cases send through this same
// adapter, so they are constructed after it and bound before polling starts.
func (r *RealTelegramBotAdapter) Bind(enrollmentUC *usecase.EnrollmentUseCase, approvalUC *usecase.ApprovalUseCase) {
	r.enrollmentUC = enrollmentUC
	r.approvalUC = approvalUC
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	return r.pump(ctx, r.bot.GetUpdatesChan(u))
}

// pump fans inbound updates out to the worker pool. On cancellation the
// queue is closed and the workers drain whatever is already queued before
// exiting, so no accepted update is dropped.
func (r *RealTelegramBotAdapter) pump(ctx context.Context, updates <-chan tgbotapi.Update) error {
	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for up := range updateChan {
				r.dispatch(ctx, id, up)
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// dispatch isolates a single update: a panic or error in one handler never
// takes down the polling loop.
func (r *RealTelegramBotAdapter) dispatch(ctx context.Context, worker int, up tgbotapi.Update) {
	ctx = logging.WithTraceID(ctx, ulid.Make().String())
	log := logging.With(ctx, r.log)
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Int("worker", worker).Interface("panic", rec).Msg("update handler panicked")
		}
	}()
	if err := r.handleUpdate(ctx, up); err != nil {
		log.Error().Int("worker", worker).Err(err).Msg("update handler error")
	}
}

func (r *RealTelegramBotAdapter) lockChat(chatID int64) func() {
	v, _ := r.chatLocks.LoadOrStore(chatID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if r.enrollmentUC == nil || r.approvalUC == nil {
		return errors.New("update handlers not bound")
	}
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}
	chatID := msg.Chat.ID

	command := "message"
	if fields := strings.Fields(msg.Text); len(fields) > 0 && strings.HasPrefix(fields[0], "/") {
		command = fields[0]
	}

	if r.rateLimiter != nil {
		allowed, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(chatID, command), 20, time.Minute)
		if err != nil {
			r.log.Warn().Err(err).Msg("rate limit error")
		} else if !allowed {
			return r.SendMessage(ctx, chatID, "Rate limit exceeded. Please try again later.")
		}
	}

	ctx = logging.WithChatID(ctx, chatID)

	unlock := r.lockChat(chatID)
	defer unlock()

	switch command {
	case "/start":
		metrics.IncTelegramUpdate("command")
		return r.enrollmentUC.HandleStart(ctx, chatID)

	case "/resetme", "/reset":
		metrics.IncTelegramUpdate("command")
		return r.enrollmentUC.Reset(ctx, chatID)

	case "/approve":
		metrics.IncTelegramUpdate("command")
		if !r.isAdmin(chatID) {
			// Approval authority is allowlist-only; others are ignored here.
			return nil
		}
		args := strings.Fields(msg.Text)[1:]
		return r.approvalUC.Approve(ctx, args)

	case "/help":
		metrics.IncTelegramUpdate("command")
		reply := "Commands:\n/start - register or view your dashboard\n/resetme - wipe your profile and register again"
		return r.SendMessage(ctx, chatID, reply)
	}

	if len(msg.Photo) > 0 {
		metrics.IncTelegramUpdate("photo")
		// Telegram lists photo sizes ascending; keep the largest rendition.
		fileID := msg.Photo[len(msg.Photo)-1].FileID
		return r.enrollmentUC.HandlePhoto(ctx, chatID, fileID)
	}

	if msg.Text != "" {
		metrics.IncTelegramUpdate("text")
		return r.enrollmentUC.HandleText(ctx, chatID, msg.Text)
	}

	metrics.IncTelegramUpdate("other")
	return nil
}

func (r *RealTelegramBotAdapter) isAdmin(chatID int64) bool {
	for _, id := range r.cfg.AdminIDs {
		if id == chatID {
			return true
		}
	}
	return false
}

func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	return r.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (r *RealTelegramBotAdapter) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	photo.Caption = caption
	return r.send(ctx, photo)
}

func (r *RealTelegramBotAdapter) SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]string) error {
	kbRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		btns := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			btns = append(btns, tgbotapi.NewKeyboardButton(label))
		}
		kbRows = append(kbRows, btns)
	}
	markup := tgbotapi.NewReplyKeyboard(kbRows...)
	markup.ResizeKeyboard = true
	markup.OneTimeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	return r.send(ctx, msg)
}

func (r *RealTelegramBotAdapter) RemoveKeyboard(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	return r.send(ctx, msg)
}

func (r *RealTelegramBotAdapter) send(ctx context.Context, c tgbotapi.Chattable) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if _, err := r.bot.Send(c); err != nil {
		metrics.IncTelegramSendFailure()
		return err
	}
	return nil
}
