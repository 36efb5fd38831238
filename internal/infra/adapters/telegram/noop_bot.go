package telegram

import (
	"context"
	"log"
	"time"

	"telegram-tutoring-bot/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local/dev testing.
// It logs messages instead of sending real Telegram messages.
type NoopBotAdapter struct{}

func NewNoopBotAdapter() *NoopBotAdapter {
	return &NoopBotAdapter{}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	if err := b.pause(ctx); err != nil {
		return err
	}
	log.Printf("[noop-telegram] To chat %d: %s\n", chatID, text)
	return nil
}

func (b *NoopBotAdapter) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	if err := b.pause(ctx); err != nil {
		return err
	}
	log.Printf("[noop-telegram] To chat %d: photo %s caption: %s\n", chatID, fileID, caption)
	return nil
}

func (b *NoopBotAdapter) SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]string) error {
	if err := b.pause(ctx); err != nil {
		return err
	}
	log.Printf("[noop-telegram] To chat %d: %s [keyboard: %v]\n", chatID, text, rows)
	return nil
}

func (b *NoopBotAdapter) RemoveKeyboard(ctx context.Context, chatID int64, text string) error {
	if err := b.pause(ctx); err != nil {
		return err
	}
	log.Printf("[noop-telegram] To chat %d: %s [keyboard removed]\n", chatID, text)
	return nil
}

// pause simulates slight processing time while respecting ctx.
func (b *NoopBotAdapter) pause(ctx context.Context) error {
	select {
	case <-time.After(100 * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
