package adapter

import "context"

// TelegramBotAdapter is the outbound messaging port. The enrollment,
// approval and expiry use cases speak to chats only through it.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	// SendPhoto re-sends a previously uploaded photo by its Telegram file ID.
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error
	// SendKeyboard sends text together with a one-tap reply keyboard; each
	// inner slice is one keyboard row.
	SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]string) error
	// RemoveKeyboard sends text and clears any reply keyboard on the chat.
	RemoveKeyboard(ctx context.Context, chatID int64, text string) error
}
