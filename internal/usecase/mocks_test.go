package usecase

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"telegram-tutoring-bot/internal/domain"
	"telegram-tutoring-bot/internal/domain/model"
	"telegram-tutoring-bot/internal/domain/ports/repository"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(os.Stdout).Level(zerolog.Disabled)
	return &l
}

// memStudentRepo is a small in-memory implementation used by unit tests.
type memStudentRepo struct {
	mu    sync.RWMutex
	store map[int64]*model.Student
}

func newMemStudentRepo() *memStudentRepo {
	return &memStudentRepo{store: make(map[int64]*model.Student)}
}

func (m *memStudentRepo) Upsert(ctx context.Context, tx repository.Tx, s *model.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.store[s.ChatID] = &cp
	return nil
}

func (m *memStudentRepo) Find(ctx context.Context, tx repository.Tx, chatID int64) (*model.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[chatID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStudentRepo) UpdateStatus(ctx context.Context, tx repository.Tx, chatID int64, status model.StudentStatus, joinedAt, expiresAt *time.Time, startLink string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.store[chatID]
	if !ok {
		return domain.ErrNotFound
	}
	s.Status = status
	if joinedAt != nil {
		t := *joinedAt
		s.JoinedAt = &t
	}
	if expiresAt != nil {
		t := *expiresAt
		s.ExpiresAt = &t
	}
	if startLink != "" {
		s.StartLink = startLink
	}
	return nil
}

func (m *memStudentRepo) ListByStatus(ctx context.Context, tx repository.Tx, status model.StudentStatus) ([]*model.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Student
	for _, s := range m.store {
		if s.Status == status {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStudentRepo) Delete(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, chatID)
	return nil
}

func (m *memStudentRepo) CountByStatus(ctx context.Context, tx repository.Tx) (map[model.StudentStatus]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[model.StudentStatus]int)
	for _, s := range m.store {
		counts[s.Status]++
	}
	return counts, nil
}

func (m *memStudentRepo) LockRow(ctx context.Context, tx repository.Tx, chatID int64) error {
	return nil
}

// memStateRepo keeps conversation state in a map, like the Redis repo but
// without a TTL.
type memStateRepo struct {
	mu    sync.RWMutex
	store map[int64]*repository.ConversationState
}

func newMemStateRepo() *memStateRepo {
	return &memStateRepo{store: make(map[int64]*repository.ConversationState)}
}

func (m *memStateRepo) SetState(ctx context.Context, chatID int64, state *repository.ConversationState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *state
	cp.Data = make(map[string]string, len(state.Data))
	for k, v := range state.Data {
		cp.Data[k] = v
	}
	m.store[chatID] = &cp
	return nil
}

func (m *memStateRepo) GetState(ctx context.Context, chatID int64) (*repository.ConversationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.store[chatID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	cp.Data = make(map[string]string, len(s.Data))
	for k, v := range s.Data {
		cp.Data[k] = v
	}
	return &cp, nil
}

func (m *memStateRepo) ClearState(ctx context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, chatID)
	return nil
}

type memNotificationLog struct {
	mu   sync.Mutex
	seen map[int64]map[string]bool
}

func newMemNotificationLog() *memNotificationLog {
	return &memNotificationLog{seen: make(map[int64]map[string]bool)}
}

func (m *memNotificationLog) Save(ctx context.Context, tx repository.Tx, chatID int64, kind string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[chatID] == nil {
		m.seen[chatID] = make(map[string]bool)
	}
	m.seen[chatID][kind] = true
	return nil
}

func (m *memNotificationLog) Exists(ctx context.Context, tx repository.Tx, chatID int64, kind string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[chatID][kind], nil
}

// memTxManager runs the callback without a real transaction.
type memTxManager struct{}

func (memTxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, nil)
}

// sentMessage records one outbound call on the recording bot.
type sentMessage struct {
	ChatID  int64
	Text    string
	FileID  string
	Rows    [][]string
	Kind    string // 'text', 'photo', 'keyboard', 'remove_keyboard'
	Caption string
}

// recordingBot captures outbound traffic; SendErrFor simulates transport
// failures per recipient.
type recordingBot struct {
	mu         sync.Mutex
	Sent       []sentMessage
	SendErrFor map[int64]error
}

func newRecordingBot() *recordingBot {
	return &recordingBot{SendErrFor: make(map[int64]error)}
}

func (b *recordingBot) SendMessage(ctx context.Context, chatID int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.SendErrFor[chatID]; err != nil {
		return err
	}
	b.Sent = append(b.Sent, sentMessage{ChatID: chatID, Text: text, Kind: "text"})
	return nil
}

func (b *recordingBot) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.SendErrFor[chatID]; err != nil {
		return err
	}
	b.Sent = append(b.Sent, sentMessage{ChatID: chatID, FileID: fileID, Caption: caption, Kind: "photo"})
	return nil
}

func (b *recordingBot) SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.SendErrFor[chatID]; err != nil {
		return err
	}
	b.Sent = append(b.Sent, sentMessage{ChatID: chatID, Text: text, Rows: rows, Kind: "keyboard"})
	return nil
}

func (b *recordingBot) RemoveKeyboard(ctx context.Context, chatID int64, text string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.SendErrFor[chatID]; err != nil {
		return err
	}
	b.Sent = append(b.Sent, sentMessage{ChatID: chatID, Text: text, Kind: "remove_keyboard"})
	return nil
}

// lastTo returns the most recent message sent to chatID, if any.
func (b *recordingBot) lastTo(chatID int64) *sentMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.Sent) - 1; i >= 0; i-- {
		if b.Sent[i].ChatID == chatID {
			return &b.Sent[i]
		}
	}
	return nil
}

func (b *recordingBot) countTo(chatID int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, m := range b.Sent {
		if m.ChatID == chatID {
			n++
		}
	}
	return n
}
