package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-tutoring-bot/internal/domain"
	"telegram-tutoring-bot/internal/domain/ports/repository"
)

// Ensure the adapter implements the port interface.
var _ repository.ConversationStateRepository = (*ConversationStateRepo)(nil)

// ConversationStateRepo keeps per-chat dialog progress in Redis with a TTL,
// so abandoned registrations evaporate on their own and a process restart
// does not strand users mid-dialog.
type ConversationStateRepo struct {
	client *Client
	ttl    time.Duration
}

func NewConversationStateRepo(client *Client, ttl time.Duration) *ConversationStateRepo {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ConversationStateRepo{client: client, ttl: ttl}
}

func (s *ConversationStateRepo) stateKey(chatID int64) string {
	return fmt.Sprintf("conv_state:%d", chatID)
}

func (s *ConversationStateRepo) SetState(ctx context.Context, chatID int64, state *repository.ConversationState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.stateKey(chatID), data, s.ttl)
}

func (s *ConversationStateRepo) GetState(ctx context.Context, chatID int64) (*repository.ConversationState, error) {
	data, err := s.client.Get(ctx, s.stateKey(chatID))
	if err != nil {
		if IsNil(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var state repository.ConversationState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *ConversationStateRepo) ClearState(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, s.stateKey(chatID))
}
