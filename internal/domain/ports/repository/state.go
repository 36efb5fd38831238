package repository

import (
	"context"
)

// ConversationStep names the field the registration dialog is collecting.
type ConversationStep string

const (
	StepAwaitName        ConversationStep = "await_name"
	StepAwaitGrade       ConversationStep = "await_grade"
	StepAwaitExam        ConversationStep = "await_exam"
	StepAwaitSubjects    ConversationStep = "await_subjects"
	StepAwaitParentPhone ConversationStep = "await_parent_phone"
	StepAwaitSchedule    ConversationStep = "await_schedule"
	StepAwaitPlan        ConversationStep = "await_plan"
	StepAwaitTarget      ConversationStep = "await_target"
	StepAwaitReceipt     ConversationStep = "await_receipt"
)

// ConversationState holds a user's progress through the registration dialog.
// It is ephemeral: destroyed when the dialog completes or the user resets.
type ConversationState struct {
	Step ConversationStep  `json:"step"`
	Data map[string]string `json:"data"` // collected answers, keyed by field name
}

// NewConversationState starts a dialog at the first step.
func NewConversationState() *ConversationState {
	return &ConversationState{Step: StepAwaitName, Data: make(map[string]string)}
}

// ConversationStateRepository is the port for the per-chat dialog state.
// Implementations must return domain.ErrNotFound when no dialog is active.
type ConversationStateRepository interface {
	SetState(ctx context.Context, chatID int64, state *ConversationState) error
	GetState(ctx context.Context, chatID int64) (*ConversationState, error)
	ClearState(ctx context.Context, chatID int64) error
}
