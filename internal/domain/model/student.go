package model

import (
	"math"
	"time"

	"telegram-tutoring-bot/internal/domain"
)

type StudentStatus string

const (
	StudentStatusPending  StudentStatus = "pending"
	StudentStatusApproved StudentStatus = "approved"
	StudentStatusExpired  StudentStatus = "expired"
)

// Student is the enrollment record for one Telegram chat. A chat with no
// row is unregistered. JoinedAt/ExpiresAt stay nil until approval sets both.
type Student struct {
	ChatID         int64
	Name           string
	Grade          string
	ExamInfo       string
	Subjects       string
	ParentPhone    string
	WeeklySchedule string
	Plan           Plan
	Target         string
	Status         StudentStatus
	JoinedAt       *time.Time
	ExpiresAt      *time.Time
	ReceiptFileID  string
	StartLink      string
}

// NewPendingStudent validates and constructs a freshly submitted enrollment.
// The receipt file ID is fixed here and never changes afterwards.
func NewPendingStudent(chatID int64, name, grade, examInfo, subjects, parentPhone, schedule string, plan Plan, target, receiptFileID string) (*Student, error) {
	if chatID <= 0 || name == "" || receiptFileID == "" || !plan.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	return &Student{
		ChatID:         chatID,
		Name:           name,
		Grade:          grade,
		ExamInfo:       examInfo,
		Subjects:       subjects,
		ParentPhone:    parentPhone,
		WeeklySchedule: schedule,
		Plan:           plan,
		Target:         target,
		Status:         StudentStatusPending,
		ReceiptFileID:  receiptFileID,
	}, nil
}

func (s *Student) IsZero() bool { return s == nil || s.ChatID == 0 }

// Approve transitions a pending record to approved, stamping the join and
// expiry dates from the stored plan. Returns a modified copy.
func (s *Student) Approve(now time.Time, startLink string) (*Student, error) {
	if s.Status != StudentStatusPending {
		return nil, domain.ErrInvalidTransition
	}
	if startLink == "" {
		return nil, domain.ErrInvalidArgument
	}
	expires := now.Add(s.Plan.Duration())
	cp := *s
	cp.Status = StudentStatusApproved
	cp.JoinedAt = &now
	cp.ExpiresAt = &expires
	cp.StartLink = startLink
	return &cp, nil
}

// ExpiredAt reports whether an approved subscription has lapsed at t.
func (s *Student) ExpiredAt(t time.Time) bool {
	return s.Status == StudentStatusApproved && s.ExpiresAt != nil && !t.Before(*s.ExpiresAt)
}

// RemainingDays is the whole number of days left before expiry, rounded up.
func (s *Student) RemainingDays(now time.Time) int {
	if s.ExpiresAt == nil {
		return 0
	}
	left := s.ExpiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Hours() / 24))
}
