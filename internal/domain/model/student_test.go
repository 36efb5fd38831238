package model

import (
	"errors"
	"testing"
	"time"

	"telegram-tutoring-bot/internal/domain"
)

func TestParsePlan(t *testing.T) {
	cases := []struct {
		in      string
		want    Plan
		wantErr bool
	}{
		{"2 Week - 300 LKR", PlanTwoWeek, false},
		{"1 Month - 700 LKR", PlanOneMonth, false},
		{"2 week", PlanTwoWeek, false},
		{"TWO WEEK", PlanTwoWeek, false},
		{"one month please", PlanOneMonth, false},
		{"", "", true},
		{"3 months", "", true},
		{"fortnight", "", true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParsePlan(tc.in)
			if tc.wantErr {
				if !errors.Is(err, domain.ErrUnknownPlan) {
					t.Fatalf("err = %v, want ErrUnknownPlan", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePlan(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParsePlan(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestPlanDuration(t *testing.T) {
	if d := PlanTwoWeek.Duration(); d != 14*24*time.Hour {
		t.Errorf("two week duration = %v", d)
	}
	if d := PlanOneMonth.Duration(); d != 30*24*time.Hour {
		t.Errorf("one month duration = %v", d)
	}
}

func TestNewPendingStudent(t *testing.T) {
	if _, err := NewPendingStudent(0, "A", "", "", "", "", "", PlanTwoWeek, "", "r"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Error("zero chat id must be rejected")
	}
	if _, err := NewPendingStudent(1, "", "", "", "", "", "", PlanTwoWeek, "", "r"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Error("empty name must be rejected")
	}
	if _, err := NewPendingStudent(1, "A", "", "", "", "", "", PlanTwoWeek, "", ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Error("missing receipt must be rejected")
	}
	if _, err := NewPendingStudent(1, "A", "", "", "", "", "", Plan("WEEKLY"), "", "r"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Error("invalid plan must be rejected")
	}

	s, err := NewPendingStudent(1, "A", "10", "O/L 2026", "Maths", "+94", "Sat", PlanOneMonth, "None", "r")
	if err != nil {
		t.Fatalf("NewPendingStudent: %v", err)
	}
	if s.Status != StudentStatusPending {
		t.Errorf("status = %q", s.Status)
	}
	if s.JoinedAt != nil || s.ExpiresAt != nil || s.StartLink != "" {
		t.Errorf("approval fields must start unset: %+v", s)
	}
}

func TestStudentApprove(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, err := NewPendingStudent(1, "A", "10", "O/L 2026", "Maths", "+94", "Sat", PlanTwoWeek, "None", "r")
	if err != nil {
		t.Fatalf("NewPendingStudent: %v", err)
	}

	a, err := s.Approve(now, "https://t.me/+class")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if a.Status != StudentStatusApproved {
		t.Errorf("status = %q", a.Status)
	}
	if !a.JoinedAt.Equal(now) {
		t.Errorf("joined_at = %v", a.JoinedAt)
	}
	if want := now.Add(14 * 24 * time.Hour); !a.ExpiresAt.Equal(want) {
		t.Errorf("expires_at = %v, want %v", a.ExpiresAt, want)
	}
	if s.Status != StudentStatusPending {
		t.Error("Approve must not mutate the receiver")
	}

	if _, err := a.Approve(now, "https://t.me/+again"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("re-approving err = %v, want ErrInvalidTransition", err)
	}
	if _, err := s.Approve(now, ""); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("empty link err = %v, want ErrInvalidArgument", err)
	}
}

func TestExpiredAtAndRemainingDays(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s, _ := NewPendingStudent(1, "A", "10", "O/L 2026", "Maths", "+94", "Sat", PlanTwoWeek, "None", "r")

	if s.ExpiredAt(now) {
		t.Error("pending record is never expired")
	}

	a, _ := s.Approve(now, "https://t.me/+class")

	cases := []struct {
		name    string
		at      time.Time
		expired bool
		days    int
	}{
		{"just approved", now, false, 14},
		{"half a day in", now.Add(12 * time.Hour), false, 14},
		{"one day in", now.Add(24 * time.Hour), false, 13},
		{"an hour left", a.ExpiresAt.Add(-time.Hour), false, 1},
		{"exactly due", *a.ExpiresAt, true, 0},
		{"well overdue", a.ExpiresAt.Add(48 * time.Hour), true, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := a.ExpiredAt(tc.at); got != tc.expired {
				t.Errorf("ExpiredAt = %v, want %v", got, tc.expired)
			}
			if got := a.RemainingDays(tc.at); got != tc.days {
				t.Errorf("RemainingDays = %d, want %d", got, tc.days)
			}
		})
	}
}
