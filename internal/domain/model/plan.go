package model

import (
	"strings"
	"time"

	"telegram-tutoring-bot/internal/domain"
)

type Plan string

const (
	PlanTwoWeek  Plan = "TWO_WEEK"
	PlanOneMonth Plan = "ONE_MONTH"
)

// Duration returns the subscription length granted by the plan.
// Only two durations exist; anything else is a programming error.
func (p Plan) Duration() time.Duration {
	switch p {
	case PlanTwoWeek:
		return 14 * 24 * time.Hour
	case PlanOneMonth:
		return 30 * 24 * time.Hour
	}
	return 0
}

func (p Plan) Valid() bool {
	return p == PlanTwoWeek || p == PlanOneMonth
}

// ParsePlan classifies free-form selection text (keyboard labels like
// "2 Week - 300 LKR" or "1 Month - 700 LKR") into a plan. Unrecognized
// input yields domain.ErrUnknownPlan so the dialog can re-prompt instead
// of guessing.
func ParsePlan(text string) (Plan, error) {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "2 week") || strings.Contains(t, "two week"):
		return PlanTwoWeek, nil
	case strings.Contains(t, "1 month") || strings.Contains(t, "one month"):
		return PlanOneMonth, nil
	}
	return "", domain.ErrUnknownPlan
}
