package metrics

import (
	"telegram-tutoring-bot/internal/domain/model"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		enrollmentsStartedTotal,
		enrollmentsSubmittedTotal,
		approvalsTotal,
		subscriptionsExpiredTotal,
		studentsTotal,
	)
}

var (
	enrollmentsStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enrollments_started_total",
			Help: "Registration dialogs begun.",
		},
	)

	enrollmentsSubmittedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "enrollments_submitted_total",
			Help: "Completed registrations committed as pending.",
		},
	)

	approvalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approvals_total",
			Help: "Admin approve commands by outcome.",
		},
		[]string{"outcome"}, // 'ok', 'malformed', 'unknown_student', 'error'
	)

	subscriptionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_expired_total",
			Help: "Total number of subscriptions lapsed by the expiry sweeper.",
		},
	)

	studentsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "students_total",
			Help: "Current number of student records by status.",
		},
		[]string{"status"}, // 'pending', 'approved', 'expired'
	)
)

func IncEnrollmentStarted()   { enrollmentsStartedTotal.Inc() }
func IncEnrollmentSubmitted() { enrollmentsSubmittedTotal.Inc() }

func IncApproval(outcome string) { approvalsTotal.WithLabelValues(outcome).Inc() }

func IncSubscriptionsExpired(count int) {
	subscriptionsExpiredTotal.Add(float64(count))
}

func SetStudentsTotal(counts map[model.StudentStatus]int) {
	statuses := []model.StudentStatus{
		model.StudentStatusPending,
		model.StudentStatusApproved,
		model.StudentStatusExpired,
	}
	for _, status := range statuses {
		studentsTotal.WithLabelValues(string(status)).Set(float64(counts[status]))
	}
}
