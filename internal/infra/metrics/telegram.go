package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		telegramUpdatesTotal,
		telegramSendFailuresTotal,
	)
}

var (
	telegramUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_updates_total",
			Help: "Inbound updates by kind.",
		},
		[]string{"kind"}, // 'command', 'text', 'photo', 'other'
	)

	telegramSendFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_send_failures_total",
			Help: "Outbound messages that Telegram rejected or timed out.",
		},
	)
)

func IncTelegramUpdate(kind string) { telegramUpdatesTotal.WithLabelValues(kind).Inc() }
func IncTelegramSendFailure()       { telegramSendFailuresTotal.Inc() }
