package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once
	pending      []prometheus.Collector
)

// register enqueues collectors from each metrics file's init().
func register(cs ...prometheus.Collector) {
	pending = append(pending, cs...)
}

// MustRegister registers every enqueued collector with the default
// Prometheus registry. Safe to call more than once; only the first
// call does the work.
func MustRegister() {
	registerOnce.Do(func() {
		if len(pending) > 0 {
			prometheus.MustRegister(pending...)
		}
	})
}
