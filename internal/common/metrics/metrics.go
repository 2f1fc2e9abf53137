// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_events_handled_total",
			Help: "Total number of gateway events handled by the bridge",
		},
		[]string{"event_type"},
	)

	RecordsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_records_created_total",
			Help: "Total number of remote records created for new tickets",
		},
	)

	MessagesAppended = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bridge_messages_appended_total",
			Help: "Total number of messages appended to remote records",
		},
	)

	RemoteCallFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_remote_call_failures_total",
			Help: "Total number of failed workspace API calls",
		},
		[]string{"operation"},
	)
)
