// Package metrics exposes the bot's Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timesheetbot_notifications_sent_total",
		Help: "Reminder notifications dispatched to users.",
	})

	EntriesRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timesheetbot_entries_registered_total",
		Help: "Successful timesheet entry updates.",
	})

	EntriesExported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timesheetbot_entries_exported_total",
		Help: "Entries mirrored to the spreadsheet.",
	})

	InteractionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timesheetbot_interaction_errors_total",
		Help: "Failed Slack interaction requests by error kind.",
	}, []string{"kind"})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
