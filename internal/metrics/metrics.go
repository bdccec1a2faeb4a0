package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

var (
	// Registrations counts register/unregister attempts by outcome
	// (ok, not_registered, already_registered, no_seats, not_found, error).
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conferencecentral_registrations_total",
		Help: "Conference registration and unregistration attempts by outcome",
	}, []string{"operation", "result"})

	TasksEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conferencecentral_tasks_enqueued_total",
		Help: "Tasks handed to the task queue by kind and result",
	}, []string{"kind", "result"})

	TasksProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "conferencecentral_tasks_processed_total",
		Help: "Tasks executed by the task worker by kind and result",
	}, []string{"kind", "result"})

	NearlySoldOutConferences = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "conferencecentral_nearly_sold_out_conferences",
		Help: "Conferences listed in the last computed announcement",
	})
)

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
