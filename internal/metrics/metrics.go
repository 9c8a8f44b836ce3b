package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	syncPushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screenpulse",
			Name:      "sync_pushes_total",
			Help:      "Total number of sync pushes",
		},
		[]string{"status"}, // ok, invalid_report, device_not_found, error
	)

	recordsMergedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "screenpulse",
			Name:      "records_merged_total",
			Help:      "Total number of usage records merged",
		},
	)

	eventsIngestedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "screenpulse",
			Name:      "activity_events_ingested_total",
			Help:      "Total number of activity events ingested",
		},
	)

	screenshotsStoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "screenpulse",
			Name:      "screenshots_stored_total",
			Help:      "Total number of screenshots stored",
		},
	)

	screenshotsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "screenpulse",
			Name:      "screenshots_evicted_total",
			Help:      "Total number of screenshots evicted by retention",
		},
	)

	loginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "screenpulse",
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts",
		},
		[]string{"status"}, // success, invalid_credentials
	)
)

func RecordPush(status string)  { syncPushesTotal.WithLabelValues(status).Inc() }
func RecordsMerged(n int)       { recordsMergedTotal.Add(float64(n)) }
func EventsIngested(n int)      { eventsIngestedTotal.Add(float64(n)) }
func ScreenshotStored()         { screenshotsStoredTotal.Inc() }
func ScreenshotsEvicted(n int)  { screenshotsEvictedTotal.Add(float64(n)) }
func RecordLogin(status string) { loginAttemptsTotal.WithLabelValues(status).Inc() }

// Handler returns the Prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}
