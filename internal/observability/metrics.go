// Package observability holds the process logger and Prometheus collectors.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	athletesRegistered = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "domain",
		Name:      "athletes_registered_total",
		Help:      "Number of athletes registered.",
	})
	exercisesLogged = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "domain",
		Name:      "exercises_logged_total",
		Help:      "Number of exercise entries recorded.",
	})
	exerciseDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "exercise_tracker",
		Subsystem: "domain",
		Name:      "exercise_duration_minutes",
		Help:      "Distribution of recorded exercise durations in minutes.",
		Buckets:   []float64{5, 10, 15, 30, 45, 60, 90, 120, 180},
	})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "exercise_tracker",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests handled, labeled by route, method and status code.",
	}, []string{"route", "method", "code"})
	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "exercise_tracker",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency of HTTP requests, labeled by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(athletesRegistered, exercisesLogged, exerciseDuration, httpRequests, httpDuration)
}

// RecordAthleteRegistered counts a successful registration.
func RecordAthleteRegistered() {
	athletesRegistered.Inc()
}

// RecordExerciseLogged counts a stored exercise and observes its duration.
func RecordExerciseLogged(durationMin float64) {
	exercisesLogged.Inc()
	exerciseDuration.Observe(durationMin)
}

// RecordHTTPRequest observes one completed request.
func RecordHTTPRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
