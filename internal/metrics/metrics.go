package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
        Namespace: "nrp",
        Subsystem: "http",
        Name:      "requests_total",
        Help:      "HTTP requests by route pattern, method and status code.",
    }, []string{"route", "method", "status"})

    HTTPDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
        Namespace: "nrp",
        Subsystem: "http",
        Name:      "request_duration_seconds",
        Help:      "HTTP request latency by route pattern.",
        Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
    }, []string{"route"})

    RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
        Namespace: "nrp",
        Subsystem: "http",
        Name:      "rate_limited_total",
        Help:      "Requests rejected by the per-client rate limiter.",
    })

    RecordsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
        Namespace: "nrp",
        Subsystem: "records",
        Name:      "created_total",
        Help:      "Service records created, by priority.",
    }, []string{"priority"})

    JobsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
        Namespace: "nrp",
        Subsystem: "lifecycle",
        Name:      "jobs_total",
        Help:      "Lifecycle jobs settled, by kind and result (completed|retried|dead).",
    }, []string{"kind", "result"})

    JobsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
        Namespace: "nrp",
        Subsystem: "lifecycle",
        Name:      "jobs_in_flight",
        Help:      "Lifecycle jobs currently being processed by workers.",
    })

    StuckRescheduled = prometheus.NewCounter(prometheus.CounterOpts{
        Namespace: "nrp",
        Subsystem: "sweeper",
        Name:      "rescheduled_total",
        Help:      "Stuck records given their next lifecycle step again.",
    })

    Notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
        Namespace: "nrp",
        Subsystem: "notify",
        Name:      "messages_total",
        Help:      "Notifications by template and result (sent|failed|dropped).",
    }, []string{"template", "result"})
)

// Register adds the collectors to the default registry. Safe to call more
// than once.
func Register() {
    once.Do(func() {
        prometheus.MustRegister(
            HTTPRequests,
            HTTPDurationSeconds,
            RateLimited,
            RecordsCreated,
            JobsProcessed,
            JobsInFlight,
            StuckRescheduled,
            Notifications,
        )
    })
}
