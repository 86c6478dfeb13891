package httpadapter

import (
    "net"
    "net/http"
    "strconv"
    "sync"
    "time"

    "github.com/apex/log"
    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "golang.org/x/time/rate"

    api "nrp/internal/api"
    "nrp/internal/metrics"
)

func requestLogger(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
        start := time.Now()
        next.ServeHTTP(ww, r)
        elapsed := time.Since(start)

        route := "unmatched"
        if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
            route = rc.RoutePattern()
        }
        metrics.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
        metrics.HTTPDurationSeconds.WithLabelValues(route).Observe(elapsed.Seconds())

        entry := log.WithFields(log.Fields{
            "method":     r.Method,
            "path":       r.URL.Path,
            "status":     ww.Status(),
            "bytes":      ww.BytesWritten(),
            "duration":   elapsed.String(),
            "request_id": middleware.GetReqID(r.Context()),
        })
        if ww.Status() >= http.StatusInternalServerError {
            entry.Warn("request")
        } else {
            entry.Info("request")
        }
    })
}

// clientLimiter hands out one token bucket per client address. Buckets idle
// for longer than ttl are dropped on the next sweep.
type clientLimiter struct {
    mu      sync.Mutex
    rps     rate.Limit
    burst   int
    ttl     time.Duration
    clients map[string]*client
    swept   time.Time
}

type client struct {
    limiter *rate.Limiter
    seen    time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
    return &clientLimiter{rps: rate.Limit(rps), burst: burst, ttl: 10 * time.Minute, clients: map[string]*client{}}
}

func (l *clientLimiter) allow(key string, now time.Time) bool {
    l.mu.Lock()
    defer l.mu.Unlock()
    if now.Sub(l.swept) > l.ttl {
        for k, c := range l.clients {
            if now.Sub(c.seen) > l.ttl { delete(l.clients, k) }
        }
        l.swept = now
    }
    c, ok := l.clients[key]
    if !ok {
        c = &client{limiter: rate.NewLimiter(l.rps, l.burst)}
        l.clients[key] = c
    }
    c.seen = now
    return c.limiter.AllowN(now, 1)
}

// limit rejects writes from a client that exceeds its budget. Reads are not
// limited.
func (l *clientLimiter) limit(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Method == http.MethodGet || r.Method == http.MethodHead {
            next.ServeHTTP(w, r)
            return
        }
        host, _, err := net.SplitHostPort(r.RemoteAddr)
        if err != nil { host = r.RemoteAddr }
        if !l.allow(host, time.Now()) {
            metrics.RateLimited.Inc()
            log.WithFields(log.Fields{"client": host, "path": r.URL.Path}).Warn("rate limited")
            w.Header().Set("Retry-After", "1")
            writeJSON(w, http.StatusTooManyRequests, api.Error{Code: "rate_limited", Message: "too many requests"})
            return
        }
        next.ServeHTTP(w, r)
    })
}
