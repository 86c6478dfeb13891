package notify

import (
    "context"
    "sync"
    "time"

    "github.com/apex/log"
    "github.com/sethvargo/go-retry"

    "nrp/internal/metrics"
    "nrp/internal/ports"
)

// Transport delivers a rendered message. Email and chat adapters implement it.
type Transport interface {
    Deliver(ctx context.Context, msg Rendered) error
}

type Option func(*Dispatcher)

func WithRetry(attempts uint64, base time.Duration) Option {
    return func(d *Dispatcher) {
        d.attempts = attempts
        d.base = base
    }
}

// Dispatcher is a fire-and-forget ports.Notifier. Send renders synchronously
// and delivers in the background with exponential backoff; final failures
// are logged and dropped. Messages to ports.OpsRecipient go to the ops
// transport, everything else to email.
type Dispatcher struct {
    email    Transport
    ops      Transport
    attempts uint64
    base     time.Duration
    wg       sync.WaitGroup
}

func NewDispatcher(email, ops Transport, opts ...Option) *Dispatcher {
    d := &Dispatcher{email: email, ops: ops, attempts: 3, base: 500 * time.Millisecond}
    for _, o := range opts {
        o(d)
    }
    return d
}

func (d *Dispatcher) Send(ctx context.Context, msg ports.Message) error {
    r, err := render(msg.To, msg.Template, msg.Data)
    if err != nil { return err }
    t := d.email
    if msg.To == ports.OpsRecipient { t = d.ops }
    entry := log.WithFields(log.Fields{"template": msg.Template, "to": msg.To})
    if t == nil {
        entry.Debug("no transport configured, message dropped")
        metrics.Notifications.WithLabelValues(msg.Template, "dropped").Inc()
        return nil
    }

    ctx = context.WithoutCancel(ctx)
    d.wg.Add(1)
    go func() {
        defer d.wg.Done()
        b := retry.WithMaxRetries(d.attempts, retry.NewExponential(d.base))
        err := retry.Do(ctx, b, func(ctx context.Context) error {
            if err := t.Deliver(ctx, r); err != nil {
                entry.WithError(err).Debug("delivery attempt failed")
                return retry.RetryableError(err)
            }
            return nil
        })
        if err != nil {
            entry.WithError(err).Error("notification not delivered")
            metrics.Notifications.WithLabelValues(msg.Template, "failed").Inc()
            return
        }
        entry.Info("notification sent")
        metrics.Notifications.WithLabelValues(msg.Template, "sent").Inc()
    }()
    return nil
}

// Wait blocks until in-flight deliveries finish.
func (d *Dispatcher) Wait() { d.wg.Wait() }

var _ ports.Notifier = (*Dispatcher)(nil)
