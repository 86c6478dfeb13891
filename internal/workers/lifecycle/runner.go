package lifecycle

import (
    "context"
    "sync"
    "time"

    "github.com/apex/log"
    "github.com/jonboulle/clockwork"
    "github.com/sethvargo/go-retry"

    "nrp/internal/metrics"
    "nrp/internal/ports"
)

// Processor performs the work for one lifecycle job.
type Processor interface {
    Process(ctx context.Context, job ports.LifecycleJob) error
    DeadLetter(ctx context.Context, job ports.LifecycleJob, reason string)
}

type Options struct {
    Concurrency  int
    PollInterval time.Duration
    RetryBase    time.Duration
    RetryCap     time.Duration
    MaxAttempts  int
    Clock        clockwork.Clock
}

func (o Options) withDefaults() Options {
    if o.PollInterval <= 0 { o.PollInterval = 500 * time.Millisecond }
    if o.RetryBase <= 0 { o.RetryBase = 5 * time.Second }
    if o.RetryCap <= 0 { o.RetryCap = 10 * time.Minute }
    if o.MaxAttempts <= 0 { o.MaxAttempts = 5 }
    if o.Clock == nil { o.Clock = clockwork.NewRealClock() }
    return o
}

// Backoff is the delay before retrying a job that has failed attempts times.
func (o Options) Backoff(attempts int) time.Duration {
    o = o.withDefaults()
    b := retry.WithCappedDuration(o.RetryCap, retry.NewExponential(o.RetryBase))
    var d time.Duration
    for i := 0; i < attempts; i++ {
        d, _ = b.Next()
    }
    return d
}

// Run starts worker goroutines that claim due jobs and process them. It
// returns once ctx is cancelled and in-flight jobs have settled.
func Run(ctx context.Context, repo ports.JobRepository, p Processor, opts Options) {
    opts = opts.withDefaults()
    if opts.Concurrency < 1 { return }
    jobsCh := make(chan ports.LifecycleJob, opts.Concurrency)

    // dispatcher loop
    go func() {
        ticker := opts.Clock.NewTicker(opts.PollInterval)
        defer ticker.Stop()
        for {
            select {
            case <-ctx.Done():
                close(jobsCh)
                return
            case <-ticker.Chan():
                for {
                    job, found, err := repo.ClaimNext(ctx, opts.Clock.Now())
                    if err != nil {
                        if ctx.Err() == nil {
                            log.WithError(err).Error("job claim error")
                        }
                        break
                    }
                    if !found { break }
                    select {
                    case jobsCh <- job:
                    case <-ctx.Done():
                        // claimed but not started; the stale sweep requeues it
                        close(jobsCh)
                        return
                    }
                }
            }
        }
    }()

    var wg sync.WaitGroup
    for i := 0; i < opts.Concurrency; i++ {
        wg.Add(1)
        go func(idx int) {
            defer wg.Done()
            for job := range jobsCh {
                metrics.JobsInFlight.Inc()
                settle(context.WithoutCancel(ctx), repo, p, job, p.Process(ctx, job), opts, idx)
                metrics.JobsInFlight.Dec()
            }
        }(i)
    }
    wg.Wait()
}

// ProcessDue claims and processes every job due now, synchronously, using the
// same settle rules as the workers. It returns how many jobs it ran.
func ProcessDue(ctx context.Context, repo ports.JobRepository, p Processor, opts Options) (int, error) {
    opts = opts.withDefaults()
    n := 0
    for {
        job, found, err := repo.ClaimNext(ctx, opts.Clock.Now())
        if err != nil { return n, err }
        if !found { return n, nil }
        settle(ctx, repo, p, job, p.Process(ctx, job), opts, -1)
        n++
    }
}

func settle(ctx context.Context, repo ports.JobRepository, p Processor, job ports.LifecycleJob, err error, opts Options, worker int) {
    entry := log.WithFields(log.Fields{"worker": worker, "job": job.ID, "record": job.RecordID, "kind": job.Kind, "attempt": job.Attempts})
    kind := string(job.Kind)
    if err == nil {
        metrics.JobsProcessed.WithLabelValues(kind, "completed").Inc()
        if err := repo.MarkCompleted(ctx, job.ID); err != nil {
            entry.WithError(err).Error("complete err")
        }
        return
    }
    limit := job.MaxAttempts
    if limit <= 0 { limit = opts.MaxAttempts }
    if job.Attempts >= limit {
        metrics.JobsProcessed.WithLabelValues(kind, "dead").Inc()
        entry.WithError(err).Error("job dead-lettered")
        if err := repo.MarkDead(ctx, job.ID, err.Error()); err != nil {
            entry.WithError(err).Error("mark dead err")
        }
        p.DeadLetter(ctx, job, err.Error())
        return
    }
    metrics.JobsProcessed.WithLabelValues(kind, "retried").Inc()
    runAt := opts.Clock.Now().Add(opts.Backoff(job.Attempts))
    entry.WithError(err).WithField("retry_at", runAt).Warn("job failed, retrying")
    if err := repo.Reschedule(ctx, job.ID, runAt, err.Error()); err != nil {
        entry.WithError(err).Error("reschedule err")
    }
}
