package sweeper

import (
    "context"
    "fmt"
    "strings"
    "time"

    "github.com/apex/log"
    "github.com/jonboulle/clockwork"
    "github.com/robfig/cron/v3"

    "nrp/internal/domain"
    "nrp/internal/metrics"
    "nrp/internal/notify"
    "nrp/internal/ports"
)

// Rescheduler enqueues the pending lifecycle step for a record.
type Rescheduler interface {
    Reschedule(ctx context.Context, rec domain.ServiceRecord) (ports.JobKind, error)
}

type Fairness interface {
    ResetOffers()
}

type Config struct {
    StaleAfter     time.Duration
    RunningTimeout time.Duration
    Timeframe      string
}

// Sweeper runs periodic maintenance: it recovers records the lifecycle lost
// track of, requeues jobs orphaned by a crashed worker and posts the daily
// compliance snapshot.
type Sweeper struct {
    records     ports.RecordRepository
    jobs        ports.JobRepository
    rescheduler Rescheduler
    compliance  ports.Compliance
    notifier    ports.Notifier
    fairness    Fairness
    clock       clockwork.Clock
    cfg         Config
}

func New(records ports.RecordRepository, jobs ports.JobRepository, r Rescheduler, c ports.Compliance, n ports.Notifier, f Fairness, clock clockwork.Clock, cfg Config) *Sweeper {
    if clock == nil { clock = clockwork.NewRealClock() }
    if cfg.StaleAfter <= 0 { cfg.StaleAfter = 15 * time.Minute }
    if cfg.RunningTimeout <= 0 { cfg.RunningTimeout = 5 * time.Minute }
    if cfg.Timeframe == "" { cfg.Timeframe = "30d" }
    return &Sweeper{records: records, jobs: jobs, rescheduler: r, compliance: c, notifier: n, fairness: f, clock: clock, cfg: cfg}
}

var inFlight = []domain.Status{
    domain.StatusNew, domain.StatusAssigned, domain.StatusDeclined,
    domain.StatusAccepted, domain.StatusClaimSubmitted,
}

// SweepStale requeues abandoned running jobs, then gives every non-terminal
// record untouched for StaleAfter with no pending job and no dead-lettered
// step its next step again.
// It returns the number of records rescheduled.
func (s *Sweeper) SweepStale(ctx context.Context) (int, error) {
    now := s.clock.Now().UTC()
    requeued, err := s.jobs.RequeueStale(ctx, now.Add(-s.cfg.RunningTimeout))
    if err != nil { return 0, fmt.Errorf("requeue stale jobs: %w", err) }
    if requeued > 0 {
        log.WithField("jobs", requeued).Warn("requeued jobs abandoned while running")
    }

    recs, err := s.records.ListRecords(ctx, ports.RecordFilter{
        UpdatedBefore: now.Add(-s.cfg.StaleAfter),
        Statuses:      inFlight,
        Limit:         500,
    })
    if err != nil { return 0, fmt.Errorf("list stale records: %w", err) }

    n := 0
    for _, rec := range recs {
        // A dead-lettered step has used its attempts; the record waits for
        // an operator or a client action.
        if rec.LastError != "" { continue }
        pending, err := s.jobs.HasPending(ctx, rec.ID)
        if err != nil { return n, fmt.Errorf("check pending jobs: %w", err) }
        if pending { continue }
        kind, err := s.rescheduler.Reschedule(ctx, rec)
        if err != nil { return n, fmt.Errorf("reschedule %s: %w", rec.ID, err) }
        if kind == "" { continue }
        log.WithFields(log.Fields{"record": rec.ID, "status": rec.Status, "kind": kind}).Warn("stuck record rescheduled")
        metrics.StuckRescheduled.Inc()
        n++
    }
    return n, nil
}

// PostCompliance sends the snapshot to the ops channel.
func (s *Sweeper) PostCompliance(ctx context.Context) error {
    snap, err := s.compliance.Summary(ctx, s.cfg.Timeframe)
    if err != nil { return err }
    if s.notifier == nil { return nil }
    return s.notifier.Send(ctx, ports.Message{To: ports.OpsRecipient, Template: notify.ComplianceDaily, Data: map[string]any{
        "Timeframe":    snap.Timeframe,
        "Compliant":    snap.Contractors.Compliant,
        "Total":        snap.Contractors.Total,
        "CompliantPct": snap.Contractors.CompliantPct,
        "Records":      snap.Records.Total,
        "Dead":         snap.Records.DeadLetteredJobs,
    }})
}

// Schedules are standard 5-field cron expressions; empty disables a task.
type Schedules struct {
    Compliance    string
    Sweep         string
    FairnessReset string
}

// Start registers the tasks and runs the scheduler until ctx is cancelled.
func Start(ctx context.Context, s *Sweeper, sch Schedules, loc *time.Location) (*cron.Cron, error) {
    if loc == nil { loc = time.UTC }
    parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
    c := cron.New(cron.WithParser(parser), cron.WithLocation(loc))

    tasks := []struct {
        name, spec string
        run        func(context.Context) error
    }{
        {"compliance", sch.Compliance, s.PostCompliance},
        {"sweep", sch.Sweep, func(ctx context.Context) error {
            _, err := s.SweepStale(ctx)
            return err
        }},
        {"fairness-reset", sch.FairnessReset, func(context.Context) error {
            if s.fairness != nil { s.fairness.ResetOffers() }
            return nil
        }},
    }
    for _, t := range tasks {
        spec := strings.TrimSpace(t.spec)
        if spec == "" {
            log.WithField("task", t.name).Info("scheduled task disabled")
            continue
        }
        name, run := t.name, t.run
        if _, err := c.AddFunc(spec, func() {
            if err := run(ctx); err != nil {
                log.WithError(err).WithField("task", name).Error("scheduled task failed")
            }
        }); err != nil {
            return nil, fmt.Errorf("schedule %s %q: %w", name, spec, err)
        }
        log.WithFields(log.Fields{"task": name, "cron": spec}).Info("scheduled task registered")
    }
    c.Start()
    go func() {
        <-ctx.Done()
        <-c.Stop().Done()
    }()
    return c, nil
}
