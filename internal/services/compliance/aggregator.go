package compliance

import (
    "context"
    "math"
    "time"

    "github.com/jonboulle/clockwork"

    "nrp/internal/domain"
    "nrp/internal/ports"
)

const DefaultTimeframe = "30d"

var timeframes = map[string]time.Duration{
    "7d":   7 * 24 * time.Hour,
    "30d":  30 * 24 * time.Hour,
    "90d":  90 * 24 * time.Hour,
    "365d": 365 * 24 * time.Hour,
    "all":  0,
}

// ParseTimeframe maps a timeframe label to a window; zero means unbounded.
func ParseTimeframe(tf string) (string, time.Duration, error) {
    if tf == "" { tf = DefaultTimeframe }
    w, ok := timeframes[tf]
    if !ok {
        v := &domain.ValidationError{}
        v.Add("timeframe", "must be one of 7d, 30d, 90d, 365d, all")
        return "", 0, v
    }
    return tf, w, nil
}

// Compliant is the per-contractor predicate: valid certification, training,
// current insurance and activity inside the window.
func Compliant(c domain.Contractor, now time.Time, window time.Duration) bool {
    return c.HasValidCertification(now) && c.TrainingCompleted && c.InsuranceCurrent(now) && activeWithin(c, now, window)
}

func activeWithin(c domain.Contractor, now time.Time, window time.Duration) bool {
    if c.LastActive.IsZero() { return false }
    if window == 0 { return true }
    return !c.LastActive.Before(now.Add(-window))
}

// Summarize recomputes the snapshot from scratch.
func Summarize(contractors []domain.Contractor, records []domain.ServiceRecord, now time.Time, window time.Duration) domain.ComplianceSnapshot {
    var cc domain.ComplianceCounts
    for _, c := range contractors {
        cc.Total++
        if c.HasValidCertification(now) { cc.Certified++ }
        if c.TrainingCompleted { cc.Trained++ }
        if c.InsuranceCurrent(now) { cc.Insured++ }
        if c.DocumentsVerified() { cc.VerifiedDocuments++ }
        if activeWithin(c, now, window) { cc.RecentlyActive++ }
        if Compliant(c, now, window) { cc.Compliant++ }
    }
    cc.CertifiedPct = pct(cc.Certified, cc.Total)
    cc.TrainedPct = pct(cc.Trained, cc.Total)
    cc.InsuredPct = pct(cc.Insured, cc.Total)
    cc.VerifiedDocumentsPct = pct(cc.VerifiedDocuments, cc.Total)
    cc.RecentlyActivePct = pct(cc.RecentlyActive, cc.Total)
    cc.CompliantPct = pct(cc.Compliant, cc.Total)

    rc := domain.RecordCounts{ByStatus: map[domain.Status]int{}}
    for _, r := range records {
        if window > 0 && r.CreatedAt.Before(now.Add(-window)) { continue }
        rc.Total++
        rc.ByStatus[r.Status]++
    }
    return domain.ComplianceSnapshot{GeneratedAt: now, Contractors: cc, Records: rc}
}

func pct(n, total int) float64 {
    if total == 0 { return 0 }
    return math.Round(float64(n)/float64(total)*1000) / 10
}

type Service struct {
    contractors ports.ContractorRepository
    records     ports.RecordRepository
    jobs        ports.JobRepository
    clock       clockwork.Clock
}

func New(contractors ports.ContractorRepository, records ports.RecordRepository, jobs ports.JobRepository, clock clockwork.Clock) *Service {
    if clock == nil { clock = clockwork.NewRealClock() }
    return &Service{contractors: contractors, records: records, jobs: jobs, clock: clock}
}

func (s *Service) Summary(ctx context.Context, timeframe string) (domain.ComplianceSnapshot, error) {
    tf, window, err := ParseTimeframe(timeframe)
    if err != nil { return domain.ComplianceSnapshot{}, err }
    now := s.clock.Now()

    cs, err := s.contractors.ListContractors(ctx)
    if err != nil { return domain.ComplianceSnapshot{}, domain.Systemf("list contractors", err) }
    filter := ports.RecordFilter{}
    if window > 0 { filter.CreatedAfter = now.Add(-window) }
    recs, err := s.records.ListRecords(ctx, filter)
    if err != nil { return domain.ComplianceSnapshot{}, domain.Systemf("list records", err) }

    snap := Summarize(cs, recs, now, window)
    snap.Timeframe = tf
    if s.jobs != nil {
        dead, err := s.jobs.CountJobs(ctx, ports.JobDead)
        if err != nil { return domain.ComplianceSnapshot{}, domain.Systemf("count dead jobs", err) }
        snap.Records.DeadLetteredJobs = dead
    }
    return snap, nil
}

var _ ports.Compliance = (*Service)(nil)
