package memory

import (
    "context"
    "fmt"
    "sort"
    "sync"
    "time"

    "nrp/internal/domain"
    "nrp/internal/ports"
)

// Store keeps everything in process memory behind one mutex. It backs the
// `memory` driver and most service tests.
type Store struct {
    mu          sync.Mutex
    records     map[string]domain.ServiceRecord
    contractors map[string]domain.Contractor
    jobs        map[string]*ports.LifecycleJob
    seq         []string
}

func New() *Store {
    return &Store{
        records:     map[string]domain.ServiceRecord{},
        contractors: map[string]domain.Contractor{},
        jobs:        map[string]*ports.LifecycleJob{},
    }
}

func (s *Store) Close() error { return nil }

func (s *Store) CreateRecord(_ context.Context, rec domain.ServiceRecord) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.records[rec.ID]; ok {
        return fmt.Errorf("record %s already exists: %w", rec.ID, domain.ErrConflict)
    }
    if err := s.sessionFree(rec); err != nil { return err }
    if rec.Version == 0 { rec.Version = 1 }
    s.records[rec.ID] = rec.Clone()
    return nil
}

func (s *Store) GetRecord(_ context.Context, id string) (domain.ServiceRecord, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    rec, ok := s.records[id]
    if !ok {
        return domain.ServiceRecord{}, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
    }
    return rec.Clone(), nil
}

// UpdateRecord holds the store lock while mutate runs, so mutate must not call
// back into the store.
func (s *Store) UpdateRecord(_ context.Context, id string, mutate func(*domain.ServiceRecord) error) (domain.ServiceRecord, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    cur, ok := s.records[id]
    if !ok {
        return domain.ServiceRecord{}, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
    }
    next := cur.Clone()
    if err := mutate(&next); err != nil {
        return domain.ServiceRecord{}, err
    }
    next.ID = cur.ID
    if err := s.sessionFree(next); err != nil {
        return domain.ServiceRecord{}, err
    }
    next.Version = cur.Version + 1
    s.records[id] = next.Clone()
    return next, nil
}

// sessionFree mirrors the unique payment session index of the SQL stores.
func (s *Store) sessionFree(rec domain.ServiceRecord) error {
    sid := rec.PaymentSession()
    if sid == "" { return nil }
    for id, other := range s.records {
        if id != rec.ID && other.PaymentSession() == sid {
            return domain.SessionUsed(sid)
        }
    }
    return nil
}

func (s *Store) ListRecords(_ context.Context, f ports.RecordFilter) ([]domain.ServiceRecord, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []domain.ServiceRecord
    for _, rec := range s.records {
        if !f.CreatedAfter.IsZero() && rec.CreatedAt.Before(f.CreatedAfter) { continue }
        if !f.UpdatedBefore.IsZero() && !rec.UpdatedAt.Before(f.UpdatedBefore) { continue }
        if len(f.Statuses) > 0 && !hasStatus(f.Statuses, rec.Status) { continue }
        out = append(out, rec.Clone())
    }
    sort.Slice(out, func(i, j int) bool {
        if out[i].CreatedAt.Equal(out[j].CreatedAt) { return out[i].ID < out[j].ID }
        return out[i].CreatedAt.Before(out[j].CreatedAt)
    })
    if f.Limit > 0 && len(out) > f.Limit {
        out = out[:f.Limit]
    }
    return out, nil
}

func hasStatus(list []domain.Status, s domain.Status) bool {
    for _, v := range list {
        if v == s { return true }
    }
    return false
}

func (s *Store) UpsertContractor(_ context.Context, c domain.Contractor) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.contractors[c.ID] = c
    return nil
}

func (s *Store) GetContractor(_ context.Context, id string) (domain.Contractor, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    c, ok := s.contractors[id]
    if !ok {
        return domain.Contractor{}, fmt.Errorf("contractor %s: %w", id, domain.ErrNotFound)
    }
    return c, nil
}

func (s *Store) ListContractors(_ context.Context) ([]domain.Contractor, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make([]domain.Contractor, 0, len(s.contractors))
    for _, c := range s.contractors {
        out = append(out, c)
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func (s *Store) Enqueue(_ context.Context, job ports.LifecycleJob) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.jobs[job.ID]; ok {
        return fmt.Errorf("job %s already exists: %w", job.ID, domain.ErrConflict)
    }
    if job.Status == "" { job.Status = ports.JobQueued }
    s.jobs[job.ID] = &job
    s.seq = append(s.seq, job.ID)
    return nil
}

// ClaimNext picks the queued job with the earliest RunAt that is due.
func (s *Store) ClaimNext(_ context.Context, now time.Time) (ports.LifecycleJob, bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    var best *ports.LifecycleJob
    for _, id := range s.seq {
        j := s.jobs[id]
        if j.Status != ports.JobQueued || j.RunAt.After(now) { continue }
        if best == nil || j.RunAt.Before(best.RunAt) { best = j }
    }
    if best == nil {
        return ports.LifecycleJob{}, false, nil
    }
    started := now
    best.Status = ports.JobRunning
    best.Attempts++
    best.StartedAt = &started
    return *best, true, nil
}

func (s *Store) settle(jobID string, fn func(j *ports.LifecycleJob)) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    j, ok := s.jobs[jobID]
    if !ok {
        return fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
    }
    fn(j)
    return nil
}

func (s *Store) MarkCompleted(_ context.Context, jobID string) error {
    return s.settle(jobID, func(j *ports.LifecycleJob) {
        j.Status = ports.JobCompleted
        j.LastError = ""
    })
}

func (s *Store) Reschedule(_ context.Context, jobID string, runAt time.Time, reason string) error {
    return s.settle(jobID, func(j *ports.LifecycleJob) {
        j.Status = ports.JobQueued
        j.RunAt = runAt
        j.LastError = reason
        j.StartedAt = nil
    })
}

func (s *Store) MarkDead(_ context.Context, jobID string, reason string) error {
    return s.settle(jobID, func(j *ports.LifecycleJob) {
        j.Status = ports.JobDead
        j.LastError = reason
    })
}

func (s *Store) HasPending(_ context.Context, recordID string) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, j := range s.jobs {
        if j.RecordID == recordID && (j.Status == ports.JobQueued || j.Status == ports.JobRunning) {
            return true, nil
        }
    }
    return false, nil
}

func (s *Store) CountJobs(_ context.Context, status ports.JobStatus) (int, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    n := 0
    for _, j := range s.jobs {
        if j.Status == status { n++ }
    }
    return n, nil
}

func (s *Store) RequeueStale(_ context.Context, startedBefore time.Time) (int, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    n := 0
    for _, j := range s.jobs {
        if j.Status == ports.JobRunning && j.StartedAt != nil && j.StartedAt.Before(startedBefore) {
            j.Status = ports.JobQueued
            j.StartedAt = nil
            n++
        }
    }
    return n, nil
}

// Jobs returns a copy of every job for a record in enqueue order.
func (s *Store) Jobs(recordID string) []ports.LifecycleJob {
    s.mu.Lock()
    defer s.mu.Unlock()
    var out []ports.LifecycleJob
    for _, id := range s.seq {
        if j := s.jobs[id]; j.RecordID == recordID {
            out = append(out, *j)
        }
    }
    return out
}

var _ ports.Store = (*Store)(nil)
