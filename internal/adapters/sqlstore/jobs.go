package sqlstore

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    "nrp/internal/domain"
    "nrp/internal/ports"
)

const jobColumns = `id, record_id, kind, status, run_at, attempts, max_attempts, last_error, started_at`

func (s *Store) Enqueue(ctx context.Context, job ports.LifecycleJob) error {
    if job.Status == "" { job.Status = ports.JobQueued }
    if job.MaxAttempts <= 0 { job.MaxAttempts = 5 }
    _, err := s.db.ExecContext(ctx,
        `INSERT INTO lifecycle_jobs (id, record_id, kind, status, run_at, attempts, max_attempts, last_error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
        job.ID, job.RecordID, string(job.Kind), string(job.Status), nanos(job.RunAt), job.Attempts, job.MaxAttempts, job.LastError)
    if isDuplicate(err) {
        return fmt.Errorf("job %s already exists: %w", job.ID, domain.ErrConflict)
    }
    return err
}

// ClaimNext picks the earliest due job and flips it to running with a
// conditional update. Losing the race to another worker moves on to the
// next candidate.
func (s *Store) ClaimNext(ctx context.Context, now time.Time) (ports.LifecycleJob, bool, error) {
    for i := 0; i < 5; i++ {
        row := s.db.QueryRowContext(ctx,
            `SELECT `+jobColumns+` FROM lifecycle_jobs WHERE status = 'queued' AND run_at <= ? ORDER BY run_at, id LIMIT 1`,
            nanos(now))
        job, err := scanJob(row)
        if errors.Is(err, sql.ErrNoRows) {
            return ports.LifecycleJob{}, false, nil
        }
        if err != nil { return ports.LifecycleJob{}, false, err }

        res, err := s.db.ExecContext(ctx,
            `UPDATE lifecycle_jobs SET status = 'running', started_at = ?, attempts = attempts + 1 WHERE id = ? AND status = 'queued'`,
            nanos(now), job.ID)
        if err != nil { return ports.LifecycleJob{}, false, err }
        if n, _ := res.RowsAffected(); n == 0 {
            continue
        }
        started := now.UTC()
        job.Status = ports.JobRunning
        job.Attempts++
        job.StartedAt = &started
        return job, true, nil
    }
    return ports.LifecycleJob{}, false, nil
}

type scanner interface {
    Scan(dest ...any) error
}

func scanJob(row scanner) (ports.LifecycleJob, error) {
    var (
        job           ports.LifecycleJob
        kind, status  string
        runAt         int64
        startedAt     sql.NullInt64
    )
    if err := row.Scan(&job.ID, &job.RecordID, &kind, &status, &runAt, &job.Attempts, &job.MaxAttempts, &job.LastError, &startedAt); err != nil {
        return job, err
    }
    job.Kind = ports.JobKind(kind)
    job.Status = ports.JobStatus(status)
    job.RunAt = fromNanos(runAt)
    if startedAt.Valid {
        t := fromNanos(startedAt.Int64)
        job.StartedAt = &t
    }
    return job, nil
}

func (s *Store) MarkCompleted(ctx context.Context, jobID string) error {
    return s.settle(ctx, jobID, `UPDATE lifecycle_jobs SET status = 'completed' WHERE id = ?`, jobID)
}

func (s *Store) Reschedule(ctx context.Context, jobID string, runAt time.Time, reason string) error {
    return s.settle(ctx, jobID,
        `UPDATE lifecycle_jobs SET status = 'queued', run_at = ?, last_error = ?, started_at = NULL WHERE id = ?`,
        nanos(runAt), reason, jobID)
}

func (s *Store) MarkDead(ctx context.Context, jobID string, reason string) error {
    return s.settle(ctx, jobID, `UPDATE lifecycle_jobs SET status = 'dead', last_error = ? WHERE id = ?`, reason, jobID)
}

func (s *Store) settle(ctx context.Context, jobID, q string, args ...any) error {
    res, err := s.db.ExecContext(ctx, q, args...)
    if err != nil { return err }
    if n, _ := res.RowsAffected(); n == 0 {
        return fmt.Errorf("job %s: %w", jobID, domain.ErrNotFound)
    }
    return nil
}

func (s *Store) HasPending(ctx context.Context, recordID string) (bool, error) {
    var n int
    err := s.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM lifecycle_jobs WHERE record_id = ? AND status IN ('queued', 'running')`, recordID).Scan(&n)
    return n > 0, err
}

func (s *Store) CountJobs(ctx context.Context, status ports.JobStatus) (int, error) {
    var n int
    err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM lifecycle_jobs WHERE status = ?`, string(status)).Scan(&n)
    return n, err
}

func (s *Store) RequeueStale(ctx context.Context, startedBefore time.Time) (int, error) {
    res, err := s.db.ExecContext(ctx,
        `UPDATE lifecycle_jobs SET status = 'queued', started_at = NULL WHERE status = 'running' AND started_at < ?`,
        nanos(startedBefore))
    if err != nil { return 0, err }
    n, err := res.RowsAffected()
    return int(n), err
}
