package postgres

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/jackc/pgx/v5"

    "nrp/internal/domain"
    "nrp/internal/ports"
)

func (db *DB) Enqueue(ctx context.Context, job ports.LifecycleJob) error {
    if job.Status == "" { job.Status = ports.JobQueued }
    if job.MaxAttempts <= 0 { job.MaxAttempts = 5 }
    _, err := db.Pool.Exec(ctx, `
        INSERT INTO lifecycle_jobs (id, record_id, kind, status, run_at, attempts, max_attempts)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, job.ID, job.RecordID, job.Kind, job.Status, job.RunAt, job.Attempts, job.MaxAttempts)
    return err
}

// ClaimNext locks the earliest due job with SKIP LOCKED and marks it running.
func (db *DB) ClaimNext(ctx context.Context, now time.Time) (job ports.LifecycleJob, found bool, err error) {
    tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
    if err != nil { return job, false, err }
    defer func() {
        if err != nil { _ = tx.Rollback(ctx) } else { err = tx.Commit(ctx) }
    }()

    err = tx.QueryRow(ctx, `
        SELECT id, record_id, kind, run_at, attempts, max_attempts, last_error
        FROM lifecycle_jobs
        WHERE status = 'queued' AND run_at <= $1
        ORDER BY run_at
        FOR UPDATE SKIP LOCKED
        LIMIT 1
    `, now).Scan(&job.ID, &job.RecordID, &job.Kind, &job.RunAt, &job.Attempts, &job.MaxAttempts, &job.LastError)
    if errors.Is(err, pgx.ErrNoRows) {
        return job, false, nil
    }
    if err != nil { return job, false, err }

    started := now
    if _, err = tx.Exec(ctx, `
        UPDATE lifecycle_jobs SET status='running', started_at=$2, attempts=attempts+1 WHERE id=$1
    `, job.ID, started); err != nil {
        return job, false, err
    }
    job.Status = ports.JobRunning
    job.Attempts++
    job.StartedAt = &started
    return job, true, nil
}

func (db *DB) MarkCompleted(ctx context.Context, jobID string) error {
    return db.settle(ctx, `UPDATE lifecycle_jobs SET status='completed', finished_at=now() WHERE id=$1`, jobID)
}

func (db *DB) Reschedule(ctx context.Context, jobID string, runAt time.Time, reason string) error {
    return db.settle(ctx, `
        UPDATE lifecycle_jobs SET status='queued', run_at=$2, last_error=$3, started_at=NULL WHERE id=$1
    `, jobID, runAt, reason)
}

func (db *DB) MarkDead(ctx context.Context, jobID string, reason string) error {
    return db.settle(ctx, `
        UPDATE lifecycle_jobs SET status='dead', last_error=$2, finished_at=now() WHERE id=$1
    `, jobID, reason)
}

func (db *DB) settle(ctx context.Context, q string, args ...any) error {
    ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    tag, err := db.Pool.Exec(ctx, q, args...)
    if err != nil { return err }
    if tag.RowsAffected() == 0 {
        return fmt.Errorf("job %v: %w", args[0], domain.ErrNotFound)
    }
    return nil
}

func (db *DB) HasPending(ctx context.Context, recordID string) (bool, error) {
    var ok bool
    err := db.Pool.QueryRow(ctx, `
        SELECT EXISTS (SELECT 1 FROM lifecycle_jobs WHERE record_id=$1 AND status IN ('queued', 'running'))
    `, recordID).Scan(&ok)
    return ok, err
}

func (db *DB) CountJobs(ctx context.Context, status ports.JobStatus) (int, error) {
    var n int
    err := db.Pool.QueryRow(ctx, `SELECT count(*) FROM lifecycle_jobs WHERE status=$1`, status).Scan(&n)
    return n, err
}

// RequeueStale hands jobs whose worker vanished back to the queue.
func (db *DB) RequeueStale(ctx context.Context, startedBefore time.Time) (int, error) {
    tag, err := db.Pool.Exec(ctx, `
        UPDATE lifecycle_jobs SET status='queued', started_at=NULL
        WHERE status='running' AND started_at < $1
    `, startedBefore)
    if err != nil { return 0, err }
    return int(tag.RowsAffected()), nil
}
