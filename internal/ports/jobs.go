package ports

import (
    "context"
    "time"
)

type JobKind string

const (
    JobAssign      JobKind = "assign"
    JobAutoAccept  JobKind = "auto_accept"
    JobSubmitClaim JobKind = "submit_claim"
    JobRecordKPI   JobKind = "record_kpi"
)

type JobStatus string

const (
    JobQueued    JobStatus = "queued"
    JobRunning   JobStatus = "running"
    JobCompleted JobStatus = "completed"
    JobDead      JobStatus = "dead"
)

// LifecycleJob is one delayed workflow step for a record.
type LifecycleJob struct {
    ID          string
    RecordID    string
    Kind        JobKind
    RunAt       time.Time
    Attempts    int
    MaxAttempts int
    Status      JobStatus
    LastError   string
    StartedAt   *time.Time
}

// JobRepository supports enqueueing, claiming and settling lifecycle jobs.
// ClaimNext only returns jobs whose RunAt is not after now, marks them running
// and bumps Attempts.
type JobRepository interface {
    Enqueue(ctx context.Context, job LifecycleJob) error
    ClaimNext(ctx context.Context, now time.Time) (job LifecycleJob, found bool, err error)
    MarkCompleted(ctx context.Context, jobID string) error
    Reschedule(ctx context.Context, jobID string, runAt time.Time, reason string) error
    MarkDead(ctx context.Context, jobID string, reason string) error
    HasPending(ctx context.Context, recordID string) (bool, error)
    CountJobs(ctx context.Context, status JobStatus) (int, error)
    RequeueStale(ctx context.Context, startedBefore time.Time) (int, error)
}
