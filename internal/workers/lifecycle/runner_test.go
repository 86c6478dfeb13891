package lifecycle

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/jonboulle/clockwork"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "nrp/internal/adapters/memory"
    "nrp/internal/ports"
)

var t0 = time.Date(2026, 1, 20, 3, 0, 0, 0, time.UTC)

type scripted struct {
    mu    sync.Mutex
    fail  map[string]error
    ran   []string
    dead  []string
}

func (s *scripted) Process(_ context.Context, job ports.LifecycleJob) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.ran = append(s.ran, job.ID)
    return s.fail[job.ID]
}

func (s *scripted) DeadLetter(_ context.Context, job ports.LifecycleJob, _ string) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.dead = append(s.dead, job.ID)
}

func (s *scripted) ranCount() int {
    s.mu.Lock()
    defer s.mu.Unlock()
    return len(s.ran)
}

func TestBackoffDoublesAndCaps(t *testing.T) {
    o := Options{RetryBase: time.Second, RetryCap: 5 * time.Second}
    assert.Equal(t, time.Second, o.Backoff(1))
    assert.Equal(t, 2*time.Second, o.Backoff(2))
    assert.Equal(t, 4*time.Second, o.Backoff(3))
    assert.Equal(t, 5*time.Second, o.Backoff(4))
}

func TestProcessDueSettlesJobs(t *testing.T) {
    ctx := context.Background()
    store := memory.New()
    clock := clockwork.NewFakeClockAt(t0)
    require.NoError(t, store.Enqueue(ctx, ports.LifecycleJob{ID: "ok", RecordID: "r1", RunAt: t0}))
    require.NoError(t, store.Enqueue(ctx, ports.LifecycleJob{ID: "flaky", RecordID: "r2", RunAt: t0, MaxAttempts: 2}))
    require.NoError(t, store.Enqueue(ctx, ports.LifecycleJob{ID: "later", RecordID: "r3", RunAt: t0.Add(time.Hour)}))

    p := &scripted{fail: map[string]error{"flaky": errors.New("gateway timeout")}}
    opts := Options{Clock: clock, RetryBase: time.Minute}

    n, err := ProcessDue(ctx, store, p, opts)
    require.NoError(t, err)
    assert.Equal(t, 2, n)

    flaky := store.Jobs("r2")[0]
    assert.Equal(t, ports.JobQueued, flaky.Status)
    assert.Equal(t, t0.Add(time.Minute), flaky.RunAt)
    assert.Equal(t, "gateway timeout", flaky.LastError)
    assert.Equal(t, ports.JobCompleted, store.Jobs("r1")[0].Status)

    clock.Advance(time.Minute)
    n, err = ProcessDue(ctx, store, p, opts)
    require.NoError(t, err)
    assert.Equal(t, 1, n)
    assert.Equal(t, ports.JobDead, store.Jobs("r2")[0].Status)
    assert.Equal(t, []string{"flaky"}, p.dead)
    assert.Equal(t, ports.JobQueued, store.Jobs("r3")[0].Status)
}

func TestRunProcessesUntilCancelled(t *testing.T) {
    ctx, cancel := context.WithCancel(context.Background())
    store := memory.New()
    for _, id := range []string{"a", "b", "c", "d"} {
        require.NoError(t, store.Enqueue(ctx, ports.LifecycleJob{ID: id, RecordID: id, RunAt: time.Now().Add(-time.Second)}))
    }
    p := &scripted{}
    done := make(chan struct{})
    go func() {
        Run(ctx, store, p, Options{Concurrency: 2, PollInterval: 5 * time.Millisecond})
        close(done)
    }()

    require.Eventually(t, func() bool { return p.ranCount() == 4 }, 2*time.Second, 5*time.Millisecond)
    cancel()
    select {
    case <-done:
    case <-time.After(2 * time.Second):
        t.Fatal("Run did not return after cancel")
    }
    n, _ := store.CountJobs(context.Background(), ports.JobCompleted)
    assert.Equal(t, 4, n)
}
