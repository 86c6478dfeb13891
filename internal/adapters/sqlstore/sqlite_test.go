package sqlstore

import (
    "context"
    "path/filepath"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "nrp/internal/domain"
    "nrp/internal/ports"
)

func openSQLite(t *testing.T) *Store {
    t.Helper()
    ctx := context.Background()
    s, err := Open(ctx, SQLite, filepath.Join(t.TempDir(), "nrp.db"))
    require.NoError(t, err)
    t.Cleanup(func() { s.Close() })
    require.NoError(t, s.Migrate(ctx))
    return s
}

func TestSQLiteRecordLifecycle(t *testing.T) {
    ctx := context.Background()
    s := openSQLite(t)

    rec := domain.ServiceRecord{ID: "r1", Status: domain.StatusNew, Priority: domain.PriorityHigh, Score: 72, CreatedAt: t0, UpdatedAt: t0}
    require.NoError(t, s.CreateRecord(ctx, rec))
    assert.ErrorIs(t, s.CreateRecord(ctx, rec), domain.ErrConflict)

    updated, err := s.UpdateRecord(ctx, "r1", func(r *domain.ServiceRecord) error {
        r.Status = domain.StatusAssigned
        r.UpdatedAt = t0.Add(time.Minute)
        return nil
    })
    require.NoError(t, err)
    assert.Equal(t, 2, updated.Version)

    got, err := s.GetRecord(ctx, "r1")
    require.NoError(t, err)
    assert.Equal(t, domain.StatusAssigned, got.Status)
    assert.Equal(t, 72, got.Score)
    assert.True(t, got.CreatedAt.Equal(t0))

    list, err := s.ListRecords(ctx, ports.RecordFilter{Statuses: []domain.Status{domain.StatusAssigned}, UpdatedBefore: t0.Add(time.Hour)})
    require.NoError(t, err)
    assert.Len(t, list, 1)
    list, err = s.ListRecords(ctx, ports.RecordFilter{Statuses: []domain.Status{domain.StatusNew}})
    require.NoError(t, err)
    assert.Empty(t, list)

    _, err = s.GetRecord(ctx, "r2")
    assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSQLitePaymentSessionIsUnique(t *testing.T) {
    ctx := context.Background()
    s := openSQLite(t)
    paid := &domain.Payment{SessionID: "cs_1", Status: domain.PaymentPaid}

    require.NoError(t, s.CreateRecord(ctx, domain.ServiceRecord{ID: "r1", Status: domain.StatusNew, Payment: paid, CreatedAt: t0, UpdatedAt: t0}))
    require.NoError(t, s.CreateRecord(ctx, domain.ServiceRecord{ID: "r2", Status: domain.StatusNew, CreatedAt: t0, UpdatedAt: t0}))
    require.NoError(t, s.CreateRecord(ctx, domain.ServiceRecord{ID: "r3", Status: domain.StatusNew, CreatedAt: t0, UpdatedAt: t0}))

    err := s.CreateRecord(ctx, domain.ServiceRecord{ID: "r4", Status: domain.StatusNew, Payment: paid, CreatedAt: t0, UpdatedAt: t0})
    assert.ErrorIs(t, err, domain.ErrPaymentRequired)
    assert.NotErrorIs(t, err, domain.ErrConflict)

    _, err = s.UpdateRecord(ctx, "r2", func(r *domain.ServiceRecord) error {
        r.Payment = &domain.Payment{SessionID: "cs_1", Status: domain.PaymentPending}
        return nil
    })
    assert.ErrorIs(t, err, domain.ErrPaymentRequired)

    _, err = s.UpdateRecord(ctx, "r1", func(r *domain.ServiceRecord) error {
        r.Status = domain.StatusAssigned
        return nil
    })
    assert.NoError(t, err)
}

func TestSQLiteContractors(t *testing.T) {
    ctx := context.Background()
    s := openSQLite(t)

    require.NoError(t, s.UpsertContractor(ctx, domain.Contractor{ID: "c1", CompanyName: "Dry Co", Available: true}))
    require.NoError(t, s.UpsertContractor(ctx, domain.Contractor{ID: "c1", CompanyName: "Dry Co", Available: true}))
    require.NoError(t, s.UpsertContractor(ctx, domain.Contractor{ID: "c1", CompanyName: "Dry Co Pty", Available: false}))
    require.NoError(t, s.UpsertContractor(ctx, domain.Contractor{ID: "c0", CompanyName: "Aqua", Available: true}))

    c, err := s.GetContractor(ctx, "c1")
    require.NoError(t, err)
    assert.Equal(t, "Dry Co Pty", c.CompanyName)
    assert.False(t, c.Available)

    all, err := s.ListContractors(ctx)
    require.NoError(t, err)
    require.Len(t, all, 2)
    assert.Equal(t, "c0", all[0].ID)
}

func TestSQLiteJobQueue(t *testing.T) {
    ctx := context.Background()
    s := openSQLite(t)

    require.NoError(t, s.Enqueue(ctx, ports.LifecycleJob{ID: "late", RecordID: "r1", Kind: ports.JobRecordKPI, RunAt: t0.Add(time.Hour)}))
    require.NoError(t, s.Enqueue(ctx, ports.LifecycleJob{ID: "due", RecordID: "r1", Kind: ports.JobAssign, RunAt: t0}))

    job, found, err := s.ClaimNext(ctx, t0)
    require.NoError(t, err)
    require.True(t, found)
    assert.Equal(t, "due", job.ID)
    assert.Equal(t, 1, job.Attempts)

    _, found, err = s.ClaimNext(ctx, t0)
    require.NoError(t, err)
    assert.False(t, found)

    n, err := s.RequeueStale(ctx, t0.Add(time.Second))
    require.NoError(t, err)
    assert.Equal(t, 1, n)

    job, found, err = s.ClaimNext(ctx, t0)
    require.NoError(t, err)
    require.True(t, found)
    assert.Equal(t, 2, job.Attempts)
    require.NoError(t, s.Reschedule(ctx, job.ID, t0.Add(2*time.Hour), "smtp down"))
    require.NoError(t, s.MarkCompleted(ctx, "late"))

    pending, err := s.HasPending(ctx, "r1")
    require.NoError(t, err)
    assert.True(t, pending)

    require.NoError(t, s.MarkDead(ctx, "due", "gave up"))
    dead, err := s.CountJobs(ctx, ports.JobDead)
    require.NoError(t, err)
    assert.Equal(t, 1, dead)
    pending, err = s.HasPending(ctx, "r1")
    require.NoError(t, err)
    assert.False(t, pending)
}
