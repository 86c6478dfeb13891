package compliance

import (
    "context"
    "testing"
    "time"

    "github.com/jonboulle/clockwork"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "nrp/internal/adapters/memory"
    "nrp/internal/domain"
    "nrp/internal/ports"
)

var now = time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)

func compliantContractor(id string) domain.Contractor {
    return domain.Contractor{
        ID:                id,
        TrainingCompleted: true,
        LastActive:        now.Add(-48 * time.Hour),
        Certifications: []domain.Certification{
            {Name: "IICRC WRT", Expiry: now.AddDate(1, 0, 0), Verified: true},
        },
        Insurance: domain.ContractorInsurance{
            PublicLiability: true, Expiry: now.AddDate(0, 6, 0), DocumentVerified: true,
        },
    }
}

func TestSummarizeRatios(t *testing.T) {
    a := compliantContractor("a")
    b := compliantContractor("b")
    b.Insurance.Expiry = now.Add(-time.Hour)
    c := compliantContractor("c")
    c.TrainingCompleted = false
    c.Certifications[0].Verified = false
    d := compliantContractor("d")
    d.LastActive = now.AddDate(0, -2, 0)

    snap := Summarize([]domain.Contractor{a, b, c, d}, nil, now, 30*24*time.Hour)
    cc := snap.Contractors
    assert.Equal(t, 4, cc.Total)
    assert.Equal(t, 3, cc.Certified)
    assert.Equal(t, 3, cc.Trained)
    assert.Equal(t, 3, cc.Insured)
    assert.Equal(t, 3, cc.VerifiedDocuments)
    assert.Equal(t, 3, cc.RecentlyActive)
    assert.Equal(t, 1, cc.Compliant)
    assert.Equal(t, 25.0, cc.CompliantPct)
    assert.Equal(t, 75.0, cc.InsuredPct)

    all := Summarize([]domain.Contractor{a, b, c, d}, nil, now, 0)
    assert.Equal(t, 2, all.Contractors.Compliant)
}

func TestSummarizeEmpty(t *testing.T) {
    snap := Summarize(nil, nil, now, 0)
    assert.Equal(t, 0, snap.Contractors.Total)
    assert.Equal(t, 0.0, snap.Contractors.CompliantPct)
    assert.Equal(t, 0, snap.Records.Total)
}

func TestParseTimeframe(t *testing.T) {
    tf, w, err := ParseTimeframe("")
    require.NoError(t, err)
    assert.Equal(t, "30d", tf)
    assert.Equal(t, 30*24*time.Hour, w)

    _, w, err = ParseTimeframe("all")
    require.NoError(t, err)
    assert.Zero(t, w)

    _, _, err = ParseTimeframe("fortnight")
    var v *domain.ValidationError
    assert.ErrorAs(t, err, &v)
}

func TestServiceSummaryCountsWindowAndDeadJobs(t *testing.T) {
    ctx := context.Background()
    store := memory.New()
    require.NoError(t, store.UpsertContractor(ctx, compliantContractor("a")))
    require.NoError(t, store.CreateRecord(ctx, domain.ServiceRecord{ID: "old", Status: domain.StatusCompleted, CreatedAt: now.AddDate(0, -3, 0)}))
    require.NoError(t, store.CreateRecord(ctx, domain.ServiceRecord{ID: "new", Status: domain.StatusAssigned, CreatedAt: now.Add(-time.Hour)}))
    require.NoError(t, store.Enqueue(ctx, ports.LifecycleJob{ID: "j1", RecordID: "new", RunAt: now}))
    require.NoError(t, store.MarkDead(ctx, "j1", "no contractor"))

    svc := New(store, store, store, clockwork.NewFakeClockAt(now))
    snap, err := svc.Summary(ctx, "7d")
    require.NoError(t, err)
    assert.Equal(t, "7d", snap.Timeframe)
    assert.Equal(t, 1, snap.Records.Total)
    assert.Equal(t, 1, snap.Records.ByStatus[domain.StatusAssigned])
    assert.Equal(t, 1, snap.Records.DeadLetteredJobs)
    assert.Equal(t, 100.0, snap.Contractors.CompliantPct)

    snap, err = svc.Summary(ctx, "all")
    require.NoError(t, err)
    assert.Equal(t, 2, snap.Records.Total)
}
