package records

import (
    "context"
    "errors"
    "sync"
    "sync/atomic"
    "testing"
    "time"

    "github.com/jonboulle/clockwork"
    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "nrp/internal/adapters/memory"
    "nrp/internal/domain"
    "nrp/internal/notify"
    "nrp/internal/ports"
    "nrp/internal/services/scoring"
)

var t0 = time.Date(2026, 2, 10, 22, 15, 0, 0, time.UTC)

type inbox struct {
    mu   sync.Mutex
    msgs []ports.Message
}

func (i *inbox) Send(_ context.Context, m ports.Message) error {
    i.mu.Lock()
    defer i.mu.Unlock()
    i.msgs = append(i.msgs, m)
    return nil
}

func (i *inbox) templates() []string {
    i.mu.Lock()
    defer i.mu.Unlock()
    var out []string
    for _, m := range i.msgs {
        out = append(out, m.Template)
    }
    return out
}

type events struct {
    mu  sync.Mutex
    got []ports.RecordEvent
}

func (e *events) Publish(_ context.Context, ev ports.RecordEvent) error {
    e.mu.Lock()
    defer e.mu.Unlock()
    e.got = append(e.got, ev)
    return nil
}

type payments map[string]ports.CheckoutSession

func (p payments) Verify(_ context.Context, id string) (ports.CheckoutSession, error) {
    s, ok := p[id]
    if !ok || !s.Paid {
        return ports.CheckoutSession{}, domain.ErrPaymentRequired
    }
    return s, nil
}

type badTriage struct{}

func (badTriage) ClassifyDamage(context.Context, string) ([]domain.ServiceType, error) {
    return nil, errors.New("model overloaded")
}

type fixture struct {
    svc    *Service
    store  *memory.Store
    clock  *clockwork.FakeClock
    inbox  *inbox
    events *events
}

func newFixture(t *testing.T) *fixture {
    t.Helper()
    f := &fixture{
        store:  memory.New(),
        clock:  clockwork.NewFakeClockAt(t0),
        inbox:  &inbox{},
        events: &events{},
    }
    f.svc = New(Deps{
        Store:    f.store,
        Payments: payments{"cs_paid": {ID: "cs_paid", Paid: true, PaymentIntentID: "pi_1", Amount: decimal.RequireFromString("2750")}},
        Notifier: f.inbox,
        Events:   f.events,
        Triage:   badTriage{},
        Clock:    f.clock,
        Timing: Timing{
            AssignDelay: time.Second,
            AcceptDelay: 10 * time.Minute,
            ClaimDelay:  time.Minute,
            KPIDelay:    time.Minute,
        },
        MaxAttempts: 3,
    })
    return f
}

func (f *fixture) contractor(t *testing.T, id string, tier domain.MembershipTier) {
    t.Helper()
    require.NoError(t, f.store.UpsertContractor(context.Background(), domain.Contractor{
        ID:              id,
        CompanyName:     id + " Restorations",
        Email:           id + "@contractors.example",
        Tier:            tier,
        Specializations: []domain.ServiceType{domain.WaterDamage, domain.MouldRemediation},
        ServiceRadiusKm: 50,
        Rating:          4.6,
        CompletionRate:  0.95,
        Available:       true,
        LastActive:      t0,
    }))
}

// drain runs every job due at the current fake time, the way a worker would.
func (f *fixture) drain(t *testing.T) []error {
    t.Helper()
    ctx := context.Background()
    var errs []error
    for {
        job, found, err := f.store.ClaimNext(ctx, f.clock.Now())
        require.NoError(t, err)
        if !found { return errs }
        if err := f.svc.Process(ctx, job); err != nil {
            errs = append(errs, err)
            require.NoError(t, f.store.MarkDead(ctx, job.ID, err.Error()))
            continue
        }
        require.NoError(t, f.store.MarkCompleted(ctx, job.ID))
    }
}

func (f *fixture) advance(t *testing.T, d time.Duration) []error {
    f.clock.Advance(d)
    return f.drain(t)
}

func intake() domain.IntakeRecord {
    return domain.IntakeRecord{
        ServiceType:        domain.WaterDamage,
        Urgency:            domain.UrgencyUrgent,
        PropertyType:       domain.Residential,
        HasInsurance:       true,
        PropertyValue:      decimal.NewFromInt(650_000),
        ReadyToStart:       domain.ReadyWithinWeek,
        DecisionMaker:      true,
        Location:           domain.Location{Suburb: "Toowong", State: "QLD", Postcode: "4066", DistanceKm: 6},
        Contact:            domain.Contact{FullName: "Sam Taylor", Email: "sam@example.com"},
        Insurance:          domain.InsuranceDetails{Insurer: "Suncorp", ClaimNumber: "C-1001"},
        DamageDescription:  "burst pipe under the kitchen sink",
    }
}

func TestCreateThenGetMatchesScoring(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    in := intake()
    in.DamageDescription = "smoke and mould through the house after the fire"
    want := scoring.Evaluate(in)
    scored, err := f.svc.Score(ctx, in)
    require.NoError(t, err)
    require.Equal(t, want, scored.Result)

    created, err := f.svc.Create(ctx, in)
    require.NoError(t, err)
    assert.Equal(t, domain.StatusNew, created.Record.Status)

    got, err := f.svc.Get(ctx, created.Record.ID)
    require.NoError(t, err)
    assert.Equal(t, want.Score, got.Score)
    assert.Equal(t, want.Priority, got.Priority)
    assert.Equal(t, want.ResponseTimeMinutes, got.ResponseTimeMinutes)
    assert.Equal(t, want.Assignment, got.Assignment)
    assert.Empty(t, got.Intake.DamageTypes)
    assert.Equal(t, []domain.ServiceType{domain.FireDamage, domain.MouldRemediation}, got.SuggestedDamageTypes)

    jobs := f.store.Jobs(got.ID)
    require.Len(t, jobs, 1)
    assert.Equal(t, ports.JobAssign, jobs[0].Kind)
    assert.Equal(t, t0.Add(time.Second), jobs[0].RunAt)
}

func TestSuppliedDamageTypesSkipTriage(t *testing.T) {
    f := newFixture(t)
    in := intake()
    in.DamageTypes = []domain.ServiceType{domain.WaterDamage}
    created, err := f.svc.Create(context.Background(), in)
    require.NoError(t, err)
    assert.Equal(t, scoring.Evaluate(in).Score, created.Record.Score)
    assert.Equal(t, in.DamageTypes, created.Record.Intake.DamageTypes)
    assert.Empty(t, created.Record.SuggestedDamageTypes)
}

func TestGetUnknownRecord(t *testing.T) {
    f := newFixture(t)
    _, err := f.svc.Get(context.Background(), "01HZZZZZZZZZZZZZZZZZZZZZZZ")
    assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateRejectsInvalidIntake(t *testing.T) {
    f := newFixture(t)
    in := intake()
    in.Location.Postcode = "40"
    in.Contact = domain.Contact{}
    _, err := f.svc.Create(context.Background(), in)
    var v *domain.ValidationError
    require.ErrorAs(t, err, &v)
    assert.Contains(t, v.Fields, "location.postcode")
    assert.Contains(t, v.Fields, "contact.fullName")
}

func TestScoreValidatesOnlyEnums(t *testing.T) {
    f := newFixture(t)
    out, err := f.svc.Score(context.Background(), domain.IntakeRecord{Urgency: domain.UrgencyEmergency, DamageDescription: "fire in the roof"})
    require.NoError(t, err)
    assert.Equal(t, 20, out.Score)
    assert.True(t, out.EmergencyDetected)

    _, err = f.svc.Score(context.Background(), domain.IntakeRecord{Urgency: "whenever"})
    var v *domain.ValidationError
    assert.ErrorAs(t, err, &v)
}

func TestEmergencyAcknowledgementIsDistinct(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()

    calm := intake()
    calm.Urgency = domain.UrgencyPlanning
    calm.HasInsurance = false
    calm.DamageDescription = ""
    c, err := f.svc.Create(ctx, calm)
    require.NoError(t, err)

    urgent := intake()
    urgent.Urgency = domain.UrgencyEmergency
    urgent.IsBusinessProperty = true
    urgent.PropertyValue = decimal.NewFromInt(2_000_000)
    e, err := f.svc.Create(ctx, urgent)
    require.NoError(t, err)

    assert.NotEqual(t, c.Acknowledgement, e.Acknowledgement)
    assert.Contains(t, e.Acknowledgement, "Emergency")
    assert.Contains(t, e.Acknowledgement, "15 minutes")
    assert.Equal(t, []string{notify.CustomerAck, notify.EmergencyAck, notify.CriticalLead}, f.inbox.templates())
}

func TestClaimWithoutPaymentIsRefusedFirst(t *testing.T) {
    f := newFixture(t)
    _, err := f.svc.SubmitClaim(context.Background(), ports.Claim{Intake: domain.IntakeRecord{}, PaymentConfirmed: false})
    assert.ErrorIs(t, err, domain.ErrPaymentRequired)

    _, err = f.svc.SubmitClaim(context.Background(), ports.Claim{Intake: intake(), PaymentConfirmed: true, CheckoutSessionID: "cs_open"})
    assert.ErrorIs(t, err, domain.ErrPaymentRequired)
}

func TestClaimRecordsPayment(t *testing.T) {
    f := newFixture(t)
    out, err := f.svc.SubmitClaim(context.Background(), ports.Claim{Intake: intake(), PaymentConfirmed: true, CheckoutSessionID: "cs_paid"})
    require.NoError(t, err)
    require.NotNil(t, out.Record.Payment)
    assert.Equal(t, domain.PaymentPaid, out.Record.Payment.Status)
    assert.Equal(t, "pi_1", out.Record.Payment.PaymentIntentID)
    assert.Contains(t, f.inbox.templates(), notify.ClaimReceipt)
}

func TestPaidSessionFinalizesOneClaim(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    claim := ports.Claim{Intake: intake(), PaymentConfirmed: true, CheckoutSessionID: "cs_paid"}

    first, err := f.svc.SubmitClaim(ctx, claim)
    require.NoError(t, err)

    _, err = f.svc.SubmitClaim(ctx, claim)
    assert.ErrorIs(t, err, domain.ErrPaymentRequired)
    var sys *domain.SystemError
    assert.False(t, errors.As(err, &sys))

    all, err := f.store.ListRecords(ctx, ports.RecordFilter{})
    require.NoError(t, err)
    require.Len(t, all, 1)
    assert.Equal(t, first.Record.ID, all[0].ID)
}

func TestAutomatedLifecycleReachesKPI(t *testing.T) {
    f := newFixture(t)
    f.contractor(t, "acme", domain.TierEnterprise)
    ctx := context.Background()
    created, err := f.svc.Create(ctx, intake())
    require.NoError(t, err)
    id := created.Record.ID

    assert.Empty(t, f.advance(t, time.Second))
    rec, _ := f.svc.Get(ctx, id)
    require.Equal(t, domain.StatusAssigned, rec.Status)
    require.NotNil(t, rec.Contractor)
    assert.Equal(t, "acme", rec.Contractor.ID)
    assert.Nil(t, rec.Contractor.AcceptedAt)
    assert.Equal(t, "585", rec.Contractor.Payout.String())

    assert.Empty(t, f.advance(t, 10*time.Minute))
    rec, _ = f.svc.Get(ctx, id)
    require.Equal(t, domain.StatusAccepted, rec.Status)
    assert.NotNil(t, rec.Contractor.AcceptedAt)

    assert.Empty(t, f.advance(t, time.Minute))
    rec, _ = f.svc.Get(ctx, id)
    require.Equal(t, domain.StatusClaimSubmitted, rec.Status)

    assert.Empty(t, f.advance(t, time.Minute))
    rec, _ = f.svc.Get(ctx, id)
    assert.Equal(t, domain.StatusKPIRecorded, rec.Status)

    var path []domain.Status
    for _, h := range rec.History {
        path = append(path, h.To)
    }
    assert.Equal(t, []domain.Status{
        domain.StatusNew, domain.StatusAssigned, domain.StatusAccepted,
        domain.StatusClaimSubmitted, domain.StatusKPIRecorded,
    }, path)
    assert.Len(t, f.events.got, 5)
    assert.Contains(t, f.inbox.templates(), notify.ContractorOffer)
}

func TestUninsuredSkipsClaimStep(t *testing.T) {
    f := newFixture(t)
    f.contractor(t, "acme", domain.TierEnterprise)
    ctx := context.Background()
    in := intake()
    in.HasInsurance = false
    created, err := f.svc.Create(ctx, in)
    require.NoError(t, err)

    f.advance(t, time.Second)
    f.advance(t, 10*time.Minute)
    f.advance(t, time.Minute)
    rec, _ := f.svc.Get(ctx, created.Record.ID)
    assert.Equal(t, domain.StatusKPIRecorded, rec.Status)
}

func TestConcurrentAcceptHasSingleWinner(t *testing.T) {
    f := newFixture(t)
    f.contractor(t, "acme", domain.TierEnterprise)
    ctx := context.Background()
    created, err := f.svc.Create(ctx, intake())
    require.NoError(t, err)
    f.advance(t, time.Second)

    var wins, conflicts int32
    var wg sync.WaitGroup
    for i := 0; i < 20; i++ {
        wg.Add(1)
        go func() {
            defer wg.Done()
            _, err := f.svc.Act(ctx, created.Record.ID, ports.Action{Kind: ports.ActionAccept})
            switch {
            case err == nil:
                atomic.AddInt32(&wins, 1)
            case errors.Is(err, domain.ErrConflict):
                atomic.AddInt32(&conflicts, 1)
            }
        }()
    }
    wg.Wait()
    assert.Equal(t, int32(1), wins)
    assert.Equal(t, int32(19), conflicts)
}

func TestCancelledRecordIgnoresPendingSteps(t *testing.T) {
    f := newFixture(t)
    f.contractor(t, "acme", domain.TierEnterprise)
    ctx := context.Background()
    created, err := f.svc.Create(ctx, intake())
    require.NoError(t, err)

    _, err = f.svc.Act(ctx, created.Record.ID, ports.Action{Kind: ports.ActionCancel, Reason: "customer sorted it"})
    require.NoError(t, err)

    assert.Empty(t, f.advance(t, time.Hour))
    rec, _ := f.svc.Get(ctx, created.Record.ID)
    assert.Equal(t, domain.StatusCancelled, rec.Status)
    assert.Nil(t, rec.Contractor)
    for _, j := range f.store.Jobs(rec.ID) {
        assert.Equal(t, ports.JobCompleted, j.Status)
    }

    _, err = f.svc.Act(ctx, rec.ID, ports.Action{Kind: ports.ActionAccept})
    assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestDeclineReassignsToSomeoneElse(t *testing.T) {
    f := newFixture(t)
    f.contractor(t, "first", domain.TierFranchise)
    f.contractor(t, "second", domain.TierFoundation)
    ctx := context.Background()
    created, err := f.svc.Create(ctx, intake())
    require.NoError(t, err)
    id := created.Record.ID

    f.advance(t, time.Second)
    rec, _ := f.svc.Get(ctx, id)
    require.Equal(t, "first", rec.Contractor.ID)

    _, err = f.svc.Act(ctx, id, ports.Action{Kind: ports.ActionDecline, ContractorID: "second"})
    var v *domain.ValidationError
    require.ErrorAs(t, err, &v)

    rec, err = f.svc.Act(ctx, id, ports.Action{Kind: ports.ActionDecline, ContractorID: "first", Reason: "fully booked"})
    require.NoError(t, err)
    assert.Equal(t, domain.StatusDeclined, rec.Status)

    f.advance(t, time.Second)
    rec, _ = f.svc.Get(ctx, id)
    require.Equal(t, domain.StatusAssigned, rec.Status)
    assert.Equal(t, "second", rec.Contractor.ID)
    assert.Equal(t, []string{"first"}, rec.DeclinedBy)

    // the first assignment's auto-accept is stale and must not fire early
    f.advance(t, 10*time.Minute-time.Second)
    rec, _ = f.svc.Get(ctx, id)
    assert.Equal(t, domain.StatusAssigned, rec.Status)
}

func TestMissingContractorFailsAndDeadLetters(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    created, err := f.svc.Create(ctx, intake())
    require.NoError(t, err)

    errs := f.advance(t, time.Second)
    require.Len(t, errs, 1)
    assert.Contains(t, errs[0].Error(), "no eligible contractor")

    f.svc.DeadLetter(ctx, ports.LifecycleJob{RecordID: created.Record.ID, Kind: ports.JobAssign, Attempts: 3}, errs[0].Error())
    rec, _ := f.svc.Get(ctx, created.Record.ID)
    assert.Contains(t, rec.LastError, "assign failed after 3 attempts")
    assert.Contains(t, f.inbox.templates(), notify.DeadLetter)
}

func TestMissingRecordIsAnError(t *testing.T) {
    f := newFixture(t)
    err := f.svc.Process(context.Background(), ports.LifecycleJob{ID: "j", RecordID: "gone", Kind: ports.JobAssign})
    assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUnknownActionIsValidationError(t *testing.T) {
    f := newFixture(t)
    _, err := f.svc.Act(context.Background(), "x", ports.Action{Kind: "teleport"})
    var v *domain.ValidationError
    assert.ErrorAs(t, err, &v)

    _, err = f.svc.Act(context.Background(), "x", ports.Action{Kind: ports.ActionComplete})
    assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRescheduleForStuckRecords(t *testing.T) {
    f := newFixture(t)
    ctx := context.Background()
    kind, err := f.svc.Reschedule(ctx, domain.ServiceRecord{ID: "a", Status: domain.StatusDeclined})
    require.NoError(t, err)
    assert.Equal(t, ports.JobAssign, kind)

    kind, err = f.svc.Reschedule(ctx, domain.ServiceRecord{ID: "b", Status: domain.StatusAssigned, Contractor: &domain.ContractorAssignment{AssignedAt: t0}})
    require.NoError(t, err)
    assert.Equal(t, ports.JobAutoAccept, kind)
    assert.Equal(t, t0.Add(10*time.Minute), f.store.Jobs("b")[0].RunAt)

    kind, err = f.svc.Reschedule(ctx, domain.ServiceRecord{ID: "c", Status: domain.StatusCompleted})
    require.NoError(t, err)
    assert.Empty(t, kind)
}

func TestFormatMinutes(t *testing.T) {
    assert.Equal(t, "15 minutes", FormatMinutes(15))
    assert.Equal(t, "1 hour", FormatMinutes(60))
    assert.Equal(t, "4 hours", FormatMinutes(240))
    assert.Equal(t, "24 hours", FormatMinutes(1440))
}
