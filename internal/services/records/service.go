package records

import (
    "context"
    "crypto/rand"
    "errors"
    "fmt"
    "time"

    "github.com/apex/log"
    "github.com/google/uuid"
    "github.com/jonboulle/clockwork"
    "github.com/oklog/ulid/v2"

    "nrp/internal/domain"
    "nrp/internal/metrics"
    "nrp/internal/notify"
    "nrp/internal/ports"
    "nrp/internal/services/billing"
    "nrp/internal/services/matching"
    "nrp/internal/services/scoring"
)

// Timing is the delay before each automated lifecycle step.
type Timing struct {
    AssignDelay time.Duration
    AcceptDelay time.Duration
    ClaimDelay  time.Duration
    KPIDelay    time.Duration
}

var DefaultTiming = Timing{
    AssignDelay: 2 * time.Second,
    AcceptDelay: 5 * time.Minute,
    ClaimDelay:  30 * time.Second,
    KPIDelay:    30 * time.Second,
}

// PaymentVerifier confirms a checkout session was paid.
type PaymentVerifier interface {
    Verify(ctx context.Context, sessionID string) (ports.CheckoutSession, error)
}

type Deps struct {
    Store       ports.Store
    Payments    PaymentVerifier
    Notifier    ports.Notifier
    Events      ports.EventPublisher
    Triage      ports.DamageClassifier
    Matcher     *matching.Matcher
    Clock       clockwork.Clock
    Timing      Timing
    MaxAttempts int
}

// Service owns intake, client actions and the automated lifecycle steps for
// service records.
type Service struct {
    store       ports.Store
    payments    PaymentVerifier
    notifier    ports.Notifier
    events      ports.EventPublisher
    triage      ports.DamageClassifier
    matcher     *matching.Matcher
    clock       clockwork.Clock
    timing      Timing
    maxAttempts int
}

func New(d Deps) *Service {
    s := &Service{
        store:       d.Store,
        payments:    d.Payments,
        notifier:    d.Notifier,
        events:      d.Events,
        triage:      d.Triage,
        matcher:     d.Matcher,
        clock:       d.Clock,
        timing:      d.Timing,
        maxAttempts: d.MaxAttempts,
    }
    if s.clock == nil { s.clock = clockwork.NewRealClock() }
    if s.matcher == nil { s.matcher = matching.New(s.clock) }
    if s.timing == (Timing{}) { s.timing = DefaultTiming }
    if s.maxAttempts <= 0 { s.maxAttempts = 5 }
    return s
}

// Score evaluates an intake without persisting anything.
func (s *Service) Score(_ context.Context, in domain.IntakeRecord) (ports.ScoreOutcome, error) {
    if err := in.ValidateEnums(); err != nil {
        return ports.ScoreOutcome{}, err
    }
    hit, _ := domain.DetectEmergency(in.DamageDescription)
    return ports.ScoreOutcome{Result: scoring.Evaluate(in), EmergencyDetected: hit}, nil
}

func (s *Service) Create(ctx context.Context, in domain.IntakeRecord) (ports.Created, error) {
    if err := in.Validate(); err != nil {
        return ports.Created{}, err
    }
    rec, err := s.persist(ctx, s.newRecord(ctx, in, "intake"))
    if err != nil { return ports.Created{}, err }
    return ports.Created{Record: rec, Acknowledgement: s.acknowledge(ctx, rec, nil)}, nil
}

// SubmitClaim refuses unpaid claims before looking at anything else.
func (s *Service) SubmitClaim(ctx context.Context, c ports.Claim) (ports.Created, error) {
    if !c.PaymentConfirmed {
        return ports.Created{}, fmt.Errorf("claim lodgement fee not confirmed: %w", domain.ErrPaymentRequired)
    }
    if s.payments == nil {
        return ports.Created{}, domain.Systemf("verify payment", errors.New("payments not configured"))
    }
    sess, err := s.payments.Verify(ctx, c.CheckoutSessionID)
    if err != nil { return ports.Created{}, err }
    if err := c.Intake.Validate(); err != nil {
        return ports.Created{}, err
    }
    rec := s.newRecord(ctx, c.Intake, "claim")
    rec.Payment = &domain.Payment{
        SessionID:       sess.ID,
        PaymentIntentID: sess.PaymentIntentID,
        Amount:          sess.Amount,
        Status:          domain.PaymentPaid,
    }
    rec, err = s.persist(ctx, rec)
    if err != nil { return ports.Created{}, err }
    return ports.Created{Record: rec, Acknowledgement: s.acknowledge(ctx, rec, rec.Payment)}, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.ServiceRecord, error) {
    rec, err := s.store.GetRecord(ctx, id)
    if err != nil && !errors.Is(err, domain.ErrNotFound) {
        return rec, domain.Systemf("get record", err)
    }
    return rec, err
}

// newRecord scores the intake exactly as submitted. Triage only fills
// SuggestedDamageTypes.
func (s *Service) newRecord(ctx context.Context, in domain.IntakeRecord, actor string) domain.ServiceRecord {
    var suggested []domain.ServiceType
    if len(in.DamageTypes) == 0 && in.DamageDescription != "" {
        suggested = s.classify(ctx, in.DamageDescription)
    }
    now := s.clock.Now().UTC()
    res := scoring.Evaluate(in)
    hit, _ := domain.DetectEmergency(in.DamageDescription)
    return domain.ServiceRecord{
        ID:                   ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
        Status:               domain.StatusNew,
        Version:              1,
        CreatedAt:            now,
        UpdatedAt:            now,
        Intake:               in,
        SuggestedDamageTypes: suggested,
        Score:                res.Score,
        Priority:             res.Priority,
        ResponseTimeMinutes:  res.ResponseTimeMinutes,
        Assignment:           res.Assignment,
        EmergencyDetected:    hit,
        History:              []domain.HistoryEntry{{To: domain.StatusNew, At: now, Actor: actor}},
    }
}

// classify asks the triage model for damage types and falls back to keywords.
func (s *Service) classify(ctx context.Context, description string) []domain.ServiceType {
    if s.triage != nil {
        kinds, err := s.triage.ClassifyDamage(ctx, description)
        if err == nil && len(kinds) > 0 {
            return kinds
        }
        if err != nil {
            log.WithError(err).Warn("damage triage failed, using keywords")
        }
    }
    return domain.ClassifyDamage(description)
}

// persist stores the record and schedules its first step. A failed enqueue
// leaves the record for the stale sweep rather than failing the request.
func (s *Service) persist(ctx context.Context, rec domain.ServiceRecord) (domain.ServiceRecord, error) {
    if err := s.store.CreateRecord(ctx, rec); err != nil {
        if errors.Is(err, domain.ErrPaymentRequired) { return domain.ServiceRecord{}, err }
        return domain.ServiceRecord{}, domain.Systemf("create record", err)
    }
    if err := s.schedule(ctx, rec.ID, ports.JobAssign, s.timing.AssignDelay); err != nil {
        log.WithError(err).WithField("record", rec.ID).Error("could not schedule assignment")
    }
    log.WithFields(log.Fields{
        "record":   rec.ID,
        "score":    rec.Score,
        "priority": rec.Priority,
        "team":     rec.Assignment.Team,
    }).Info("service record created")
    metrics.RecordsCreated.WithLabelValues(string(rec.Priority)).Inc()
    s.publish(ctx, rec.ID, "", domain.StatusNew, rec.History[0].Actor)
    return rec, nil
}

func (s *Service) schedule(ctx context.Context, recordID string, kind ports.JobKind, delay time.Duration) error {
    return s.store.Enqueue(ctx, ports.LifecycleJob{
        ID:          uuid.NewString(),
        RecordID:    recordID,
        Kind:        kind,
        RunAt:       s.clock.Now().UTC().Add(delay),
        MaxAttempts: s.maxAttempts,
        Status:      ports.JobQueued,
    })
}

// Emergency reports whether a record gets the emergency acknowledgement.
func Emergency(rec domain.ServiceRecord) bool {
    return rec.Priority == domain.PriorityCritical || rec.Intake.Urgency == domain.UrgencyEmergency || rec.EmergencyDetected
}

// acknowledge builds the customer-facing acknowledgement and queues the
// matching email plus an ops alert for critical leads. Nothing here can fail
// the request.
func (s *Service) acknowledge(ctx context.Context, rec domain.ServiceRecord, paid *domain.Payment) string {
    window := FormatMinutes(rec.ResponseTimeMinutes)
    emergency := Emergency(rec)
    ack := fmt.Sprintf("Request received. We will contact you within %s.", window)
    tmpl := notify.CustomerAck
    if emergency {
        ack = fmt.Sprintf("Emergency request received. A senior responder will contact you within %s. If anyone is in danger call 000.", window)
        tmpl = notify.EmergencyAck
    }
    data := map[string]any{
        "Name":     rec.Intake.Contact.FullName,
        "Service":  humanService(rec.Intake.ServiceType),
        "Response": window,
        "RecordID": rec.ID,
    }
    if paid != nil {
        tmpl = notify.ClaimReceipt
        data["Amount"] = paid.Amount.StringFixed(2)
    }
    if rec.Intake.Contact.Email != "" {
        s.notify(ctx, ports.Message{To: rec.Intake.Contact.Email, Template: tmpl, Data: data})
    }
    if rec.Priority == domain.PriorityCritical || emergency {
        s.notify(ctx, ports.Message{To: ports.OpsRecipient, Template: notify.CriticalLead, Data: map[string]any{
            "RecordID": rec.ID,
            "Score":    rec.Score,
            "Service":  humanService(rec.Intake.ServiceType),
            "Suburb":   rec.Intake.Location.Suburb,
            "State":    rec.Intake.Location.State,
            "Team":     rec.Assignment.Team,
            "Response": window,
        }})
    }
    return ack
}

func (s *Service) notify(ctx context.Context, msg ports.Message) {
    if s.notifier == nil { return }
    if err := s.notifier.Send(ctx, msg); err != nil {
        log.WithError(err).WithField("template", msg.Template).Warn("notification not queued")
    }
}

func (s *Service) publish(ctx context.Context, recordID string, from, to domain.Status, actor string) {
    if s.events == nil { return }
    ev := ports.RecordEvent{Type: "record.transitioned", RecordID: recordID, From: from, To: to, Actor: actor, At: s.clock.Now().UTC()}
    if err := s.events.Publish(ctx, ev); err != nil {
        log.WithError(err).WithField("record", recordID).Warn("event not published")
    }
}

// FormatMinutes renders a response window for customers.
func FormatMinutes(m int) string {
    switch {
    case m < 60:
        return fmt.Sprintf("%d minutes", m)
    case m == 60:
        return "1 hour"
    case m < 1440:
        return fmt.Sprintf("%d hours", m/60)
    case m == 1440:
        return "24 hours"
    }
    return fmt.Sprintf("%d days", m/1440)
}

func humanService(s domain.ServiceType) string {
    out := []byte(s)
    for i, b := range out {
        if b == '_' { out[i] = ' ' }
    }
    return string(out)
}

var _ ports.Records = (*Service)(nil)

var _ PaymentVerifier = (*billing.Service)(nil)
