package records

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/apex/log"

    "nrp/internal/domain"
    "nrp/internal/notify"
    "nrp/internal/ports"
    "nrp/internal/services/billing"
)

// Act applies a client action. Every action is a guarded transition on the
// current stored state, so of two racing accepts exactly one wins and the
// other gets a conflict.
func (s *Service) Act(ctx context.Context, id string, a ports.Action) (domain.ServiceRecord, error) {
    actor := a.Actor
    if actor == "" { actor = "client" }
    now := s.clock.Now().UTC()

    var from domain.Status
    var mutate func(r *domain.ServiceRecord) error
    switch a.Kind {
    case ports.ActionAccept:
        mutate = func(r *domain.ServiceRecord) error {
            from = r.Status
            if err := checkContractor(r, a.ContractorID, domain.StatusAccepted); err != nil { return err }
            if err := r.Move(domain.StatusAccepted, now, actor, a.Reason); err != nil { return err }
            r.Contractor.AcceptedAt = &now
            return nil
        }
    case ports.ActionDecline:
        mutate = func(r *domain.ServiceRecord) error {
            from = r.Status
            if err := checkContractor(r, a.ContractorID, domain.StatusDeclined); err != nil { return err }
            if err := r.Move(domain.StatusDeclined, now, actor, a.Reason); err != nil { return err }
            r.DeclinedBy = append(r.DeclinedBy, r.Contractor.ID)
            r.Contractor = nil
            return nil
        }
    case ports.ActionComplete:
        mutate = func(r *domain.ServiceRecord) error {
            from = r.Status
            return r.Move(domain.StatusCompleted, now, actor, a.Reason)
        }
    case ports.ActionCancel:
        mutate = func(r *domain.ServiceRecord) error {
            from = r.Status
            return r.Move(domain.StatusCancelled, now, actor, a.Reason)
        }
    default:
        v := &domain.ValidationError{}
        v.Add("action", "must be one of accept, decline, complete, cancel")
        return domain.ServiceRecord{}, v
    }

    rec, err := s.store.UpdateRecord(ctx, id, mutate)
    if err != nil { return domain.ServiceRecord{}, classify(err, "update record") }

    log.WithFields(log.Fields{"record": id, "action": a.Kind, "from": from, "to": rec.Status, "actor": actor}).Info("record action applied")
    s.publish(ctx, id, from, rec.Status, actor)

    var next ports.JobKind
    switch a.Kind {
    case ports.ActionAccept:
        next = afterAccept(rec)
    case ports.ActionDecline:
        next = ports.JobAssign
    }
    if next != "" {
        if err := s.schedule(ctx, id, next, s.delayFor(next)); err != nil {
            log.WithError(err).WithField("record", id).Error("could not schedule follow-up")
        }
    }
    return rec, nil
}

func checkContractor(r *domain.ServiceRecord, contractorID string, to domain.Status) error {
    if r.Status != domain.StatusAssigned || r.Contractor == nil {
        return &domain.ConflictError{ID: r.ID, From: r.Status, To: to}
    }
    if contractorID != "" && contractorID != r.Contractor.ID {
        v := &domain.ValidationError{}
        v.Add("contractorId", "record is assigned to a different contractor")
        return v
    }
    return nil
}

// classify keeps domain errors as they are and wraps anything else as a
// collaborator failure.
func classify(err error, op string) error {
    var v *domain.ValidationError
    if errors.As(err, &v) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrConflict) {
        return err
    }
    return domain.Systemf(op, err)
}

func afterAccept(rec domain.ServiceRecord) ports.JobKind {
    if rec.Intake.HasInsurance { return ports.JobSubmitClaim }
    return ports.JobRecordKPI
}

func (s *Service) delayFor(kind ports.JobKind) time.Duration {
    switch kind {
    case ports.JobAssign:
        return s.timing.AssignDelay
    case ports.JobAutoAccept:
        return s.timing.AcceptDelay
    case ports.JobSubmitClaim:
        return s.timing.ClaimDelay
    case ports.JobRecordKPI:
        return s.timing.KPIDelay
    }
    return 0
}

// NextStep is the automated step a record is waiting on, if any.
func NextStep(rec domain.ServiceRecord) (ports.JobKind, bool) {
    switch rec.Status {
    case domain.StatusNew, domain.StatusDeclined:
        return ports.JobAssign, true
    case domain.StatusAssigned:
        return ports.JobAutoAccept, true
    case domain.StatusAccepted:
        return afterAccept(rec), true
    case domain.StatusClaimSubmitted:
        return ports.JobRecordKPI, true
    }
    return "", false
}

// errSkip marks a step whose guard no longer holds; the job completes as a
// no-op.
var errSkip = errors.New("step no longer applies")

// Process runs one lifecycle job. Each step re-reads the record under the
// store's concurrency control and checks its guard, so duplicate or stale
// jobs are harmless.
func (s *Service) Process(ctx context.Context, job ports.LifecycleJob) error {
    entry := log.WithFields(log.Fields{"job": job.ID, "record": job.RecordID, "kind": job.Kind, "attempt": job.Attempts})
    var err error
    switch job.Kind {
    case ports.JobAssign:
        err = s.assign(ctx, job)
    case ports.JobAutoAccept:
        err = s.autoAccept(ctx, job)
    case ports.JobSubmitClaim:
        err = s.submitClaim(ctx, job)
    case ports.JobRecordKPI:
        err = s.recordKPI(ctx, job)
    default:
        return fmt.Errorf("unknown job kind %q", job.Kind)
    }
    if errors.Is(err, errSkip) {
        entry.Info("lifecycle step skipped")
        return nil
    }
    if err != nil { return err }
    entry.Info("lifecycle step done")
    return nil
}

func guard(allowed ...domain.Status) func(r *domain.ServiceRecord) error {
    return func(r *domain.ServiceRecord) error {
        for _, st := range allowed {
            if r.Status == st { return nil }
        }
        return errSkip
    }
}

func (s *Service) assign(ctx context.Context, job ports.LifecycleJob) error {
    rec, err := s.store.GetRecord(ctx, job.RecordID)
    if err != nil { return err }
    if err := guard(domain.StatusNew, domain.StatusDeclined)(&rec); err != nil { return err }

    contractors, err := s.store.ListContractors(ctx)
    if err != nil { return fmt.Errorf("list contractors: %w", err) }
    best, ok := s.matcher.Best(rec, contractors)
    if !ok {
        return fmt.Errorf("no eligible contractor for %s in %s", rec.Intake.ServiceType, rec.Intake.Location.Postcode)
    }
    now := s.clock.Now().UTC()
    payout := billing.Payout(rec.Intake.ServiceType, rec.Priority)
    from := rec.Status
    rec, err = s.store.UpdateRecord(ctx, job.RecordID, func(r *domain.ServiceRecord) error {
        if err := guard(domain.StatusNew, domain.StatusDeclined)(r); err != nil { return err }
        if err := r.Move(domain.StatusAssigned, now, "lifecycle", best.Contractor.CompanyName); err != nil { return err }
        r.Contractor = &domain.ContractorAssignment{
            ID:          best.Contractor.ID,
            CompanyName: best.Contractor.CompanyName,
            AssignedAt:  now,
            MatchScore:  best.Score,
            DistanceKm:  best.DistanceKm,
            Payout:      payout,
        }
        r.LastError = ""
        return nil
    })
    if err != nil { return err }
    s.publish(ctx, rec.ID, from, rec.Status, "lifecycle")
    if best.Contractor.Email != "" {
        s.notify(ctx, ports.Message{To: best.Contractor.Email, Template: notify.ContractorOffer, Data: map[string]any{
            "Company":    best.Contractor.CompanyName,
            "Service":    humanService(rec.Intake.ServiceType),
            "Priority":   rec.Priority,
            "Suburb":     rec.Intake.Location.Suburb,
            "State":      rec.Intake.Location.State,
            "DistanceKm": best.DistanceKm,
            "Payout":     payout.StringFixed(2),
            "RecordID":   rec.ID,
        }})
    }
    return s.chain(ctx, rec.ID, ports.JobAutoAccept)
}

// autoAccept only fires once the current assignment has been outstanding for
// the accept delay; a job left over from an earlier assignment is a no-op.
func (s *Service) autoAccept(ctx context.Context, job ports.LifecycleJob) error {
    now := s.clock.Now().UTC()
    rec, err := s.store.UpdateRecord(ctx, job.RecordID, func(r *domain.ServiceRecord) error {
        if err := guard(domain.StatusAssigned)(r); err != nil { return err }
        if r.Contractor == nil || now.Sub(r.Contractor.AssignedAt) < s.timing.AcceptDelay {
            return errSkip
        }
        if err := r.Move(domain.StatusAccepted, now, "lifecycle", "auto-accepted"); err != nil { return err }
        r.Contractor.AcceptedAt = &now
        return nil
    })
    if err != nil { return err }
    s.publish(ctx, rec.ID, domain.StatusAssigned, rec.Status, "lifecycle")
    return s.chain(ctx, rec.ID, afterAccept(rec))
}

func (s *Service) submitClaim(ctx context.Context, job ports.LifecycleJob) error {
    now := s.clock.Now().UTC()
    rec, err := s.store.UpdateRecord(ctx, job.RecordID, func(r *domain.ServiceRecord) error {
        if err := guard(domain.StatusAccepted)(r); err != nil { return err }
        if !r.Intake.HasInsurance { return errSkip }
        note := "claim lodged with " + r.Intake.Insurance.Insurer
        if r.Intake.Insurance.ClaimNumber != "" {
            note += " ref " + r.Intake.Insurance.ClaimNumber
        }
        return r.Move(domain.StatusClaimSubmitted, now, "lifecycle", note)
    })
    if err != nil { return err }
    s.publish(ctx, rec.ID, domain.StatusAccepted, rec.Status, "lifecycle")
    return s.chain(ctx, rec.ID, ports.JobRecordKPI)
}

func (s *Service) recordKPI(ctx context.Context, job ports.LifecycleJob) error {
    now := s.clock.Now().UTC()
    var from domain.Status
    rec, err := s.store.UpdateRecord(ctx, job.RecordID, func(r *domain.ServiceRecord) error {
        if err := guard(domain.StatusAccepted, domain.StatusClaimSubmitted)(r); err != nil { return err }
        from = r.Status
        note := "no acceptance recorded"
        if r.Contractor != nil && r.Contractor.AcceptedAt != nil {
            took := r.Contractor.AcceptedAt.Sub(r.CreatedAt)
            verdict := "met"
            if took.Minutes() > float64(r.ResponseTimeMinutes) { verdict = "missed" }
            note = fmt.Sprintf("accepted after %.0f min, target %d min %s", took.Minutes(), r.ResponseTimeMinutes, verdict)
        }
        return r.Move(domain.StatusKPIRecorded, now, "lifecycle", note)
    })
    if err != nil { return err }
    s.publish(ctx, rec.ID, from, rec.Status, "lifecycle")
    return nil
}

// chain schedules the next step. The record has already moved, so a failed
// enqueue is logged and left to the stale sweep instead of retrying this one.
func (s *Service) chain(ctx context.Context, recordID string, next ports.JobKind) error {
    if err := s.schedule(ctx, recordID, next, s.delayFor(next)); err != nil {
        log.WithError(err).WithFields(log.Fields{"record": recordID, "kind": next}).Error("could not schedule next step")
    }
    return nil
}

// DeadLetter records the terminal failure of a job on its record and alerts
// ops.
func (s *Service) DeadLetter(ctx context.Context, job ports.LifecycleJob, reason string) {
    msg := fmt.Sprintf("%s failed after %d attempts: %s", job.Kind, job.Attempts, reason)
    _, err := s.store.UpdateRecord(ctx, job.RecordID, func(r *domain.ServiceRecord) error {
        r.LastError = msg
        r.UpdatedAt = s.clock.Now().UTC()
        return nil
    })
    if err != nil && !errors.Is(err, domain.ErrNotFound) {
        log.WithError(err).WithField("record", job.RecordID).Error("could not record dead letter")
    }
    s.notify(ctx, ports.Message{To: ports.OpsRecipient, Template: notify.DeadLetter, Data: map[string]any{
        "Kind":     job.Kind,
        "RecordID": job.RecordID,
        "Attempts": job.Attempts,
        "Error":    reason,
    }})
}

// Reschedule enqueues the pending step for a record that has none. The
// stale sweep uses it.
func (s *Service) Reschedule(ctx context.Context, rec domain.ServiceRecord) (ports.JobKind, error) {
    kind, ok := NextStep(rec)
    if !ok { return "", nil }
    var delay time.Duration
    if kind == ports.JobAutoAccept && rec.Contractor != nil {
        delay = max(rec.Contractor.AssignedAt.Add(s.timing.AcceptDelay).Sub(s.clock.Now()), 0)
    }
    return kind, s.schedule(ctx, rec.ID, kind, delay)
}
