package domain

import (
    "time"

    "github.com/shopspring/decimal"
)

type Status string

const (
    StatusNew            Status = "new"
    StatusAssigned       Status = "assigned"
    StatusAccepted       Status = "accepted"
    StatusDeclined       Status = "declined"
    StatusClaimSubmitted Status = "claim_submitted"
    StatusKPIRecorded    Status = "kpi_recorded"
    StatusCompleted      Status = "completed"
    StatusCancelled      Status = "cancelled"
)

// AllStatuses in lifecycle order.
var AllStatuses = []Status{
    StatusNew, StatusAssigned, StatusAccepted, StatusDeclined,
    StatusClaimSubmitted, StatusKPIRecorded, StatusCompleted, StatusCancelled,
}

func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusCancelled }

// transitions is the full edge set; anything not listed is refused.
var transitions = map[Status][]Status{
    StatusNew:            {StatusAssigned, StatusCancelled},
    StatusAssigned:       {StatusAccepted, StatusDeclined, StatusCancelled},
    StatusDeclined:       {StatusAssigned, StatusCancelled},
    StatusAccepted:       {StatusClaimSubmitted, StatusKPIRecorded, StatusCompleted, StatusCancelled},
    StatusClaimSubmitted: {StatusKPIRecorded, StatusCompleted, StatusCancelled},
    StatusKPIRecorded:    {StatusCompleted, StatusCancelled},
}

func CanTransition(from, to Status) bool {
    for _, s := range transitions[from] {
        if s == to {
            return true
        }
    }
    return false
}

type Priority string

const (
    PriorityCritical Priority = "critical"
    PriorityHigh     Priority = "high"
    PriorityMedium   Priority = "medium"
    PriorityLow      Priority = "low"
)

// Assignment is the symbolic team label picked for a scored record.
type Assignment struct {
    Team       string `json:"team"`
    Escalation bool   `json:"escalation"`
}

// ContractorAssignment is a denormalized snapshot of the matched contractor.
type ContractorAssignment struct {
    ID          string          `json:"id"`
    CompanyName string          `json:"companyName"`
    AssignedAt  time.Time       `json:"assignedAt"`
    AcceptedAt  *time.Time      `json:"acceptedAt,omitempty"`
    MatchScore  float64         `json:"matchScore"`
    DistanceKm  float64         `json:"distanceKm"`
    Payout      decimal.Decimal `json:"payout"`
}

type HistoryEntry struct {
    From  Status    `json:"from"`
    To    Status    `json:"to"`
    At    time.Time `json:"at"`
    Actor string    `json:"actor"`
    Note  string    `json:"note,omitempty"`
}

type PaymentStatus string

const (
    PaymentPending  PaymentStatus = "pending"
    PaymentPaid     PaymentStatus = "paid"
    PaymentRefunded PaymentStatus = "refunded"
    PaymentPartial  PaymentStatus = "partially_refunded"
)

type Payment struct {
    SessionID       string          `json:"sessionId,omitempty"`
    PaymentIntentID string          `json:"paymentIntentId,omitempty"`
    Amount          decimal.Decimal `json:"amount"`
    Refunded        decimal.Decimal `json:"refunded"`
    Status          PaymentStatus   `json:"status"`
}

// ServiceRecord is the unit of work tracked through the workflow. The store
// owns its identity; only lifecycle steps and client actions change it.
// Intake is kept as submitted. SuggestedDamageTypes come from triage of the
// description and steer contractor matching only.
type ServiceRecord struct {
    ID                   string                `json:"id"`
    Status               Status                `json:"status"`
    Version              int                   `json:"version"`
    CreatedAt            time.Time             `json:"createdAt"`
    UpdatedAt            time.Time             `json:"updatedAt"`
    Intake               IntakeRecord          `json:"intake"`
    SuggestedDamageTypes []ServiceType         `json:"suggestedDamageTypes,omitempty"`
    Score                int                   `json:"score"`
    Priority             Priority              `json:"priority"`
    ResponseTimeMinutes  int                   `json:"responseTimeMinutes"`
    Assignment           Assignment            `json:"assignment"`
    Contractor           *ContractorAssignment `json:"contractor,omitempty"`
    DeclinedBy           []string              `json:"declinedBy,omitempty"`
    Payment              *Payment              `json:"payment,omitempty"`
    EmergencyDetected    bool                  `json:"emergencyDetected"`
    LastError            string                `json:"lastError,omitempty"`
    History              []HistoryEntry        `json:"history"`
}

// PaymentSession is the checkout session that paid for this record, if any.
// A session pays for at most one record.
func (r ServiceRecord) PaymentSession() string {
    if r.Payment == nil { return "" }
    return r.Payment.SessionID
}

// Move applies a guarded status change and records it in the history. A
// successful move clears LastError. The caller must hold whatever lock the
// store uses for this record.
func (r *ServiceRecord) Move(to Status, at time.Time, actor, note string) error {
    if !CanTransition(r.Status, to) {
        return &ConflictError{ID: r.ID, From: r.Status, To: to}
    }
    r.History = append(r.History, HistoryEntry{From: r.Status, To: to, At: at, Actor: actor, Note: note})
    r.Status = to
    r.UpdatedAt = at
    r.LastError = ""
    return nil
}

// Clone returns a copy that shares no slices or pointers with r.
func (r ServiceRecord) Clone() ServiceRecord {
    out := r
    out.Intake.DamageTypes = append([]ServiceType(nil), r.Intake.DamageTypes...)
    out.SuggestedDamageTypes = append([]ServiceType(nil), r.SuggestedDamageTypes...)
    out.DeclinedBy = append([]string(nil), r.DeclinedBy...)
    out.History = append([]HistoryEntry(nil), r.History...)
    if r.Contractor != nil {
        c := *r.Contractor
        if r.Contractor.AcceptedAt != nil {
            at := *r.Contractor.AcceptedAt
            c.AcceptedAt = &at
        }
        out.Contractor = &c
    }
    if r.Payment != nil {
        p := *r.Payment
        out.Payment = &p
    }
    if r.Intake.Location.Latitude != nil {
        v := *r.Intake.Location.Latitude
        out.Intake.Location.Latitude = &v
    }
    if r.Intake.Location.Longitude != nil {
        v := *r.Intake.Location.Longitude
        out.Intake.Location.Longitude = &v
    }
    return out
}
