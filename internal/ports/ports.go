package ports

import (
    "context"
    "io"

    "github.com/shopspring/decimal"

    "nrp/internal/domain"
    "nrp/internal/services/scoring"
)

type ActionKind string

const (
    ActionAccept   ActionKind = "accept"
    ActionDecline  ActionKind = "decline"
    ActionComplete ActionKind = "complete"
    ActionCancel   ActionKind = "cancel"
)

type Action struct {
    Kind         ActionKind
    ContractorID string
    Reason       string
    Actor        string
}

// ScoreOutcome is the scoring result plus intake-level signals.
type ScoreOutcome struct {
    scoring.Result
    EmergencyDetected bool
}

type Created struct {
    Record          domain.ServiceRecord
    Acknowledgement string
}

// Claim is a paid claim submission. PaymentConfirmed is the client's claim;
// the session is still verified with the gateway.
type Claim struct {
    Intake            domain.IntakeRecord
    PaymentConfirmed  bool
    CheckoutSessionID string
}

// Records scores intakes and manages service records.
type Records interface {
    Score(ctx context.Context, in domain.IntakeRecord) (ScoreOutcome, error)
    Create(ctx context.Context, in domain.IntakeRecord) (Created, error)
    Get(ctx context.Context, id string) (domain.ServiceRecord, error)
    Act(ctx context.Context, id string, action Action) (domain.ServiceRecord, error)
    SubmitClaim(ctx context.Context, claim Claim) (Created, error)
}

type CheckoutInput struct {
    RecordID   string
    SuccessURL string
    CancelURL  string
}

// Billing computes fees server-side and talks to the payment gateway.
type Billing interface {
    Checkout(ctx context.Context, in CheckoutInput) (CheckoutSession, error)
    Refund(ctx context.Context, recordID string, amount *decimal.Decimal) (RefundResult, error)
}

// Compliance produces rollups over the contractor directory and records.
type Compliance interface {
    Summary(ctx context.Context, timeframe string) (domain.ComplianceSnapshot, error)
}

type VoiceResult struct {
    Transcript
    EmergencyDetected bool
    MatchedKeywords   []string
}

// Voice transcribes recorded calls and flags emergencies.
type Voice interface {
    Transcribe(ctx context.Context, audio io.Reader, language string) (VoiceResult, error)
}
