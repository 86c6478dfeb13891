package ports

import (
    "context"
    "io"
    "time"

    "github.com/shopspring/decimal"

    "nrp/internal/domain"
)

type CheckoutRequest struct {
    Amount      decimal.Decimal
    Currency    string
    Description string
    SuccessURL  string
    CancelURL   string
    Metadata    map[string]string
}

type CheckoutSession struct {
    ID              string
    URL             string
    Amount          decimal.Decimal
    Currency        string
    Paid            bool
    PaymentIntentID string
    Metadata        map[string]string
}

type RefundResult struct {
    ID     string
    Status string
    Amount decimal.Decimal
}

// PaymentGateway is the card processor. Amounts are always computed by the
// caller from business rules.
type PaymentGateway interface {
    CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (CheckoutSession, error)
    GetCheckoutSession(ctx context.Context, id string) (CheckoutSession, error)
    Refund(ctx context.Context, paymentIntentID string, amount decimal.Decimal) (RefundResult, error)
}

// OpsRecipient addresses the operations channel instead of a person.
const OpsRecipient = "ops"

// Message is a templated notification; To is an email address or OpsRecipient.
type Message struct {
    To       string
    Template string
    Data     map[string]any
}

type Notifier interface {
    Send(ctx context.Context, msg Message) error
}

type Segment struct {
    Start float64
    End   float64
    Text  string
}

type Transcript struct {
    Text       string
    Segments   []Segment
    Confidence float64
    Language   string
}

type Transcriber interface {
    Transcribe(ctx context.Context, audio io.Reader, language string) (Transcript, error)
}

// DamageClassifier suggests damage types from a free-text description.
type DamageClassifier interface {
    ClassifyDamage(ctx context.Context, description string) ([]domain.ServiceType, error)
}

type RecordEvent struct {
    Type     string        `json:"type"`
    RecordID string        `json:"recordId"`
    From     domain.Status `json:"from"`
    To       domain.Status `json:"to"`
    Actor    string        `json:"actor"`
    At       time.Time     `json:"at"`
}

type EventPublisher interface {
    Publish(ctx context.Context, event RecordEvent) error
}
