package stripe

import (
    "context"
    "fmt"
    "net/http"

    "github.com/shopspring/decimal"
    stripego "github.com/stripe/stripe-go/v82"
    "github.com/stripe/stripe-go/v82/checkout/session"
    "github.com/stripe/stripe-go/v82/refund"

    "nrp/internal/ports"
)

// Gateway is the Stripe Checkout implementation of ports.PaymentGateway.
// Amounts cross the wire in the currency's minor unit.
type Gateway struct{}

type Option func(*stripego.BackendConfig)

// WithBaseURL points the API backend somewhere other than api.stripe.com.
func WithBaseURL(url string) Option {
    return func(c *stripego.BackendConfig) { c.URL = stripego.String(url) }
}

func WithHTTPClient(hc *http.Client) Option {
    return func(c *stripego.BackendConfig) { c.HTTPClient = hc }
}

func New(secretKey string, opts ...Option) *Gateway {
    stripego.Key = secretKey
    if len(opts) > 0 {
        cfg := &stripego.BackendConfig{MaxNetworkRetries: stripego.Int64(0)}
        for _, o := range opts {
            o(cfg)
        }
        stripego.SetBackend(stripego.APIBackend, stripego.GetBackendWithConfig(stripego.APIBackend, cfg))
    }
    return &Gateway{}
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req ports.CheckoutRequest) (ports.CheckoutSession, error) {
    params := &stripego.CheckoutSessionParams{
        Mode:       stripego.String(string(stripego.CheckoutSessionModePayment)),
        SuccessURL: stripego.String(req.SuccessURL),
        CancelURL:  stripego.String(req.CancelURL),
        LineItems: []*stripego.CheckoutSessionLineItemParams{{
            PriceData: &stripego.CheckoutSessionLineItemPriceDataParams{
                Currency:   stripego.String(req.Currency),
                UnitAmount: stripego.Int64(minor(req.Amount)),
                ProductData: &stripego.CheckoutSessionLineItemPriceDataProductDataParams{
                    Name: stripego.String(req.Description),
                },
            },
            Quantity: stripego.Int64(1),
        }},
        Metadata: req.Metadata,
    }
    params.Context = ctx
    s, err := session.New(params)
    if err != nil {
        return ports.CheckoutSession{}, fmt.Errorf("stripe create checkout session: %w", err)
    }
    return toSession(s), nil
}

func (g *Gateway) GetCheckoutSession(ctx context.Context, id string) (ports.CheckoutSession, error) {
    params := &stripego.CheckoutSessionParams{}
    params.Context = ctx
    s, err := session.Get(id, params)
    if err != nil {
        return ports.CheckoutSession{}, fmt.Errorf("stripe get checkout session %s: %w", id, err)
    }
    return toSession(s), nil
}

func (g *Gateway) Refund(ctx context.Context, paymentIntentID string, amount decimal.Decimal) (ports.RefundResult, error) {
    params := &stripego.RefundParams{
        PaymentIntent: stripego.String(paymentIntentID),
        Amount:        stripego.Int64(minor(amount)),
    }
    params.Context = ctx
    r, err := refund.New(params)
    if err != nil {
        return ports.RefundResult{}, fmt.Errorf("stripe refund %s: %w", paymentIntentID, err)
    }
    return ports.RefundResult{ID: r.ID, Status: string(r.Status), Amount: major(r.Amount)}, nil
}

func toSession(s *stripego.CheckoutSession) ports.CheckoutSession {
    out := ports.CheckoutSession{
        ID:       s.ID,
        URL:      s.URL,
        Amount:   major(s.AmountTotal),
        Currency: string(s.Currency),
        Paid:     s.PaymentStatus == stripego.CheckoutSessionPaymentStatusPaid,
        Metadata: s.Metadata,
    }
    if s.PaymentIntent != nil {
        out.PaymentIntentID = s.PaymentIntent.ID
    }
    return out
}

func minor(d decimal.Decimal) int64 { return d.Shift(2).Round(0).IntPart() }

func major(n int64) decimal.Decimal { return decimal.New(n, -2) }

var _ ports.PaymentGateway = (*Gateway)(nil)
