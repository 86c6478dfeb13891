package billing

import (
    "context"
    "errors"
    "fmt"
    "net/url"
    "strings"

    "github.com/apex/log"
    "github.com/shopspring/decimal"
    "golang.org/x/net/publicsuffix"

    "nrp/internal/domain"
    "nrp/internal/ports"
)

const Currency = "aud"

// DefaultPlatformFee is the claim lodgement fee in AUD.
var DefaultPlatformFee = decimal.RequireFromString("2750.00")

type Config struct {
    PlatformFee decimal.Decimal
    SiteURL     string
}

type Service struct {
    records ports.RecordRepository
    gateway ports.PaymentGateway
    cfg     Config
}

func New(records ports.RecordRepository, gateway ports.PaymentGateway, cfg Config) *Service {
    if cfg.PlatformFee.IsZero() { cfg.PlatformFee = DefaultPlatformFee }
    cfg.SiteURL = strings.TrimRight(cfg.SiteURL, "/")
    return &Service{records: records, gateway: gateway, cfg: cfg}
}

// Fee is the amount charged for a claim. It never depends on request input.
func (s *Service) Fee() decimal.Decimal { return s.cfg.PlatformFee }

func (s *Service) Checkout(ctx context.Context, in ports.CheckoutInput) (ports.CheckoutSession, error) {
    if s.gateway == nil {
        return ports.CheckoutSession{}, domain.Systemf("checkout", errors.New("payment gateway not configured"))
    }
    meta := map[string]string{"purpose": "claim_lodgement"}
    if in.RecordID != "" {
        rec, err := s.records.GetRecord(ctx, in.RecordID)
        if err != nil { return ports.CheckoutSession{}, err }
        if rec.Payment != nil && rec.Payment.Status != domain.PaymentPending {
            return ports.CheckoutSession{}, fmt.Errorf("record %s already paid: %w", rec.ID, domain.ErrConflict)
        }
        meta["record_id"] = rec.ID
    }
    req := ports.CheckoutRequest{
        Amount:      s.Fee(),
        Currency:    Currency,
        Description: "Insurance claim lodgement fee",
        SuccessURL:  s.returnURL(in.SuccessURL, "/claims/success?session_id={CHECKOUT_SESSION_ID}"),
        CancelURL:   s.returnURL(in.CancelURL, "/claims/cancelled"),
        Metadata:    meta,
    }
    sess, err := s.gateway.CreateCheckoutSession(ctx, req)
    if err != nil {
        return ports.CheckoutSession{}, domain.Systemf("create checkout session", err)
    }
    if in.RecordID != "" {
        _, err = s.records.UpdateRecord(ctx, in.RecordID, func(r *domain.ServiceRecord) error {
            r.Payment = &domain.Payment{SessionID: sess.ID, Amount: req.Amount, Status: domain.PaymentPending}
            return nil
        })
        if err != nil { return ports.CheckoutSession{}, domain.Systemf("attach payment", err) }
    }
    log.WithFields(log.Fields{"session": sess.ID, "record": in.RecordID, "amount": req.Amount.StringFixed(2)}).Info("checkout session created")
    return sess, nil
}

// Verify confirms a checkout session was paid in full.
func (s *Service) Verify(ctx context.Context, sessionID string) (ports.CheckoutSession, error) {
    if sessionID == "" {
        return ports.CheckoutSession{}, fmt.Errorf("checkout session missing: %w", domain.ErrPaymentRequired)
    }
    if s.gateway == nil {
        return ports.CheckoutSession{}, domain.Systemf("verify payment", errors.New("payment gateway not configured"))
    }
    sess, err := s.gateway.GetCheckoutSession(ctx, sessionID)
    if err != nil {
        return ports.CheckoutSession{}, domain.Systemf("get checkout session", err)
    }
    if !sess.Paid || sess.Amount.LessThan(s.Fee()) {
        return ports.CheckoutSession{}, fmt.Errorf("session %s not paid: %w", sessionID, domain.ErrPaymentRequired)
    }
    return sess, nil
}

// Refund returns part or all of a record's payment. The refunded amount is
// reserved on the record before the gateway is called so two refunds can
// never exceed what was paid.
func (s *Service) Refund(ctx context.Context, recordID string, amount *decimal.Decimal) (ports.RefundResult, error) {
    if s.gateway == nil {
        return ports.RefundResult{}, domain.Systemf("refund", errors.New("payment gateway not configured"))
    }
    var amt decimal.Decimal
    var intent string
    reserve := func(r *domain.ServiceRecord) error {
        p := r.Payment
        if p == nil || p.PaymentIntentID == "" || p.Status == domain.PaymentPending {
            v := &domain.ValidationError{}
            v.Add("payment", "record has no settled payment")
            return v
        }
        remaining := p.Amount.Sub(p.Refunded)
        amt = remaining
        if amount != nil { amt = *amount }
        if !amt.IsPositive() || amt.GreaterThan(remaining) {
            v := &domain.ValidationError{}
            v.Add("amount", "must be positive and at most "+remaining.StringFixed(2))
            return v
        }
        intent = p.PaymentIntentID
        p.Refunded = p.Refunded.Add(amt)
        p.Status = refundStatus(*p)
        return nil
    }
    if _, err := s.records.UpdateRecord(ctx, recordID, reserve); err != nil {
        return ports.RefundResult{}, err
    }

    res, err := s.gateway.Refund(ctx, intent, amt)
    if err != nil {
        _, rbErr := s.records.UpdateRecord(ctx, recordID, func(r *domain.ServiceRecord) error {
            r.Payment.Refunded = r.Payment.Refunded.Sub(amt)
            r.Payment.Status = refundStatus(*r.Payment)
            return nil
        })
        if rbErr != nil {
            log.WithError(rbErr).WithField("record", recordID).Error("refund rollback failed")
        }
        return ports.RefundResult{}, domain.Systemf("refund", err)
    }
    if res.Amount.IsZero() { res.Amount = amt }
    log.WithFields(log.Fields{"record": recordID, "refund": res.ID, "amount": amt.StringFixed(2)}).Info("refund issued")
    return res, nil
}

func refundStatus(p domain.Payment) domain.PaymentStatus {
    switch {
    case p.Refunded.IsZero():
        return domain.PaymentPaid
    case p.Refunded.GreaterThanOrEqual(p.Amount):
        return domain.PaymentRefunded
    }
    return domain.PaymentPartial
}

// returnURL accepts a client-supplied URL only when it is on the same
// registrable domain as the site.
func (s *Service) returnURL(candidate, fallbackPath string) string {
    def := s.cfg.SiteURL + fallbackPath
    if candidate == "" { return def }
    u, err := url.Parse(candidate)
    if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
        return def
    }
    site, err := url.Parse(s.cfg.SiteURL)
    if err != nil || site.Host == "" { return def }
    if u.Scheme == "http" && site.Scheme == "https" { return def }
    if registrable(u.Hostname()) != registrable(site.Hostname()) {
        log.WithField("url", candidate).Warn("rejected foreign return url")
        return def
    }
    return candidate
}

func registrable(host string) string {
    host = strings.ToLower(host)
    r, err := publicsuffix.EffectiveTLDPlusOne(host)
    if err != nil { return host }
    return r
}

var _ ports.Billing = (*Service)(nil)
