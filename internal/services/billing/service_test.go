package billing

import (
    "context"
    "errors"
    "sync"
    "testing"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "nrp/internal/adapters/memory"
    "nrp/internal/domain"
    "nrp/internal/ports"
)

type fakeGateway struct {
    mu        sync.Mutex
    created   []ports.CheckoutRequest
    sessions  map[string]ports.CheckoutSession
    refunds   []decimal.Decimal
    refundErr error
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, req ports.CheckoutRequest) (ports.CheckoutSession, error) {
    f.mu.Lock()
    defer f.mu.Unlock()
    f.created = append(f.created, req)
    return ports.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1", Amount: req.Amount, Currency: req.Currency}, nil
}

func (f *fakeGateway) GetCheckoutSession(_ context.Context, id string) (ports.CheckoutSession, error) {
    s, ok := f.sessions[id]
    if !ok { return ports.CheckoutSession{}, errors.New("no such session") }
    return s, nil
}

func (f *fakeGateway) Refund(_ context.Context, _ string, amount decimal.Decimal) (ports.RefundResult, error) {
    if f.refundErr != nil { return ports.RefundResult{}, f.refundErr }
    f.refunds = append(f.refunds, amount)
    return ports.RefundResult{ID: "re_1", Status: "succeeded"}, nil
}

func newService(t *testing.T) (*Service, *fakeGateway, *memory.Store) {
    t.Helper()
    store := memory.New()
    gw := &fakeGateway{sessions: map[string]ports.CheckoutSession{}}
    return New(store, gw, Config{SiteURL: "https://www.nrp.com.au/"}), gw, store
}

func TestCheckoutUsesServerFee(t *testing.T) {
    svc, gw, store := newService(t)
    ctx := context.Background()
    require.NoError(t, store.CreateRecord(ctx, domain.ServiceRecord{ID: "r1", Status: domain.StatusNew}))

    sess, err := svc.Checkout(ctx, ports.CheckoutInput{RecordID: "r1"})
    require.NoError(t, err)
    assert.Equal(t, "cs_test_1", sess.ID)
    require.Len(t, gw.created, 1)
    assert.True(t, gw.created[0].Amount.Equal(DefaultPlatformFee))
    assert.Equal(t, "r1", gw.created[0].Metadata["record_id"])

    rec, _ := store.GetRecord(ctx, "r1")
    require.NotNil(t, rec.Payment)
    assert.Equal(t, domain.PaymentPending, rec.Payment.Status)
}

func TestCheckoutUnknownRecord(t *testing.T) {
    svc, _, _ := newService(t)
    _, err := svc.Checkout(context.Background(), ports.CheckoutInput{RecordID: "nope"})
    assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReturnURLMustShareSiteDomain(t *testing.T) {
    svc, _, _ := newService(t)
    assert.Equal(t, "https://claims.nrp.com.au/done", svc.returnURL("https://claims.nrp.com.au/done", "/x"))
    assert.Equal(t, "https://www.nrp.com.au/x", svc.returnURL("https://evil.com.au/done", "/x"))
    assert.Equal(t, "https://www.nrp.com.au/x", svc.returnURL("http://www.nrp.com.au/done", "/x"))
    assert.Equal(t, "https://www.nrp.com.au/x", svc.returnURL("javascript:alert(1)", "/x"))
    assert.Equal(t, "https://www.nrp.com.au/x", svc.returnURL("", "/x"))
}

func TestVerify(t *testing.T) {
    svc, gw, _ := newService(t)
    ctx := context.Background()
    gw.sessions["paid"] = ports.CheckoutSession{ID: "paid", Paid: true, Amount: DefaultPlatformFee, PaymentIntentID: "pi_1"}
    gw.sessions["open"] = ports.CheckoutSession{ID: "open", Amount: DefaultPlatformFee}
    gw.sessions["short"] = ports.CheckoutSession{ID: "short", Paid: true, Amount: decimal.NewFromInt(1)}

    sess, err := svc.Verify(ctx, "paid")
    require.NoError(t, err)
    assert.Equal(t, "pi_1", sess.PaymentIntentID)

    for _, id := range []string{"open", "short", ""} {
        _, err = svc.Verify(ctx, id)
        assert.ErrorIs(t, err, domain.ErrPaymentRequired, id)
    }

    _, err = svc.Verify(ctx, "missing")
    var sys *domain.SystemError
    assert.ErrorAs(t, err, &sys)
}

func paidRecord(t *testing.T, store *memory.Store) {
    t.Helper()
    require.NoError(t, store.CreateRecord(context.Background(), domain.ServiceRecord{
        ID:     "r1",
        Status: domain.StatusAccepted,
        Payment: &domain.Payment{
            SessionID: "cs_1", PaymentIntentID: "pi_1",
            Amount: DefaultPlatformFee, Status: domain.PaymentPaid,
        },
    }))
}

func TestRefundIsCappedAtAmountPaid(t *testing.T) {
    svc, gw, store := newService(t)
    ctx := context.Background()
    paidRecord(t, store)

    part := decimal.NewFromInt(1000)
    _, err := svc.Refund(ctx, "r1", &part)
    require.NoError(t, err)
    rec, _ := store.GetRecord(ctx, "r1")
    assert.Equal(t, domain.PaymentPartial, rec.Payment.Status)

    tooMuch := decimal.NewFromInt(2000)
    _, err = svc.Refund(ctx, "r1", &tooMuch)
    var v *domain.ValidationError
    require.ErrorAs(t, err, &v)
    assert.Contains(t, v.Fields, "amount")

    res, err := svc.Refund(ctx, "r1", nil)
    require.NoError(t, err)
    assert.True(t, res.Amount.Equal(decimal.NewFromInt(1750)))
    rec, _ = store.GetRecord(ctx, "r1")
    assert.Equal(t, domain.PaymentRefunded, rec.Payment.Status)
    assert.Len(t, gw.refunds, 2)
}

func TestRefundRollsBackOnGatewayFailure(t *testing.T) {
    svc, gw, store := newService(t)
    ctx := context.Background()
    paidRecord(t, store)
    gw.refundErr = errors.New("card network down")

    _, err := svc.Refund(ctx, "r1", nil)
    var sys *domain.SystemError
    require.ErrorAs(t, err, &sys)

    rec, _ := store.GetRecord(ctx, "r1")
    assert.True(t, rec.Payment.Refunded.IsZero())
    assert.Equal(t, domain.PaymentPaid, rec.Payment.Status)
}

func TestPayout(t *testing.T) {
    assert.Equal(t, "975", Payout(domain.FireDamage, domain.PriorityCritical).String())
    assert.Equal(t, "400", Payout("", domain.PriorityLow).String())
    assert.Equal(t, "495", Payout(domain.WaterDamage, domain.PriorityMedium).String())
}
