package stripe

import (
    "context"
    "io"
    "net/http"
    "net/http/httptest"
    "net/url"
    "testing"

    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "nrp/internal/ports"
)

func TestCheckoutAndRefund(t *testing.T) {
    var form url.Values
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        body, _ := io.ReadAll(r.Body)
        form, _ = url.ParseQuery(string(body))
        w.Header().Set("Content-Type", "application/json")
        switch {
        case r.Method == http.MethodPost && r.URL.Path == "/v1/checkout/sessions":
            io.WriteString(w, `{"id":"cs_1","object":"checkout.session","url":"https://checkout.test/cs_1","amount_total":275000,"currency":"aud","payment_status":"unpaid","metadata":{"record_id":"r1"}}`)
        case r.Method == http.MethodGet && r.URL.Path == "/v1/checkout/sessions/cs_1":
            io.WriteString(w, `{"id":"cs_1","object":"checkout.session","amount_total":275000,"currency":"aud","payment_status":"paid","payment_intent":"pi_9"}`)
        case r.Method == http.MethodPost && r.URL.Path == "/v1/refunds":
            io.WriteString(w, `{"id":"re_1","object":"refund","amount":100050,"status":"succeeded"}`)
        default:
            w.WriteHeader(http.StatusNotFound)
            io.WriteString(w, `{"error":{"type":"invalid_request_error","message":"no such route"}}`)
        }
    }))
    defer srv.Close()

    g := New("sk_test_x", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
    ctx := context.Background()

    s, err := g.CreateCheckoutSession(ctx, ports.CheckoutRequest{
        Amount: decimal.RequireFromString("2750.00"), Currency: "aud", Description: "Platform fee",
        SuccessURL: "https://nrp.test/ok", CancelURL: "https://nrp.test/no",
        Metadata: map[string]string{"record_id": "r1"},
    })
    require.NoError(t, err)
    assert.Equal(t, "275000", form.Get("line_items[0][price_data][unit_amount]"))
    assert.Equal(t, "payment", form.Get("mode"))
    assert.Equal(t, "r1", form.Get("metadata[record_id]"))
    assert.Equal(t, "https://checkout.test/cs_1", s.URL)
    assert.True(t, s.Amount.Equal(decimal.NewFromInt(2750)))
    assert.False(t, s.Paid)

    s, err = g.GetCheckoutSession(ctx, "cs_1")
    require.NoError(t, err)
    assert.True(t, s.Paid)
    assert.Equal(t, "pi_9", s.PaymentIntentID)

    r, err := g.Refund(ctx, "pi_9", decimal.RequireFromString("1000.50"))
    require.NoError(t, err)
    assert.Equal(t, "100050", form.Get("amount"))
    assert.Equal(t, "succeeded", r.Status)
    assert.True(t, r.Amount.Equal(decimal.RequireFromString("1000.50")))

    _, err = g.GetCheckoutSession(ctx, "cs_missing")
    assert.Error(t, err)
}
