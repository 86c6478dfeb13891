package httpadapter

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "io"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/jonboulle/clockwork"
    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "nrp/internal/adapters/memory"
    "nrp/internal/domain"
    "nrp/internal/ports"
    "nrp/internal/services/billing"
    "nrp/internal/services/compliance"
    "nrp/internal/services/records"
    "nrp/internal/services/voice"
)

type gateway struct{}

func (gateway) CreateCheckoutSession(_ context.Context, req ports.CheckoutRequest) (ports.CheckoutSession, error) {
    return ports.CheckoutSession{ID: "cs_1", URL: "https://pay.test/cs_1", Amount: req.Amount, Currency: req.Currency}, nil
}

func (gateway) GetCheckoutSession(context.Context, string) (ports.CheckoutSession, error) {
    return ports.CheckoutSession{}, errors.New("not used")
}

func (gateway) Refund(context.Context, string, decimal.Decimal) (ports.RefundResult, error) {
    return ports.RefundResult{}, errors.New("not used")
}

type transcriber struct{}

func (transcriber) Transcribe(_ context.Context, audio io.Reader, language string) (ports.Transcript, error) {
    b, _ := io.ReadAll(audio)
    return ports.Transcript{Text: string(b), Language: language, Confidence: 0.9, Segments: []ports.Segment{{End: 1, Text: string(b)}}}, nil
}

func newTestServer(t *testing.T) *httptest.Server {
    t.Helper()
    store := memory.New()
    clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
    bill := billing.New(store, gateway{}, billing.Config{SiteURL: "https://nrp.example.com"})
    recs := records.New(records.Deps{Store: store, Payments: bill, Clock: clock})
    srv := New(recs, bill, compliance.New(store, store, store, clock), voice.New(transcriber{}))
    ts := httptest.NewServer(srv.Routes())
    t.Cleanup(ts.Close)
    return ts
}

func do(t *testing.T, ts *httptest.Server, method, path, body string) (int, map[string]any) {
    t.Helper()
    req, err := http.NewRequest(method, ts.URL+path, strings.NewReader(body))
    require.NoError(t, err)
    req.Header.Set("Content-Type", "application/json")
    resp, err := ts.Client().Do(req)
    require.NoError(t, err)
    defer resp.Body.Close()
    out := map[string]any{}
    _ = json.NewDecoder(resp.Body).Decode(&out)
    return resp.StatusCode, out
}

const validIntake = `{
    "serviceType": "water_damage", "urgency": "emergency", "propertyType": "residential",
    "hasInsurance": true, "propertyValue": 900000, "decisionMaker": true,
    "location": {"suburb": "Paddington", "state": "QLD", "postcode": "4064"},
    "contact": {"fullName": "Alex Lee", "email": "alex@example.com"},
    "damageDescription": "water pouring through the ceiling, help now"
}`

func TestHealthz(t *testing.T) {
    ts := newTestServer(t)
    code, body := do(t, ts, http.MethodGet, "/healthz", "")
    assert.Equal(t, http.StatusOK, code)
    assert.Equal(t, "ok", body["status"])
}

func TestScoreRejectsUnknownEnum(t *testing.T) {
    ts := newTestServer(t)
    code, body := do(t, ts, http.MethodPost, "/score", `{"urgency": "whenever"}`)
    assert.Equal(t, http.StatusBadRequest, code)
    assert.Equal(t, "validation_failed", body["code"])
    assert.Contains(t, body["fields"], "urgency")
}

func TestScore(t *testing.T) {
    ts := newTestServer(t)
    code, body := do(t, ts, http.MethodPost, "/score", validIntake)
    require.Equal(t, http.StatusOK, code)
    assert.Equal(t, true, body["emergencyDetected"])
    assert.Contains(t, []any{"critical", "high"}, body["priority"])
}

func TestRecordCreateGetAndActions(t *testing.T) {
    ts := newTestServer(t)
    code, body := do(t, ts, http.MethodPost, "/records", validIntake)
    require.Equal(t, http.StatusCreated, code)
    id := body["id"].(string)
    assert.Equal(t, "new", body["status"])
    assert.Equal(t, true, body["emergencyDetected"])
    assert.NotEmpty(t, body["acknowledgement"])

    code, body = do(t, ts, http.MethodGet, "/records/"+id, "")
    require.Equal(t, http.StatusOK, code)
    assert.Equal(t, id, body["id"])

    code, body = do(t, ts, http.MethodGet, "/records/nope", "")
    assert.Equal(t, http.StatusNotFound, code)
    assert.Equal(t, "not_found", body["code"])

    code, body = do(t, ts, http.MethodPost, "/records/"+id+"/actions", `{"action": "cancel", "reason": "duplicate"}`)
    require.Equal(t, http.StatusOK, code)
    assert.Equal(t, "cancelled", body["status"])

    code, body = do(t, ts, http.MethodPost, "/records/"+id+"/actions", `{"action": "cancel"}`)
    assert.Equal(t, http.StatusConflict, code)
    assert.Equal(t, "conflict", body["code"])

    code, _ = do(t, ts, http.MethodPost, "/records/"+id+"/actions", `{"action": "teleport"}`)
    assert.Equal(t, http.StatusBadRequest, code)

    code, _ = do(t, ts, http.MethodPost, "/records/nope/actions", `{"action": "accept", "contractorId": "c1"}`)
    assert.Equal(t, http.StatusNotFound, code)
}

func TestCreateRecordValidation(t *testing.T) {
    ts := newTestServer(t)
    code, body := do(t, ts, http.MethodPost, "/records", `{"serviceType": "water_damage"}`)
    assert.Equal(t, http.StatusBadRequest, code)
    fields := body["fields"].(map[string]any)
    assert.Contains(t, fields, "contact.fullName")
    assert.Contains(t, fields, "location.postcode")

    code, body = do(t, ts, http.MethodPost, "/records", `{not json`)
    assert.Equal(t, http.StatusBadRequest, code)
    assert.Equal(t, "bad_request", body["code"])
}

func TestClaimRequiresPaymentFirst(t *testing.T) {
    ts := newTestServer(t)
    code, body := do(t, ts, http.MethodPost, "/claims", `{"intake": {}, "paymentConfirmed": false}`)
    assert.Equal(t, http.StatusPaymentRequired, code)
    assert.Equal(t, "payment_required", body["code"])
}

func TestCheckoutUsesServerFee(t *testing.T) {
    ts := newTestServer(t)
    code, body := do(t, ts, http.MethodPost, "/checkout", `{"successUrl": "https://evil.example.net/steal"}`)
    require.Equal(t, http.StatusOK, code)
    assert.Equal(t, "2750.00", body["amount"])
    assert.Equal(t, "https://pay.test/cs_1", body["url"])
}

func TestRefundRejectsBadAmount(t *testing.T) {
    ts := newTestServer(t)
    code, body := do(t, ts, http.MethodPost, "/records/r1/refund", `{"amount": "lots"}`)
    assert.Equal(t, http.StatusBadRequest, code)
    assert.Contains(t, body["fields"], "amount")
}

func TestComplianceSummary(t *testing.T) {
    ts := newTestServer(t)
    code, body := do(t, ts, http.MethodGet, "/compliance/summary", "")
    require.Equal(t, http.StatusOK, code)
    assert.Equal(t, "30d", body["timeframe"])

    code, _ = do(t, ts, http.MethodGet, "/compliance/summary?timeframe=fortnight", "")
    assert.Equal(t, http.StatusBadRequest, code)
}

func TestTranscriptionFlagsEmergency(t *testing.T) {
    ts := newTestServer(t)
    resp, err := ts.Client().Post(ts.URL+"/transcriptions?language=en-AU", "application/octet-stream", bytes.NewBufferString("there is a fire next door"))
    require.NoError(t, err)
    defer resp.Body.Close()
    require.Equal(t, http.StatusOK, resp.StatusCode)

    var body map[string]any
    require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
    assert.Equal(t, true, body["emergencyDetected"])
    assert.Equal(t, "en-AU", body["language"])
    assert.Contains(t, body["matchedKeywords"], "fire")
}

func TestUnknownErrorsAreMasked(t *testing.T) {
    code, body := status(domain.Systemf("save record", errors.New("pq: connection refused")))
    assert.Equal(t, http.StatusInternalServerError, code)
    assert.Equal(t, "internal error", body.Message)
}

func TestMetricsEndpoint(t *testing.T) {
    ts := newTestServer(t)
    do(t, ts, http.MethodGet, "/healthz", "")
    resp, err := ts.Client().Get(ts.URL + "/metrics")
    require.NoError(t, err)
    defer resp.Body.Close()
    b, _ := io.ReadAll(resp.Body)
    assert.Equal(t, http.StatusOK, resp.StatusCode)
    assert.Contains(t, string(b), `nrp_http_requests_total{method="GET",route="/healthz",status="200"}`)
}

func TestRateLimitAppliesToWrites(t *testing.T) {
    srv := New(nil, nil, nil, nil, WithRateLimit(0.001, 2))
    ts := httptest.NewServer(srv.Routes())
    defer ts.Close()

    for i := 0; i < 2; i++ {
        code, _ := do(t, ts, http.MethodPost, "/records", `{not json`)
        assert.Equal(t, http.StatusBadRequest, code)
    }
    code, body := do(t, ts, http.MethodPost, "/records", `{not json`)
    assert.Equal(t, http.StatusTooManyRequests, code)
    assert.Equal(t, "rate_limited", body["code"])

    code, _ = do(t, ts, http.MethodGet, "/healthz", "")
    assert.Equal(t, http.StatusOK, code)
}

func postFrom(t *testing.T, ts *httptest.Server, forwardedFor string) int {
    t.Helper()
    req, err := http.NewRequest(http.MethodPost, ts.URL+"/records", strings.NewReader(`{not json`))
    require.NoError(t, err)
    req.Header.Set("X-Forwarded-For", forwardedFor)
    resp, err := ts.Client().Do(req)
    require.NoError(t, err)
    resp.Body.Close()
    return resp.StatusCode
}

func TestRateLimitIgnoresForwardedForByDefault(t *testing.T) {
    ts := httptest.NewServer(New(nil, nil, nil, nil, WithRateLimit(0.001, 2)).Routes())
    defer ts.Close()

    assert.Equal(t, http.StatusBadRequest, postFrom(t, ts, "203.0.113.1"))
    assert.Equal(t, http.StatusBadRequest, postFrom(t, ts, "203.0.113.2"))
    assert.Equal(t, http.StatusTooManyRequests, postFrom(t, ts, "203.0.113.3"))
}

func TestRateLimitBehindTrustedProxy(t *testing.T) {
    ts := httptest.NewServer(New(nil, nil, nil, nil, WithRateLimit(0.001, 1), WithTrustedProxy()).Routes())
    defer ts.Close()

    assert.Equal(t, http.StatusBadRequest, postFrom(t, ts, "203.0.113.1"))
    assert.Equal(t, http.StatusTooManyRequests, postFrom(t, ts, "203.0.113.1"))
    assert.Equal(t, http.StatusBadRequest, postFrom(t, ts, "203.0.113.2"))
}

func TestClientLimiterForgetsIdleClients(t *testing.T) {
    l := newClientLimiter(1, 1)
    now := time.Now()
    assert.True(t, l.allow("a", now))
    assert.False(t, l.allow("a", now))
    later := now.Add(time.Hour)
    assert.True(t, l.allow("b", later))
    assert.NotContains(t, l.clients, "a")
}
