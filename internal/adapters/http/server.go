package httpadapter

import (
    "context"
    "io"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "github.com/shopspring/decimal"

    api "nrp/internal/api"
    "nrp/internal/domain"
    "nrp/internal/metrics"
    "nrp/internal/ports"
)

// maxAudioBytes caps uploaded recordings.
const maxAudioBytes = 25 << 20

// Server implements the generated StrictServerInterface.
type Server struct {
    records    ports.Records
    billing    ports.Billing
    compliance ports.Compliance
    voice      ports.Voice
    limiter    *clientLimiter
    trustProxy bool
}

type Option func(*Server)

// WithRateLimit caps write requests per client address; rps <= 0 disables it.
func WithRateLimit(rps float64, burst int) Option {
    return func(s *Server) {
        if rps <= 0 { return }
        if burst < 1 { burst = 1 }
        s.limiter = newClientLimiter(rps, burst)
    }
}

// WithTrustedProxy takes the client address from X-Forwarded-For or
// X-Real-IP. Without it the rate limiter keys on the TCP peer.
func WithTrustedProxy() Option {
    return func(s *Server) { s.trustProxy = true }
}

func New(records ports.Records, billing ports.Billing, compliance ports.Compliance, voice ports.Voice, opts ...Option) *Server {
    s := &Server{records: records, billing: billing, compliance: compliance, voice: voice}
    for _, o := range opts {
        o(s)
    }
    return s
}

// Routes returns a chi.Router mounting the generated handlers.
func (s *Server) Routes() chi.Router {
    r := chi.NewRouter()
    r.Use(middleware.RequestID)
    if s.trustProxy { r.Use(middleware.RealIP) }
    r.Use(requestLogger)
    r.Use(middleware.Recoverer)
    if s.limiter != nil { r.Use(s.limiter.limit) }

    metrics.Register()
    r.Get("/metrics", promhttp.Handler().ServeHTTP)

    handler := api.NewStrictHandlerWithOptions(s, nil, api.StrictHTTPServerOptions{
        RequestErrorHandlerFunc:  badRequest,
        ResponseErrorHandlerFunc: writeError,
    })
    api.HandlerWithOptions(handler, api.ChiServerOptions{BaseRouter: r, ErrorHandlerFunc: badRequest})
    return r
}

func (s *Server) GetHealthz(ctx context.Context, _ api.GetHealthzRequestObject) (api.GetHealthzResponseObject, error) {
    ok := "ok"
    return api.GetHealthz200JSONResponse{Status: &ok}, nil
}

func (s *Server) ScoreIntake(ctx context.Context, req api.ScoreIntakeRequestObject) (api.ScoreIntakeResponseObject, error) {
    out, err := s.records.Score(ctx, *req.Body)
    if err != nil {
        return nil, err
    }
    return api.ScoreIntake200JSONResponse{
        Score:               out.Score,
        Breakdown:           out.Breakdown,
        Priority:            api.ScoreResponsePriority(out.Priority),
        ResponseTimeMinutes: out.ResponseTimeMinutes,
        Assignment:          out.Assignment,
        EmergencyDetected:   out.EmergencyDetected,
    }, nil
}

func (s *Server) CreateRecord(ctx context.Context, req api.CreateRecordRequestObject) (api.CreateRecordResponseObject, error) {
    c, err := s.records.Create(ctx, *req.Body)
    if err != nil {
        return nil, err
    }
    return api.CreateRecord201JSONResponse(created(c)), nil
}

func (s *Server) GetRecord(ctx context.Context, req api.GetRecordRequestObject) (api.GetRecordResponseObject, error) {
    rec, err := s.records.Get(ctx, req.Id)
    if err != nil {
        if isNotFound(err) {
            return api.GetRecord404JSONResponse{Code: "not_found", Message: "record " + req.Id + " not found"}, nil
        }
        return nil, err
    }
    return api.GetRecord200JSONResponse(rec), nil
}

func (s *Server) ActOnRecord(ctx context.Context, req api.ActOnRecordRequestObject) (api.ActOnRecordResponseObject, error) {
    a := ports.Action{Kind: ports.ActionKind(req.Body.Action), Actor: "client"}
    if req.Body.ContractorId != nil { a.ContractorID = *req.Body.ContractorId }
    if req.Body.Reason != nil { a.Reason = *req.Body.Reason }
    if req.Body.Actor != nil && *req.Body.Actor != "" { a.Actor = *req.Body.Actor }
    rec, err := s.records.Act(ctx, req.Id, a)
    if err != nil {
        return nil, err
    }
    return api.ActOnRecord200JSONResponse(rec), nil
}

func (s *Server) RefundRecord(ctx context.Context, req api.RefundRecordRequestObject) (api.RefundRecordResponseObject, error) {
    var amount *decimal.Decimal
    if req.Body.Amount != nil && *req.Body.Amount != "" {
        d, err := decimal.NewFromString(*req.Body.Amount)
        if err != nil {
            v := &domain.ValidationError{}
            v.Add("amount", "must be a decimal amount")
            return nil, v
        }
        amount = &d
    }
    res, err := s.billing.Refund(ctx, req.Id, amount)
    if err != nil {
        return nil, err
    }
    return api.RefundRecord200JSONResponse{Id: res.ID, Status: res.Status, Amount: res.Amount.StringFixed(2)}, nil
}

func (s *Server) CreateCheckout(ctx context.Context, req api.CreateCheckoutRequestObject) (api.CreateCheckoutResponseObject, error) {
    in := ports.CheckoutInput{}
    if req.Body.RecordId != nil { in.RecordID = *req.Body.RecordId }
    if req.Body.SuccessUrl != nil { in.SuccessURL = *req.Body.SuccessUrl }
    if req.Body.CancelUrl != nil { in.CancelURL = *req.Body.CancelUrl }
    sess, err := s.billing.Checkout(ctx, in)
    if err != nil {
        return nil, err
    }
    return api.CreateCheckout200JSONResponse{Id: sess.ID, Url: sess.URL, Amount: sess.Amount.StringFixed(2), Currency: sess.Currency}, nil
}

func (s *Server) SubmitClaim(ctx context.Context, req api.SubmitClaimRequestObject) (api.SubmitClaimResponseObject, error) {
    claim := ports.Claim{Intake: req.Body.Intake, PaymentConfirmed: req.Body.PaymentConfirmed}
    if req.Body.CheckoutSessionId != nil { claim.CheckoutSessionID = *req.Body.CheckoutSessionId }
    c, err := s.records.SubmitClaim(ctx, claim)
    if err != nil {
        return nil, err
    }
    return api.SubmitClaim201JSONResponse(created(c)), nil
}

func (s *Server) Transcribe(ctx context.Context, req api.TranscribeRequestObject) (api.TranscribeResponseObject, error) {
    lang := ""
    if req.Params.Language != nil { lang = *req.Params.Language }
    var audio io.Reader
    if req.Body != nil { audio = io.LimitReader(req.Body, maxAudioBytes) }
    res, err := s.voice.Transcribe(ctx, audio, lang)
    if err != nil {
        return nil, err
    }
    out := api.Transcribe200JSONResponse{
        Text:              res.Text,
        Language:          res.Language,
        Confidence:        float32(res.Confidence),
        Segments:          make([]api.Segment, 0, len(res.Segments)),
        EmergencyDetected: res.EmergencyDetected,
    }
    for _, seg := range res.Segments {
        out.Segments = append(out.Segments, api.Segment{Start: float32(seg.Start), End: float32(seg.End), Text: seg.Text})
    }
    if len(res.MatchedKeywords) > 0 {
        kw := res.MatchedKeywords
        out.MatchedKeywords = &kw
    }
    return out, nil
}

func (s *Server) ComplianceSummary(ctx context.Context, req api.ComplianceSummaryRequestObject) (api.ComplianceSummaryResponseObject, error) {
    tf := ""
    if req.Params.Timeframe != nil { tf = string(*req.Params.Timeframe) }
    snap, err := s.compliance.Summary(ctx, tf)
    if err != nil {
        return nil, err
    }
    return api.ComplianceSummary200JSONResponse(snap), nil
}

func created(c ports.Created) api.RecordCreated {
    out := api.RecordCreated{
        Id:                  c.Record.ID,
        Status:              string(c.Record.Status),
        Priority:            string(c.Record.Priority),
        ResponseTimeMinutes: c.Record.ResponseTimeMinutes,
        Acknowledgement:     c.Acknowledgement,
    }
    if c.Record.EmergencyDetected {
        t := true
        out.EmergencyDetected = &t
    }
    return out
}

var _ api.StrictServerInterface = (*Server)(nil)
