package httpadapter

import (
    "encoding/json"
    "errors"
    "net/http"

    "github.com/apex/log"
    "github.com/go-chi/chi/v5/middleware"

    api "nrp/internal/api"
    "nrp/internal/domain"
)

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }

// status classifies a service error. Anything unrecognised is a 500 and its
// detail stays in the log.
func status(err error) (int, api.Error) {
    var v *domain.ValidationError
    switch {
    case errors.As(err, &v):
        fields := v.Fields
        return http.StatusBadRequest, api.Error{Code: "validation_failed", Message: "validation failed", Fields: &fields}
    case errors.Is(err, domain.ErrPaymentRequired):
        return http.StatusPaymentRequired, api.Error{Code: "payment_required", Message: err.Error()}
    case errors.Is(err, domain.ErrNotFound):
        return http.StatusNotFound, api.Error{Code: "not_found", Message: err.Error()}
    case errors.Is(err, domain.ErrConflict):
        return http.StatusConflict, api.Error{Code: "conflict", Message: err.Error()}
    }
    return http.StatusInternalServerError, api.Error{Code: "internal", Message: "internal error"}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
    code, body := status(err)
    entry := log.WithFields(log.Fields{"path": r.URL.Path, "status": code, "request_id": middleware.GetReqID(r.Context())})
    if code >= http.StatusInternalServerError {
        entry.WithError(err).Error("request failed")
    } else {
        entry.WithError(err).Debug("request rejected")
    }
    writeJSON(w, code, body)
}

func badRequest(w http.ResponseWriter, r *http.Request, err error) {
    writeJSON(w, http.StatusBadRequest, api.Error{Code: "bad_request", Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(code)
    _ = json.NewEncoder(w).Encode(v)
}
