package domain

import (
    "errors"
    "fmt"
    "sort"
    "strings"
)

var (
    ErrNotFound        = errors.New("not found")
    ErrConflict        = errors.New("conflict")
    ErrPaymentRequired = errors.New("payment required")
)

// SessionUsed reports a checkout session that already paid for another record.
func SessionUsed(sessionID string) error {
    return fmt.Errorf("checkout session %s already used: %w", sessionID, ErrPaymentRequired)
}

// ValidationError carries field-level detail for rejected input.
type ValidationError struct {
    Fields map[string]string
}

func (e *ValidationError) Add(field, msg string) {
    if e.Fields == nil {
        e.Fields = map[string]string{}
    }
    if _, ok := e.Fields[field]; !ok {
        e.Fields[field] = msg
    }
}

func (e *ValidationError) Merge(other *ValidationError) {
    if other == nil {
        return
    }
    for k, v := range other.Fields {
        e.Add(k, v)
    }
}

// OrNil returns nil when no field was flagged so callers can return it directly.
func (e *ValidationError) OrNil() error {
    if len(e.Fields) == 0 {
        return nil
    }
    return e
}

func (e *ValidationError) Error() string {
    keys := make([]string, 0, len(e.Fields))
    for k := range e.Fields {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    parts := make([]string, 0, len(keys))
    for _, k := range keys {
        parts = append(parts, k+": "+e.Fields[k])
    }
    return "validation failed: " + strings.Join(parts, "; ")
}

// SystemError wraps a downstream collaborator failure (store, gateway, email).
type SystemError struct {
    Op  string
    Err error
}

func (e *SystemError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *SystemError) Unwrap() error { return e.Err }

func Systemf(op string, err error) error {
    if err == nil {
        return nil
    }
    return &SystemError{Op: op, Err: err}
}

// ConflictError explains why a guarded transition was refused.
type ConflictError struct {
    ID   string
    From Status
    To   Status
}

func (e *ConflictError) Error() string {
    return fmt.Sprintf("record %s: cannot move from %s to %s", e.ID, e.From, e.To)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }
