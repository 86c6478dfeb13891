package ports

import (
    "context"
    "time"

    "nrp/internal/domain"
)

// RecordRepository stores service records. UpdateRecord runs mutate under the
// store's per-record concurrency control; if mutate returns an error nothing
// is written and the error is returned as-is.
type RecordRepository interface {
    CreateRecord(ctx context.Context, rec domain.ServiceRecord) error
    GetRecord(ctx context.Context, id string) (domain.ServiceRecord, error)
    UpdateRecord(ctx context.Context, id string, mutate func(*domain.ServiceRecord) error) (domain.ServiceRecord, error)
    ListRecords(ctx context.Context, filter RecordFilter) ([]domain.ServiceRecord, error)
}

// RecordFilter narrows ListRecords. Zero values mean no constraint.
type RecordFilter struct {
    CreatedAfter  time.Time
    UpdatedBefore time.Time
    Statuses      []domain.Status
    Limit         int
}

// ContractorRepository provides the contractor directory.
type ContractorRepository interface {
    UpsertContractor(ctx context.Context, c domain.Contractor) error
    GetContractor(ctx context.Context, id string) (domain.Contractor, error)
    ListContractors(ctx context.Context) ([]domain.Contractor, error)
}

// Store is everything a persistence adapter provides.
type Store interface {
    RecordRepository
    ContractorRepository
    JobRepository
    Close() error
}
