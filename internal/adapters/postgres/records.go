package postgres

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "strings"

    "github.com/jackc/pgx/v5"
    "github.com/jackc/pgx/v5/pgconn"

    "nrp/internal/domain"
    "nrp/internal/ports"
)

const (
    uniqueViolation   = "23505"
    paymentSessionKey = "service_records_payment_session_key"
)

func (db *DB) CreateRecord(ctx context.Context, rec domain.ServiceRecord) error {
    if rec.Version == 0 { rec.Version = 1 }
    doc, err := json.Marshal(rec)
    if err != nil { return err }
    _, err = db.Pool.Exec(ctx, `
        INSERT INTO service_records (id, status, version, priority, score, created_at, updated_at, payment_session, doc)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, rec.ID, rec.Status, rec.Version, rec.Priority, rec.Score, rec.CreatedAt, rec.UpdatedAt, paymentSession(rec), doc)
    if sessionTaken(err) {
        return domain.SessionUsed(rec.PaymentSession())
    }
    var pgErr *pgconn.PgError
    if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
        return fmt.Errorf("record %s already exists: %w", rec.ID, domain.ErrConflict)
    }
    return err
}

// paymentSession is the value of the unique payment_session column.
func paymentSession(rec domain.ServiceRecord) *string {
    sid := rec.PaymentSession()
    if sid == "" { return nil }
    return &sid
}

func sessionTaken(err error) bool {
    var pgErr *pgconn.PgError
    return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == paymentSessionKey
}

func (db *DB) GetRecord(ctx context.Context, id string) (domain.ServiceRecord, error) {
    var doc []byte
    err := db.Pool.QueryRow(ctx, `SELECT doc FROM service_records WHERE id = $1`, id).Scan(&doc)
    if errors.Is(err, pgx.ErrNoRows) {
        return domain.ServiceRecord{}, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
    }
    if err != nil { return domain.ServiceRecord{}, err }
    return decodeRecord(doc)
}

// UpdateRecord locks the row for the length of the transaction, so mutate
// always sees the latest committed state.
func (db *DB) UpdateRecord(ctx context.Context, id string, mutate func(*domain.ServiceRecord) error) (rec domain.ServiceRecord, err error) {
    tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
    if err != nil { return rec, err }
    defer func() {
        if err != nil { _ = tx.Rollback(ctx) } else { err = tx.Commit(ctx) }
    }()

    var doc []byte
    var version int
    err = tx.QueryRow(ctx, `SELECT doc, version FROM service_records WHERE id = $1 FOR UPDATE`, id).Scan(&doc, &version)
    if errors.Is(err, pgx.ErrNoRows) {
        return rec, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
    }
    if err != nil { return rec, err }
    if rec, err = decodeRecord(doc); err != nil { return rec, err }
    if err = mutate(&rec); err != nil { return domain.ServiceRecord{}, err }

    rec.ID = id
    rec.Version = version + 1
    if doc, err = json.Marshal(rec); err != nil { return domain.ServiceRecord{}, err }
    _, err = tx.Exec(ctx, `
        UPDATE service_records
        SET status=$2, version=$3, priority=$4, score=$5, updated_at=$6, payment_session=$7, doc=$8
        WHERE id=$1
    `, id, rec.Status, rec.Version, rec.Priority, rec.Score, rec.UpdatedAt, paymentSession(rec), doc)
    if sessionTaken(err) {
        return domain.ServiceRecord{}, domain.SessionUsed(rec.PaymentSession())
    }
    if err != nil { return domain.ServiceRecord{}, err }
    return rec, nil
}

func (db *DB) ListRecords(ctx context.Context, f ports.RecordFilter) ([]domain.ServiceRecord, error) {
    var where []string
    var args []any
    arg := func(v any) string {
        args = append(args, v)
        return fmt.Sprintf("$%d", len(args))
    }
    if !f.CreatedAfter.IsZero() {
        where = append(where, "created_at >= "+arg(f.CreatedAfter))
    }
    if !f.UpdatedBefore.IsZero() {
        where = append(where, "updated_at < "+arg(f.UpdatedBefore))
    }
    if len(f.Statuses) > 0 {
        st := make([]string, len(f.Statuses))
        for i, s := range f.Statuses {
            st[i] = string(s)
        }
        where = append(where, "status = ANY("+arg(st)+")")
    }
    q := `SELECT doc FROM service_records`
    if len(where) > 0 {
        q += " WHERE " + strings.Join(where, " AND ")
    }
    q += " ORDER BY created_at, id"
    if f.Limit > 0 {
        q += " LIMIT " + arg(f.Limit)
    }

    rows, err := db.Pool.Query(ctx, q, args...)
    if err != nil { return nil, err }
    defer rows.Close()
    var out []domain.ServiceRecord
    for rows.Next() {
        var doc []byte
        if err := rows.Scan(&doc); err != nil { return nil, err }
        rec, err := decodeRecord(doc)
        if err != nil { return nil, err }
        out = append(out, rec)
    }
    return out, rows.Err()
}

func decodeRecord(doc []byte) (domain.ServiceRecord, error) {
    var rec domain.ServiceRecord
    if err := json.Unmarshal(doc, &rec); err != nil {
        return rec, fmt.Errorf("decode record: %w", err)
    }
    return rec, nil
}

func (db *DB) UpsertContractor(ctx context.Context, c domain.Contractor) error {
    doc, err := json.Marshal(c)
    if err != nil { return err }
    _, err = db.Pool.Exec(ctx, `
        INSERT INTO contractors (id, company_name, available, doc, updated_at)
        VALUES ($1, $2, $3, $4, now())
        ON CONFLICT (id) DO UPDATE
        SET company_name = EXCLUDED.company_name, available = EXCLUDED.available, doc = EXCLUDED.doc, updated_at = now()
    `, c.ID, c.CompanyName, c.Available, doc)
    return err
}

func (db *DB) GetContractor(ctx context.Context, id string) (domain.Contractor, error) {
    var doc []byte
    err := db.Pool.QueryRow(ctx, `SELECT doc FROM contractors WHERE id = $1`, id).Scan(&doc)
    if errors.Is(err, pgx.ErrNoRows) {
        return domain.Contractor{}, fmt.Errorf("contractor %s: %w", id, domain.ErrNotFound)
    }
    if err != nil { return domain.Contractor{}, err }
    var c domain.Contractor
    return c, json.Unmarshal(doc, &c)
}

func (db *DB) ListContractors(ctx context.Context) ([]domain.Contractor, error) {
    rows, err := db.Pool.Query(ctx, `SELECT doc FROM contractors ORDER BY id`)
    if err != nil { return nil, err }
    defer rows.Close()
    var out []domain.Contractor
    for rows.Next() {
        var doc []byte
        if err := rows.Scan(&doc); err != nil { return nil, err }
        var c domain.Contractor
        if err := json.Unmarshal(doc, &c); err != nil { return nil, err }
        out = append(out, c)
    }
    return out, rows.Err()
}

var _ ports.Store = (*DB)(nil)
