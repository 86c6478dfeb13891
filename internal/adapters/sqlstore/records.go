package sqlstore

import (
    "context"
    "database/sql"
    "encoding/json"
    "errors"
    "fmt"
    "strings"

    "nrp/internal/domain"
    "nrp/internal/ports"
)

// casAttempts bounds how often UpdateRecord re-reads after losing a version race.
const casAttempts = 3

func (s *Store) CreateRecord(ctx context.Context, rec domain.ServiceRecord) error {
    if rec.Version == 0 { rec.Version = 1 }
    doc, err := json.Marshal(rec)
    if err != nil { return err }
    _, err = s.db.ExecContext(ctx,
        `INSERT INTO service_records (id, status, version, priority, score, created_at, updated_at, payment_session, doc) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
        rec.ID, string(rec.Status), rec.Version, string(rec.Priority), rec.Score, nanos(rec.CreatedAt), nanos(rec.UpdatedAt), paymentSession(rec), string(doc))
    if sessionTaken(err) {
        return domain.SessionUsed(rec.PaymentSession())
    }
    if isDuplicate(err) {
        return fmt.Errorf("record %s already exists: %w", rec.ID, domain.ErrConflict)
    }
    return err
}

func paymentSession(rec domain.ServiceRecord) sql.NullString {
    sid := rec.PaymentSession()
    return sql.NullString{String: sid, Valid: sid != ""}
}

// sessionTaken reports a hit on the unique payment_session index.
func sessionTaken(err error) bool {
    return isDuplicate(err) && strings.Contains(err.Error(), "payment_session")
}

func (s *Store) GetRecord(ctx context.Context, id string) (domain.ServiceRecord, error) {
    rec, _, err := s.load(ctx, id)
    return rec, err
}

func (s *Store) load(ctx context.Context, id string) (domain.ServiceRecord, int, error) {
    var doc string
    var version int
    err := s.db.QueryRowContext(ctx, `SELECT doc, version FROM service_records WHERE id = ?`, id).Scan(&doc, &version)
    if errors.Is(err, sql.ErrNoRows) {
        return domain.ServiceRecord{}, 0, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
    }
    if err != nil { return domain.ServiceRecord{}, 0, err }
    var rec domain.ServiceRecord
    if err := json.Unmarshal([]byte(doc), &rec); err != nil {
        return rec, 0, fmt.Errorf("decode record: %w", err)
    }
    rec.Version = version
    return rec, version, nil
}

// UpdateRecord writes only if the row still carries the version it read.
// mutate may run more than once when writers race.
func (s *Store) UpdateRecord(ctx context.Context, id string, mutate func(*domain.ServiceRecord) error) (domain.ServiceRecord, error) {
    for i := 0; i < casAttempts; i++ {
        rec, version, err := s.load(ctx, id)
        if err != nil { return domain.ServiceRecord{}, err }
        if err := mutate(&rec); err != nil { return domain.ServiceRecord{}, err }

        rec.ID = id
        rec.Version = version + 1
        doc, err := json.Marshal(rec)
        if err != nil { return domain.ServiceRecord{}, err }
        res, err := s.db.ExecContext(ctx,
            `UPDATE service_records SET status = ?, version = ?, priority = ?, score = ?, updated_at = ?, payment_session = ?, doc = ? WHERE id = ? AND version = ?`,
            string(rec.Status), rec.Version, string(rec.Priority), rec.Score, nanos(rec.UpdatedAt), paymentSession(rec), string(doc), id, version)
        if sessionTaken(err) {
            return domain.ServiceRecord{}, domain.SessionUsed(rec.PaymentSession())
        }
        if err != nil { return domain.ServiceRecord{}, err }
        n, err := res.RowsAffected()
        if err != nil { return domain.ServiceRecord{}, err }
        if n == 1 {
            return rec, nil
        }
    }
    return domain.ServiceRecord{}, fmt.Errorf("record %s changed concurrently: %w", id, domain.ErrConflict)
}

func (s *Store) ListRecords(ctx context.Context, f ports.RecordFilter) ([]domain.ServiceRecord, error) {
    var where []string
    var args []any
    if !f.CreatedAfter.IsZero() {
        where = append(where, "created_at >= ?")
        args = append(args, nanos(f.CreatedAfter))
    }
    if !f.UpdatedBefore.IsZero() {
        where = append(where, "updated_at < ?")
        args = append(args, nanos(f.UpdatedBefore))
    }
    if len(f.Statuses) > 0 {
        marks := make([]string, len(f.Statuses))
        for i, st := range f.Statuses {
            marks[i] = "?"
            args = append(args, string(st))
        }
        where = append(where, "status IN ("+strings.Join(marks, ", ")+")")
    }
    q := "SELECT doc, version FROM service_records"
    if len(where) > 0 {
        q += " WHERE " + strings.Join(where, " AND ")
    }
    q += " ORDER BY created_at, id"
    if f.Limit > 0 {
        q += " LIMIT ?"
        args = append(args, f.Limit)
    }

    rows, err := s.db.QueryContext(ctx, q, args...)
    if err != nil { return nil, err }
    defer rows.Close()
    var out []domain.ServiceRecord
    for rows.Next() {
        var doc string
        var version int
        if err := rows.Scan(&doc, &version); err != nil { return nil, err }
        var rec domain.ServiceRecord
        if err := json.Unmarshal([]byte(doc), &rec); err != nil {
            return nil, fmt.Errorf("decode record: %w", err)
        }
        rec.Version = version
        out = append(out, rec)
    }
    return out, rows.Err()
}

const (
    upsertContractorSQLite = `INSERT INTO contractors (id, company_name, available, doc) VALUES (?, ?, ?, ?)
        ON CONFLICT (id) DO UPDATE SET company_name = excluded.company_name, available = excluded.available, doc = excluded.doc`
    upsertContractorMySQL = `INSERT INTO contractors (id, company_name, available, doc) VALUES (?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE company_name = VALUES(company_name), available = VALUES(available), doc = VALUES(doc)`
)

// UpsertContractor is a single statement so re-seeding an unchanged row is a
// no-op on both dialects.
func (s *Store) UpsertContractor(ctx context.Context, c domain.Contractor) error {
    doc, err := json.Marshal(c)
    if err != nil { return err }
    q := upsertContractorSQLite
    if s.dialect == MySQL {
        q = upsertContractorMySQL
    }
    _, err = s.db.ExecContext(ctx, q, c.ID, c.CompanyName, c.Available, string(doc))
    return err
}

func (s *Store) GetContractor(ctx context.Context, id string) (domain.Contractor, error) {
    var doc string
    err := s.db.QueryRowContext(ctx, `SELECT doc FROM contractors WHERE id = ?`, id).Scan(&doc)
    if errors.Is(err, sql.ErrNoRows) {
        return domain.Contractor{}, fmt.Errorf("contractor %s: %w", id, domain.ErrNotFound)
    }
    if err != nil { return domain.Contractor{}, err }
    var c domain.Contractor
    return c, json.Unmarshal([]byte(doc), &c)
}

func (s *Store) ListContractors(ctx context.Context) ([]domain.Contractor, error) {
    rows, err := s.db.QueryContext(ctx, `SELECT doc FROM contractors ORDER BY id`)
    if err != nil { return nil, err }
    defer rows.Close()
    var out []domain.Contractor
    for rows.Next() {
        var doc string
        if err := rows.Scan(&doc); err != nil { return nil, err }
        var c domain.Contractor
        if err := json.Unmarshal([]byte(doc), &c); err != nil { return nil, err }
        out = append(out, c)
    }
    return out, rows.Err()
}

var _ ports.Store = (*Store)(nil)
