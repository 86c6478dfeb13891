// Package sqlstore persists records and lifecycle jobs through database/sql
// for SQLite and MySQL deployments. Timestamps are stored as unix nanoseconds
// so both dialects share one query set.
package sqlstore

import (
    "context"
    "database/sql"
    "embed"
    "errors"
    "fmt"
    "io/fs"
    "time"

    "github.com/apex/log"
    "github.com/go-sql-driver/mysql"
    "github.com/mattn/go-sqlite3"
    "github.com/pressly/goose/v3"
)

//go:embed migrations
var migrations embed.FS

const (
    SQLite = "sqlite3"
    MySQL  = "mysql"
)

type Store struct {
    db      *sql.DB
    dialect string
}

// Open connects to dsn with the named driver ("sqlite3" or "mysql").
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
    if driver != SQLite && driver != MySQL {
        return nil, fmt.Errorf("unsupported driver %q", driver)
    }
    db, err := sql.Open(driver, dsn)
    if err != nil {
        return nil, err
    }
    if driver == SQLite {
        db.SetMaxOpenConns(1)
    } else {
        db.SetMaxOpenConns(10)
        db.SetConnMaxLifetime(5 * time.Minute)
    }
    if err := db.PingContext(ctx); err != nil {
        db.Close()
        return nil, err
    }
    return &Store{db: db, dialect: driver}, nil
}

// NewWithDB wraps an existing handle.
func NewWithDB(db *sql.DB, dialect string) *Store {
    return &Store{db: db, dialect: dialect}
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Migrate(ctx context.Context) error {
    sub, err := fs.Sub(migrations, "migrations/"+s.dialect)
    if err != nil { return err }
    d := goose.DialectSQLite3
    if s.dialect == MySQL {
        d = goose.DialectMySQL
    }
    p, err := goose.NewProvider(d, s.db, sub)
    if err != nil { return err }
    results, err := p.Up(ctx)
    if err != nil { return err }
    for _, r := range results {
        log.WithFields(log.Fields{"version": r.Source.Version, "dialect": s.dialect, "took": r.Duration}).Info("migration applied")
    }
    return nil
}

func isDuplicate(err error) bool {
    var me *mysql.MySQLError
    if errors.As(err, &me) {
        return me.Number == 1062
    }
    var se sqlite3.Error
    if errors.As(err, &se) {
        return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
    }
    return false
}

func nanos(t time.Time) int64 { return t.UTC().UnixNano() }

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }
