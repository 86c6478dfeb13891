package postgres

import (
    "context"
    "embed"
    "io/fs"
    "time"

    "github.com/apex/log"
    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/jackc/pgx/v5/stdlib"
    "github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

type DB struct {
    Pool *pgxpool.Pool
}

func Connect(ctx context.Context, url string) (*DB, error) {
    cfg, err := pgxpool.ParseConfig(url)
    if err != nil {
        return nil, err
    }
    cfg.MaxConns = 10
    cfg.HealthCheckPeriod = 30 * time.Second
    pool, err := pgxpool.NewWithConfig(ctx, cfg)
    if err != nil {
        return nil, err
    }
    if err := pool.Ping(ctx); err != nil {
        pool.Close()
        return nil, err
    }
    return &DB{Pool: pool}, nil
}

func (db *DB) Close() error {
    db.Pool.Close()
    return nil
}

// Migrate applies the embedded goose migrations.
func (db *DB) Migrate(ctx context.Context) error {
    sub, err := fs.Sub(migrations, "migrations")
    if err != nil { return err }
    sqlDB := stdlib.OpenDBFromPool(db.Pool)
    defer sqlDB.Close()
    p, err := goose.NewProvider(goose.DialectPostgres, sqlDB, sub)
    if err != nil { return err }
    results, err := p.Up(ctx)
    if err != nil { return err }
    for _, r := range results {
        log.WithFields(log.Fields{"version": r.Source.Version, "took": r.Duration}).Info("migration applied")
    }
    return nil
}
