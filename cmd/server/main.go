package main

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/apex/log"
    jsonhandler "github.com/apex/log/handlers/json"
    texthandler "github.com/apex/log/handlers/text"

    "nrp/internal/app"
    "nrp/internal/config"
    "nrp/internal/workers/sweeper"
)

func setupLogging(cfg config.Config) {
    if cfg.LogFormat == "json" {
        log.SetHandler(jsonhandler.New(os.Stderr))
    } else {
        log.SetHandler(texthandler.New(os.Stderr))
    }
    lvl, err := log.ParseLevel(cfg.LogLevel)
    if err != nil {
        log.WithError(err).Warn("bad LOG_LEVEL, using info")
        lvl = log.InfoLevel
    }
    log.SetLevel(lvl)
}

func main() {
    cfg, err := config.Load()
    setupLogging(cfg)
    if err != nil {
        log.WithError(err).Fatal("config")
    }

    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()

    a, err := app.New(ctx, cfg)
    if err != nil {
        log.WithError(err).Fatal("startup")
    }
    defer a.Close()

    if err := app.Migrate(ctx, a.Store); err != nil {
        log.WithError(err).Fatal("migrate")
    }

    workersDone := make(chan struct{})
    go func() {
        defer close(workersDone)
        a.RunLifecycle(ctx)
    }()
    log.WithField("workers", cfg.LifecycleWorkers).Info("lifecycle workers started")

    if _, err := sweeper.Start(ctx, a.Sweeper(), a.Schedules(), time.Local); err != nil {
        log.WithError(err).Fatal("sweeper")
    }

    srv := &http.Server{
        Addr:              cfg.ListenAddr,
        Handler:           a.Handler(),
        ReadHeaderTimeout: 10 * time.Second,
    }
    errCh := make(chan error, 1)
    go func() { errCh <- srv.ListenAndServe() }()
    log.WithFields(log.Fields{"addr": cfg.ListenAddr, "store": cfg.StoreDriver, "env": cfg.Env}).Info("listening")

    select {
    case <-ctx.Done():
        log.Info("shutting down")
    case err := <-errCh:
        if !errors.Is(err, http.ErrServerClosed) {
            log.WithError(err).Error("server error")
        }
        stop()
    }

    shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        log.WithError(err).Warn("http shutdown")
    }
    select {
    case <-workersDone:
    case <-shutdownCtx.Done():
        log.Warn("lifecycle workers still busy at shutdown")
    }
}
