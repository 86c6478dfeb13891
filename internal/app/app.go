// Package app assembles the service from configuration. Collaborators whose
// credentials are missing are left out and the features that need them
// degrade: notifications are dropped, checkout and claims fail with a
// system error, triage falls back to keyword matching.
package app

import (
    "context"
    "fmt"
    "net/http"

    "github.com/apex/log"
    "github.com/jonboulle/clockwork"

    anthropicadapter "nrp/internal/adapters/anthropic"
    httpadapter "nrp/internal/adapters/http"
    "nrp/internal/adapters/memory"
    pg "nrp/internal/adapters/postgres"
    "nrp/internal/adapters/rabbitmq"
    "nrp/internal/adapters/sendgrid"
    slackadapter "nrp/internal/adapters/slack"
    "nrp/internal/adapters/sqlstore"
    stripeadapter "nrp/internal/adapters/stripe"
    "nrp/internal/adapters/whisper"
    "nrp/internal/config"
    "nrp/internal/notify"
    "nrp/internal/ports"
    "nrp/internal/services/billing"
    "nrp/internal/services/compliance"
    "nrp/internal/services/matching"
    "nrp/internal/services/records"
    "nrp/internal/services/voice"
    "nrp/internal/workers/lifecycle"
    "nrp/internal/workers/sweeper"
)

type App struct {
    Config     config.Config
    Clock      clockwork.Clock
    Store      ports.Store
    Matcher    *matching.Matcher
    Notifier   *notify.Dispatcher
    Records    *records.Service
    Billing    *billing.Service
    Compliance *compliance.Service
    Voice      *voice.Service

    publisher *rabbitmq.Publisher
}

// OpenStore connects the configured persistence driver.
func OpenStore(ctx context.Context, driver, url string) (ports.Store, error) {
    switch driver {
    case "postgres":
        db, err := pg.Connect(ctx, url)
        if err != nil { return nil, err }
        return db, nil
    case sqlstore.SQLite, sqlstore.MySQL:
        s, err := sqlstore.Open(ctx, driver, url)
        if err != nil { return nil, err }
        return s, nil
    case "memory":
        return memory.New(), nil
    }
    return nil, fmt.Errorf("unknown store driver %q", driver)
}

// Migrate applies pending schema migrations if the store has a schema.
func Migrate(ctx context.Context, store ports.Store) error {
    m, ok := store.(interface{ Migrate(context.Context) error })
    if !ok { return nil }
    return m.Migrate(ctx)
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
    store, err := OpenStore(ctx, cfg.StoreDriver, cfg.DatabaseURL)
    if err != nil { return nil, err }
    return Assemble(cfg, store, clockwork.NewRealClock())
}

// Assemble wires services around an open store.
func Assemble(cfg config.Config, store ports.Store, clock clockwork.Clock) (*App, error) {
    a := &App{Config: cfg, Clock: clock, Store: store, Matcher: matching.New(clock)}

    var email, ops notify.Transport
    if cfg.SendGridAPIKey != "" {
        email = sendgrid.New(cfg.SendGridAPIKey, "National Restoration Professionals", cfg.SendGridFromEmail)
    } else {
        log.Warn("SENDGRID_API_KEY not set, customer email disabled")
    }
    if cfg.SlackBotToken != "" {
        ops = slackadapter.New(cfg.SlackBotToken, cfg.SlackOpsChannel)
    } else {
        log.Warn("SLACK_BOT_TOKEN not set, ops alerts disabled")
    }
    a.Notifier = notify.NewDispatcher(email, ops)

    var gateway ports.PaymentGateway
    if cfg.StripeSecretKey != "" {
        gateway = stripeadapter.New(cfg.StripeSecretKey)
    } else {
        log.Warn("STRIPE_SECRET_KEY not set, checkout and paid claims disabled")
    }
    a.Billing = billing.New(store, gateway, billing.Config{PlatformFee: cfg.PlatformFee, SiteURL: cfg.SiteURL})

    var events ports.EventPublisher
    if cfg.AMQPURL != "" {
        p, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
        if err != nil { return nil, fmt.Errorf("connect amqp: %w", err) }
        a.publisher = p
        events = p
    } else {
        log.Info("AMQP_URL not set, record events not published")
    }

    var triage ports.DamageClassifier
    if cfg.AnthropicAPIKey != "" {
        triage = anthropicadapter.New(cfg.AnthropicAPIKey, cfg.AnthropicModel)
    } else {
        log.Info("ANTHROPIC_API_KEY not set, damage triage uses keywords only")
    }

    var transcriber ports.Transcriber
    if cfg.TranscribeAPIKey != "" {
        transcriber = whisper.New(cfg.TranscribeURL, cfg.TranscribeAPIKey)
    } else {
        log.Warn("TRANSCRIBE_API_KEY not set, voice intake disabled")
    }
    a.Voice = voice.New(transcriber)

    a.Records = records.New(records.Deps{
        Store:    store,
        Payments: a.Billing,
        Notifier: a.Notifier,
        Events:   events,
        Triage:   triage,
        Matcher:  a.Matcher,
        Clock:    clock,
        Timing: records.Timing{
            AssignDelay: cfg.AssignDelay,
            AcceptDelay: cfg.AcceptDelay,
            ClaimDelay:  cfg.ClaimDelay,
            KPIDelay:    cfg.KPIDelay,
        },
        MaxAttempts: cfg.JobMaxAttempts,
    })
    a.Compliance = compliance.New(store, store, store, clock)
    return a, nil
}

func (a *App) Handler() http.Handler {
    opts := []httpadapter.Option{httpadapter.WithRateLimit(a.Config.RateLimitRPS, a.Config.RateLimitBurst)}
    if a.Config.TrustProxy {
        opts = append(opts, httpadapter.WithTrustedProxy())
    }
    return httpadapter.New(a.Records, a.Billing, a.Compliance, a.Voice, opts...).Routes()
}

func (a *App) LifecycleOptions() lifecycle.Options {
    return lifecycle.Options{
        Concurrency:  a.Config.LifecycleWorkers,
        PollInterval: a.Config.PollInterval,
        RetryBase:    a.Config.JobRetryBase,
        MaxAttempts:  a.Config.JobMaxAttempts,
        Clock:        a.Clock,
    }
}

// RunLifecycle blocks running the job workers until ctx is cancelled.
func (a *App) RunLifecycle(ctx context.Context) {
    lifecycle.Run(ctx, a.Store, a.Records, a.LifecycleOptions())
}

// ProcessDue runs every due job once.
func (a *App) ProcessDue(ctx context.Context) (int, error) {
    return lifecycle.ProcessDue(ctx, a.Store, a.Records, a.LifecycleOptions())
}

func (a *App) Sweeper() *sweeper.Sweeper {
    return sweeper.New(a.Store, a.Store, a.Records, a.Compliance, a.Notifier, a.Matcher, a.Clock, sweeper.Config{
        StaleAfter:     a.Config.StaleAfter,
        RunningTimeout: a.Config.RunningTimeout,
    })
}

func (a *App) Schedules() sweeper.Schedules {
    return sweeper.Schedules{
        Compliance:    a.Config.ComplianceCron,
        Sweep:         a.Config.SweepCron,
        FairnessReset: a.Config.FairnessCron,
    }
}

// Close flushes pending notifications and releases connections.
func (a *App) Close() error {
    a.Notifier.Wait()
    if a.publisher != nil {
        if err := a.publisher.Close(); err != nil {
            log.WithError(err).Warn("amqp close")
        }
    }
    return a.Store.Close()
}
