package config

import (
    "errors"
    "fmt"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/joho/godotenv"
    "github.com/shopspring/decimal"
)

type Config struct {
    Env        string
    ListenAddr string
    LogFormat  string
    LogLevel   string

    RateLimitRPS   float64
    RateLimitBurst int
    // TrustProxy honours X-Forwarded-For and X-Real-IP. Only set it behind a
    // proxy that overwrites those headers.
    TrustProxy bool

    StoreDriver string
    DatabaseURL string

    LifecycleWorkers int
    PollInterval     time.Duration
    AssignDelay      time.Duration
    AcceptDelay      time.Duration
    ClaimDelay       time.Duration
    KPIDelay         time.Duration
    JobMaxAttempts   int
    JobRetryBase     time.Duration

    PlatformFee decimal.Decimal
    SiteURL     string

    StripeSecretKey   string
    SendGridAPIKey    string
    SendGridFromEmail string
    SlackBotToken     string
    SlackOpsChannel   string
    AMQPURL           string
    AMQPExchange      string
    AnthropicAPIKey   string
    AnthropicModel    string
    TranscribeURL     string
    TranscribeAPIKey  string

    ComplianceCron string
    SweepCron      string
    FairnessCron   string
    StaleAfter     time.Duration
    RunningTimeout time.Duration
}

var drivers = map[string]bool{"postgres": true, "sqlite3": true, "mysql": true, "memory": true}

// Load reads the environment, after merging an optional .env file from the
// working directory. Variables already set win over the file.
func Load() (Config, error) {
    if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
        return Config{}, fmt.Errorf("load .env: %w", err)
    }
    return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
    p := &parser{}
    cfg := Config{
        Env:        getenv("APP_ENV", "development"),
        ListenAddr: getenv("LISTEN_ADDR", ":8080"),
        LogFormat:  getenv("LOG_FORMAT", "text"),
        LogLevel:   getenv("LOG_LEVEL", "info"),

        RateLimitRPS:   p.float("RATE_LIMIT_RPS", 2),
        RateLimitBurst: p.integer("RATE_LIMIT_BURST", 10),
        TrustProxy:     p.boolean("TRUST_PROXY", false),

        StoreDriver: strings.ToLower(getenv("STORE_DRIVER", "postgres")),
        DatabaseURL: os.Getenv("DATABASE_URL"),

        LifecycleWorkers: p.integer("LIFECYCLE_WORKERS", 4),
        PollInterval:     p.duration("LIFECYCLE_POLL_INTERVAL", 500*time.Millisecond),
        AssignDelay:      p.duration("ASSIGN_DELAY", 2*time.Second),
        AcceptDelay:      p.duration("ACCEPT_DELAY", 5*time.Minute),
        ClaimDelay:       p.duration("CLAIM_DELAY", 30*time.Second),
        KPIDelay:         p.duration("KPI_DELAY", 30*time.Second),
        JobMaxAttempts:   p.integer("JOB_MAX_ATTEMPTS", 5),
        JobRetryBase:     p.duration("JOB_RETRY_BASE", 5*time.Second),

        PlatformFee: p.amount("PLATFORM_FEE_AUD", decimal.RequireFromString("2750.00")),
        SiteURL:     getenv("SITE_URL", "http://localhost:8080"),

        StripeSecretKey:   os.Getenv("STRIPE_SECRET_KEY"),
        SendGridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
        SendGridFromEmail: getenv("SENDGRID_FROM_EMAIL", "noreply@nrp.com.au"),
        SlackBotToken:     os.Getenv("SLACK_BOT_TOKEN"),
        SlackOpsChannel:   getenv("SLACK_OPS_CHANNEL", "#ops"),
        AMQPURL:           os.Getenv("AMQP_URL"),
        AMQPExchange:      getenv("AMQP_EXCHANGE", "nrp.records"),
        AnthropicAPIKey:   os.Getenv("ANTHROPIC_API_KEY"),
        AnthropicModel:    os.Getenv("ANTHROPIC_MODEL"),
        TranscribeURL:     getenv("TRANSCRIBE_URL", "https://api.openai.com/v1"),
        TranscribeAPIKey:  os.Getenv("TRANSCRIBE_API_KEY"),

        ComplianceCron: getenv("COMPLIANCE_CRON", "0 7 * * *"),
        SweepCron:      getenv("SWEEP_CRON", "*/5 * * * *"),
        FairnessCron:   getenv("FAIRNESS_CRON", "0 0 * * *"),
        StaleAfter:     p.duration("STALE_AFTER", 15*time.Minute),
        RunningTimeout: p.duration("RUNNING_TIMEOUT", 5*time.Minute),
    }
    if !drivers[cfg.StoreDriver] {
        p.fail("STORE_DRIVER", fmt.Errorf("unknown driver %q", cfg.StoreDriver))
    }
    if cfg.StoreDriver != "memory" && cfg.DatabaseURL == "" {
        p.fail("DATABASE_URL", errors.New("required unless STORE_DRIVER=memory"))
    }
    if cfg.PlatformFee.IsNegative() {
        p.fail("PLATFORM_FEE_AUD", errors.New("must not be negative"))
    }
    return cfg, p.err()
}

func (c Config) Production() bool { return c.Env == "production" }

func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

// parser collects every malformed value so one run reports all of them.
type parser struct {
    problems []string
}

func (p *parser) fail(key string, err error) {
    p.problems = append(p.problems, key+": "+err.Error())
}

func (p *parser) err() error {
    if len(p.problems) == 0 { return nil }
    return fmt.Errorf("invalid configuration: %s", strings.Join(p.problems, "; "))
}

func (p *parser) integer(key string, def int) int {
    v := os.Getenv(key)
    if v == "" { return def }
    var out int
    if _, err := fmt.Sscanf(v, "%d", &out); err != nil {
        p.fail(key, fmt.Errorf("expected an integer, got %q", v))
        return def
    }
    return out
}

func (p *parser) boolean(key string, def bool) bool {
    v := os.Getenv(key)
    if v == "" { return def }
    b, err := strconv.ParseBool(v)
    if err != nil {
        p.fail(key, fmt.Errorf("expected true or false, got %q", v))
        return def
    }
    return b
}

func (p *parser) float(key string, def float64) float64 {
    v := os.Getenv(key)
    if v == "" { return def }
    f, err := strconv.ParseFloat(v, 64)
    if err != nil {
        p.fail(key, fmt.Errorf("expected a number, got %q", v))
        return def
    }
    return f
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
    v := os.Getenv(key)
    if v == "" { return def }
    d, err := time.ParseDuration(v)
    if err != nil {
        p.fail(key, err)
        return def
    }
    return d
}

func (p *parser) amount(key string, def decimal.Decimal) decimal.Decimal {
    v := os.Getenv(key)
    if v == "" { return def }
    d, err := decimal.NewFromString(v)
    if err != nil {
        p.fail(key, fmt.Errorf("expected a decimal amount, got %q", v))
        return def
    }
    return d
}
