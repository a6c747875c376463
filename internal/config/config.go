package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress           string
	DatabaseURI          string
	NotifyWebhookAddress string
	JWTSecret            string
	OperatorTokenTTL     time.Duration
	PasswordHashCost     int
	ShutdownTimeout      time.Duration
	LogLevel             string

	WorkflowIdleTimeout time.Duration
	CommitMaxRetries    int
	CommitRetryBackoff  time.Duration

	AccrualPolicy        string
	AccrualRounding      string
	RedemptionCapPercent int
	TierBasis            string

	NotifyWorkers   int
	NotifyQueueSize int

	ScanRatePerMinute float64
	ScanBurst         int
}

const (
	defaultRunAddress           = ":8080"
	defaultJWTSecret            = "change-me-in-production"
	defaultOperatorTokenTTL     = 24 * time.Hour
	defaultShutdownTimeout      = 10 * time.Second
	defaultLogLevel             = "info"
	defaultWorkflowIdleTimeout  = 5 * time.Minute
	defaultCommitMaxRetries     = 3
	defaultCommitRetryBackoff   = 20 * time.Millisecond
	defaultAccrualPolicy        = "exclusive"
	defaultAccrualRounding      = "half_even"
	defaultRedemptionCapPercent = 50
	maxRedemptionCapPercent     = 50
	defaultTierBasis            = "spend"
	defaultNotifyWorkers        = 4
	defaultNotifyQueueSize      = 256
	defaultScanRatePerMinute    = 30
	defaultScanBurst            = 5
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:           getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:          getString(lookup, "DATABASE_URI", ""),
		NotifyWebhookAddress: getString(lookup, "NOTIFY_WEBHOOK_ADDRESS", ""),
		JWTSecret:            getString(lookup, "JWT_SECRET", defaultJWTSecret),
		OperatorTokenTTL:     getDuration(lookup, "OPERATOR_TOKEN_TTL", defaultOperatorTokenTTL),
		PasswordHashCost:     getInt(lookup, "PASSWORD_HASH_COST", 0),
		ShutdownTimeout:      getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:             getString(lookup, "LOG_LEVEL", defaultLogLevel),
		WorkflowIdleTimeout:  getDuration(lookup, "WORKFLOW_IDLE_TIMEOUT", defaultWorkflowIdleTimeout),
		CommitMaxRetries:     getInt(lookup, "COMMIT_MAX_RETRIES", defaultCommitMaxRetries),
		CommitRetryBackoff:   getDuration(lookup, "COMMIT_RETRY_BACKOFF", defaultCommitRetryBackoff),
		AccrualPolicy:        getString(lookup, "ACCRUAL_POLICY", defaultAccrualPolicy),
		AccrualRounding:      getString(lookup, "ACCRUAL_ROUNDING", defaultAccrualRounding),
		RedemptionCapPercent: getInt(lookup, "REDEMPTION_CAP_PERCENT", defaultRedemptionCapPercent),
		TierBasis:            getString(lookup, "TIER_BASIS", defaultTierBasis),
		NotifyWorkers:        getInt(lookup, "NOTIFY_WORKERS", defaultNotifyWorkers),
		NotifyQueueSize:      getInt(lookup, "NOTIFY_QUEUE_SIZE", defaultNotifyQueueSize),
		ScanRatePerMinute:    getFloat(lookup, "SCAN_RATE_PER_MINUTE", defaultScanRatePerMinute),
		ScanBurst:            getInt(lookup, "SCAN_BURST", defaultScanBurst),
	}

	fs := flag.NewFlagSet("qrloyalty", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		idleTimeoutStr     = cfg.WorkflowIdleTimeout.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
		tokenTTLStr        = cfg.OperatorTokenTTL.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.NotifyWebhookAddress, "n", cfg.NotifyWebhookAddress, "Messaging transport base URL")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing operator tokens")
	fs.StringVar(&tokenTTLStr, "token-ttl", tokenTTLStr, "Operator token lifetime")
	fs.IntVar(&cfg.PasswordHashCost, "hash-cost", cfg.PasswordHashCost, "bcrypt cost for operator passwords, 0 for default")
	fs.StringVar(&idleTimeoutStr, "idle-timeout", idleTimeoutStr, "Workflow inactivity timeout")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.IntVar(&cfg.CommitMaxRetries, "commit-retries", cfg.CommitMaxRetries, "Retries on concurrent ledger modification")
	fs.StringVar(&cfg.AccrualPolicy, "accrual-policy", cfg.AccrualPolicy, "Accrual policy (exclusive, combined)")
	fs.StringVar(&cfg.AccrualRounding, "accrual-rounding", cfg.AccrualRounding, "Accrual rounding (half_even, half_up, floor)")
	fs.StringVar(&cfg.TierBasis, "tier-basis", cfg.TierBasis, "Tier threshold basis (spend, points)")
	fs.IntVar(&cfg.NotifyWorkers, "notify-workers", cfg.NotifyWorkers, "Number of concurrent notification workers")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.WorkflowIdleTimeout, err = time.ParseDuration(idleTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid idle timeout: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.OperatorTokenTTL, err = time.ParseDuration(tokenTTLStr); err != nil {
		return nil, fmt.Errorf("invalid token ttl: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = strings.TrimSpace(string(content))
	}

	normalize(cfg)

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	switch cfg.AccrualPolicy {
	case "exclusive", "combined":
	default:
		return nil, fmt.Errorf("unknown accrual policy %q", cfg.AccrualPolicy)
	}

	switch cfg.AccrualRounding {
	case "half_even", "half_up", "floor":
	default:
		return nil, fmt.Errorf("unknown accrual rounding %q", cfg.AccrualRounding)
	}

	switch cfg.TierBasis {
	case "spend", "points":
	default:
		return nil, fmt.Errorf("unknown tier basis %q", cfg.TierBasis)
	}

	return cfg, nil
}

func normalize(cfg *Config) {
	if cfg.WorkflowIdleTimeout <= 0 {
		cfg.WorkflowIdleTimeout = defaultWorkflowIdleTimeout
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.OperatorTokenTTL <= 0 {
		cfg.OperatorTokenTTL = defaultOperatorTokenTTL
	}
	if cfg.CommitMaxRetries < 0 {
		cfg.CommitMaxRetries = defaultCommitMaxRetries
	}
	if cfg.CommitRetryBackoff < 0 {
		cfg.CommitRetryBackoff = defaultCommitRetryBackoff
	}
	if cfg.RedemptionCapPercent <= 0 {
		cfg.RedemptionCapPercent = defaultRedemptionCapPercent
	}
	if cfg.RedemptionCapPercent > maxRedemptionCapPercent {
		cfg.RedemptionCapPercent = maxRedemptionCapPercent
	}
	if cfg.NotifyWorkers <= 0 {
		cfg.NotifyWorkers = defaultNotifyWorkers
	}
	if cfg.NotifyQueueSize <= 0 {
		cfg.NotifyQueueSize = defaultNotifyQueueSize
	}
	if cfg.ScanRatePerMinute <= 0 {
		cfg.ScanRatePerMinute = defaultScanRatePerMinute
	}
	if cfg.ScanBurst <= 0 {
		cfg.ScanBurst = defaultScanBurst
	}
	cfg.AccrualPolicy = strings.ToLower(cfg.AccrualPolicy)
	cfg.AccrualRounding = strings.ToLower(cfg.AccrualRounding)
	cfg.TierBasis = strings.ToLower(cfg.TierBasis)
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getFloat(lookup envLookup, key string, def float64) float64 {
	if v, ok := lookup(key); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
