package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress        string
	ProviderAddress   string
	ProviderToken     string
	GatewaySecretHash string
	TokenSecret       string
	TokenTTL          time.Duration
	DatabaseURI       string
	PollFloor         time.Duration
	PollCeiling       time.Duration
	PollMinTick       time.Duration
	PollFailureLimit  int
	WizardIdleTimeout time.Duration
	PricesTTL         time.Duration
	CountriesTTL      time.Duration
	ShutdownTimeout   time.Duration
}

const (
	defaultRunAddress        = ":8080"
	defaultTokenSecret       = "change-me-in-production"
	defaultProviderAddress   = "https://5sim.net"
	defaultTokenTTL          = 24 * time.Hour
	defaultPollFloor         = 2 * time.Second
	defaultPollCeiling       = 30 * time.Second
	defaultPollMinTick       = time.Second
	defaultPollFailureLimit  = 5
	defaultWizardIdleTimeout = 10 * time.Minute
	defaultPricesTTL         = time.Minute
	defaultCountriesTTL      = 5 * time.Minute
	defaultShutdownTimeout   = 10 * time.Second
)

// Load parses configuration from .env file, environment and flags.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:        getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		ProviderAddress:   getString(lookup, "FIVESIM_ADDRESS", defaultProviderAddress),
		ProviderToken:     getString(lookup, "FIVESIM_TOKEN", ""),
		GatewaySecretHash: getString(lookup, "GATEWAY_SECRET_HASH", ""),
		TokenSecret:       getString(lookup, "TOKEN_SECRET", defaultTokenSecret),
		TokenTTL:          getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		DatabaseURI:       getString(lookup, "DATABASE_URI", ""),
		PollFloor:         getDuration(lookup, "POLL_FLOOR", defaultPollFloor),
		PollCeiling:       getDuration(lookup, "POLL_CEILING", defaultPollCeiling),
		PollMinTick:       getDuration(lookup, "POLL_MIN_TICK", defaultPollMinTick),
		PollFailureLimit:  getInt(lookup, "POLL_FAILURE_LIMIT", defaultPollFailureLimit),
		WizardIdleTimeout: getDuration(lookup, "WIZARD_IDLE_TIMEOUT", defaultWizardIdleTimeout),
		PricesTTL:         getDuration(lookup, "PRICES_TTL", defaultPricesTTL),
		CountriesTTL:      getDuration(lookup, "COUNTRIES_TTL", defaultCountriesTTL),
		ShutdownTimeout:   getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("viranumpro", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollFloorStr       = cfg.PollFloor.String()
		pollCeilingStr     = cfg.PollCeiling.String()
		idleTimeoutStr     = cfg.WizardIdleTimeout.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.ProviderAddress, "r", cfg.ProviderAddress, "5SIM API base URL")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN for durable registry (empty keeps volatile)")
	fs.StringVar(&pollFloorStr, "poll-floor", pollFloorStr, "Shortest interval between order polls")
	fs.StringVar(&pollCeilingStr, "poll-ceiling", pollCeilingStr, "Longest interval between order polls")
	fs.IntVar(&cfg.PollFailureLimit, "poll-failure-limit", cfg.PollFailureLimit, "Consecutive poll failures before an order is flagged degraded")
	fs.StringVar(&idleTimeoutStr, "wizard-idle", idleTimeoutStr, "Idle window before a purchase session is discarded")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.PollFloor, err = time.ParseDuration(pollFloorStr); err != nil {
		return nil, fmt.Errorf("invalid poll floor: %w", err)
	}

	if cfg.PollCeiling, err = time.ParseDuration(pollCeilingStr); err != nil {
		return nil, fmt.Errorf("invalid poll ceiling: %w", err)
	}

	if cfg.WizardIdleTimeout, err = time.ParseDuration(idleTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid wizard idle timeout: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("GATEWAY_SECRET_HASH_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read gateway secret hash file: %w", err)
		}
		cfg.GatewaySecretHash = string(content)
	}

	if cfg.PollFloor <= 0 {
		cfg.PollFloor = defaultPollFloor
	}

	if cfg.PollCeiling < cfg.PollFloor {
		cfg.PollCeiling = cfg.PollFloor
	}

	if cfg.PollMinTick <= 0 {
		cfg.PollMinTick = defaultPollMinTick
	}

	if cfg.PollFailureLimit <= 0 {
		cfg.PollFailureLimit = defaultPollFailureLimit
	}

	if cfg.WizardIdleTimeout <= 0 {
		cfg.WizardIdleTimeout = defaultWizardIdleTimeout
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.ProviderToken == "" {
		return nil, fmt.Errorf("5SIM token must be provided")
	}

	if cfg.GatewaySecretHash == "" {
		return nil, fmt.Errorf("gateway secret hash must be provided")
	}

	return cfg, nil
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

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
