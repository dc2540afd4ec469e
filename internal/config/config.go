// Package config loads server settings from command-line flags with
// environment variable defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Config holds the server settings.
type Config struct {
	Addr                string
	DataDir             string
	CollaboratorTimeout time.Duration
	SnapshotSchedule    string
	CacheSweepSchedule  string
	CORSOrigins         []string
	Seed                bool
	HealthCheck         bool
}

// scheduleParser accepts the same specs as the scheduler's cron instance.
var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Load parses args (without the program name). Each flag defaults to its
// environment variable, read through getenv, and then to a built-in value.
func Load(args []string, getenv func(string) string) (Config, error) {
	env := func(key, fallback string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return fallback
	}

	timeout, err := time.ParseDuration(env("PRICING_COLLABORATOR_TIMEOUT", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing PRICING_COLLABORATOR_TIMEOUT: %w", err)
	}
	seed, err := strconv.ParseBool(env("PRICING_SEED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parsing PRICING_SEED: %w", err)
	}

	var cfg Config
	var origins string
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", env("PRICING_ADDR", ":8099"), "HTTP server address")
	fs.StringVar(&cfg.DataDir, "data", env("PRICING_DATA_DIR", "/data"), "Data directory for SQLite database")
	fs.DurationVar(&cfg.CollaboratorTimeout, "collaborator-timeout", timeout, "Timeout for each data source call")
	fs.StringVar(&cfg.SnapshotSchedule, "snapshot-schedule", env("PRICING_SNAPSHOT_SCHEDULE", "@every 1h"), "Cron schedule for price snapshots")
	fs.StringVar(&cfg.CacheSweepSchedule, "cache-sweep", env("PRICING_CACHE_SWEEP", "@every 1m"), "Cron schedule for expired cache sweeps")
	fs.StringVar(&origins, "cors-origins", env("PRICING_CORS_ORIGINS", "*"), "Comma-separated allowed CORS origins")
	fs.BoolVar(&cfg.Seed, "seed", seed, "Load demo rooms into an empty database")
	fs.BoolVar(&cfg.HealthCheck, "health-check", false, "Run health check and exit")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, origin)
		}
	}

	return cfg, cfg.Validate()
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data directory must not be empty"))
	}
	if c.CollaboratorTimeout <= 0 {
		errs = append(errs, fmt.Errorf("collaborator timeout must be positive, got %s", c.CollaboratorTimeout))
	}
	if _, err := scheduleParser.Parse(c.SnapshotSchedule); err != nil {
		errs = append(errs, fmt.Errorf("snapshot schedule %q: %w", c.SnapshotSchedule, err))
	}
	if _, err := scheduleParser.Parse(c.CacheSweepSchedule); err != nil {
		errs = append(errs, fmt.Errorf("cache sweep schedule %q: %w", c.CacheSweepSchedule, err))
	}
	return errors.Join(errs...)
}
