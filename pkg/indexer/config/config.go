package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/thorchain-labs/midgardx/pkg/midgard"
	"github.com/thorchain-labs/midgardx/pkg/utils"
)

const (
	DefaultDatabase = "midgard_history"
	DefaultPool     = "BTC.BTC"
	DefaultCron     = "0 * * * *"
	DefaultAddr     = ":3001"
	// DefaultStartTime is used for series with no stored buckets.
	DefaultStartTime int64 = 1_647_302_400
)

// Indexer holds every setting of the ingestion process.
type Indexer struct {
	Store    string // "clickhouse" or "memory"
	Database string

	MidgardEndpoints []string
	MidgardRPS       int
	MidgardTimeout   time.Duration

	Pool        string
	Cron        string
	StartTime   int64
	MaxParallel int
	RunOnStart  bool

	PageCount   int
	PageTimeout time.Duration
	PageRetries int

	RedisEnabled bool
	Addr         string
}

// Load reads the indexer settings from the environment, applying defaults.
func Load() Indexer {
	return Indexer{
		Store:    utils.Env("STORE", "clickhouse"),
		Database: utils.Env("CLICKHOUSE_DB", DefaultDatabase),

		MidgardEndpoints: utils.EnvList("MIDGARD_ENDPOINTS", []string{midgard.DefaultEndpoint}),
		MidgardRPS:       utils.EnvInt("MIDGARD_RPS", 5),
		MidgardTimeout:   utils.EnvDuration("MIDGARD_TIMEOUT", 30*time.Second),

		Pool:        utils.Env("POOL", DefaultPool),
		Cron:        utils.Env("INGEST_CRON", DefaultCron),
		StartTime:   utils.EnvInt64("INGEST_START_TIME", DefaultStartTime),
		MaxParallel: utils.EnvInt("INGEST_MAX_PARALLEL", 4),
		RunOnStart:  utils.EnvBool("INGEST_RUN_ON_START", true),

		PageCount:   utils.EnvInt("BACKFILL_PAGE_COUNT", midgard.DefaultCount),
		PageTimeout: utils.EnvDuration("BACKFILL_PAGE_TIMEOUT", 2*time.Minute),
		PageRetries: utils.EnvInt("BACKFILL_PAGE_RETRIES", 3),

		RedisEnabled: utils.EnvBool("REDIS_ENABLED", false),
		Addr:         utils.Env("ADDR", DefaultAddr),
	}
}

// Validate reports every invalid setting at once.
func (c Indexer) Validate() error {
	var errs []error
	if c.Store != "clickhouse" && c.Store != "memory" {
		errs = append(errs, fmt.Errorf("STORE must be clickhouse or memory, got %q", c.Store))
	}
	if c.Store == "clickhouse" && c.Database == "" {
		errs = append(errs, errors.New("CLICKHOUSE_DB is required"))
	}
	if len(c.MidgardEndpoints) == 0 {
		errs = append(errs, errors.New("MIDGARD_ENDPOINTS is required"))
	}
	if c.Pool == "" {
		errs = append(errs, errors.New("POOL is required"))
	}
	if _, err := cron.ParseStandard(c.Cron); err != nil {
		errs = append(errs, fmt.Errorf("INGEST_CRON %q: %w", c.Cron, err))
	}
	if c.PageCount < 1 || c.PageCount > midgard.DefaultCount {
		errs = append(errs, fmt.Errorf("BACKFILL_PAGE_COUNT must be in [1,%d], got %d", midgard.DefaultCount, c.PageCount))
	}
	if c.MaxParallel < 1 {
		errs = append(errs, fmt.Errorf("INGEST_MAX_PARALLEL must be positive, got %d", c.MaxParallel))
	}
	return errors.Join(errs...)
}
