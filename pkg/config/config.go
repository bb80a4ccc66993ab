package config

import (
	"time"

	"github.com/craftwatch/craftwatch/pkg/utils"
)

// Upstream holds the subscription endpoint settings for the authoritative game
// database. One websocket connection is opened per entry in Regions.
type Upstream struct {
	Host     string
	Protocol string
	Token    string
	Regions  []string
}

// Pipeline holds the per-worker batching and reconnect parameters.
type Pipeline struct {
	BatchSize           int
	TimeLimit           time.Duration
	SnapshotDeleteChunk int
	UpsertChunk         int

	ReconnectBase          time.Duration
	ReconnectMaxAttempts   int
	ReconnectBackoffFactor float64
}

// Config collects every recognized option. Values come from the environment,
// matching how the rest of the stack is configured in deployment manifests.
type Config struct {
	Upstream Upstream
	Pipeline Pipeline

	BroadcastQueueCapacity int
	ChangelogRetention     time.Duration

	HTTPAddr      string
	PostgresURL   string
	ClickHouseDSN string
	RedisAddr     string
}

// FromEnv reads the full configuration from environment variables.
func FromEnv() Config {
	return Config{
		Upstream: Upstream{
			Host:     utils.Env("UPSTREAM_HOST", "localhost:3000"),
			Protocol: utils.Env("UPSTREAM_PROTOCOL", "ws"),
			Token:    utils.Env("UPSTREAM_TOKEN", ""),
			Regions:  utils.EnvList("UPSTREAM_REGIONS", []string{"region-1"}),
		},
		Pipeline: Pipeline{
			BatchSize:              utils.EnvInt("PIPELINE_BATCH_SIZE", 500),
			TimeLimit:              time.Duration(utils.EnvInt("PIPELINE_TIME_LIMIT_MS", 250)) * time.Millisecond,
			SnapshotDeleteChunk:    utils.EnvInt("PIPELINE_SNAPSHOT_DELETE_CHUNK", 1000),
			UpsertChunk:            utils.EnvInt("PIPELINE_UPSERT_CHUNK", 1000),
			ReconnectBase:          time.Duration(utils.EnvInt("PIPELINE_RECONNECT_BASE_SECONDS", 5)) * time.Second,
			ReconnectMaxAttempts:   utils.EnvInt("PIPELINE_RECONNECT_MAX_ATTEMPTS", 10),
			ReconnectBackoffFactor: utils.EnvFloat("PIPELINE_RECONNECT_BACKOFF_FACTOR", 2.0),
		},
		BroadcastQueueCapacity: utils.EnvInt("BROADCAST_QUEUE_CAPACITY", 256),
		ChangelogRetention:     utils.EnvDuration("CHANGELOG_RETENTION", 720*time.Hour),
		HTTPAddr:               utils.Env("ADDR", ":3001"),
		PostgresURL:            utils.Env("POSTGRES_URL", "postgres://localhost:5432/craftwatch"),
		ClickHouseDSN:          utils.Env("CLICKHOUSE_ADDR", "clickhouse://localhost:9000?sslmode=disable"),
		RedisAddr:              utils.Env("REDIS_ADDR", ""),
	}
}
