package config

import "time"

// Worker intervals and cache lifetimes
const (
	// RedisBackupInterval defines how often dirty analyses are saved to Redis
	RedisBackupInterval = 10 * time.Second

	// PostgresBackupInterval defines how often analyses are snapshotted to PostgreSQL
	PostgresBackupInterval = 60 * time.Second

	// InsightsCacheTTL defines how long a building insights response stays cached.
	// Imagery refreshes rarely, so a long TTL is safe.
	InsightsCacheTTL = 24 * time.Hour

	// PriceCacheTTL defines how long a fetched electricity price stays cached
	PriceCacheTTL = 6 * time.Hour
)
