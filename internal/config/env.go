package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays Config with values from the environment. Variables that
// are unset or fail to parse leave the current value in place.
//
// Recognized variables:
//
//	DATABASE_DSN            string
//	RETENTION_DAYS          int
//	PURGE_INTERVAL_MINUTES  int
//	SEARCH_LIMIT_CAP        int
//	BATCH_DELETE_CAP        int
//	STATS_CACHE_SIZE        int
func parseEnv(config *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		config.DatabaseDSN = v
	}
	if n, ok := envInt("RETENTION_DAYS"); ok {
		config.RetentionDays = n
	}
	if n, ok := envInt("PURGE_INTERVAL_MINUTES"); ok {
		config.PurgeInterval = time.Duration(n) * time.Minute
	}
	if n, ok := envInt("SEARCH_LIMIT_CAP"); ok {
		config.SearchLimitCap = n
	}
	if n, ok := envInt("BATCH_DELETE_CAP"); ok {
		config.BatchDeleteCap = n
	}
	if n, ok := envInt("STATS_CACHE_SIZE"); ok {
		config.StatsCacheSize = n
	}
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
