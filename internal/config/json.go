package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/teleshelf/teleshelf/internal/flagx"
)

// JsonConfig is the intermediate DTO used only for reading JSON
// configuration files. Interval fields are plain integers (minutes for the
// purge interval, days for retention); after unmarshalling, non-zero values
// are copied into the runtime Config.
type JsonConfig struct {
	DatabaseDSN    string `json:"database_dsn"`
	RetentionDays  int    `json:"retention_days"`
	PurgeInterval  int    `json:"purge_interval_minutes"`
	SearchLimitCap int    `json:"search_limit_cap"`
	BatchDeleteCap int    `json:"batch_delete_cap"`
	StatsCacheSize int    `json:"stats_cache_size"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags, falling
// back to the CONFIG environment variable; when none is set, no JSON file is
// loaded. If the file cannot be read or contains invalid JSON, the function
// panics: a requested config file that cannot be applied is a startup error,
// not a condition to run through. Fields absent from the file keep their
// current values.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		jsonConfigFile = os.Getenv("CONFIG")
	}

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.RetentionDays != 0 {
		config.RetentionDays = c.RetentionDays
	}
	if c.PurgeInterval != 0 {
		config.PurgeInterval = time.Duration(c.PurgeInterval) * time.Minute
	}
	if c.SearchLimitCap != 0 {
		config.SearchLimitCap = c.SearchLimitCap
	}
	if c.BatchDeleteCap != 0 {
		config.BatchDeleteCap = c.BatchDeleteCap
	}
	if c.StatsCacheSize != 0 {
		config.StatsCacheSize = c.StatsCacheSize
	}
}
