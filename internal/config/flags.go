package config

import (
	"flag"
	"os"
	"time"

	"github.com/teleshelf/teleshelf/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-r int      trash retention, days
//	-p int      purge interval, minutes
//	-l int      search/listing page size cap
//	-b int      batch trash call cap
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the JSON config flags.
// The purge interval is accepted as an integer in minutes and converted to
// a time.Duration value.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-r", "-p", "-l", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.IntVar(&config.RetentionDays, "r", config.RetentionDays, "trash retention (in days)")
	purgeInterval := fs.Int("p", int(config.PurgeInterval.Minutes()), "purge interval (in minutes)")
	fs.IntVar(&config.SearchLimitCap, "l", config.SearchLimitCap, "search result limit cap")
	fs.IntVar(&config.BatchDeleteCap, "b", config.BatchDeleteCap, "batch delete cap")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.PurgeInterval = time.Duration(*purgeInterval) * time.Minute
}
