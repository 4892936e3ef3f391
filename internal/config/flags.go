package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/rxkeeper/internal/flagx"
)

var knownFlags = []string{"-s", "-d", "-r", "-k", "-q", "-t", "-o", "-n", "-m", "-l", "-f", "-z"}

// parseFlags populates Config fields from command-line flags. Only the
// flags listed in knownFlags are considered; see the package doc for their
// meaning. Parse errors panic.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.StorageDriver, "s", cfg.StorageDriver, "storage driver (memory, sqlite, postgres, redis)")
	fs.StringVar(&cfg.StorageDSN, "d", cfg.StorageDSN, "SQLite file path or PostgreSQL DSN")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address")
	fs.StringVar(&cfg.Scheduler, "k", cfg.Scheduler, "reminder scheduler (local, amqp, none)")
	fs.StringVar(&cfg.AMQPURL, "q", cfg.AMQPURL, "AMQP URL")
	fs.StringVar(&cfg.ReportTarget, "t", cfg.ReportTarget, "report target (file, s3)")
	fs.StringVar(&cfg.ReportDir, "o", cfg.ReportDir, "report directory")
	fs.IntVar(&cfg.ReportDays, "n", cfg.ReportDays, "report history days")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format (text, json, zap)")
	fs.StringVar(&cfg.Timezone, "z", cfg.Timezone, "IANA timezone")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
