package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/mealkeeper/internal/flagx"
)

var ownFlags = []string{"-a", "-t", "-r", "-w", "-s", "-d", "-k", "-redis", "-l"}

// parseFlags overlays cfg with command-line flags. Only the flags listed in
// ownFlags are looked at; everything else in args is ignored.
//
//	-a string   API base URL
//	-t int      request timeout (seconds)
//	-r int      refresh timeout (seconds)
//	-w int      refresh wait timeout (seconds)
//	-s string   store backend: sqlite | memory | redis
//	-d string   SQLite file path
//	-k string   store encryption secret
//	-redis str  Redis address
//	-l string   log level
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("mealkeeper", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	reqTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	refreshTimeout := fs.Int("r", int(cfg.RefreshTimeout.Seconds()), "refresh timeout (in seconds)")
	waitTimeout := fs.Int("w", int(cfg.RefreshWaitTimeout.Seconds()), "refresh wait timeout (in seconds)")
	fs.StringVar(&cfg.StoreBackend, "s", cfg.StoreBackend, "credential store backend")
	fs.StringVar(&cfg.StorePath, "d", cfg.StorePath, "SQLite file path")
	fs.StringVar(&cfg.StoreSecret, "k", cfg.StoreSecret, "credential store encryption secret")
	fs.StringVar(&cfg.RedisAddr, "redis", cfg.RedisAddr, "Redis address")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, ownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	cfg.RequestTimeout = time.Duration(*reqTimeout) * time.Second
	cfg.RefreshTimeout = time.Duration(*refreshTimeout) * time.Second
	cfg.RefreshWaitTimeout = time.Duration(*waitTimeout) * time.Second
	return nil
}
