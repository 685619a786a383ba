package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/bookcase/internal/flagx"
)

// FlagNames lists every flag the config layer consumes, including the
// file selectors. The CLI strips them before handing the rest to cobra.
var FlagNames = []string{"-a", "-d", "-t", "-b", "-i", "-l", "-c", "-config", "--config", "-env", "--env"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   backend API base url
//	-d string   local SQLite database path
//	-t string   token backend: sqlite or bolt
//	-b string   bbolt file path (token backend "bolt")
//	-i int      online check interval in seconds
//	-l string   log level: debug, info, warn, error
//
// Only these flags are parsed; flagx.FilterArgs drops everything else so
// cobra subcommands and their flags do not interfere. A flag that is not
// given leaves the field as the earlier sources set it.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-t", "-b", "-i", "-l"})

	fs := flag.NewFlagSet("bookcase", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "backend API base url")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.TokenBackend, "t", cfg.TokenBackend, "token backend (sqlite|bolt)")
	fs.StringVar(&cfg.BoltPath, "b", cfg.BoltPath, "bbolt file path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	onlineCheckInterval := fs.Int("i", 0, "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		}
	})
	return nil
}
