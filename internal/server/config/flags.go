package config

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/accountd/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":5000")
//	-g string   gRPC health bind address (empty disables)
//	-d string   database DSN
//	-r string   cache URL (e.g., "redis://localhost:6379/0")
//	-s string   JWT HMAC secret key
//	-t value    token validity: whole minutes ("30") or a duration ("90s", "1h")
//	-l string   log level
//
// Flags that are not passed leave the current value alone.
//
// Only the flags listed above are read from os.Args; others are left to
// the stages that own them.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-r", "-s", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "address and port of the gRPC health endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.CacheURL, "r", config.CacheURL, "cache URL")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	fs.Func("t", "token validity, minutes or a duration such as 90s", func(s string) error {
		d, err := parseTokenValidity(s)
		if err != nil {
			return err
		}
		config.TokenValidityDuration = d
		return nil
	})

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

// parseTokenValidity reads a bare integer as minutes and anything else as
// a time.Duration. The result must be positive.
func parseTokenValidity(s string) (time.Duration, error) {
	var d time.Duration
	if n, err := strconv.Atoi(s); err == nil {
		d = time.Duration(n) * time.Minute
	} else if d, err = time.ParseDuration(s); err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, errors.New("token validity must be positive")
	}
	return d, nil
}
