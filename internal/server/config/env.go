package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/accountd/internal/flagx"
	"github.com/joho/godotenv"
)

// loadDotenv exports variables from the file given with -env, or from
// ./.env when present. Variables already set in the environment are kept.
// An explicitly requested file that cannot be read panics.
func loadDotenv() {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

// parseEnv overlays fields whose variables are set; unset variables leave
// the current value alone. Malformed values panic.
func parseEnv(cfg *Config) {
	if err := env.Parse(cfg); err != nil {
		panic(err)
	}
}
