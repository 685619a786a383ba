package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/bookcase/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name, e.g. BOOKCASE_API_URL.
const EnvPrefix = "BOOKCASE_"

// parseEnv loads the dotenv file (-env, default .env) if it exists, then
// overlays cfg with BOOKCASE_* variables. Variables already present in the
// environment win over the file.
func parseEnv(cfg *Config, args []string) error {
	if err := godotenv.Load(flagx.EnvFileFlag(args)); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
