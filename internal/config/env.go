package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "WARRANT_"

// LoadEnv reads a .env file and returns its key-value pairs.
func LoadEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		return nil, err
	}
	return vars, nil
}

// mergeEnviron layers the process environment over dotenv values.
func mergeEnviron(dotenv map[string]string) map[string]string {
	merged := make(map[string]string, len(dotenv))
	for k, v := range dotenv {
		merged[k] = v
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			merged[k] = v
		}
	}
	return merged
}

// ApplyEnvOverrides updates the configuration from WARRANT_* variables in vars.
// Variables that are not set leave the current value alone.
func ApplyEnvOverrides(cfg *Config, vars map[string]string) error {
	opts := env.Options{
		Prefix:      EnvPrefix,
		Environment: vars,
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return fmt.Errorf("failed to parse environment overrides: %w", err)
	}
	return nil
}
