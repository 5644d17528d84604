package config

import (
	"github.com/caarlos0/env/v11"
)

// parseEnv overlays values from LINEKEEPER_* environment variables onto
// the provided Config. Unset variables leave the current values in place.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
