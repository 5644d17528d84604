// Package config handles configuration for the CLI client, including
// defaults, JSON overlay, environment variables and command-line flags.
package config

// Config holds runtime settings for the linekeeper CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend HTTP endpoint.
//   - CachePath: sqlite file holding cached line secrets.
type Config struct {
	ServerEndpointAddr string `env:"LINEKEEPER_SERVER"`
	CachePath          string `env:"LINEKEEPER_CACHE_PATH"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.CachePath = "linekeeper.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present), the environment and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
