package config

import (
	"encoding/json"
	"os"

	"github.com/linekeeper/linekeeper/internal/flagx"
)

// JsonConfig is the DTO used for reading JSON configuration files.
type JsonConfig struct {
	ServerEndpointAddr string `json:"server_endpoint_addr"`
	CachePath          string `json:"cache_path"`
}

// parseJson loads configuration values from the JSON file named by the -c
// or -config flags, if any. An unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.ServerEndpointAddr = c.ServerEndpointAddr
	config.CachePath = c.CachePath
}
