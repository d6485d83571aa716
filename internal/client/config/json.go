package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/labscribe/internal/flagx"
	"github.com/dmitrijs2005/labscribe/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "3s" or
// integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr   string         `json:"server_endpoint_addr"`
	DatabasePath         string         `json:"database_path"`
	SessionWatchInterval timex.Duration `json:"session_watch_interval"`
	RestoreTimeout       timex.Duration `json:"restore_timeout"`
	RequestTimeout       timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with the keys present in the JSON file given by
// -c/-config. It panics when the file cannot be read or decoded.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.SessionWatchInterval.Duration > 0 {
		cfg.SessionWatchInterval = jc.SessionWatchInterval.Duration
	}
	if jc.RestoreTimeout.Duration > 0 {
		cfg.RestoreTimeout = jc.RestoreTimeout.Duration
	}
	if jc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
}
