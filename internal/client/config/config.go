package config

import "time"

// Config holds runtime settings for the labscribe terminal client.
type Config struct {
	ServerEndpointAddr   string
	DatabasePath         string
	SessionWatchInterval time.Duration
	RestoreTimeout       time.Duration
	RequestTimeout       time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.DatabasePath = "labscribe.db"
	c.SessionWatchInterval = 30 * time.Second
	c.RestoreTimeout = 5 * time.Second
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig applies defaults, then the JSON file named by -c/-config, then
// flags. Later sources win. Non-positive durations fall back to defaults.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	cfg.fixDurations()
	return cfg
}

func (c *Config) fixDurations() {
	d := &Config{}
	d.LoadDefaults()
	for _, f := range []struct{ got, def *time.Duration }{
		{&c.SessionWatchInterval, &d.SessionWatchInterval},
		{&c.RestoreTimeout, &d.RestoreTimeout},
		{&c.RequestTimeout, &d.RequestTimeout},
	} {
		if *f.got <= 0 {
			*f.got = *f.def
		}
	}
}
