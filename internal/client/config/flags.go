package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/labscribe/internal/flagx"
)

// parseFlags overlays cfg with command-line flags. Arguments it does not
// know are filtered out first so other flag sets can coexist.
//
//	-a string   server address
//	-d string   local database path
//	-i int      session watch interval, seconds
//	-r int      session restore timeout, seconds
//	-t int      per-request timeout, seconds
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-r", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database file")
	watch := fs.Int("i", int(cfg.SessionWatchInterval.Seconds()), "session watch interval (in seconds)")
	restore := fs.Int("r", int(cfg.RestoreTimeout.Seconds()), "session restore timeout (in seconds)")
	request := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Only flags given on the command line replace values, so sub-second
	// durations from the JSON file survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.SessionWatchInterval = time.Duration(*watch) * time.Second
		case "r":
			cfg.RestoreTimeout = time.Duration(*restore) * time.Second
		case "t":
			cfg.RequestTimeout = time.Duration(*request) * time.Second
		}
	})
}
