// Package config loads runtime configuration for the labscribe client.
//
// Sources, lowest precedence first: built-in defaults, an optional JSON file
// selected with -c or -config, and command-line flags.
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "database_path": "labscribe.db",
//	  "session_watch_interval": "30s",
//	  "restore_timeout": "5s",
//	  "request_timeout": "10s"
//	}
package config
