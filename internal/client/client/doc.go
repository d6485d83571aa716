// Package client contains the transport and local-storage building blocks of
// the labscribe terminal client.
//
// GRPCClient talks to the labscribe server over gRPC using the JSON codec
// from package api. It keeps the current token pair in memory, attaches the
// access token to every call, transparently refreshes an expired access
// token once and retries, and maps gRPC status codes to the sentinel errors
// in errors.go. Every call is bounded by the configured request timeout.
//
// InitDatabase opens the local SQLite database and applies the embedded
// goose migrations.
package client
