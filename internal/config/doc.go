// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config file. It provides
// type-safe access to settings needed by the server, the task store,
// the broadcaster and the auth gateway.
package config
