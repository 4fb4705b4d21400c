// Package config provides configuration management for the wilk CLI.
//
// Configuration is merged from four sources with increasing
// precedence: built-in defaults, a wilk.yaml config file, WILK_
// environment variables, and command-line flags.
package config

// ServerConfig holds settings for the HTTP API server.
type ServerConfig struct {
	Addr            string `koanf:"addr"`
	ReadTimeout     int    `koanf:"read_timeout"`
	ShutdownTimeout int    `koanf:"shutdown_timeout"`
}

// Config holds all CLI configuration options.
type Config struct {
	Verbose      bool          `koanf:"verbose"`
	OutputFormat string        `koanf:"output"`
	Family       string        `koanf:"family"`
	HistoryFile  string        `koanf:"history_file"`
	Server       *ServerConfig `koanf:"server"`
}

// GetServerConfig returns the server config with defaults applied for
// any unset values.
func (c *Config) GetServerConfig() *ServerConfig {
	srv := c.Server
	if srv == nil {
		srv = &ServerConfig{}
	}
	if srv.Addr == "" {
		srv.Addr = DefaultServerAddr
	}
	if srv.ReadTimeout == 0 {
		srv.ReadTimeout = DefaultReadTimeout
	}
	if srv.ShutdownTimeout == 0 {
		srv.ShutdownTimeout = DefaultShutdownTimeout
	}
	return srv
}

// Default configuration values.
const (
	DefaultOutput          = "auto"
	DefaultHistoryFile     = ".wilk_history"
	DefaultServerAddr      = ":8385"
	DefaultReadTimeout     = 10
	DefaultShutdownTimeout = 5
)
