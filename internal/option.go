package internal

import "github.com/starford/solace/internal/insight"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	generator insight.Generator
	version   string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithGenerator replaces the provider built from the insight config.
func WithGenerator(gen insight.Generator) Option {
	return func(a *application) {
		a.generator = gen
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}
