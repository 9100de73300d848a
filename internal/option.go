package internal

import "github.com/devsoland/socialsync/internal/source"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	source source.Provider
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithSource overrides the contact source built from the configuration.
// Useful for tests and alternative source integrations.
func WithSource(src source.Provider) Option {
	return func(a *application) {
		a.source = src
	}
}
