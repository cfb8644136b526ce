package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	EnginePath string // hcl files describing the engine cycle

	LogFormat string
	LogLevel  string
	Workers   int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.EnginePath == "" {
		return nil, errors.New("EnginePath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
