package config

import "context"

// Loader is the interface for a format-specific configuration loader. A
// Loader reads declarative input from the given paths and translates it into
// the format-agnostic Model.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}
