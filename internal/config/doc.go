// Package config defines the unified, format-agnostic representation of a
// declarative engine cycle description: the cycle metadata, the engine
// elements with their per-kind attribute structs, the flow/bleed/shaft
// connection lists, optional extra balance declarations, and the off-design
// sweep. Format-specific loaders (see internal/hcladapter) translate raw
// input into this model.
package config
