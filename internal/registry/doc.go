// Package registry classifies and validates declared engine elements by
// kind. It owns the closed element-kind enumeration, the per-kind attribute
// validation dispatch table, and the performance-map to shaft-speed-group
// policy. Elements are registered once per cycle point; solver iteration
// never re-inspects kinds.
package registry
