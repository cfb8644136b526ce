// Package resolve turns the flat, name-referencing connection declarations
// of a cycle description into a consistent computational graph: directed
// flow edges, bleed producer/consumer pairings, signed shaft torque ports,
// and nozzle back-pressure couplings. Resolution happens once per cycle
// point; names are resolved to registry entries here and never re-resolved
// by string during solver iteration. Resolution is deterministic and
// idempotent.
package resolve
