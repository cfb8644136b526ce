// Package multipoint sequences a design cycle point, publishes its derived
// geometry as an immutable snapshot, and sweeps off-design points over
// flight and throttle conditions on a bounded worker pool. Off-design
// convergence failures are recorded per entry and never abort the sweep; a
// design failure aborts the run, since no off-design targets can be bound
// without the design geometry.
package multipoint
