// Package physics supplies the per-component thermodynamic evaluation
// behind the Evaluator interface. The cycle-graph engine treats evaluation
// as an opaque computational node: given the current state vector it
// produces named output quantities (temperatures, shaft powers, throat
// areas, net thrust) that the balance residuals consume.
//
// The bundled Surrogate is a low-fidelity ideal-gas model: US standard
// atmosphere ambient, ram compression, polytropic compressor and turbine
// work, a linear combustor temperature rise, choked-throat nozzle areas, and
// ideal-expansion gross thrust. Off-design, component pressure ratios scale
// with corrected spool speed against the design references, so the design
// state is an exact off-design root at the design flight condition. Bleed
// links carry no mass in the surrogate.
package physics
