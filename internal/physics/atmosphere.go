package physics

import "math"

// US standard atmosphere in US customary units (degR, psia, ft).
const (
	seaLevelTemp  = 518.67  // degR
	seaLevelPress = 14.696  // psia
	lapseRate     = 0.00356616
	tropopause    = 36089.0 // ft
	stratoTemp    = 389.97  // degR
)

// Gas and conversion constants for the surrogate.
const (
	gammaCold = 1.4
	gammaHot  = 1.33
	cpCold    = 0.24 // BTU/(lbm degR)
	cpHot     = 0.27
	gasConst  = 53.35  // ft lbf/(lbm degR)
	gc        = 32.174 // lbm ft/(lbf s^2)
	joule     = 778.16 // ft lbf/BTU
	btuToHP   = 1.41485

	// fuelHeat is the effective temperature rise per unit fuel-air ratio.
	fuelHeat = 62000.0 // degR

	// flowConst relates choked corrected flow to throat area:
	// W = flowConst * A * Pt / sqrt(Tt), A in in^2, Pt in psia.
	flowConst = 0.5317

	// Off-design map laws: pressure-ratio rise scales with corrected speed.
	compSpeedExp = 1.8
	turbSpeedExp = 1.5
)

// ambient returns static temperature and pressure at altitude, with a
// temperature deviation dTs applied.
func ambient(alt, dTs float64) (ts, ps float64) {
	if alt <= tropopause {
		ts = seaLevelTemp - lapseRate*alt
		ps = seaLevelPress * math.Pow(ts/seaLevelTemp, 5.2561)
	} else {
		ts = stratoTemp
		ps = 3.282 * math.Exp(-(alt-tropopause)/20806)
	}
	return ts + dTs, ps
}

// ram returns freestream total conditions and velocity for the given flight
// condition.
func ram(cond Conditions) (tt, pt, v0 float64) {
	ts, ps := ambient(cond.Alt, cond.DTs)
	m2 := cond.MN * cond.MN
	tt = ts * (1 + 0.2*m2)
	pt = ps * math.Pow(1+0.2*m2, 3.5)
	v0 = cond.MN * math.Sqrt(gammaCold*gc*gasConst*ts)
	return tt, pt, v0
}

// InletTheta is the engine-inlet temperature ratio for a flight condition,
// used to correct spool speeds off-design.
func InletTheta(cond Conditions) float64 {
	tt, _, _ := ram(cond)
	return tt / seaLevelTemp
}
