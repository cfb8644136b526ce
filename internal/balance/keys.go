package balance

// Canonical free-variable names. These are the state-vector entries the
// physics evaluator understands.
const (
	VarW       = "W"
	VarFAR     = "FAR"
	VarLptPR   = "lpt_PR"
	VarHptPR   = "hpt_PR"
	VarBPR     = "BPR"
	VarLpNmech = "lp_Nmech"
	VarHpNmech = "hp_Nmech"
)

// Cycle-level output quantity keys.
const (
	KeyNetThrust = "perf.Fn"
	KeyTSFC      = "perf.TSFC"
	KeyOPR       = "perf.OPR"
	KeyFuelFlow  = "perf.Wfuel"
)

// ExitTempKey is the combustor exit total temperature output of the named
// combustor.
func ExitTempKey(combustor string) string { return combustor + ".Tt4" }

// ThroatAreaKey is the nozzle throat area output of the named nozzle.
func ThroatAreaKey(nozzle string) string { return nozzle + ".area" }

// PowerInKey is the real power delivered into the named shaft by its
// producers.
func PowerInKey(shaft string) string { return shaft + ".pwr_in" }

// PowerOutKey is the real power drawn from the named shaft by its consumers
// (negative by convention).
func PowerOutKey(shaft string) string { return shaft + ".pwr_out" }
