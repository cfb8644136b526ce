package config

// Model is the unified, format-agnostic representation of one engine
// description: cycle metadata, elements, connection lists, extra balance
// declarations, and the off-design sweep.
type Model struct {
	Cycle      *Cycle
	Elements   []*Element
	Flows      []*FlowConnection
	ShaftPairs []*ShaftPair
	Balances   []*BalanceDecl
	Sweep      *Sweep
}

// Cycle holds the cycle-level metadata and the design-point targets.
type Cycle struct {
	Name         string  `hcl:"name"`
	ThermoMethod string  `hcl:"thermo_method,optional"` // CEA | TABULAR
	ThrottleMode string  `hcl:"throttle_mode,optional"` // T4 | percent_thrust
	FuelType     string  `hcl:"fuel_type,optional"`     // FAR | Jet-A(g)
	DesignThrust float64 `hcl:"design_thrust"`          // lbf, net thrust target at design
	T4Max        float64 `hcl:"t4_max"`                 // degR, combustor exit temperature target
}

// Element is one declared engine element. Spec holds the kind-specific
// attribute struct (one of the *Spec types below); the registry validates
// that it matches Kind.
type Element struct {
	Kind string
	Name string
	Spec any
}

// FlowConnection is a directed primary-flow edge between two named elements.
// Outlet 0 denotes the source's primary outlet.
type FlowConnection struct {
	From   string `hcl:"from"`
	To     string `hcl:"to"`
	Outlet int    `hcl:"outlet,optional"`
}

// ShaftPair records that a turbomachinery element is mechanically coupled to
// a shaft. Port indices are assigned at resolution time in declaration order.
type ShaftPair struct {
	Element string `hcl:"element"`
	Shaft   string `hcl:"shaft"`
}

// BalanceDecl is a user-declared balance in addition to the canonical
// mode-dependent set. Name is the free variable. Rhs names an output
// quantity; RhsVal fixes the right-hand side to a constant instead.
type BalanceDecl struct {
	Name     string   `hcl:"name,label"`
	Lhs      string   `hcl:"lhs"`
	Rhs      string   `hcl:"rhs,optional"`
	RhsVal   *float64 `hcl:"rhs_val,optional"`
	Mult     *float64 `hcl:"mult,optional"`
	Lower    *float64 `hcl:"lower,optional"`
	Upper    *float64 `hcl:"upper,optional"`
	Guess    float64  `hcl:"guess,optional"`
	OnDesign bool     `hcl:"on_design,optional"`
}

// Sweep declares the off-design operating envelope: flight conditions
// crossed with throttle power codes.
type Sweep struct {
	Conditions []*FlightPoint
	PowerCodes []float64
}

// FlightPoint is one (Mach, altitude) pair in the sweep envelope. DTs
// overrides the design day-temperature offset for this point when set.
type FlightPoint struct {
	MN  float64  `hcl:"mn"`
	Alt float64  `hcl:"alt"`
	DTs *float64 `hcl:"d_ts,optional"`
}

// Per-kind attribute structs. These enumerate exactly the recognized fields
// for each element kind; unrecognized attributes fail at decode time.

// FlightConditionsSpec sets the ambient operating condition for the point.
type FlightConditionsSpec struct {
	MN  float64 `hcl:"mn"`
	Alt float64 `hcl:"alt"`
	DTs float64 `hcl:"d_ts,optional"` // temperature deviation, degR
}

// InletSpec configures an inlet.
type InletSpec struct {
	RamRecovery *float64 `hcl:"ram_recovery,optional"`
	MN          *float64 `hcl:"mn,optional"`
}

// CompressorSpec configures a fan or compressor.
type CompressorSpec struct {
	Map    string   `hcl:"map"` // FanMap | LPCMap | HPCMap
	PRDes  float64  `hcl:"pr_des"`
	EffDes float64  `hcl:"eff_des"`
	Bleeds []string `hcl:"bleeds,optional"`
}

// TurbineSpec configures a turbine.
type TurbineSpec struct {
	Map    string   `hcl:"map"` // LPTMap | HPTMap
	EffDes float64  `hcl:"eff_des"`
	Bleeds []string `hcl:"bleeds,optional"`
}

// SplitterSpec configures a bypass splitter. BPR is the design bypass ratio;
// off-design it becomes a balance free variable.
type SplitterSpec struct {
	BPR float64 `hcl:"bpr"`
}

// DuctSpec configures a duct. DPqP is the fractional total-pressure loss.
type DuctSpec struct {
	DPqP float64 `hcl:"dpqp,optional"`
}

// CombustorSpec configures a combustor.
type CombustorSpec struct {
	FuelType string  `hcl:"fuel_type"` // FAR | Jet-A(g)
	DPqP     float64 `hcl:"dpqp,optional"`
}

// NozzleSpec configures a nozzle.
type NozzleSpec struct {
	NozzType string  `hcl:"nozz_type"` // CV | CD | CD_CV
	LossCoef float64 `hcl:"loss_coef,optional"`
}

// ShaftSpec configures a shaft. SpeedClass assigns the shaft to the LP or HP
// spool; Nmech is the design mechanical speed in rpm.
type ShaftSpec struct {
	NumPorts   int     `hcl:"num_ports,optional"`
	Nmech      float64 `hcl:"nmech"`
	SpeedClass string  `hcl:"speed_class"` // LP | HP
}

// BleedSpec configures a bleed sink element.
type BleedSpec struct {
	Bleeds []string `hcl:"bleeds"`
}
