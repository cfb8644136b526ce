package balance

import (
	"fmt"
	"math"

	"github.com/vk/turbocycle/internal/solver"
)

// Mode is the operating state of a manager, fixed at construction.
type Mode int

const (
	ModeDesign Mode = iota
	ModeOffDesignT4
	ModeOffDesignPercentThrust
)

// String returns a short tag for the mode.
func (m Mode) String() string {
	switch m {
	case ModeDesign:
		return "design"
	case ModeOffDesignT4:
		return "off-design/T4"
	case ModeOffDesignPercentThrust:
		return "off-design/percent-thrust"
	}
	return "unknown"
}

// DuplicateBalanceError reports a balance declaration that collides with the
// active set, either by name or by mode-flag mismatch.
type DuplicateBalanceError struct {
	Name   string
	Reason string
}

// Error implements the error interface.
func (e *DuplicateBalanceError) Error() string {
	return fmt.Sprintf("balance %q: %s", e.Name, e.Reason)
}

// Balance is one implicit constraint: Name is the free variable, Lhs an
// output quantity key, and the right-hand side either another output key
// (Rhs) or a fixed target (RhsVal, which may be bound late via BindTarget).
// The residual is lhs - Mult*rhs; Mult defaults to 1.
type Balance struct {
	Name     string
	Lhs      string
	Rhs      string
	RhsVal   float64
	Mult     float64
	UseMult  bool
	Lower    float64
	Upper    float64
	Guess    float64
	OnDesign bool

	bound bool // fixed target assigned
}

// mult returns the effective right-hand multiplier.
func (b *Balance) mult() float64 {
	if b.UseMult {
		return b.Mult
	}
	return 1
}

// Wiring names the elements the canonical balance set attaches to. BypNozzle
// and Splitter may be empty for single-stream cycles; the BPR balance is
// then omitted.
type Wiring struct {
	Burner     string
	CoreNozzle string
	BypNozzle  string
	LPShaft    string
	HPShaft    string
	Splitter   string
}

// Targets carries the fixed design targets known at instantiation. The
// off-design area and reference-thrust targets are bound later, from the
// design snapshot.
type Targets struct {
	DesignThrust float64 // lbf
	T4           float64 // degR
}

// Manager holds the active balance set of one cycle point.
type Manager struct {
	mode   Mode
	order  []*Balance
	byName map[string]*Balance
}

// Instantiate builds the canonical balance set for the given mode.
//
// Design pairs inlet flow against the thrust target, fuel-air ratio against
// the combustor exit temperature target, and the turbine pressure ratios
// against net-zero shaft power. Off-design fixes geometry instead: flow and
// bypass ratio match the design throat areas, the shaft speeds balance
// power, and the throttle policy decides whether fuel-air ratio holds the T4
// target or a fraction of the reference maximum thrust.
func Instantiate(mode Mode, w Wiring, t Targets) (*Manager, error) {
	m := &Manager{mode: mode, byName: make(map[string]*Balance)}

	var set []*Balance
	switch mode {
	case ModeDesign:
		set = []*Balance{
			{Name: VarW, Lhs: KeyNetThrust, RhsVal: t.DesignThrust, bound: true,
				Lower: 1, Upper: 1e4, Guess: 100, OnDesign: true},
			{Name: VarFAR, Lhs: ExitTempKey(w.Burner), RhsVal: t.T4, bound: true,
				Lower: 1e-4, Upper: 0.1, Guess: 0.025, OnDesign: true},
			{Name: VarLptPR, Lhs: PowerInKey(w.LPShaft), Rhs: PowerOutKey(w.LPShaft), UseMult: true, Mult: -1,
				Lower: 1.001, Upper: 8, Guess: 4, OnDesign: true},
			{Name: VarHptPR, Lhs: PowerInKey(w.HPShaft), Rhs: PowerOutKey(w.HPShaft), UseMult: true, Mult: -1,
				Lower: 1.001, Upper: 8, Guess: 3, OnDesign: true},
		}
	case ModeOffDesignT4, ModeOffDesignPercentThrust:
		far := &Balance{Name: VarFAR, Lhs: ExitTempKey(w.Burner),
			Lower: 1e-4, Upper: 0.1, Guess: 0.02467}
		if mode == ModeOffDesignPercentThrust {
			// Thrust vs. a power-code-scaled fraction of the reference
			// maximum thrust; the scaled target is bound from the design
			// snapshot.
			far.Lhs = KeyNetThrust
		}
		set = []*Balance{
			far,
			{Name: VarW, Lhs: ThroatAreaKey(w.CoreNozzle),
				Lower: 10, Upper: 1000, Guess: 300},
			{Name: VarLpNmech, Lhs: PowerInKey(w.LPShaft), Rhs: PowerOutKey(w.LPShaft), UseMult: true, Mult: -1,
				Lower: 500, Upper: 1e5, Guess: 5000},
			{Name: VarHpNmech, Lhs: PowerInKey(w.HPShaft), Rhs: PowerOutKey(w.HPShaft), UseMult: true, Mult: -1,
				Lower: 500, Upper: 1e5, Guess: 15000},
		}
		if w.BypNozzle != "" {
			bpr := &Balance{Name: VarBPR, Lhs: ThroatAreaKey(w.BypNozzle),
				Lower: 2, Upper: 10, Guess: 5.105}
			set = append(set[:2], append([]*Balance{bpr}, set[2:]...)...)
		}
		if mode == ModeOffDesignT4 {
			far.RhsVal = t.T4
			far.bound = true
		}
	default:
		return nil, fmt.Errorf("unknown balance mode %d", mode)
	}

	for _, b := range set {
		b.OnDesign = mode == ModeDesign
		if err := m.Add(b); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Mode returns the manager's fixed state.
func (m *Manager) Mode() Mode {
	return m.mode
}

// Add appends a balance to the active set. Name collisions and mode-flag
// mismatches are DuplicateBalanceErrors.
func (m *Manager) Add(b *Balance) error {
	if _, exists := m.byName[b.Name]; exists {
		return &DuplicateBalanceError{Name: b.Name, Reason: "already present in active balance set"}
	}
	if b.OnDesign != (m.mode == ModeDesign) {
		return &DuplicateBalanceError{Name: b.Name,
			Reason: fmt.Sprintf("mode flag (on_design=%t) does not match %s state", b.OnDesign, m.mode)}
	}
	if b.Upper == 0 && b.Lower == 0 {
		b.Lower = math.Inf(-1)
		b.Upper = math.Inf(1)
	}
	m.order = append(m.order, b)
	m.byName[b.Name] = b
	return nil
}

// Balances returns the active set in declaration order.
func (m *Manager) Balances() []*Balance {
	return m.order
}

// Lookup returns the named balance.
func (m *Manager) Lookup(name string) (*Balance, bool) {
	b, ok := m.byName[name]
	return b, ok
}

// BindTarget fixes the right-hand target of a balance whose value is derived
// elsewhere (design throat areas, reference thrust).
func (m *Manager) BindTarget(name string, value float64) error {
	b, ok := m.byName[name]
	if !ok {
		return fmt.Errorf("bind target: no balance %q in active set", name)
	}
	if b.Rhs != "" {
		return fmt.Errorf("bind target: balance %q pairs two outputs, not a fixed target", name)
	}
	b.RhsVal = value
	b.bound = true
	return nil
}

// Variables returns the free variables of the active set, in declaration
// order, for the solver contract.
func (m *Manager) Variables() []solver.Variable {
	vars := make([]solver.Variable, len(m.order))
	for i, b := range m.order {
		vars[i] = solver.Variable{Name: b.Name, Guess: b.Guess, Lower: b.Lower, Upper: b.Upper}
	}
	return vars
}

// Evaluate computes one residual per balance from the latest component
// outputs. It performs exactly one evaluation pass and does not iterate.
func (m *Manager) Evaluate(outputs map[string]float64) ([]float64, error) {
	res := make([]float64, len(m.order))
	for i, b := range m.order {
		lhs, ok := outputs[b.Lhs]
		if !ok {
			return nil, fmt.Errorf("balance %q: output %q not available", b.Name, b.Lhs)
		}
		var rhs float64
		if b.Rhs != "" {
			rhs, ok = outputs[b.Rhs]
			if !ok {
				return nil, fmt.Errorf("balance %q: output %q not available", b.Name, b.Rhs)
			}
		} else {
			if !b.bound {
				return nil, fmt.Errorf("balance %q: fixed target not bound", b.Name)
			}
			rhs = b.RhsVal
		}
		res[i] = lhs - b.mult()*rhs
	}
	return res, nil
}
