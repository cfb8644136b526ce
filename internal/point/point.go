package point

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vk/turbocycle/internal/balance"
	"github.com/vk/turbocycle/internal/config"
	"github.com/vk/turbocycle/internal/ctxlog"
	"github.com/vk/turbocycle/internal/physics"
	"github.com/vk/turbocycle/internal/registry"
	"github.com/vk/turbocycle/internal/resolve"
	"github.com/vk/turbocycle/internal/solver"
)

// Assembly is the resolved element set and connection graph of one point,
// before any balances are attached.
type Assembly struct {
	Reg   *registry.Registry
	Graph *resolve.Graph
}

// Assemble registers every declared element and resolves all connections.
// All build-time errors surface here, aborting only this point.
func Assemble(ctx context.Context, model *config.Model) (*Assembly, error) {
	reg := registry.New()
	for _, el := range model.Elements {
		if _, err := reg.Register(el); err != nil {
			return nil, err
		}
	}
	graph, err := resolve.Resolve(ctx, reg, model)
	if err != nil {
		return nil, err
	}
	return &Assembly{Reg: reg, Graph: graph}, nil
}

// DeriveWiring picks the elements the canonical balance set attaches to,
// using declaration order as the deterministic tie-break: the first
// combustor is the burner, the first nozzle is the core stream, the second
// the bypass.
func DeriveWiring(reg *registry.Registry) (balance.Wiring, error) {
	var w balance.Wiring

	combustors := reg.OfKind(registry.KindCombustor)
	if len(combustors) == 0 {
		return w, &registry.ConfigurationError{Element: "cycle", Field: "combustor", Value: "0"}
	}
	w.Burner = combustors[0].Name

	nozzles := reg.OfKind(registry.KindNozzle)
	if len(nozzles) == 0 {
		return w, &registry.ConfigurationError{Element: "cycle", Field: "nozzle", Value: "0"}
	}
	w.CoreNozzle = nozzles[0].Name
	if len(nozzles) > 1 {
		w.BypNozzle = nozzles[1].Name
	}

	for _, shaft := range reg.OfKind(registry.KindShaft) {
		switch shaft.Spec.(*config.ShaftSpec).SpeedClass {
		case "LP":
			w.LPShaft = shaft.Name
		case "HP":
			w.HPShaft = shaft.Name
		}
	}
	if w.LPShaft == "" || w.HPShaft == "" {
		return w, &registry.ConfigurationError{Element: "cycle", Field: "shaft",
			Value: strconv.Itoa(len(reg.OfKind(registry.KindShaft)))}
	}

	if splitters := reg.OfKind(registry.KindSplitter); len(splitters) > 0 {
		w.Splitter = splitters[0].Name
	}
	return w, nil
}

// Point is one cycle point: mode, resolved assembly, active balance set,
// evaluator, and the solved state.
type Point struct {
	Name     string
	Mode     balance.Mode
	Assembly *Assembly
	Balances *balance.Manager
	Cond     physics.Conditions

	// Eval is the physics collaborator. New wires the bundled surrogate;
	// callers may substitute another Evaluator before Solve.
	Eval physics.Evaluator

	solved bool
	State  map[string]float64
}

// New builds a cycle point for the given mode and operating condition.
// refs must carry the design references for off-design modes.
func New(ctx context.Context, name string, model *config.Model, mode balance.Mode, cond physics.Conditions, refs *physics.DesignRefs) (*Point, error) {
	if err := registry.ValidateCycle(model.Cycle); err != nil {
		return nil, err
	}
	asm, err := Assemble(ctx, model)
	if err != nil {
		return nil, err
	}
	wiring, err := DeriveWiring(asm.Reg)
	if err != nil {
		return nil, err
	}

	targets := balance.Targets{DesignThrust: model.Cycle.DesignThrust, T4: model.Cycle.T4Max}
	mgr, err := balance.Instantiate(mode, wiring, targets)
	if err != nil {
		return nil, err
	}
	for _, decl := range model.Balances {
		if decl.OnDesign != (mode == balance.ModeDesign) {
			continue
		}
		if err := mgr.Add(declToBalance(decl)); err != nil {
			return nil, err
		}
	}

	eval, err := physics.NewSurrogate(asm.Reg, asm.Graph, mode == balance.ModeDesign, cond, refs)
	if err != nil {
		return nil, err
	}
	return &Point{
		Name:     name,
		Mode:     mode,
		Assembly: asm,
		Balances: mgr,
		Cond:     cond,
		Eval:     eval,
	}, nil
}

func declToBalance(d *config.BalanceDecl) *balance.Balance {
	b := &balance.Balance{
		Name:     d.Name,
		Lhs:      d.Lhs,
		Rhs:      d.Rhs,
		Guess:    d.Guess,
		OnDesign: d.OnDesign,
	}
	if d.RhsVal != nil {
		b.RhsVal = *d.RhsVal
	}
	if d.Mult != nil {
		b.Mult = *d.Mult
		b.UseMult = true
	}
	if d.Lower != nil {
		b.Lower = *d.Lower
	}
	if d.Upper != nil {
		b.Upper = *d.Upper
	}
	return b
}

// Metrics are the derived performance quantities of a converged point.
type Metrics struct {
	NetThrust float64
	TSFC      float64
	OPR       float64
	FuelFlow  float64
}

// Result is the read-only snapshot published when a point converges.
type Result struct {
	Point   string
	State   map[string]float64
	Outputs map[string]float64
	Metrics Metrics
}

// Solve drives the point to convergence through the given solver. warm, if
// non-nil, overrides initial guesses per variable for warm starting.
func (p *Point) Solve(ctx context.Context, s solver.Solver, warm map[string]float64) (*Result, error) {
	logger := ctxlog.FromContext(ctx)
	vars := p.Balances.Variables()
	for i := range vars {
		if v, ok := warm[vars[i].Name]; ok {
			vars[i].Guess = v
		}
	}

	residuals := func(ctx context.Context, state map[string]float64) ([]float64, error) {
		outputs, err := p.Eval.Evaluate(ctx, state)
		if err != nil {
			return nil, err
		}
		return p.Balances.Evaluate(outputs)
	}

	logger.Debug("Solving cycle point.", "point", p.Name, "mode", p.Mode.String(), "unknowns", len(vars))
	state, err := s.Solve(ctx, vars, residuals)
	if err != nil {
		return nil, fmt.Errorf("point %q: %w", p.Name, err)
	}

	outputs, err := p.Eval.Evaluate(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("point %q: final evaluation: %w", p.Name, err)
	}
	p.solved = true
	p.State = state

	return &Result{
		Point:   p.Name,
		State:   state,
		Outputs: outputs,
		Metrics: Metrics{
			NetThrust: outputs[balance.KeyNetThrust],
			TSFC:      outputs[balance.KeyTSFC],
			OPR:       outputs[balance.KeyOPR],
			FuelFlow:  outputs[balance.KeyFuelFlow],
		},
	}, nil
}

// Solved reports whether the point has converged.
func (p *Point) Solved() bool {
	return p.solved
}
