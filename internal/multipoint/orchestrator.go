package multipoint

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/vk/turbocycle/internal/balance"
	"github.com/vk/turbocycle/internal/config"
	"github.com/vk/turbocycle/internal/ctxlog"
	"github.com/vk/turbocycle/internal/physics"
	"github.com/vk/turbocycle/internal/point"
	"github.com/vk/turbocycle/internal/registry"
	"github.com/vk/turbocycle/internal/solver"
)

// State tracks the run through its lifecycle. Transitions are monotonic; a
// run never re-enters an earlier state.
type State int32

const (
	StateUninitialized State = iota
	StateDesignSolving
	StateDesignConverged
	StateOffDesignSolving
	StateComplete
	StateFailed
)

// String returns a short tag for the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateDesignSolving:
		return "design-solving"
	case StateDesignConverged:
		return "design-converged"
	case StateOffDesignSolving:
		return "off-design-solving"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Snapshot is the immutable design-point publication every off-design point
// binds its geometry targets against. It is written exactly once, after the
// design point converges, and only read thereafter.
type Snapshot struct {
	CoreThroatArea float64
	BypThroatArea  float64
	MaxThrust      float64
	Refs           physics.DesignRefs
}

// Entry is one off-design evaluation in the sweep: its operating condition
// and either a converged result or the error that stopped it.
type Entry struct {
	Name   string
	Cond   physics.Conditions
	Result *point.Result
	Err    error
}

// RunResult is the outcome of one orchestrated run. Entries holds every
// sweep evaluation in declaration order; failed entries sit alongside
// converged ones rather than aborting the run.
type RunResult struct {
	RunID    string
	State    State
	Design   *point.Result
	Snapshot *Snapshot
	Entries  []Entry
}

// Failed returns the entries that did not converge.
func (r *RunResult) Failed() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Err != nil {
			out = append(out, e)
		}
	}
	return out
}

// Orchestrator sequences a design solve and the off-design sweep derived
// from it. A single instance serves one run.
type Orchestrator struct {
	model   *config.Model
	solver  solver.Solver
	workers int

	state        atomic.Int32
	snapshotOnce sync.Once
	snapshot     *Snapshot

	// NewEvaluator, when non-nil, replaces the bundled physics evaluator of
	// every point built by this orchestrator.
	NewEvaluator func(name string, design bool, cond physics.Conditions) physics.Evaluator
}

// New creates an orchestrator over the given model. workers bounds sweep
// concurrency; non-positive values fall back to a small default.
func New(model *config.Model, s solver.Solver, workers int) *Orchestrator {
	if workers <= 0 {
		workers = 4
	}
	return &Orchestrator{model: model, solver: s, workers: workers}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
}

// Snapshot returns the design publication, or nil before the design point
// has converged.
func (o *Orchestrator) Snapshot() *Snapshot {
	return o.snapshot
}

// designCondition reads the flight condition the design point runs at from
// the model's flight_conditions element.
func designCondition(model *config.Model) (physics.Conditions, error) {
	for _, el := range model.Elements {
		kind, err := registry.ParseKind(el.Name, el.Kind)
		if err != nil {
			return physics.Conditions{}, err
		}
		if kind != registry.KindFlightConditions {
			continue
		}
		spec, ok := el.Spec.(*config.FlightConditionsSpec)
		if !ok {
			return physics.Conditions{}, &registry.CapabilityMismatchError{
				Element: el.Name, Kind: kind, Payload: fmt.Sprintf("%T", el.Spec)}
		}
		return physics.Conditions{MN: spec.MN, Alt: spec.Alt, DTs: spec.DTs, PowerCode: 1}, nil
	}
	return physics.Conditions{}, &registry.ConfigurationError{
		Element: "cycle", Field: "flight_conditions", Value: "0"}
}

// offDesignMode maps the cycle throttle policy to a balance mode. The
// default policy holds the combustor exit temperature target.
func offDesignMode(cycle *config.Cycle) balance.Mode {
	if cycle.ThrottleMode == "percent_thrust" {
		return balance.ModeOffDesignPercentThrust
	}
	return balance.ModeOffDesignT4
}

// Run executes the design solve and, on success, the off-design sweep. The
// design point must converge before any off-design point is attempted; a
// design failure fails the whole run. Off-design failures are recorded per
// entry. Cancelling ctx stops the sweep between entries and returns the
// results accumulated so far.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	logger := ctxlog.FromContext(ctx)
	res := &RunResult{RunID: uuid.NewString()}

	cond, err := designCondition(o.model)
	if err != nil {
		o.setState(StateFailed)
		res.State = o.State()
		return res, err
	}

	o.setState(StateDesignSolving)
	logger.Info("Solving design point.", "run_id", res.RunID, "mn", cond.MN, "alt", cond.Alt)

	dp, err := point.New(ctx, "DESIGN", o.model, balance.ModeDesign, cond, nil)
	if err != nil {
		o.setState(StateFailed)
		res.State = o.State()
		return res, err
	}
	if o.NewEvaluator != nil {
		dp.Eval = o.NewEvaluator(dp.Name, true, cond)
	}
	design, err := dp.Solve(ctx, o.solver, nil)
	if err != nil {
		o.setState(StateFailed)
		res.State = o.State()
		return res, fmt.Errorf("design point: %w", err)
	}
	res.Design = design
	o.setState(StateDesignConverged)

	wiring, err := point.DeriveWiring(dp.Assembly.Reg)
	if err != nil {
		o.setState(StateFailed)
		res.State = o.State()
		return res, err
	}
	o.snapshotOnce.Do(func() {
		o.snapshot = o.buildSnapshot(design, wiring, cond, dp.Assembly.Reg)
	})
	res.Snapshot = o.snapshot
	logger.Debug("Design snapshot published.",
		"core_area", o.snapshot.CoreThroatArea,
		"byp_area", o.snapshot.BypThroatArea,
		"fn_max", o.snapshot.MaxThrust)

	entries := o.sweepEntries(cond)
	if len(entries) == 0 {
		o.setState(StateComplete)
		res.State = o.State()
		return res, nil
	}

	o.setState(StateOffDesignSolving)
	o.runSweep(ctx, entries, wiring, design)
	res.Entries = entries

	o.setState(StateComplete)
	res.State = o.State()
	if failed := res.Failed(); len(failed) > 0 {
		logger.Warn("Sweep finished with failed entries.",
			"failed", len(failed), "total", len(entries))
	} else {
		logger.Info("Sweep complete.", "entries", len(entries))
	}
	return res, nil
}

// buildSnapshot fixes the off-design targets from the converged design
// outputs: nozzle throat areas, reference maximum thrust, and the scaling
// references for the component map laws.
func (o *Orchestrator) buildSnapshot(design *point.Result, w balance.Wiring, cond physics.Conditions, reg *registry.Registry) *Snapshot {
	snap := &Snapshot{
		CoreThroatArea: design.Outputs[balance.ThroatAreaKey(w.CoreNozzle)],
		MaxThrust:      design.Metrics.NetThrust,
		Refs: physics.DesignRefs{
			LptPR: design.State[balance.VarLptPR],
			HptPR: design.State[balance.VarHptPR],
			Theta: physics.InletTheta(cond),
		},
	}
	if w.BypNozzle != "" {
		snap.BypThroatArea = design.Outputs[balance.ThroatAreaKey(w.BypNozzle)]
	}
	for _, shaft := range reg.OfKind(registry.KindShaft) {
		spec := shaft.Spec.(*config.ShaftSpec)
		switch spec.SpeedClass {
		case "LP":
			snap.Refs.LpNmech = spec.Nmech
		case "HP":
			snap.Refs.HpNmech = spec.Nmech
		}
	}
	return snap
}

// sweepEntries expands the declared envelope into the ordered cross product
// of flight conditions and power codes. Sweep conditions inherit the design
// day-temperature offset unless a point declares its own.
func (o *Orchestrator) sweepEntries(designCond physics.Conditions) []Entry {
	sweep := o.model.Sweep
	if sweep == nil || len(sweep.Conditions) == 0 {
		return nil
	}
	codes := sweep.PowerCodes
	if len(codes) == 0 {
		codes = []float64{1}
	}
	entries := make([]Entry, 0, len(sweep.Conditions)*len(codes))
	for _, fp := range sweep.Conditions {
		dts := designCond.DTs
		if fp.DTs != nil {
			dts = *fp.DTs
		}
		for _, pc := range codes {
			entries = append(entries, Entry{
				Name: fmt.Sprintf("OD_MN%g_alt%g_PC%g", fp.MN, fp.Alt, pc),
				Cond: physics.Conditions{MN: fp.MN, Alt: fp.Alt, DTs: dts, PowerCode: pc},
			})
		}
	}
	return entries
}

// runSweep solves every entry on a bounded worker pool. Each worker owns
// the entry slots it takes from the channel, so no result locking is
// needed. The most recent converged state is shared as a warm start.
func (o *Orchestrator) runSweep(ctx context.Context, entries []Entry, w balance.Wiring, design *point.Result) {
	logger := ctxlog.FromContext(ctx)

	warmBase := o.designWarmStart(design, w)
	var lastConverged atomic.Pointer[map[string]float64]
	lastConverged.Store(&warmBase)

	jobs := make(chan int, len(entries))
	for i := range entries {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	wg.Add(o.workers)
	logger.Debug("Starting sweep worker pool.", "workers", o.workers, "entries", len(entries))
	for i := 0; i < o.workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				e := &entries[idx]
				if err := ctx.Err(); err != nil {
					e.Err = err
					continue
				}
				result, err := o.solveEntry(ctx, e, w, lastConverged.Load())
				if err != nil {
					logger.Warn("Off-design point failed.", "point", e.Name, "error", err)
					e.Err = err
					continue
				}
				e.Result = result
				lastConverged.Store(&result.State)
			}
		}()
	}
	wg.Wait()
}

// designWarmStart seeds the off-design free variables from the converged
// design point, which is itself an operating point of the engine.
func (o *Orchestrator) designWarmStart(design *point.Result, w balance.Wiring) map[string]float64 {
	warm := map[string]float64{
		balance.VarW:       design.State[balance.VarW],
		balance.VarFAR:     design.State[balance.VarFAR],
		balance.VarLpNmech: o.snapshot.Refs.LpNmech,
		balance.VarHpNmech: o.snapshot.Refs.HpNmech,
	}
	if w.Splitter != "" {
		for _, el := range o.model.Elements {
			if el.Name == w.Splitter {
				if spec, ok := el.Spec.(*config.SplitterSpec); ok {
					warm[balance.VarBPR] = spec.BPR
				}
			}
		}
	}
	return warm
}

// solveEntry builds and solves one off-design point, binding its geometry
// and throttle targets from the design snapshot.
func (o *Orchestrator) solveEntry(ctx context.Context, e *Entry, w balance.Wiring, warm *map[string]float64) (*point.Result, error) {
	mode := offDesignMode(o.model.Cycle)
	p, err := point.New(ctx, e.Name, o.model, mode, e.Cond, &o.snapshot.Refs)
	if err != nil {
		return nil, err
	}
	if o.NewEvaluator != nil {
		p.Eval = o.NewEvaluator(p.Name, false, e.Cond)
	}
	if err := o.bindTargets(p.Balances, w, e.Cond.PowerCode); err != nil {
		return nil, fmt.Errorf("point %q: %w", e.Name, err)
	}
	var seed map[string]float64
	if warm != nil {
		seed = *warm
	}
	return p.Solve(ctx, o.solver, seed)
}

// bindTargets fixes the snapshot-derived targets on an off-design balance
// set: throat areas for flow and bypass ratio, and the throttle target. In
// percent-thrust mode the power code scales the reference maximum thrust;
// in temperature mode it scales the combustor exit temperature target.
func (o *Orchestrator) bindTargets(mgr *balance.Manager, w balance.Wiring, powerCode float64) error {
	if err := mgr.BindTarget(balance.VarW, o.snapshot.CoreThroatArea); err != nil {
		return err
	}
	if _, ok := mgr.Lookup(balance.VarBPR); ok {
		if err := mgr.BindTarget(balance.VarBPR, o.snapshot.BypThroatArea); err != nil {
			return err
		}
	}
	switch mgr.Mode() {
	case balance.ModeOffDesignPercentThrust:
		far, ok := mgr.Lookup(balance.VarFAR)
		if !ok {
			return fmt.Errorf("no %s balance in active set", balance.VarFAR)
		}
		far.Mult = powerCode
		far.UseMult = true
		if err := mgr.BindTarget(balance.VarFAR, o.snapshot.MaxThrust); err != nil {
			return err
		}
	case balance.ModeOffDesignT4:
		if powerCode != 1 {
			if err := mgr.BindTarget(balance.VarFAR, powerCode*o.model.Cycle.T4Max); err != nil {
				return err
			}
		}
	}
	return nil
}
