package physics

import (
	"context"
	"fmt"
	"math"

	"github.com/vk/turbocycle/internal/balance"
	"github.com/vk/turbocycle/internal/config"
	"github.com/vk/turbocycle/internal/registry"
	"github.com/vk/turbocycle/internal/resolve"
)

// Conditions is one operating condition: flight state plus throttle power
// code.
type Conditions struct {
	MN        float64
	Alt       float64
	DTs       float64
	PowerCode float64
}

// Evaluator computes the named output quantities for one state vector. It
// is the opaque physics collaborator of a cycle point.
type Evaluator interface {
	Evaluate(ctx context.Context, state map[string]float64) (map[string]float64, error)
}

// DesignRefs are the design-point references an off-design surrogate scales
// against.
type DesignRefs struct {
	LptPR   float64
	HptPR   float64
	LpNmech float64
	HpNmech float64
	Theta   float64
}

// Surrogate is the bundled low-fidelity evaluator for one cycle point. Map
// groups and shaft couplings are resolved once at construction; Evaluate
// never re-inspects element kinds by string.
type Surrogate struct {
	reg    *registry.Registry
	graph  *resolve.Graph
	design bool
	cond   Conditions
	refs   *DesignRefs

	fc     *registry.Entry
	groups map[*registry.Entry]registry.SpeedGroup
	shafts map[*registry.Entry]*registry.Entry // turbomachinery -> shaft
}

// NewSurrogate builds a surrogate for the resolved graph. refs must be nil
// for a design point and non-nil for off-design.
func NewSurrogate(reg *registry.Registry, graph *resolve.Graph, design bool, cond Conditions, refs *DesignRefs) (*Surrogate, error) {
	if !design && refs == nil {
		return nil, fmt.Errorf("off-design surrogate requires design references")
	}
	s := &Surrogate{
		reg:    reg,
		graph:  graph,
		design: design,
		cond:   cond,
		refs:   refs,
		groups: make(map[*registry.Entry]registry.SpeedGroup),
		shafts: make(map[*registry.Entry]*registry.Entry),
	}

	fcs := reg.OfKind(registry.KindFlightConditions)
	if len(fcs) != 1 {
		return nil, &registry.ConfigurationError{Element: "cycle", Field: "flight_conditions", Value: fmt.Sprint(len(fcs))}
	}
	s.fc = fcs[0]

	for _, kind := range []registry.Kind{registry.KindCompressor, registry.KindTurbine} {
		for _, e := range reg.OfKind(kind) {
			group, err := reg.ResolveMapGroup(e)
			if err != nil {
				return nil, err
			}
			s.groups[e] = group
			if shaft, ok := graph.ShaftOf(e); ok {
				s.shafts[e] = shaft
			}
		}
	}
	return s, nil
}

// station is the working-fluid state between elements.
type station struct {
	W   float64 // lbm/s
	Tt  float64 // degR
	Pt  float64 // psia
	hot bool    // downstream of the combustor
}

// run accumulates the cycle-level quantities over one graph walk.
type run struct {
	state    map[string]float64
	theta    float64
	ps       float64 // ambient static back-pressure
	v0       float64
	inletPt  float64 // Pt at inlet exit, for OPR
	burnerPt float64 // Pt at combustor entry, for OPR
	wInlet   float64
	wFuel    float64
	grossFg  float64
	pwrIn    map[string]float64
	pwrOut   map[string]float64
	out      map[string]float64
}

// Evaluate implements Evaluator. It performs one pass over the flow graph
// for the given state vector.
func (s *Surrogate) Evaluate(_ context.Context, state map[string]float64) (map[string]float64, error) {
	tt, pt, v0 := ram(s.cond)
	_, ps := ambient(s.cond.Alt, s.cond.DTs)

	w, ok := state[balance.VarW]
	if !ok {
		return nil, fmt.Errorf("state vector missing %q", balance.VarW)
	}

	r := &run{
		state:  state,
		theta:  tt / seaLevelTemp,
		ps:     ps,
		v0:     v0,
		wInlet: w,
		pwrIn:  make(map[string]float64),
		pwrOut: make(map[string]float64),
		out:    make(map[string]float64),
	}

	if err := s.walk(r, s.fc, station{W: w, Tt: tt, Pt: pt}); err != nil {
		return nil, err
	}

	for _, shaft := range s.reg.OfKind(registry.KindShaft) {
		r.out[balance.PowerInKey(shaft.Name)] = r.pwrIn[shaft.Name]
		r.out[balance.PowerOutKey(shaft.Name)] = r.pwrOut[shaft.Name]
	}

	fn := r.grossFg - r.wInlet*r.v0/gc
	r.out[balance.KeyNetThrust] = fn
	r.out[balance.KeyFuelFlow] = r.wFuel
	if r.inletPt > 0 {
		r.out[balance.KeyOPR] = r.burnerPt / r.inletPt
	}
	if fn > 0 {
		r.out[balance.KeyTSFC] = 3600 * r.wFuel / fn
	}
	return r.out, nil
}

// walk applies one element's transform and recurses along its outgoing flow
// edges. Splitters branch; every other element has at most one outlet.
func (s *Surrogate) walk(r *run, e *registry.Entry, st station) error {
	switch spec := e.Spec.(type) {
	case *config.FlightConditionsSpec:
		// Freestream conditions were set before the walk.

	case *config.InletSpec:
		recovery := 0.999
		if spec.RamRecovery != nil {
			recovery = *spec.RamRecovery
		}
		st.Pt *= recovery
		r.inletPt = st.Pt

	case *config.CompressorSpec:
		pr := spec.PRDes
		if !s.design {
			ratio := s.speedRatio(r, s.groups[e])
			pr = 1 + (spec.PRDes-1)*math.Pow(ratio, compSpeedExp)
		}
		ttOut := st.Tt * (1 + (math.Pow(pr, (gammaCold-1)/gammaCold)-1)/spec.EffDes)
		power := st.W * cpCold * (ttOut - st.Tt) * btuToHP
		if shaft, ok := s.shafts[e]; ok {
			r.pwrOut[shaft.Name] -= power
		}
		st.Tt = ttOut
		st.Pt *= pr

	case *config.SplitterSpec:
		bpr := spec.BPR
		if !s.design {
			if v, ok := r.state[balance.VarBPR]; ok {
				bpr = v
			}
		}
		edges := s.graph.From(e)
		if len(edges) != 2 {
			return fmt.Errorf("splitter %q must feed exactly two streams, has %d", e.Name, len(edges))
		}
		core, byp := st, st
		core.W = st.W / (1 + bpr)
		byp.W = st.W - core.W
		if err := s.walk(r, edges[0].Dst, core); err != nil {
			return err
		}
		return s.walk(r, edges[1].Dst, byp)

	case *config.DuctSpec:
		st.Pt *= 1 - spec.DPqP

	case *config.CombustorSpec:
		far, ok := r.state[balance.VarFAR]
		if !ok {
			return fmt.Errorf("state vector missing %q", balance.VarFAR)
		}
		r.burnerPt = st.Pt
		r.wFuel += far * st.W
		st.Tt += far * fuelHeat
		st.Pt *= 1 - spec.DPqP
		st.W *= 1 + far
		st.hot = true
		r.out[balance.ExitTempKey(e.Name)] = st.Tt

	case *config.TurbineSpec:
		group := s.groups[e]
		var pr float64
		if s.design {
			name := balance.VarLptPR
			if group == registry.GroupHP {
				name = balance.VarHptPR
			}
			var ok bool
			if pr, ok = r.state[name]; !ok {
				return fmt.Errorf("state vector missing %q", name)
			}
		} else {
			ref := s.refs.LptPR
			if group == registry.GroupHP {
				ref = s.refs.HptPR
			}
			ratio := s.speedRatio(r, group)
			pr = 1 + (ref-1)*math.Pow(ratio, turbSpeedExp)
		}
		drop := st.Tt * spec.EffDes * (1 - math.Pow(pr, -(gammaHot-1)/gammaHot))
		power := st.W * cpHot * drop * btuToHP
		if shaft, ok := s.shafts[e]; ok {
			r.pwrIn[shaft.Name] += power
		}
		st.Tt -= drop
		st.Pt /= pr

	case *config.NozzleSpec:
		gamma, cp := gammaCold, cpCold
		if st.hot {
			gamma, cp = gammaHot, cpHot
		}
		r.out[balance.ThroatAreaKey(e.Name)] = st.W * math.Sqrt(st.Tt) / (flowConst * st.Pt)
		npr := st.Pt / r.ps
		if npr < 1 {
			npr = 1
		}
		loss := spec.LossCoef
		if loss == 0 {
			loss = 1
		}
		ve := loss * math.Sqrt(2*gc*joule*cp*st.Tt*(1-math.Pow(npr, -(gamma-1)/gamma)))
		r.grossFg += st.W * ve / gc
		return nil // nozzles terminate the stream

	case *config.BleedSpec:
		// Inline bleed sinks pass the primary stream through; the surrogate
		// diverts no mass.

	case *config.ShaftSpec:
		return fmt.Errorf("shaft %q cannot appear in the flow path", e.Name)

	default:
		return &registry.CapabilityMismatchError{Element: e.Name, Kind: e.Kind, Payload: fmt.Sprintf("%T", e.Spec)}
	}

	for _, edge := range s.graph.From(e) {
		if err := s.walk(r, edge.Dst, st); err != nil {
			return err
		}
	}
	return nil
}

// speedRatio is the corrected-speed ratio of a spool against its design
// reference.
func (s *Surrogate) speedRatio(r *run, group registry.SpeedGroup) float64 {
	name, ref := balance.VarLpNmech, s.refs.LpNmech
	if group == registry.GroupHP {
		name, ref = balance.VarHpNmech, s.refs.HpNmech
	}
	n, ok := r.state[name]
	if !ok {
		return 1
	}
	return (n / ref) * math.Sqrt(s.refs.Theta/r.theta)
}
