package resolve

import (
	"context"
	"strconv"

	"github.com/vk/turbocycle/internal/config"
	"github.com/vk/turbocycle/internal/ctxlog"
	"github.com/vk/turbocycle/internal/registry"
)

// Resolve builds the complete computational graph for one cycle point in
// four passes: flow edges, bleed pairings, shaft ports, ambient couplings.
// All resolution errors are raised here, at build time, carrying the
// offending element, connection, or bleed name.
func Resolve(ctx context.Context, reg *registry.Registry, model *config.Model) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	graph := &Graph{}

	if err := buildFlowGraph(graph, reg, model.Flows); err != nil {
		return nil, err
	}
	logger.Debug("Resolve: flow graph built.", "edges", len(graph.Edges))

	if err := resolveBleeds(graph, reg); err != nil {
		return nil, err
	}
	logger.Debug("Resolve: bleed pairings resolved.", "bleeds", len(graph.Bleeds))

	if err := resolveShafts(graph, reg, model.ShaftPairs); err != nil {
		return nil, err
	}
	logger.Debug("Resolve: shaft ports assigned.", "ports", len(graph.ShaftPorts))

	if err := resolveAmbientCoupling(graph, reg); err != nil {
		return nil, err
	}
	logger.Debug("Resolve: ambient couplings bound.", "nozzles", len(graph.Ambient))

	return graph, nil
}

// buildFlowGraph creates one directed edge per declared connection. A
// destination inlet may be fed at most once, and the flight-conditions
// element sources every stream, so feeding it would close a flow loop.
func buildFlowGraph(g *Graph, reg *registry.Registry, flows []*config.FlowConnection) error {
	fed := make(map[string]bool)
	for _, fc := range flows {
		src, ok := reg.Lookup(fc.From)
		if !ok {
			return &UnresolvedConnectionError{Name: fc.From, Ref: "flow " + fc.From + " -> " + fc.To}
		}
		dst, ok := reg.Lookup(fc.To)
		if !ok {
			return &UnresolvedConnectionError{Name: fc.To, Ref: "flow " + fc.From + " -> " + fc.To}
		}
		if dst.Kind == registry.KindFlightConditions {
			return &registry.CapabilityMismatchError{Element: dst.Name, Kind: dst.Kind, Payload: "flow destination"}
		}
		if fed[dst.Name] {
			return &DuplicateConnectionError{To: dst.Name}
		}
		fed[dst.Name] = true
		g.Edges = append(g.Edges, FlowEdge{Src: src, Dst: dst, Outlet: fc.Outlet})
	}
	return nil
}

// assignBleedRoles applies the canonical bleed direction of each owner
// kind. The policy is strict: compressors always produce, bleed sinks
// always consume, turbines produce unless paired with a compressor.
func assignBleedRoles(a, b *registry.Entry) (producer, consumer *registry.Entry, ok bool) {
	switch {
	case a.Kind == registry.KindCompressor && b.Kind != registry.KindCompressor:
		return a, b, true
	case b.Kind == registry.KindCompressor && a.Kind != registry.KindCompressor:
		return b, a, true
	case a.Kind == registry.KindTurbine && b.Kind == registry.KindBleed:
		return a, b, true
	case b.Kind == registry.KindTurbine && a.Kind == registry.KindBleed:
		return b, a, true
	default:
		// compressor+compressor, turbine+turbine, bleed+bleed: no
		// producer/consumer assignment exists. Declaration order never
		// breaks the tie.
		return nil, nil, false
	}
}

// bleedRoleCounts reports how many of the two owners could take each role,
// for error messages.
func bleedRoleCounts(owners []*registry.Entry) (producers, consumers int) {
	for _, o := range owners {
		switch o.Kind {
		case registry.KindCompressor:
			producers++
		case registry.KindTurbine:
			producers++
			consumers++
		case registry.KindBleed:
			consumers++
		}
	}
	return producers, consumers
}

// resolveBleeds collects every bleed-port name declared across compressor,
// turbine, and bleed elements, and pairs each name's exactly-two owners into
// a producer and a consumer.
func resolveBleeds(g *Graph, reg *registry.Registry) error {
	var names []string
	owners := make(map[string][]*registry.Entry)

	collect := func(e *registry.Entry, declared []string) {
		for _, n := range declared {
			if _, seen := owners[n]; !seen {
				names = append(names, n)
			}
			owners[n] = append(owners[n], e)
		}
	}
	for _, e := range reg.Elements() {
		switch spec := e.Spec.(type) {
		case *config.CompressorSpec:
			collect(e, spec.Bleeds)
		case *config.TurbineSpec:
			collect(e, spec.Bleeds)
		case *config.BleedSpec:
			collect(e, spec.Bleeds)
		}
	}

	for _, name := range names {
		own := owners[name]
		if len(own) != 2 {
			producers, consumers := bleedRoleCounts(own)
			return &AmbiguousBleedError{Bleed: name, Owners: len(own), Producers: producers, Consumers: consumers}
		}
		producer, consumer, ok := assignBleedRoles(own[0], own[1])
		if !ok {
			producers, consumers := bleedRoleCounts(own)
			// Report the unresolved role as zero: two compressors sharing a
			// name have two producer candidates and no consumer.
			if producers == 2 && consumers == 0 {
				return &AmbiguousBleedError{Bleed: name, Owners: 2, Producers: 2, Consumers: 0}
			}
			if consumers == 2 && producers == 0 {
				return &AmbiguousBleedError{Bleed: name, Owners: 2, Producers: 0, Consumers: 2}
			}
			return &AmbiguousBleedError{Bleed: name, Owners: 2, Producers: producers, Consumers: consumers}
		}
		g.Bleeds = append(g.Bleeds, BleedLink{Name: name, Producer: producer, Consumer: consumer})
	}
	return nil
}

// resolveShafts assigns each globally paired turbomachinery element the next
// free port on its shaft, ports numbered in first-declared order, and records
// the signed power contribution.
func resolveShafts(g *Graph, reg *registry.Registry, pairs []*config.ShaftPair) error {
	nextPort := make(map[string]int)
	for _, pair := range pairs {
		element, ok := reg.Lookup(pair.Element)
		if !ok {
			return &UnresolvedConnectionError{Name: pair.Element, Ref: "shaft pairing " + pair.Element + " -> " + pair.Shaft}
		}
		shaft, ok := reg.Lookup(pair.Shaft)
		if !ok {
			return &UnresolvedConnectionError{Name: pair.Shaft, Ref: "shaft pairing " + pair.Element + " -> " + pair.Shaft}
		}
		if shaft.Kind != registry.KindShaft {
			return &registry.CapabilityMismatchError{Element: shaft.Name, Kind: shaft.Kind, Payload: "shaft pairing target"}
		}

		var sign int
		switch element.Kind {
		case registry.KindCompressor:
			sign = -1
		case registry.KindTurbine:
			sign = +1
		default:
			return &registry.CapabilityMismatchError{Element: element.Name, Kind: element.Kind, Payload: "shaft pairing"}
		}

		port := nextPort[shaft.Name]
		nextPort[shaft.Name] = port + 1
		if spec := shaft.Spec.(*config.ShaftSpec); spec.NumPorts > 0 && port >= spec.NumPorts {
			return &registry.ConfigurationError{Element: shaft.Name, Field: "num_ports", Value: strconv.Itoa(spec.NumPorts)}
		}
		g.ShaftPorts = append(g.ShaftPorts, ShaftPort{Shaft: shaft, Element: element, Port: port, Sign: sign})
	}
	return nil
}

// resolveAmbientCoupling binds every nozzle's exhaust back-pressure to the
// single flight-conditions element of the point.
func resolveAmbientCoupling(g *Graph, reg *registry.Registry) error {
	fcs := reg.OfKind(registry.KindFlightConditions)
	if len(fcs) != 1 {
		return &registry.ConfigurationError{Element: "cycle", Field: "flight_conditions", Value: strconv.Itoa(len(fcs))}
	}
	for _, nozz := range reg.OfKind(registry.KindNozzle) {
		g.Ambient = append(g.Ambient, AmbientLink{Nozzle: nozz, FlightConditions: fcs[0]})
	}
	return nil
}
