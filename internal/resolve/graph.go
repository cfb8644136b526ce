package resolve

import "github.com/vk/turbocycle/internal/registry"

// FlowEdge is one directed primary-flow edge. Outlet 0 is the source's
// primary outlet; splitters feed their bypass stream from outlet 2.
type FlowEdge struct {
	Src    *registry.Entry
	Dst    *registry.Entry
	Outlet int
}

// BleedLink is one resolved secondary-air pairing: the producer diverts flow
// under the shared name, the consumer receives it.
type BleedLink struct {
	Name     string
	Producer *registry.Entry
	Consumer *registry.Entry
}

// ShaftPort records a turbomachinery element coupled to a shaft port. Sign
// is +1 for power producers (turbines) and -1 for consumers (compressors).
type ShaftPort struct {
	Shaft   *registry.Entry
	Element *registry.Entry
	Port    int
	Sign    int
}

// AmbientLink binds a nozzle's exhaust back-pressure to the point's flight
// conditions.
type AmbientLink struct {
	Nozzle           *registry.Entry
	FlightConditions *registry.Entry
}

// Graph is the fully resolved computational graph for one cycle point. The
// underlying flow topology may contain cycles through shaft speeds and
// back-pressure; edge order is only a single-relaxation ordering hint.
type Graph struct {
	Edges      []FlowEdge
	Bleeds     []BleedLink
	ShaftPorts []ShaftPort
	Ambient    []AmbientLink
}

// From returns the outgoing flow edges of src in outlet order.
func (g *Graph) From(src *registry.Entry) []FlowEdge {
	var out []FlowEdge
	for _, e := range g.Edges {
		if e.Src == src {
			out = append(out, e)
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Outlet < out[j-1].Outlet; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// Into returns the flow edge feeding dst, if any.
func (g *Graph) Into(dst *registry.Entry) (FlowEdge, bool) {
	for _, e := range g.Edges {
		if e.Dst == dst {
			return e, true
		}
	}
	return FlowEdge{}, false
}

// PortsOf returns the shaft ports bound to the given shaft in port order.
func (g *Graph) PortsOf(shaft *registry.Entry) []ShaftPort {
	var out []ShaftPort
	for _, p := range g.ShaftPorts {
		if p.Shaft == shaft {
			out = append(out, p)
		}
	}
	return out
}

// ShaftOf returns the shaft a turbomachinery element is coupled to, if any.
func (g *Graph) ShaftOf(element *registry.Entry) (*registry.Entry, bool) {
	for _, p := range g.ShaftPorts {
		if p.Element == element {
			return p.Shaft, true
		}
	}
	return nil, false
}
