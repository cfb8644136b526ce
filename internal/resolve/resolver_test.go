package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/turbocycle/internal/config"
	"github.com/vk/turbocycle/internal/registry"
)

func buildRegistry(t *testing.T, elements []*config.Element) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for _, el := range elements {
		_, err := reg.Register(el)
		require.NoError(t, err)
	}
	return reg
}

// linearChain is the minimal inlet -> compressor -> nozzle engine, with one
// shaft and a turbine to drive the compressor omitted on purpose: flow
// resolution does not require a power balance.
func linearChain() []*config.Element {
	return []*config.Element{
		{Kind: "flight_conditions", Name: "fc", Spec: &config.FlightConditionsSpec{MN: 0.5, Alt: 10000}},
		{Kind: "inlet", Name: "inlet", Spec: &config.InletSpec{}},
		{Kind: "compressor", Name: "fan", Spec: &config.CompressorSpec{Map: "FanMap", PRDes: 1.685, EffDes: 0.89}},
		{Kind: "nozzle", Name: "nozz", Spec: &config.NozzleSpec{NozzType: "CV"}},
	}
}

func TestResolve_LinearChain(t *testing.T) {
	reg := buildRegistry(t, linearChain())
	model := &config.Model{
		Flows: []*config.FlowConnection{
			{From: "fc", To: "inlet"},
			{From: "inlet", To: "fan"},
			{From: "fan", To: "nozz"},
		},
	}

	graph, err := Resolve(context.Background(), reg, model)
	require.NoError(t, err)
	require.Len(t, graph.Edges, 3)

	inlet, _ := reg.Lookup("inlet")
	fan, _ := reg.Lookup("fan")
	nozz, _ := reg.Lookup("nozz")

	from := graph.From(inlet)
	require.Len(t, from, 1)
	assert.Same(t, fan, from[0].Dst)

	into, ok := graph.Into(nozz)
	require.True(t, ok)
	assert.Same(t, fan, into.Src)

	// Every nozzle is coupled back to the single flight-conditions element.
	require.Len(t, graph.Ambient, 1)
	assert.Same(t, nozz, graph.Ambient[0].Nozzle)
	assert.Equal(t, "fc", graph.Ambient[0].FlightConditions.Name)
}

func TestResolve_Deterministic(t *testing.T) {
	reg := buildRegistry(t, linearChain())
	model := &config.Model{
		Flows: []*config.FlowConnection{
			{From: "fc", To: "inlet"},
			{From: "inlet", To: "fan"},
			{From: "fan", To: "nozz"},
		},
	}

	first, err := Resolve(context.Background(), reg, model)
	require.NoError(t, err)
	second, err := Resolve(context.Background(), reg, model)
	require.NoError(t, err)

	require.Equal(t, len(first.Edges), len(second.Edges))
	for i := range first.Edges {
		assert.Equal(t, first.Edges[i].Src.Name, second.Edges[i].Src.Name)
		assert.Equal(t, first.Edges[i].Dst.Name, second.Edges[i].Dst.Name)
		assert.Equal(t, first.Edges[i].Outlet, second.Edges[i].Outlet)
	}
}

func TestResolve_UnknownEndpoint(t *testing.T) {
	reg := buildRegistry(t, linearChain())
	model := &config.Model{
		Flows: []*config.FlowConnection{
			{From: "fc", To: "inlet"},
			{From: "inlet", To: "booster"},
		},
	}

	_, err := Resolve(context.Background(), reg, model)
	var unresolved *UnresolvedConnectionError
	require.ErrorAs(t, err, &unresolved)
	assert.Equal(t, "booster", unresolved.Name)
}

func TestResolve_DoubleFedInlet(t *testing.T) {
	reg := buildRegistry(t, linearChain())
	model := &config.Model{
		Flows: []*config.FlowConnection{
			{From: "fc", To: "inlet"},
			{From: "inlet", To: "nozz"},
			{From: "fan", To: "nozz"},
		},
	}

	_, err := Resolve(context.Background(), reg, model)
	var dup *DuplicateConnectionError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "nozz", dup.To)
}

func TestResolve_FlowIntoFlightConditions(t *testing.T) {
	// Closing the flow chain back onto the flight-conditions element would
	// turn the station walk into a loop; it has to be rejected here.
	reg := buildRegistry(t, linearChain())
	model := &config.Model{
		Flows: []*config.FlowConnection{
			{From: "fc", To: "inlet"},
			{From: "inlet", To: "fc"},
		},
	}

	_, err := Resolve(context.Background(), reg, model)
	var mismatch *registry.CapabilityMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "fc", mismatch.Element)
	assert.Equal(t, registry.KindFlightConditions, mismatch.Kind)
}

func TestResolve_BleedPairing(t *testing.T) {
	reg := buildRegistry(t, []*config.Element{
		{Kind: "flight_conditions", Name: "fc", Spec: &config.FlightConditionsSpec{}},
		{Kind: "compressor", Name: "hpc", Spec: &config.CompressorSpec{Map: "HPCMap", PRDes: 9, EffDes: 0.87,
			Bleeds: []string{"cool1", "cool2"}}},
		{Kind: "turbine", Name: "lpt", Spec: &config.TurbineSpec{Map: "LPTMap", EffDes: 0.9,
			Bleeds: []string{"cool1", "cool2"}}},
	})

	graph, err := Resolve(context.Background(), reg, &config.Model{})
	require.NoError(t, err)
	require.Len(t, graph.Bleeds, 2)

	// First-declared name order, compressor producing, turbine consuming.
	assert.Equal(t, "cool1", graph.Bleeds[0].Name)
	assert.Equal(t, "cool2", graph.Bleeds[1].Name)
	for _, link := range graph.Bleeds {
		assert.Equal(t, "hpc", link.Producer.Name)
		assert.Equal(t, "lpt", link.Consumer.Name)
	}
}

func TestResolve_BleedIntoSink(t *testing.T) {
	// A turbine paired with a bleed sink takes the producer role.
	reg := buildRegistry(t, []*config.Element{
		{Kind: "flight_conditions", Name: "fc", Spec: &config.FlightConditionsSpec{}},
		{Kind: "turbine", Name: "hpt", Spec: &config.TurbineSpec{Map: "HPTMap", EffDes: 0.89,
			Bleeds: []string{"cool3"}}},
		{Kind: "bleed", Name: "bld3", Spec: &config.BleedSpec{Bleeds: []string{"cool3"}}},
	})

	graph, err := Resolve(context.Background(), reg, &config.Model{})
	require.NoError(t, err)
	require.Len(t, graph.Bleeds, 1)
	assert.Equal(t, "hpt", graph.Bleeds[0].Producer.Name)
	assert.Equal(t, "bld3", graph.Bleeds[0].Consumer.Name)
}

func TestResolve_AmbiguousBleed_TwoProducers(t *testing.T) {
	// Two compressors sharing a bleed name have no resolvable consumer.
	// Declaration order must not break the tie.
	reg := buildRegistry(t, []*config.Element{
		{Kind: "flight_conditions", Name: "fc", Spec: &config.FlightConditionsSpec{}},
		{Kind: "compressor", Name: "lpc", Spec: &config.CompressorSpec{Map: "LPCMap", PRDes: 2, EffDes: 0.92,
			Bleeds: []string{"shared"}}},
		{Kind: "compressor", Name: "hpc", Spec: &config.CompressorSpec{Map: "HPCMap", PRDes: 9, EffDes: 0.87,
			Bleeds: []string{"shared"}}},
	})

	_, err := Resolve(context.Background(), reg, &config.Model{})
	var ambiguous *AmbiguousBleedError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, "shared", ambiguous.Bleed)
	assert.Equal(t, 2, ambiguous.Owners)
	assert.Equal(t, 2, ambiguous.Producers)
	assert.Equal(t, 0, ambiguous.Consumers)
}

func TestResolve_AmbiguousBleed_WrongOwnerCount(t *testing.T) {
	reg := buildRegistry(t, []*config.Element{
		{Kind: "flight_conditions", Name: "fc", Spec: &config.FlightConditionsSpec{}},
		{Kind: "compressor", Name: "hpc", Spec: &config.CompressorSpec{Map: "HPCMap", PRDes: 9, EffDes: 0.87,
			Bleeds: []string{"cool1"}}},
	})

	_, err := Resolve(context.Background(), reg, &config.Model{})
	var ambiguous *AmbiguousBleedError
	require.ErrorAs(t, err, &ambiguous)
	assert.Equal(t, 1, ambiguous.Owners)
}

func shaftElements() []*config.Element {
	return []*config.Element{
		{Kind: "flight_conditions", Name: "fc", Spec: &config.FlightConditionsSpec{}},
		{Kind: "compressor", Name: "fan", Spec: &config.CompressorSpec{Map: "FanMap", PRDes: 1.7, EffDes: 0.89}},
		{Kind: "compressor", Name: "lpc", Spec: &config.CompressorSpec{Map: "LPCMap", PRDes: 1.9, EffDes: 0.92}},
		{Kind: "turbine", Name: "lpt", Spec: &config.TurbineSpec{Map: "LPTMap", EffDes: 0.9}},
		{Kind: "shaft", Name: "lp_shaft", Spec: &config.ShaftSpec{NumPorts: 3, Nmech: 4666, SpeedClass: "LP"}},
		{Kind: "duct", Name: "duct4", Spec: &config.DuctSpec{}},
	}
}

func TestResolve_ShaftPorts(t *testing.T) {
	reg := buildRegistry(t, shaftElements())
	model := &config.Model{
		ShaftPairs: []*config.ShaftPair{
			{Element: "fan", Shaft: "lp_shaft"},
			{Element: "lpc", Shaft: "lp_shaft"},
			{Element: "lpt", Shaft: "lp_shaft"},
		},
	}

	graph, err := Resolve(context.Background(), reg, model)
	require.NoError(t, err)

	shaft, _ := reg.Lookup("lp_shaft")
	ports := graph.PortsOf(shaft)
	require.Len(t, ports, 3)
	for i, expected := range []struct {
		element string
		sign    int
	}{
		{element: "fan", sign: -1},
		{element: "lpc", sign: -1},
		{element: "lpt", sign: +1},
	} {
		assert.Equal(t, i, ports[i].Port)
		assert.Equal(t, expected.element, ports[i].Element.Name)
		assert.Equal(t, expected.sign, ports[i].Sign)
	}

	fan, _ := reg.Lookup("fan")
	got, ok := graph.ShaftOf(fan)
	require.True(t, ok)
	assert.Same(t, shaft, got)
}

func TestResolve_ShaftPortOverflow(t *testing.T) {
	elements := shaftElements()
	elements[4].Spec = &config.ShaftSpec{NumPorts: 2, Nmech: 4666, SpeedClass: "LP"}
	reg := buildRegistry(t, elements)
	model := &config.Model{
		ShaftPairs: []*config.ShaftPair{
			{Element: "fan", Shaft: "lp_shaft"},
			{Element: "lpc", Shaft: "lp_shaft"},
			{Element: "lpt", Shaft: "lp_shaft"},
		},
	}

	_, err := Resolve(context.Background(), reg, model)
	var cfgErr *registry.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "lp_shaft", cfgErr.Element)
	assert.Equal(t, "num_ports", cfgErr.Field)
}

func TestResolve_ShaftPairingNonTurbomachinery(t *testing.T) {
	reg := buildRegistry(t, shaftElements())
	model := &config.Model{
		ShaftPairs: []*config.ShaftPair{
			{Element: "duct4", Shaft: "lp_shaft"},
		},
	}

	_, err := Resolve(context.Background(), reg, model)
	var mismatch *registry.CapabilityMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "duct4", mismatch.Element)
}

func TestResolve_MissingFlightConditions(t *testing.T) {
	reg := buildRegistry(t, []*config.Element{
		{Kind: "inlet", Name: "inlet", Spec: &config.InletSpec{}},
		{Kind: "nozzle", Name: "nozz", Spec: &config.NozzleSpec{NozzType: "CV"}},
	})

	_, err := Resolve(context.Background(), reg, &config.Model{
		Flows: []*config.FlowConnection{{From: "inlet", To: "nozz"}},
	})
	var cfgErr *registry.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "flight_conditions", cfgErr.Field)
}

func TestGraph_From_OutletOrder(t *testing.T) {
	reg := buildRegistry(t, []*config.Element{
		{Kind: "flight_conditions", Name: "fc", Spec: &config.FlightConditionsSpec{}},
		{Kind: "splitter", Name: "splitter", Spec: &config.SplitterSpec{BPR: 5}},
		{Kind: "duct", Name: "core_duct", Spec: &config.DuctSpec{}},
		{Kind: "duct", Name: "byp_duct", Spec: &config.DuctSpec{}},
	})
	// Declare the bypass edge first; From must still return the lower
	// outlet first.
	model := &config.Model{
		Flows: []*config.FlowConnection{
			{From: "splitter", To: "byp_duct", Outlet: 2},
			{From: "splitter", To: "core_duct", Outlet: 1},
		},
	}

	graph, err := Resolve(context.Background(), reg, model)
	require.NoError(t, err)

	splitter, _ := reg.Lookup("splitter")
	from := graph.From(splitter)
	require.Len(t, from, 2)
	assert.Equal(t, "core_duct", from[0].Dst.Name)
	assert.Equal(t, "byp_duct", from[1].Dst.Name)
}
