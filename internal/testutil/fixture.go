package testutil

import "github.com/vk/turbocycle/internal/config"

func fp(v float64) *float64 { return &v }

// TwoSpoolTurbofan builds the canonical high-bypass two-spool engine model:
// fan and low-pressure compressor on the LP spool, high-pressure compressor
// on the HP spool, separate core and bypass nozzles, and cooling bleeds
// from the compressors into the turbines.
func TwoSpoolTurbofan() *config.Model {
	el := func(kind, name string, spec any) *config.Element {
		return &config.Element{Kind: kind, Name: name, Spec: spec}
	}
	flow := func(from, to string, outlet int) *config.FlowConnection {
		return &config.FlowConnection{From: from, To: to, Outlet: outlet}
	}
	pair := func(element, shaft string) *config.ShaftPair {
		return &config.ShaftPair{Element: element, Shaft: shaft}
	}

	return &config.Model{
		Cycle: &config.Cycle{
			Name:         "HBTF",
			ThermoMethod: "CEA",
			ThrottleMode: "T4",
			FuelType:     "Jet-A(g)",
			DesignThrust: 5900,
			T4Max:        2857,
		},
		Elements: []*config.Element{
			el("flight_conditions", "fc", &config.FlightConditionsSpec{MN: 0.8, Alt: 35000}),
			el("inlet", "inlet", &config.InletSpec{RamRecovery: fp(0.999)}),
			el("compressor", "fan", &config.CompressorSpec{Map: "FanMap", PRDes: 1.685, EffDes: 0.8948}),
			el("splitter", "splitter", &config.SplitterSpec{BPR: 5.105}),
			el("duct", "duct4", &config.DuctSpec{DPqP: 0.0048}),
			el("compressor", "lpc", &config.CompressorSpec{Map: "LPCMap", PRDes: 1.935, EffDes: 0.9243}),
			el("duct", "duct6", &config.DuctSpec{DPqP: 0.0101}),
			el("compressor", "hpc", &config.CompressorSpec{Map: "HPCMap", PRDes: 9.369, EffDes: 0.8707,
				Bleeds: []string{"cool1", "cool2"}}),
			el("bleed", "bld3", &config.BleedSpec{Bleeds: []string{"cool3", "cool4"}}),
			el("combustor", "burner", &config.CombustorSpec{FuelType: "Jet-A(g)", DPqP: 0.0540}),
			el("turbine", "hpt", &config.TurbineSpec{Map: "HPTMap", EffDes: 0.8888,
				Bleeds: []string{"cool3", "cool4"}}),
			el("duct", "duct11", &config.DuctSpec{DPqP: 0.0051}),
			el("turbine", "lpt", &config.TurbineSpec{Map: "LPTMap", EffDes: 0.8996,
				Bleeds: []string{"cool1", "cool2"}}),
			el("duct", "duct13", &config.DuctSpec{DPqP: 0.0107}),
			el("nozzle", "core_nozz", &config.NozzleSpec{NozzType: "CV", LossCoef: 0.9999}),
			el("duct", "duct15", &config.DuctSpec{DPqP: 0.0149}),
			el("nozzle", "byp_nozz", &config.NozzleSpec{NozzType: "CV", LossCoef: 0.9975}),
			el("shaft", "lp_shaft", &config.ShaftSpec{NumPorts: 3, Nmech: 4666.1, SpeedClass: "LP"}),
			el("shaft", "hp_shaft", &config.ShaftSpec{NumPorts: 2, Nmech: 14705.7, SpeedClass: "HP"}),
		},
		Flows: []*config.FlowConnection{
			flow("fc", "inlet", 0),
			flow("inlet", "fan", 0),
			flow("fan", "splitter", 0),
			flow("splitter", "duct4", 1),
			flow("splitter", "duct15", 2),
			flow("duct4", "lpc", 0),
			flow("lpc", "duct6", 0),
			flow("duct6", "hpc", 0),
			flow("hpc", "bld3", 0),
			flow("bld3", "burner", 0),
			flow("burner", "hpt", 0),
			flow("hpt", "duct11", 0),
			flow("duct11", "lpt", 0),
			flow("lpt", "duct13", 0),
			flow("duct13", "core_nozz", 0),
			flow("duct15", "byp_nozz", 0),
		},
		ShaftPairs: []*config.ShaftPair{
			pair("fan", "lp_shaft"),
			pair("lpc", "lp_shaft"),
			pair("lpt", "lp_shaft"),
			pair("hpc", "hp_shaft"),
			pair("hpt", "hp_shaft"),
		},
		Sweep: &config.Sweep{
			Conditions: []*config.FlightPoint{
				{MN: 0.8, Alt: 35000},
				{MN: 0.7, Alt: 35000},
				{MN: 0.5, Alt: 25000},
				{MN: 0.3, Alt: 10000},
				{MN: 0.2, Alt: 5000},
				{MN: 0.0, Alt: 0},
				{MN: 0.25, Alt: 0},
				{MN: 0.4, Alt: 1000},
			},
			PowerCodes: []float64{1, 0.95, 0.9, 0.85},
		},
	}
}
