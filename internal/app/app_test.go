package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/turbocycle/internal/hcl_adapter"
	"github.com/vk/turbocycle/internal/testutil"
)

const cruiseEngine = `
cycle {
  name          = "HBTF"
  design_thrust = 5900
  t4_max        = 2857
}

element "flight_conditions" "fc" {
  mn  = 0.8
  alt = 35000
}

element "inlet" "inlet" {
  ram_recovery = 0.999
}

element "compressor" "fan" {
  map     = "FanMap"
  pr_des  = 1.685
  eff_des = 0.8948
}

element "splitter" "splitter" {
  bpr = 5.105
}

element "duct" "duct4" {
  dpqp = 0.0048
}

element "compressor" "lpc" {
  map     = "LPCMap"
  pr_des  = 1.935
  eff_des = 0.9243
}

element "duct" "duct6" {
  dpqp = 0.0101
}

element "compressor" "hpc" {
  map     = "HPCMap"
  pr_des  = 9.369
  eff_des = 0.8707
}

element "combustor" "burner" {
  fuel_type = "Jet-A(g)"
  dpqp      = 0.0540
}

element "turbine" "hpt" {
  map     = "HPTMap"
  eff_des = 0.8888
}

element "duct" "duct11" {
  dpqp = 0.0051
}

element "turbine" "lpt" {
  map     = "LPTMap"
  eff_des = 0.8996
}

element "duct" "duct13" {
  dpqp = 0.0107
}

element "nozzle" "core_nozz" {
  nozz_type = "CV"
  loss_coef = 0.9999
}

element "duct" "duct15" {
  dpqp = 0.0149
}

element "nozzle" "byp_nozz" {
  nozz_type = "CV"
  loss_coef = 0.9975
}

element "shaft" "lp_shaft" {
  num_ports   = 3
  nmech       = 4666.1
  speed_class = "LP"
}

element "shaft" "hp_shaft" {
  num_ports   = 2
  nmech       = 14705.7
  speed_class = "HP"
}

flow {
  from = "fc"
  to   = "inlet"
}

flow {
  from = "inlet"
  to   = "fan"
}

flow {
  from = "fan"
  to   = "splitter"
}

flow {
  from   = "splitter"
  to     = "duct4"
  outlet = 1
}

flow {
  from   = "splitter"
  to     = "duct15"
  outlet = 2
}

flow {
  from = "duct4"
  to   = "lpc"
}

flow {
  from = "lpc"
  to   = "duct6"
}

flow {
  from = "duct6"
  to   = "hpc"
}

flow {
  from = "hpc"
  to   = "burner"
}

flow {
  from = "burner"
  to   = "hpt"
}

flow {
  from = "hpt"
  to   = "duct11"
}

flow {
  from = "duct11"
  to   = "lpt"
}

flow {
  from = "lpt"
  to   = "duct13"
}

flow {
  from = "duct13"
  to   = "core_nozz"
}

flow {
  from = "duct15"
  to   = "byp_nozz"
}

shaft_pair {
  element = "fan"
  shaft   = "lp_shaft"
}

shaft_pair {
  element = "lpc"
  shaft   = "lp_shaft"
}

shaft_pair {
  element = "lpt"
  shaft   = "lp_shaft"
}

shaft_pair {
  element = "hpc"
  shaft   = "hp_shaft"
}

shaft_pair {
  element = "hpt"
  shaft   = "hp_shaft"
}

sweep {
  power_codes = [1]

  condition {
    mn  = 0.8
    alt = 35000
  }
}
`

func TestApp_Run(t *testing.T) {
	dir := testutil.WriteHCLFiles(t, map[string]string{"engine.hcl": cruiseEngine})
	out := &testutil.SafeBuffer{}

	cfg, err := NewConfig(Config{
		EnginePath: dir,
		LogFormat:  "text",
		LogLevel:   "warn",
		Workers:    2,
	})
	require.NoError(t, err)

	a := NewApp(out, cfg, hcl_adapter.NewLoader())
	require.NoError(t, a.Run(context.Background(), cfg))

	output := out.String()
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "design: Fn=5900.0")
	assert.Contains(t, output, "OD_MN0.8_alt35000_PC1")
	assert.NotContains(t, output, "FAILED")
}

func TestApp_Run_LoadFailurePanics(t *testing.T) {
	dir := testutil.WriteHCLFiles(t, map[string]string{"engine.hcl": "cycle {"})
	out := &testutil.SafeBuffer{}
	cfg, err := NewConfig(Config{EnginePath: dir, LogLevel: "error"})
	require.NoError(t, err)

	assert.Panics(t, func() {
		NewApp(out, cfg, hcl_adapter.NewLoader())
	})
}

func TestNewConfig_RequiresEnginePath(t *testing.T) {
	_, err := NewConfig(Config{})
	require.Error(t, err)
}
