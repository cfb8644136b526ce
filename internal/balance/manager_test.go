package balance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hbtfWiring = Wiring{
	Burner:     "burner",
	CoreNozzle: "core_nozz",
	BypNozzle:  "byp_nozz",
	LPShaft:    "lp_shaft",
	HPShaft:    "hp_shaft",
	Splitter:   "splitter",
}

var hbtfTargets = Targets{DesignThrust: 5900, T4: 2857}

func balanceNames(m *Manager) []string {
	var names []string
	for _, b := range m.Balances() {
		names = append(names, b.Name)
	}
	return names
}

func TestInstantiate_DesignSet(t *testing.T) {
	m, err := Instantiate(ModeDesign, hbtfWiring, hbtfTargets)
	require.NoError(t, err)

	assert.Equal(t, []string{VarW, VarFAR, VarLptPR, VarHptPR}, balanceNames(m))

	w, ok := m.Lookup(VarW)
	require.True(t, ok)
	assert.Equal(t, KeyNetThrust, w.Lhs)
	assert.Equal(t, 5900.0, w.RhsVal)

	far, ok := m.Lookup(VarFAR)
	require.True(t, ok)
	assert.Equal(t, "burner.Tt4", far.Lhs)
	assert.Equal(t, 2857.0, far.RhsVal)

	// Turbine pressure ratios pair shaft power against shaft load with the
	// torque-sign multiplier.
	lpt, ok := m.Lookup(VarLptPR)
	require.True(t, ok)
	assert.Equal(t, "lp_shaft.pwr_in", lpt.Lhs)
	assert.Equal(t, "lp_shaft.pwr_out", lpt.Rhs)
	assert.True(t, lpt.UseMult)
	assert.Equal(t, -1.0, lpt.Mult)
}

func TestInstantiate_OffDesignT4Set(t *testing.T) {
	m, err := Instantiate(ModeOffDesignT4, hbtfWiring, hbtfTargets)
	require.NoError(t, err)

	assert.Equal(t, []string{VarFAR, VarW, VarBPR, VarLpNmech, VarHpNmech}, balanceNames(m))

	far, ok := m.Lookup(VarFAR)
	require.True(t, ok)
	assert.Equal(t, "burner.Tt4", far.Lhs)
	assert.Equal(t, 2857.0, far.RhsVal)

	// Flow and bypass ratio hold the design throat areas, bound later from
	// the design snapshot.
	w, _ := m.Lookup(VarW)
	assert.Equal(t, "core_nozz.area", w.Lhs)
	bpr, _ := m.Lookup(VarBPR)
	assert.Equal(t, "byp_nozz.area", bpr.Lhs)
}

func TestInstantiate_OffDesignPercentThrustSet(t *testing.T) {
	m, err := Instantiate(ModeOffDesignPercentThrust, hbtfWiring, hbtfTargets)
	require.NoError(t, err)

	// Same free variables as the temperature policy, but fuel-air ratio
	// drives net thrust instead of combustor exit temperature.
	assert.Equal(t, []string{VarFAR, VarW, VarBPR, VarLpNmech, VarHpNmech}, balanceNames(m))

	far, ok := m.Lookup(VarFAR)
	require.True(t, ok)
	assert.Equal(t, KeyNetThrust, far.Lhs)
	assert.Empty(t, far.Rhs)
}

func TestInstantiate_SingleStreamOmitsBypassRatio(t *testing.T) {
	w := hbtfWiring
	w.BypNozzle = ""
	w.Splitter = ""

	m, err := Instantiate(ModeOffDesignT4, w, hbtfTargets)
	require.NoError(t, err)
	assert.Equal(t, []string{VarFAR, VarW, VarLpNmech, VarHpNmech}, balanceNames(m))
}

func TestManager_Add_Duplicate(t *testing.T) {
	m, err := Instantiate(ModeDesign, hbtfWiring, hbtfTargets)
	require.NoError(t, err)

	err = m.Add(&Balance{Name: VarW, Lhs: KeyNetThrust, RhsVal: 100, OnDesign: true})
	var dup *DuplicateBalanceError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, VarW, dup.Name)
}

func TestManager_Add_ModeFlagMismatch(t *testing.T) {
	m, err := Instantiate(ModeDesign, hbtfWiring, hbtfTargets)
	require.NoError(t, err)

	err = m.Add(&Balance{Name: "custom", Lhs: "duct.Pt", RhsVal: 14.7, OnDesign: false})
	var dup *DuplicateBalanceError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "custom", dup.Name)
}

func TestManager_Variables_Order(t *testing.T) {
	m, err := Instantiate(ModeOffDesignT4, hbtfWiring, hbtfTargets)
	require.NoError(t, err)

	vars := m.Variables()
	require.Len(t, vars, 5)
	assert.Equal(t, VarFAR, vars[0].Name)
	assert.Equal(t, 0.02467, vars[0].Guess)
	assert.Equal(t, VarHpNmech, vars[4].Name)
	assert.Equal(t, 15000.0, vars[4].Guess)
}

func TestManager_Evaluate(t *testing.T) {
	m, err := Instantiate(ModeDesign, hbtfWiring, hbtfTargets)
	require.NoError(t, err)

	outputs := map[string]float64{
		KeyNetThrust:       5950,
		"burner.Tt4":       2857,
		"lp_shaft.pwr_in":  20000,
		"lp_shaft.pwr_out": -20500,
		"hp_shaft.pwr_in":  30000,
		"hp_shaft.pwr_out": -30000,
	}
	res, err := m.Evaluate(outputs)
	require.NoError(t, err)
	require.Len(t, res, 4)

	assert.InDelta(t, 50, res[0], 1e-12)   // thrust excess
	assert.InDelta(t, 0, res[1], 1e-12)    // T4 on target
	assert.InDelta(t, -500, res[2], 1e-12) // LP spool under-driven
	assert.InDelta(t, 0, res[3], 1e-12)    // HP spool balanced
}

func TestManager_Evaluate_MissingOutput(t *testing.T) {
	m, err := Instantiate(ModeDesign, hbtfWiring, hbtfTargets)
	require.NoError(t, err)

	_, err = m.Evaluate(map[string]float64{KeyNetThrust: 5900})
	require.Error(t, err)
	assert.Contains(t, err.Error(), VarFAR)
}

func TestManager_Evaluate_UnboundTarget(t *testing.T) {
	m, err := Instantiate(ModeOffDesignT4, hbtfWiring, hbtfTargets)
	require.NoError(t, err)

	outputs := map[string]float64{
		"burner.Tt4":       2700,
		"core_nozz.area":   350,
		"byp_nozz.area":    1200,
		"lp_shaft.pwr_in":  20000,
		"lp_shaft.pwr_out": -20000,
		"hp_shaft.pwr_in":  30000,
		"hp_shaft.pwr_out": -30000,
	}
	// The throat-area targets have not been bound from a design snapshot.
	_, err = m.Evaluate(outputs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not bound")
}

func TestManager_BindTarget(t *testing.T) {
	m, err := Instantiate(ModeOffDesignT4, hbtfWiring, hbtfTargets)
	require.NoError(t, err)

	require.NoError(t, m.BindTarget(VarW, 352.5))
	require.NoError(t, m.BindTarget(VarBPR, 1201.2))

	t.Run("unknown balance", func(t *testing.T) {
		require.Error(t, m.BindTarget("N1", 1))
	})

	t.Run("output-paired balance rejects fixed target", func(t *testing.T) {
		require.Error(t, m.BindTarget(VarLpNmech, 4666))
	})
}

func TestManager_Evaluate_PercentThrustScaling(t *testing.T) {
	m, err := Instantiate(ModeOffDesignPercentThrust, hbtfWiring, hbtfTargets)
	require.NoError(t, err)

	far, ok := m.Lookup(VarFAR)
	require.True(t, ok)
	far.Mult = 0.5
	far.UseMult = true
	require.NoError(t, m.BindTarget(VarFAR, 6000)) // reference maximum thrust
	require.NoError(t, m.BindTarget(VarW, 352.5))
	require.NoError(t, m.BindTarget(VarBPR, 1201.2))

	outputs := map[string]float64{
		KeyNetThrust:       3000,
		"core_nozz.area":   352.5,
		"byp_nozz.area":    1201.2,
		"lp_shaft.pwr_in":  20000,
		"lp_shaft.pwr_out": -20000,
		"hp_shaft.pwr_in":  30000,
		"hp_shaft.pwr_out": -30000,
	}
	res, err := m.Evaluate(outputs)
	require.NoError(t, err)
	// Fn - 0.5 * FnMax is exactly satisfied.
	assert.InDelta(t, 0, res[0], 1e-12)
}
