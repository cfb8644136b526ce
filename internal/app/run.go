package app

import (
	"context"
	"fmt"

	"github.com/vk/turbocycle/internal/ctxlog"
	"github.com/vk/turbocycle/internal/multipoint"
	"github.com/vk/turbocycle/internal/solver"
)

// Run executes the main application logic based on the provided
// configuration: a design solve followed by the declared off-design sweep.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	orch := multipoint.New(a.model, solver.NewNewton(), appConfig.Workers)
	result, err := orch.Run(ctx)
	if err != nil {
		return fmt.Errorf("cycle run failed: %w", err)
	}

	a.printSummary(result)
	a.logger.Debug("App.Run method finished.")
	return nil
}

// printSummary writes a human-readable run report to the app's output.
func (a *App) printSummary(r *multipoint.RunResult) {
	fmt.Fprintf(a.outW, "run %s: %s\n", r.RunID, r.State)
	if r.Design != nil {
		m := r.Design.Metrics
		fmt.Fprintf(a.outW, "design: Fn=%.1f lbf  TSFC=%.4f  OPR=%.2f  Wfuel=%.4f lbm/s\n",
			m.NetThrust, m.TSFC, m.OPR, m.FuelFlow)
	}
	for _, e := range r.Entries {
		if e.Err != nil {
			fmt.Fprintf(a.outW, "%-24s FAILED: %v\n", e.Name, e.Err)
			continue
		}
		m := e.Result.Metrics
		fmt.Fprintf(a.outW, "%-24s Fn=%.1f lbf  TSFC=%.4f  OPR=%.2f\n",
			e.Name, m.NetThrust, m.TSFC, m.OPR)
	}
	if failed := r.Failed(); len(failed) > 0 {
		fmt.Fprintf(a.outW, "%d of %d sweep points failed\n", len(failed), len(r.Entries))
	}
}
