package solver

import (
	"context"
	"fmt"
)

// Variable is one free unknown of the system: its name, initial guess, and
// bounds. Bounds may be ±Inf.
type Variable struct {
	Name  string
	Guess float64
	Lower float64
	Upper float64
}

// ResidualFunc evaluates the residual vector once for the given state. It
// must return one residual per variable, in the variable order handed to
// Solve, and must not iterate internally.
type ResidualFunc func(ctx context.Context, state map[string]float64) ([]float64, error)

// Solver drives a residual function to zero.
type Solver interface {
	Solve(ctx context.Context, vars []Variable, residuals ResidualFunc) (map[string]float64, error)
}

// ConvergenceFailure indicates the solver did not reach tolerance. It
// carries the final residual norm and the iteration count.
type ConvergenceFailure struct {
	Norm       float64
	Iterations int
}

// Error implements the error interface.
func (e *ConvergenceFailure) Error() string {
	return fmt.Sprintf("solver did not converge: residual norm %.3e after %d iterations", e.Norm, e.Iterations)
}
