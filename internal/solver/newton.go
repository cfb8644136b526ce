package solver

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/vk/turbocycle/internal/ctxlog"
)

// Newton is a damped Newton iteration with a forward-difference Jacobian,
// bound clamping, and a short backtracking line search.
type Newton struct {
	Atol      float64 // absolute residual norm tolerance
	MaxIter   int
	FDStep    float64 // relative finite-difference step
	LSMaxIter int
	LSRho     float64 // backtracking contraction factor
}

// NewNewton returns a Newton solver with the default settings.
func NewNewton() *Newton {
	return &Newton{
		Atol:      1e-8,
		MaxIter:   50,
		FDStep:    1e-7,
		LSMaxIter: 3,
		LSRho:     0.75,
	}
}

// Solve implements the Solver interface.
func (n *Newton) Solve(ctx context.Context, vars []Variable, residuals ResidualFunc) (map[string]float64, error) {
	logger := ctxlog.FromContext(ctx)
	dim := len(vars)
	if dim == 0 {
		return map[string]float64{}, nil
	}

	x := make([]float64, dim)
	for i, v := range vars {
		x[i] = clamp(v.Guess, v.Lower, v.Upper)
	}

	eval := func(x []float64) ([]float64, error) {
		state := make(map[string]float64, dim)
		for i, v := range vars {
			state[v.Name] = x[i]
		}
		r, err := residuals(ctx, state)
		if err != nil {
			return nil, err
		}
		if len(r) != dim {
			return nil, fmt.Errorf("residual function returned %d residuals for %d variables", len(r), dim)
		}
		return r, nil
	}

	r, err := eval(x)
	if err != nil {
		return nil, fmt.Errorf("initial residual evaluation: %w", err)
	}

	for iter := 1; iter <= n.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		norm := floats.Norm(r, 2)
		logger.Debug("Newton iteration.", "iter", iter-1, "norm", norm)
		if norm <= n.Atol {
			return n.stateOf(vars, x), nil
		}

		jac, err := n.jacobian(vars, x, r, eval)
		if err != nil {
			return nil, fmt.Errorf("jacobian evaluation: %w", err)
		}

		rhs := mat.NewVecDense(dim, nil)
		for i := range r {
			rhs.SetVec(i, -r[i])
		}
		var dx mat.VecDense
		if err := dx.SolveVec(jac, rhs); err != nil {
			return nil, &ConvergenceFailure{Norm: norm, Iterations: iter - 1}
		}

		x, r, err = n.lineSearch(vars, x, r, &dx, eval)
		if err != nil {
			return nil, err
		}
	}

	norm := floats.Norm(r, 2)
	if norm <= n.Atol {
		return n.stateOf(vars, x), nil
	}
	return nil, &ConvergenceFailure{Norm: norm, Iterations: n.MaxIter}
}

// jacobian builds the forward-difference Jacobian, stepping backward when a
// forward step would leave the variable's bounds.
func (n *Newton) jacobian(vars []Variable, x, r []float64, eval func([]float64) ([]float64, error)) (*mat.Dense, error) {
	dim := len(vars)
	jac := mat.NewDense(dim, dim, nil)
	xp := make([]float64, dim)
	for j := 0; j < dim; j++ {
		copy(xp, x)
		h := n.FDStep * math.Max(math.Abs(x[j]), 1)
		if x[j]+h > vars[j].Upper {
			h = -h
		}
		xp[j] = x[j] + h
		rp, err := eval(xp)
		if err != nil {
			return nil, err
		}
		for i := 0; i < dim; i++ {
			jac.Set(i, j, (rp[i]-r[i])/h)
		}
	}
	return jac, nil
}

// lineSearch backtracks along dx until the residual norm decreases or the
// backtracking steps run out; the last trial is accepted either way so the
// iteration can escape flat regions.
func (n *Newton) lineSearch(vars []Variable, x, r []float64, dx *mat.VecDense, eval func([]float64) ([]float64, error)) ([]float64, []float64, error) {
	dim := len(vars)
	norm := floats.Norm(r, 2)
	alpha := 1.0

	var lastX, lastR []float64
	var lastErr error
	for ls := 0; ls <= n.LSMaxIter; ls++ {
		trial := make([]float64, dim)
		for i, v := range vars {
			trial[i] = clamp(x[i]+alpha*dx.AtVec(i), v.Lower, v.Upper)
		}
		rt, err := eval(trial)
		if err != nil {
			lastErr = err
			alpha *= n.LSRho
			continue
		}
		lastX, lastR, lastErr = trial, rt, nil
		if floats.Norm(rt, 2) < norm {
			return trial, rt, nil
		}
		alpha *= n.LSRho
	}
	if lastErr != nil {
		return nil, nil, fmt.Errorf("residual evaluation during line search: %w", lastErr)
	}
	return lastX, lastR, nil
}

func (n *Newton) stateOf(vars []Variable, x []float64) map[string]float64 {
	state := make(map[string]float64, len(vars))
	for i, v := range vars {
		state[v.Name] = x[i]
	}
	return state
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
