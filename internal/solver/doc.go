// Package solver defines the contract between a cycle point and the
// nonlinear equation solver: a residual-evaluation function over a named
// state vector, per-variable bounds and guesses, and a converged state or a
// ConvergenceFailure. It also ships a damped-Newton reference implementation
// with a finite-difference Jacobian and a short backtracking line search.
// The rest of the system treats solver internals as opaque.
package solver
