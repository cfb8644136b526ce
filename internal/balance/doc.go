// Package balance owns the mode-dependent set of implicit algebraic
// constraints of a cycle point. A manager is a small finite-state machine
// fixed at construction in one of three states: Design, OffDesign-T4, or
// OffDesign-PercentThrust. Each balance pairs a free variable against a
// left-hand output quantity and a right-hand output or fixed target;
// Evaluate computes one residual per balance (lhs - mult*rhs) and never
// iterates. Iteration to zero residual belongs to the solver.
package balance
