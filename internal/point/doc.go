// Package point composes one element registry, one resolved connection
// graph, and one balance manager into a cycle point: a fully resolved
// engine graph plus balance set evaluated at a single operating condition.
// A point is immutable after assembly; only the balance free variables and
// component outputs change during solver iteration.
package point
