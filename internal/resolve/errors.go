package resolve

import "fmt"

// UnresolvedConnectionError reports a connection referencing a name that is
// not a registered element.
type UnresolvedConnectionError struct {
	Name string
	Ref  string
}

// Error implements the error interface.
func (e *UnresolvedConnectionError) Error() string {
	return fmt.Sprintf("unresolved connection: element %q not registered (%s)", e.Name, e.Ref)
}

// DuplicateConnectionError reports a destination inlet that is already bound
// by an earlier flow connection.
type DuplicateConnectionError struct {
	To string
}

// Error implements the error interface.
func (e *DuplicateConnectionError) Error() string {
	return fmt.Sprintf("duplicate connection: inlet of %q is already bound", e.To)
}

// AmbiguousBleedError reports a bleed name that does not resolve to exactly
// one producer and one consumer.
type AmbiguousBleedError struct {
	Bleed     string
	Owners    int
	Producers int
	Consumers int
}

// Error implements the error interface.
func (e *AmbiguousBleedError) Error() string {
	return fmt.Sprintf("ambiguous bleed %q: %d declaring elements, %d resolvable producer roles, %d resolvable consumer roles",
		e.Bleed, e.Owners, e.Producers, e.Consumers)
}
