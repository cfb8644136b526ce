package registry

import "fmt"

// ConfigurationError reports an unknown or invalid enumerated field on a
// declared element, or an unrecognized map-policy token. It always names the
// offending element and field.
type ConfigurationError struct {
	Element string
	Field   string
	Value   string
	Allowed []string
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("element %q: invalid %s %q, must be one of %v", e.Element, e.Field, e.Value, e.Allowed)
	}
	return fmt.Sprintf("element %q: invalid %s %q", e.Element, e.Field, e.Value)
}

// CapabilityMismatchError reports an element routed to a kind-specific
// builder whose attribute payload it does not support.
type CapabilityMismatchError struct {
	Element string
	Kind    Kind
	Payload string
}

// Error implements the error interface.
func (e *CapabilityMismatchError) Error() string {
	return fmt.Sprintf("element %q: kind %s cannot accept attribute payload %s", e.Element, e.Kind, e.Payload)
}
