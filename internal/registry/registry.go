package registry

import (
	"fmt"

	"github.com/vk/turbocycle/internal/config"
)

// Entry is one registered element: its name, resolved kind, and the typed
// attribute payload. Entries are the stable handles the rest of the system
// wires against; names are never re-resolved during iteration.
type Entry struct {
	Name string
	Kind Kind
	Spec any
}

// Registry holds the registered elements for one cycle point, preserving
// declaration order for deterministic tie-breaks.
type Registry struct {
	order  []*Entry
	byName map[string]*Entry
	byKind map[Kind][]*Entry
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]*Entry),
		byKind: make(map[Kind][]*Entry),
	}
}

// validators is the per-kind dispatch table. Each validator checks that the
// attribute payload matches the kind and that enumerated fields carry
// allowed values. Kind is inspected exactly once, at registration.
var validators = map[Kind]func(name string, spec any) error{
	KindFlightConditions: expectSpec[*config.FlightConditionsSpec],
	KindInlet:            expectSpec[*config.InletSpec],
	KindCompressor:       expectSpec[*config.CompressorSpec],
	KindTurbine:          expectSpec[*config.TurbineSpec],
	KindSplitter:         expectSpec[*config.SplitterSpec],
	KindDuct:             expectSpec[*config.DuctSpec],
	KindCombustor:        validateCombustor,
	KindNozzle:           validateNozzle,
	KindShaft:            validateShaft,
	KindBleed:            expectSpec[*config.BleedSpec],
}

// expectSpec verifies the payload type for kinds with no enumerated fields.
func expectSpec[T any](name string, spec any) error {
	if _, ok := spec.(T); !ok {
		return payloadMismatch(name, spec)
	}
	return nil
}

func payloadMismatch(name string, spec any) error {
	return &CapabilityMismatchError{Element: name, Payload: fmt.Sprintf("%T", spec)}
}

func validateCombustor(name string, spec any) error {
	s, ok := spec.(*config.CombustorSpec)
	if !ok {
		return payloadMismatch(name, spec)
	}
	return oneOf(name, "fuel_type", s.FuelType, "FAR", "Jet-A(g)")
}

func validateNozzle(name string, spec any) error {
	s, ok := spec.(*config.NozzleSpec)
	if !ok {
		return payloadMismatch(name, spec)
	}
	return oneOf(name, "nozz_type", s.NozzType, "CV", "CD", "CD_CV")
}

func validateShaft(name string, spec any) error {
	s, ok := spec.(*config.ShaftSpec)
	if !ok {
		return payloadMismatch(name, spec)
	}
	return oneOf(name, "speed_class", s.SpeedClass, "LP", "HP")
}

// oneOf checks an enumerated field against its allowed values.
func oneOf(element, field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ConfigurationError{Element: element, Field: field, Value: value, Allowed: allowed}
}

// Register validates and records one declared element. It fails with a
// ConfigurationError on an unknown kind tag, a duplicate name, or an invalid
// enumerated field, and with a CapabilityMismatchError when the attribute
// payload does not match the declared kind.
func (r *Registry) Register(el *config.Element) (*Entry, error) {
	kind, err := ParseKind(el.Name, el.Kind)
	if err != nil {
		return nil, err
	}
	if _, exists := r.byName[el.Name]; exists {
		return nil, &ConfigurationError{Element: el.Name, Field: "name", Value: el.Name, Allowed: nil}
	}
	validate, ok := validators[kind]
	if !ok {
		return nil, &CapabilityMismatchError{Element: el.Name, Kind: kind, Payload: fmt.Sprintf("%T", el.Spec)}
	}
	if err := validate(el.Name, el.Spec); err != nil {
		if mismatch, ok := err.(*CapabilityMismatchError); ok {
			mismatch.Kind = kind
		}
		return nil, err
	}

	entry := &Entry{Name: el.Name, Kind: kind, Spec: el.Spec}
	r.order = append(r.order, entry)
	r.byName[el.Name] = entry
	r.byKind[kind] = append(r.byKind[kind], entry)
	return entry, nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Elements returns all entries in declaration order.
func (r *Registry) Elements() []*Entry {
	return r.order
}

// OfKind returns the entries of one kind in declaration order.
func (r *Registry) OfKind(k Kind) []*Entry {
	return r.byKind[k]
}

// ResolveMapGroup maps a turbomachinery element's declared performance-map
// token to its shaft-speed group. Unrecognized tokens are a configuration
// error; the original behavior of silently falling back to the HP group is
// superseded.
func (r *Registry) ResolveMapGroup(e *Entry) (SpeedGroup, error) {
	var token string
	switch spec := e.Spec.(type) {
	case *config.CompressorSpec:
		token = spec.Map
	case *config.TurbineSpec:
		token = spec.Map
	default:
		return 0, &CapabilityMismatchError{Element: e.Name, Kind: e.Kind, Payload: fmt.Sprintf("%T", e.Spec)}
	}
	group, ok := mapGroups[token]
	if !ok {
		return 0, &ConfigurationError{Element: e.Name, Field: "map", Value: token}
	}
	return group, nil
}

// ValidateCycle checks the cycle-level enumerated fields, filling in the
// canonical defaults for fields left unset.
func ValidateCycle(c *config.Cycle) error {
	if c.ThermoMethod == "" {
		c.ThermoMethod = "CEA"
	}
	if c.ThrottleMode == "" {
		c.ThrottleMode = "T4"
	}
	if c.FuelType == "" {
		c.FuelType = "Jet-A(g)"
	}
	if err := oneOf(c.Name, "thermo_method", c.ThermoMethod, "CEA", "TABULAR"); err != nil {
		return err
	}
	if err := oneOf(c.Name, "throttle_mode", c.ThrottleMode, "T4", "percent_thrust"); err != nil {
		return err
	}
	return oneOf(c.Name, "fuel_type", c.FuelType, "FAR", "Jet-A(g)")
}
