package registry

// Kind is the closed set of engine element kinds.
type Kind int

const (
	KindFlightConditions Kind = iota
	KindInlet
	KindCompressor
	KindTurbine
	KindSplitter
	KindDuct
	KindCombustor
	KindNozzle
	KindShaft
	KindBleed
)

// kindNames maps declarative kind tags to Kind values.
var kindNames = map[string]Kind{
	"flight_conditions": KindFlightConditions,
	"inlet":             KindInlet,
	"compressor":        KindCompressor,
	"turbine":           KindTurbine,
	"splitter":          KindSplitter,
	"duct":              KindDuct,
	"combustor":         KindCombustor,
	"nozzle":            KindNozzle,
	"shaft":             KindShaft,
	"bleed":             KindBleed,
}

// String returns the declarative tag for the kind.
func (k Kind) String() string {
	for name, kind := range kindNames {
		if kind == k {
			return name
		}
	}
	return "unknown"
}

// ParseKind resolves a declarative kind tag. An unrecognized tag is a
// configuration error naming the element.
func ParseKind(element, tag string) (Kind, error) {
	k, ok := kindNames[tag]
	if !ok {
		return 0, &ConfigurationError{Element: element, Field: "kind", Value: tag}
	}
	return k, nil
}

// SpeedGroup identifies which spool a turbomachinery element belongs to.
type SpeedGroup int

const (
	GroupLP SpeedGroup = iota
	GroupHP
)

// String returns the spool tag.
func (g SpeedGroup) String() string {
	if g == GroupHP {
		return "HP"
	}
	return "LP"
}

// mapGroups is the performance-map policy: every recognized map token maps
// to exactly one shaft-speed group.
var mapGroups = map[string]SpeedGroup{
	"FanMap": GroupLP,
	"LPCMap": GroupLP,
	"HPCMap": GroupHP,
	"LPTMap": GroupLP,
	"HPTMap": GroupHP,
}
