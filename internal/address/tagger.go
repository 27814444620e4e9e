package address

import (
	"database/sql"
	"strings"
)

// Label names a component of a tagged US address.
type Label string

const (
	AddressNumber             Label = "AddressNumber"
	AddressNumberSuffix       Label = "AddressNumberSuffix"
	StreetNamePreDirectional  Label = "StreetNamePreDirectional"
	StreetName                Label = "StreetName"
	StreetNamePostType        Label = "StreetNamePostType"
	StreetNamePostDirectional Label = "StreetNamePostDirectional"
	OccupancyType             Label = "OccupancyType"
	OccupancyIdentifier       Label = "OccupancyIdentifier"
	USPSBoxType               Label = "USPSBoxType"
	USPSBoxID                 Label = "USPSBoxID"
	BuildingName              Label = "BuildingName"
	PlaceName                 Label = "PlaceName"
	StateName                 Label = "StateName"
	ZipCode                   Label = "ZipCode"
)

// Kind tells which shape a tagging Result has.
type Kind int

const (
	// Empty means there was nothing to tag.
	Empty Kind = iota
	// Parsed means every label was assigned without conflict.
	Parsed
	// Ambiguous means a label occurred twice in non-adjacent positions, for
	// example two candidate house numbers. Components are not usable.
	Ambiguous
)

func (k Kind) String() string {
	switch k {
	case Parsed:
		return "parsed"
	case Ambiguous:
		return "ambiguous"
	default:
		return "empty"
	}
}

// Result is the outcome of tagging one address.
type Result struct {
	Kind       Kind
	Components map[Label]string
	// Conflict is the repeated label when Kind is Ambiguous.
	Conflict Label
}

// Get returns a component of a parsed result.
func (r Result) Get(l Label) (string, bool) {
	if r.Kind != Parsed {
		return "", false
	}
	v, ok := r.Components[l]
	return v, ok
}

// Number returns the house number, if one was tagged.
func (r Result) Number() (string, bool) {
	return r.Get(AddressNumber)
}

// Street returns the street name, or "" when none was tagged.
func (r Result) Street() string {
	v, _ := r.Get(StreetName)
	return v
}

// Tagger assigns labels to the tokens of a normalized address. Implementations
// never fail: conflicting labels produce an Ambiguous result.
type Tagger interface {
	Tag(normalized string) Result
}

// Parse normalizes and tags an address. An absent address yields Empty.
func Parse(t Tagger, addr sql.NullString) Result {
	return t.Tag(Normalize(addr))
}

// Builder accumulates labelled tokens. Adjacent tokens with the same label are
// joined with a space; a label that reappears after another label marks the
// result Ambiguous.
type Builder struct {
	comps    map[Label]string
	last     Label
	conflict Label
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{comps: make(map[Label]string)}
}

// Add records value under label.
func (b *Builder) Add(label Label, value string) {
	if b.conflict != "" || value == "" {
		return
	}
	if label == b.last {
		b.comps[label] += " " + value
		return
	}
	if _, seen := b.comps[label]; seen {
		b.conflict = label
		return
	}
	b.comps[label] = value
	b.last = label
}

// Result returns the accumulated tagging.
func (b *Builder) Result() Result {
	switch {
	case b.conflict != "":
		return Result{Kind: Ambiguous, Conflict: b.conflict}
	case len(b.comps) == 0:
		return Result{Kind: Empty}
	}
	comps := make(map[Label]string, len(b.comps))
	for k, v := range b.comps {
		comps[k] = strings.TrimSpace(v)
	}
	return Result{Kind: Parsed, Components: comps}
}
