package models

import "strings"

// Kind names one family of articulation records an intent owns. The value is
// the plural used in routes; Singular names its notifications.
type Kind string

const (
	KindAspects     Kind = "aspects"
	KindInputs      Kind = "inputs"
	KindChoices     Kind = "choices"
	KindPitfalls    Kind = "pitfalls"
	KindAssumptions Kind = "assumptions"
	KindQualities   Kind = "qualities"
	KindExamples    Kind = "examples"
)

// ArticulationKinds lists every kind in the order an articulation update
// replaces them; aspects come last so references into them resolve first.
var ArticulationKinds = []Kind{
	KindInputs, KindChoices, KindPitfalls, KindAssumptions, KindQualities, KindExamples, KindAspects,
}

var singular = map[Kind]string{
	KindAspects:     "aspect",
	KindInputs:      "input",
	KindChoices:     "choice",
	KindPitfalls:    "pitfall",
	KindAssumptions: "assumption",
	KindQualities:   "quality",
	KindExamples:    "example",
}

// ParseKind resolves a route segment.
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := singular[k]
	return k, ok
}

func (k Kind) Singular() string { return singular[k] }

// Label is the singular name capitalised for messages.
func (k Kind) Label() string {
	s := k.Singular()
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (k Kind) String() string { return string(k) }
