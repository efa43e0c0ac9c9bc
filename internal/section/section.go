// Package section defines the seven canonical test sections and resolves
// the subject-label spellings found in the question bank to them.
package section

import "strings"

// Key identifies a canonical section.
type Key string

const (
	Polity         Key = "polity"
	Economy        Key = "economy"
	History        Key = "history"
	Geography      Key = "geography"
	Environment    Key = "environment"
	ScienceTech    Key = "scienceTech"
	CurrentAffairs Key = "currentAffairs"
)

// Order is the fixed presentation order of sections in a test.
var Order = []Key{Polity, Economy, History, Geography, Environment, ScienceTech, CurrentAffairs}

type info struct {
	label   string
	aliases []string
}

var catalog = map[Key]info{
	Polity:      {label: "Polity", aliases: []string{"Polity", "polity"}},
	Economy:     {label: "Economy", aliases: []string{"Economy", "economy", "Economic"}},
	History:     {label: "History", aliases: []string{"History", "history"}},
	Geography:   {label: "Geography", aliases: []string{"Geography", "geography"}},
	Environment: {label: "Environment", aliases: []string{"Environment", "environment", "Ecology"}},
	ScienceTech: {label: "Science & Tech", aliases: []string{"ScienceTech", "scienceTech", "Science", "Technology", "Science & Tech"}},
	CurrentAffairs: {
		label:   "Current Affairs",
		aliases: []string{"CurrentAffairs", "Current Affairs", "currentAffairs"},
	},
}

// Label returns the display label for a section key.
func Label(k Key) string {
	return catalog[k].label
}

// Aliases returns the accepted subject spellings for a section key.
func Aliases(k Key) []string {
	src := catalog[k].aliases
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Valid reports whether k is one of the seven canonical keys.
func Valid(k Key) bool {
	_, ok := catalog[k]
	return ok
}

// Canonicalize resolves a raw subject label (bank spelling, display label,
// or key) to its canonical section. The second return is false when no
// alias matches; callers decide how to handle unknown subjects.
func Canonicalize(raw string) (Key, bool) {
	raw = strings.TrimSpace(raw)
	if Valid(Key(raw)) {
		return Key(raw), true
	}
	for _, k := range Order {
		for _, alias := range catalog[k].aliases {
			if raw == alias {
				return k, true
			}
		}
	}
	return "", false
}

// Labels returns the display labels in presentation order.
func Labels() []string {
	out := make([]string, 0, len(Order))
	for _, k := range Order {
		out = append(out, catalog[k].label)
	}
	return out
}
