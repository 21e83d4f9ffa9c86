package domain

// Match records a single occurrence of a named pattern in the input text.
type Match struct {
	// Value is the full matched span.
	Value string `json:"value"`

	// Groups holds the captured sub-groups, if the pattern declares any.
	Groups []string `json:"groups,omitempty"`
}

// SignalSet maps pattern names to the matches each pattern produced
// against one input text. A SignalSet is created fresh per scoring call,
// owned exclusively by that call, and never mutated after extraction.
type SignalSet map[string][]Match

// Fired reports whether the named pattern matched at least once.
func (s SignalSet) Fired(name string) bool { return len(s[name]) > 0 }

// Count returns the number of matches recorded for the named pattern.
func (s SignalSet) Count(name string) int { return len(s[name]) }

// Values returns the matched spans for the named pattern, in the order
// they appeared in the text.
func (s SignalSet) Values(name string) []string {
	matches := s[name]
	if len(matches) == 0 {
		return nil
	}
	values := make([]string, len(matches))
	for i, m := range matches {
		values[i] = m.Value
	}
	return values
}
