package consent

import "strings"

// CategoryPerformance is the CMP category code for performance tracking.
// Its presence in the granted set is the sole determinant of whether a
// visitor identifier may be assigned.
const CategoryPerformance = "C0002"

// State is an ordered set of granted consent category codes.
type State []string

// ParseState decodes the preference-cookie value, a comma-joined category
// list. An empty value is an empty (all-revoked) state, distinct from the
// cookie being absent.
func ParseState(value string) State {
	if value == "" {
		return State{}
	}
	parts := strings.Split(value, ",")
	s := make(State, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			s = append(s, p)
		}
	}
	return s
}

// Encode renders the state as the comma-joined preference-cookie value.
func (s State) Encode() string {
	return strings.Join(s, ",")
}

// Has reports whether the category code was granted.
func (s State) Has(code string) bool {
	for _, c := range s {
		if c == code {
			return true
		}
	}
	return false
}

// PerformanceGranted reports whether the performance category was granted.
func (s State) PerformanceGranted() bool {
	return s.Has(CategoryPerformance)
}
