// Package lifecycle derives the four-stage lifecycle state of a show or
// season from cached air-date data and the current instant. Everything here
// is pure; missing or malformed dates resolve to the most conservative
// state instead of failing.
package lifecycle

// State is the closed set of lifecycle stages.
type State int

const (
	StateAnticipated State = iota
	StateAiring
	StateCompleted
	StateCancelled
)

var stateNames = map[State]string{
	StateAnticipated: "anticipated",
	StateAiring:      "airing",
	StateCompleted:   "completed",
	StateCancelled:   "cancelled",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "anticipated"
}

// MarshalJSON encodes the state as its name.
func (s State) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// ParseState maps a persisted state tag back to a State. Unknown tags
// degrade to anticipated, the safest stage.
func ParseState(raw string) State {
	for state, name := range stateNames {
		if name == raw {
			return state
		}
	}
	return StateAnticipated
}
