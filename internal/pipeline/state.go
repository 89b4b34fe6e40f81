package pipeline

import "fmt"

// State is the progress of one cell through the pipeline. Written, Skipped
// and Failed are terminal.
type State int

const (
	StateUnopened State = iota
	StateOpened
	StateProbed
	StateQueryBuilt
	StateWritten
	StateSkipped
	StateFailed
)

var stateNames = map[State]string{
	StateUnopened:   "unopened",
	StateOpened:     "opened",
	StateProbed:     "probed",
	StateQueryBuilt: "query_built",
	StateWritten:    "written",
	StateSkipped:    "skipped",
	StateFailed:     "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether processing of the cell has ended.
func (s State) Terminal() bool {
	return s == StateWritten || s == StateSkipped || s == StateFailed
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown cell state %q", text)
}
