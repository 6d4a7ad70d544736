package enums

import "fmt"

// SessionState tracks a customization session through its lifecycle.
type SessionState string

const (
	SessionStateIdle         SessionState = "idle"
	SessionStateSizeSelected SessionState = "size_selected"
	SessionStateCustomizing  SessionState = "customizing"
	SessionStateValidated    SessionState = "validated"
	SessionStateCommitted    SessionState = "committed"
	SessionStateCancelled    SessionState = "cancelled"
)

var validSessionStates = []SessionState{
	SessionStateIdle,
	SessionStateSizeSelected,
	SessionStateCustomizing,
	SessionStateValidated,
	SessionStateCommitted,
	SessionStateCancelled,
}

// String implements fmt.Stringer.
func (s SessionState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SessionState.
func (s SessionState) IsValid() bool {
	for _, candidate := range validSessionStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the session can no longer be mutated.
func (s SessionState) IsTerminal() bool {
	return s == SessionStateCommitted || s == SessionStateCancelled
}

// ParseSessionState converts raw input into a SessionState.
func ParseSessionState(value string) (SessionState, error) {
	for _, candidate := range validSessionStates {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid session state %q", value)
}

// QuantityOp is the direction of a quantity adjustment.
type QuantityOp string

const (
	QuantityOpIncrement QuantityOp = "increment"
	QuantityOpDecrement QuantityOp = "decrement"
)

var validQuantityOps = []QuantityOp{
	QuantityOpIncrement,
	QuantityOpDecrement,
}

// String implements fmt.Stringer.
func (q QuantityOp) String() string {
	return string(q)
}

// IsValid reports whether the value is a known QuantityOp.
func (q QuantityOp) IsValid() bool {
	for _, candidate := range validQuantityOps {
		if candidate == q {
			return true
		}
	}
	return false
}

// ParseQuantityOp converts raw input into a QuantityOp.
func ParseQuantityOp(value string) (QuantityOp, error) {
	for _, candidate := range validQuantityOps {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quantity op %q", value)
}
