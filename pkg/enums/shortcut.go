package enums

// ShortcutState is the prefix automaton's current phase.
type ShortcutState string

const (
	ShortcutStateIdle           ShortcutState = "idle"
	ShortcutStateDisambiguating ShortcutState = "disambiguating"
)

// String implements fmt.Stringer.
func (s ShortcutState) String() string {
	return string(s)
}
