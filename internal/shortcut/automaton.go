// Package shortcut implements the keyboard prefix automaton that maps
// typed letters to ingredient-removal toggles on the active session.
package shortcut

import (
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/vittoria-dev/menu-engine/internal/catalog"
	"github.com/vittoria-dev/menu-engine/pkg/enums"
)

// Toggler receives the removal toggle when a prefix resolves uniquely.
type Toggler interface {
	ToggleIncluded(ingredientID uuid.UUID) error
}

// Candidate is one still-possible match while disambiguating. NextChar is
// the candidate's next distinguishing character after the current prefix,
// empty when the prefix already spans the whole name.
type Candidate struct {
	IngredientID uuid.UUID `json:"ingredientId"`
	Name         string    `json:"name"`
	NextChar     string    `json:"nextChar,omitempty"`
}

// Result reports what one keystroke did.
type Result struct {
	State      enums.ShortcutState `json:"state"`
	Prefix     string              `json:"prefix"`
	Candidates []Candidate         `json:"candidates,omitempty"`
	ToggledID  *uuid.UUID          `json:"toggledId,omitempty"`
}

// Automaton is the deterministic prefix matcher. It is replayable: the
// same keystroke sequence over the same ingredient set always produces
// the same removal state.
type Automaton struct {
	ingredients []catalog.IncludedIngredient
	toggler     Toggler
	prefix      string
}

// New builds an automaton over one session's included ingredient list.
func New(ingredients []catalog.IncludedIngredient, toggler Toggler) *Automaton {
	return &Automaton{ingredients: ingredients, toggler: toggler}
}

// State reports whether a prefix is currently being disambiguated.
func (a *Automaton) State() enums.ShortcutState {
	if a.prefix == "" {
		return enums.ShortcutStateIdle
	}
	return enums.ShortcutStateDisambiguating
}

// Press feeds one typed letter. Non-letter input is ignored.
func (a *Automaton) Press(letter rune) (Result, error) {
	if !unicode.IsLetter(letter) {
		return a.result(nil, nil), nil
	}

	newPrefix := a.prefix + strings.ToLower(string(letter))
	matches := a.matchSet(newPrefix)

	switch len(matches) {
	case 0:
		// A dead letter cancels an open prefix; as a first keystroke it
		// is simply not a valid shortcut start.
		a.prefix = ""
		return a.result(nil, nil), nil
	case 1:
		toggled := matches[0].IngredientID
		a.prefix = ""
		if a.toggler != nil {
			if err := a.toggler.ToggleIncluded(toggled); err != nil {
				return a.result(nil, nil), err
			}
		}
		return a.result(nil, &toggled), nil
	default:
		a.prefix = newPrefix
		return a.result(a.candidates(matches), nil), nil
	}
}

// Escape unconditionally discards the current prefix.
func (a *Automaton) Escape() Result {
	a.prefix = ""
	return a.result(nil, nil)
}

// Reset is Escape plus a new ingredient set, used when the active session
// switches subject.
func (a *Automaton) Reset(ingredients []catalog.IncludedIngredient) {
	a.ingredients = ingredients
	a.prefix = ""
}

// Candidates exposes the current match set for display.
func (a *Automaton) Candidates() []Candidate {
	if a.prefix == "" {
		return nil
	}
	return a.candidates(a.matchSet(a.prefix))
}

func (a *Automaton) matchSet(prefix string) []catalog.IncludedIngredient {
	var matches []catalog.IncludedIngredient
	for _, ing := range a.ingredients {
		if strings.HasPrefix(strings.ToLower(ing.Name), prefix) {
			matches = append(matches, ing)
		}
	}
	return matches
}

func (a *Automaton) candidates(matches []catalog.IncludedIngredient) []Candidate {
	out := make([]Candidate, 0, len(matches))
	for _, ing := range matches {
		c := Candidate{IngredientID: ing.IngredientID, Name: ing.Name}
		rest := strings.TrimPrefix(strings.ToLower(ing.Name), a.prefix)
		if rest != "" {
			c.NextChar = string([]rune(rest)[0])
		}
		out = append(out, c)
	}
	return out
}

func (a *Automaton) result(candidates []Candidate, toggled *uuid.UUID) Result {
	return Result{
		State:      a.State(),
		Prefix:     a.prefix,
		Candidates: candidates,
		ToggledID:  toggled,
	}
}
