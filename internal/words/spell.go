package words

import (
	"fmt"
	"strings"
)

type SpellID uint8

const (
	SpellVeto SpellID = iota
	SpellAnchor
	SpellSeal
	SpellGem
)

const NumSpells = 4

func (s SpellID) String() string {
	switch s {
	case SpellVeto:
		return "veto"
	case SpellAnchor:
		return "anchor"
	case SpellSeal:
		return "seal"
	case SpellGem:
		return "gem"
	default:
		return fmt.Sprintf("spell(%d)", uint8(s))
	}
}

func (s SpellID) Valid() bool { return s < NumSpells }

// TakesParam reports whether the spell is parameterized by a letter.
func (s SpellID) TakesParam() bool { return s != SpellGem }

// Spell is a revealed constraint. Param is an uppercase letter, or 0 for Gem.
type Spell struct {
	ID    SpellID
	Param byte
}

func NewSpell(id SpellID, param string) (Spell, error) {
	if !id.Valid() {
		return Spell{}, fmt.Errorf("unknown spell id %d", id)
	}
	if !id.TakesParam() {
		if param != "" {
			return Spell{}, fmt.Errorf("%s takes no letter", id)
		}
		return Spell{ID: id}, nil
	}
	p := strings.ToUpper(param)
	if len(p) != 1 || p[0] < 'A' || p[0] > 'Z' {
		return Spell{}, fmt.Errorf("%s needs one letter, got %q", id, param)
	}
	return Spell{ID: id, Param: p[0]}, nil
}

// ParamString is the letter as a string, empty for Gem.
func (s Spell) ParamString() string {
	if s.Param == 0 {
		return ""
	}
	return string(s.Param)
}

// Passes evaluates the spell on a normalized (uppercase) word.
func (s Spell) Passes(word string) bool {
	if word == "" {
		return false
	}
	switch s.ID {
	case SpellVeto:
		return strings.IndexByte(word, s.Param) < 0
	case SpellAnchor:
		return word[0] == s.Param
	case SpellSeal:
		return word[len(word)-1] == s.Param
	case SpellGem:
		for i := 1; i < len(word); i++ {
			if word[i] == word[i-1] {
				return true
			}
		}
		return false
	default:
		return false
	}
}
