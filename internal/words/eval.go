package words

import (
	"spellblock/internal/types"
)

const (
	MinLength = 4
	MaxLength = 12
	PoolSize  = 8
	NumRuler  = 3
)

// Puzzle is everything a reveal is judged against.
type Puzzle struct {
	Pool         string
	Spell        Spell
	ValidLengths []int
}

type Class uint8

const (
	ClassLoser Class = iota
	ClassConsolation
	ClassWinner
)

func (c Class) String() string {
	switch c {
	case ClassWinner:
		return "winner"
	case ClassConsolation:
		return "consolation"
	default:
		return "loser"
	}
}

// Verdict is the outcome of evaluating a well-formed word.
type Verdict struct {
	Word           string
	SpellPass      bool
	LengthValid    bool
	BaseScore      uint64
	MultiplierBps  uint32
	EffectiveScore uint64
}

func (v Verdict) Class() Class {
	return Classify(v.SpellPass, v.LengthValid)
}

// Normalize uppercases word and rejects anything outside A-Z.
func Normalize(word string) (string, error) {
	if word == "" {
		return "", types.ErrInvalidWord.Wrap("empty word")
	}
	out := make([]byte, len(word))
	for i := 0; i < len(word); i++ {
		c := word[i]
		switch {
		case c >= 'A' && c <= 'Z':
			out[i] = c
		case c >= 'a' && c <= 'z':
			out[i] = c - 'a' + 'A'
		default:
			return "", types.ErrInvalidWord.Wrapf("character %q at %d", c, i)
		}
	}
	return string(out), nil
}

// CheckShape validates length and pool membership of a normalized word.
func CheckShape(word, pool string) error {
	if len(word) < MinLength || len(word) > MaxLength {
		return types.ErrInvalidLength.Wrapf("length %d outside [%d,%d]", len(word), MinLength, MaxLength)
	}
	var avail [26]int
	for i := 0; i < len(pool); i++ {
		c := pool[i]
		if c < 'A' || c > 'Z' {
			return types.ErrInvalidRequest.Wrapf("letter pool contains %q", c)
		}
		avail[c-'A']++
	}
	for i := 0; i < len(word); i++ {
		idx := word[i] - 'A'
		if avail[idx] == 0 {
			return types.ErrLetterNotInPool.Wrapf("%q used more times than the pool allows", word[i])
		}
		avail[idx]--
	}
	return nil
}

// RulerPasses reports whether the word length is one of the valid lengths.
func RulerPasses(word string, validLengths []int) bool {
	for _, l := range validLengths {
		if len(word) == l {
			return true
		}
	}
	return false
}

func Classify(spellPass, lengthValid bool) Class {
	switch {
	case spellPass && lengthValid:
		return ClassWinner
	case spellPass:
		return ClassConsolation
	default:
		return ClassLoser
	}
}

// Evaluate judges a normalized word that already passed CheckShape. It is a
// pure function of its inputs.
func Evaluate(word string, p Puzzle, scheme types.ScoringScheme, streak uint64) Verdict {
	base := BaseScore(word, scheme)
	bps := StreakMultiplierBps(streak)
	return Verdict{
		Word:           word,
		SpellPass:      p.Spell.Passes(word),
		LengthValid:    RulerPasses(word, p.ValidLengths),
		BaseScore:      base,
		MultiplierBps:  bps,
		EffectiveScore: EffectiveScore(base, bps),
	}
}
