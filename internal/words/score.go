package words

import (
	"math/bits"

	"spellblock/internal/types"
)

// Letter values for the letter_value scheme.
var letterValues = [26]uint64{
	1, 3, 3, 2, 1, 4, 2, 4, 1, 8, 5, 1, 3, // A-M
	1, 1, 3, 10, 1, 1, 1, 1, 4, 4, 8, 4, 10, // N-Z
}

const lengthBonusPerLetter = 5

// BaseScore scores a normalized word under scheme.
func BaseScore(word string, scheme types.ScoringScheme) uint64 {
	if scheme != types.ScoringLetterValue {
		return uint64(len(word))
	}
	var score uint64
	for i := 0; i < len(word); i++ {
		score += letterValues[word[i]-'A']
	}
	if len(word) > MinLength {
		score += uint64(len(word)-MinLength) * lengthBonusPerLetter
	}
	return score
}

// StreakMultiplierBps maps a consecutive-round streak to its multiplier.
func StreakMultiplierBps(streak uint64) uint32 {
	switch {
	case streak >= 14:
		return 15_000
	case streak >= 7:
		return 12_500
	case streak >= 3:
		return 11_000
	default:
		return 10_000
	}
}

// EffectiveScore is floor(base * bps / 10000).
func EffectiveScore(base uint64, bps uint32) uint64 {
	hi, lo := bits.Mul64(base, uint64(bps))
	if hi >= uint64(types.MaxBps) {
		return ^uint64(0)
	}
	q, _ := bits.Div64(hi, lo, uint64(types.MaxBps))
	return q
}
