package puzzle

import (
	"crypto/rand"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"spellblock/internal/sbcrypto"
	"spellblock/internal/words"
)

const (
	// Keep these domains stable; they become part of consensus-critical derivations.
	poolDomain  = "spellblock/v1/pool"
	spellDomain = "spellblock/v1/spell"
	rulerDomain = "spellblock/v1/ruler"
)

// Tile bag used to draw the letter pool. Counts follow the classic 98-tile
// distribution (no blanks), so common letters repeat and rare ones are rare.
var tileCounts = [26]int{
	9, 2, 2, 4, 12, 2, 3, 2, 9, 1, 1, 4, 2, // A-M
	6, 8, 2, 1, 6, 4, 6, 4, 2, 2, 1, 2, 1, // N-Z
}

const minVowels = 2

// Reveal is what the operator's seed unlocks at the commit deadline.
type Reveal struct {
	Spell        words.Spell
	ValidLengths []int
}

// NewSeed draws a round seed from the OS CSPRNG.
func NewSeed() ([32]byte, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return seed, fmt.Errorf("read seed: %w", err)
	}
	return seed, nil
}

func SeedHash(seed [32]byte) common.Hash {
	return crypto.Keccak256Hash(seed[:])
}

// LetterPool derives the public pool for a round. It depends only on the seed
// hash, so it can be published at open without leaking spell or ruler.
func LetterPool(seedHash common.Hash, roundID uint64) (string, error) {
	rng := sbcrypto.NewHashRNG(sbcrypto.HashDomain(poolDomain, seedHash[:], sbcrypto.U64LE(roundID)))

	var vowelBag, bag []byte
	for i, n := range tileCounts {
		c := byte('A' + i)
		for j := 0; j < n; j++ {
			if isVowel(c) {
				vowelBag = append(vowelBag, c)
			} else {
				bag = append(bag, c)
			}
		}
	}

	pool := make([]byte, 0, words.PoolSize)
	for len(pool) < minVowels {
		i, err := rng.Intn(len(vowelBag))
		if err != nil {
			return "", err
		}
		pool = append(pool, vowelBag[i])
		vowelBag = append(vowelBag[:i], vowelBag[i+1:]...)
	}
	bag = append(bag, vowelBag...)
	for len(pool) < words.PoolSize {
		i, err := rng.Intn(len(bag))
		if err != nil {
			return "", err
		}
		pool = append(pool, bag[i])
		bag = append(bag[:i], bag[i+1:]...)
	}

	// Fisher-Yates so the guaranteed vowels are not always first.
	for i := len(pool) - 1; i > 0; i-- {
		j, err := rng.Intn(i + 1)
		if err != nil {
			return "", err
		}
		pool[i], pool[j] = pool[j], pool[i]
	}
	return string(pool), nil
}

// Derive computes the hidden half of a round from its seed. The spell letter is
// always taken from the pool so Anchor and Seal stay satisfiable.
func Derive(seed [32]byte, pool string) (Reveal, error) {
	if len(pool) == 0 {
		return Reveal{}, fmt.Errorf("empty letter pool")
	}
	rng := sbcrypto.NewHashRNG(sbcrypto.HashDomain(spellDomain, seed[:], []byte(pool)))

	sid, err := rng.Intn(words.NumSpells)
	if err != nil {
		return Reveal{}, err
	}
	spell := words.Spell{ID: words.SpellID(sid)}
	if spell.ID.TakesParam() {
		i, err := rng.Intn(len(pool))
		if err != nil {
			return Reveal{}, err
		}
		spell.Param = pool[i]
	}

	lengths, err := rulerLengths(rng, len(pool))
	if err != nil {
		return Reveal{}, err
	}
	return Reveal{Spell: spell, ValidLengths: lengths}, nil
}

// rulerLengths picks three distinct lengths a pool of poolLen letters can
// actually produce.
func rulerLengths(rng *sbcrypto.HashRNG, poolLen int) ([]int, error) {
	hi := words.MaxLength
	if poolLen < hi {
		hi = poolLen
	}
	var choices []int
	for l := words.MinLength; l <= hi; l++ {
		choices = append(choices, l)
	}
	if len(choices) < words.NumRuler {
		return nil, fmt.Errorf("pool of %d letters cannot host %d ruler lengths", poolLen, words.NumRuler)
	}
	out := make([]int, 0, words.NumRuler)
	for len(out) < words.NumRuler {
		i, err := rng.Intn(len(choices))
		if err != nil {
			return nil, err
		}
		out = append(out, choices[i])
		choices = append(choices[:i], choices[i+1:]...)
	}
	sort.Ints(out)
	return out, nil
}

// RulerCommitHash is keccak256(domain, lengths..., seed); it is published at
// open and must be reproduced by the revealed seed.
func RulerCommitHash(lengths []int, seed [32]byte) common.Hash {
	packed := make([]byte, 0, len(lengths))
	for _, l := range lengths {
		packed = append(packed, byte(l))
	}
	return sbcrypto.HashDomain(rulerDomain, packed, seed[:])
}

// Commitments is what an operator publishes when opening round roundID with seed.
type Commitments struct {
	SeedHash        common.Hash `json:"seedHash"`
	RulerCommitHash common.Hash `json:"rulerCommitHash"`
	LetterPool      string      `json:"letterPool"`
	Spell           string      `json:"spell"`
	SpellParam      string      `json:"spellParam"`
	ValidLengths    []int       `json:"validLengths"`
}

func Commit(seed [32]byte, roundID uint64) (Commitments, error) {
	seedHash := SeedHash(seed)
	pool, err := LetterPool(seedHash, roundID)
	if err != nil {
		return Commitments{}, err
	}
	rev, err := Derive(seed, pool)
	if err != nil {
		return Commitments{}, err
	}
	return Commitments{
		SeedHash:        seedHash,
		RulerCommitHash: RulerCommitHash(rev.ValidLengths, seed),
		LetterPool:      pool,
		Spell:           rev.Spell.ID.String(),
		SpellParam:      rev.Spell.ParamString(),
		ValidLengths:    rev.ValidLengths,
	}, nil
}

func isVowel(c byte) bool {
	switch c {
	case 'A', 'E', 'I', 'O', 'U':
		return true
	}
	return false
}
