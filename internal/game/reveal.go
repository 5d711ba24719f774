package game

import (
	"strconv"
	"strings"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"

	"spellblock/internal/sbcrypto"
	"spellblock/internal/state"
	"spellblock/internal/types"
	"spellblock/internal/words"
)

// Reveal opens a commitment. Checks run in a fixed order and any failure up to
// dictionary membership rejects the call; failing the spell or the ruler is
// recorded as a result.
func (k Keeper) Reveal(st *state.State, now int64, player string, roundID uint64, word string, salt [32]byte, proof [][]byte) ([]abci.Event, error) {
	r, err := resolveRound(st, roundID)
	if err != nil {
		return nil, err
	}
	if phase := state.ComputePhase(r, now); phase != state.PhaseReveal {
		return nil, types.ErrWrongPhase.Wrapf("round %d is in %s phase", r.ID, phase)
	}

	c := st.Commitment(r.ID, player)
	if c == nil {
		return nil, types.ErrNotCommitted.Wrapf("player %s round %d", player, r.ID)
	}
	if c.Revealed {
		return nil, types.ErrAlreadyRevealed.Wrapf("player %s round %d", player, r.ID)
	}

	if got := sbcrypto.CommitHash(r.ID, common.HexToAddress(player), word, salt); got != c.CommitHash {
		return nil, types.ErrHashMismatch.Wrapf("player %s round %d", player, r.ID)
	}

	norm, err := words.Normalize(word)
	if err != nil {
		return nil, err
	}
	if err := words.CheckShape(norm, r.LetterPool); err != nil {
		return nil, err
	}

	ok, err := k.verifier.VerifyMembership(strings.ToLower(norm), proof, st.DictionaryRoot)
	if err != nil {
		if types.ClassOf(err) == types.ClassUnknown {
			return nil, types.ErrInvalidProof.Wrap(err.Error())
		}
		return nil, err
	}
	if !ok {
		return nil, types.ErrNotInDictionary.Wrapf("%q", strings.ToLower(norm))
	}

	pz, err := Puzzle(r)
	if err != nil {
		return nil, err
	}
	revealCount, err := addUint64Checked(r.RevealCount, 1, "reveal count")
	if err != nil {
		return nil, err
	}

	streak := recordReveal(st, player, r.ID)
	v := words.Evaluate(norm, pz, st.Params.Scoring, streak)

	c.Revealed = true
	c.Word = v.Word
	c.SpellPass = v.SpellPass
	c.LengthValid = v.LengthValid
	c.BaseScore = v.BaseScore
	c.EffectiveScore = v.EffectiveScore
	c.Streak = streak
	r.RevealCount = revealCount

	events := []abci.Event{newEvent(types.EventTypePlayerRevealed, map[string]string{
		types.AttributeKeyRoundID:        strconv.FormatUint(r.ID, 10),
		types.AttributeKeyPlayer:         player,
		types.AttributeKeyEffectiveScore: strconv.FormatUint(v.EffectiveScore, 10),
		types.AttributeKeyBaseScore:      strconv.FormatUint(v.BaseScore, 10),
		types.AttributeKeyLengthValid:    strconv.FormatBool(v.LengthValid),
		types.AttributeKeySpellValid:     strconv.FormatBool(v.SpellPass),
		types.AttributeKeyStreak:         strconv.FormatUint(streak, 10),
	})}

	if ev, reused := k.trackSalt(st, player, r.ID, salt); reused {
		events = append(events, ev)
	}

	k.logger.Debug("reveal accepted", "round", r.ID, "player", player, "class", v.Class().String(), "score", v.EffectiveScore)
	return events, nil
}

// trackSalt remembers a fingerprint of every revealed salt. Reuse is flagged,
// never rejected.
func (k Keeper) trackSalt(st *state.State, player string, roundID uint64, salt [32]byte) (abci.Event, bool) {
	fp := sbcrypto.SaltFingerprint(salt).Hex()
	seen := st.SaltsSeen[player]
	if seen == nil {
		seen = map[string]uint64{}
		st.SaltsSeen[player] = seen
	}
	prev, reused := seen[fp]
	seen[fp] = roundID
	if !reused {
		return abci.Event{}, false
	}
	k.logger.Warn("salt reused across rounds", "player", player, "round", roundID, "previous_round", prev)
	return newEvent(types.EventTypeSaltReused, map[string]string{
		types.AttributeKeyRoundID: strconv.FormatUint(roundID, 10),
		types.AttributeKeyPlayer:  player,
		"previousRoundId":         strconv.FormatUint(prev, 10),
	}), true
}
