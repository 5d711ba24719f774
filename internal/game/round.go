package game

import (
	"fmt"
	"strconv"
	"strings"

	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"

	"spellblock/internal/puzzle"
	"spellblock/internal/state"
	"spellblock/internal/types"
	"spellblock/internal/words"
)

// OpenRound starts the next round. The operator commits to the seed and the
// ruler up front; the letter pool is derived from the seed hash and is public.
func (k Keeper) OpenRound(st *state.State, now int64, sender string, seedHash, rulerCommitHash common.Hash) (*state.Round, []abci.Event, error) {
	if err := requireOperator(st, sender); err != nil {
		return nil, nil, err
	}
	if seedHash == (common.Hash{}) || rulerCommitHash == (common.Hash{}) {
		return nil, nil, types.ErrInvalidRequest.Wrap("seedHash and rulerCommitHash are required")
	}

	var notBefore int64
	if cur := st.CurrentRound(); cur != nil {
		if !cur.Finalized {
			return nil, nil, types.ErrRoundNotOpenable.Wrapf("round %d is not finalized", cur.ID)
		}
		notBefore = cur.RevealDeadline
	}

	w, err := NextWindow(st.Params.Schedule, now, notBefore)
	if err != nil {
		return nil, nil, err
	}

	id, err := addUint64Checked(st.CurrentRoundID, 1, "round id")
	if err != nil {
		return nil, nil, err
	}
	pool, err := puzzle.LetterPool(seedHash, id)
	if err != nil {
		return nil, nil, fmt.Errorf("derive letter pool: %w", err)
	}

	r := &state.Round{
		ID:                   id,
		StartTime:            w.Start,
		CommitDeadline:       w.CommitDeadline,
		RevealDeadline:       w.RevealDeadline,
		LetterPool:           pool,
		SeedHash:             seedHash,
		RulerCommitHash:      rulerCommitHash,
		TotalPot:             sdkmath.ZeroInt(),
		RolloverFromPrevious: st.Rollover,
		JackpotBonus:         sdkmath.ZeroInt(),
	}
	st.Rollover = sdkmath.ZeroInt()
	st.Rounds[id] = r
	st.CurrentRoundID = id

	k.logger.Info("round opened",
		"round", id,
		"start", w.Start,
		"commit_deadline", w.CommitDeadline,
		"reveal_deadline", w.RevealDeadline,
		"rollover", r.RolloverFromPrevious.String(),
	)

	return r, []abci.Event{newEvent(types.EventTypeRoundStarted, map[string]string{
		types.AttributeKeyRoundID:         strconv.FormatUint(id, 10),
		types.AttributeKeyStartTime:       strconv.FormatInt(w.Start, 10),
		types.AttributeKeyCommitDeadline:  strconv.FormatInt(w.CommitDeadline, 10),
		types.AttributeKeyRevealDeadline:  strconv.FormatInt(w.RevealDeadline, 10),
		types.AttributeKeyRulerCommitHash: rulerCommitHash.Hex(),
		types.AttributeKeyLetterPool:      pool,
		types.AttributeKeyRollover:        r.RolloverFromPrevious.String(),
	})}, nil
}

// RevealSeed publishes the round seed after the commit deadline and unlocks
// the spell and ruler. Any mismatch with the commitments made at open is an
// integrity failure.
func (k Keeper) RevealSeed(st *state.State, now int64, sender string, roundID uint64, seed [32]byte) ([]abci.Event, error) {
	if err := requireOperator(st, sender); err != nil {
		return nil, err
	}
	r, err := resolveRound(st, roundID)
	if err != nil {
		return nil, err
	}
	if r.Finalized {
		return nil, types.ErrAlreadyFinalized.Wrapf("round %d", r.ID)
	}
	if r.SeedRevealed() {
		return nil, types.ErrAlreadyRevealed.Wrapf("seed for round %d", r.ID)
	}
	if now < r.CommitDeadline {
		return nil, types.ErrWrongPhase.Wrapf("seed cannot be revealed before the commit deadline (%d)", r.CommitDeadline)
	}
	if now >= r.RevealDeadline {
		return nil, types.ErrWrongPhase.Wrapf("reveal window for round %d has closed", r.ID)
	}

	if got := puzzle.SeedHash(seed); got != r.SeedHash {
		k.logger.Error("seed mismatch", "round", r.ID, "want", r.SeedHash.Hex(), "got", got.Hex())
		return nil, types.ErrSeedMismatch.Wrapf("keccak256(seed)=%s want %s", got.Hex(), r.SeedHash.Hex())
	}
	rev, err := puzzle.Derive(seed, r.LetterPool)
	if err != nil {
		return nil, fmt.Errorf("derive puzzle: %w", err)
	}
	if got := puzzle.RulerCommitHash(rev.ValidLengths, seed); got != r.RulerCommitHash {
		k.logger.Error("ruler commitment mismatch", "round", r.ID)
		return nil, types.ErrSeedMismatch.Wrapf("ruler commitment %s want %s", got.Hex(), r.RulerCommitHash.Hex())
	}

	r.RevealedSeed = common.Hash(seed)
	r.SpellID = uint8(rev.Spell.ID)
	r.SpellParam = rev.Spell.ParamString()
	r.ValidLengths = rev.ValidLengths

	k.logger.Info("seed revealed", "round", r.ID, "spell", rev.Spell.ID.String(), "param", r.SpellParam, "lengths", formatLengths(r.ValidLengths))

	return []abci.Event{newEvent(types.EventTypeSeedRevealed, map[string]string{
		types.AttributeKeyRoundID:      strconv.FormatUint(r.ID, 10),
		types.AttributeKeyLetterPool:   r.LetterPool,
		types.AttributeKeySpellID:      strconv.FormatUint(uint64(r.SpellID), 10),
		types.AttributeKeySpellParam:   r.SpellParam,
		types.AttributeKeyValidLengths: formatLengths(r.ValidLengths),
	})}, nil
}

// Puzzle returns the evaluator view of a round whose seed is revealed.
func Puzzle(r *state.Round) (words.Puzzle, error) {
	if !r.SeedRevealed() {
		return words.Puzzle{}, types.ErrWrongPhase.Wrapf("round %d seed not revealed", r.ID)
	}
	spell, err := words.NewSpell(words.SpellID(r.SpellID), r.SpellParam)
	if err != nil {
		return words.Puzzle{}, types.ErrInvalidRequest.Wrapf("round %d spell: %v", r.ID, err)
	}
	return words.Puzzle{Pool: r.LetterPool, Spell: spell, ValidLengths: r.ValidLengths}, nil
}

func formatLengths(ls []int) string {
	parts := make([]string, len(ls))
	for i, l := range ls {
		parts[i] = strconv.Itoa(l)
	}
	return strings.Join(parts, ",")
}
