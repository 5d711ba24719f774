package game

import (
	"strconv"

	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"

	"spellblock/internal/state"
	"spellblock/internal/types"
)

// Commit records a hidden word and moves the stake into the pot escrow.
func (k Keeper) Commit(st *state.State, now int64, player string, roundID uint64, commitHash common.Hash, stake sdkmath.Int) ([]abci.Event, error) {
	r, err := resolveRound(st, roundID)
	if err != nil {
		return nil, err
	}
	if phase := state.ComputePhase(r, now); phase != state.PhaseCommit {
		return nil, types.ErrWrongPhase.Wrapf("round %d is in %s phase", r.ID, phase)
	}
	if commitHash == (common.Hash{}) {
		return nil, types.ErrInvalidRequest.Wrap("empty commit hash")
	}
	if st.Commitment(r.ID, player) != nil {
		return nil, types.ErrDuplicateCommit.Wrapf("player %s round %d", player, r.ID)
	}
	if stake.IsNil() || stake.LT(st.Params.MinStake) {
		return nil, types.ErrStakeTooLow.Wrapf("stake %s < min %s", stake, st.Params.MinStake)
	}
	count, err := addUint64Checked(r.CommitCount, 1, "commit count")
	if err != nil {
		return nil, err
	}

	if err := st.Transfer(player, types.PotEscrowAccount, stake); err != nil {
		return nil, err
	}
	streak := carryStreak(st, player, r.ID)
	st.PutCommitment(r.ID, &state.Commitment{
		Player:          player,
		CommitHash:      commitHash,
		Stake:           stake,
		CommitTimestamp: now,
		Payout:          sdkmath.ZeroInt(),
	})
	r.TotalPot = r.TotalPot.Add(stake)
	r.CommitCount = count

	k.logger.Debug("commit accepted", "round", r.ID, "player", player, "stake", stake.String())

	return []abci.Event{newEvent(types.EventTypeCommitSubmitted, map[string]string{
		types.AttributeKeyRoundID:        strconv.FormatUint(r.ID, 10),
		types.AttributeKeyPlayer:         player,
		types.AttributeKeyStake:          stake.String(),
		types.AttributeKeyTimestamp:      strconv.FormatInt(now, 10),
		types.AttributeKeyStreak:         strconv.FormatUint(streak, 10),
		types.AttributeKeyNewTotalPot:    r.TotalPot.String(),
		types.AttributeKeyNewCommitCount: strconv.FormatUint(r.CommitCount, 10),
	})}, nil
}
