package game

import (
	"strconv"

	abci "github.com/cometbft/cometbft/abci/types"

	"spellblock/internal/state"
	"spellblock/internal/types"
)

// ClaimPayout pays out a finalized commitment from the pot escrow. Claims are
// pulled by the player so a single failing transfer never blocks settlement.
func (k Keeper) ClaimPayout(st *state.State, player string, roundID uint64) ([]abci.Event, error) {
	if roundID == 0 {
		return nil, types.ErrInvalidRequest.Wrap("roundId is required")
	}
	r, err := st.Round(roundID)
	if err != nil {
		return nil, err
	}
	if !r.Finalized {
		return nil, types.ErrNotFinalized.Wrapf("round %d", r.ID)
	}
	c := st.Commitment(r.ID, player)
	if c == nil {
		return nil, types.ErrNotCommitted.Wrapf("player %s round %d", player, r.ID)
	}
	if c.Claimed {
		return nil, types.ErrAlreadyClaimed.Wrapf("player %s round %d", player, r.ID)
	}
	if !c.Payout.IsPositive() {
		return nil, types.ErrNothingToClaim.Wrapf("player %s round %d", player, r.ID)
	}

	if err := st.Transfer(types.PotEscrowAccount, player, c.Payout); err != nil {
		return nil, err
	}
	c.Claimed = true
	if !c.IsRefund {
		st.Treasury.TotalDistributedToWinners = st.Treasury.TotalDistributedToWinners.Add(c.Payout)
	}

	k.logger.Info("payout claimed", "round", r.ID, "player", player, "amount", c.Payout.String(), "refund", c.IsRefund)

	return []abci.Event{newEvent(types.EventTypePlayerPaid, map[string]string{
		types.AttributeKeyRoundID:       strconv.FormatUint(r.ID, 10),
		types.AttributeKeyPlayer:        player,
		types.AttributeKeyAmount:        c.Payout.String(),
		types.AttributeKeyIsConsolation: strconv.FormatBool(c.IsConsolation),
		types.AttributeKeyIsRefund:      strconv.FormatBool(c.IsRefund),
	})}, nil
}
