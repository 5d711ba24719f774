package game

import (
	"strconv"

	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"

	"spellblock/internal/state"
	"spellblock/internal/types"
)

// Finalize settles a round once its reveal deadline has passed. A round is
// settled exactly once; later calls fail with ErrAlreadyFinalized and move
// nothing.
func (k Keeper) Finalize(st *state.State, now int64, roundID uint64) ([]abci.Event, error) {
	r, err := resolveRound(st, roundID)
	if err != nil {
		return nil, err
	}
	if r.Finalized {
		return nil, types.ErrAlreadyFinalized.Wrapf("round %d", r.ID)
	}
	if phase := state.ComputePhase(r, now); phase != state.PhaseFinalized {
		return nil, types.ErrWrongPhase.Wrapf("round %d is in %s phase", r.ID, phase)
	}
	if !r.SeedRevealed() {
		return k.voidRound(st, r)
	}
	return k.settle(st, r)
}

// FinalizeDue settles the current round if it is due. It is a no-op otherwise,
// so it is safe to run at the end of every block.
func (k Keeper) FinalizeDue(st *state.State, now int64) ([]abci.Event, error) {
	r := st.CurrentRound()
	if r == nil || r.Finalized || state.ComputePhase(r, now) != state.PhaseFinalized {
		return nil, nil
	}
	return k.Finalize(st, now, r.ID)
}

func (k Keeper) settle(st *state.State, r *state.Round) ([]abci.Event, error) {
	p := st.Params
	commits := sortedCommitments(st, r.ID)
	var events []abci.Event

	var forfeited uint64
	for _, c := range commits {
		if !c.Revealed {
			c.Forfeited = true
			forfeited++
		}
	}

	bonus, err := k.seedJackpot(st, r)
	if err != nil {
		return nil, err
	}
	if bonus.IsPositive() {
		events = append(events, newEvent(types.EventTypeJackpotSeeded, map[string]string{
			types.AttributeKeyRoundID:     strconv.FormatUint(r.ID, 10),
			types.AttributeKeyBonusAmount: bonus.String(),
			types.AttributeKeyNewTotalPot: r.Pot().String(),
		}))
	}

	set := state.NewSettlement(r.Pot())

	var winners, consolation []*state.Commitment
	for _, c := range commits {
		switch {
		case c.Forfeited || !c.SpellPass:
			set.LoserBurn = set.LoserBurn.Add(c.Stake)
		case c.LengthValid:
			winners = append(winners, c)
		default:
			consolation = append(consolation, c)
		}
	}

	distributable := set.Pot.Sub(set.LoserBurn)
	set.TreasuryBurn = bpsOf(distributable, p.BurnBps)
	set.StakerRewards = bpsOf(distributable, p.StakersBps)
	set.Operations = bpsOf(distributable, p.OperationsBps)
	remainder := distributable.Sub(set.TreasuryBurn).Sub(set.StakerRewards).Sub(set.Operations)

	winnerPool := bpsOf(remainder, p.WinnerBps)
	consolationPool := remainder.Sub(winnerPool)

	set.WinnerPayouts = splitProRata(winnerPool, winners, false)
	set.ConsolationPayouts = splitProRata(consolationPool, consolation, true)
	set.Rollover = winnerPool.Sub(set.WinnerPayouts).Add(consolationPool.Sub(set.ConsolationPayouts))

	if !set.Balanced() {
		k.logger.Error("settlement does not balance", "round", r.ID, "pot", set.Pot.String())
		return nil, types.ErrConservation.Wrapf("round %d: payouts=%s treasury=%s rollover=%s pot=%s",
			r.ID, set.Payouts(), set.TreasuryCut(), set.Rollover, set.Pot)
	}

	burned := set.LoserBurn.Add(set.TreasuryBurn)
	if err := st.Transfer(types.PotEscrowAccount, types.BurnAccount(), burned); err != nil {
		return nil, err
	}
	if err := st.Transfer(types.PotEscrowAccount, types.StakerRewardsAccount, set.StakerRewards); err != nil {
		return nil, err
	}
	if err := st.Transfer(types.PotEscrowAccount, types.OperationsAccount, set.Operations); err != nil {
		return nil, err
	}
	// Payouts and rollover stay in escrow until claimed or carried forward.
	st.Rollover = st.Rollover.Add(set.Rollover)

	st.Treasury.TotalBurned = st.Treasury.TotalBurned.Add(burned)
	st.Treasury.TotalDistributedToStakers = st.Treasury.TotalDistributedToStakers.Add(set.StakerRewards)
	st.Treasury.TotalToOperations = st.Treasury.TotalToOperations.Add(set.Operations)

	r.Finalized = true
	r.Settlement = set
	r.ValidWinnerCount = countPaid(winners)
	r.ConsolationWinnerCount = countPaid(consolation)

	if forfeited > 0 {
		events = append(events, newEvent(types.EventTypeCommitsForfeited, map[string]string{
			types.AttributeKeyRoundID: strconv.FormatUint(r.ID, 10),
			types.AttributeKeyCount:   strconv.FormatUint(forfeited, 10),
		}))
	}
	if burned.IsPositive() {
		events = append(events, newEvent(types.EventTypeTokensBurned, map[string]string{
			types.AttributeKeyRoundID:        strconv.FormatUint(r.ID, 10),
			types.AttributeKeyAmount:         burned.String(),
			types.AttributeKeyNewTotalBurned: st.Treasury.TotalBurned.String(),
		}))
	}
	events = append(events, finalizedEvent(r))

	k.logger.Info("round finalized",
		"round", r.ID,
		"pot", set.Pot.String(),
		"winners", r.ValidWinnerCount,
		"consolation", r.ConsolationWinnerCount,
		"burned", burned.String(),
		"rollover", set.Rollover.String(),
	)
	return events, nil
}

// voidRound closes a round whose seed was never revealed. Nobody could reveal,
// so every stake is refunded and the previous rollover carries forward.
func (k Keeper) voidRound(st *state.State, r *state.Round) ([]abci.Event, error) {
	set := state.NewSettlement(r.Pot())
	for _, c := range sortedCommitments(st, r.ID) {
		c.Payout = c.Stake
		c.IsRefund = true
		set.Refunds = set.Refunds.Add(c.Stake)
	}
	set.Rollover = r.RolloverFromPrevious.Add(r.JackpotBonus)
	if !set.Balanced() {
		return nil, types.ErrConservation.Wrapf("voided round %d does not balance", r.ID)
	}
	st.Rollover = st.Rollover.Add(set.Rollover)

	r.Finalized = true
	r.Voided = true
	r.Settlement = set

	k.logger.Warn("round voided: seed never revealed", "round", r.ID, "commits", r.CommitCount, "refunds", set.Refunds.String())

	return []abci.Event{
		newEvent(types.EventTypeRoundVoided, map[string]string{
			types.AttributeKeyRoundID: strconv.FormatUint(r.ID, 10),
			types.AttributeKeyAmount:  set.Refunds.String(),
		}),
		finalizedEvent(r),
	}, nil
}

// seedJackpot tops up the pot from the jackpot reserve when the pot exceeds
// the configured threshold. It never draws more than the reserve holds.
func (k Keeper) seedJackpot(st *state.State, r *state.Round) (sdkmath.Int, error) {
	p := st.Params
	zero := sdkmath.ZeroInt()
	if !p.JackpotBonus.IsPositive() || !r.TotalPot.Add(r.RolloverFromPrevious).GT(p.JackpotThreshold) {
		return zero, nil
	}
	bonus := sdkmath.MinInt(p.JackpotBonus, st.Balance(types.JackpotReserveAccount))
	if !bonus.IsPositive() {
		k.logger.Info("jackpot threshold reached but reserve is empty", "round", r.ID)
		return zero, nil
	}
	if err := st.Transfer(types.JackpotReserveAccount, types.PotEscrowAccount, bonus); err != nil {
		return zero, err
	}
	r.JackpotBonus = r.JackpotBonus.Add(bonus)
	return bonus, nil
}

// splitProRata assigns floor(pool * score / totalScore) to each commitment and
// returns the total assigned. With capAtStake, no share exceeds the player's
// own stake.
func splitProRata(pool sdkmath.Int, cs []*state.Commitment, capAtStake bool) sdkmath.Int {
	paid := sdkmath.ZeroInt()
	if len(cs) == 0 || !pool.IsPositive() {
		return paid
	}
	total := sdkmath.ZeroInt()
	for _, c := range cs {
		total = total.Add(sdkmath.NewIntFromUint64(c.EffectiveScore))
	}
	if total.IsZero() {
		return paid
	}
	for _, c := range cs {
		share := pool.Mul(sdkmath.NewIntFromUint64(c.EffectiveScore)).Quo(total)
		if capAtStake && share.GT(c.Stake) {
			share = c.Stake
		}
		c.Payout = share
		c.IsConsolation = capAtStake
		paid = paid.Add(share)
	}
	return paid
}

func countPaid(cs []*state.Commitment) uint64 {
	var n uint64
	for _, c := range cs {
		if c.Payout.IsPositive() {
			n++
		}
	}
	return n
}

func finalizedEvent(r *state.Round) abci.Event {
	rollover := sdkmath.ZeroInt()
	if r.Settlement != nil {
		rollover = r.Settlement.Rollover
	}
	return newEvent(types.EventTypeRoundFinalized, map[string]string{
		types.AttributeKeyRoundID:      strconv.FormatUint(r.ID, 10),
		types.AttributeKeyTotalPot:     r.Pot().String(),
		types.AttributeKeyValidWinners: strconv.FormatUint(r.ValidWinnerCount, 10),
		types.AttributeKeyConsolation:  strconv.FormatUint(r.ConsolationWinnerCount, 10),
		types.AttributeKeyNextRollover: rollover.String(),
	})
}
