package game

import (
	sdkmath "cosmossdk.io/math"

	"spellblock/internal/state"
	"spellblock/internal/types"
)

type RoundView struct {
	CurrentRoundID uint64       `json:"currentRoundId"`
	Phase          state.Phase  `json:"phase"`
	Round          *state.Round `json:"round,omitempty"`
}

type StreakView struct {
	Player          string `json:"player"`
	LastRoundPlayed uint64 `json:"lastRoundPlayed"`
	CurrentStreak   uint64 `json:"currentStreak"`
	ActiveStreak    uint64 `json:"activeStreak"`
	MultiplierBps   uint32 `json:"multiplierBps"`
}

type TreasuryView struct {
	state.TreasuryTotals
	Rollover       sdkmath.Int `json:"rolloverAmount"`
	PotEscrow      sdkmath.Int `json:"potEscrow"`
	StakerRewards  sdkmath.Int `json:"stakerRewards"`
	Operations     sdkmath.Int `json:"operations"`
	JackpotReserve sdkmath.Int `json:"jackpotReserve"`
}

// QueryRound looks up a round by id; id 0 is the current round and is not an
// error when no round has been opened yet.
func QueryRound(st *state.State, id uint64, now int64) (RoundView, error) {
	v := RoundView{CurrentRoundID: st.CurrentRoundID, Phase: state.PhaseInactive}
	if id == 0 {
		if st.CurrentRoundID == 0 {
			return v, nil
		}
		id = st.CurrentRoundID
	}
	r, err := st.Round(id)
	if err != nil {
		return RoundView{}, err
	}
	v.Round = r
	v.Phase = state.ComputePhase(r, now)
	return v, nil
}

func QueryCommitment(st *state.State, roundID uint64, player string) (*state.Commitment, error) {
	if _, err := st.Round(roundID); err != nil {
		return nil, err
	}
	c := st.Commitment(roundID, player)
	if c == nil {
		return nil, types.ErrNotCommitted.Wrapf("player %s round %d", player, roundID)
	}
	return c, nil
}

func QueryStreak(st *state.State, player string) StreakView {
	v := StreakView{Player: player}
	if s := st.Streaks[player]; s != nil {
		v.LastRoundPlayed = s.LastRoundPlayed
		v.CurrentStreak = s.CurrentStreak
	}
	v.ActiveStreak = ActiveStreak(st, player)
	v.MultiplierBps = Multiplier(v.ActiveStreak)
	return v
}

func QueryTreasury(st *state.State) TreasuryView {
	return TreasuryView{
		TreasuryTotals: st.Treasury,
		Rollover:       st.Rollover,
		PotEscrow:      st.Balance(types.PotEscrowAccount),
		StakerRewards:  st.Balance(types.StakerRewardsAccount),
		Operations:     st.Balance(types.OperationsAccount),
		JackpotReserve: st.Balance(types.JackpotReserveAccount),
	}
}
