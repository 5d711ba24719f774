package game

import (
	"spellblock/internal/state"
	"spellblock/internal/words"
)

// carryStreak resets the streak of a player who skipped the previous round
// and returns the streak they carry into roundID.
func carryStreak(st *state.State, player string, roundID uint64) uint64 {
	s := st.Streak(player)
	if s.LastRoundPlayed != roundID && s.LastRoundPlayed+1 != roundID {
		s.CurrentStreak = 0
	}
	return s.CurrentStreak
}

// recordReveal counts a reveal in roundID toward the streak.
func recordReveal(st *state.State, player string, roundID uint64) uint64 {
	s := st.Streak(player)
	switch {
	case s.LastRoundPlayed == roundID:
		// already counted
	case s.LastRoundPlayed+1 == roundID:
		s.CurrentStreak++
	default:
		s.CurrentStreak = 1
	}
	s.LastRoundPlayed = roundID
	return s.CurrentStreak
}

// ActiveStreak is the streak a player would carry into the current round.
func ActiveStreak(st *state.State, player string) uint64 {
	s := st.Streaks[player]
	if s == nil {
		return 0
	}
	if s.LastRoundPlayed == st.CurrentRoundID || s.LastRoundPlayed+1 == st.CurrentRoundID {
		return s.CurrentStreak
	}
	return 0
}

// Multiplier is the streak multiplier in basis points.
func Multiplier(streak uint64) uint32 {
	return words.StreakMultiplierBps(streak)
}
