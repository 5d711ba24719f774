package state

// Phase is always derived from block time and the round record; it is never stored.
type Phase string

const (
	PhaseInactive  Phase = "inactive"
	PhaseCommit    Phase = "commit"
	PhaseReveal    Phase = "reveal"
	PhaseStalled   Phase = "stalled" // commit window closed but seed not revealed
	PhaseFinalized Phase = "finalized"
)

// ComputePhase is a pure function of the round and now (unix seconds).
// Finalized means settlement is due, not that it has happened; check
// Round.Finalized for that.
func ComputePhase(r *Round, now int64) Phase {
	switch {
	case r == nil || r.ID == 0:
		return PhaseInactive
	case now < r.StartTime:
		return PhaseInactive
	case now < r.CommitDeadline:
		return PhaseCommit
	case now < r.RevealDeadline:
		if !r.SeedRevealed() {
			return PhaseStalled
		}
		return PhaseReveal
	default:
		return PhaseFinalized
	}
}
