package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

const (
	// MaxBps is 100% expressed in basis points.
	MaxBps uint32 = 10_000

	// maxWindowSecs bounds schedule durations so deadline math stays far from
	// int64 overflow.
	maxWindowSecs uint64 = 365 * 24 * 60 * 60
)

// ScoringScheme selects how a word's base score is computed. A chain uses
// exactly one scheme for its whole lifetime.
type ScoringScheme string

const (
	ScoringLength      ScoringScheme = "length"
	ScoringLetterValue ScoringScheme = "letter_value"
)

// Schedule describes the fixed round cadence. Slots start at AnchorSecs +
// k*CadenceSecs (unix seconds).
type Schedule struct {
	AnchorSecs  int64  `json:"anchorSecs"`
	CadenceSecs uint64 `json:"cadenceSecs"`
	CommitSecs  uint64 `json:"commitSecs"`
	RevealSecs  uint64 `json:"revealSecs"`
}

type Params struct {
	MinStake sdkmath.Int `json:"minStake"`

	// Treasury cut, each taken from the distributable pot.
	BurnBps       uint32 `json:"burnBps"`
	StakersBps    uint32 `json:"stakersBps"`
	OperationsBps uint32 `json:"operationsBps"`

	// WinnerBps of the post-treasury remainder goes to full winners; the rest
	// is the consolation pool.
	WinnerBps uint32 `json:"winnerBps"`

	JackpotThreshold sdkmath.Int `json:"jackpotThreshold"`
	JackpotBonus     sdkmath.Int `json:"jackpotBonus"`

	Scoring  ScoringScheme `json:"scoring"`
	Schedule Schedule      `json:"schedule"`
}

func DefaultSchedule() Schedule {
	return Schedule{
		AnchorSecs:  16 * 60 * 60, // 16:00 UTC
		CadenceSecs: 24 * 60 * 60,
		CommitSecs:  16 * 60 * 60,    // until 08:00 UTC
		RevealSecs:  7*60*60 + 45*60, // until 15:45 UTC
	}
}

func DefaultParams() Params {
	return Params{
		MinStake:         sdkmath.NewInt(1_000_000),
		BurnBps:          100, // 1%
		StakersBps:       100, // 1%
		OperationsBps:    100, // 1%
		WinnerBps:        9000,
		JackpotThreshold: sdkmath.NewInt(1_000_000_000),
		JackpotBonus:     sdkmath.NewInt(100_000_000),
		Scoring:          ScoringLength,
		Schedule:         DefaultSchedule(),
	}
}

// TreasuryBps is the total treasury cut.
func (p Params) TreasuryBps() uint32 {
	return p.BurnBps + p.StakersBps + p.OperationsBps
}

func (p Params) Validate() error {
	if p.MinStake.IsNil() || !p.MinStake.IsPositive() {
		return fmt.Errorf("min_stake must be > 0")
	}
	if p.BurnBps > MaxBps || p.StakersBps > MaxBps || p.OperationsBps > MaxBps {
		return fmt.Errorf("treasury bps must each be <= %d", MaxBps)
	}
	if p.TreasuryBps() > MaxBps {
		return fmt.Errorf("treasury bps sum must be <= %d", MaxBps)
	}
	if p.WinnerBps > MaxBps {
		return fmt.Errorf("winner_bps must be <= %d", MaxBps)
	}
	if p.JackpotThreshold.IsNil() || p.JackpotThreshold.IsNegative() {
		return fmt.Errorf("jackpot_threshold must be >= 0")
	}
	if p.JackpotBonus.IsNil() || p.JackpotBonus.IsNegative() {
		return fmt.Errorf("jackpot_bonus must be >= 0")
	}
	switch p.Scoring {
	case ScoringLength, ScoringLetterValue:
	default:
		return fmt.Errorf("unknown scoring scheme %q", p.Scoring)
	}
	return p.Schedule.Validate()
}

func (s Schedule) Validate() error {
	if s.CadenceSecs == 0 || s.CommitSecs == 0 || s.RevealSecs == 0 {
		return fmt.Errorf("schedule durations must be > 0")
	}
	if s.CadenceSecs > maxWindowSecs || s.CommitSecs > maxWindowSecs || s.RevealSecs > maxWindowSecs {
		return fmt.Errorf("schedule durations must be <= %d seconds", maxWindowSecs)
	}
	if s.CommitSecs+s.RevealSecs > s.CadenceSecs {
		return fmt.Errorf("commit_secs + reveal_secs must fit in cadence_secs (%d > %d)", s.CommitSecs+s.RevealSecs, s.CadenceSecs)
	}
	if s.AnchorSecs < 0 {
		return fmt.Errorf("anchor_secs must be >= 0")
	}
	return nil
}
