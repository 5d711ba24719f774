package state

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

type Round struct {
	ID uint64 `json:"id"`

	StartTime      int64 `json:"startTime"`
	CommitDeadline int64 `json:"commitDeadline"`
	RevealDeadline int64 `json:"revealDeadline"`

	// Public from open.
	LetterPool      string      `json:"letterPool"`
	SeedHash        common.Hash `json:"seedHash"`
	RulerCommitHash common.Hash `json:"rulerCommitHash"`

	// Zero until the operator reveals the seed.
	RevealedSeed common.Hash `json:"revealedSeed"`
	SpellID      uint8       `json:"spellId"`
	SpellParam   string      `json:"spellParam,omitempty"`
	ValidLengths []int       `json:"validLengths,omitempty"`

	TotalPot             sdkmath.Int `json:"totalPot"`
	RolloverFromPrevious sdkmath.Int `json:"rolloverFromPrevious"`
	JackpotBonus         sdkmath.Int `json:"jackpotBonus"`
	CommitCount          uint64      `json:"commitCount"`
	RevealCount          uint64      `json:"revealCount"`

	Finalized              bool        `json:"finalized"`
	Voided                 bool        `json:"voided,omitempty"`
	ValidWinnerCount       uint64      `json:"validWinnerCount"`
	ConsolationWinnerCount uint64      `json:"consolationWinnerCount"`
	Settlement             *Settlement `json:"settlement,omitempty"`
}

// SeedRevealed is the only authoritative signal that spell and ruler are visible.
func (r *Round) SeedRevealed() bool {
	return r != nil && r.RevealedSeed != (common.Hash{})
}

// Pot is totalPot + jackpotBonus + rolloverFromPrevious.
func (r *Round) Pot() sdkmath.Int {
	return r.TotalPot.Add(r.JackpotBonus).Add(r.RolloverFromPrevious)
}

type Commitment struct {
	Player          string      `json:"player"`
	CommitHash      common.Hash `json:"commitHash"`
	Stake           sdkmath.Int `json:"stake"`
	CommitTimestamp int64       `json:"commitTimestamp"`

	Revealed  bool `json:"revealed"`
	Forfeited bool `json:"forfeited"`

	Word           string `json:"word,omitempty"`
	SpellPass      bool   `json:"spellPass"`
	LengthValid    bool   `json:"lengthValid"`
	BaseScore      uint64 `json:"baseScore"`
	EffectiveScore uint64 `json:"effectiveScore"`
	Streak         uint64 `json:"streak"`

	Payout        sdkmath.Int `json:"payout"`
	IsConsolation bool        `json:"isConsolation,omitempty"`
	IsRefund      bool        `json:"isRefund,omitempty"`
	Claimed       bool        `json:"claimed"`
}

type Streak struct {
	LastRoundPlayed uint64 `json:"lastRoundPlayed"`
	CurrentStreak   uint64 `json:"currentStreak"`
}

// Settlement is the audit record of one finalization. Every field is an
// amount moved out of the round pot P.
type Settlement struct {
	Pot                sdkmath.Int `json:"pot"`
	LoserBurn          sdkmath.Int `json:"loserBurn"`
	TreasuryBurn       sdkmath.Int `json:"treasuryBurn"`
	StakerRewards      sdkmath.Int `json:"stakerRewards"`
	Operations         sdkmath.Int `json:"operations"`
	WinnerPayouts      sdkmath.Int `json:"winnerPayouts"`
	ConsolationPayouts sdkmath.Int `json:"consolationPayouts"`
	Refunds            sdkmath.Int `json:"refunds"`
	Rollover           sdkmath.Int `json:"rollover"`
}

// TreasuryCut counts every burn plus the staker and operations shares.
func (s *Settlement) TreasuryCut() sdkmath.Int {
	return s.LoserBurn.Add(s.TreasuryBurn).Add(s.StakerRewards).Add(s.Operations)
}

// Payouts is everything credited back to players.
func (s *Settlement) Payouts() sdkmath.Int {
	return s.WinnerPayouts.Add(s.ConsolationPayouts).Add(s.Refunds)
}

// Balanced reports whether payouts + treasury cut + rollover == pot.
func (s *Settlement) Balanced() bool {
	return s.Payouts().Add(s.TreasuryCut()).Add(s.Rollover).Equal(s.Pot)
}

func NewSettlement(pot sdkmath.Int) *Settlement {
	z := sdkmath.ZeroInt()
	return &Settlement{
		Pot:                pot,
		LoserBurn:          z,
		TreasuryBurn:       z,
		StakerRewards:      z,
		Operations:         z,
		WinnerPayouts:      z,
		ConsolationPayouts: z,
		Refunds:            z,
		Rollover:           z,
	}
}

type TreasuryTotals struct {
	TotalBurned               sdkmath.Int `json:"totalBurned"`
	TotalDistributedToStakers sdkmath.Int `json:"totalDistributedToStakers"`
	TotalToOperations         sdkmath.Int `json:"totalToOperations"`
	TotalDistributedToWinners sdkmath.Int `json:"totalDistributedToWinners"`
}
