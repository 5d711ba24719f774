package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"spellblock/internal/types"
)

type State struct {
	Height    int64 `json:"height"`
	BlockTime int64 `json:"blockTime"` // unix seconds of the last finalized block

	Operator       string       `json:"operator"`
	DictionaryRoot common.Hash  `json:"dictionaryRoot"`
	Params         types.Params `json:"params"`

	CurrentRoundID uint64                            `json:"currentRoundId"`
	Rounds         map[uint64]*Round                 `json:"rounds"`
	Commitments    map[uint64]map[string]*Commitment `json:"commitments"`
	Streaks        map[string]*Streak                `json:"streaks"`
	SaltsSeen      map[string]map[string]uint64      `json:"saltsSeen,omitempty"` // player -> salt fingerprint -> roundId

	Accounts map[string]sdkmath.Int `json:"accounts"`
	NonceMax map[string]uint64      `json:"nonceMax,omitempty"` // signer -> last accepted tx.nonce, for replay protection

	// Rollover waits in the pot escrow until the next round opens.
	Rollover sdkmath.Int    `json:"rollover"`
	Treasury TreasuryTotals `json:"treasury"`
}

func NewState() *State {
	st := &State{Params: types.DefaultParams()}
	st.normalize()
	return st
}

func orZero(x sdkmath.Int) sdkmath.Int {
	if x.IsNil() {
		return sdkmath.ZeroInt()
	}
	return x
}

// normalize fills nil maps and nil amounts left by older or partial JSON.
func (s *State) normalize() {
	if s.Rounds == nil {
		s.Rounds = map[uint64]*Round{}
	}
	if s.Commitments == nil {
		s.Commitments = map[uint64]map[string]*Commitment{}
	}
	if s.Streaks == nil {
		s.Streaks = map[string]*Streak{}
	}
	if s.SaltsSeen == nil {
		s.SaltsSeen = map[string]map[string]uint64{}
	}
	if s.Accounts == nil {
		s.Accounts = map[string]sdkmath.Int{}
	}
	if s.NonceMax == nil {
		s.NonceMax = map[string]uint64{}
	}
	s.Rollover = orZero(s.Rollover)
	s.Treasury.TotalBurned = orZero(s.Treasury.TotalBurned)
	s.Treasury.TotalDistributedToStakers = orZero(s.Treasury.TotalDistributedToStakers)
	s.Treasury.TotalToOperations = orZero(s.Treasury.TotalToOperations)
	s.Treasury.TotalDistributedToWinners = orZero(s.Treasury.TotalDistributedToWinners)
	s.Params.MinStake = orZero(s.Params.MinStake)
	s.Params.JackpotThreshold = orZero(s.Params.JackpotThreshold)
	s.Params.JackpotBonus = orZero(s.Params.JackpotBonus)

	for _, r := range s.Rounds {
		r.TotalPot = orZero(r.TotalPot)
		r.RolloverFromPrevious = orZero(r.RolloverFromPrevious)
		r.JackpotBonus = orZero(r.JackpotBonus)
	}
	for _, byPlayer := range s.Commitments {
		for _, c := range byPlayer {
			c.Stake = orZero(c.Stake)
			c.Payout = orZero(c.Payout)
		}
	}
}

// Clone returns a deep copy of state suitable for staged tx execution.
func (s *State) Clone() (*State, error) {
	if s == nil {
		return nil, fmt.Errorf("state is nil")
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode state clone: %w", err)
	}
	var out State
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode state clone: %w", err)
	}
	out.normalize()
	return &out, nil
}

// AppHash is sha256 of the JSON encoding. encoding/json writes map keys in
// sorted order, so the encoding is canonical for a given state.
func (s *State) AppHash() []byte {
	b, err := json.Marshal(s)
	if err != nil {
		panic(fmt.Sprintf("encode state for app hash: %v", err))
	}
	sum := sha256.Sum256(b)
	return sum[:]
}

// ---- Rounds ----

func (s *State) Round(id uint64) (*Round, error) {
	r, ok := s.Rounds[id]
	if !ok || r == nil {
		return nil, types.ErrRoundNotFound.Wrapf("round %d", id)
	}
	return r, nil
}

func (s *State) CurrentRound() *Round {
	if s.CurrentRoundID == 0 {
		return nil
	}
	return s.Rounds[s.CurrentRoundID]
}

func (s *State) Commitment(roundID uint64, player string) *Commitment {
	byPlayer := s.Commitments[roundID]
	if byPlayer == nil {
		return nil
	}
	return byPlayer[player]
}

func (s *State) PutCommitment(roundID uint64, c *Commitment) {
	byPlayer := s.Commitments[roundID]
	if byPlayer == nil {
		byPlayer = map[string]*Commitment{}
		s.Commitments[roundID] = byPlayer
	}
	byPlayer[c.Player] = c
}

// Streak returns the player's streak record, creating an empty one.
func (s *State) Streak(player string) *Streak {
	st := s.Streaks[player]
	if st == nil {
		st = &Streak{}
		s.Streaks[player] = st
	}
	return st
}

// ---- Bank ----

func (s *State) Balance(addr string) sdkmath.Int {
	return orZero(s.Accounts[addr])
}

func (s *State) Credit(addr string, amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return types.ErrInvalidRequest.Wrap("credit amount must be >= 0")
	}
	if amount.IsZero() {
		return nil
	}
	s.Accounts[addr] = s.Balance(addr).Add(amount)
	return nil
}

func (s *State) Debit(addr string, amount sdkmath.Int) error {
	if amount.IsNil() || amount.IsNegative() {
		return types.ErrInvalidRequest.Wrap("debit amount must be >= 0")
	}
	bal := s.Balance(addr)
	if bal.LT(amount) {
		return types.ErrInsufficientFunds.Wrapf("have=%s need=%s", bal, amount)
	}
	if amount.IsZero() {
		return nil
	}
	s.Accounts[addr] = bal.Sub(amount)
	return nil
}

func (s *State) Transfer(from, to string, amount sdkmath.Int) error {
	if err := s.Debit(from, amount); err != nil {
		return err
	}
	return s.Credit(to, amount)
}
