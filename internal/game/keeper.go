package game

import (
	"sort"

	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"

	"spellblock/internal/dictionary"
	"spellblock/internal/state"
	"spellblock/internal/types"
)

// Keeper applies game operations to an explicit state. It holds no game state
// itself; callers own serialization and staging.
type Keeper struct {
	verifier dictionary.Verifier
	logger   log.Logger
}

func NewKeeper(verifier dictionary.Verifier, logger log.Logger) Keeper {
	if verifier == nil {
		verifier = dictionary.MerkleVerifier{}
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return Keeper{
		verifier: verifier,
		logger:   logger.With("module", "spellblock/game"),
	}
}

func (k Keeper) Logger() log.Logger {
	return k.logger
}

func requireOperator(st *state.State, sender string) error {
	if st.Operator == "" {
		return types.ErrUnauthorized.Wrap("no operator configured")
	}
	if sender != st.Operator {
		return types.ErrUnauthorized.Wrapf("sender %s is not the operator", sender)
	}
	return nil
}

// resolveRound treats id 0 as "the current round".
func resolveRound(st *state.State, id uint64) (*state.Round, error) {
	if id == 0 {
		id = st.CurrentRoundID
	}
	if id == 0 {
		return nil, types.ErrRoundNotFound.Wrap("no round has been opened")
	}
	return st.Round(id)
}

// sortedCommitments returns a round's commitments ordered by player so every
// node iterates them identically.
func sortedCommitments(st *state.State, roundID uint64) []*state.Commitment {
	byPlayer := st.Commitments[roundID]
	out := make([]*state.Commitment, 0, len(byPlayer))
	for _, c := range byPlayer {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Player < out[j].Player })
	return out
}

func newEvent(typ string, attrs map[string]string) abci.Event {
	ev := abci.Event{Type: typ}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		ev.Attributes = append(ev.Attributes, abci.EventAttribute{Key: k, Value: attrs[k], Index: true})
	}
	return ev
}
