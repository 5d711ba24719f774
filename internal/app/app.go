package app

import (
	"context"
	"encoding/json"
	"sync"

	"cosmossdk.io/log"
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"

	"spellblock/internal/codec"
	"spellblock/internal/dictionary"
	"spellblock/internal/feed"
	"spellblock/internal/game"
	"spellblock/internal/sbcrypto"
	"spellblock/internal/state"
	"spellblock/internal/types"
)

const (
	AppVersion uint64 = 1
)

type Option func(*SpellApp)

// WithVerifier replaces the Merkle dictionary verifier.
func WithVerifier(v dictionary.Verifier) Option {
	return func(a *SpellApp) { a.verifier = v }
}

// WithFeed publishes committed block events to b.
func WithFeed(b *feed.Broadcaster) Option {
	return func(a *SpellApp) { a.feed = b }
}

type SpellApp struct {
	*abci.BaseApplication

	store    *state.Store
	logger   log.Logger
	verifier dictionary.Verifier
	keeper   game.Keeper
	feed     *feed.Broadcaster

	mu        sync.Mutex
	st        *state.State
	committed *state.State
	lastHash  []byte
	pending   []abci.Event
}

func New(store *state.Store, logger log.Logger, opts ...Option) (*SpellApp, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	st, err := store.Load()
	if err != nil {
		return nil, err
	}
	committed, err := st.Clone()
	if err != nil {
		return nil, err
	}
	a := &SpellApp{
		BaseApplication: abci.NewBaseApplication(),
		store:           store,
		logger:          logger.With("module", "spellblock/app"),
		st:              st,
		committed:       committed,
		lastHash:        st.AppHash(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.keeper = game.NewKeeper(a.verifier, logger)
	return a, nil
}

// Committed returns the state as of the last Commit. The value is never
// mutated afterwards and may be read without holding the app lock.
func (a *SpellApp) Committed() *state.State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.committed
}

func (a *SpellApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "spellblock",
		Version:          "v1",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.st.Height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

// CheckTx rejects malformed, unsigned and replayed txs before they reach the
// mempool. Game rules are only enforced at execution.
func (a *SpellApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	env, err := codec.DecodeTxEnvelope(req.Tx)
	if err != nil {
		return checkErr(types.ErrInvalidRequest.Wrap(err.Error())), nil
	}
	a.mu.Lock()
	_, _, err = authenticate(a.st, env)
	a.mu.Unlock()
	if err != nil {
		return checkErr(err), nil
	}
	return &abci.CheckTxResponse{Code: 0}, nil
}

func (a *SpellApp) InitChain(_ context.Context, req *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := applyGenesis(a.st, req.AppStateBytes); err != nil {
		return nil, err
	}
	committed, err := a.st.Clone()
	if err != nil {
		return nil, err
	}
	a.committed = committed
	a.lastHash = a.st.AppHash()
	a.logger.Info("genesis applied", "chain_id", req.ChainId, "operator", a.st.Operator, "dictionary_root", a.st.DictionaryRoot.Hex())
	return &abci.InitChainResponse{AppHash: a.lastHash}, nil
}

func (a *SpellApp) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := req.Time.Unix()
	a.st.Height = req.Height
	a.st.BlockTime = now
	a.pending = a.pending[:0]

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for _, txBytes := range req.Txs {
		res := a.deliverTx(txBytes, now)
		if res.Code == 0 {
			a.pending = append(a.pending, res.Events...)
		}
		txResults = append(txResults, res)
	}

	blockEvents := a.endBlock(now)
	a.pending = append(a.pending, blockEvents...)

	a.lastHash = a.st.AppHash()

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		Events:    blockEvents,
		AppHash:   a.lastHash,
	}, nil
}

// endBlock settles the current round once its reveal deadline has passed,
// even if nobody sends a finalize tx.
func (a *SpellApp) endBlock(now int64) []abci.Event {
	staged, err := a.st.Clone()
	if err != nil {
		a.logger.Error("clone state for end block", "err", err)
		return nil
	}
	events, err := a.keeper.FinalizeDue(staged, now)
	if err != nil {
		a.logger.Error("automatic finalize failed", "height", a.st.Height, "err", err)
		return nil
	}
	if len(events) > 0 {
		a.st = staged
	}
	return events
}

func (a *SpellApp) Commit(_ context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.store.Save(a.st); err != nil {
		// Halt the node rather than diverge from the committed app hash.
		return nil, err
	}
	committed, err := a.st.Clone()
	if err != nil {
		return nil, err
	}
	a.committed = committed
	a.feed.PublishBlock(a.st.Height, a.pending)
	a.pending = nil
	return &abci.CommitResponse{}, nil
}

// deliverTx executes one tx against a staged copy of state and keeps the copy
// only when every step succeeded.
func (a *SpellApp) deliverTx(txBytes []byte, now int64) *abci.ExecTxResult {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return execErr(types.ErrInvalidRequest.Wrap(err.Error()))
	}
	staged, err := a.st.Clone()
	if err != nil {
		return execErr(err)
	}
	events, err := a.execTx(staged, env, now)
	if err != nil {
		a.logger.Debug("tx rejected", "type", env.Type, "signer", env.Signer, "err", err)
		return execErr(err)
	}
	a.st = staged
	return &abci.ExecTxResult{Code: 0, Events: events}
}

func (a *SpellApp) execTx(st *state.State, env codec.TxEnvelope, now int64) ([]abci.Event, error) {
	signer, nonce, err := authenticate(st, env)
	if err != nil {
		return nil, err
	}
	st.NonceMax[signer] = nonce

	k := a.keeper
	switch env.Type {
	case codec.TypeBankMint:
		var msg codec.BankMintTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		to, err := parseRecipient(msg.To)
		if err != nil {
			return nil, err
		}
		return k.Mint(st, signer, to, msg.Amount)

	case codec.TypeBankSend:
		var msg codec.BankSendTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		to, err := parseRecipient(msg.To)
		if err != nil {
			return nil, err
		}
		return k.Send(st, signer, to, msg.Amount)

	case codec.TypeOpenRound:
		var msg codec.OpenRoundTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		seedHash, err := parseHash("seedHash", msg.SeedHash)
		if err != nil {
			return nil, err
		}
		rulerHash, err := parseHash("rulerCommitHash", msg.RulerCommitHash)
		if err != nil {
			return nil, err
		}
		_, events, err := k.OpenRound(st, now, signer, seedHash, rulerHash)
		return events, err

	case codec.TypeRevealSeed:
		var msg codec.RevealSeedTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		seed, err := parseHash("seed", msg.Seed)
		if err != nil {
			return nil, err
		}
		return k.RevealSeed(st, now, signer, msg.RoundID, seed)

	case codec.TypeSetDictionaryRoot:
		var msg codec.SetDictionaryRootTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		root, err := parseHash("root", msg.Root)
		if err != nil {
			return nil, err
		}
		return k.SetDictionaryRoot(st, signer, root)

	case codec.TypeCommit:
		var msg codec.CommitTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		hash, err := parseHash("commitHash", msg.CommitHash)
		if err != nil {
			return nil, err
		}
		return k.Commit(st, now, signer, msg.RoundID, hash, orZero(msg.Stake))

	case codec.TypeReveal:
		var msg codec.RevealTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		salt, err := parseHash("salt", msg.Salt)
		if err != nil {
			return nil, err
		}
		proof, err := sbcrypto.ParseProof(msg.Proof)
		if err != nil {
			return nil, types.ErrInvalidProof.Wrap(err.Error())
		}
		return k.Reveal(st, now, signer, msg.RoundID, msg.Word, salt, proof)

	case codec.TypeFinalize:
		var msg codec.FinalizeTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return k.Finalize(st, now, msg.RoundID)

	case codec.TypeClaim:
		var msg codec.ClaimTx
		if err := decodeValue(env, &msg); err != nil {
			return nil, err
		}
		return k.ClaimPayout(st, signer, msg.RoundID)

	default:
		return nil, types.ErrInvalidRequest.Wrapf("unknown tx type: %s", env.Type)
	}
}

func decodeValue(env codec.TxEnvelope, v any) error {
	if len(env.Value) == 0 {
		return types.ErrInvalidRequest.Wrapf("missing %s value", env.Type)
	}
	if err := json.Unmarshal(env.Value, v); err != nil {
		return types.ErrInvalidRequest.Wrapf("bad %s value: %v", env.Type, err)
	}
	return nil
}

// parseRecipient accepts an Ethereum address or the jackpot reserve account.
func parseRecipient(to string) (string, error) {
	if to == types.JackpotReserveAccount {
		return to, nil
	}
	return types.ParseAccount(to)
}

func parseHash(field, s string) (common.Hash, error) {
	b, err := sbcrypto.ParseBytes32(s)
	if err != nil {
		return common.Hash{}, types.ErrInvalidRequest.Wrapf("%s: %v", field, err)
	}
	return common.Hash(b), nil
}

func orZero(x sdkmath.Int) sdkmath.Int {
	if x.IsNil() {
		return sdkmath.ZeroInt()
	}
	return x
}

func execErr(err error) *abci.ExecTxResult {
	codespace, code, log := errorsmod.ABCIInfo(err, false)
	return &abci.ExecTxResult{Code: code, Codespace: codespace, Log: log}
}

func checkErr(err error) *abci.CheckTxResponse {
	codespace, code, log := errorsmod.ABCIInfo(err, false)
	return &abci.CheckTxResponse{Code: code, Codespace: codespace, Log: log}
}
