package app

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"strconv"
	"strings"
	"testing"
	"time"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"spellblock/internal/codec"
	"spellblock/internal/dictionary"
	"spellblock/internal/feed"
	"spellblock/internal/game"
	"spellblock/internal/puzzle"
	"spellblock/internal/sbcrypto"
	"spellblock/internal/state"
	"spellblock/internal/types"
)

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}

type testSigner struct {
	key   *ecdsa.PrivateKey
	addr  string
	nonce uint64
}

func newSigner(t *testing.T, name string) *testSigner {
	t.Helper()
	key, err := crypto.ToECDSA(crypto.Keccak256([]byte(name)))
	if err != nil {
		t.Fatalf("key %s: %v", name, err)
	}
	return &testSigner{key: key, addr: types.AccountKey(crypto.PubkeyToAddress(key.PublicKey))}
}

func (s *testSigner) tx(t *testing.T, typ string, value any) []byte {
	t.Helper()
	s.nonce++
	env := codec.TxEnvelope{Type: typ, Value: mustMarshal(t, value), Nonce: strconv.FormatUint(s.nonce, 10)}
	if err := SignTx(&env, s.key); err != nil {
		t.Fatalf("sign: %v", err)
	}
	return mustMarshal(t, env)
}

type testChain struct {
	app    *SpellApp
	store  *state.Store
	dict   dictionary.Set
	height int64
	op     *testSigner
	alice  *testSigner
	bob    *testSigner
}

func newTestChain(t *testing.T, opts ...Option) *testChain {
	t.Helper()
	c := &testChain{
		store: state.NewStore(dbm.NewMemDB()),
		dict:  dictionary.NewSet(),
		op:    newSigner(t, "operator"),
		alice: newSigner(t, "alice"),
		bob:   newSigner(t, "bob"),
	}
	opts = append([]Option{WithVerifier(c.dict)}, opts...)
	a, err := New(c.store, log.NewNopLogger(), opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.app = a

	gen := DefaultGenesis(c.op.addr)
	gen.Params.MinStake = sdkmath.NewInt(10)
	gen.Params.Schedule = types.Schedule{AnchorSecs: 0, CadenceSecs: 1000, CommitSecs: 600, RevealSecs: 300}
	gen.DictionaryRoot = "0x" + strings.Repeat("01", 32)
	gen.Balances = []GenesisBalance{
		{Address: c.alice.addr, Amount: sdkmath.NewInt(1000)},
		{Address: c.bob.addr, Amount: sdkmath.NewInt(1000)},
	}
	if _, err := a.InitChain(context.Background(), &abci.InitChainRequest{ChainId: "test", AppStateBytes: mustMarshal(t, gen)}); err != nil {
		t.Fatalf("InitChain: %v", err)
	}
	return c
}

// block finalizes and commits one block at unix time now.
func (c *testChain) block(t *testing.T, now int64, txs ...[]byte) *abci.FinalizeBlockResponse {
	t.Helper()
	c.height++
	res, err := c.app.FinalizeBlock(context.Background(), &abci.FinalizeBlockRequest{
		Height: c.height,
		Time:   time.Unix(now, 0),
		Txs:    txs,
	})
	if err != nil {
		t.Fatalf("FinalizeBlock: %v", err)
	}
	if _, err := c.app.Commit(context.Background(), &abci.CommitRequest{}); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return res
}

func (c *testChain) query(t *testing.T, path string, out any) *abci.QueryResponse {
	t.Helper()
	res, err := c.app.Query(context.Background(), &abci.QueryRequest{Path: path})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Code == 0 && out != nil {
		if err := json.Unmarshal(res.Value, out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return res
}

func mustOk(t *testing.T, res *abci.ExecTxResult) *abci.ExecTxResult {
	t.Helper()
	if res.Code != 0 {
		t.Fatalf("expected ok, got code=%d log=%q", res.Code, res.Log)
	}
	return res
}

func findEvent(events []abci.Event, typ string) *abci.Event {
	for i := range events {
		if events[i].Type == typ {
			return &events[i]
		}
	}
	return nil
}

func seedOf(b byte) [32]byte {
	var s [32]byte
	for i := range s {
		s[i] = b
	}
	return s
}

func TestGenesis(t *testing.T) {
	c := newTestChain(t)
	var bal struct {
		Balance sdkmath.Int `json:"balance"`
	}
	c.query(t, "/account/"+c.alice.addr, &bal)
	if !bal.Balance.Equal(sdkmath.NewInt(1000)) {
		t.Fatalf("alice balance = %s", bal.Balance)
	}
	if got := c.app.Committed().Operator; got != c.op.addr {
		t.Fatalf("operator = %s want %s", got, c.op.addr)
	}
}

func TestReplayProtection(t *testing.T) {
	c := newTestChain(t)

	tx := c.alice.tx(t, codec.TypeBankSend, codec.BankSendTx{To: c.bob.addr, Amount: sdkmath.NewInt(1)})
	res := c.block(t, 1, tx, tx)
	mustOk(t, res.TxResults[0])
	if res.TxResults[1].Code == 0 || !strings.Contains(res.TxResults[1].Log, "replayed tx.nonce") {
		t.Fatalf("expected replay rejection, got code=%d log=%q", res.TxResults[1].Code, res.TxResults[1].Log)
	}
	if res.TxResults[1].Codespace != types.ModuleName {
		t.Fatalf("codespace = %q", res.TxResults[1].Codespace)
	}

	var env codec.TxEnvelope
	if err := json.Unmarshal(c.alice.tx(t, codec.TypeBankSend, codec.BankSendTx{To: c.bob.addr, Amount: sdkmath.NewInt(1)}), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	env.Value = mustMarshal(t, codec.BankSendTx{To: c.bob.addr, Amount: sdkmath.NewInt(500)})
	res = c.block(t, 2, mustMarshal(t, env))
	if !strings.Contains(res.TxResults[0].Log, "invalid signature") {
		t.Fatalf("expected signature rejection, got %q", res.TxResults[0].Log)
	}

	env.Nonce = "seven"
	chk, err := c.app.CheckTx(context.Background(), &abci.CheckTxRequest{Tx: mustMarshal(t, env)})
	if err != nil {
		t.Fatalf("CheckTx: %v", err)
	}
	if chk.Code != types.ErrUnauthorized.ABCICode() || !strings.Contains(chk.Log, "invalid tx.nonce") {
		t.Fatalf("unexpected CheckTx result code=%d log=%q", chk.Code, chk.Log)
	}
}

func TestOperatorOnlyTxs(t *testing.T) {
	c := newTestChain(t)
	res := c.block(t, 1,
		c.alice.tx(t, codec.TypeBankMint, codec.BankMintTx{To: c.alice.addr, Amount: sdkmath.NewInt(5)}),
		c.op.tx(t, codec.TypeBankMint, codec.BankMintTx{To: types.JackpotReserveAccount, Amount: sdkmath.NewInt(5)}),
	)
	if res.TxResults[0].Code != types.ErrUnauthorized.ABCICode() {
		t.Fatalf("expected unauthorized mint, got code=%d log=%q", res.TxResults[0].Code, res.TxResults[0].Log)
	}
	mustOk(t, res.TxResults[1])
	if got := c.app.Committed().Balance(types.JackpotReserveAccount); !got.Equal(sdkmath.NewInt(5)) {
		t.Fatalf("jackpot reserve = %s", got)
	}
}

func TestFailedTxLeavesStateUntouched(t *testing.T) {
	c := newTestChain(t)
	seed := seedOf(3)
	com, err := puzzle.Commit(seed, 1)
	if err != nil {
		t.Fatalf("puzzle.Commit: %v", err)
	}
	mustOk(t, c.block(t, 0, c.op.tx(t, codec.TypeOpenRound, codec.OpenRoundTx{
		SeedHash: com.SeedHash.Hex(), RulerCommitHash: com.RulerCommitHash.Hex(),
	})).TxResults[0])

	before := c.app.Committed()
	res := c.block(t, 10, c.alice.tx(t, codec.TypeCommit, codec.CommitTx{
		CommitHash: "0x" + strings.Repeat("ab", 32),
		Stake:      sdkmath.NewInt(5000),
	}))
	if res.TxResults[0].Code != types.ErrInsufficientFunds.ABCICode() {
		t.Fatalf("expected insufficient funds, got code=%d log=%q", res.TxResults[0].Code, res.TxResults[0].Log)
	}
	after := c.app.Committed()
	if after.Rounds[1].CommitCount != 0 || !after.Balance(c.alice.addr).Equal(before.Balance(c.alice.addr)) {
		t.Fatalf("failed commit changed state")
	}
	if after.NonceMax[c.alice.addr] != before.NonceMax[c.alice.addr] {
		t.Fatalf("failed tx consumed nonce")
	}
}

func TestFullRound_AutoFinalizeAndClaim(t *testing.T) {
	sub := feed.NewBroadcaster()
	events := sub.Subscribe()
	defer sub.Unsubscribe(events)
	c := newTestChain(t, WithFeed(sub))

	seed := seedOf(5)
	com, err := puzzle.Commit(seed, 1)
	if err != nil {
		t.Fatalf("puzzle.Commit: %v", err)
	}
	word := strings.ToLower(com.LetterPool[:4])
	c.dict[word] = struct{}{}

	res := c.block(t, 0, c.op.tx(t, codec.TypeOpenRound, codec.OpenRoundTx{
		SeedHash: com.SeedHash.Hex(), RulerCommitHash: com.RulerCommitHash.Hex(),
	}))
	mustOk(t, res.TxResults[0])
	if ev := <-events; ev.Type != types.EventTypeRoundStarted {
		t.Fatalf("first feed event = %s", ev.Type)
	}

	var view game.RoundView
	c.query(t, "/round/current", &view)
	if view.CurrentRoundID != 1 || view.Phase != state.PhaseCommit || view.Round.LetterPool != com.LetterPool {
		t.Fatalf("unexpected current round %+v", view)
	}
	if view.Round.SeedRevealed() {
		t.Fatalf("seed visible during commit phase")
	}

	saltA, saltB := seedOf(0xa1), seedOf(0xb2)
	players := []*testSigner{c.alice, c.bob}
	salts := [][32]byte{saltA, saltB}
	var txs [][]byte
	for i, p := range players {
		hash := sbcrypto.CommitHash(1, crypto.PubkeyToAddress(p.key.PublicKey), word, salts[i])
		txs = append(txs, p.tx(t, codec.TypeCommit, codec.CommitTx{RoundID: 1, CommitHash: hash.Hex(), Stake: sdkmath.NewInt(100)}))
	}
	for _, r := range c.block(t, 10, txs...).TxResults {
		mustOk(t, r)
	}

	res = c.block(t, 600, c.op.tx(t, codec.TypeRevealSeed, codec.RevealSeedTx{RoundID: 1, Seed: hexutil.Encode(seed[:])}))
	mustOk(t, res.TxResults[0])

	txs = nil
	for i, p := range players {
		txs = append(txs, p.tx(t, codec.TypeReveal, codec.RevealTx{RoundID: 1, Word: strings.ToUpper(word), Salt: hexutil.Encode(salts[i][:])}))
	}
	for _, r := range c.block(t, 601, txs...).TxResults {
		mustOk(t, r)
	}

	// No finalize tx: the end-of-block sweep settles the round at the deadline.
	res = c.block(t, 900)
	if findEvent(res.Events, types.EventTypeRoundFinalized) == nil {
		t.Fatalf("expected RoundFinalized in block events, got %v", res.Events)
	}
	fin := c.alice.tx(t, codec.TypeFinalize, codec.FinalizeTx{RoundID: 1})
	if r := c.block(t, 901, fin).TxResults[0]; r.Code != types.ErrAlreadyFinalized.ABCICode() {
		t.Fatalf("expected already finalized, got code=%d log=%q", r.Code, r.Log)
	}

	c.query(t, "/round/1", &view)
	if !view.Round.Finalized || view.Round.Settlement == nil || !view.Round.Settlement.Balanced() {
		t.Fatalf("round not settled: %+v", view.Round)
	}

	var cm state.Commitment
	c.query(t, "/commitment/1/"+c.alice.addr, &cm)
	claim := c.alice.tx(t, codec.TypeClaim, codec.ClaimTx{RoundID: 1})
	r := c.block(t, 902, claim).TxResults[0]
	if cm.Payout.IsPositive() {
		mustOk(t, r)
		if findEvent(r.Events, types.EventTypePlayerPaid) == nil {
			t.Fatalf("expected PlayerPaid")
		}
	} else if r.Code != types.ErrNothingToClaim.ABCICode() {
		t.Fatalf("expected nothing to claim, got code=%d log=%q", r.Code, r.Log)
	}

	var streak game.StreakView
	c.query(t, "/streak/"+c.bob.addr, &streak)
	if streak.CurrentStreak != 1 || streak.LastRoundPlayed != 1 {
		t.Fatalf("unexpected streak %+v", streak)
	}
}

func TestQueries(t *testing.T) {
	c := newTestChain(t)

	var view game.RoundView
	c.query(t, "/round/current", &view)
	if view.CurrentRoundID != 0 || view.Phase != state.PhaseInactive || view.Round != nil {
		t.Fatalf("unexpected empty view %+v", view)
	}

	var mult struct {
		MultiplierBps uint32 `json:"multiplierBps"`
	}
	c.query(t, "/multiplier/10", &mult)
	if mult.MultiplierBps != 12500 {
		t.Fatalf("multiplier(10) = %d", mult.MultiplierBps)
	}

	if res := c.query(t, "/round/7", nil); res.Code != types.ErrRoundNotFound.ABCICode() {
		t.Fatalf("expected round not found, got %d", res.Code)
	}
	if res := c.query(t, "/nope", nil); res.Code == 0 {
		t.Fatalf("expected unknown path error")
	}
	if res := c.query(t, "/account/"+types.PotEscrowAccount, nil); res.Code != 0 {
		t.Fatalf("module account query failed: %s", res.Log)
	}
	var tv game.TreasuryView
	c.query(t, "/treasury", &tv)
	if !tv.TotalBurned.IsZero() {
		t.Fatalf("unexpected treasury %+v", tv)
	}
}

func TestRestartKeepsAppHash(t *testing.T) {
	c := newTestChain(t)
	mustOk(t, c.block(t, 1, c.alice.tx(t, codec.TypeBankSend, codec.BankSendTx{To: c.bob.addr, Amount: sdkmath.NewInt(7)})).TxResults[0])

	info, err := c.app.Info(context.Background(), &abci.InfoRequest{})
	if err != nil {
		t.Fatalf("Info: %v", err)
	}

	reopened, err := New(c.store, log.NewNopLogger())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	info2, err := reopened.Info(context.Background(), &abci.InfoRequest{})
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info2.LastBlockHeight != info.LastBlockHeight || string(info2.LastBlockAppHash) != string(info.LastBlockAppHash) {
		t.Fatalf("restart changed height/app hash")
	}
	if got := reopened.Committed().Balance(c.bob.addr); !got.Equal(sdkmath.NewInt(1007)) {
		t.Fatalf("bob balance after restart = %s", got)
	}
}
