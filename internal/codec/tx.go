package codec

import (
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// TxEnvelope is the transaction container. CometBFT txs are opaque bytes;
// spellblockd uses JSON so wallets and scripts can build them without a
// protobuf toolchain.
type TxEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Auth: Sig is a 65-byte secp256k1 [R || S || V] signature by Signer (an
	// Ethereum address) over the tx sign bytes. Nonce is a decimal u64 that
	// must strictly increase per signer.
	Nonce  string `json:"nonce"`
	Signer string `json:"signer"`
	Sig    []byte `json:"sig"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

const (
	TypeBankMint          = "bank/mint"
	TypeBankSend          = "bank/send"
	TypeOpenRound         = "spell/open_round"
	TypeRevealSeed        = "spell/reveal_seed"
	TypeSetDictionaryRoot = "spell/set_dictionary_root"
	TypeCommit            = "spell/commit"
	TypeReveal            = "spell/reveal"
	TypeFinalize          = "spell/finalize"
	TypeClaim             = "spell/claim"
)

// ---- Bank ----

type BankMintTx struct {
	To     string      `json:"to"`
	Amount sdkmath.Int `json:"amount"`
}

type BankSendTx struct {
	To     string      `json:"to"`
	Amount sdkmath.Int `json:"amount"`
}

// ---- Operator ----

type OpenRoundTx struct {
	SeedHash        string `json:"seedHash"`
	RulerCommitHash string `json:"rulerCommitHash"`
}

type RevealSeedTx struct {
	RoundID uint64 `json:"roundId"`
	Seed    string `json:"seed"`
}

type SetDictionaryRootTx struct {
	Root string `json:"root"`
}

// ---- Players ----

type CommitTx struct {
	RoundID    uint64      `json:"roundId,omitempty"` // 0 means the current round
	CommitHash string      `json:"commitHash"`
	Stake      sdkmath.Int `json:"stake"`
}

type RevealTx struct {
	RoundID uint64   `json:"roundId,omitempty"`
	Word    string   `json:"word"`
	Salt    string   `json:"salt"`
	Proof   []string `json:"proof,omitempty"` // hex bytes32 siblings, leaf to root
}

type FinalizeTx struct {
	RoundID uint64 `json:"roundId,omitempty"`
}

type ClaimTx struct {
	RoundID uint64 `json:"roundId"`
}
