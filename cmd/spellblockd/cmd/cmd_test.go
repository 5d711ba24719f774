package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"spellblock/internal/app"
	"spellblock/internal/codec"
	"spellblock/internal/dictionary"
	"spellblock/internal/puzzle"
	"spellblock/internal/sbcrypto"
)

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	require.NoError(t, root.Execute(), "stderr: %s", errOut.String())
	return out.Bytes()
}

func TestCommitHashCmd(t *testing.T) {
	player := "0x1111111111111111111111111111111111111111"
	salt := "0xab" + strings.Repeat("00", 31)

	var got map[string]any
	require.NoError(t, json.Unmarshal(run(t, "commit-hash", "--round", "7", "--player", player, "--word", "Spoke", "--salt", salt), &got))

	s, err := sbcrypto.ParseBytes32(salt)
	require.NoError(t, err)
	want := sbcrypto.CommitHash(7, common.HexToAddress(player), "spoke", s)
	require.Equal(t, want.Hex(), got["commitHash"])
}

func TestCommitHashCmd_RejectsBadPlayer(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"commit-hash", "--player", "bob", "--word", "x", "--salt", "0x00"})
	require.ErrorContains(t, root.Execute(), "--player")
}

func TestSeedCmd_Deterministic(t *testing.T) {
	seedHex := "0x" + strings.Repeat("07", 32)
	var got seedOutput
	require.NoError(t, json.Unmarshal(run(t, "seed", "--round", "3", "--seed", seedHex), &got))

	seed, err := sbcrypto.ParseBytes32(seedHex)
	require.NoError(t, err)
	want, err := puzzle.Commit(seed, 3)
	require.NoError(t, err)
	require.Equal(t, want.SeedHash, got.SeedHash)
	require.Equal(t, want.RulerCommitHash, got.RulerCommitHash)
	require.Equal(t, want.LetterPool, got.LetterPool)
	require.Equal(t, want.ValidLengths, got.ValidLengths)
}

func TestSaltCmd(t *testing.T) {
	var got map[string]string
	require.NoError(t, json.Unmarshal(run(t, "salt"), &got))
	s, err := sbcrypto.ParseBytes32(got["salt"])
	require.NoError(t, err)
	require.Equal(t, sbcrypto.SaltFingerprint(s).Hex(), got["fingerprint"])
}

func TestDictBuildAndProve(t *testing.T) {
	dir := t.TempDir()
	wordsPath := filepath.Join(dir, "words.txt")
	blockPath := filepath.Join(dir, "blocklist.txt")
	proofsPath := filepath.Join(dir, "proofs.json")
	require.NoError(t, os.WriteFile(wordsPath, []byte("Spoke\nslop\n\nblocks\nspoke\ndarn\n"), 0o644))
	require.NoError(t, os.WriteFile(blockPath, []byte("# rude\ndarn\n"), 0o644))

	run(t, "dict", "build", "--words", wordsPath, "--blocklist", blockPath, "--out", proofsPath)

	f, err := os.Open(proofsPath)
	require.NoError(t, err)
	defer f.Close()
	pf, err := dictionary.ReadProofsFile(f)
	require.NoError(t, err)
	require.Equal(t, 3, pf.TotalWords)
	require.NotContains(t, pf.Proofs, "darn")

	var got struct {
		Root  string   `json:"root"`
		Proof []string `json:"proof"`
	}
	require.NoError(t, json.Unmarshal(run(t, "dict", "prove", "--proofs", proofsPath, "SLOP"), &got))
	require.Equal(t, pf.Root.Hex(), got.Root)

	proof := make([][]byte, 0, len(got.Proof))
	for _, p := range got.Proof {
		b, err := hexutil.Decode(p)
		require.NoError(t, err)
		proof = append(proof, b)
	}
	ok, err := dictionary.MerkleVerifier{}.VerifyMembership("slop", proof, pf.Root)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestKeysNewAndTxSign(t *testing.T) {
	var key map[string]string
	require.NoError(t, json.Unmarshal(run(t, "keys", "new"), &key))
	require.True(t, common.IsHexAddress(key["address"]))

	raw := run(t, "tx", "sign", codec.TypeClaim, "--key", key["privateKey"], "--nonce", "5", "--value", `{ "roundId": 2 }`)
	env, err := codec.DecodeTxEnvelope(bytes.TrimSpace(raw))
	require.NoError(t, err)
	require.Equal(t, codec.TypeClaim, env.Type)
	require.Equal(t, "5", env.Nonce)
	require.JSONEq(t, `{"roundId":2}`, string(env.Value))

	pub, err := crypto.SigToPub(app.TxSignHash(env.Type, env.Value, env.Nonce, env.Signer), env.Sig)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(key["address"]), crypto.PubkeyToAddress(*pub))
}
