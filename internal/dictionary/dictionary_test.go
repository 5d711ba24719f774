package dictionary

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"spellblock/internal/types"
)

func TestLeaf_IsKeccakOfLowercase(t *testing.T) {
	require.Equal(t, crypto.Keccak256Hash([]byte("spell")), Leaf("SPELL"))
}

func TestTree_ProofsVerifyForAllSizes(t *testing.T) {
	v := MerkleVerifier{}
	for n := 1; n <= 17; n++ {
		var words []string
		for i := 0; i < n; i++ {
			words = append(words, fmt.Sprintf("word%02d", i))
		}
		tree, err := Build(words)
		require.NoError(t, err)
		require.Equal(t, n, tree.Len())

		for _, w := range words {
			proof, ok := tree.Proof(w)
			require.True(t, ok)
			got, err := v.VerifyMembership(strings.ToUpper(w), ProofBytes(proof), tree.Root())
			require.NoError(t, err)
			require.True(t, got, "n=%d word=%s", n, w)
		}

		got, err := v.VerifyMembership("absent", nil, tree.Root())
		require.NoError(t, err)
		require.False(t, got)
	}
}

func TestTree_ThreeLeavesPromotesOddNode(t *testing.T) {
	tree, err := Build([]string{"a", "b", "c"})
	require.NoError(t, err)

	la, lb, lc := Leaf("a"), Leaf("b"), Leaf("c")
	ab := sortedHash(la, lb)
	require.Equal(t, sortedHash(ab, lc), tree.Root())

	proof, ok := tree.Proof("c")
	require.True(t, ok)
	require.Equal(t, []common.Hash{ab}, proof)
}

func sortedHash(a, b common.Hash) common.Hash {
	if bytes.Compare(a[:], b[:]) > 0 {
		a, b = b, a
	}
	return crypto.Keccak256Hash(a[:], b[:])
}

func TestVerify_WrongWordOrRoot(t *testing.T) {
	tree, err := Build([]string{"spell", "block", "chain", "merkle"})
	require.NoError(t, err)
	proof, _ := tree.Proof("spell")

	v := MerkleVerifier{}
	ok, err := v.VerifyMembership("spelt", ProofBytes(proof), tree.Root())
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = v.VerifyMembership("spell", ProofBytes(proof), common.Hash{1})
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerify_MalformedProof(t *testing.T) {
	v := MerkleVerifier{}
	_, err := v.VerifyMembership("spell", [][]byte{{1, 2, 3}}, common.Hash{})
	require.True(t, errors.Is(err, types.ErrInvalidProof))

	deep := make([][]byte, MaxProofDepth+1)
	for i := range deep {
		deep[i] = make([]byte, 32)
	}
	_, err = v.VerifyMembership("spell", deep, common.Hash{})
	require.True(t, errors.Is(err, types.ErrInvalidProof))
}

func TestBuild_DedupAndEmpty(t *testing.T) {
	tree, err := Build([]string{"Spell", "spell", " block ", ""})
	require.NoError(t, err)
	require.Equal(t, 2, tree.Len())
	require.True(t, tree.Contains("BLOCK"))

	_, err = Build([]string{"", "  "})
	require.Error(t, err)
}

func TestSet(t *testing.T) {
	s := NewSet("Spell", "block")
	ok, err := s.VerifyMembership("SPELL", nil, common.Hash{})
	require.NoError(t, err)
	require.True(t, ok)
	ok, _ = s.VerifyMembership("chain", nil, common.Hash{})
	require.False(t, ok)
}

func TestBlocklist(t *testing.T) {
	b, err := LoadBlocklist(strings.NewReader("# comment\nbad\n*vile\n\n"))
	require.NoError(t, err)
	require.True(t, b.Blocked("BAD"))
	require.False(t, b.Blocked("badge"))
	require.True(t, b.Blocked("revileS"))
	require.Equal(t, []string{"badge", "spell"}, b.Filter([]string{"bad", "badge", "vileness", "spell"}))

	var nilList *Blocklist
	require.False(t, nilList.Blocked("bad"))
}

func TestProofsFile_RoundTrip(t *testing.T) {
	words, err := LoadWords(strings.NewReader("Hello\nworld\n\nSpellblock\n"))
	require.NoError(t, err)
	require.Equal(t, []string{"hello", "world", "spellblock"}, words)

	tree, err := Build(words)
	require.NoError(t, err)

	var buf bytes.Buffer
	gen := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, WriteProofsFile(&buf, tree.ProofsFile(gen)))

	pf, err := ReadProofsFile(&buf)
	require.NoError(t, err)
	require.Equal(t, tree.Root(), pf.Root)
	require.Equal(t, 3, pf.TotalWords)
	require.True(t, gen.Equal(pf.Generated))

	ok, err := MerkleVerifier{}.VerifyMembership("world", ProofBytes(pf.Proofs["world"]), pf.Root)
	require.NoError(t, err)
	require.True(t, ok)
}
