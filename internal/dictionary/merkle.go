package dictionary

import (
	"bytes"
	"hash"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"

	"spellblock/internal/types"
)

// MaxProofDepth bounds proofs; 64 levels covers any dictionary that fits in memory.
const MaxProofDepth = 64

// Verifier is the dictionary capability consumed by reveal.
type Verifier interface {
	VerifyMembership(word string, proof [][]byte, root common.Hash) (bool, error)
}

// MerkleVerifier checks sorted-pair keccak256 Merkle proofs, the scheme used
// by OpenZeppelin's MerkleProof and merkletreejs with sortPairs.
type MerkleVerifier struct{}

var _ Verifier = MerkleVerifier{}

// Leaf is keccak256 of the lowercase word bytes.
func Leaf(word string) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(strings.ToLower(word)))
	return common.BytesToHash(h.Sum(nil))
}

func hashPair(h hash.Hash, a, b []byte) common.Hash {
	if bytes.Compare(a, b) > 0 {
		a, b = b, a
	}
	h.Reset()
	h.Write(a)
	h.Write(b)
	return common.BytesToHash(h.Sum(nil))
}

// VerifyMembership returns ErrInvalidProof for malformed proofs and
// (false, nil) for well-formed proofs that do not reach root.
func (MerkleVerifier) VerifyMembership(word string, proof [][]byte, root common.Hash) (bool, error) {
	if len(proof) > MaxProofDepth {
		return false, types.ErrInvalidProof.Wrapf("proof depth %d exceeds %d", len(proof), MaxProofDepth)
	}
	for i, p := range proof {
		if len(p) != common.HashLength {
			return false, types.ErrInvalidProof.Wrapf("proof[%d] is %d bytes, want %d", i, len(p), common.HashLength)
		}
	}
	h := sha3.NewLegacyKeccak256()
	computed := Leaf(word)
	for _, p := range proof {
		computed = hashPair(h, computed[:], p)
	}
	return computed == root, nil
}

// ProofBytes converts hash-typed proofs to the raw form VerifyMembership takes.
func ProofBytes(proof []common.Hash) [][]byte {
	out := make([][]byte, len(proof))
	for i := range proof {
		out[i] = proof[i].Bytes()
	}
	return out
}
