package sbcrypto

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// CommitHash binds a word to a round and a player:
//
//	keccak256(abi.encodePacked(uint256 roundId, address player, string word, bytes32 salt))
//
// The word is lowercased first so the hash matches what wallets produce.
func CommitHash(roundID uint64, player common.Address, word string, salt [32]byte) common.Hash {
	rid := uint256.NewInt(roundID).Bytes32()
	return crypto.Keccak256Hash(
		rid[:],
		player.Bytes(),
		[]byte(strings.ToLower(word)),
		salt[:],
	)
}

// NewSalt draws a fresh 32-byte salt from the OS CSPRNG. Salts must never be
// reused across rounds.
func NewSalt() ([32]byte, error) {
	var salt [32]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return salt, fmt.Errorf("read salt: %w", err)
	}
	if salt == ([32]byte{}) {
		return salt, fmt.Errorf("read salt: all-zero output")
	}
	return salt, nil
}

// SaltFingerprint is what the ledger remembers about a revealed salt.
func SaltFingerprint(salt [32]byte) common.Hash {
	return crypto.Keccak256Hash([]byte(saltDomain), salt[:])
}

const saltDomain = "spellblock/v1/salt"
