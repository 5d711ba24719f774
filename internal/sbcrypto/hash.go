package sbcrypto

import (
	"encoding/binary"
	"hash"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

func updateLenBytes(h hash.Hash, b []byte) {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(b)))
	h.Write(lenBuf[:])
	h.Write(b)
}

// HashDomain is keccak256 over a domain tag and length-prefixed parts. Domain
// strings become part of consensus; never change an existing one.
func HashDomain(domain string, parts ...[]byte) common.Hash {
	h := sha3.NewLegacyKeccak256()
	updateLenBytes(h, []byte(domain))
	for _, p := range parts {
		updateLenBytes(h, p)
	}
	return common.BytesToHash(h.Sum(nil))
}

func U64LE(x uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, x)
	return b
}
