package sbcrypto

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// ParseBytes32 decodes a salt, seed, hash or proof node written as 64 hex
// digits, with or without the 0x prefix.
func ParseBytes32(s string) ([32]byte, error) {
	var out [32]byte
	digits := strings.TrimSpace(s)
	if len(digits) >= 2 && (digits[:2] == "0x" || digits[:2] == "0X") {
		digits = digits[2:]
	}
	if len(digits) != 2*len(out) {
		return out, fmt.Errorf("bytes32: want 64 hex digits, got %d", len(digits))
	}
	if _, err := hex.Decode(out[:], []byte(digits)); err != nil {
		return out, fmt.Errorf("bytes32: %w", err)
	}
	return out, nil
}

// ParseProof decodes Merkle proof siblings ordered leaf to root.
func ParseProof(nodes []string) ([][]byte, error) {
	out := make([][]byte, 0, len(nodes))
	for i, n := range nodes {
		node, err := ParseBytes32(n)
		if err != nil {
			return nil, fmt.Errorf("proof[%d]: %w", i, err)
		}
		out = append(out, node[:])
	}
	return out, nil
}
