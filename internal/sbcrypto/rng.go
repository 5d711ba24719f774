package sbcrypto

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// HashRNG is a deterministic byte stream keccak256(seed || counter). It is
// consensus-safe and does not depend on platform RNGs.
type HashRNG struct {
	seed    [32]byte
	counter uint64
	buf     [32]byte
	bufPos  int
}

func NewHashRNG(seed [32]byte) *HashRNG {
	return &HashRNG{seed: seed, bufPos: 32}
}

func (r *HashRNG) Read(p []byte) {
	for len(p) > 0 {
		if r.bufPos >= len(r.buf) {
			r.refill()
		}
		n := copy(p, r.buf[r.bufPos:])
		r.bufPos += n
		p = p[n:]
	}
}

func (r *HashRNG) refill() {
	var in [32 + 8]byte
	copy(in[:32], r.seed[:])
	binary.LittleEndian.PutUint64(in[32:], r.counter)
	r.counter++
	h := sha3.NewLegacyKeccak256()
	h.Write(in[:])
	copy(r.buf[:], h.Sum(nil))
	r.bufPos = 0
}

// Intn returns a uniform value in [0, n) using rejection sampling.
func (r *HashRNG) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("n must be > 0")
	}
	if n == 1 {
		return 0, nil
	}
	bound := uint64(n)
	// Largest multiple of bound that fits in uint64; draws at or above it are
	// rejected to avoid modulo bias.
	limit := ^uint64(0) - (^uint64(0) % bound)
	var b [8]byte
	for tries := 0; tries < 1_000; tries++ {
		r.Read(b[:])
		v := binary.LittleEndian.Uint64(b[:])
		if v < limit {
			return int(v % bound), nil
		}
	}
	return 0, fmt.Errorf("failed to draw Intn after many tries (n=%d)", n)
}
