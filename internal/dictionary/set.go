package dictionary

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Set is an in-memory dictionary that ignores proofs and roots. It is meant
// for tests and local tooling.
type Set map[string]struct{}

var _ Verifier = Set(nil)

func NewSet(words ...string) Set {
	s := make(Set, len(words))
	for _, w := range words {
		s[strings.ToLower(w)] = struct{}{}
	}
	return s
}

func (s Set) VerifyMembership(word string, _ [][]byte, _ common.Hash) (bool, error) {
	_, ok := s[strings.ToLower(word)]
	return ok, nil
}
