package dictionary

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// Tree is a Merkle tree over dictionary words. Leaves keep insertion order;
// an unpaired node is promoted to the next level unchanged.
type Tree struct {
	words  []string
	index  map[string]int
	levels [][]common.Hash // levels[0] = leaves, last = root
}

// Build constructs a tree from words. Words are lowercased; duplicates keep
// their first position.
func Build(words []string) (*Tree, error) {
	t := &Tree{index: make(map[string]int, len(words))}
	var leaves []common.Hash
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, dup := t.index[w]; dup {
			continue
		}
		t.index[w] = len(t.words)
		t.words = append(t.words, w)
		leaves = append(leaves, Leaf(w))
	}
	if len(leaves) == 0 {
		return nil, fmt.Errorf("dictionary: no words")
	}

	h := sha3.NewLegacyKeccak256()
	t.levels = append(t.levels, leaves)
	for cur := leaves; len(cur) > 1; {
		next := make([]common.Hash, 0, (len(cur)+1)/2)
		for i := 0; i < len(cur); i += 2 {
			if i+1 == len(cur) {
				next = append(next, cur[i])
				continue
			}
			next = append(next, hashPair(h, cur[i][:], cur[i+1][:]))
		}
		t.levels = append(t.levels, next)
		cur = next
	}
	return t, nil
}

func (t *Tree) Root() common.Hash {
	top := t.levels[len(t.levels)-1]
	return top[0]
}

func (t *Tree) Len() int { return len(t.words) }

func (t *Tree) Words() []string {
	return append([]string(nil), t.words...)
}

func (t *Tree) Contains(word string) bool {
	_, ok := t.index[strings.ToLower(word)]
	return ok
}

// Proof returns the sibling path for word, or false when word is absent.
func (t *Tree) Proof(word string) ([]common.Hash, bool) {
	idx, ok := t.index[strings.ToLower(word)]
	if !ok {
		return nil, false
	}
	proof := []common.Hash{}
	for _, level := range t.levels[:len(t.levels)-1] {
		sib := idx ^ 1
		if sib < len(level) {
			proof = append(proof, level[sib])
		}
		idx /= 2
	}
	return proof, true
}
