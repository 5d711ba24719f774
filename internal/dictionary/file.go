package dictionary

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// LoadWords reads a words.txt style list: one word per line, lowercased and
// trimmed. Blank lines are dropped.
func LoadWords(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		w := strings.ToLower(strings.TrimSpace(sc.Text()))
		if w == "" {
			continue
		}
		out = append(out, w)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read words: %w", err)
	}
	return out, nil
}

func LoadWordsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open words: %w", err)
	}
	defer f.Close()
	return LoadWords(f)
}

// ProofsFile is the JSON document clients load to build reveal proofs.
type ProofsFile struct {
	Root       common.Hash              `json:"root"`
	Generated  time.Time                `json:"generated"`
	TotalWords int                      `json:"totalWords"`
	Proofs     map[string][]common.Hash `json:"proofs"`
}

func (t *Tree) ProofsFile(generated time.Time) ProofsFile {
	pf := ProofsFile{
		Root:       t.Root(),
		Generated:  generated.UTC(),
		TotalWords: t.Len(),
		Proofs:     make(map[string][]common.Hash, t.Len()),
	}
	for _, w := range t.words {
		p, _ := t.Proof(w)
		pf.Proofs[w] = p
	}
	return pf
}

func WriteProofsFile(w io.Writer, pf ProofsFile) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(pf); err != nil {
		return fmt.Errorf("encode proofs: %w", err)
	}
	return nil
}

func ReadProofsFile(r io.Reader) (ProofsFile, error) {
	var pf ProofsFile
	if err := json.NewDecoder(r).Decode(&pf); err != nil {
		return ProofsFile{}, fmt.Errorf("decode proofs: %w", err)
	}
	if pf.Proofs == nil {
		pf.Proofs = map[string][]common.Hash{}
	}
	return pf, nil
}
