package dictionary

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Blocklist removes offensive words from a dictionary build. Entries prefixed
// with "*" match anywhere inside a word; others match whole words.
type Blocklist struct {
	exact     map[string]struct{}
	fragments []string
}

func NewBlocklist(entries ...string) *Blocklist {
	b := &Blocklist{exact: map[string]struct{}{}}
	for _, e := range entries {
		b.add(e)
	}
	return b
}

func (b *Blocklist) add(entry string) {
	e := strings.ToLower(strings.TrimSpace(entry))
	if e == "" || strings.HasPrefix(e, "#") {
		return
	}
	if frag, ok := strings.CutPrefix(e, "*"); ok {
		if frag != "" {
			b.fragments = append(b.fragments, frag)
		}
		return
	}
	b.exact[e] = struct{}{}
}

// LoadBlocklist reads one entry per line; blank lines and # comments are skipped.
func LoadBlocklist(r io.Reader) (*Blocklist, error) {
	b := NewBlocklist()
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		b.add(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read blocklist: %w", err)
	}
	return b, nil
}

func (b *Blocklist) Blocked(word string) bool {
	if b == nil {
		return false
	}
	w := strings.ToLower(word)
	if _, ok := b.exact[w]; ok {
		return true
	}
	for _, f := range b.fragments {
		if strings.Contains(w, f) {
			return true
		}
	}
	return false
}

// Filter returns words that are not blocked, preserving order.
func (b *Blocklist) Filter(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !b.Blocked(w) {
			out = append(out, w)
		}
	}
	return out
}
