package state

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	dbm "github.com/cosmos/cosmos-db"
)

var stateKey = []byte("spellblock/state")

// Store persists the whole state as one JSON value in a cosmos-db backend.
type Store struct {
	db dbm.DB
}

func NewStore(db dbm.DB) *Store {
	return &Store{db: db}
}

// OpenDB opens (or creates) the application database under <home>/data.
func OpenDB(home string, backend string) (dbm.DB, error) {
	if backend == "" {
		backend = string(dbm.GoLevelDBBackend)
	}
	db, err := dbm.NewDB("spellblock", dbm.BackendType(backend), filepath.Join(home, "data"))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return db, nil
}

// Load returns the persisted state or a fresh one when nothing is stored yet.
func (s *Store) Load() (*State, error) {
	b, err := s.db.Get(stateKey)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	if b == nil {
		return NewState(), nil
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	st.normalize()
	return &st, nil
}

func (s *Store) Save(st *State) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.db.SetSync(stateKey, b); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
