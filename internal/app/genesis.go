package app

import (
	"encoding/json"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"spellblock/internal/state"
	"spellblock/internal/types"
)

// GenesisState is the app_state section of the CometBFT genesis file.
type GenesisState struct {
	Operator       string           `json:"operator"`
	DictionaryRoot string           `json:"dictionaryRoot,omitempty"`
	Params         *types.Params    `json:"params,omitempty"`
	Balances       []GenesisBalance `json:"balances,omitempty"`
}

type GenesisBalance struct {
	Address string      `json:"address"`
	Amount  sdkmath.Int `json:"amount"`
}

func DefaultGenesis(operator string) GenesisState {
	p := types.DefaultParams()
	return GenesisState{Operator: operator, Params: &p}
}

func applyGenesis(st *state.State, raw []byte) error {
	if len(raw) == 0 {
		return nil
	}
	var gen GenesisState
	if err := json.Unmarshal(raw, &gen); err != nil {
		return fmt.Errorf("decode app state: %w", err)
	}

	if gen.Operator != "" {
		op, err := types.ParseAccount(gen.Operator)
		if err != nil {
			return fmt.Errorf("genesis operator: %w", err)
		}
		st.Operator = op
	}
	if gen.DictionaryRoot != "" {
		root, err := parseHash("dictionaryRoot", gen.DictionaryRoot)
		if err != nil {
			return fmt.Errorf("genesis: %w", err)
		}
		st.DictionaryRoot = root
	}
	if gen.Params != nil {
		if err := gen.Params.Validate(); err != nil {
			return fmt.Errorf("genesis params: %w", err)
		}
		st.Params = *gen.Params
	}
	for i, b := range gen.Balances {
		addr := b.Address
		if addr != types.JackpotReserveAccount {
			var err error
			if addr, err = types.ParseAccount(addr); err != nil {
				return fmt.Errorf("genesis balances[%d]: %w", i, err)
			}
		}
		if err := st.Credit(addr, orZero(b.Amount)); err != nil {
			return fmt.Errorf("genesis balances[%d]: %w", i, err)
		}
	}
	return nil
}
