package game

import (
	sdkmath "cosmossdk.io/math"
	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/ethereum/go-ethereum/common"

	"spellblock/internal/state"
	"spellblock/internal/types"
)

// Mint credits new tokens. Only the operator may mint; the jackpot reserve is
// funded this way.
func (k Keeper) Mint(st *state.State, sender, to string, amount sdkmath.Int) ([]abci.Event, error) {
	if err := requireOperator(st, sender); err != nil {
		return nil, err
	}
	if to != types.JackpotReserveAccount && types.IsModuleAccount(to) {
		return nil, types.ErrInvalidRequest.Wrapf("cannot mint to %s", to)
	}
	if amount.IsNil() || !amount.IsPositive() {
		return nil, types.ErrInvalidRequest.Wrap("amount must be > 0")
	}
	if err := st.Credit(to, amount); err != nil {
		return nil, err
	}
	return []abci.Event{newEvent(types.EventTypeBankMinted, map[string]string{
		types.AttributeKeyTo:     to,
		types.AttributeKeyAmount: amount.String(),
	})}, nil
}

// Send moves tokens between accounts. The only module account a player may
// send to is the jackpot reserve.
func (k Keeper) Send(st *state.State, from, to string, amount sdkmath.Int) ([]abci.Event, error) {
	if types.IsModuleAccount(to) && to != types.JackpotReserveAccount {
		return nil, types.ErrInvalidRequest.Wrapf("cannot send to %s", to)
	}
	if to == from {
		return nil, types.ErrInvalidRequest.Wrap("cannot send to self")
	}
	if amount.IsNil() || !amount.IsPositive() {
		return nil, types.ErrInvalidRequest.Wrap("amount must be > 0")
	}
	if err := st.Transfer(from, to, amount); err != nil {
		return nil, err
	}
	return []abci.Event{newEvent(types.EventTypeBankSent, map[string]string{
		types.AttributeKeyFrom:   from,
		types.AttributeKeyTo:     to,
		types.AttributeKeyAmount: amount.String(),
	})}, nil
}

// SetDictionaryRoot replaces the Merkle root reveals are verified against.
func (k Keeper) SetDictionaryRoot(st *state.State, sender string, root common.Hash) ([]abci.Event, error) {
	if err := requireOperator(st, sender); err != nil {
		return nil, err
	}
	if root == (common.Hash{}) {
		return nil, types.ErrInvalidRequest.Wrap("dictionary root is required")
	}
	st.DictionaryRoot = root
	k.logger.Info("dictionary root updated", "root", root.Hex())
	return []abci.Event{newEvent(types.EventTypeDictionaryRoot, map[string]string{
		types.AttributeKeyRoot: root.Hex(),
	})}, nil
}
