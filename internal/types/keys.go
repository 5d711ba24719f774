package types

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// ModuleName is also the codespace of every registered error.
	ModuleName = "spellblock"

	// Module accounts held in the ledger bank. They are not Ethereum addresses
	// and can never sign a transaction.
	PotEscrowAccount      = "spellblock/pot"
	StakerRewardsAccount  = "spellblock/stakers"
	OperationsAccount     = "spellblock/operations"
	JackpotReserveAccount = "spellblock/jackpot"
)

// BurnAddress receives burned stakes. Nothing can move funds out of it.
var BurnAddress = common.HexToAddress("0x000000000000000000000000000000000000dEaD")

// AccountKey is the canonical ledger key for an Ethereum address.
func AccountKey(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// ParseAccount validates a hex address and returns its ledger key.
func ParseAccount(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return "", ErrInvalidRequest.Wrapf("invalid address %q", s)
	}
	return AccountKey(common.HexToAddress(s)), nil
}

// BurnAccount is the ledger key of BurnAddress.
func BurnAccount() string {
	return AccountKey(BurnAddress)
}

// IsModuleAccount reports whether key names a module account.
func IsModuleAccount(key string) bool {
	return strings.HasPrefix(key, ModuleName+"/")
}
