package app

import (
	"crypto/ecdsa"
	"strconv"

	"github.com/ethereum/go-ethereum/crypto"

	"spellblock/internal/codec"
	"spellblock/internal/state"
	"spellblock/internal/types"
)

const txAuthDomain = "spellblock/tx/v1"

// TxSignHash is the digest a signer signs:
//
//	keccak256(DOMAIN || 0x00 || type || 0x00 || nonce || 0x00 || signer || 0x00 || keccak256(value))
func TxSignHash(typ string, value []byte, nonce string, signer string) []byte {
	sum := crypto.Keccak256(value)
	out := make([]byte, 0, len(txAuthDomain)+1+len(typ)+1+len(nonce)+1+len(signer)+1+len(sum))
	out = append(out, []byte(txAuthDomain)...)
	out = append(out, 0)
	out = append(out, []byte(typ)...)
	out = append(out, 0)
	out = append(out, []byte(nonce)...)
	out = append(out, 0)
	out = append(out, []byte(signer)...)
	out = append(out, 0)
	out = append(out, sum...)
	return crypto.Keccak256(out)
}

// SignTx fills Signer and Sig for env using key.
func SignTx(env *codec.TxEnvelope, key *ecdsa.PrivateKey) error {
	env.Signer = types.AccountKey(crypto.PubkeyToAddress(key.PublicKey))
	sig, err := crypto.Sign(TxSignHash(env.Type, env.Value, env.Nonce, env.Signer), key)
	if err != nil {
		return err
	}
	env.Sig = sig
	return nil
}

func requireSignedEnvelope(env codec.TxEnvelope) error {
	if env.Nonce == "" {
		return types.ErrUnauthorized.Wrap("missing tx.nonce")
	}
	if env.Signer == "" {
		return types.ErrUnauthorized.Wrap("missing tx.signer")
	}
	if len(env.Sig) != crypto.SignatureLength {
		return types.ErrUnauthorized.Wrapf("invalid tx.sig length: got %d want %d", len(env.Sig), crypto.SignatureLength)
	}
	return nil
}

// authenticate recovers the signer from the signature and checks the nonce
// against st. It returns the signer's ledger key and the parsed nonce; it
// does not record the nonce.
func authenticate(st *state.State, env codec.TxEnvelope) (string, uint64, error) {
	if err := requireSignedEnvelope(env); err != nil {
		return "", 0, err
	}
	signer, err := types.ParseAccount(env.Signer)
	if err != nil {
		return "", 0, types.ErrUnauthorized.Wrapf("invalid tx.signer %q", env.Signer)
	}
	nonce, err := strconv.ParseUint(env.Nonce, 10, 64)
	if err != nil {
		return "", 0, types.ErrUnauthorized.Wrapf("invalid tx.nonce %q", env.Nonce)
	}

	pub, err := crypto.SigToPub(TxSignHash(env.Type, env.Value, env.Nonce, env.Signer), env.Sig)
	if err != nil {
		return "", 0, types.ErrUnauthorized.Wrap("invalid signature")
	}
	if types.AccountKey(crypto.PubkeyToAddress(*pub)) != signer {
		return "", 0, types.ErrUnauthorized.Wrap("invalid signature")
	}

	if last, ok := st.NonceMax[signer]; ok && nonce <= last {
		return "", 0, types.ErrUnauthorized.Wrapf("replayed tx.nonce %d (last %d)", nonce, last)
	}
	return signer, nonce, nil
}
