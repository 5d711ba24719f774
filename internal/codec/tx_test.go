package codec

import (
	"encoding/json"
	"testing"

	sdkmath "cosmossdk.io/math"
)

func TestDecodeTxEnvelope_OK(t *testing.T) {
	b, err := json.Marshal(map[string]any{
		"type":   TypeCommit,
		"value":  map[string]any{"roundId": 3, "commitHash": "0xab", "stake": "2000000"},
		"nonce":  "1",
		"signer": "0x1111111111111111111111111111111111111111",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	env, err := DecodeTxEnvelope(b)
	if err != nil {
		t.Fatalf("DecodeTxEnvelope: %v", err)
	}
	if env.Type != TypeCommit {
		t.Fatalf("unexpected type: %q", env.Type)
	}

	var msg CommitTx
	if err := json.Unmarshal(env.Value, &msg); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if msg.RoundID != 3 || msg.CommitHash != "0xab" {
		t.Fatalf("unexpected value: %+v", msg)
	}
	if !msg.Stake.Equal(sdkmath.NewInt(2_000_000)) {
		t.Fatalf("unexpected stake: %s", msg.Stake)
	}
}

func TestDecodeTxEnvelope_MissingType(t *testing.T) {
	b, err := json.Marshal(map[string]any{
		"value": map[string]any{"x": 1},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := DecodeTxEnvelope(b); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDecodeTxEnvelope_InvalidJSON(t *testing.T) {
	if _, err := DecodeTxEnvelope([]byte("{")); err == nil {
		t.Fatalf("expected error")
	}
}

func TestAmountsRejectNonNumeric(t *testing.T) {
	var msg BankSendTx
	if err := json.Unmarshal([]byte(`{"to":"0x1","amount":"ten"}`), &msg); err == nil {
		t.Fatalf("expected amount decode error")
	}
}
