package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"spellblock/internal/app"
	"spellblock/internal/codec"
)

func newTxCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Build transactions",
	}
	cmd.AddCommand(newTxSignCmd(v))
	return cmd
}

func newTxSignCmd(v *viper.Viper) *cobra.Command {
	var (
		value string
		nonce string
	)
	cmd := &cobra.Command{
		Use:   "sign <type>",
		Short: "Sign a tx envelope and print the bytes to broadcast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyHex := strings.TrimPrefix(v.GetString("key"), "0x")
			if keyHex == "" {
				return fmt.Errorf("--key or SPELLBLOCK_KEY is required")
			}
			key, err := crypto.HexToECDSA(keyHex)
			if err != nil {
				return fmt.Errorf("parse key: %w", err)
			}
			// The envelope is re-encoded compactly, so sign the compact form.
			var compact bytes.Buffer
			if err := json.Compact(&compact, []byte(value)); err != nil {
				return fmt.Errorf("--value must be JSON: %w", err)
			}
			if nonce == "" {
				nonce = strconv.FormatInt(time.Now().UnixNano(), 10)
			}
			if _, err := strconv.ParseUint(nonce, 10, 64); err != nil {
				return fmt.Errorf("--nonce: %w", err)
			}

			env := codec.TxEnvelope{Type: args[0], Value: json.RawMessage(compact.Bytes()), Nonce: nonce}
			if err := app.SignTx(&env, key); err != nil {
				return err
			}
			bz, err := json.Marshal(env)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(bz))
			return err
		},
	}
	cmd.Example = `  spellblockd tx sign spell/commit --key 0x... \
    --value '{"roundId":1,"commitHash":"0x...","stake":"100"}'`
	cmd.Flags().String("key", "", "hex secp256k1 private key")
	cmd.Flags().StringVar(&value, "value", "{}", "tx value as JSON")
	cmd.Flags().StringVar(&nonce, "nonce", "", "decimal nonce (default: unix nanoseconds)")
	bindFlags(v, cmd.Flags(), map[string]string{"key": "key"})
	return cmd
}
