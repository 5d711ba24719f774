package cmd

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage secp256k1 signing keys",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Generate a new key and print its address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"address":    crypto.PubkeyToAddress(key.PublicKey).Hex(),
				"privateKey": hexutil.Encode(crypto.FromECDSA(key)),
			})
		},
	})
	return cmd
}
