package cmd

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"spellblock/internal/puzzle"
	"spellblock/internal/sbcrypto"
)

func newCommitHashCmd() *cobra.Command {
	var (
		roundID uint64
		player  string
		word    string
		salt    string
	)
	cmd := &cobra.Command{
		Use:   "commit-hash",
		Short: "Compute the commit hash for a word",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !common.IsHexAddress(player) {
				return fmt.Errorf("--player must be a 0x address, got %q", player)
			}
			if word == "" {
				return fmt.Errorf("--word is required")
			}
			s, err := sbcrypto.ParseBytes32(salt)
			if err != nil {
				return fmt.Errorf("--salt: %w", err)
			}
			hash := sbcrypto.CommitHash(roundID, common.HexToAddress(player), word, s)
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"roundId":    roundID,
				"player":     common.HexToAddress(player).Hex(),
				"commitHash": hash.Hex(),
			})
		},
	}
	cmd.Flags().Uint64Var(&roundID, "round", 0, "round id")
	cmd.Flags().StringVar(&player, "player", "", "player address")
	cmd.Flags().StringVar(&word, "word", "", "word to commit")
	cmd.Flags().StringVar(&salt, "salt", "", "32-byte hex salt")
	return cmd
}

func newSaltCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "salt",
		Short: "Generate a fresh 32-byte salt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := sbcrypto.NewSalt()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"salt":        hexutil.Encode(s[:]),
				"fingerprint": sbcrypto.SaltFingerprint(s).Hex(),
			})
		},
	}
}

type seedOutput struct {
	RoundID uint64 `json:"roundId"`
	Seed    string `json:"seed"`
	puzzle.Commitments
}

func newSeedCmd() *cobra.Command {
	var (
		roundID uint64
		seedHex string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a round seed and the commitments the operator publishes at open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if roundID == 0 {
				return fmt.Errorf("--round is required")
			}
			var (
				seed [32]byte
				err  error
			)
			if seedHex != "" {
				seed, err = sbcrypto.ParseBytes32(seedHex)
			} else {
				seed, err = puzzle.NewSeed()
			}
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			c, err := puzzle.Commit(seed, roundID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), seedOutput{
				RoundID:     roundID,
				Seed:        hexutil.Encode(seed[:]),
				Commitments: c,
			})
		},
	}
	cmd.Flags().Uint64Var(&roundID, "round", 0, "round id the seed is for")
	cmd.Flags().StringVar(&seedHex, "seed", "", "existing 32-byte hex seed (default: random)")
	return cmd
}
