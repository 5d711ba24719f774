package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"spellblock/internal/dictionary"
)

func newDictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dict",
		Short: "Dictionary Merkle tree tooling",
	}
	cmd.AddCommand(newDictBuildCmd(), newDictProveCmd())
	return cmd
}

func newDictBuildCmd() *cobra.Command {
	var (
		wordsPath     string
		blocklistPath string
		outPath       string
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the dictionary tree and write the proofs file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			words, err := dictionary.LoadWordsFile(wordsPath)
			if err != nil {
				return err
			}
			if blocklistPath != "" {
				f, err := os.Open(blocklistPath)
				if err != nil {
					return fmt.Errorf("open blocklist: %w", err)
				}
				bl, err := dictionary.LoadBlocklist(f)
				_ = f.Close()
				if err != nil {
					return err
				}
				words = bl.Filter(words)
			}
			tree, err := dictionary.Build(words)
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create proofs file: %w", err)
				}
				defer f.Close()
				out = f
			}
			if err := dictionary.WriteProofsFile(out, tree.ProofsFile(time.Now())); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "root %s (%d words)\n", tree.Root().Hex(), tree.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&wordsPath, "words", "words.txt", "word list, one per line")
	cmd.Flags().StringVar(&blocklistPath, "blocklist", "", "optional blocklist file")
	cmd.Flags().StringVar(&outPath, "out", "", "proofs file to write (default: stdout)")
	return cmd
}

func newDictProveCmd() *cobra.Command {
	var proofsPath string
	cmd := &cobra.Command{
		Use:   "prove <word>",
		Short: "Print the Merkle proof for a word from a proofs file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(proofsPath)
			if err != nil {
				return fmt.Errorf("open proofs file: %w", err)
			}
			defer f.Close()
			pf, err := dictionary.ReadProofsFile(f)
			if err != nil {
				return err
			}
			word := strings.ToLower(strings.TrimSpace(args[0]))
			proof, ok := pf.Proofs[word]
			if !ok {
				return fmt.Errorf("%q is not in the dictionary", word)
			}
			hexProof := make([]string, 0, len(proof))
			for _, h := range proof {
				hexProof = append(hexProof, h.Hex())
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"word":  word,
				"root":  pf.Root.Hex(),
				"proof": hexProof,
			})
		},
	}
	cmd.Flags().StringVar(&proofsPath, "proofs", "proofs.json", "proofs file written by dict build")
	return cmd
}
