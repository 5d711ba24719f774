package cmd

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"spellblock/internal/config"
)

// NewRootCmd creates the spellblockd command tree. It is called once in main.
func NewRootCmd() *cobra.Command {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:           "spellblockd",
		Short:         "SpellBlock commit-reveal word game daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// set the default command outputs
			cmd.SetOut(cmd.OutOrStdout())
			cmd.SetErr(cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("home", config.DefaultHome, "node home directory (state under <home>/data, config under <home>/config)")
	flags.String("log-level", "info", `log level ("info" or "spellblock/game:debug,*:info")`)
	flags.String("log-format", "plain", "log format (plain|json)")
	bindFlags(v, flags, map[string]string{
		"home":       "home",
		"log.level":  "log-level",
		"log.format": "log-format",
	})

	rootCmd.AddCommand(
		newStartCmd(v),
		newCommitHashCmd(),
		newSaltCmd(),
		newSeedCmd(),
		newDictCmd(),
		newKeysCmd(),
		newTxCmd(v),
	)
	return rootCmd
}

// bindFlags binds config keys to flag names so flags override env and file
// values.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
