package main

import (
	"github.com/spf13/cobra"

	"vic/internal/repl"
	"vic/internal/version"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Format lines interactively",
	Long: `Start an interactive session that formats each entered line. Settings
come from vic.toml and flags; :help lists the commands that change them.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	addFormatFlags(replCmd)
}

func runRepl(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveSettings(cmd, ".")
	if err != nil {
		return err
	}
	session, err := repl.NewSession(cfg.Dialect, cfg.Options)
	if err != nil {
		return err
	}
	return repl.Start(cmd.OutOrStdout(), session, version.Colored(version.Version))
}
