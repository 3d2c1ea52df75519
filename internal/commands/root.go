package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balance-mate/balancemate/internal/buildinfo"
	"github.com/balance-mate/balancemate/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "balancemate",
		Short:   "Turn bank statement exports into balance reports",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.FileName, "config file")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newTemplateCommand(&configPath))
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newConvertCommand(&configPath))

	return rootCmd
}
