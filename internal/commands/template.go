package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/balance-mate/balancemate/internal/config"
	"github.com/balance-mate/balancemate/internal/report"
)

func newTemplateCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "template [path]",
		Short: "Generate the default report template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			path := cfg.Paths.Template
			if len(args) > 0 {
				path = args[0]
			}
			if err := report.CreateTemplate(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template written to %s\n", path)
			return nil
		},
	}
}
