package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/balance-mate/balancemate/internal/statement"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check that a statement export has the expected columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkStatement(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK\n", args[0])
			return nil
		},
	}
}

// checkStatement gates a file through statement.Validate and, when it
// fails, explains why.
func checkStatement(path string) error {
	if statement.Validate(path) {
		return nil
	}
	tbl, err := statement.Load(path)
	if err != nil {
		return fmt.Errorf("invalid statement: %w", err)
	}
	missing := statement.MissingColumns(tbl.Columns)
	return fmt.Errorf("invalid statement %s: missing columns %s", path, strings.Join(missing, ", "))
}
