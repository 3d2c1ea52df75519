package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/balance-mate/balancemate/internal/config"
	"github.com/balance-mate/balancemate/internal/report"
)

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Set up a working directory with config and report template",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config and template")

	return cmd
}

func runInit(out io.Writer, dir string, force bool) error {
	cfg := config.Default()

	// Create directory structure.
	dirs := []string{
		cfg.Paths.OutputDir,
		filepath.Dir(cfg.Paths.RunLog),
		filepath.Dir(cfg.Paths.Template),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write balancemate.yaml.
	cfgPath := filepath.Join(dir, config.FileName)
	if err := writeOnce(cfgPath, force, func() error { return config.Save(cfgPath, cfg) }); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Generate the report template.
	tplPath := filepath.Join(dir, cfg.Paths.Template)
	if err := writeOnce(tplPath, force, func() error { return report.CreateTemplate(tplPath) }); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}

	fmt.Fprintf(out, "Initialized balancemate at %s\n", dir)
	return nil
}

// writeOnce runs write unless path already exists and force is off.
func writeOnce(path string, force bool, write func() error) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	return write()
}
