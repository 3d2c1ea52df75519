package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/balance-mate/balancemate/internal/calendar"
	"github.com/balance-mate/balancemate/internal/config"
	"github.com/balance-mate/balancemate/internal/logging"
	"github.com/balance-mate/balancemate/internal/pipeline"
	"github.com/balance-mate/balancemate/internal/report"
)

func newConvertCommand(configPath *string) *cobra.Command {
	var month, year, dest string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a statement export into an incoming balance report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(*configPath)
			if err != nil {
				return err
			}
			ctx := logging.WithContext(cmd.Context(), logging.New(cfg.Logging, cmd.ErrOrStderr()))
			return runConvert(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, convertRequest{
				input: args[0],
				month: month,
				year:  year,
				dest:  dest,
				quiet: quiet,
			})
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "report month, by name (Enero) or number (1)")
	cmd.Flags().StringVar(&year, "year", "", "report year")
	cmd.Flags().StringVarP(&dest, "out", "o", "", "move the finished report to this file or directory")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress line")
	_ = cmd.MarkFlagRequired("month")
	_ = cmd.MarkFlagRequired("year")

	return cmd
}

type convertRequest struct {
	input string
	month string
	year  string
	dest  string
	quiet bool
}

func runConvert(ctx context.Context, out, errOut io.Writer, cfg *config.Config, req convertRequest) error {
	month, ok := calendar.Normalize(req.month)
	if !ok {
		month = req.month
	}
	window := calendar.Window{Start: cfg.Calendar.YearStart, End: cfg.Calendar.YearEnd}
	if err := window.Check(month, req.year); err != nil {
		return err
	}

	if err := checkStatement(req.input); err != nil {
		return err
	}

	logger := logging.FromContext(ctx)
	writer := report.New(report.Options{
		TemplatePath: cfg.Paths.Template,
		OutputDir:    cfg.Paths.OutputDir,
		FilePrefix:   cfg.Report.FilePrefix,
		StartRow:     cfg.Report.StartRow,
		NumberFormat: cfg.Report.NumberFormat,
		Logger:       logger,
	})
	proc := pipeline.New(writer,
		pipeline.WithLogger(logger),
		pipeline.WithRunLog(cfg.Paths.RunLog),
	)

	run := proc.Start(req.input, month, req.year)

	var res pipeline.Result
	var g errgroup.Group
	g.Go(func() error {
		for pct := range run.Progress() {
			if !req.quiet {
				fmt.Fprintf(errOut, "\rProcesando... %3d%%", pct)
			}
		}
		return nil
	})
	g.Go(func() error {
		res = <-run.Done()
		if !res.OK {
			return errors.New(res.Message)
		}
		return nil
	})
	err := g.Wait()
	if !req.quiet {
		fmt.Fprintln(errOut)
	}
	if err != nil {
		return err
	}

	path := res.OutputPath
	if req.dest != "" {
		moved, err := relocate(path, req.dest)
		if err != nil {
			return fmt.Errorf("report written to %s but could not be moved: %w", path, err)
		}
		logger.Debug().Str("from", path).Str("to", moved).Msg("report moved")
		path = moved
	}

	fmt.Fprintln(out, res.Message)
	fmt.Fprintf(out, "Report: %s\n", path)
	return nil
}

// relocate moves src to dest. A dest that is an existing directory
// receives the file under its current name.
func relocate(src, dest string) (string, error) {
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		dest = filepath.Join(dest, filepath.Base(src))
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", fmt.Errorf("creating destination dir: %w", err)
	}

	if err := os.Rename(src, dest); err == nil {
		return dest, nil
	}

	// Rename fails across filesystems; fall back to copy and remove.
	if err := copyFile(src, dest); err != nil {
		return "", err
	}
	if err := os.Remove(src); err != nil {
		return "", fmt.Errorf("removing %s: %w", src, err)
	}
	return dest, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	return out.Close()
}
