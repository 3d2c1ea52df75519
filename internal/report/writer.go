// Package report writes cleaned statement movements into a copy of the
// balance spreadsheet template.
package report

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/balance-mate/balancemate/internal/statement"
)

// Defaults for Options fields left empty.
const (
	DefaultTemplatePath = "docs/original/balance-mate-template.xlsx"
	DefaultOutputDir    = "temp"
	DefaultFilePrefix   = "balance-mate"
	DefaultStartRow     = 8
	DefaultNumberFormat = "#,##0.00"

	timestampFormat = "20060102-150405"
)

var (
	// ErrTemplateMissing is returned when the template asset cannot be found.
	ErrTemplateMissing = errors.New("report template not found")
	// ErrIO wraps filesystem faults while copying or saving the report.
	ErrIO = errors.New("report I/O failure")
	// ErrFormat wraps workbook faults: a corrupt template or a rejected cell write.
	ErrFormat = errors.New("report workbook failure")
)

// ProgressFunc receives the percentage of rows written so far.
type ProgressFunc func(percent int)

// Options configures a Writer.
type Options struct {
	TemplatePath string
	OutputDir    string
	FilePrefix   string
	StartRow     int
	NumberFormat string
	Now          func() time.Time
	Logger       zerolog.Logger
}

// Writer produces incoming-balance reports from a template.
type Writer struct {
	opts Options
}

// New returns a Writer, filling unset options with defaults.
func New(opts Options) *Writer {
	if opts.TemplatePath == "" {
		opts.TemplatePath = DefaultTemplatePath
	}
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	if opts.FilePrefix == "" {
		opts.FilePrefix = DefaultFilePrefix
	}
	if opts.StartRow <= 0 {
		opts.StartRow = DefaultStartRow
	}
	if opts.NumberFormat == "" {
		opts.NumberFormat = DefaultNumberFormat
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Writer{opts: opts}
}

// OutputName returns the report file name for a month and year,
// e.g. "balance-mate-Enero-2025-20250201-093000.xlsx".
func OutputName(prefix, month, year string, at time.Time) string {
	return fmt.Sprintf("%s-%s-%s-%s.xlsx", prefix, month, year, at.Format(timestampFormat))
}

// SheetTitle returns the worksheet name for a month and year.
func SheetTitle(month, year string) string {
	return month + " " + year
}

// Write copies the template into the output directory and fills it with
// the incoming movements, one per row starting at the configured row.
// progress, if non-nil, is called after every row. The returned path is
// only valid when err is nil; on failure the copy is removed.
func (w *Writer) Write(incoming []statement.Movement, month, year string, progress ProgressFunc) (path string, err error) {
	log := w.opts.Logger

	if err := os.MkdirAll(w.opts.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating output dir: %w", ErrIO, err)
	}

	path = filepath.Join(w.opts.OutputDir, OutputName(w.opts.FilePrefix, month, year, w.opts.Now()))
	if err := copyTemplate(w.opts.TemplatePath, path); err != nil {
		return "", err
	}
	log.Debug().Str("path", path).Msg("template copied")

	defer func() {
		if err != nil {
			if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				log.Warn().Err(rmErr).Str("path", path).Msg("removing partial report")
			}
			path = ""
		}
	}()

	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening workbook: %w", ErrFormat, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	title := SheetTitle(month, year)
	if err := f.SetSheetName(sheet, title); err != nil {
		return "", fmt.Errorf("%w: renaming sheet %q to %q: %w", ErrFormat, sheet, title, err)
	}

	styles := make(map[int]int)
	total := len(incoming)
	for i, m := range incoming {
		if err := w.writeRow(f, title, w.opts.StartRow+i, m, styles); err != nil {
			return "", err
		}
		if progress != nil {
			progress((i + 1) * 100 / total)
		}
	}

	if err := f.Save(); err != nil {
		return "", fmt.Errorf("%w: saving workbook: %w", ErrIO, err)
	}
	log.Debug().Str("path", path).Int("rows", total).Msg("workbook saved")
	return path, nil
}

func (w *Writer) writeRow(f *excelize.File, sheet string, row int, m statement.Movement, styles map[int]int) error {
	credit := m.Credit.InexactFloat64()
	if math.IsInf(credit, 0) {
		return fmt.Errorf("%w: amount %s in row %d is out of range", ErrFormat, m.Credit, row)
	}
	cells := []struct {
		col   string
		value any
	}{
		{"A", m.Description},
		{"B", credit},
		{"C", m.Date},
		{"D", m.DocumentNumber},
	}
	for _, c := range cells {
		ref := fmt.Sprintf("%s%d", c.col, row)
		if err := f.SetCellValue(sheet, ref, c.value); err != nil {
			return fmt.Errorf("%w: writing %s: %w", ErrFormat, ref, err)
		}
	}

	amount := fmt.Sprintf("B%d", row)
	style, err := w.amountStyle(f, sheet, amount, styles)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, amount, amount, style); err != nil {
		return fmt.Errorf("%w: styling %s: %w", ErrFormat, amount, err)
	}
	return nil
}

// amountStyle returns a style that keeps whatever the template set on the
// cell (font, borders, fill) and adds the amount number format. Derived
// styles are cached by their template style ID.
func (w *Writer) amountStyle(f *excelize.File, sheet, cell string, cache map[int]int) (int, error) {
	base, err := f.GetCellStyle(sheet, cell)
	if err != nil {
		return 0, fmt.Errorf("%w: reading style of %s: %w", ErrFormat, cell, err)
	}
	if id, ok := cache[base]; ok {
		return id, nil
	}

	st, err := f.GetStyle(base)
	if err != nil || st == nil {
		st = &excelize.Style{}
	}
	numFmt := w.opts.NumberFormat
	st.NumFmt = 0
	st.CustomNumFmt = &numFmt

	id, err := f.NewStyle(st)
	if err != nil {
		return 0, fmt.Errorf("%w: creating amount style: %w", ErrFormat, err)
	}
	cache[base] = id
	return id, nil
}

// copyTemplate copies src to a new file at dst. dst must not exist yet;
// report names carry a timestamp so two runs never share a target.
func copyTemplate(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s: %w", ErrTemplateMissing, src, err)
		}
		return fmt.Errorf("%w: opening template: %w", ErrIO, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %w", ErrIO, dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("%w: copying template: %w", ErrIO, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("%w: closing %s: %w", ErrIO, dst, err)
	}
	return nil
}
