package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/balance-mate/balancemate/internal/report"
	"github.com/balance-mate/balancemate/internal/runlog"
	"github.com/balance-mate/balancemate/internal/statement"
)

const header = "oficina;fechaMovimiento;numeroDocumento;debito;credito;descripcion\n"

func newReportWriter(t *testing.T) (*report.Writer, string) {
	t.Helper()
	dir := t.TempDir()
	tpl := filepath.Join(dir, "docs", "original", "balance-mate-template.xlsx")
	require.NoError(t, report.CreateTemplate(tpl))
	out := filepath.Join(dir, "temp")
	return report.New(report.Options{TemplatePath: tpl, OutputDir: out}), out
}

func writeStatement(t *testing.T, rows ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statement.csv")
	require.NoError(t, os.WriteFile(path, []byte(header+strings.Join(rows, "\n")+"\n"), 0o644))
	return path
}

// stubWriter records what it was asked to write.
type stubWriter struct {
	incoming []statement.Movement
	path     string
	err      error
	panicky  bool
}

func (s *stubWriter) Write(incoming []statement.Movement, month, year string, progress report.ProgressFunc) (string, error) {
	if s.panicky {
		panic("workbook exploded")
	}
	s.incoming = incoming
	for i := range incoming {
		progress((i + 1) * 100 / len(incoming))
	}
	return s.path, s.err
}

func TestProcess_EndToEnd(t *testing.T) {
	w, _ := newReportWriter(t)
	p := New(w)

	var events []int
	res := p.Process("../../testdata/statement.csv", "Enero", "2025", func(pct int) { events = append(events, pct) })
	require.True(t, res.OK, res.Message)
	assert.Equal(t, SuccessMessage, res.Message)
	assert.Regexp(t, regexp.MustCompile(`balance-mate-Enero-2025-\d{8}-\d{6}\.xlsx$`), res.OutputPath)
	assert.Equal(t, []int{100}, events)

	f, err := excelize.OpenFile(res.OutputPath)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Enero 2025"}, f.GetSheetList())
	row := make([]string, 4)
	for i, col := range []string{"A", "B", "C", "D"} {
		row[i], err = f.GetCellValue("Enero 2025", col+"8", excelize.Options{RawCellValue: true})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"Deposit", "2500.5", "2025-01-01", "101"}, row)

	next, err := f.GetCellValue("Enero 2025", "A9")
	require.NoError(t, err)
	assert.Empty(t, next, "the outgoing fee must not be written")
}

func TestProcess_OnlyIncomingReachesWriter(t *testing.T) {
	stub := &stubWriter{path: "out.xlsx"}
	path := writeStatement(t,
		"X;2025-01-03;1;10;0;fee",
		"X;2025-01-02;2;0;20;deposit b",
		"X;2025-01-01;3;0;30;deposit a",
		"X;2025-01-04;4;5;5;both",
		"X;2025-01-05;5;0;0;neither",
		"X;;TOTAL;15;55;",
	)

	res := New(stub).Process(path, "Enero", "2025", func(int) {})
	require.True(t, res.OK, res.Message)
	assert.Equal(t, "out.xlsx", res.OutputPath)

	var got []string
	for _, m := range stub.incoming {
		got = append(got, m.DocumentNumber)
	}
	assert.Equal(t, []string{"3", "2", "4"}, got)
}

func TestProcess_EmptyIncoming(t *testing.T) {
	w, _ := newReportWriter(t)
	path := writeStatement(t, "X;2025-01-03;1;10;0;fee")

	calls := 0
	res := New(w).Process(path, "Febrero", "2025", func(int) { calls++ })
	require.True(t, res.OK, res.Message)
	assert.Zero(t, calls)

	f, err := excelize.OpenFile(res.OutputPath)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Febrero 2025"}, f.GetSheetList())
}

func TestProcess_TemplateMissing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "temp")
	w := report.New(report.Options{TemplatePath: filepath.Join(dir, "gone.xlsx"), OutputDir: out})

	res := New(w).Process("../../testdata/statement.csv", "Enero", "2025", nil)
	assert.False(t, res.OK)
	assert.Empty(t, res.OutputPath)
	assert.True(t, strings.HasPrefix(res.Message, "Error durante el procesamiento: "), res.Message)
	assert.Contains(t, res.Message, "template not found")

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcess_LoadFailure(t *testing.T) {
	res := New(&stubWriter{}).Process(filepath.Join(t.TempDir(), "missing.csv"), "Enero", "2025", nil)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "loading statement")
}

func TestProcess_CleanFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("a;b\n1;2\n"), 0o644))

	res := New(&stubWriter{}).Process(path, "Enero", "2025", nil)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "missing column")
}

func TestProcess_WriterError(t *testing.T) {
	stub := &stubWriter{err: fmt.Errorf("%w: disk full", report.ErrIO)}
	res := New(stub).Process("../../testdata/statement.csv", "Enero", "2025", func(int) {})
	assert.False(t, res.OK)
	assert.Empty(t, res.OutputPath)
	assert.Contains(t, res.Message, "disk full")
}

func TestProcess_RecoversPanic(t *testing.T) {
	res := New(&stubWriter{panicky: true}).Process("../../testdata/statement.csv", "Enero", "2025", nil)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "workbook exploded")
}

func TestProcess_RunLog(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "run-log.csv")
	p := New(&stubWriter{path: "out.xlsx"}, WithRunLog(logPath))

	p.Process("../../testdata/statement.csv", "Enero", "2025", func(int) {})
	p.Process(filepath.Join(t.TempDir(), "missing.csv"), "Marzo", "2026", nil)

	entries, err := runlog.Read(logPath)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.True(t, entries[0].OK)
	assert.Equal(t, "out.xlsx", entries[0].Output)
	assert.Equal(t, "Enero", entries[0].Month)
	assert.NotEmpty(t, entries[0].RunID)

	assert.False(t, entries[1].OK)
	assert.Equal(t, "2026", entries[1].Year)
	assert.NotEqual(t, entries[0].RunID, entries[1].RunID)
}

func TestStart_ProgressThenDone(t *testing.T) {
	w, _ := newReportWriter(t)
	rows := make([]string, 7)
	for i := range rows {
		rows[i] = fmt.Sprintf("X;2025-01-%02d;%d;0;%d.00;deposit %d", i+1, i, i+1, i)
	}
	path := writeStatement(t, rows...)

	run := New(w).Start(path, "Enero", "2025")

	var events []int
	for pct := range run.Progress() {
		events = append(events, pct)
	}
	res, ok := <-run.Done()
	require.True(t, ok)
	require.True(t, res.OK, res.Message)

	assert.Equal(t, []int{14, 28, 42, 57, 71, 85, 100}, events)
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i], events[i-1])
	}

	_, more := <-run.Done()
	assert.False(t, more, "Done delivers exactly one result")
}

func TestStart_Failure(t *testing.T) {
	run := New(&stubWriter{}).Start(filepath.Join(t.TempDir(), "missing.csv"), "Enero", "2025")
	res := run.Wait()
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "loading statement")
}

func TestStart_WaitDrainsProgress(t *testing.T) {
	rows := make([]string, progressBuffer*2)
	for i := range rows {
		rows[i] = fmt.Sprintf("X;2025-01-01;%d;0;1;deposit", i)
	}
	path := writeStatement(t, rows...)

	stub := &stubWriter{path: "out.xlsx"}
	res := New(stub).Start(path, "Enero", "2025").Wait()
	require.True(t, res.OK, res.Message)
	assert.Len(t, stub.incoming, progressBuffer*2)
}

func TestStart_DoneWithoutReadingProgress(t *testing.T) {
	rows := make([]string, progressBuffer*8)
	for i := range rows {
		rows[i] = fmt.Sprintf("X;2025-01-01;%d;0;1;deposit", i)
	}
	path := writeStatement(t, rows...)

	run := New(&stubWriter{path: "out.xlsx"}).Start(path, "Enero", "2025")

	select {
	case res := <-run.Done():
		require.True(t, res.OK, res.Message)
	case <-time.After(10 * time.Second):
		t.Fatal("run stalled on an unread progress channel")
	}

	var events []int
	for pct := range run.Progress() {
		events = append(events, pct)
	}
	require.NotEmpty(t, events)
	assert.LessOrEqual(t, len(events), progressBuffer)
	assert.Equal(t, 100, events[len(events)-1])
	for i := 1; i < len(events); i++ {
		assert.GreaterOrEqual(t, events[i], events[i-1])
	}
}

func TestFailureMessage(t *testing.T) {
	res := failure(errors.New("boom"))
	assert.Equal(t, Result{OK: false, Message: "Error durante el procesamiento: boom"}, res)
}
