package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry() Entry {
	return Entry{
		Timestamp: time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC),
		RunID:     "3f0c1a52-8b7e-4c1d-9a11-5d2f0e6b7c88",
		Input:     "extracto.csv",
		Month:     "Enero",
		Year:      "2025",
		OK:        true,
		Message:   "Proceso completado con éxito.",
		Output:    "temp/balance-mate-Enero-2025-20250201-093000.xlsx",
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	e := sampleEntry()
	row := MarshalEntry(e)
	assert.Len(t, row, numFields)
	assert.Equal(t, "2025-02-01T09:30:00Z", row[colTimestamp])
	assert.Equal(t, "true", row[colOK])

	got, err := UnmarshalEntry(row)
	require.NoError(t, err)
	assert.True(t, e.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, e.RunID, got.RunID)
	assert.Equal(t, e.OK, got.OK)
	assert.Equal(t, e.Output, got.Output)
}

func TestUnmarshalEntry_Errors(t *testing.T) {
	_, err := UnmarshalEntry([]string{"too", "few"})
	assert.Error(t, err)

	row := MarshalEntry(sampleEntry())
	row[colTimestamp] = "yesterday"
	_, err = UnmarshalEntry(row)
	assert.ErrorContains(t, err, "parsing timestamp")

	row = MarshalEntry(sampleEntry())
	row[colOK] = "maybe"
	_, err = UnmarshalEntry(row)
	assert.ErrorContains(t, err, "parsing ok")
}

func TestAppend_CreatesFileWithHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run-log.csv")
	require.NoError(t, Append(path, []Entry{sampleEntry()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, Header, lines[0])
}

func TestAppend_Twice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run-log.csv")

	first := sampleEntry()
	second := sampleEntry()
	second.OK = false
	second.Message = "Error durante el procesamiento: report template not found"
	second.Output = ""

	require.NoError(t, Append(path, []Entry{first}))
	require.NoError(t, Append(path, []Entry{second}))

	got, err := Read(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].OK)
	assert.False(t, got[1].OK)
	assert.Equal(t, second.Message, got[1].Message)
	assert.Empty(t, got[1].Output)
}

func TestRead_Missing(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "none.csv"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadEntries_HeaderOnly(t *testing.T) {
	got, err := readEntries(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Nil(t, got)
}
