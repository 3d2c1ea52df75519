package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Delimiter separates fields in a bank statement export.
const Delimiter = ';'

// Table is a statement export as parsed from disk, before any cleaning.
// Every row has exactly len(Columns) fields.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Index returns the position of the named column.
func (t *Table) Index(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.Rows) }

// LoadError reports a statement file that could not be read as a table.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("loading statement: %v", e.Err)
	}
	return fmt.Sprintf("loading statement %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

var (
	errNotUTF8     = errors.New("file is not valid UTF-8")
	errEmpty       = errors.New("file has no header row")
	errEmptyColumn = errors.New("header has an empty column name")
)

// Load reads the statement at path. Either the whole table loads or a
// *LoadError is returned.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return t, nil
}

// Read parses a statement from r. Errors are *LoadError.
func Read(r io.Reader) (*Table, error) {
	t, err := read(r)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	return t, nil
}

func read(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, errNotUTF8
	}

	// Spreadsheet tools often prefix UTF-8 exports with a BOM.
	dec := transform.NewReader(bytes.NewReader(data), unicode.UTF8BOM.NewDecoder())

	cr := csv.NewReader(dec)
	cr.Comma = Delimiter

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, errEmpty
	}

	header := records[0]
	seen := make(map[string]struct{}, len(header))
	for _, name := range header {
		if name == "" {
			return nil, errEmptyColumn
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = struct{}{}
	}

	return &Table{Columns: header, Rows: records[1:]}, nil
}
