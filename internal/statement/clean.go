package statement

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// fieldSource pairs a bank column with the canonical name it is renamed to.
// Clean accepts either so that cleaned output can be cleaned again.
type fieldSource struct {
	source    string
	canonical string
}

var (
	srcDate        = fieldSource{ColDate, FieldDate}
	srcDescription = fieldSource{ColDescription, FieldDescription}
	srcDebit       = fieldSource{ColDebit, FieldDebit}
	srcCredit      = fieldSource{ColCredit, FieldCredit}
	srcDocument    = fieldSource{ColDocument, FieldDocumentNumber}
)

func (t *Table) column(f fieldSource) (int, error) {
	if i, ok := t.Index(f.source); ok {
		return i, nil
	}
	if i, ok := t.Index(f.canonical); ok {
		return i, nil
	}
	return -1, fmt.Errorf("missing column %q", f.source)
}

// Clean turns a raw table into movements:
//
//  1. the oficina column is dropped (absent is fine),
//  2. rows whose numeroDocumento is "TOTAL" are dropped,
//  3. debito and credito are parsed with ParseAmount,
//  4. the remaining columns are mapped onto the canonical Movement fields.
func Clean(t *Table) ([]Movement, error) {
	cols := make(map[fieldSource]int, 5)
	for _, f := range []fieldSource{srcDate, srcDescription, srcDebit, srcCredit, srcDocument} {
		i, err := t.column(f)
		if err != nil {
			return nil, fmt.Errorf("cleaning statement: %w", err)
		}
		cols[f] = i
	}

	out := make([]Movement, 0, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return nil, fmt.Errorf("cleaning statement: row %d has %d fields, want %d", i+1, len(row), len(t.Columns))
		}
		doc := row[cols[srcDocument]]
		if doc == TotalMarker {
			continue
		}
		out = append(out, Movement{
			Date:           row[cols[srcDate]],
			Description:    row[cols[srcDescription]],
			Debit:          ParseAmount(row[cols[srcDebit]]),
			Credit:         ParseAmount(row[cols[srcCredit]]),
			DocumentNumber: doc,
		})
	}
	return out, nil
}

// ParseAmount parses an exported amount such as "2,500.50". Commas are
// thousands separators and are removed. Anything that still does not parse
// is zero: bank exports routinely carry blanks and placeholders in these
// cells. So is a value too large for a spreadsheet number. The sign is kept.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if math.IsInf(d.InexactFloat64(), 0) {
		return decimal.Zero
	}
	return d
}
