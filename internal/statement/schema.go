package statement

import (
	"github.com/shopspring/decimal"
)

// Source column names as they appear in the bank export header.
const (
	ColOffice      = "oficina"
	ColDate        = "fechaMovimiento"
	ColDocument    = "numeroDocumento"
	ColDebit       = "debito"
	ColCredit      = "credito"
	ColDescription = "descripcion"
)

// Canonical field names used once a statement has been cleaned.
const (
	FieldDate           = "date"
	FieldDescription    = "description"
	FieldDebit          = "debit"
	FieldCredit         = "credit"
	FieldDocumentNumber = "document_number"
)

// TotalMarker is the document number the bank uses for summary rows.
const TotalMarker = "TOTAL"

// RequiredColumns lists the header names a statement export must carry.
var RequiredColumns = []string{
	ColOffice,
	ColDate,
	ColDocument,
	ColDebit,
	ColCredit,
	ColDescription,
}

// CanonicalFields lists the cleaned field names in output order.
var CanonicalFields = []string{
	FieldDate,
	FieldDescription,
	FieldDebit,
	FieldCredit,
	FieldDocumentNumber,
}

// Movement is one cleaned statement row.
type Movement struct {
	Date           string // as exported, e.g. "2025-01-05"
	Description    string
	Debit          decimal.Decimal // zero when the cell was empty or malformed
	Credit         decimal.Decimal // zero when the cell was empty or malformed
	DocumentNumber string
}

// IsOutgoing reports whether money left the account.
func (m Movement) IsOutgoing() bool { return m.Debit.IsPositive() }

// IsIncoming reports whether money entered the account.
func (m Movement) IsIncoming() bool { return m.Credit.IsPositive() }

// MissingColumns returns the required columns absent from cols, in
// RequiredColumns order.
func MissingColumns(cols []string) []string {
	have := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		have[c] = struct{}{}
	}
	var missing []string
	for _, req := range RequiredColumns {
		if _, ok := have[req]; !ok {
			missing = append(missing, req)
		}
	}
	return missing
}

// ToTable renders movements back into a table with canonical headers.
func ToTable(ms []Movement) *Table {
	t := &Table{Columns: append([]string(nil), CanonicalFields...)}
	for _, m := range ms {
		t.Rows = append(t.Rows, []string{
			m.Date,
			m.Description,
			m.Debit.String(),
			m.Credit.String(),
			m.DocumentNumber,
		})
	}
	return t
}
