package statement

import (
	"slices"
	"strings"
)

// Partition holds the movements split by direction.
type Partition struct {
	Outgoing []Movement // Debit > 0
	Incoming []Movement // Credit > 0
}

// Split sorts movements by date, keeping export order for equal dates, and
// splits them into outgoing and incoming. A movement with both amounts
// positive lands in both; one with neither lands in none. ms is not
// modified.
func Split(ms []Movement) Partition {
	sorted := slices.Clone(ms)
	slices.SortStableFunc(sorted, func(a, b Movement) int {
		return strings.Compare(a.Date, b.Date)
	})

	var p Partition
	for _, m := range sorted {
		if m.IsOutgoing() {
			p.Outgoing = append(p.Outgoing, m)
		}
		if m.IsIncoming() {
			p.Incoming = append(p.Incoming, m)
		}
	}
	return p
}
