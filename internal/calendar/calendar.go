// Package calendar holds the month and year choices a report can be
// generated for.
package calendar

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Months are the report month names, January first.
var Months = []string{
	"Enero",
	"Febrero",
	"Marzo",
	"Abril",
	"Mayo",
	"Junio",
	"Julio",
	"Agosto",
	"Septiembre",
	"Octubre",
	"Noviembre",
	"Diciembre",
}

var (
	validate  = validator.New()
	monthRule = "required,oneof=" + strings.Join(Months, " ")
)

// Window is an inclusive range of selectable years.
type Window struct {
	Start int
	End   int
}

// Years lists the window's years as strings, oldest first.
func (w Window) Years() []string {
	var out []string
	for y := w.Start; y <= w.End; y++ {
		out = append(out, strconv.Itoa(y))
	}
	return out
}

// Check reports whether month and year are selectable.
func (w Window) Check(month, year string) error {
	if err := validate.Var(month, monthRule); err != nil {
		return fmt.Errorf("month %q must be one of %s", month, strings.Join(Months, ", "))
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return fmt.Errorf("year %q is not a number", year)
	}
	if err := validate.Var(y, fmt.Sprintf("min=%d,max=%d", w.Start, w.End)); err != nil {
		return fmt.Errorf("year %d must be one of %s", y, strings.Join(w.Years(), ", "))
	}
	return nil
}

// Normalize maps a month given as a name in any case ("enero") or as its
// number ("1") to its canonical name ("Enero").
func Normalize(month string) (string, bool) {
	month = strings.TrimSpace(month)
	if n, err := strconv.Atoi(month); err == nil {
		if n < 1 || n > len(Months) {
			return "", false
		}
		return Months[n-1], true
	}
	for _, m := range Months {
		if strings.EqualFold(m, month) {
			return m, true
		}
	}
	return "", false
}
