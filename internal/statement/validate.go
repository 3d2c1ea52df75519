package statement

// Validate reports whether the file at path parses as a statement and
// carries every required column. Column order and extra columns are
// ignored. Any read or parse fault yields false.
func Validate(path string) bool {
	t, err := Load(path)
	if err != nil {
		return false
	}
	return len(MissingColumns(t.Columns)) == 0
}
