package models

// RawUnit is one unprocessed row of the stats table: the trimmed text of each
// cell in Schema order.
type RawUnit struct {
	Row   int
	Cells []string
}

// Cell returns the text of the i-th cell, or "" if the row is short.
func (r *RawUnit) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}
