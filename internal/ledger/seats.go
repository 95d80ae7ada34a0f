package ledger

import (
	"strconv"
	"strings"
)

// Layout describes the seat grid of a screen.  Seats are addressed by a
// row letter and a 1-based column number, e.g. "A1" or "J10".  The legal
// address space of a show is Rows × Cols; anything outside it is invalid.
type Layout struct {
	Rows uint32 // number of seating rows
	Cols uint32 // number of seats per row
}

// SeatLabel builds the canonical label for a zero-based row index and a
// 1-based column number.  Row 0 is "A", row 25 is "Z", row 26 is "AA".
func SeatLabel(row int, col uint32) string {
	if row < 0 || col == 0 {
		return ""
	}
	res := []rune{}
	for {
		rem := row % 26
		res = append(res, rune('A'+rem))
		row = row/26 - 1
		if row < 0 {
			break
		}
	}
	for j, k := 0, len(res)-1; j < k; j, k = j+1, k-1 {
		res[j], res[k] = res[k], res[j]
	}
	return string(res) + strconv.FormatUint(uint64(col), 10)
}

// ParseSeat splits a seat label into its zero-based row index and 1-based
// column number.  It returns ok=false for anything that is not a run of
// ASCII letters followed by a run of digits.
func ParseSeat(label string) (row int, col uint32, ok bool) {
	s := strings.ToUpper(strings.TrimSpace(label))
	if s == "" {
		return -1, 0, false
	}
	i := 0
	n := 0
	for i < len(s) && s[i] >= 'A' && s[i] <= 'Z' {
		n = n*26 + int(s[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(s) {
		return -1, 0, false
	}
	c := uint32(0)
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return -1, 0, false
		}
		c = c*10 + uint32(s[i]-'0')
		if c > 1000 {
			return -1, 0, false
		}
	}
	if c == 0 {
		return -1, 0, false
	}
	return n - 1, c, true
}

// Valid reports whether label addresses a seat inside the layout.
func (l Layout) Valid(label string) bool {
	row, col, ok := ParseSeat(label)
	if !ok {
		return false
	}
	return uint32(row) < l.Rows && col <= l.Cols
}

// Labels enumerates every seat label of the layout, row by row.  Used by
// clients rendering the grid and by admin tooling seeding shows.
func (l Layout) Labels() []string {
	out := make([]string, 0, l.Rows*l.Cols)
	for r := 0; r < int(l.Rows); r++ {
		for c := uint32(1); c <= l.Cols; c++ {
			out = append(out, SeatLabel(r, c))
		}
	}
	return out
}
