package shortcode

import "strings"

// ColumnCount is the number of columns listings are tiled into.
const ColumnCount = 4

// Layout selects how listing items are distributed across columns.
type Layout string

const (
	// LayoutColumns fills each column with a contiguous run of items.
	LayoutColumns Layout = "columns"
	// LayoutRows deals items round-robin so reading across a row follows the order.
	LayoutRows Layout = "rows"
)

// ParseLayout maps a shortcode parameter to a Layout, defaulting to columns.
func ParseLayout(value string) Layout {
	if strings.EqualFold(strings.TrimSpace(value), string(LayoutRows)) {
		return LayoutRows
	}
	return LayoutColumns
}

// ColumnIndex reports the column that the item at index i of total lands in.
//
// Columns mode splits the items into n contiguous runs whose sizes differ by at
// most one; the first total%n columns take the extra item, so 10 items over 4
// columns produce runs of 3, 3, 2 and 2.
func ColumnIndex(layout Layout, i, total, n int) int {
	if n <= 1 || total <= 0 {
		return 0
	}
	if layout == LayoutRows {
		return i % n
	}

	base, extra := total/n, total%n
	wide := extra * (base + 1)
	if i < wide {
		return i / (base + 1)
	}
	if base == 0 {
		return n - 1
	}
	return min(extra+(i-wide)/base, n-1)
}

// Distribute splits items into n columns according to layout. Empty columns
// are kept so the caller can render a fixed grid.
func Distribute[T any](items []T, layout Layout, n int) [][]T {
	if n < 1 {
		n = 1
	}
	columns := make([][]T, n)
	for i, item := range items {
		col := ColumnIndex(layout, i, len(items), n)
		columns[col] = append(columns[col], item)
	}
	return columns
}
