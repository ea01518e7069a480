// Package table holds the view-state machine behind the tabular data
// browser. It is front-end agnostic: the Fyne and terminal UIs both drive a
// Browser and display its rendered text.
package table

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"fitsview/internal/errors"
	"fitsview/internal/fits"
)

const (
	minPageSize       = 1
	maxPageSize       = 1000
	minColumnWidth    = 3
	minFontSize       = 6
	defaultMaxColumns = 10
)

// Source is the slice of a FITS table the browser needs. *fits.Table
// satisfies it; tests use in-memory fakes.
type Source interface {
	Columns() []string
	NumRows() int
	Row(i int) ([]fits.Cell, error)
}

// Browser pages through a table source. A nil source is valid and renders a
// placeholder; every mutating operation on it is a no-op.
type Browser struct {
	src      Source
	page     int
	pageSize int
	colWidth int
	fontSize int
	maxCols  int // columns shown when nothing is selected
	selected []string
}

// NewBrowser builds a browser with the given display defaults. Out-of-range
// defaults are brought back into range silently so a bad config file cannot
// produce an unusable view.
func NewBrowser(src Source, pageSize, colWidth, fontSize, maxCols int) *Browser {
	b := &Browser{
		src:      src,
		pageSize: pageSize,
		colWidth: colWidth,
		fontSize: fontSize,
		maxCols:  maxCols,
	}
	if b.pageSize < minPageSize || b.pageSize > maxPageSize {
		b.pageSize = 50
	}
	if b.colWidth < minColumnWidth {
		b.colWidth = 15
	}
	if b.fontSize < minFontSize {
		b.fontSize = minFontSize
	}
	if b.maxCols < 1 {
		b.maxCols = defaultMaxColumns
	}
	if src != nil {
		b.selected = b.defaultSelection(src.Columns())
	}
	return b
}

func (b *Browser) defaultSelection(cols []string) []string {
	if len(cols) > b.maxCols {
		cols = cols[:b.maxCols]
	}
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// HasTable reports whether a table source is attached.
func (b *Browser) HasTable() bool {
	return b.src != nil
}

func (b *Browser) Page() int        { return b.page }
func (b *Browser) PageSize() int    { return b.pageSize }
func (b *Browser) ColumnWidth() int { return b.colWidth }
func (b *Browser) FontSize() int    { return b.fontSize }

// Columns lists every column in the source table.
func (b *Browser) Columns() []string {
	if b.src == nil {
		return nil
	}
	return b.src.Columns()
}

// Selected returns the visible column names in table order.
func (b *Browser) Selected() []string {
	out := make([]string, len(b.selected))
	copy(out, b.selected)
	return out
}

// PageCount is the number of reachable pages. A table whose row count is an
// exact multiple of the page size still exposes one trailing page, matching
// the page arithmetic users of the original tool expect.
func (b *Browser) PageCount() int {
	if b.src == nil {
		return 1
	}
	return b.src.NumRows()/b.pageSize + 1
}

// SetPage jumps to a 0-based page. Out-of-range requests are rejected with
// an error and leave the current page untouched.
func (b *Browser) SetPage(p int) error {
	if b.src == nil {
		return nil
	}
	if p < 0 || p >= b.PageCount() {
		return errors.Newf("page %d out of range [1, %d]", p+1, b.PageCount())
	}
	b.page = p
	return nil
}

// SetPageSize sets rows per page within [1, 1000] and rewinds to the first
// page.
func (b *Browser) SetPageSize(n int) error {
	if b.src == nil {
		return nil
	}
	if n < minPageSize || n > maxPageSize {
		return errors.Newf("rows per page must be between %d and %d", minPageSize, maxPageSize)
	}
	b.pageSize = n
	b.page = 0
	return nil
}

// SetColumnWidth sets the fixed rendering width. Widths of 3 or more leave
// room for at least two content characters plus the separator space.
func (b *Browser) SetColumnWidth(w int) error {
	if b.src == nil {
		return nil
	}
	if w < minColumnWidth {
		return errors.Newf("column width must be greater than 2")
	}
	b.colWidth = w
	return nil
}

// SetFontSize stores the display font size, floored at 6.
func (b *Browser) SetFontSize(s int) {
	if b.src == nil {
		return
	}
	if s < minFontSize {
		s = minFontSize
	}
	b.fontSize = s
}

// SelectColumns restricts rendering to the named columns, kept in table
// order. Unknown names are dropped. An empty result falls back to the
// leading columns, up to the max-columns setting.
func (b *Browser) SelectColumns(names []string) {
	if b.src == nil {
		return
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var sel []string
	for _, c := range b.src.Columns() {
		if want[c] {
			sel = append(sel, c)
		}
	}
	if len(sel) == 0 {
		sel = b.defaultSelection(b.src.Columns())
	}
	b.selected = sel
}

// SelectColumnsGlob selects every column whose name matches the pattern
// (gobwas/glob syntax, case-sensitive). A pattern matching nothing is an
// error and keeps the current selection.
func (b *Browser) SelectColumnsGlob(pattern string) error {
	if b.src == nil {
		return nil
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return errors.Wrapf(err, "invalid column pattern %q", pattern)
	}
	var sel []string
	for _, c := range b.src.Columns() {
		if g.Match(c) {
			sel = append(sel, c)
		}
	}
	if len(sel) == 0 {
		return errors.Newf("no columns match %q", pattern)
	}
	b.selected = sel
	return nil
}

// NextPage advances one page, stopping at the last.
func (b *Browser) NextPage() {
	if b.src == nil {
		return
	}
	if b.page+1 < b.PageCount() {
		b.page++
	}
}

// PrevPage steps back one page, stopping at the first.
func (b *Browser) PrevPage() {
	if b.src == nil {
		return
	}
	if b.page > 0 {
		b.page--
	}
}

// rowRange is the half-open row interval of the current page.
func (b *Browser) rowRange() (int, int) {
	start := b.page * b.pageSize
	end := start + b.pageSize
	if n := b.src.NumRows(); end > n {
		end = n
	}
	if start > b.src.NumRows() {
		start = b.src.NumRows()
	}
	return start, end
}

// Displayed is the number of rows on the current page.
func (b *Browser) Displayed() int {
	if b.src == nil {
		return 0
	}
	start, end := b.rowRange()
	return end - start
}

// Render lays the current page out as fixed-width text: a header line of
// column names, a dash separator, then one line per row with each cell
// truncated to width-1 and left-justified to width. Header names are never
// truncated, only padded. NaN values render as the literal "NaN"; missing
// values render blank.
func (b *Browser) Render() string {
	if b.src == nil {
		return "No table data found in this file."
	}

	cols := b.selected
	idx := b.selectedIndexes()
	var sb strings.Builder

	for _, name := range cols {
		sb.WriteString(ljust(name, b.colWidth))
	}
	sb.WriteByte('\n')
	sb.WriteString(strings.Repeat("-", b.colWidth*len(cols)))
	sb.WriteByte('\n')

	start, end := b.rowRange()
	for i := start; i < end; i++ {
		row, err := b.src.Row(i)
		if err != nil {
			break
		}
		for _, j := range idx {
			sb.WriteString(pad(cellText(row[j]), b.colWidth-1, b.colWidth))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Status summarizes the pager position for the status bar.
func (b *Browser) Status() string {
	if b.src == nil {
		return "No table data"
	}
	return fmt.Sprintf("Page %d of %d, Total Rows: %d, Displayed: %d",
		b.page+1, b.PageCount(), b.src.NumRows(), b.Displayed())
}

// selectedIndexes maps the selected names back to column positions.
func (b *Browser) selectedIndexes() []int {
	pos := make(map[string]int, len(b.src.Columns()))
	for i, c := range b.src.Columns() {
		pos[c] = i
	}
	idx := make([]int, 0, len(b.selected))
	for _, name := range b.selected {
		if i, ok := pos[name]; ok {
			idx = append(idx, i)
		}
	}
	return idx
}

func cellText(c fits.Cell) string {
	if c.Kind == fits.CellMissing {
		return ""
	}
	return c.Text
}

// pad truncates s to max characters and left-justifies the result in a
// field of width.
func pad(s string, max, width int) string {
	if len(s) > max {
		s = s[:max]
	}
	return ljust(s, width)
}

// ljust left-justifies s in a field of width without truncating.
func ljust(s string, width int) string {
	if len(s) < width {
		s += strings.Repeat(" ", width-len(s))
	}
	return s
}
