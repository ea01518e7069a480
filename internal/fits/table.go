package fits

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"fitsview/internal/errors"
)

// CellKind tags the variant held by a Cell.
type CellKind int

const (
	CellText CellKind = iota
	CellNumber
	CellMissing
)

// Cell is one table value, typed once at read time so renderers never
// inspect raw storage classes. Text holds the display form for every kind;
// Number is meaningful only for CellNumber and may be NaN.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
}

// IsNaN reports whether the cell is a numeric not-a-number.
func (c Cell) IsNaN() bool {
	return c.Kind == CellNumber && math.IsNaN(c.Number)
}

func textCell(s string) Cell {
	return Cell{Kind: CellText, Text: s}
}

func numberCell(v float64, text string) Cell {
	return Cell{Kind: CellNumber, Text: text, Number: v}
}

func missingCell() Cell {
	return Cell{Kind: CellMissing}
}

func floatCell(v float64) Cell {
	if math.IsNaN(v) {
		return numberCell(v, "NaN")
	}
	return numberCell(v, strconv.FormatFloat(v, 'g', -1, 64))
}

// floatCell32 formats with single precision so float32 storage doesn't grow
// spurious decimals.
func floatCell32(v float64) Cell {
	if math.IsNaN(v) {
		return numberCell(v, "NaN")
	}
	return numberCell(v, strconv.FormatFloat(v, 'g', -1, 32))
}

func intCell(v int64) Cell {
	return numberCell(float64(v), strconv.FormatInt(v, 10))
}

// Column describes one table field.
type Column struct {
	Name string
	Form string // raw TFORMn value
	Unit string

	// Binary table layout
	repeat int
	typ    byte
	offset int // byte offset within a row

	// ASCII table layout
	start int // 0-based character offset within a row
	width int // field width in characters (bytes per element for binary)

	null    int64 // TNULLn for binary integer columns
	hasNull bool
	nullStr string // TNULLn for ASCII columns
}

// Table is a decoded view over a tabular HDU. Rows are fixed once opened and
// read on demand from the underlying buffer.
type Table struct {
	hdu    *HDU
	cols   []Column
	rowLen int
	nrows  int
	ascii  bool
}

// newTable builds the column layout from the HDU header.
func newTable(hdu *HDU) (*Table, error) {
	hdr := hdu.Header
	axes := hdr.Axes()
	if len(axes) < 2 {
		return nil, errors.NewFormatError("table without NAXIS1/NAXIS2", hdu.path, hdu.Index, errors.InvalidHeader, nil)
	}

	t := &Table{
		hdu:    hdu,
		rowLen: axes[0],
		nrows:  axes[1],
		ascii:  hdu.Kind == AsciiTable,
	}

	nfields := int(hdr.IntOr("TFIELDS", 0))
	offset := 0
	for i := 1; i <= nfields; i++ {
		suffix := strconv.Itoa(i)
		col := Column{
			Name: hdr.StrOr("TTYPE"+suffix, "COL"+suffix),
			Form: hdr.StrOr("TFORM"+suffix, ""),
			Unit: hdr.StrOr("TUNIT"+suffix, ""),
		}

		if t.ascii {
			start, ok := hdr.Int("TBCOL" + suffix)
			if !ok {
				return nil, errors.NewFormatError("missing TBCOL"+suffix, hdu.path, hdu.Index, errors.InvalidHeader, nil)
			}
			col.start = int(start) - 1
			col.width = asciiWidth(col.Form)
			if col.width <= 0 || col.start < 0 || col.start+col.width > t.rowLen {
				return nil, errors.NewFormatError("bad ASCII column layout for "+col.Name, hdu.path, hdu.Index, errors.InvalidHeader, nil)
			}
			col.nullStr = hdr.StrOr("TNULL"+suffix, "")
		} else {
			repeat, typ, width, err := binaryForm(col.Form)
			if err != nil {
				return nil, errors.NewFormatError("bad TFORM"+suffix, hdu.path, hdu.Index, errors.UnsupportedColumn, err)
			}
			col.repeat = repeat
			col.typ = typ
			col.width = width
			col.offset = offset
			offset += fieldBytes(repeat, typ, width)
			col.null, col.hasNull = hdr.Int("TNULL" + suffix)
		}

		t.cols = append(t.cols, col)
	}

	if !t.ascii && offset > t.rowLen {
		return nil, errors.NewFormatError("row narrower than column layout", hdu.path, hdu.Index, errors.InvalidHeader, nil)
	}

	return t, nil
}

// binaryForm parses a binary-table TFORM value: optional repeat count, type
// letter, optional extra qualifiers which are ignored.
func binaryForm(form string) (repeat int, typ byte, width int, err error) {
	s := strings.TrimSpace(form)
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	repeat = 1
	if i > 0 {
		repeat, _ = strconv.Atoi(s[:i])
	}
	if i >= len(s) {
		return 0, 0, 0, fmt.Errorf("no type letter in %q", form)
	}
	typ = s[i]
	switch typ {
	case 'L', 'B', 'A', 'X':
		width = 1
	case 'I':
		width = 2
	case 'J', 'E':
		width = 4
	case 'K', 'D', 'C', 'P':
		width = 8
	case 'M', 'Q':
		width = 16
	default:
		return 0, 0, 0, fmt.Errorf("unsupported type letter %q in %q", string(typ), form)
	}
	return repeat, typ, width, nil
}

// fieldBytes returns the storage taken by a binary field within a row.
func fieldBytes(repeat int, typ byte, width int) int {
	if typ == 'X' {
		return (repeat + 7) / 8 // bit arrays pack eight to a byte
	}
	if typ == 'P' || typ == 'Q' {
		return width // a single heap descriptor regardless of repeat
	}
	return repeat * width
}

// asciiWidth extracts the field width from an ASCII-table TFORM (Aw, Iw,
// Fw.d, Ew.d, Dw.d).
func asciiWidth(form string) int {
	s := strings.TrimSpace(form)
	if len(s) < 2 {
		return 0
	}
	num := s[1:]
	if idx := strings.IndexByte(num, '.'); idx >= 0 {
		num = num[:idx]
	}
	w, err := strconv.Atoi(num)
	if err != nil {
		return 0
	}
	return w
}

// Columns returns the column names in file order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// NumRows returns the row count.
func (t *Table) NumRows() int {
	return t.nrows
}

// Index returns the extension index of the underlying HDU.
func (t *Table) Index() int {
	return t.hdu.Index
}

// Header returns the table extension's header.
func (t *Table) Header() *Header {
	return t.hdu.Header
}

// Row decodes row i into one cell per column.
func (t *Table) Row(i int) ([]Cell, error) {
	if i < 0 || i >= t.nrows {
		return nil, errors.Newf("row %d out of range [0, %d)", i, t.nrows)
	}
	start := i * t.rowLen
	if start+t.rowLen > len(t.hdu.raw) {
		return nil, errors.NewFormatError("truncated data segment", t.hdu.path, t.hdu.Index, errors.TruncatedData, nil)
	}
	row := t.hdu.raw[start : start+t.rowLen]

	cells := make([]Cell, len(t.cols))
	for ci, col := range t.cols {
		if t.ascii {
			cells[ci] = asciiCell(row, col)
		} else {
			cells[ci] = binaryCell(row, col)
		}
	}
	return cells, nil
}

// asciiCell decodes one fixed-width character field.
func asciiCell(row []byte, col Column) Cell {
	field := strings.TrimSpace(string(row[col.start : col.start+col.width]))
	if field == "" || (col.nullStr != "" && field == col.nullStr) {
		return missingCell()
	}
	switch col.Form[0] {
	case 'A':
		return textCell(field)
	case 'I':
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return textCell(field)
		}
		return intCell(v)
	case 'F', 'E', 'D':
		normalized := strings.Replace(strings.Replace(field, "D", "E", 1), "d", "e", 1)
		v, err := strconv.ParseFloat(normalized, 64)
		if err != nil {
			return textCell(field)
		}
		return floatCell(v)
	}
	return textCell(field)
}

// binaryCell decodes one binary field. Multi-element fields render as a
// bracketed list, the style tabular dumps conventionally use.
func binaryCell(row []byte, col Column) Cell {
	buf := row[col.offset:]

	switch col.typ {
	case 'A':
		s := strings.TrimRight(string(buf[:col.repeat]), " \x00")
		return textCell(s)
	case 'X':
		nbytes := (col.repeat + 7) / 8
		parts := make([]string, nbytes)
		for i := 0; i < nbytes; i++ {
			parts[i] = fmt.Sprintf("%08b", buf[i])
		}
		return textCell(strings.Join(parts, ""))
	case 'P', 'Q':
		// Variable-length array descriptor: element count then heap offset.
		var n int64
		if col.typ == 'P' {
			n = int64(binary.BigEndian.Uint32(buf))
		} else {
			n = int64(binary.BigEndian.Uint64(buf))
		}
		return textCell(fmt.Sprintf("array[%d]", n))
	}

	if col.repeat == 1 {
		return binaryScalar(buf, col)
	}

	parts := make([]string, col.repeat)
	for i := 0; i < col.repeat; i++ {
		parts[i] = binaryScalar(buf[i*col.width:], col).Text
	}
	return textCell("[" + strings.Join(parts, " ") + "]")
}

// binaryScalar decodes a single element at the start of buf.
func binaryScalar(buf []byte, col Column) Cell {
	switch col.typ {
	case 'L':
		switch buf[0] {
		case 'T':
			return textCell("T")
		case 'F':
			return textCell("F")
		}
		return missingCell()
	case 'B':
		v := int64(buf[0])
		if col.hasNull && v == col.null {
			return missingCell()
		}
		return intCell(v)
	case 'I':
		v := int64(int16(binary.BigEndian.Uint16(buf)))
		if col.hasNull && v == col.null {
			return missingCell()
		}
		return intCell(v)
	case 'J':
		v := int64(int32(binary.BigEndian.Uint32(buf)))
		if col.hasNull && v == col.null {
			return missingCell()
		}
		return intCell(v)
	case 'K':
		v := int64(binary.BigEndian.Uint64(buf))
		if col.hasNull && v == col.null {
			return missingCell()
		}
		return intCell(v)
	case 'E':
		return floatCell32(float64(math.Float32frombits(binary.BigEndian.Uint32(buf))))
	case 'D':
		return floatCell(math.Float64frombits(binary.BigEndian.Uint64(buf)))
	case 'C':
		re := float64(math.Float32frombits(binary.BigEndian.Uint32(buf)))
		im := float64(math.Float32frombits(binary.BigEndian.Uint32(buf[4:])))
		return textCell(formatComplex(re, im))
	case 'M':
		re := math.Float64frombits(binary.BigEndian.Uint64(buf))
		im := math.Float64frombits(binary.BigEndian.Uint64(buf[8:]))
		return textCell(formatComplex(re, im))
	}
	return missingCell()
}

func formatComplex(re, im float64) string {
	sign := "+"
	if im < 0 || math.Signbit(im) {
		sign = "-"
		im = -im
	}
	return fmt.Sprintf("%g%s%gi", re, sign, im)
}
