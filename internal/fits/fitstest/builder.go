// Package fitstest builds small in-memory FITS byte streams for tests.
package fitstest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

const blockSize = 2880

// Card is one header record to encode.
type Card struct {
	Name    string
	Value   interface{} // string, int, int64, float64, bool or nil
	Comment string
}

// Builder assembles HDUs into a FITS byte stream.
type Builder struct {
	buf bytes.Buffer
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{}
}

// Bytes returns the assembled stream.
func (b *Builder) Bytes() []byte {
	return b.buf.Bytes()
}

// WriteTemp writes the stream to a file under t.TempDir and returns its path.
func (b *Builder) WriteTemp(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.fits")
	if err := os.WriteFile(path, b.Bytes(), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

// Header appends a header built from cards, terminated by END and padded to
// a whole block.
func (b *Builder) Header(cards ...Card) *Builder {
	var h bytes.Buffer
	for _, c := range cards {
		h.Write(encodeCard(c))
	}
	h.Write(pad80("END"))
	for h.Len()%blockSize != 0 {
		h.Write(pad80(""))
	}
	b.buf.Write(h.Bytes())
	return b
}

// Data appends a data segment padded to a whole block.
func (b *Builder) Data(raw []byte) *Builder {
	b.buf.Write(raw)
	if rem := len(raw) % blockSize; rem != 0 {
		b.buf.Write(make([]byte, blockSize-rem))
	}
	return b
}

func encodeCard(c Card) []byte {
	if c.Name == "COMMENT" || c.Name == "HISTORY" || c.Name == "" {
		return pad80(fmt.Sprintf("%-8s%s", c.Name, c.Comment))
	}

	var val string
	switch v := c.Value.(type) {
	case nil:
		return pad80(fmt.Sprintf("%-8s", c.Name))
	case string:
		val = fmt.Sprintf("%-20s", "'"+v+"'")
	case bool:
		if v {
			val = fmt.Sprintf("%20s", "T")
		} else {
			val = fmt.Sprintf("%20s", "F")
		}
	case int:
		val = fmt.Sprintf("%20d", v)
	case int64:
		val = fmt.Sprintf("%20d", v)
	case float64:
		val = fmt.Sprintf("%20s", strconv.FormatFloat(v, 'G', -1, 64))
	default:
		panic(fmt.Sprintf("fitstest: unsupported card value %T", c.Value))
	}

	line := fmt.Sprintf("%-8s= %s", c.Name, val)
	if c.Comment != "" {
		line += " / " + c.Comment
	}
	return pad80(line)
}

func pad80(s string) []byte {
	if len(s) > 80 {
		s = s[:80]
	}
	return []byte(fmt.Sprintf("%-80s", s))
}

// PrimaryHeader returns the standard primary-array cards for the given
// geometry. Extra cards follow the mandatory ones.
func PrimaryHeader(bitpix int, axes []int, extra ...Card) []Card {
	cards := []Card{
		{Name: "SIMPLE", Value: true, Comment: "conforms to FITS standard"},
		{Name: "BITPIX", Value: bitpix},
		{Name: "NAXIS", Value: len(axes)},
	}
	for i, n := range axes {
		cards = append(cards, Card{Name: "NAXIS" + strconv.Itoa(i+1), Value: n})
	}
	cards = append(cards, Card{Name: "EXTEND", Value: true})
	return append(cards, extra...)
}

// ImageHeader returns IMAGE extension cards for the given geometry.
func ImageHeader(bitpix int, axes []int, extra ...Card) []Card {
	cards := []Card{
		{Name: "XTENSION", Value: "IMAGE"},
		{Name: "BITPIX", Value: bitpix},
		{Name: "NAXIS", Value: len(axes)},
	}
	for i, n := range axes {
		cards = append(cards, Card{Name: "NAXIS" + strconv.Itoa(i+1), Value: n})
	}
	cards = append(cards,
		Card{Name: "PCOUNT", Value: 0},
		Card{Name: "GCOUNT", Value: 1},
	)
	return append(cards, extra...)
}

// BinTableHeader returns BINTABLE extension cards. names and forms run in
// parallel; rowLen is NAXIS1 in bytes.
func BinTableHeader(names, forms []string, rowLen, nrows int, extra ...Card) []Card {
	cards := []Card{
		{Name: "XTENSION", Value: "BINTABLE"},
		{Name: "BITPIX", Value: 8},
		{Name: "NAXIS", Value: 2},
		{Name: "NAXIS1", Value: rowLen},
		{Name: "NAXIS2", Value: nrows},
		{Name: "PCOUNT", Value: 0},
		{Name: "GCOUNT", Value: 1},
		{Name: "TFIELDS", Value: len(names)},
	}
	for i := range names {
		suffix := strconv.Itoa(i + 1)
		cards = append(cards,
			Card{Name: "TTYPE" + suffix, Value: names[i]},
			Card{Name: "TFORM" + suffix, Value: forms[i]},
		)
	}
	return append(cards, extra...)
}

// Float32BE packs values big-endian.
func Float32BE(vals ...float32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// Float64BE packs values big-endian.
func Float64BE(vals ...float64) []byte {
	out := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint64(out[i*8:], math.Float64bits(v))
	}
	return out
}

// Int16BE packs values big-endian.
func Int16BE(vals ...int16) []byte {
	out := make([]byte, 2*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}

// Int32BE packs values big-endian.
func Int32BE(vals ...int32) []byte {
	out := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.BigEndian.PutUint32(out[i*4:], uint32(v))
	}
	return out
}
