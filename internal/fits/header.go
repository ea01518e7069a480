package fits

import (
	"strconv"
	"strings"
)

const (
	blockSize = 2880 // FITS files are sequences of 2880-byte blocks
	cardSize  = 80   // each header block holds 36 fixed-width cards
)

// Card is a single header record: a keyword, an optional typed value and an
// optional comment. Commentary keywords (COMMENT, HISTORY, blank) carry their
// text in Comment and have a nil Value.
type Card struct {
	Name    string
	Value   interface{} // string, int64, float64, bool or nil
	Comment string
}

// Header is the ordered card list of one HDU. Keywords may repeat; lookups
// return the first occurrence, repeated commentary keywords are exposed in
// file order via Comments and History.
type Header struct {
	cards []Card
}

// NewHeader builds a header from cards, mainly for tests and synthetic HDUs.
func NewHeader(cards ...Card) *Header {
	return &Header{cards: cards}
}

// Cards returns the cards in file order.
func (h *Header) Cards() []Card {
	return h.cards
}

// Get returns the first card with the given keyword.
func (h *Header) Get(name string) (Card, bool) {
	for _, c := range h.cards {
		if c.Name == name {
			return c, true
		}
	}
	return Card{}, false
}

// Has reports whether the keyword is present.
func (h *Header) Has(name string) bool {
	_, ok := h.Get(name)
	return ok
}

// Int returns the keyword's value as an integer.
func (h *Header) Int(name string) (int64, bool) {
	c, ok := h.Get(name)
	if !ok {
		return 0, false
	}
	switch v := c.Value.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	}
	return 0, false
}

// Float returns the keyword's value as a float.
func (h *Header) Float(name string) (float64, bool) {
	c, ok := h.Get(name)
	if !ok {
		return 0, false
	}
	switch v := c.Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Str returns the keyword's value as a string.
func (h *Header) Str(name string) (string, bool) {
	c, ok := h.Get(name)
	if !ok {
		return "", false
	}
	if s, ok := c.Value.(string); ok {
		return s, true
	}
	return "", false
}

// Bool returns the keyword's value as a bool.
func (h *Header) Bool(name string) (bool, bool) {
	c, ok := h.Get(name)
	if !ok {
		return false, false
	}
	if b, ok := c.Value.(bool); ok {
		return b, true
	}
	return false, false
}

// IntOr returns the keyword's integer value or the given default.
func (h *Header) IntOr(name string, def int64) int64 {
	if v, ok := h.Int(name); ok {
		return v
	}
	return def
}

// FloatOr returns the keyword's float value or the given default.
func (h *Header) FloatOr(name string, def float64) float64 {
	if v, ok := h.Float(name); ok {
		return v
	}
	return def
}

// StrOr returns the keyword's string value or the given default.
func (h *Header) StrOr(name, def string) string {
	if v, ok := h.Str(name); ok {
		return v
	}
	return def
}

// Comments returns all COMMENT entries in file order.
func (h *Header) Comments() []string {
	return h.commentary("COMMENT")
}

// History returns all HISTORY entries in file order.
func (h *Header) History() []string {
	return h.commentary("HISTORY")
}

func (h *Header) commentary(name string) []string {
	var out []string
	for _, c := range h.cards {
		if c.Name == name {
			out = append(out, c.Comment)
		}
	}
	return out
}

// Bitpix returns the BITPIX value (0 when absent).
func (h *Header) Bitpix() int {
	return int(h.IntOr("BITPIX", 0))
}

// Axes returns the NAXISn values in order. An empty slice means no data.
func (h *Header) Axes() []int {
	n := int(h.IntOr("NAXIS", 0))
	axes := make([]int, 0, n)
	for i := 1; i <= n; i++ {
		axes = append(axes, int(h.IntOr("NAXIS"+strconv.Itoa(i), 0)))
	}
	return axes
}

// parseHeader reads header blocks from buf starting at off until the END card.
// It returns the header and the offset of the first data block.
func parseHeader(buf []byte, off int) (*Header, int, error) {
	h := &Header{}
	for {
		if off+blockSize > len(buf) {
			return nil, 0, errTruncatedHeader
		}
		block := buf[off : off+blockSize]
		off += blockSize
		for i := 0; i < blockSize; i += cardSize {
			raw := block[i : i+cardSize]
			name := strings.TrimRight(string(raw[:8]), " ")
			if name == "END" {
				return h, off, nil
			}
			h.cards = append(h.cards, parseCard(name, raw))
		}
	}
}

// parseCard decodes one fixed-width card image.
func parseCard(name string, raw []byte) Card {
	rest := string(raw[8:])

	// Commentary cards have no value indicator; everything after the
	// keyword is text.
	if name == "COMMENT" || name == "HISTORY" || name == "" || !strings.HasPrefix(rest, "= ") {
		return Card{Name: name, Comment: strings.TrimRight(strings.TrimPrefix(rest, "= "), " ")}
	}

	body := rest[2:]
	value, comment := splitValue(body)
	return Card{Name: name, Value: parseValue(value), Comment: comment}
}

// splitValue separates the value field from the trailing comment, honouring
// quoted strings where a slash is ordinary text.
func splitValue(body string) (string, string) {
	trimmed := strings.TrimLeft(body, " ")
	if strings.HasPrefix(trimmed, "'") {
		// Scan to the closing quote; '' is an escaped quote.
		for i := 1; i < len(trimmed); i++ {
			if trimmed[i] != '\'' {
				continue
			}
			if i+1 < len(trimmed) && trimmed[i+1] == '\'' {
				i++
				continue
			}
			value := trimmed[:i+1]
			comment := strings.TrimLeft(trimmed[i+1:], " ")
			comment = strings.TrimRight(strings.TrimPrefix(comment, "/ "), " ")
			comment = strings.TrimPrefix(comment, "/")
			return value, comment
		}
		return trimmed, ""
	}
	if idx := strings.IndexByte(body, '/'); idx >= 0 {
		return strings.TrimSpace(body[:idx]), strings.TrimSpace(body[idx+1:])
	}
	return strings.TrimSpace(body), ""
}

// parseValue converts the textual value field into a typed Go value.
func parseValue(s string) interface{} {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return nil
	case s == "T":
		return true
	case s == "F":
		return false
	case strings.HasPrefix(s, "'"):
		inner := strings.TrimSuffix(strings.TrimPrefix(s, "'"), "'")
		inner = strings.ReplaceAll(inner, "''", "'")
		return strings.TrimRight(inner, " ")
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	// FITS allows D exponents in floating point values
	f := strings.Replace(strings.Replace(s, "D", "E", 1), "d", "e", 1)
	if v, err := strconv.ParseFloat(f, 64); err == nil {
		return v
	}
	return s
}
