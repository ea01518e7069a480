// Package fits reads FITS (Flexible Image Transport System) containers:
// ordered header-data units holding tabular records or N-dimensional numeric
// arrays. Files are opened read-only, either memory-mapped or fully loaded.
package fits

import (
	"bytes"
	"os"

	"github.com/edsrzf/mmap-go"

	"fitsview/internal/errors"
)

var errTruncatedHeader = errors.New("header ends before END card")

// Kind classifies an HDU by its data layout.
type Kind int

const (
	Unknown Kind = iota
	Primary      // primary array, image-like when it has data
	Image        // IMAGE extension
	BinTable     // BINTABLE extension
	AsciiTable   // TABLE extension
)

// Name returns the conventional HDU type name.
func (k Kind) Name() string {
	switch k {
	case Primary:
		return "PrimaryHDU"
	case Image:
		return "ImageHDU"
	case BinTable:
		return "BinTableHDU"
	case AsciiTable:
		return "TableHDU"
	}
	return "UnknownHDU"
}

// HDU is one header-data unit. The raw data segment is a slice of the
// underlying file buffer and is decoded on demand.
type HDU struct {
	Index  int
	Kind   Kind
	Header *Header
	raw    []byte
	path   string
}

// IsTable reports whether the HDU holds tabular data.
func (h *HDU) IsTable() bool {
	return h.Kind == BinTable || h.Kind == AsciiTable
}

// IsImage reports whether the HDU holds a non-empty numeric array.
func (h *HDU) IsImage() bool {
	if h.Kind != Primary && h.Kind != Image {
		return false
	}
	return h.HasData()
}

// HasData reports whether the HDU carries a non-empty data segment.
func (h *HDU) HasData() bool {
	return len(h.raw) > 0
}

// Shape returns the array dimensions in row-major order (slowest axis
// first), the reverse of the NAXISn file order.
func (h *HDU) Shape() []int {
	axes := h.Header.Axes()
	shape := make([]int, len(axes))
	for i, n := range axes {
		shape[len(axes)-1-i] = n
	}
	return shape
}

// scaledInteger reports whether the HDU stores integer data that needs
// BSCALE/BZERO/BLANK rescaling. Such data cannot be served from a mapped
// buffer without materializing it.
func (h *HDU) scaledInteger() bool {
	if h.Kind != Primary && h.Kind != Image {
		return false
	}
	if h.Header.Bitpix() <= 0 || !h.HasData() {
		return false
	}
	if h.Header.Has("BLANK") {
		return true
	}
	if h.Header.FloatOr("BSCALE", 1) != 1 {
		return true
	}
	return h.Header.FloatOr("BZERO", 0) != 0
}

// Options controls how a file is opened.
type Options struct {
	Mapped bool // serve data lazily from a memory map
}

// File is an opened FITS container. It is read-only and safe to share
// between viewers; Close invalidates all HDU data slices.
type File struct {
	Path   string
	Mapped bool

	hdus []*HDU
	buf  []byte
	mm   mmap.MMap
	osf  *os.File
}

// Open opens the FITS file at path. In mapped mode the data segments stay on
// disk and integer data with scaling headers is rejected with a
// ScaledMapping error so callers can retry fully loaded.
func Open(path string, opts Options) (*File, error) {
	f := &File{Path: path, Mapped: opts.Mapped}

	if opts.Mapped {
		osf, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NewFileError("file not found", path, errors.FileNotFound, err)
			}
			return nil, errors.NewFileError("cannot open file", path, errors.FileAccessDenied, err)
		}
		mm, err := mmap.Map(osf, mmap.RDONLY, 0)
		if err != nil {
			osf.Close()
			return nil, errors.NewFileError("cannot map file", path, errors.FileAccessDenied, err)
		}
		f.osf = osf
		f.mm = mm
		f.buf = mm
	} else {
		buf, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NewFileError("file not found", path, errors.FileNotFound, err)
			}
			return nil, errors.NewFileError("cannot read file", path, errors.FileAccessDenied, err)
		}
		f.buf = buf
	}

	if err := f.parse(); err != nil {
		f.Close()
		return nil, err
	}

	if opts.Mapped {
		for _, hdu := range f.hdus {
			if hdu.scaledInteger() {
				f.Close()
				return nil, errors.NewFormatError(
					"BZERO/BSCALE/BLANK headers on memory-mapped data",
					path, hdu.Index, errors.ScaledMapping, nil)
			}
		}
	}

	return f, nil
}

// parse walks the buffer and records every HDU.
func (f *File) parse() error {
	if !bytes.HasPrefix(f.buf, []byte("SIMPLE  =")) {
		return errors.NewFormatError("not a FITS file", f.Path, 0, errors.InvalidHeader, nil)
	}

	off := 0
	for off < len(f.buf) {
		if len(f.buf)-off < blockSize {
			// Trailing partial block; FITS writers pad, some tools don't.
			break
		}

		index := len(f.hdus)
		hdr, dataOff, err := parseHeader(f.buf, off)
		if err != nil {
			return errors.NewFormatError("malformed header", f.Path, index, errors.InvalidHeader, err)
		}

		size := dataSize(hdr)
		if dataOff+size > len(f.buf) {
			return errors.NewFormatError("truncated data segment", f.Path, index, errors.TruncatedData, nil)
		}

		f.hdus = append(f.hdus, &HDU{
			Index:  index,
			Kind:   classify(hdr, index),
			Header: hdr,
			raw:    f.buf[dataOff : dataOff+size],
			path:   f.Path,
		})

		off = dataOff + paddedSize(size)
	}

	return nil
}

// classify maps header keywords to an HDU kind.
func classify(hdr *Header, index int) Kind {
	if index == 0 {
		return Primary
	}
	switch hdr.StrOr("XTENSION", "") {
	case "IMAGE":
		return Image
	case "BINTABLE":
		return BinTable
	case "TABLE":
		return AsciiTable
	}
	return Unknown
}

// dataSize computes the data segment length in bytes from the header, per
// the general FITS sizing rule covering both arrays and table extensions.
func dataSize(hdr *Header) int {
	axes := hdr.Axes()
	if len(axes) == 0 {
		return 0
	}
	prod := 1
	for _, n := range axes {
		prod *= n
	}
	bitpix := hdr.Bitpix()
	if bitpix == 0 {
		return 0
	}
	gcount := int(hdr.IntOr("GCOUNT", 1))
	pcount := int(hdr.IntOr("PCOUNT", 0))
	bytesPer := bitpix
	if bytesPer < 0 {
		bytesPer = -bytesPer
	}
	return bytesPer / 8 * gcount * (pcount + prod)
}

// paddedSize rounds a data length up to a whole number of blocks.
func paddedSize(n int) int {
	if rem := n % blockSize; rem != 0 {
		return n + blockSize - rem
	}
	return n
}

// HDUs returns all header-data units in file order.
func (f *File) HDUs() []*HDU {
	return f.hdus
}

// HDU returns the unit at the given index.
func (f *File) HDU(i int) *HDU {
	return f.hdus[i]
}

// FirstTable returns the first tabular extension in file order. Absence is a
// valid state, not an error.
func (f *File) FirstTable() (*Table, bool) {
	for _, hdu := range f.hdus {
		if hdu.IsTable() {
			t, err := newTable(hdu)
			if err != nil {
				// A malformed table is treated the same as no table;
				// the browser degrades to its placeholder.
				return nil, false
			}
			return t, true
		}
	}
	return nil, false
}

// Images returns all image-like HDUs with non-empty data, in file order.
func (f *File) Images() []*HDU {
	var out []*HDU
	for _, hdu := range f.hdus {
		if hdu.IsImage() {
			out = append(out, hdu)
		}
	}
	return out
}

// Close releases the underlying buffer or mapping.
func (f *File) Close() error {
	f.hdus = nil
	f.buf = nil
	var err error
	if f.mm != nil {
		err = f.mm.Unmap()
		f.mm = nil
	}
	if f.osf != nil {
		if cerr := f.osf.Close(); err == nil {
			err = cerr
		}
		f.osf = nil
	}
	return err
}
