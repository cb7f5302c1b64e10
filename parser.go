package linecsv

import (
	"bytes"
	"os"
	"sync"

	"github.com/samber/lo"
)

var mappedRangePool = sync.Pool{
	New: func() any {
		s := make([]Range, 0, 8)
		return &s
	},
}

// Parser is the Converter façade described by the package: it drives a
// LineReader and Splitter pair, applies column mapping and per-column
// decode/validation, and exposes row retrieval, header, and composite
// fallback APIs.
//
// A Parser is not safe for concurrent use and must not be copied after
// first use.
type Parser struct {
	opts  Options
	delim string

	lr *LineReader
	sp *Splitter

	header  Header
	mapping *ColumnMapping

	file *os.File

	lastErr error
	eof     bool

	haveRow   bool
	rowBuf    []byte
	rowRanges SplitResult
}

// NewParserFile opens path in binary mode and returns a Parser reading
// delim-separated rows from it.
func NewParserFile(path string, delim string, opts Options) (*Parser, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrFileNotOpen
	}
	p, err := newParser(f, delim, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	p.file = f
	return p, nil
}

// NewParserBytes borrows data (read-only) and returns a Parser reading
// delim-separated rows from it.
func NewParserBytes(data []byte, delim string, opts Options) (*Parser, error) {
	if data == nil {
		return nil, ErrNullBuffer
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return newParser(bytes.NewReader(data), delim, opts)
}

func newParser(src readerSource, delim string, opts Options) (*Parser, error) {
	if len(delim) == 0 {
		return nil, ErrInvalidOptions
	}

	p := &Parser{
		opts:  opts,
		delim: delim,
		lr:    NewLineReader(src, opts.MultilineCap),
		sp:    NewSplitter(opts),
	}

	if !opts.IgnoreHeader {
		ok, err := p.lr.ReadNext(opts.IgnoreEmpty)
		if err != nil {
			return nil, err
		}
		if ok {
			headerOpts := opts
			headerOpts.Multiline = false
			headerSp := NewSplitter(headerOpts)
			h, err := buildHeader(p.lr.Buf(), headerSp, delim)
			if err != nil {
				return nil, err
			}
			p.header = h
		}
	}

	return p, nil
}

// readerSource is satisfied by *os.File and *bytes.Reader, the two
// byte-source constructors this package offers.
type readerSource interface {
	Read(p []byte) (n int, err error)
}

// Close releases the underlying file handle, if any.
func (p *Parser) Close() error {
	if p.file != nil {
		return p.file.Close()
	}
	return nil
}

// Valid reports whether the last row operation succeeded.
func (p *Parser) Valid() bool {
	return p.lastErr == nil
}

// ErrorMsg returns the last error's message, or "" if Valid or if the
// parser uses ErrorModeSilent.
func (p *Parser) ErrorMsg() string {
	if p.lastErr == nil || p.opts.ErrorMode == ErrorModeSilent {
		return ""
	}
	return p.lastErr.Error()
}

// Err returns the last error, or nil.
func (p *Parser) Err() error {
	return p.lastErr
}

// Header returns the parsed header. Only meaningful when IgnoreHeader
// is false; otherwise it returns an empty Header and ErrIgnoredHeader.
func (p *Parser) Header() (Header, error) {
	if p.opts.IgnoreHeader {
		return Header{}, ErrIgnoredHeader
	}
	return p.header, nil
}

// FieldExists reports whether name is a header column.
func (p *Parser) FieldExists(name string) (bool, error) {
	if p.opts.IgnoreHeader {
		return false, ErrIgnoredHeader
	}
	return p.header.FieldExists(name), nil
}

// UseFields restricts and reorders subsequent rows (and the in-flight
// row, if the reader is still positioned on the header line) to the
// named columns, in the given order.
func (p *Parser) UseFields(names ...string) error {
	if p.opts.IgnoreHeader {
		return ErrIgnoredHeader
	}
	m, err := buildMapping(p.header, names)
	if err != nil {
		return err
	}
	p.mapping = &m
	return nil
}

func (p *Parser) fail(err error) error {
	p.lastErr = err
	if p.opts.ErrorMode == ErrorModePanic {
		// Drop the pending row so a caller that recovers and retries
		// moves on to the next row instead of re-decoding this one.
		p.releaseRow()
		if _, ok := err.(*ParseError); !ok {
			err = newParseError(p.lr.Line(), 0, err)
		}
		panic(err)
	}
	return err
}

// readRow fetches the next logical row into p.rowBuf/p.rowRanges unless
// one is already pending (set by a prior TryNext that a composite has
// not yet released via releaseRow). It is idempotent within a single
// logical row so composite fallback can re-decode without re-reading.
func (p *Parser) readRow() bool {
	p.lastErr = nil
	if p.haveRow {
		return true
	}

	ok, err := p.lr.ReadNext(p.opts.IgnoreEmpty)
	if err != nil {
		p.fail(newParseError(p.lr.Line(), 0, err))
		return false
	}
	if !ok {
		p.eof = true
		p.fail(newParseError(p.lr.Line(), 0, ErrEofReached))
		return false
	}

	res, err := p.lr.Parse(p.sp, p.delim, p.opts.Multiline)
	if err != nil {
		p.fail(err)
		return false
	}

	p.rowBuf = p.lr.Buf()
	p.rowRanges = res
	p.haveRow = true
	return true
}

func (p *Parser) releaseRow() {
	p.haveRow = false
}

// mappedRow applies the active column mapping (if any) and the column
// count policy, returning the buffer and the exactly-arity ranges to
// decode.
func (p *Parser) mappedRow(arity int) ([]byte, []Range, bool) {
	ranges := p.rowRanges.Ranges

	if p.mapping != nil {
		if len(ranges) != p.mapping.OriginalWidth {
			p.fail(newParseError(p.lr.Line(), 0, ErrInvalidNumberOfColumns))
			return nil, nil, false
		}
		if arity != len(p.mapping.Indices) {
			p.fail(newParseError(p.lr.Line(), 0, ErrIncompatibleMapping))
			return nil, nil, false
		}
		mp := mappedRangePool.Get().(*[]Range)
		mapped := (*mp)[:0]
		for _, idx := range p.mapping.Indices {
			mapped = append(mapped, ranges[idx])
		}
		out := append([]Range(nil), mapped...)
		mappedRangePool.Put(mp)
		return p.rowBuf, out, true
	}

	if len(ranges) != arity {
		p.fail(newParseError(p.lr.Line(), 0, ErrInvalidNumberOfColumns))
		return nil, nil, false
	}
	return p.rowBuf, ranges, true
}

func decodeColumn[T any](p *Parser, col int, buf []byte, r Range, out *T) bool {
	raw := r.Bytes(buf)
	if !Decode(raw, out) {
		p.fail(newParseError(p.lr.Line(), r.Begin+1, ErrInvalidConversion))
		return false
	}
	if err := validateValue(p, col, *out); err != nil {
		p.fail(newParseError(p.lr.Line(), r.Begin+1, err))
		return false
	}
	return true
}

// GetNext1 reads and decodes the next row as a single scalar column.
func GetNext1[T1 any](p *Parser) (T1, bool) {
	var out T1
	ok := p.readRow() && func() bool {
		buf, ranges, ok := p.mappedRow(1)
		if !ok {
			return false
		}
		return decodeColumn(p, 0, buf, ranges[0], &out)
	}()
	p.releaseRow()
	if !ok {
		var zero T1
		return zero, false
	}
	return out, true
}

// GetNext2 reads and decodes the next row as a two-column tuple.
func GetNext2[T1, T2 any](p *Parser) (lo.Tuple2[T1, T2], bool) {
	var v1 T1
	var v2 T2
	ok := p.readRow() && func() bool {
		buf, ranges, ok := p.mappedRow(2)
		if !ok {
			return false
		}
		return decodeColumn(p, 0, buf, ranges[0], &v1) &&
			decodeColumn(p, 1, buf, ranges[1], &v2)
	}()
	p.releaseRow()
	if !ok {
		return lo.Tuple2[T1, T2]{}, false
	}
	return lo.Tuple2[T1, T2]{A: v1, B: v2}, true
}

// GetNext3 reads and decodes the next row as a three-column tuple.
func GetNext3[T1, T2, T3 any](p *Parser) (lo.Tuple3[T1, T2, T3], bool) {
	var v1 T1
	var v2 T2
	var v3 T3
	ok := p.readRow() && func() bool {
		buf, ranges, ok := p.mappedRow(3)
		if !ok {
			return false
		}
		return decodeColumn(p, 0, buf, ranges[0], &v1) &&
			decodeColumn(p, 1, buf, ranges[1], &v2) &&
			decodeColumn(p, 2, buf, ranges[2], &v3)
	}()
	p.releaseRow()
	if !ok {
		return lo.Tuple3[T1, T2, T3]{}, false
	}
	return lo.Tuple3[T1, T2, T3]{A: v1, B: v2, C: v3}, true
}

// GetNext4 reads and decodes the next row as a four-column tuple.
func GetNext4[T1, T2, T3, T4 any](p *Parser) (lo.Tuple4[T1, T2, T3, T4], bool) {
	var v1 T1
	var v2 T2
	var v3 T3
	var v4 T4
	ok := p.readRow() && func() bool {
		buf, ranges, ok := p.mappedRow(4)
		if !ok {
			return false
		}
		return decodeColumn(p, 0, buf, ranges[0], &v1) &&
			decodeColumn(p, 1, buf, ranges[1], &v2) &&
			decodeColumn(p, 2, buf, ranges[2], &v3) &&
			decodeColumn(p, 3, buf, ranges[3], &v4)
	}()
	p.releaseRow()
	if !ok {
		return lo.Tuple4[T1, T2, T3, T4]{}, false
	}
	return lo.Tuple4[T1, T2, T3, T4]{A: v1, B: v2, C: v3, D: v4}, true
}

// Iterate1 returns a single-pass sequence over GetNext1, stopping at
// EOF or (in non-panic error modes) at the first row-level error.
func Iterate1[T1 any](p *Parser) func(yield func(T1) bool) {
	return func(yield func(T1) bool) {
		for {
			v, ok := GetNext1[T1](p)
			if !ok {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Iterate2 returns a single-pass sequence over GetNext2.
func Iterate2[T1, T2 any](p *Parser) func(yield func(lo.Tuple2[T1, T2]) bool) {
	return func(yield func(lo.Tuple2[T1, T2]) bool) {
		for {
			v, ok := GetNext2[T1, T2](p)
			if !ok {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Iterate3 returns a single-pass sequence over GetNext3.
func Iterate3[T1, T2, T3 any](p *Parser) func(yield func(lo.Tuple3[T1, T2, T3]) bool) {
	return func(yield func(lo.Tuple3[T1, T2, T3]) bool) {
		for {
			v, ok := GetNext3[T1, T2, T3](p)
			if !ok {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Iterate4 returns a single-pass sequence over GetNext4.
func Iterate4[T1, T2, T3, T4 any](p *Parser) func(yield func(lo.Tuple4[T1, T2, T3, T4]) bool) {
	return func(yield func(lo.Tuple4[T1, T2, T3, T4]) bool) {
		for {
			v, ok := GetNext4[T1, T2, T3, T4](p)
			if !ok {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}
