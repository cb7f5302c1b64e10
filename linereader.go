package linecsv

import (
	"bufio"
	"bytes"
	"io"
)

// LineReader owns the growable line buffer, detects LF/CRLF framing,
// and performs multiline continuation when the Splitter reports an
// unterminated quote or the buffer ends in an odd run of escape bytes.
type LineReader struct {
	src *bufio.Reader

	buf      []byte
	line     int
	crlf     bool
	multiCap int

	sawFirst bool
	eof      bool
}

// NewLineReader wraps src (a file or an in-memory reader) for streaming
// physical-line reads.
func NewLineReader(src io.Reader, multilineCap int) *LineReader {
	return &LineReader{
		src:      bufio.NewReader(src),
		multiCap: multilineCap,
	}
}

// Line returns the 1-based physical line number of the most recently
// read line (counting continuations).
func (lr *LineReader) Line() int {
	return lr.line
}

// ReadNext reads the next physical line into the internal buffer,
// stripping the trailing LF (and a preceding CR, remembered for
// continuation re-append). ignoreEmpty causes blank physical lines to
// be skipped. It reports false once the source is exhausted.
func (lr *LineReader) ReadNext(ignoreEmpty bool) (ok bool, err error) {
	for {
		line, readErr := lr.src.ReadBytes('\n')
		if len(line) == 0 && readErr != nil {
			if readErr == io.EOF {
				return false, nil
			}
			return false, readErr
		}

		lr.line++
		lr.crlf = false

		if len(line) > 0 && line[len(line)-1] == '\n' {
			line = line[:len(line)-1]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
				lr.crlf = true
			}
		} else if readErr == io.EOF {
			// last line of the file, no trailing newline at all
		}

		lr.buf = append(lr.buf[:0], line...)
		if !lr.sawFirst {
			lr.sawFirst = true
			lr.buf = append(lr.buf[:0], skipUTF8BOM(lr.buf)...)
		}

		if ignoreEmpty && len(lr.buf) == 0 {
			if readErr == io.EOF {
				return false, nil
			}
			continue
		}
		return true, nil
	}
}

// Buf exposes the current logical row's bytes. Valid only until the
// next ReadNext call.
func (lr *LineReader) Buf() []byte {
	return lr.buf
}

// Parse drives sp over the current buffer, appending continuation
// physical lines while sp reports an unterminated quote or the buffer
// ends in an odd run of escape bytes, honoring the multiline cap.
func (lr *LineReader) Parse(sp *Splitter, delim string, multiline bool) (SplitResult, error) {
	res := sp.Split(lr.buf, delim)
	if !multiline {
		if sp.Err() != nil {
			return res, newParseError(lr.line, 0, sp.Err())
		}
		return res, nil
	}

	continuations := 0
	for sp.UnterminatedQuote() || (sp.Valid() && endsWithOddEscapeRun(lr.buf, sp.opts.Escape, sp.opts.EscapeEnabled)) {
		if lr.multiCap > 0 && continuations >= lr.multiCap {
			return res, newParseError(lr.line, 0, ErrMultilineLimitReached)
		}
		continuations++

		if err := lr.appendContinuation(); err != nil {
			if sp.UnterminatedQuote() {
				return res, newParseError(lr.line, 0, ErrUnterminatedQuote)
			}
			return res, newParseError(lr.line, 0, ErrUnterminatedEscape)
		}

		if sp.UnterminatedQuote() {
			res = sp.Resplit(lr.buf, delim)
		} else {
			res = sp.Split(lr.buf, delim)
		}
	}

	if sp.Err() != nil {
		return res, newParseError(lr.line, 0, sp.Err())
	}
	return res, nil
}

// appendContinuation restores the stripped EOL, reads the next physical
// line, and appends it to lr.buf.
func (lr *LineReader) appendContinuation() error {
	if lr.crlf {
		lr.buf = append(lr.buf, '\r', '\n')
	} else {
		lr.buf = append(lr.buf, '\n')
	}

	line, readErr := lr.src.ReadBytes('\n')
	if len(line) == 0 && readErr != nil {
		return io.ErrUnexpectedEOF
	}

	lr.line++
	lr.crlf = false
	if len(line) > 0 && line[len(line)-1] == '\n' {
		line = line[:len(line)-1]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
			lr.crlf = true
		}
	}

	lr.buf = append(lr.buf, line...)
	return nil
}

// endsWithOddEscapeRun reports whether buf ends with an odd-length run
// of the escape byte, the trigger for escaped-multiline continuation:
// a single trailing backslash means "the newline that followed was
// meant literally", a doubled trailing backslash means "an escaped
// backslash, followed by a real line end".
func endsWithOddEscapeRun(buf []byte, escape byte, escapeEnabled bool) bool {
	if !escapeEnabled || len(buf) == 0 {
		return false
	}
	run := 0
	for i := len(buf) - 1; i >= 0 && buf[i] == escape; i-- {
		run++
	}
	return run%2 == 1
}

// skipUTF8BOM drops a leading UTF-8 byte-order mark, if present.
func skipUTF8BOM(b []byte) []byte {
	if bytes.HasPrefix(b, []byte{0xEF, 0xBB, 0xBF}) {
		return b[3:]
	}
	return b
}
