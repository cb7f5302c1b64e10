package linecsv

import (
	"errors"
	"fmt"
)

// Sentinel errors identifying each error kind the parser can surface.
// Higher-level errors wrap one of these with fmt.Errorf so callers can
// use errors.Is/errors.As.
var (
	ErrFileNotOpen            = errors.New("linecsv: file not open")
	ErrNullBuffer             = errors.New("linecsv: nil buffer")
	ErrEofReached             = errors.New("linecsv: eof reached")
	ErrInvalidHeaderSplit     = errors.New("linecsv: header could not be split")
	ErrDuplicateHeaderField   = errors.New("linecsv: duplicate header field")
	ErrEmptyHeaderField       = errors.New("linecsv: empty header field")
	ErrInvalidField           = errors.New("linecsv: use_fields references a nonexistent column")
	ErrFieldUsedMultipleTimes = errors.New("linecsv: field used multiple times in use_fields")
	ErrEmptyFieldList         = errors.New("linecsv: use_fields called with no names")
	ErrIgnoredHeader          = errors.New("linecsv: header API used while IgnoreHeader is set")
	ErrInvalidNumberOfColumns = errors.New("linecsv: invalid number of columns")
	ErrIncompatibleMapping    = errors.New("linecsv: column mapping incompatible with row shape")
	ErrInvalidConversion      = errors.New("linecsv: invalid conversion")
	ErrValidationFailed       = errors.New("linecsv: validation failed")
	ErrMismatchedQuote        = errors.New("linecsv: mismatched quote")
	ErrUnterminatedQuote      = errors.New("linecsv: unterminated quote")
	ErrUnterminatedEscape     = errors.New("linecsv: unterminated escape")
	ErrMultilineLimitReached  = errors.New("linecsv: multiline continuation limit reached")
	ErrInvalidResplit         = errors.New("linecsv: resplit called without a pending unterminated quote")
	ErrFailedCheck            = errors.New("linecsv: try_next/or_else callback returned false")
	ErrInvalidOptions         = errors.New("linecsv: invalid options")
)

// ParseError carries the position of a row-level failure along with the
// sentinel error it wraps.
type ParseError struct {
	// Line is the 1-based physical line number the error was detected on,
	// counting continuation lines.
	Line int
	// Column is the 1-based byte offset within the row the error relates
	// to, or 0 when not applicable.
	Column int
	// Err is one of the sentinel errors above.
	Err error
}

func (e *ParseError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("linecsv: line %d, column %d: %s", e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("linecsv: line %d: %s", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(line, column int, err error) *ParseError {
	return &ParseError{Line: line, Column: column, Err: err}
}
