package linecsv

import "fmt"

// ByteSet is a small fixed-size membership set over the byte alphabet,
// used for trim-character configuration.
type ByteSet [256]bool

// NewByteSet builds a ByteSet containing exactly the given bytes.
func NewByteSet(bs ...byte) ByteSet {
	var s ByteSet
	for _, b := range bs {
		s[b] = true
	}
	return s
}

// Contains reports whether b is a member of the set.
func (s ByteSet) Contains(b byte) bool {
	return s[b]
}

func (s ByteSet) empty() bool {
	for _, v := range s {
		if v {
			return false
		}
	}
	return true
}

func (s ByteSet) overlaps(other ByteSet) bool {
	for i := range s {
		if s[i] && other[i] {
			return true
		}
	}
	return false
}

// ErrorMode selects how the parser surfaces row-level failures.
type ErrorMode int

const (
	// ErrorModeSilent returns only a validity bit; Parser.ErrorMsg reports
	// no message (Parser.Err still returns the error value).
	ErrorModeSilent ErrorMode = iota
	// ErrorModeString returns a validity bit and records a human-readable
	// message retrievable via Parser.ErrorMsg.
	ErrorModeString
	// ErrorModePanic panics with a *ParseError on any row-level failure.
	ErrorModePanic
)

// Options configures a Parser's quoting, escaping, trimming, multiline
// and error-reporting behavior. The zero value is the permissive default:
// no quoting, no escaping, no trimming, no multiline, header expected,
// empty lines kept, silent errors.
type Options struct {
	Quote        byte
	QuoteEnabled bool

	Escape        byte
	EscapeEnabled bool

	TrimLeft  ByteSet
	TrimRight ByteSet

	Multiline    bool
	MultilineCap int // 0 means unlimited

	IgnoreHeader bool
	IgnoreEmpty  bool

	ErrorMode ErrorMode

	// ColumnTags, when non-nil, supplies a go-playground/validator tag
	// string to run against column i after scalar decode (see validate.go).
	ColumnTags map[int]string
}

// Validate enforces the invariants required of Options: quote/escape/trim
// sets are pairwise disjoint, NUL is never a matcher byte, and multiline
// requires at least one of quote or escape to be enabled.
func (o Options) Validate() error {
	if o.QuoteEnabled && o.Quote == 0 {
		return wrapOpt("quote byte must not be NUL")
	}
	if o.EscapeEnabled && o.Escape == 0 {
		return wrapOpt("escape byte must not be NUL")
	}
	if o.TrimLeft.Contains(0) || o.TrimRight.Contains(0) {
		return wrapOpt("trim sets must not contain NUL")
	}
	if o.QuoteEnabled && o.EscapeEnabled && o.Quote == o.Escape {
		return wrapOpt("quote and escape bytes must be disjoint")
	}
	if o.QuoteEnabled {
		if o.TrimLeft.Contains(o.Quote) || o.TrimRight.Contains(o.Quote) {
			return wrapOpt("quote byte must not be a member of a trim set")
		}
	}
	if o.EscapeEnabled {
		if o.TrimLeft.Contains(o.Escape) || o.TrimRight.Contains(o.Escape) {
			return wrapOpt("escape byte must not be a member of a trim set")
		}
	}
	if o.TrimLeft.overlaps(o.TrimRight) {
		return wrapOpt("trim_left and trim_right must be disjoint")
	}
	if o.Multiline && !o.QuoteEnabled && !o.EscapeEnabled {
		return wrapOpt("multiline requires quote or escape to be enabled")
	}
	if o.MultilineCap < 0 {
		return wrapOpt("multiline cap must not be negative")
	}
	return nil
}

func wrapOpt(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptions, msg)
}
