package linecsv

import (
	"reflect"
	"testing"
)

func fieldsOf(buf []byte, res SplitResult) []string {
	out := make([]string, len(res.Ranges))
	for i, r := range res.Ranges {
		out[i] = string(r.Bytes(buf))
	}
	return out
}

func TestSplitterBasic(t *testing.T) {
	sp := NewSplitter(Options{})
	buf := []byte("a,b,c")
	res := sp.Split(buf, ",")
	if !sp.Valid() {
		t.Fatalf("Valid() = false, err = %v", sp.Err())
	}
	want := []string{"a", "b", "c"}
	if got := fieldsOf(buf, res); !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v", got, want)
	}
}

func TestSplitterEmptyFields(t *testing.T) {
	sp := NewSplitter(Options{})
	buf := []byte("a,,c")
	res := sp.Split(buf, ",")
	want := []string{"a", "", "c"}
	if got := fieldsOf(buf, res); !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v", got, want)
	}
}

func TestSplitterMultiCharDelimiter(t *testing.T) {
	sp := NewSplitter(Options{})
	buf := []byte("a::b::c")
	res := sp.Split(buf, "::")
	want := []string{"a", "b", "c"}
	if got := fieldsOf(buf, res); !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v", got, want)
	}
}

func TestSplitterQuotedField(t *testing.T) {
	sp := NewSplitter(Options{QuoteEnabled: true, Quote: '"'})
	buf := []byte(`a,"b,c",d`)
	res := sp.Split(buf, ",")
	if !sp.Valid() {
		t.Fatalf("Valid() = false, err = %v", sp.Err())
	}
	want := []string{"a", "b,c", "d"}
	if got := fieldsOf(buf, res); !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v", got, want)
	}
}

func TestSplitterDoubledQuoteCollapse(t *testing.T) {
	sp := NewSplitter(Options{QuoteEnabled: true, Quote: '"'})
	buf := []byte(`"he said ""hi""",b`)
	res := sp.Split(buf, ",")
	want := []string{`he said "hi"`, "b"}
	if got := fieldsOf(buf, res); !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v", got, want)
	}
}

func TestSplitterEscape(t *testing.T) {
	sp := NewSplitter(Options{EscapeEnabled: true, Escape: '\\'})
	buf := []byte(`a\,b,c`)
	res := sp.Split(buf, ",")
	want := []string{"a,b", "c"}
	if got := fieldsOf(buf, res); !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v", got, want)
	}
}

func TestSplitterTrimRightBeforeDelimiter(t *testing.T) {
	sp := NewSplitter(Options{TrimRight: NewByteSet(' ')})
	buf := []byte("a  ,b")
	res := sp.Split(buf, ",")
	want := []string{"a", "b"}
	if got := fieldsOf(buf, res); !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v (trim-right before delimiter must be stripped)", got, want)
	}
}

func TestSplitterTrimRightMidFieldIsKept(t *testing.T) {
	sp := NewSplitter(Options{TrimRight: NewByteSet(' ')})
	buf := []byte("a  b,c")
	res := sp.Split(buf, ",")
	want := []string{"a  b", "c"}
	if got := fieldsOf(buf, res); !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v (mid-field trim bytes must survive)", got, want)
	}
}

func TestSplitterTrimRightAtEOFDoesNotStripEscapedByte(t *testing.T) {
	sp := NewSplitter(Options{EscapeEnabled: true, Escape: '\\', TrimRight: NewByteSet(' ')})
	buf := []byte(`a\ `)
	res := sp.Split(buf, ",")
	want := []string{"a "}
	if got := fieldsOf(buf, res); !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v (an escaped trim-right byte must round-trip literally)", got, want)
	}
}

func TestSplitterTrimRightAtEndOfBufferNoDelimiter(t *testing.T) {
	sp := NewSplitter(Options{TrimRight: NewByteSet(' ')})
	buf := []byte("ab  ")
	res := sp.Split(buf, ",")
	want := []string{"ab"}
	if got := fieldsOf(buf, res); !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v (trailing trim-right bytes with no delimiter must be stripped)", got, want)
	}
}

func TestSplitterTrimRightAfterClosingQuoteAtEOF(t *testing.T) {
	sp := NewSplitter(Options{QuoteEnabled: true, Quote: '"', TrimRight: NewByteSet(' ')})
	buf := []byte(`"ab"  `)
	res := sp.Split(buf, ",")
	if !sp.Valid() {
		t.Fatalf("Split() error = %v, want nil", sp.Err())
	}
	want := []string{"ab"}
	if got := fieldsOf(buf, res); !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v (trailing trim-right bytes after closing quote must be stripped, not ErrMismatchedQuote)", got, want)
	}
}

func TestSplitterTrimLeftAfterDelimiter(t *testing.T) {
	sp := NewSplitter(Options{TrimLeft: NewByteSet(' ')})
	buf := []byte("a,  b")
	res := sp.Split(buf, ",")
	want := []string{"a", "b"}
	if got := fieldsOf(buf, res); !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v", got, want)
	}
}

func TestSplitterMismatchedQuote(t *testing.T) {
	sp := NewSplitter(Options{QuoteEnabled: true, Quote: '"'})
	buf := []byte(`"abc"def,x`)
	sp.Split(buf, ",")
	if sp.Valid() {
		t.Fatalf("Valid() = true, want mismatched-quote error")
	}
	if sp.Err() != ErrMismatchedQuote {
		t.Errorf("Err() = %v, want ErrMismatchedQuote", sp.Err())
	}
}

func TestSplitterUnterminatedQuoteNoMultiline(t *testing.T) {
	sp := NewSplitter(Options{QuoteEnabled: true, Quote: '"'})
	buf := []byte(`"abc`)
	sp.Split(buf, ",")
	if sp.Err() != ErrUnterminatedQuote {
		t.Errorf("Err() = %v, want ErrUnterminatedQuote", sp.Err())
	}
}

func TestSplitterUnterminatedQuoteWithMultilineIsNotAnError(t *testing.T) {
	sp := NewSplitter(Options{QuoteEnabled: true, Quote: '"', Multiline: true})
	buf := []byte(`"abc`)
	sp.Split(buf, ",")
	if sp.Err() != nil {
		t.Errorf("Err() = %v, want nil under Multiline", sp.Err())
	}
	if !sp.UnterminatedQuote() {
		t.Errorf("UnterminatedQuote() = false, want true")
	}
}

func TestSplitterResplit(t *testing.T) {
	sp := NewSplitter(Options{QuoteEnabled: true, Quote: '"', Multiline: true})
	buf := []byte("\"abc")
	sp.Split(buf, ",")
	if !sp.UnterminatedQuote() {
		t.Fatalf("UnterminatedQuote() = false after partial quote")
	}

	buf2 := append(buf, []byte("\ndef\",x")...)
	res := sp.Resplit(buf2, ",")
	if !sp.Valid() {
		t.Fatalf("Valid() = false after Resplit, err = %v", sp.Err())
	}
	want := []string{"abc\ndef", "x"}
	if got := fieldsOf(buf2, res); !reflect.DeepEqual(got, want) {
		t.Errorf("fields = %v, want %v", got, want)
	}
}

func TestSplitterResplitWithoutUnterminatedQuoteFails(t *testing.T) {
	sp := NewSplitter(Options{QuoteEnabled: true, Quote: '"'})
	sp.Split([]byte("a,b"), ",")
	sp.Resplit([]byte("a,b,c"), ",")
	if sp.Err() != ErrInvalidResplit {
		t.Errorf("Err() = %v, want ErrInvalidResplit", sp.Err())
	}
}

func TestSplitterTrailingEscapeWithMultiline(t *testing.T) {
	sp := NewSplitter(Options{EscapeEnabled: true, Escape: '\\', Multiline: true})
	buf := []byte(`a\`)
	sp.Split(buf, ",")
	if sp.Err() != nil {
		t.Fatalf("Err() = %v, want nil", sp.Err())
	}
	if !sp.TrailingEscape() {
		t.Errorf("TrailingEscape() = false, want true")
	}
}

func TestSplitterInvalidEmptyDelimiter(t *testing.T) {
	sp := NewSplitter(Options{})
	sp.Split([]byte("a,b"), "")
	if sp.Err() != ErrInvalidOptions {
		t.Errorf("Err() = %v, want ErrInvalidOptions", sp.Err())
	}
}
