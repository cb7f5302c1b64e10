package linecsv

import (
	"errors"
	"testing"
)

func TestByteSet(t *testing.T) {
	s := NewByteSet('a', 'b', 'c')
	for _, b := range []byte{'a', 'b', 'c'} {
		if !s.Contains(b) {
			t.Errorf("Contains(%q) = false, want true", b)
		}
	}
	if s.Contains('d') {
		t.Errorf("Contains('d') = true, want false")
	}

	var empty ByteSet
	if !empty.empty() {
		t.Errorf("zero ByteSet.empty() = false, want true")
	}
	if s.empty() {
		t.Errorf("populated ByteSet.empty() = true, want false")
	}

	a := NewByteSet(' ', '\t')
	b := NewByteSet('\t', ',')
	if !a.overlaps(b) {
		t.Errorf("overlapping sets reported as disjoint")
	}
	c := NewByteSet('x', 'y')
	if a.overlaps(c) {
		t.Errorf("disjoint sets reported as overlapping")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"zero value", Options{}, false},
		{
			"quote enabled with byte",
			Options{QuoteEnabled: true, Quote: '"'},
			false,
		},
		{
			"quote enabled without byte",
			Options{QuoteEnabled: true, Quote: 0},
			true,
		},
		{
			"escape enabled without byte",
			Options{EscapeEnabled: true, Escape: 0},
			true,
		},
		{
			"trim set contains NUL",
			Options{TrimLeft: NewByteSet(0)},
			true,
		},
		{
			"quote equals escape",
			Options{QuoteEnabled: true, Quote: '"', EscapeEnabled: true, Escape: '"'},
			true,
		},
		{
			"quote byte inside trim set",
			Options{QuoteEnabled: true, Quote: '"', TrimLeft: NewByteSet('"')},
			true,
		},
		{
			"escape byte inside trim set",
			Options{EscapeEnabled: true, Escape: '\\', TrimRight: NewByteSet('\\')},
			true,
		},
		{
			"trim sets overlap",
			Options{TrimLeft: NewByteSet(' '), TrimRight: NewByteSet(' ')},
			true,
		},
		{
			"multiline without quote or escape",
			Options{Multiline: true},
			true,
		},
		{
			"multiline with quote",
			Options{Multiline: true, QuoteEnabled: true, Quote: '"'},
			false,
		},
		{
			"negative multiline cap",
			Options{MultilineCap: -1},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("error %v does not wrap ErrInvalidOptions", err)
			}
		})
	}
}
