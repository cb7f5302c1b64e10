package linecsv

// Header holds the column names parsed from the first physical line,
// unless the parser was constructed with IgnoreHeader.
type Header struct {
	Names []string
	Raw   []byte
	valid bool
}

// ColumnMapping redirects tuple position i to physical column
// Indices[i], as set up by Parser.UseFields. OriginalWidth is the
// header's column count at the time the mapping was built; rows whose
// split width differs from it are rejected.
type ColumnMapping struct {
	Indices       []int
	OriginalWidth int
}

func buildHeader(raw []byte, sp *Splitter, delim string) (Header, error) {
	res := sp.Split(append([]byte(nil), raw...), delim)
	if sp.Err() != nil {
		return Header{}, ErrInvalidHeaderSplit
	}

	names := make([]string, len(res.Ranges))
	seen := make(map[string]bool, len(res.Ranges))
	buf := res2buf(sp)
	for i, r := range res.Ranges {
		name := string(r.Bytes(buf))
		if name == "" {
			return Header{}, ErrEmptyHeaderField
		}
		if seen[name] {
			return Header{}, ErrDuplicateHeaderField
		}
		seen[name] = true
		names[i] = name
	}

	return Header{Names: names, Raw: append([]byte(nil), raw...), valid: true}, nil
}

// res2buf recovers the buffer a Splitter last operated on. Exposed only
// to this file because header construction needs the rewritten bytes
// immediately after calling Split, before any other row is parsed.
func res2buf(sp *Splitter) []byte {
	return sp.buf
}

// FieldExists reports whether name appears in h. Only meaningful when
// IgnoreHeader is false.
func (h Header) FieldExists(name string) bool {
	for _, n := range h.Names {
		if n == name {
			return true
		}
	}
	return false
}

func (h Header) indexOf(name string) (int, bool) {
	for i, n := range h.Names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// buildMapping validates that every name in names is a distinct, existing
// header field and returns the corresponding ColumnMapping.
func buildMapping(h Header, names []string) (ColumnMapping, error) {
	if len(names) == 0 {
		return ColumnMapping{}, ErrEmptyFieldList
	}

	seen := make(map[string]bool, len(names))
	indices := make([]int, len(names))
	for i, name := range names {
		if seen[name] {
			return ColumnMapping{}, ErrFieldUsedMultipleTimes
		}
		seen[name] = true

		idx, ok := h.indexOf(name)
		if !ok {
			return ColumnMapping{}, ErrInvalidField
		}
		indices[i] = idx
	}

	return ColumnMapping{Indices: indices, OriginalWidth: len(h.Names)}, nil
}
