package linecsv

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// GetObject reads the next row and assigns it field-wise, in
// declaration order, into dst's exported fields (the positional
// to_object path — the Go analogue of a tied() binding, since Go has no
// reference-tuple mechanism to model that directly). The column count
// is the number of exported fields.
func GetObject[U any](p *Parser, dst *U) bool {
	ok := p.readRow() && assignObjectFields(p, dst)
	p.releaseRow()
	if !ok {
		return false
	}

	if err := validateStruct(dst); err != nil {
		p.fail(err)
		return false
	}
	return true
}

// assignObjectFields applies the row currently held by p to dst's
// exported fields, in declaration order, without touching the reader.
// Shared by GetObject and the composite fallback's OrObject.
func assignObjectFields[U any](p *Parser, dst *U) bool {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		p.fail(ErrInvalidConversion)
		return false
	}
	rv = rv.Elem()
	rt := rv.Type()

	fieldIdx := make([]int, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		if rt.Field(i).PkgPath == "" {
			fieldIdx = append(fieldIdx, i)
		}
	}
	arity := len(fieldIdx)

	buf, ranges, ok := p.mappedRow(arity)
	if !ok {
		return false
	}
	for pos, fi := range fieldIdx {
		fv := rv.Field(fi)
		raw := ranges[pos].Bytes(buf)
		if !decodeIntoReflect(raw, fv) {
			p.fail(newParseError(p.lr.Line(), ranges[pos].Begin+1, ErrInvalidConversion))
			return false
		}
	}
	return true
}

// ToObjectNamed reads the next row and assigns the named header columns
// into dst by field name (via mapstructure), the header-keyed to_object
// path. names must be distinct header field names.
func ToObjectNamed[U any](p *Parser, dst *U, names []string) bool {
	if p.opts.IgnoreHeader {
		p.fail(ErrIgnoredHeader)
		return false
	}
	mapping, err := buildMapping(p.header, names)
	if err != nil {
		p.fail(err)
		return false
	}

	ok := p.readRow() && func() bool {
		ranges := p.rowRanges.Ranges
		if len(ranges) != mapping.OriginalWidth {
			p.fail(newParseError(p.lr.Line(), 0, ErrInvalidNumberOfColumns))
			return false
		}
		buf := p.rowBuf
		m := make(map[string]any, len(names))
		for i, idx := range mapping.Indices {
			m[names[i]] = string(ranges[idx].Bytes(buf))
		}
		// WeaklyTypedInput: every column starts life as a string; letting
		// mapstructure coerce it into dst's typed fields (int, float,
		// bool) is the point of the header-keyed path.
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           dst,
		})
		if err != nil {
			p.fail(fmt.Errorf("%w: %v", ErrInvalidConversion, err))
			return false
		}
		if err := dec.Decode(m); err != nil {
			p.fail(fmt.Errorf("%w: %v", ErrInvalidConversion, err))
			return false
		}
		return true
	}()
	p.releaseRow()
	if !ok {
		return false
	}

	if err := validateStruct(dst); err != nil {
		p.fail(err)
		return false
	}
	return true
}

func decodeIntoReflect(raw []byte, fv reflect.Value) bool {
	if fv.CanAddr() {
		if d, ok := fv.Addr().Interface().(Decodable); ok {
			return d.setFromBytes(raw)
		}
		if c, ok := fv.Addr().Interface().(*Char); ok {
			return Decode(raw, c)
		}
	}

	switch fv.Kind() {
	case reflect.Bool:
		var b bool
		if !decodeBool(raw, &b) {
			return false
		}
		fv.SetBool(b)
		return true
	case reflect.String:
		fv.SetString(string(raw))
		return true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decodeSignedInto(raw, bitSizeForIntKind(fv.Kind()), func(v int64) { fv.SetInt(v) })
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return decodeUnsignedInto(raw, bitSizeForIntKind(fv.Kind()), func(v uint64) { fv.SetUint(v) })
	case reflect.Float32:
		return decodeFloatInto(raw, 32, func(v float64) { fv.SetFloat(v) })
	case reflect.Float64:
		return decodeFloatInto(raw, 64, func(v float64) { fv.SetFloat(v) })
	default:
		return false
	}
}

func bitSizeForIntKind(k reflect.Kind) int {
	switch k {
	case reflect.Int8, reflect.Uint8:
		return 8
	case reflect.Int16, reflect.Uint16:
		return 16
	case reflect.Int32, reflect.Uint32:
		return 32
	default:
		return 64
	}
}
