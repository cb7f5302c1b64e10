package linecsv

import (
	"fmt"

	"github.com/samber/lo"
)

type attempt struct {
	ok    bool
	value any
}

// Composite accumulates the result of trying several row shapes against
// the same physical row in turn: try_next/try_object start it, or_else/
// or_object extend it, on_error inspects parser validity mid-chain, and
// values finalizes it. Exactly one attempt is ok on overall success.
type Composite struct {
	p        *Parser
	attempts []attempt
}

func (c *Composite) anySucceeded() bool {
	for _, a := range c.attempts {
		if a.ok {
			return true
		}
	}
	return false
}

// TryNext1 reads the next row and attempts to decode it as a single
// scalar, starting a Composite.
func TryNext1[T1 any](p *Parser) *Composite {
	v, ok := GetNext1[T1](p)
	return &Composite{p: p, attempts: []attempt{{ok: ok, value: v}}}
}

// TryNext2 reads the next row and attempts to decode it as a two-column
// tuple, starting a Composite.
func TryNext2[T1, T2 any](p *Parser) *Composite {
	v, ok := GetNext2[T1, T2](p)
	return &Composite{p: p, attempts: []attempt{{ok: ok, value: v}}}
}

// TryNext3 reads the next row and attempts to decode it as a
// three-column tuple, starting a Composite.
func TryNext3[T1, T2, T3 any](p *Parser) *Composite {
	v, ok := GetNext3[T1, T2, T3](p)
	return &Composite{p: p, attempts: []attempt{{ok: ok, value: v}}}
}

// TryNext4 reads the next row and attempts to decode it as a
// four-column tuple, starting a Composite.
func TryNext4[T1, T2, T3, T4 any](p *Parser) *Composite {
	v, ok := GetNext4[T1, T2, T3, T4](p)
	return &Composite{p: p, attempts: []attempt{{ok: ok, value: v}}}
}

// TryObject reads the next row and attempts positional assignment into
// dst's exported fields, starting a Composite. dst's decoded fields are
// copied into the attempt, so a later successful alternative does not
// retroactively change what Values reports for this attempt.
func TryObject[U any](p *Parser, dst *U) *Composite {
	ok := GetObject[U](p, dst)
	var v U
	if ok {
		v = *dst
	}
	return &Composite{p: p, attempts: []attempt{{ok: ok, value: v}}}
}

// OrObject retries the same row (without advancing the reader) as a
// positional struct assignment into dst, only if every prior attempt on
// c failed. fn, if non-nil, is invoked on success; a false return marks
// this attempt failed too (ErrFailedCheck).
func OrObject[U any](c *Composite, dst *U, fn func(*U) bool) *Composite {
	if c.anySucceeded() {
		c.attempts = append(c.attempts, attempt{})
		return c
	}
	c.p.haveRow = true
	c.p.lastErr = nil
	ok := assignObjectFields(c.p, dst)
	if ok {
		if err := validateStruct(dst); err != nil {
			c.p.fail(err)
			ok = false
		}
	}
	if ok && fn != nil && !fn(dst) {
		c.p.fail(ErrFailedCheck)
		ok = false
	}
	var v U
	if ok {
		v = *dst
	}
	c.attempts = append(c.attempts, attempt{ok: ok, value: v})
	return c
}

// OrElse1 retries the same row (without advancing the reader) as a
// single scalar, only if every prior attempt on c failed. fn, if
// non-nil, is invoked on success; a false return marks this attempt
// failed too (ErrFailedCheck), so a later OrElse can still run.
func OrElse1[T1 any](c *Composite, fn func(T1) bool) *Composite {
	if c.anySucceeded() {
		c.attempts = append(c.attempts, attempt{})
		return c
	}
	c.p.haveRow = true // the row was already consumed by the first TryNext
	v, ok := decodeSameRow1[T1](c.p)
	if ok && fn != nil && !fn(v) {
		c.p.fail(ErrFailedCheck)
		ok = false
	}
	c.attempts = append(c.attempts, attempt{ok: ok, value: v})
	return c
}

// OrElse2 is OrElse1's two-column counterpart.
func OrElse2[T1, T2 any](c *Composite, fn func(lo.Tuple2[T1, T2]) bool) *Composite {
	if c.anySucceeded() {
		c.attempts = append(c.attempts, attempt{})
		return c
	}
	c.p.haveRow = true
	v, ok := decodeSameRow2[T1, T2](c.p)
	if ok && fn != nil && !fn(v) {
		c.p.fail(ErrFailedCheck)
		ok = false
	}
	c.attempts = append(c.attempts, attempt{ok: ok, value: v})
	return c
}

// OrElse3 is OrElse1's three-column counterpart.
func OrElse3[T1, T2, T3 any](c *Composite, fn func(lo.Tuple3[T1, T2, T3]) bool) *Composite {
	if c.anySucceeded() {
		c.attempts = append(c.attempts, attempt{})
		return c
	}
	c.p.haveRow = true
	v, ok := decodeSameRow3[T1, T2, T3](c.p)
	if ok && fn != nil && !fn(v) {
		c.p.fail(ErrFailedCheck)
		ok = false
	}
	c.attempts = append(c.attempts, attempt{ok: ok, value: v})
	return c
}

// OrElse4 is OrElse1's four-column counterpart.
func OrElse4[T1, T2, T3, T4 any](c *Composite, fn func(lo.Tuple4[T1, T2, T3, T4]) bool) *Composite {
	if c.anySucceeded() {
		c.attempts = append(c.attempts, attempt{})
		return c
	}
	c.p.haveRow = true
	v, ok := decodeSameRow4[T1, T2, T3, T4](c.p)
	if ok && fn != nil && !fn(v) {
		c.p.fail(ErrFailedCheck)
		ok = false
	}
	c.attempts = append(c.attempts, attempt{ok: ok, value: v})
	return c
}

// OnError invokes fn with the parser's current error if the parser is
// invalid. Forbidden under ErrorModePanic, since errors there already
// unwind the stack before a Composite chain could call this.
func OnError(c *Composite, fn func(error)) *Composite {
	if c.p.opts.ErrorMode == ErrorModePanic {
		panic(fmt.Errorf("linecsv: on_error is forbidden under ErrorModePanic"))
	}
	if !c.p.Valid() {
		fn(c.p.Err())
	}
	return c
}

// Values finalizes c: exactly one element is non-nil on overall success,
// all nil on overall failure. This also releases the pending row so the
// next TryNext call advances to a fresh row.
func Values(c *Composite) []any {
	out := make([]any, len(c.attempts))
	for i, a := range c.attempts {
		if a.ok {
			out[i] = a.value
		}
	}
	c.p.releaseRow()
	return out
}

func decodeSameRow1[T1 any](p *Parser) (T1, bool) {
	p.lastErr = nil
	var v1 T1
	ok := func() bool {
		buf, ranges, ok := p.mappedRow(1)
		if !ok {
			return false
		}
		return decodeColumn(p, 0, buf, ranges[0], &v1)
	}()
	if !ok {
		var zero T1
		return zero, false
	}
	return v1, true
}

func decodeSameRow2[T1, T2 any](p *Parser) (lo.Tuple2[T1, T2], bool) {
	p.lastErr = nil
	var v1 T1
	var v2 T2
	ok := func() bool {
		buf, ranges, ok := p.mappedRow(2)
		if !ok {
			return false
		}
		return decodeColumn(p, 0, buf, ranges[0], &v1) &&
			decodeColumn(p, 1, buf, ranges[1], &v2)
	}()
	if !ok {
		return lo.Tuple2[T1, T2]{}, false
	}
	return lo.Tuple2[T1, T2]{A: v1, B: v2}, true
}

func decodeSameRow3[T1, T2, T3 any](p *Parser) (lo.Tuple3[T1, T2, T3], bool) {
	p.lastErr = nil
	var v1 T1
	var v2 T2
	var v3 T3
	ok := func() bool {
		buf, ranges, ok := p.mappedRow(3)
		if !ok {
			return false
		}
		return decodeColumn(p, 0, buf, ranges[0], &v1) &&
			decodeColumn(p, 1, buf, ranges[1], &v2) &&
			decodeColumn(p, 2, buf, ranges[2], &v3)
	}()
	if !ok {
		return lo.Tuple3[T1, T2, T3]{}, false
	}
	return lo.Tuple3[T1, T2, T3]{A: v1, B: v2, C: v3}, true
}

func decodeSameRow4[T1, T2, T3, T4 any](p *Parser) (lo.Tuple4[T1, T2, T3, T4], bool) {
	p.lastErr = nil
	var v1 T1
	var v2 T2
	var v3 T3
	var v4 T4
	ok := func() bool {
		buf, ranges, ok := p.mappedRow(4)
		if !ok {
			return false
		}
		return decodeColumn(p, 0, buf, ranges[0], &v1) &&
			decodeColumn(p, 1, buf, ranges[1], &v2) &&
			decodeColumn(p, 2, buf, ranges[2], &v3) &&
			decodeColumn(p, 3, buf, ranges[3], &v4)
	}()
	if !ok {
		return lo.Tuple4[T1, T2, T3, T4]{}, false
	}
	return lo.Tuple4[T1, T2, T3, T4]{A: v1, B: v2, C: v3, D: v4}, true
}
