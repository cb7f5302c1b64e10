package linecsv

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/sys/cpu"
)

// swarChunk is the word width used by the SWAR (SIMD-within-a-register)
// byte scan below. Widening this further would need a second-level mask
// table; 8 bytes already amortizes well over typical unquoted field
// lengths.
const swarChunk = 8

// wideScanEnabled is decided once at package init by probing for a CPU
// feature that implies cheap unaligned 64-bit loads and population
// counts; both the SWAR scan below and a future vectorized version rely
// on that being inexpensive. It never gates correctness, only which
// code path finds the same answer faster.
var wideScanEnabled = detectWideScan()

func detectWideScan() bool {
	if cpu.X86.HasSSE42 {
		return true
	}
	if cpu.ARM64.HasASIMD {
		return true
	}
	return false
}

// indexSpecial returns the offset of the first byte at or after from in
// buf that belongs to special, or len(buf) if there is none. It is used
// by the Splitter's Reading state to bulk-skip plain runs of a field
// instead of copying one byte at a time.
func indexSpecial(buf []byte, from int, special ByteSet) int {
	if !wideScanEnabled || len(buf)-from < swarChunk || countMembers(special) > 4 {
		return indexSpecialScalar(buf, from, special)
	}
	return indexSpecialSWAR(buf, from, special)
}

// countMembers counts special's members, stopping early past 4: the SWAR
// path below only checks up to 4 candidate bytes per word, so a caller
// configuration with a larger stop set (e.g. multi-byte trim sets) must
// fall back to the scalar scan instead of silently missing matches.
func countMembers(special ByteSet) int {
	n := 0
	for b := 0; b < 256; b++ {
		if special[b] {
			n++
			if n > 4 {
				return n
			}
		}
	}
	return n
}

func indexSpecialScalar(buf []byte, from int, special ByteSet) int {
	for i := from; i < len(buf); i++ {
		if special.Contains(buf[i]) {
			return i
		}
	}
	return len(buf)
}

// indexSpecialSWAR scans 8 bytes at a time using the classic
// has-zero-byte bit trick, applied once per candidate byte in special
// rather than once per input byte. special sets in this package are
// small (at most quote + escape + two trim sets), so the outer loop
// over candidates is cheap relative to the inner word scan it replaces.
func indexSpecialSWAR(buf []byte, from int, special ByteSet) int {
	candidates := make([]byte, 0, 4)
	for b := 0; b < 256; b++ {
		if special[b] {
			candidates = append(candidates, byte(b))
			if len(candidates) == cap(candidates) {
				break
			}
		}
	}
	if len(candidates) == 0 {
		return len(buf)
	}

	i := from
	end := len(buf) - swarChunk
	for ; i <= end; i += swarChunk {
		word := binary.LittleEndian.Uint64(buf[i : i+swarChunk])
		best := -1
		for _, c := range candidates {
			if pos, found := firstMatchInWord(word, c); found {
				if best == -1 || pos < best {
					best = pos
				}
			}
		}
		if best != -1 {
			return i + best
		}
	}
	return indexSpecialScalar(buf, i, special)
}

// firstMatchInWord reports the byte offset (0..7) of the first
// occurrence of c within the little-endian word, using the SWAR
// has-value trick: XOR each byte with c, then detect a zero byte.
func firstMatchInWord(word uint64, c byte) (int, bool) {
	const lo = 0x0101010101010101
	const hi = 0x8080808080808080
	x := word ^ (lo * uint64(c))
	masked := (x - lo) &^ x & hi
	if masked == 0 {
		return 0, false
	}
	return bits.TrailingZeros64(masked) / 8, true
}
