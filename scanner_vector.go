package simdcsv

import "encoding/binary"

// scanBlockVector computes the structural-character bitmask for one
// 64-byte block using word-parallel (SWAR) byte-class detection plus the
// clmul-by-all-ones quote-parity trick, in place of real AVX2 +
// PCLMULQDQ instructions that no portable Go intrinsic exposes. Used when
// DetectVariant selects VariantVector (on amd64 and on arm64 alike, the
// vector path being implemented portably); scanBlock also routes the
// never-detected VariantNEON here.
func scanBlockVector(block *[blockSize]byte, carry carryState) (structural uint64, next carryState) {
	m := classifyBlockVector(block)
	inside, next := quoteRegionVector(m.quote, carry)
	structural = (m.comma | m.newline) &^ inside
	return structural, next
}

// classifyBlockVector builds the three byte-class masks eight bytes at a
// time: each 8-byte lane is loaded as a little-endian uint64 and compared
// against a broadcast target byte using the standard SWAR
// has-zero-byte trick, producing 8 mask bits per lane in one pass instead
// of one bit per loop iteration. This mirrors the byte-class-then-quote-
// parity pipeline the example pack's vectorized scanners use, substituting
// SWAR lanes for real SIMD compare instructions.
func classifyBlockVector(block *[blockSize]byte) blockMasks {
	var m blockMasks
	for lane := 0; lane < blockSize; lane += 8 {
		word := binary.LittleEndian.Uint64(block[lane : lane+8])
		m.quote |= laneEquals(word, '"') << uint(lane)
		m.comma |= laneEquals(word, ',') << uint(lane)
		m.newline |= laneEquals(word, '\n') << uint(lane)
	}
	return m
}

// loBits, hiBits and lo7Bits are the classic SWAR constants for detecting
// a zero byte within a word (Bit Twiddling Hacks, "determine if a word has
// a byte equal to n").
const (
	loBits  = 0x0101010101010101
	hiBits  = 0x8080808080808080
	lo7Bits = 0x7F7F7F7F7F7F7F7F
)

// laneEquals returns an 8-bit mask (one bit per byte of word, in the
// low 8 bits of the result) indicating which bytes of word equal target.
// It uses the carry-free form of the zero-byte test, so a byte is flagged
// only if it is itself zero after the XOR, never through a borrow from
// the byte below it.
func laneEquals(word uint64, target byte) uint64 {
	xorred := word ^ (loBits * uint64(target))
	hasZero := ^(((xorred & lo7Bits) + lo7Bits) | xorred | lo7Bits)
	return extractByteMask(hasZero)
}

// extractByteMask compacts the high bit of each byte of hasZero (as
// produced by the SWAR has-zero-byte trick) into one bit per byte in the
// low 8 bits of the result.
func extractByteMask(hasZero uint64) uint64 {
	var out uint64
	for i := 0; i < 8; i++ {
		if hasZero&(uint64(0x80)<<(uint(i)*8)) != 0 {
			out |= 1 << uint(i)
		}
	}
	return out
}

// quoteRegionVector computes the inside-quote bitmask for a block using
// the carry-less-multiply-by-all-ones equivalent (clmulAllOnes), rather
// than quoteRegionScalar's explicit bit walk: clmul(quoteBits, ^0) XOR
// the incoming carry gives, in bit k, the parity of quote bytes at
// positions <= k — which is exactly the inside-quote predicate.
func quoteRegionVector(quoteBits uint64, carry carryState) (inside uint64, next carryState) {
	prefixParity := clmulAllOnes(quoteBits)
	inside = prefixParity ^ broadcastIf(carry.prevIterInsideQuote != 0)
	endsInside := inside&(uint64(1)<<(blockSize-1)) != 0
	next = carryState{prevIterInsideQuote: allOnesIf(endsInside)}
	return inside, next
}

// broadcastIf returns all-ones if b is true, all-zeros otherwise — used
// to XOR the incoming carry into every bit of the block's own prefix
// parity in one step.
func broadcastIf(b bool) uint64 {
	return allOnesIf(b)
}
