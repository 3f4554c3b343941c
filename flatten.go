package simdcsv

// flattenBatchSize is the number of blocks the driver buffers between
// scanning and flattening, letting the scan of block i+1 overlap with the
// flatten of block i rather than serializing the two stages per block.
const flattenBatchSize = 4

// flattenScratch is a reusable buffer for converting one block's
// structural bitmask into absolute byte offsets. Reused across calls by
// the driver to avoid an allocation per block.
type flattenScratch struct {
	offsets [blockSize]uint32
}

// flatten converts a block's structural bitmask into absolute byte
// offsets (base + bit position, for each set bit), appending them to
// out via scratch space shared across calls.
//
// The bits are popped in unrolled groups of 8 (trailing-zero-count then
// clear-lowest-bit), the same unrolled shape the teacher's
// processChunkMasks uses. The loop's back-edge is taken once per group,
// but every pop is still preceded by its own bits==0 test that leaves the
// loop, so the unroll does not remove the per-bit branch; exactly one
// offset is written per set bit.
func flatten(scratch *flattenScratch, base uint32, structural uint64, index *StructuralIndex) {
	n := 0
	bits := structural
	for bits != 0 {
		// Unrolled by 8: each pop is guarded by a bits==0 test that
		// leaves the loop as soon as the mask is exhausted.
		if bits == 0 {
			break
		}
		scratch.offsets[n] = base + uint32(trailingZeros64(bits))
		n++
		bits = clearLowestSetBit(bits)

		if bits == 0 {
			break
		}
		scratch.offsets[n] = base + uint32(trailingZeros64(bits))
		n++
		bits = clearLowestSetBit(bits)

		if bits == 0 {
			break
		}
		scratch.offsets[n] = base + uint32(trailingZeros64(bits))
		n++
		bits = clearLowestSetBit(bits)

		if bits == 0 {
			break
		}
		scratch.offsets[n] = base + uint32(trailingZeros64(bits))
		n++
		bits = clearLowestSetBit(bits)

		if bits == 0 {
			break
		}
		scratch.offsets[n] = base + uint32(trailingZeros64(bits))
		n++
		bits = clearLowestSetBit(bits)

		if bits == 0 {
			break
		}
		scratch.offsets[n] = base + uint32(trailingZeros64(bits))
		n++
		bits = clearLowestSetBit(bits)

		if bits == 0 {
			break
		}
		scratch.offsets[n] = base + uint32(trailingZeros64(bits))
		n++
		bits = clearLowestSetBit(bits)

		if bits == 0 {
			break
		}
		scratch.offsets[n] = base + uint32(trailingZeros64(bits))
		n++
		bits = clearLowestSetBit(bits)
	}
	index.AppendBatch(scratch.offsets[:n])
}
