package simdcsv

// avgFieldLenEstimate and avgRowLenEstimate are rough average byte
// widths used only to size the downstream parseResult pool before a
// StructuralIndex is available to size it exactly.
const (
	avgFieldLenEstimate = 16
	avgRowLenEstimate   = 64
)

// FindIndexes scans buf end to end and returns the ordered
// StructuralIndex of unquoted comma and newline byte offsets — the one
// operation this package exists to provide.
//
// Blocks are scanned in batches of flattenBatchSize before any of them
// are flattened, so the scanner for block i+1 can run while the
// flattener for block i is still popping bits — the same one-ahead
// pipelining shape as the teacher's scanBuffer, generalized from a
// lookahead of 1 to a buffered batch of 4.
//
// Returns ErrUnterminatedQuote if the document ends inside a quoted
// region.
func FindIndexes(buf *PaddedBuffer) (*StructuralIndex, error) {
	variant := DetectVariant()
	index := NewStructuralIndex()

	length := buf.Len()
	numBlocks := (length + blockSize - 1) / blockSize
	if length == 0 {
		return index, nil
	}

	var carry carryState
	var scratch flattenScratch

	var batchStructural [flattenBatchSize]uint64
	var batchBase [flattenBatchSize]uint32
	batchLen := 0

	flushBatch := func() {
		for i := 0; i < batchLen; i++ {
			flatten(&scratch, batchBase[i], batchStructural[i], index)
		}
		batchLen = 0
	}

	for blockIdx := 0; blockIdx < numBlocks; blockIdx++ {
		offset := blockIdx * blockSize
		block := buf.block(offset)

		var structural uint64
		structural, carry = scanBlock(variant, block, carry)

		// The final block may run past the logical length into the
		// guaranteed-zero padding; mask off any bits at or beyond
		// length so padding bytes never produce a phantom structural
		// offset.
		if offset+blockSize > length {
			validBits := length - offset
			structural &= spanMask(0, validBits)
		}

		batchStructural[batchLen] = structural
		batchBase[batchLen] = uint32(offset)
		batchLen++

		if batchLen == flattenBatchSize {
			flushBatch()
		}
	}
	flushBatch()

	if !carry.quoteBalanced() {
		return index, &ScanError{Offset: length, Err: ErrUnterminatedQuote}
	}
	return index, nil
}

// findIndexesGeneric scans buf for unquoted occurrences of sep or '\n'
// using a plain byte loop rather than the fixed-comma core scanner. It
// exists for [Reader]s configured with a non-default Comma: the core's
// scan contract is a fixed comma byte, so a caller-chosen separator is
// handled at the encoding layer instead, following the same "downstream
// consumers scan fields separately" boundary that already governs
// per-field quote handling in this package.
func findIndexesGeneric(buf []byte, sep byte) (*StructuralIndex, error) {
	index := NewStructuralIndex()
	inQuote := false
	for i := 0; i < len(buf); i++ {
		switch buf[i] {
		case '"':
			inQuote = !inQuote
		case sep, '\n':
			if !inQuote {
				index.Append(uint32(i))
			}
		}
	}
	if inQuote {
		return index, ErrUnterminatedQuote
	}
	return index, nil
}
