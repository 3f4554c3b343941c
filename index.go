package simdcsv

// minChunk is the smallest number of entries a StructuralIndex grows by,
// even on its first allocation, so a document that turns out to have very
// few structural bytes still gets one reasonably sized backing array
// instead of a string of tiny reallocations.
const minChunk = 1024

// growthFactor is the minimum multiplicative growth applied each time a
// StructuralIndex's backing array is exhausted: growing by at least 1.5x
// keeps the amortized cost of repeated appends to a StructuralIndex of
// size n at O(n) rather than O(n^2).
const growthFactor = 3 // numerator; growthDivisor is the denominator

const growthDivisor = 2

// StructuralIndex is an append-only, ordered collection of structural
// byte offsets. Offsets are always appended in strictly increasing order
// by the driver; the type itself does not enforce this, matching the
// teacher's trust-the-caller style in its own pooled-slice helpers
// (field_parser.go's parseResult).
type StructuralIndex struct {
	offsets []uint32
}

// NewStructuralIndex returns an empty index with capacity reserved for at
// least minChunk entries, so small documents never pay more than one
// allocation.
func NewStructuralIndex() *StructuralIndex {
	return &StructuralIndex{offsets: make([]uint32, 0, minChunk)}
}

// Reset clears the index for reuse without releasing its backing array,
// mirroring the teacher's pool-and-reuse pattern (parseResultPool).
func (s *StructuralIndex) Reset() {
	s.offsets = s.offsets[:0]
}

// Reserve ensures the index can hold at least n more entries without
// reallocating, growing by at least growthFactor/growthDivisor and at
// least minChunk entries when it must grow.
func (s *StructuralIndex) Reserve(n int) {
	need := len(s.offsets) + n
	if cap(s.offsets) >= need {
		return
	}
	newCap := cap(s.offsets) * growthFactor / growthDivisor
	if newCap < need {
		newCap = need
	}
	if newCap-cap(s.offsets) < minChunk {
		newCap = cap(s.offsets) + minChunk
	}
	grown := make([]uint32, len(s.offsets), newCap)
	copy(grown, s.offsets)
	s.offsets = grown
}

// Append adds offset to the end of the index, growing the backing array
// per the growth policy if needed.
func (s *StructuralIndex) Append(offset uint32) {
	s.Reserve(1)
	s.offsets = append(s.offsets, offset)
}

// AppendBatch adds a batch of offsets, reserving capacity once rather
// than once per offset. Used by flatten, which always produces a batch
// at a time.
func (s *StructuralIndex) AppendBatch(offsets []uint32) {
	s.Reserve(len(offsets))
	s.offsets = append(s.offsets, offsets...)
}

// Len returns the number of structural offsets recorded.
func (s *StructuralIndex) Len() int {
	return len(s.offsets)
}

// At returns the i'th structural offset.
func (s *StructuralIndex) At(i int) uint32 {
	return s.offsets[i]
}

// Offsets returns the full ordered slice of structural offsets. The
// returned slice aliases the index's own storage and must not be
// retained across a Reset/Append.
func (s *StructuralIndex) Offsets() []uint32 {
	return s.offsets
}
