package simdcsv

// carryState is the scan state that is threaded from one 64-byte block to
// the next within a single document scan.
//
// It is a plain value, not a shared mutable cell: the driver owns one
// instance per in-flight scan and passes it by value into each block scan,
// receiving the updated value back. Two concurrent scans on disjoint
// buffers never touch the same carryState.
type carryState struct {
	// prevIterInsideQuote is all-ones if the byte immediately preceding the
	// current block lies inside a quoted region, all-zeros otherwise.
	prevIterInsideQuote uint64

	// prevIterEndsPseudoPred is reserved for pseudo-structural extensions.
	// Unused by the minimal CSV core; always false. Kept as a named field
	// rather than omitted since it is part of the carry contract and a
	// future extension may need it.
	prevIterEndsPseudoPred bool
}

// quoteBalanced reports whether the carry state represents a document that
// is not mid-quote: the state a well-formed scan must end in.
func (c carryState) quoteBalanced() bool {
	return c.prevIterInsideQuote == 0
}
