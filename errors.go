package simdcsv

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by [Reader]. These are compatible with [encoding/csv].
var (
	ErrBareQuote     = errors.New("bare \" in non-quoted-field")
	ErrQuote         = errors.New("extraneous or missing \" in quoted-field")
	ErrFieldCount    = errors.New("wrong number of fields")
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
)

// Sentinel errors returned by the structural scanner.
var (
	// ErrUnterminatedQuote is returned by FindIndexes when the document
	// ends with an odd number of quote bytes: the final carry state is
	// mid-quote.
	ErrUnterminatedQuote = errors.New("simdcsv: unterminated quoted field")

	// ErrAllocationFailure is returned when a PaddedBuffer cannot be
	// allocated, e.g. because the requested length overflows the
	// platform's addressable slice size.
	ErrAllocationFailure = errors.New("simdcsv: buffer allocation failed")

	// ErrInvalidBufferContract is returned by NewPaddedBuffer if its own
	// length/zero-padding invariant does not hold after construction
	// (alignment is not checked) — a programmer-error check, since
	// NewPaddedBuffer is the only producer of a PaddedBuffer.
	ErrInvalidBufferContract = errors.New("simdcsv: invalid padded buffer contract")
)

// DefaultMaxInputSize is the default maximum input size (2GB).
// ReaderOptions.MaxInputSize overrides the Reader's read limit, but
// NewPaddedBuffer always rejects inputs larger than this, so a Reader
// with Comma ',' cannot scan more than DefaultMaxInputSize bytes.
const DefaultMaxInputSize = 2 * 1024 * 1024 * 1024 // 2GB

// ParseError represents a parsing error with location information.
type ParseError struct {
	StartLine int   // Record start line
	Line      int   // Error line
	Column    int   // Error column
	Err       error // Underlying error
}

// Error returns a formatted string describing the parse error location and cause.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error on line %d, column %d: %v",
		e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying error for use with [errors.Is] and [errors.Unwrap].
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ScanError reports a failure in the structural scan itself, as opposed
// to a downstream field-parsing failure. It carries only the byte offset:
// the core scanner does not track lines or columns, and Reader returns a
// ScanError as is.
type ScanError struct {
	Offset int   // byte offset into the buffer where the failure was detected
	Err    error // underlying sentinel, e.g. ErrUnterminatedQuote
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("simdcsv: scan error at offset %d: %v", e.Offset, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
