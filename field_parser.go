//nolint:gosec // G115: Integer conversions are safe - values bounded by buffer size (max ~2GB)
package simdcsv

import "sync"

// =============================================================================
// Parser State Machine
// =============================================================================
//
// parseBuffer no longer tracks a quoted/unquoted toggle itself: the
// StructuralIndex it walks already contains only unquoted comma and
// newline offsets — the core scanner already resolved quoting. What
// remains per field is local: does this field's raw span open with
// a quote, and if so where does it close and does it contain an escaped
// "" that needs unescaping. That local work is done with the same
// quote.go helpers the teacher used, just driven off two structural
// offsets instead of a running state machine.
//
// parserState is kept only for the pieces that still carry across
// fields within a row: where the current field starts.

// parserState holds state carried between fields during field parsing.
type parserState struct {
	fieldStart       uint64 // current field start offset in buffer
	lastSepOrNewline int64  // last separator/newline position (-1 initially)
}

// newParserState creates an initialized parser state.
func newParserState() parserState {
	return parserState{lastSepOrNewline: -1}
}

// resetForNextField prepares state for parsing the next field.
func (s *parserState) resetForNextField(delimiterPos uint64) {
	s.fieldStart = delimiterPos + 1
	s.lastSepOrNewline = int64(delimiterPos)
}

// =============================================================================
// Parse Result
// =============================================================================

// parseResult holds extracted fields and rows from parsing.
type parseResult struct {
	fields []fieldInfo
	rows   []rowInfo
}

// Pool capacity constants for parseResult.
// Field: 1024 fields * 12 bytes = ~12KB (covers ~200 rows with 5 fields).
// Row: 256 rows * 24 bytes = ~6KB.
const (
	parseResultPoolFieldCap = 1024
	parseResultPoolRowCap   = 256
)

// parseResultPool provides reusable parseResult objects to reduce allocations.
var parseResultPool = sync.Pool{
	New: func() interface{} {
		return &parseResult{
			fields: make([]fieldInfo, 0, parseResultPoolFieldCap),
			rows:   make([]rowInfo, 0, parseResultPoolRowCap),
		}
	},
}

// reset clears the parseResult for reuse while preserving slice capacity.
func (pr *parseResult) reset() {
	pr.fields = pr.fields[:0]
	pr.rows = pr.rows[:0]
}

// release returns the parseResult to the pool for reuse.
func (pr *parseResult) release() {
	if pr == nil {
		return
	}
	pr.reset()
	parseResultPool.Put(pr)
}

// releaseParseResult returns pr to the pool. Kept as a free function
// (rather than requiring callers to know about the method) to match
// parse.go's existing call sites.
func releaseParseResult(pr *parseResult) {
	pr.release()
}

// =============================================================================
// Field and Row Info
// =============================================================================

// fieldInfo holds field position and metadata.
type fieldInfo struct {
	start       uint32 // content start offset (after opening quote if quoted)
	length      uint32 // content length (excluding quotes)
	rawEndDelta uint8  // delta from start+length to raw end position
	flags       uint8  // bit0: needsUnescape, bit1: isQuoted, bit2: containsQuote
}

const (
	fieldFlagNeedsUnescape = 1 << 0
	fieldFlagIsQuoted      = 1 << 1
	fieldFlagContainsQuote = 1 << 2 // field contains quote character (for validation optimization)
)

// rawStart returns the raw start position (including opening quote if quoted).
func (f *fieldInfo) rawStart() uint32 {
	if f.flags&fieldFlagIsQuoted != 0 {
		return f.start - 1
	}
	return f.start
}

// rawEnd returns the raw end position (at separator/newline).
func (f *fieldInfo) rawEnd() uint32 {
	return f.start + f.length + uint32(f.rawEndDelta)
}

// newFieldInfo creates a fieldInfo from parsed boundaries.
func newFieldInfo(start, length uint64, rawEndDelta uint8, isQuoted, containsQuote bool) fieldInfo {
	var flags uint8
	if isQuoted {
		flags = fieldFlagIsQuoted
	}
	if containsQuote {
		flags |= fieldFlagContainsQuote
	}
	return fieldInfo{
		start:       uint32(start),
		length:      uint32(length),
		rawEndDelta: rawEndDelta,
		flags:       flags,
	}
}

// setNeedsUnescape sets the needsUnescape flag.
func (f *fieldInfo) setNeedsUnescape(v bool) {
	if v {
		f.flags |= fieldFlagNeedsUnescape
	} else {
		f.flags &^= fieldFlagNeedsUnescape
	}
}

// needsUnescape returns whether the field needs double quote unescaping.
func (f *fieldInfo) needsUnescape() bool {
	return f.flags&fieldFlagNeedsUnescape != 0
}

// containsQuote returns whether the field contains any quote characters.
// Used for validation optimization - fields without quotes don't need quote validation.
func (f *fieldInfo) containsQuote() bool {
	return f.flags&fieldFlagContainsQuote != 0
}

// rowInfo holds row metadata.
type rowInfo struct {
	firstField int // index of first field in parseResult.fields
	fieldCount int // number of fields in this row
	lineNum    int // original input line number (for error reporting)
}

// =============================================================================
// Capacity Estimation
// =============================================================================

// estimateCounts calculates estimated field and row counts from buffer and
// index length. The structural index is a tight upper bound on rows
// (newlines) and a tight upper bound on separators, so it is used
// directly rather than the teacher's buffer-size heuristic when present.
func estimateCounts(bufLen int, index *StructuralIndex) (estimatedFields, estimatedRows int) {
	if index == nil || index.Len() == 0 {
		estimatedFields = bufLen / avgFieldLenEstimate
		estimatedRows = bufLen / avgRowLenEstimate
		return estimatedFields, estimatedRows
	}
	// Every structural offset ends exactly one field; the buffer also
	// always has one trailing field past the last offset.
	estimatedFields = index.Len() + 1
	estimatedRows = estimatedFields
	return estimatedFields, estimatedRows
}

// ensureResultCapacity ensures result slices have sufficient capacity.
func ensureResultCapacity(result *parseResult, bufLen int, index *StructuralIndex) {
	estimatedFields, estimatedRows := estimateCounts(bufLen, index)
	if cap(result.fields) < estimatedFields {
		result.fields = make([]fieldInfo, 0, estimatedFields)
	}
	if cap(result.rows) < estimatedRows {
		result.rows = make([]rowInfo, 0, estimatedRows)
	}
}

// =============================================================================
// Buffer Parsing - Main Entry Point
// =============================================================================

// parseBuffer extracts fields and rows by walking a StructuralIndex: each
// structural offset ends exactly one field, and offsets whose byte is
// '\n' additionally end a row.
func parseBuffer(buf []byte, index *StructuralIndex) *parseResult {
	result := parseResultPool.Get().(*parseResult)
	result.reset()

	if len(buf) == 0 {
		return result
	}

	ensureResultCapacity(result, len(buf), index)

	state := newParserState()
	rowFirstField := 0
	lineNum := 1

	if index != nil {
		offsets := index.Offsets()
		for i := 0; i < len(offsets); i++ {
			absPos := uint64(offsets[i])
			if buf[absPos] == '\n' {
				processNewline(buf, absPos, &state, result, &rowFirstField, &lineNum)
			} else {
				recordField(buf, absPos, &state, result, false)
			}
		}
	}

	if needsFinalization(buf, &state) {
		finalizeLastField(buf, &state, result, rowFirstField, lineNum)
	}

	return result
}

// =============================================================================
// Field Recording
// =============================================================================

// recordField calculates field bounds and appends to result.
// For newline delimiters (isNewline=true), excludes trailing CR from CRLF sequences.
func recordField(buf []byte, absPos uint64, state *parserState, result *parseResult, isNewline bool) {
	bounds := computeFieldBounds(buf, absPos, state, isNewline)
	f := newFieldInfo(bounds.start, bounds.length, bounds.rawEndDelta, bounds.isQuoted, bounds.containsQuote)
	f.setNeedsUnescape(bounds.isQuoted && indexByte(buf[bounds.start:bounds.start+bounds.length], '"') >= 0)
	result.fields = append(result.fields, f)
	state.resetForNextField(absPos)
}

// fieldBounds holds computed field boundary information.
type fieldBounds struct {
	start         uint64
	length        uint64
	rawEndDelta   uint8
	isQuoted      bool
	containsQuote bool
}

// computeFieldBounds determines a field's content start/length and quote
// metadata by inspecting the raw span [state.fieldStart, absPos) directly
// with quote.go's helpers — the per-field local scan that replaces the
// teacher's running quoted-state machine, now that quote suppression
// already happened inside the core scan.
func computeFieldBounds(buf []byte, absPos uint64, state *parserState, isNewline bool) fieldBounds {
	fieldStart := state.fieldStart
	raw := buf[fieldStart:absPos]

	if isQuoted, quoteOffset := isQuotedFieldStart(raw, false); isQuoted {
		contentStart := fieldStart + uint64(quoteOffset) + 1
		closeRel := findClosingQuote(raw, quoteOffset+1)
		if closeRel < 0 {
			// No closing quote within this span: treat the whole
			// remainder as content, flagged quoted, and let
			// validation.go report ErrQuote downstream.
			return fieldBounds{
				start:         contentStart,
				length:        uint64(len(raw)) - uint64(quoteOffset) - 1,
				rawEndDelta:   0,
				isQuoted:      true,
				containsQuote: true,
			}
		}
		closeAbs := fieldStart + uint64(closeRel)
		length := closeAbs - contentStart
		rawEndDelta := computeRawEndDelta(absPos, contentStart, length)
		return fieldBounds{
			start:         contentStart,
			length:        length,
			rawEndDelta:   rawEndDelta,
			isQuoted:      true,
			containsQuote: true,
		}
	}

	start := fieldStart
	endPos := adjustEndForCRLF(buf, absPos, start, isNewline)
	length := uint64(0)
	if endPos > start {
		length = endPos - start
	}
	rawEndDelta := computeRawEndDelta(absPos, start, length)
	containsQuote := indexByte(raw, '"') >= 0
	return fieldBounds{
		start:         start,
		length:        length,
		rawEndDelta:   rawEndDelta,
		isQuoted:      false,
		containsQuote: containsQuote,
	}
}

// indexByte is a tiny local wrapper kept to avoid importing bytes for a
// single call site.
func indexByte(data []byte, target byte) int {
	for i, b := range data {
		if b == target {
			return i
		}
	}
	return -1
}

// adjustEndForCRLF excludes trailing CR from CRLF sequences for newline delimiters.
func adjustEndForCRLF(buf []byte, absPos, start uint64, isNewline bool) uint64 {
	if isNewline && absPos > start && absPos > 0 && buf[absPos-1] == '\r' {
		return absPos - 1
	}
	return absPos
}

// computeRawEndDelta calculates the delta between raw end and content end.
func computeRawEndDelta(absPos, start, fieldLen uint64) uint8 {
	if absPos > start+fieldLen {
		return uint8(absPos - start - fieldLen)
	}
	return 0
}

// =============================================================================
// Row Recording
// =============================================================================

// processNewline handles a newline character, either creating a row or skipping blank lines.
func processNewline(buf []byte, absPos uint64, state *parserState, result *parseResult, rowFirstField, lineNum *int) {
	if isBlankLine(*rowFirstField, len(result.fields), state.fieldStart, absPos) {
		skipBlankLine(state, absPos, lineNum)
		return
	}
	recordField(buf, absPos, state, result, true)
	recordRow(result, rowFirstField, lineNum)
}

// isBlankLine checks if the current line contains no fields.
func isBlankLine(rowFirstField, totalFields int, fieldStart, newlinePos uint64) bool {
	return rowFirstField == totalFields && fieldStart == newlinePos
}

// skipBlankLine advances past a blank line without recording it.
func skipBlankLine(state *parserState, absPos uint64, lineNum *int) {
	state.fieldStart = absPos + 1
	(*lineNum)++
}

// recordRow appends row info and advances to the next row.
func recordRow(result *parseResult, rowFirstField, lineNum *int) {
	result.rows = append(result.rows, rowInfo{
		firstField: *rowFirstField,
		fieldCount: len(result.fields) - *rowFirstField,
		lineNum:    *lineNum,
	})
	*rowFirstField = len(result.fields)
	(*lineNum)++
}

// =============================================================================
// Finalization
// =============================================================================

// needsFinalization determines if the buffer has a trailing field without newline.
func needsFinalization(buf []byte, state *parserState) bool {
	bufLen := uint64(len(buf))
	if bufLen == 0 {
		return false
	}
	if state.fieldStart < bufLen {
		return true
	}
	lastChar := buf[bufLen-1]
	lastCharIsNewline := lastChar == '\n' || lastChar == '\r'
	return state.fieldStart == bufLen && !lastCharIsNewline
}

// finalizeLastField handles the final field when input lacks a trailing newline.
func finalizeLastField(buf []byte, state *parserState, result *parseResult, rowFirstField, lineNum int) {
	bufLen := uint64(len(buf))
	bounds := computeFieldBounds(buf, bufLen, state, false)

	f := newFieldInfo(bounds.start, bounds.length, bounds.rawEndDelta, bounds.isQuoted, bounds.containsQuote)
	f.setNeedsUnescape(bounds.isQuoted && indexByte(buf[bounds.start:bounds.start+bounds.length], '"') >= 0)
	result.fields = append(result.fields, f)
	result.rows = append(result.rows, rowInfo{
		firstField: rowFirstField,
		fieldCount: len(result.fields) - rowFirstField,
		lineNum:    lineNum,
	})
}
