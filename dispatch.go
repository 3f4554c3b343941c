package simdcsv

import (
	"sync"

	"golang.org/x/sys/cpu"
)

// ScannerVariant names a block-scan implementation. The driver selects
// one variant once per process and uses it for every block of every
// scan — there is no per-block redispatch, since the CPU feature set a
// variant depends on cannot change mid-process.
type ScannerVariant int

const (
	// VariantScalar is the byte-at-a-time fallback, always available.
	VariantScalar ScannerVariant = iota

	// VariantVector is the SWAR + clmul-by-all-ones path used on amd64,
	// a portable substitute for AVX2 + PCLMULQDQ.
	VariantVector

	// VariantNEON names the arm64 vector path for symmetry with amd64,
	// but DetectVariant never returns it: arm64 uses VariantVector too,
	// since the SWAR implementation is already portable and a
	// NEON-specific code path would add an asm dependency this module
	// does not otherwise need.
	VariantNEON
)

func (v ScannerVariant) String() string {
	switch v {
	case VariantScalar:
		return "scalar"
	case VariantVector:
		return "vector"
	case VariantNEON:
		return "neon"
	default:
		return "unknown"
	}
}

var (
	variantOnce  sync.Once
	cachedVariant ScannerVariant
)

// DetectVariant returns the block-scan variant this process should use,
// probing CPU features at most once via sync.Once and caching the result:
// the probe's outcome cannot change for the lifetime of the process, so
// repeating it on every scan would only add overhead.
//
// Grounded on the teacher's package-init feature-flag pattern in
// simd_scanner.go, generalized from an implicit package-init flag to an
// explicit cached probe so tests can call it deterministically.
func DetectVariant() ScannerVariant {
	variantOnce.Do(func() {
		cachedVariant = probeVariant()
	})
	return cachedVariant
}

// probeVariant inspects golang.org/x/sys/cpu feature flags — the same
// dependency and the same feature checks (AVX2-class word-parallel
// support is what the SWAR path wants: a 64-bit-word machine, which is
// every supported Go arch, but the teacher's convention of gating on
// explicit cpu.X86/cpu.ARM64 flags is kept so the dispatch has a real
// hook for a future hand-written-asm variant) — to pick a variant.
func probeVariant() ScannerVariant {
	switch {
	case cpu.X86.HasAVX2 || cpu.X86.HasSSE42:
		return VariantVector
	case cpu.ARM64.HasASIMD:
		return VariantVector
	default:
		return VariantScalar
	}
}

// scanBlock dispatches to the block scanner selected by variant. Kept as
// a free function taking the variant explicitly (rather than reading a
// package global on every call) so the driver's hot loop never pays for
// anything beyond a two-way branch already resident in a register.
func scanBlock(variant ScannerVariant, block *[blockSize]byte, carry carryState) (structural uint64, next carryState) {
	if variant == VariantScalar {
		return scanBlockScalar(block, carry)
	}
	return scanBlockVector(block, carry)
}
