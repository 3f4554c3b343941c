package simdcsv

import (
	"bytes"
	"errors"
	"testing"
)

func TestNewPaddedBuffer_PreservesContent(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"short", "a,b,c\n"},
		{"exactly one block", string(make([]byte, blockSize))},
		{"multi block", string(make([]byte, blockSize*3+17))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := NewPaddedBuffer([]byte(tt.data))
			if err != nil {
				t.Fatalf("NewPaddedBuffer: %v", err)
			}
			if buf.Len() != len(tt.data) {
				t.Errorf("Len() = %d, want %d", buf.Len(), len(tt.data))
			}
			if !bytes.Equal(buf.Bytes(), []byte(tt.data)) {
				t.Errorf("Bytes() = %q, want %q", buf.Bytes(), tt.data)
			}
		})
	}
}

// TestNewPaddedBuffer_PaddingIsZero checks the guarantee that bytes in
// [length, length+PADDING) are zero, directly against the bytes a block
// read would see past the logical end.
func TestNewPaddedBuffer_PaddingIsZero(t *testing.T) {
	data := []byte("a,b,c\n")
	buf, err := NewPaddedBuffer(data)
	if err != nil {
		t.Fatalf("NewPaddedBuffer: %v", err)
	}

	block := buf.block(0)
	for i := len(data); i < blockSize; i++ {
		if block[i] != 0 {
			t.Errorf("block byte %d = %d, want 0 (past logical length %d)", i, block[i], len(data))
		}
	}
}

// TestNewPaddedBuffer_DoesNotAliasInput verifies the buffer owns a copy,
// so mutating the caller's slice after construction has no effect.
func TestNewPaddedBuffer_DoesNotAliasInput(t *testing.T) {
	data := []byte("a,b,c\n")
	buf, err := NewPaddedBuffer(data)
	if err != nil {
		t.Fatalf("NewPaddedBuffer: %v", err)
	}
	data[0] = 'z'
	if buf.Bytes()[0] != 'a' {
		t.Errorf("Bytes()[0] = %q, want 'a' (buffer must not alias caller's slice)", buf.Bytes()[0])
	}
}

// TestCheckAllocationSize_RejectsOversizedInput checks that a requested
// length past DefaultMaxInputSize is rejected with ErrAllocationFailure
// before NewPaddedBuffer would attempt the backing make call, without
// this test itself needing to allocate a multi-gigabyte slice to prove
// it.
func TestCheckAllocationSize_RejectsOversizedInput(t *testing.T) {
	if err := checkAllocationSize(DefaultMaxInputSize); err != nil {
		t.Errorf("checkAllocationSize(DefaultMaxInputSize) = %v, want nil", err)
	}
	err := checkAllocationSize(DefaultMaxInputSize + 1)
	if err == nil {
		t.Fatal("checkAllocationSize(DefaultMaxInputSize+1) = nil, want ErrAllocationFailure")
	}
	if !errors.Is(err, ErrAllocationFailure) {
		t.Errorf("checkAllocationSize error = %v, want ErrAllocationFailure", err)
	}
}

// TestPaddedBuffer_BlockReadsPastLengthAreSafe exercises a block read
// that starts within the logical length but extends into the padding,
// confirming the padded-buffer contract: the bytes past length must
// read back as zero rather than garbage.
func TestPaddedBuffer_BlockReadsPastLengthAreSafe(t *testing.T) {
	data := []byte("abc")
	buf, err := NewPaddedBuffer(data)
	if err != nil {
		t.Fatalf("NewPaddedBuffer: %v", err)
	}
	block := buf.block(0)
	if block[0] != 'a' || block[1] != 'b' || block[2] != 'c' {
		t.Fatalf("block[:3] = %v, want abc", block[:3])
	}
	for i := 3; i < blockSize; i++ {
		if block[i] != 0 {
			t.Errorf("block[%d] = %d, want 0", i, block[i])
		}
	}
}
