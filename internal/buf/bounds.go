package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false when the
// result would overflow int or either operand is negative.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// PlaneSize returns rows*rowBytes, the byte size of a decoded channel plane.
// Dimensions come straight from untrusted layer records, so the product is
// checked before anything is allocated.
//
//	size, err := buf.PlaneSize(height, depth.BytesPerRow(width))
//	if err != nil {
//	    return fmt.Errorf("plane: %w", err)
//	}
func PlaneSize(rows, rowBytes int) (int, error) {
	if rows < 0 {
		return 0, fmt.Errorf("negative row count: %d", rows)
	}
	if rowBytes < 0 {
		return 0, fmt.Errorf("negative row size: %d", rowBytes)
	}
	total, ok := MulOverflowSafe(rows, rowBytes)
	if !ok {
		return 0, fmt.Errorf("overflow: rows=%d * rowBytes=%d", rows, rowBytes)
	}
	return total, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// PadTo rounds n up to the next multiple of align. align <= 1 returns n.
//
//	PadTo(3, 2) = 4
//	PadTo(5, 4) = 8
//	PadTo(8, 4) = 8
func PadTo(n, align int) int {
	if align <= 1 {
		return n
	}
	if r := n % align; r != 0 {
		return n + align - r
	}
	return n
}
