package plane

import (
	"fmt"

	"github.com/joshuapare/psdkit/internal/buf"
)

// DecodeRLE decodes a PackBits plane: a table of per-row u16 byte counts
// followed by each compressed row. Every row must expand to exactly rowBytes.
func DecodeRLE(data []byte, rows, rowBytes int) ([]byte, error) {
	size, err := buf.PlaneSize(rows, rowBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTooLarge, err)
	}
	table, ok := buf.Slice(data, 0, rows*2)
	if !ok {
		return nil, fmt.Errorf("%w: row count table needs %d bytes, have %d", ErrMalformedRLE, rows*2, len(data))
	}
	out := make([]byte, size)
	off := rows * 2
	for y := 0; y < rows; y++ {
		n := int(buf.U16BE(table[y*2:]))
		src, ok := buf.Slice(data, off, n)
		if !ok {
			return nil, fmt.Errorf("%w: row %d needs %d bytes at %d, have %d", ErrMalformedRLE, y, n, off, len(data))
		}
		if err := UnpackBits(out[y*rowBytes:(y+1)*rowBytes], src); err != nil {
			return nil, fmt.Errorf("row %d: %w", y, err)
		}
		off += n
	}
	return out, nil
}

// UnpackBits expands one PackBits row into dst, which must be filled
// exactly. A control byte c in 0..127 copies the next c+1 bytes; -127..-1
// repeats the next byte 1-c times; -128 is a no-op.
func UnpackBits(dst, src []byte) error {
	w, r := 0, 0
	for r < len(src) {
		c := int(int8(src[r]))
		r++
		switch {
		case c >= 0:
			n := c + 1
			if r+n > len(src) {
				return fmt.Errorf("%w: literal run of %d past end of row data", ErrMalformedRLE, n)
			}
			if w+n > len(dst) {
				return fmt.Errorf("%w: row overflows %d bytes", ErrMalformedRLE, len(dst))
			}
			copy(dst[w:], src[r:r+n])
			w += n
			r += n
		case c == -128:
		default:
			n := 1 - c
			if r >= len(src) {
				return fmt.Errorf("%w: repeat run without a value", ErrMalformedRLE)
			}
			if w+n > len(dst) {
				return fmt.Errorf("%w: row overflows %d bytes", ErrMalformedRLE, len(dst))
			}
			v := src[r]
			r++
			for i := 0; i < n; i++ {
				dst[w+i] = v
			}
			w += n
		}
	}
	if w != len(dst) {
		return fmt.Errorf("%w: row decoded to %d bytes, want %d", ErrMalformedRLE, w, len(dst))
	}
	return nil
}
