package plane

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/joshuapare/psdkit/internal/buf"
	"github.com/joshuapare/psdkit/pkg/types"
)

func inflate(data []byte, size int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrZIP, err)
	}
	defer zr.Close()
	out := make([]byte, size)
	n, err := io.ReadFull(zr, out)
	switch {
	case err == io.ErrUnexpectedEOF || err == io.EOF:
		return nil, fmt.Errorf("%w: inflated %d bytes, want %d", ErrLength, n, size)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrZIP, err)
	}
	var extra [1]byte
	if m, _ := io.ReadFull(zr, extra[:]); m > 0 {
		return nil, fmt.Errorf("%w: inflated more than %d bytes", ErrLength, size)
	}
	return out, nil
}

// Unpredict reverses ZIP prediction in place. 8-bit rows carry byte deltas
// and 16-bit rows u16 deltas. 32-bit rows carry byte deltas over the row
// split into byte planes (every sample's high byte first), so after
// summing the bytes are interleaved back into big-endian samples.
func Unpredict(data []byte, width, height int, depth types.Depth) error {
	rowBytes := depth.BytesPerRow(width)
	if len(data) < rowBytes*height {
		return fmt.Errorf("%w: %d bytes for %dx%d", ErrLength, len(data), width, height)
	}
	switch depth {
	case types.Depth8:
		for y := 0; y < height; y++ {
			row := data[y*rowBytes : (y+1)*rowBytes]
			for x := 1; x < width; x++ {
				row[x] += row[x-1]
			}
		}
	case types.Depth16:
		for y := 0; y < height; y++ {
			row := data[y*rowBytes : (y+1)*rowBytes]
			prev := buf.U16BE(row)
			for x := 1; x < width; x++ {
				v := buf.U16BE(row[x*2:]) + prev
				row[x*2] = byte(v >> 8)
				row[x*2+1] = byte(v)
				prev = v
			}
		}
	case types.Depth32:
		tmp := make([]byte, rowBytes)
		for y := 0; y < height; y++ {
			row := data[y*rowBytes : (y+1)*rowBytes]
			for i := 1; i < rowBytes; i++ {
				row[i] += row[i-1]
			}
			for x := 0; x < width; x++ {
				for k := 0; k < 4; k++ {
					tmp[x*4+k] = row[k*width+x]
				}
			}
			copy(row, tmp)
		}
	default:
		return fmt.Errorf("%w: prediction at depth %d", ErrUnsupportedCompression, depth)
	}
	return nil
}
