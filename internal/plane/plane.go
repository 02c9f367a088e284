// Package plane decompresses channel image data into flat sample planes.
//
// Photoshop stores every channel of every layer as its own plane: a
// compression method word followed by the payload. Methods are raw (0),
// PackBits RLE (1), ZIP (2) and ZIP with prediction (3). Samples of 16- and
// 32-bit documents are big-endian; a decoded plane keeps them that way and
// Sample8 reduces them to 8 bits on access.
package plane

import (
	"errors"
	"fmt"
	"math"

	"github.com/joshuapare/psdkit/internal/buf"
	"github.com/joshuapare/psdkit/pkg/types"
)

var (
	// ErrMalformedRLE indicates a PackBits row that does not decode to the row width.
	ErrMalformedRLE = errors.New("plane: malformed RLE data")
	// ErrUnsupportedCompression indicates an unknown compression method.
	ErrUnsupportedCompression = errors.New("plane: unsupported compression")
	// ErrLength indicates the decoded size does not match the plane geometry.
	ErrLength = errors.New("plane: decoded length mismatch")
	// ErrZIP indicates a corrupt deflate stream.
	ErrZIP = errors.New("plane: corrupt ZIP data")
	// ErrTooLarge indicates a plane larger than the configured limit.
	ErrTooLarge = errors.New("plane: plane exceeds size limit")
)

// Compression methods.
const (
	Raw     uint16 = 0
	RLE     uint16 = 1
	ZIP     uint16 = 2
	ZIPPred uint16 = 3
)

// Plane is one decoded channel.
type Plane struct {
	ID     types.ChannelID
	Width  int
	Height int
	Depth  types.Depth
	Data   []byte
}

// RowBytes returns the byte width of one row.
func (p *Plane) RowBytes() int { return p.Depth.BytesPerRow(p.Width) }

// Sample8 returns pixel i (row-major) reduced to 8 bits. 16-bit samples keep
// their high byte, 32-bit floats are clamped to [0,1] and scaled, and 1-bit
// samples map a set bit to 255.
func (p *Plane) Sample8(i int) uint8 {
	switch p.Depth {
	case types.Depth16:
		return p.Data[i*2]
	case types.Depth32:
		f := math.Float32frombits(buf.U32BE(p.Data[i*4:]))
		switch {
		case f != f || f <= 0: // NaN or negative
			return 0
		case f >= 1:
			return 255
		default:
			return uint8(f*255 + 0.5)
		}
	case types.Depth1:
		x, y := i%p.Width, i/p.Width
		b := p.Data[y*p.RowBytes()+x/8]
		if b&(0x80>>(x%8)) != 0 {
			return 255
		}
		return 0
	default:
		return p.Data[i]
	}
}

// Size returns the decoded byte size of a width x height plane, refusing
// anything above limit.
func Size(width, height int, depth types.Depth, limit int) (int, error) {
	n, err := buf.PlaneSize(height, depth.BytesPerRow(width))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTooLarge, err)
	}
	if limit > 0 && n > limit {
		return 0, fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, n, limit)
	}
	return n, nil
}

// Decode decompresses one plane payload (without its method word).
// limit bounds the decoded size; zero means unbounded.
func Decode(method uint16, data []byte, width, height int, depth types.Depth, limit int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, nil
	}
	size, err := Size(width, height, depth, limit)
	if err != nil {
		return nil, err
	}
	rowBytes := depth.BytesPerRow(width)

	switch method {
	case Raw:
		if len(data) != size {
			return nil, fmt.Errorf("%w: raw plane has %d bytes, want %d", ErrLength, len(data), size)
		}
		out := make([]byte, size)
		copy(out, data)
		return out, nil
	case RLE:
		return DecodeRLE(data, height, rowBytes)
	case ZIP:
		return inflate(data, size)
	case ZIPPred:
		out, err := inflate(data, size)
		if err != nil {
			return nil, err
		}
		return out, Unpredict(out, width, height, depth)
	default:
		return nil, fmt.Errorf("%w: method %d", ErrUnsupportedCompression, method)
	}
}
