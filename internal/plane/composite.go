package plane

import (
	"fmt"

	"github.com/joshuapare/psdkit/pkg/types"
)

// DecodeComposite splits the merged image data section into one plane per
// document channel. RLE composites store the row count table of every
// channel first, then every row, so the whole section decodes as a single
// plane of channels*height rows.
func DecodeComposite(method uint16, data []byte, width, height, channels int, depth types.Depth, limit int) ([]Plane, error) {
	size, err := Size(width, height, depth, limit)
	if err != nil {
		return nil, err
	}
	rowBytes := depth.BytesPerRow(width)

	var all []byte
	switch method {
	case Raw:
		if len(data) < size*channels {
			return nil, fmt.Errorf("%w: composite has %d bytes, want %d", ErrLength, len(data), size*channels)
		}
		all = data[:size*channels]
	case RLE:
		all, err = DecodeRLE(data, height*channels, rowBytes)
	case ZIP:
		all, err = inflate(data, size*channels)
	case ZIPPred:
		all, err = inflate(data, size*channels)
		for c := 0; err == nil && c < channels; c++ {
			err = Unpredict(all[c*size:(c+1)*size], width, height, depth)
		}
	default:
		err = fmt.Errorf("%w: method %d", ErrUnsupportedCompression, method)
	}
	if err != nil {
		return nil, fmt.Errorf("composite: %w", err)
	}

	planes := make([]Plane, channels)
	for c := range planes {
		id := types.ChannelID(c)
		planes[c] = Plane{ID: id, Width: width, Height: height, Depth: depth, Data: all[c*size : (c+1)*size : (c+1)*size]}
	}
	if method == Raw {
		// Raw planes alias the input; detach them like every other method.
		for c := range planes {
			planes[c].Data = append([]byte(nil), planes[c].Data...)
		}
	}
	return planes, nil
}
