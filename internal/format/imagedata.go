package format

import (
	"github.com/joshuapare/psdkit/internal/buf"
)

// ImageData is the merged composite image section: a compression method
// followed by every channel of the document, planar. Data aliases the input
// buffer and runs to the end of the file.
type ImageData struct {
	Compression uint16
	Data        []byte
	Offset      int64
}

// ParseImageData reads the image data section. A file truncated right after
// the layer and mask info has no composite; that is reported as a nil result
// rather than an error.
func ParseImageData(c *buf.Cursor) (*ImageData, error) {
	if c.Remaining() == 0 {
		return nil, nil
	}
	at := c.Pos()
	method, err := c.U16()
	if err != nil {
		return nil, within("image data", err)
	}
	rest, err := c.Bytes(c.Remaining())
	if err != nil {
		return nil, within("image data", err)
	}
	return &ImageData{Compression: method, Data: rest, Offset: at}, nil
}
