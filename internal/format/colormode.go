package format

import (
	"fmt"
	"image/color"

	"github.com/joshuapare/psdkit/internal/buf"
)

// ParseColorModeData reads the color mode data section: a u32 length and
// that many bytes. Indexed documents store a 768-byte palette here and
// Duotone documents an undocumented curve specification; every other mode
// writes a zero length.
func ParseColorModeData(c *buf.Cursor) ([]byte, error) {
	n, err := c.U32()
	if err != nil {
		return nil, within("color mode data", err)
	}
	data, err := c.Bytes(int(n))
	if err != nil {
		return nil, within("color mode data", err)
	}
	return cloneBytes(data), nil
}

// Palette decodes an Indexed mode color table. The table is planar: 256 red
// values, then 256 green, then 256 blue.
func Palette(data []byte) (color.Palette, error) {
	if len(data) < PaletteSize {
		return nil, fmt.Errorf("palette: %d bytes, want %d: %w", len(data), PaletteSize, ErrInvalidHeader)
	}
	p := make(color.Palette, 256)
	for i := range p {
		p[i] = color.NRGBA{R: data[i], G: data[256+i], B: data[512+i], A: 0xFF}
	}
	return p, nil
}
