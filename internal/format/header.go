package format

import (
	"bytes"
	"fmt"

	"github.com/joshuapare/psdkit/internal/buf"
	"github.com/joshuapare/psdkit/pkg/types"
)

// ParseHeader validates and extracts the fixed file header.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x00    4    '8' 'B' 'P' 'S'
//	 0x04    2    Version (1; 2 is PSB)
//	 0x06    6    Reserved, zero
//	 0x0C    2    Channel count, including alpha channels (1-56)
//	 0x0E    4    Height in pixels (1-30000)
//	 0x12    4    Width in pixels (1-30000)
//	 0x16    2    Depth: bits per channel (1, 8, 16, 32)
//	 0x18    2    Color mode
//
// An unknown color mode is not an error here; the caller decides whether
// metadata-only decoding is acceptable.
func ParseHeader(c *buf.Cursor, lim types.Limits) (types.Header, error) {
	start := c.Pos()
	raw, err := c.Bytes(HeaderSize)
	if err != nil {
		return types.Header{}, within("psd header", err)
	}
	if !bytes.Equal(raw[:4], Signature) {
		return types.Header{}, decodeErr("psd header", start, ErrSignatureMismatch, "got %q", raw[:4])
	}

	h := types.Header{
		Version:   buf.U16BE(raw[0x04:]),
		Channels:  buf.U16BE(raw[0x0C:]),
		Height:    buf.U32BE(raw[0x0E:]),
		Width:     buf.U32BE(raw[0x12:]),
		Depth:     types.Depth(buf.U16BE(raw[0x16:])),
		ColorMode: types.ColorMode(buf.U16BE(raw[0x18:])),
	}

	if h.Version != Version {
		detail := fmt.Sprintf("version %d", h.Version)
		if h.Version == VersionPSB {
			detail = "version 2 (PSB)"
		}
		return h, decodeErr("psd header", start+0x04, ErrUnsupportedVersion, "%s", detail)
	}
	maxChannels := min(MaxChannels, lim.MaxChannels)
	if h.Channels < MinChannels || int(h.Channels) > maxChannels {
		return h, decodeErr("psd header", start+0x0C, ErrInvalidHeader,
			"channel count %d outside [%d,%d]", h.Channels, MinChannels, maxChannels)
	}
	maxDim := min(MaxDimension, lim.MaxDimension)
	if h.Height < 1 || int64(h.Height) > int64(maxDim) {
		return h, decodeErr("psd header", start+0x0E, ErrInvalidHeader, "height %d outside [1,%d]", h.Height, maxDim)
	}
	if h.Width < 1 || int64(h.Width) > int64(maxDim) {
		return h, decodeErr("psd header", start+0x12, ErrInvalidHeader, "width %d outside [1,%d]", h.Width, maxDim)
	}
	if !h.Depth.Valid() {
		return h, decodeErr("psd header", start+0x16, ErrInvalidHeader, "depth %d", h.Depth)
	}
	return h, nil
}
