// Package compose turns decoded channel planes into 8-bit NRGBA images.
//
// Each color mode has a fixed set of mandatory channels. The transparency
// channel (-1) is optional and defaults to opaque; user and vector masks
// are never applied. Layer opacity scales alpha uniformly.
package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/joshuapare/psdkit/internal/plane"
	"github.com/joshuapare/psdkit/pkg/types"
)

var (
	// ErrIncomplete indicates a mandatory color channel is missing.
	ErrIncomplete = errors.New("compose: missing mandatory channel")
	// ErrColorMode indicates a color mode without an RGBA conversion.
	ErrColorMode = errors.New("compose: unsupported color mode")
	// ErrGeometry indicates a plane whose size differs from the target.
	ErrGeometry = errors.New("compose: plane geometry mismatch")
)

// Planes holds the decoded planes of one layer or of the composite, keyed
// by channel id.
type Planes map[types.ChannelID]*plane.Plane

// Required returns the channels mode needs to produce color.
func Required(mode types.ColorMode) ([]types.ChannelID, error) {
	switch mode {
	case types.ColorModeRGB, types.ColorModeLab:
		return []types.ChannelID{types.ChannelRed, types.ChannelGreen, types.ChannelBlue}, nil
	case types.ColorModeCMYK:
		return []types.ChannelID{0, 1, 2, 3}, nil
	case types.ColorModeGrayscale, types.ColorModeDuotone, types.ColorModeMultichannel,
		types.ColorModeIndexed, types.ColorModeBitmap:
		return []types.ChannelID{types.ChannelGray}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrColorMode, mode)
}

// Wanted reports whether channel id feeds the image of a mode. Masks are
// skipped, as are extra spot channels beyond the mode's colors.
func Wanted(mode types.ColorMode, id types.ChannelID) bool {
	if id == types.ChannelAlpha {
		return true
	}
	req, err := Required(mode)
	if err != nil {
		return false
	}
	for _, r := range req {
		if r == id {
			return true
		}
	}
	return false
}

// Options carries the per-image parameters.
type Options struct {
	Mode    types.ColorMode
	Width   int
	Height  int
	Opacity uint8
	// Palette is required for Indexed documents.
	Palette color.Palette
}

// Image builds the NRGBA image for planes.
func Image(planes Planes, opts Options) (*image.NRGBA, error) {
	req, err := Required(opts.Mode)
	if err != nil {
		return nil, err
	}
	colors := make([]*plane.Plane, len(req))
	for i, id := range req {
		p := planes[id]
		if p == nil || p.Data == nil {
			return nil, fmt.Errorf("%w: %s", ErrIncomplete, id)
		}
		colors[i] = p
	}
	alpha := planes[types.ChannelAlpha]
	if alpha != nil && alpha.Data == nil {
		alpha = nil
	}
	for id, p := range planes {
		if p.Data != nil && (p.Width != opts.Width || p.Height != opts.Height) {
			return nil, fmt.Errorf("%w: %s channel is %dx%d, want %dx%d",
				ErrGeometry, id, p.Width, p.Height, opts.Width, opts.Height)
		}
	}
	if opts.Mode == types.ColorModeIndexed && len(opts.Palette) == 0 {
		return nil, fmt.Errorf("%w: indexed image without palette", ErrIncomplete)
	}

	img := image.NewNRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	n := opts.Width * opts.Height
	for i := range n {
		r, g, b := pixel(opts, colors, i)
		a := uint8(255)
		if alpha != nil {
			a = alpha.Sample8(i)
		}
		if opts.Opacity != 255 {
			a = uint8((int(a)*int(opts.Opacity) + 127) / 255)
		}
		img.Pix[i*4+0] = r
		img.Pix[i*4+1] = g
		img.Pix[i*4+2] = b
		img.Pix[i*4+3] = a
	}
	return img, nil
}

func pixel(opts Options, ch []*plane.Plane, i int) (r, g, b uint8) {
	switch opts.Mode {
	case types.ColorModeRGB:
		return ch[0].Sample8(i), ch[1].Sample8(i), ch[2].Sample8(i)
	case types.ColorModeCMYK:
		// Stored inverted: 255 is no ink.
		c, m, y, k := ch[0].Sample8(i), ch[1].Sample8(i), ch[2].Sample8(i), ch[3].Sample8(i)
		return mul8(c, k), mul8(m, k), mul8(y, k)
	case types.ColorModeLab:
		return labToRGB(ch[0].Sample8(i), ch[1].Sample8(i), ch[2].Sample8(i))
	case types.ColorModeIndexed:
		idx := int(ch[0].Data[i])
		if idx >= len(opts.Palette) {
			return 0, 0, 0
		}
		c := color.NRGBAModel.Convert(opts.Palette[idx]).(color.NRGBA)
		return c.R, c.G, c.B
	case types.ColorModeBitmap:
		// A set bit is black.
		v := 255 - ch[0].Sample8(i)
		return v, v, v
	default:
		v := ch[0].Sample8(i)
		return v, v, v
	}
}

func mul8(a, b uint8) uint8 {
	return uint8((int(a)*int(b) + 127) / 255)
}

// labToRGB converts 8-bit Lab (L scaled to 0..255, a and b offset by 128)
// to sRGB through XYZ with a D65 white point.
func labToRGB(l8, a8, b8 uint8) (uint8, uint8, uint8) {
	l := float64(l8) * 100 / 255
	a := float64(a8) - 128
	bb := float64(b8) - 128

	fy := (l + 16) / 116
	fx := fy + a/500
	fz := fy - bb/200
	x := 0.95047 * labInv(fx)
	y := 1.00000 * labInv(fy)
	z := 1.08883 * labInv(fz)

	r := 3.2404542*x - 1.5371385*y - 0.4985314*z
	g := -0.9692660*x + 1.8760108*y + 0.0415560*z
	b := 0.0556434*x - 0.2040259*y + 1.0572252*z
	return gamma8(r), gamma8(g), gamma8(b)
}

func labInv(t float64) float64 {
	const delta = 6.0 / 29
	if t > delta {
		return t * t * t
	}
	return 3 * delta * delta * (t - 4.0/29)
}

func gamma8(v float64) uint8 {
	if v <= 0.0031308 {
		v *= 12.92
	} else {
		v = 1.055*math.Pow(v, 1/2.4) - 0.055
	}
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
