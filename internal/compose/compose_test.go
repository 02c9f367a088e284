package compose

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/psdkit/internal/plane"
	"github.com/joshuapare/psdkit/pkg/types"
)

func flat(id types.ChannelID, w, h int, v byte) *plane.Plane {
	data := make([]byte, w*h)
	for i := range data {
		data[i] = v
	}
	return &plane.Plane{ID: id, Width: w, Height: h, Depth: types.Depth8, Data: data}
}

func TestImage_RGB(t *testing.T) {
	planes := Planes{
		types.ChannelRed:   flat(types.ChannelRed, 2, 2, 10),
		types.ChannelGreen: flat(types.ChannelGreen, 2, 2, 20),
		types.ChannelBlue:  flat(types.ChannelBlue, 2, 2, 30),
	}
	img, err := Image(planes, Options{Mode: types.ColorModeRGB, Width: 2, Height: 2, Opacity: 255})
	require.NoError(t, err)
	require.Equal(t, color.NRGBA{10, 20, 30, 255}, img.NRGBAAt(1, 1), "missing alpha defaults to opaque")

	planes[types.ChannelAlpha] = flat(types.ChannelAlpha, 2, 2, 200)
	img, err = Image(planes, Options{Mode: types.ColorModeRGB, Width: 2, Height: 2, Opacity: 51})
	require.NoError(t, err)
	require.Equal(t, uint8(40), img.NRGBAAt(0, 0).A, "opacity scales alpha")
}

func TestImage_Incomplete(t *testing.T) {
	planes := Planes{
		types.ChannelRed:   flat(types.ChannelRed, 1, 1, 1),
		types.ChannelAlpha: flat(types.ChannelAlpha, 1, 1, 1),
	}
	_, err := Image(planes, Options{Mode: types.ColorModeRGB, Width: 1, Height: 1, Opacity: 255})
	require.ErrorIs(t, err, ErrIncomplete)

	_, err = Image(Planes{0: flat(0, 1, 1, 0)}, Options{Mode: types.ColorModeIndexed, Width: 1, Height: 1})
	require.ErrorIs(t, err, ErrIncomplete, "indexed without palette")
}

func TestImage_GeometryMismatch(t *testing.T) {
	planes := Planes{0: flat(0, 2, 1, 0)}
	_, err := Image(planes, Options{Mode: types.ColorModeGrayscale, Width: 1, Height: 1})
	require.ErrorIs(t, err, ErrGeometry)
}

func TestImage_Modes(t *testing.T) {
	tests := []struct {
		name   string
		mode   types.ColorMode
		planes Planes
		pal    color.Palette
		want   color.NRGBA
	}{
		{"gray", types.ColorModeGrayscale, Planes{0: flat(0, 1, 1, 77)}, nil, color.NRGBA{77, 77, 77, 255}},
		{"duotone", types.ColorModeDuotone, Planes{0: flat(0, 1, 1, 5)}, nil, color.NRGBA{5, 5, 5, 255}},
		{"multichannel", types.ColorModeMultichannel, Planes{0: flat(0, 1, 1, 9), 1: flat(1, 1, 1, 200)}, nil, color.NRGBA{9, 9, 9, 255}},
		{"cmyk no ink", types.ColorModeCMYK, Planes{0: flat(0, 1, 1, 255), 1: flat(1, 1, 1, 255), 2: flat(2, 1, 1, 255), 3: flat(3, 1, 1, 255)}, nil, color.NRGBA{255, 255, 255, 255}},
		{"cmyk full black", types.ColorModeCMYK, Planes{0: flat(0, 1, 1, 255), 1: flat(1, 1, 1, 255), 2: flat(2, 1, 1, 255), 3: flat(3, 1, 1, 0)}, nil, color.NRGBA{0, 0, 0, 255}},
		{"cmyk cyan", types.ColorModeCMYK, Planes{0: flat(0, 1, 1, 0), 1: flat(1, 1, 1, 255), 2: flat(2, 1, 1, 255), 3: flat(3, 1, 1, 255)}, nil, color.NRGBA{0, 255, 255, 255}},
		{"lab white", types.ColorModeLab, Planes{0: flat(0, 1, 1, 255), 1: flat(1, 1, 1, 128), 2: flat(2, 1, 1, 128)}, nil, color.NRGBA{255, 255, 255, 255}},
		{"lab black", types.ColorModeLab, Planes{0: flat(0, 1, 1, 0), 1: flat(1, 1, 1, 128), 2: flat(2, 1, 1, 128)}, nil, color.NRGBA{0, 0, 0, 255}},
		{"indexed", types.ColorModeIndexed, Planes{0: flat(0, 1, 1, 1)}, color.Palette{color.RGBA{1, 2, 3, 255}, color.RGBA{40, 50, 60, 255}}, color.NRGBA{40, 50, 60, 255}},
		{"indexed out of range", types.ColorModeIndexed, Planes{0: flat(0, 1, 1, 7)}, color.Palette{color.RGBA{1, 2, 3, 255}}, color.NRGBA{0, 0, 0, 255}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := Image(tt.planes, Options{Mode: tt.mode, Width: 1, Height: 1, Opacity: 255, Palette: tt.pal})
			require.NoError(t, err)
			require.Equal(t, tt.want, img.NRGBAAt(0, 0))
		})
	}
}

func TestImage_Bitmap(t *testing.T) {
	p := &plane.Plane{ID: 0, Width: 9, Height: 1, Depth: types.Depth1, Data: []byte{0x80, 0x80}}
	img, err := Image(Planes{0: p}, Options{Mode: types.ColorModeBitmap, Width: 9, Height: 1, Opacity: 255})
	require.NoError(t, err)
	require.Equal(t, color.NRGBA{0, 0, 0, 255}, img.NRGBAAt(0, 0), "set bit is black")
	require.Equal(t, color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(1, 0))
	require.Equal(t, color.NRGBA{0, 0, 0, 255}, img.NRGBAAt(8, 0))
}

func TestRequiredAndWanted(t *testing.T) {
	_, err := Required(types.ColorMode(5))
	require.ErrorIs(t, err, ErrColorMode)

	require.True(t, Wanted(types.ColorModeRGB, types.ChannelAlpha))
	require.True(t, Wanted(types.ColorModeCMYK, 3))
	require.False(t, Wanted(types.ColorModeRGB, 3))
	require.False(t, Wanted(types.ColorModeRGB, types.ChannelUserMask))
}
