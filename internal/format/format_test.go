package format

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/joshuapare/psdkit/internal/buf"
	"github.com/joshuapare/psdkit/internal/testutil"
	"github.com/joshuapare/psdkit/pkg/types"
)

var lim = types.DefaultLimits()

func header(mut func(b []byte)) []byte {
	b := make([]byte, HeaderSize)
	copy(b, Signature)
	binary.BigEndian.PutUint16(b[0x04:], 1)
	binary.BigEndian.PutUint16(b[0x0C:], 3)
	binary.BigEndian.PutUint32(b[0x0E:], 100)
	binary.BigEndian.PutUint32(b[0x12:], 200)
	binary.BigEndian.PutUint16(b[0x16:], 8)
	binary.BigEndian.PutUint16(b[0x18:], 3)
	if mut != nil {
		mut(b)
	}
	return b
}

// parseDoc runs the section decoders in file order, the way the reader does.
func parseDoc(t *testing.T, data []byte) (types.Header, []types.Resource, LayerAndMask, *buf.Cursor) {
	t.Helper()
	c := buf.NewCursor(data)
	h, err := ParseHeader(c, lim)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.ColorModeData, err = ParseColorModeData(c); err != nil {
		t.Fatalf("ParseColorModeData: %v", err)
	}
	res, err := ParseResources(c)
	if err != nil {
		t.Fatalf("ParseResources: %v", err)
	}
	lm, err := ParseLayerAndMask(c, lim)
	if err != nil {
		t.Fatalf("ParseLayerAndMask: %v", err)
	}
	return h, res, lm, c
}

func TestParseHeaderSuccess(t *testing.T) {
	h, err := ParseHeader(buf.NewCursor(header(nil)), lim)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Width != 200 || h.Height != 100 || h.Depth != types.Depth8 || h.ColorMode != types.ColorModeRGB {
		t.Fatalf("header mismatch: %+v", h)
	}
	if h.Channels != 3 || h.Version != 1 {
		t.Fatalf("header mismatch: %+v", h)
	}
}

func TestParseHeaderUnknownColorModeIsNotAnError(t *testing.T) {
	h, err := ParseHeader(buf.NewCursor(header(func(b []byte) {
		binary.BigEndian.PutUint16(b[0x18:], 6)
	})), lim)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.ColorMode.Known() {
		t.Fatalf("mode 6 reported as known")
	}
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"truncated", header(nil)[:10], buf.ErrTruncated},
		{"signature", header(func(b []byte) { copy(b, "8BIM") }), ErrSignatureMismatch},
		{"version 0", header(func(b []byte) { binary.BigEndian.PutUint16(b[0x04:], 0) }), ErrUnsupportedVersion},
		{"psb", header(func(b []byte) { binary.BigEndian.PutUint16(b[0x04:], 2) }), ErrUnsupportedVersion},
		{"no channels", header(func(b []byte) { binary.BigEndian.PutUint16(b[0x0C:], 0) }), ErrInvalidHeader},
		{"57 channels", header(func(b []byte) { binary.BigEndian.PutUint16(b[0x0C:], 57) }), ErrInvalidHeader},
		{"zero height", header(func(b []byte) { binary.BigEndian.PutUint32(b[0x0E:], 0) }), ErrInvalidHeader},
		{"wide", header(func(b []byte) { binary.BigEndian.PutUint32(b[0x12:], 30001) }), ErrInvalidHeader},
		{"depth 4", header(func(b []byte) { binary.BigEndian.PutUint16(b[0x16:], 4) }), ErrInvalidHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(buf.NewCursor(tt.data), lim)
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestParseHeaderHonorsLimits(t *testing.T) {
	strict := types.StrictLimits()
	_, err := ParseHeader(buf.NewCursor(header(func(b []byte) {
		binary.BigEndian.PutUint32(b[0x12:], uint32(strict.MaxDimension+1))
	})), strict)
	if !errors.Is(err, ErrInvalidHeader) {
		t.Fatalf("expected invalid header, got %v", err)
	}
}

func TestPalette(t *testing.T) {
	data := make([]byte, PaletteSize)
	data[5] = 10
	data[256+5] = 20
	data[512+5] = 30
	p, err := Palette(data)
	if err != nil {
		t.Fatalf("Palette: %v", err)
	}
	r, g, b, _ := p[5].RGBA()
	if r>>8 != 10 || g>>8 != 20 || b>>8 != 30 {
		t.Fatalf("palette entry 5 = %v", p[5])
	}
	if _, err := Palette(data[:10]); err == nil {
		t.Fatalf("expected short palette error")
	}
}

func TestParseResources(t *testing.T) {
	data := testutil.Doc{
		Width: 1, Height: 1,
		ColorModeData: []byte{1, 2, 3},
		Resources: []testutil.Resource{
			{ID: types.ResResolutionInfo, Data: []byte{1, 2, 3}},
			{ID: 4000, Name: "Caf\x8e", Data: []byte{9, 9}},
		},
	}.Build()
	h, res, _, _ := parseDoc(t, data)
	if !bytes.Equal(h.ColorModeData, []byte{1, 2, 3}) {
		t.Fatalf("color mode data = %v", h.ColorModeData)
	}
	if len(res) != 2 {
		t.Fatalf("got %d resources", len(res))
	}
	if res[0].ID != types.ResResolutionInfo || !bytes.Equal(res[0].Data, []byte{1, 2, 3}) {
		t.Fatalf("resource 0 = %+v", res[0])
	}
	if res[1].Name != "Café" || !bytes.Equal(res[1].Data, []byte{9, 9}) {
		t.Fatalf("resource 1 = %+v", res[1])
	}
}

func TestParseResourcesBadSignature(t *testing.T) {
	var b bytes.Buffer
	b.Write([]byte{0, 0, 0, 12})
	b.WriteString("XXXX")
	b.Write(make([]byte, 8))
	_, err := ParseResources(buf.NewCursor(b.Bytes()))
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}
	var de *DecodeError
	if !errors.As(err, &de) || de.Offset != 4 {
		t.Fatalf("expected DecodeError at offset 4, got %v", err)
	}
}

func TestParseLayerRecords(t *testing.T) {
	darken := testutil.Solid("darken", 1, 2, 3, 5, 10, 20, 30, 255)
	darken.Blend = "dark"
	darken.Opacity = 51
	darken.Clipping = 1
	darken.Flags = testutil.FlagTransparencyProtected | testutil.FlagHidden
	darken.LayerID = 7
	darken.BlendingRanges = []byte{0, 0, 255, 255}
	darken.Mask = &testutil.Mask{Top: 1, Left: 2, Bottom: 3, Right: 4, DefaultColor: 255, Flags: 1 << 2, Real: true}
	darken.Extra = []testutil.Block{{Key: "shmd", Data: []byte{1, 2, 3, 4}}}

	named := testutil.Solid("ascii", 0, 0, 1, 1, 0, 0, 0, 0)
	named.UnicodeName = "日本語"

	data := testutil.Doc{Width: 8, Height: 8, Layers: []testutil.Layer{darken, named}}.Build()
	_, _, lm, _ := parseDoc(t, data)

	if lm.Source != "layer info" || lm.Layers.MergedAlpha {
		t.Fatalf("source=%q merged=%v", lm.Source, lm.Layers.MergedAlpha)
	}
	recs := lm.Layers.Records
	if len(recs) != 2 {
		t.Fatalf("got %d records", len(recs))
	}

	r := recs[0]
	if r.Name != "darken" || r.BlendMode != (types.BlendMode{Code: "dark", Label: "darken"}) {
		t.Fatalf("record 0 = %+v", r)
	}
	if r.Rect != (types.Rect{Top: 1, Left: 2, Bottom: 3, Right: 5}) {
		t.Fatalf("rect = %+v", r.Rect)
	}
	if r.Opacity != 51 || r.Clipping != types.ClippingNonBase || r.LayerID != 7 {
		t.Fatalf("record 0 = %+v", r)
	}
	want := types.LayerFlags{TransparencyProtected: true, Visible: false}
	if r.Flags != want {
		t.Fatalf("flags = %+v", r.Flags)
	}
	if r.Mask == nil || !r.Mask.Flags.Invert || r.Mask.DefaultColor != 255 || r.Mask.Real == nil {
		t.Fatalf("mask = %+v", r.Mask)
	}
	if !bytes.Equal(r.BlendingRanges, []byte{0, 0, 255, 255}) {
		t.Fatalf("blending ranges = %v", r.BlendingRanges)
	}
	blk, ok := r.FindInfo("shmd")
	if !ok || blk.Kind != types.InfoOpaque || !bytes.Equal(blk.Raw, []byte{1, 2, 3, 4}) {
		t.Fatalf("shmd block = %+v", blk)
	}
	if len(r.Channels) != 4 || r.Channels[0].ID != types.ChannelAlpha {
		t.Fatalf("channels = %+v", r.Channels)
	}

	if recs[1].Name != "日本語" {
		t.Fatalf("unicode name not applied: %q", recs[1].Name)
	}

	planes := lm.Layers.Channels[0]
	if len(planes) != 4 {
		t.Fatalf("got %d planes", len(planes))
	}
	for _, p := range planes {
		if p.Compression != CompressionRaw || len(p.Data) != 6 {
			t.Fatalf("plane %+v", p)
		}
	}
	if planes[1].Data[0] != 10 || planes[3].Data[5] != 30 {
		t.Fatalf("plane data mismatch")
	}
}

func TestParseLayerRecordSections(t *testing.T) {
	layers := testutil.Group("grp", false, testutil.Solid("child", 0, 0, 1, 1, 1, 1, 1, 1))
	layers[0].SectionBlend = "pass"
	data := testutil.Doc{Width: 2, Height: 2, Layers: layers}.Build()
	_, _, lm, _ := parseDoc(t, data)

	got := []types.SectionType{}
	for _, r := range lm.Layers.Records {
		got = append(got, r.SectionType)
	}
	want := []types.SectionType{types.SectionBoundingDivider, types.SectionOther, types.SectionClosedFolder}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("section types = %v, want %v", got, want)
		}
	}
	blk, _ := lm.Layers.Records[0].FindInfo(KeySection)
	if blk.Section == nil || blk.Section.BlendMode == nil || blk.Section.BlendMode.Label != "pass through" {
		t.Fatalf("divider block = %+v", blk)
	}
	folder := lm.Layers.Records[2]
	if !folder.Flags.PixelDataIrrelevant || folder.Name != "grp" {
		t.Fatalf("folder = %+v", folder)
	}
}

func TestParseLayerInfoMergedAlphaAndLr16(t *testing.T) {
	data := testutil.Doc{
		Width: 2, Height: 2, Depth: 16,
		InLr16:      true,
		MergedAlpha: true,
		Layers:      []testutil.Layer{{Name: "deep", Bottom: 1, Right: 1, Opacity: 255, Channels: []testutil.Channel{{ID: 0}}}},
		GlobalMask:  true,
	}.Build()
	_, _, lm, _ := parseDoc(t, data)
	if lm.Source != KeyLayers16 {
		t.Fatalf("source = %q", lm.Source)
	}
	if !lm.Layers.MergedAlpha || len(lm.Layers.Records) != 1 || lm.Layers.Records[0].Name != "deep" {
		t.Fatalf("layers = %+v", lm.Layers)
	}
	if len(lm.Layers.Channels[0][0].Data) != 2 {
		t.Fatalf("16-bit plane should hold 2 bytes, got %d", len(lm.Layers.Channels[0][0].Data))
	}
	if lm.GlobalMask == nil || lm.GlobalMask.Kind != 128 || lm.GlobalMask.Opacity != 50 {
		t.Fatalf("global mask = %+v", lm.GlobalMask)
	}
	if len(lm.Global) != 1 || lm.Global[0].Raw != nil {
		t.Fatalf("global blocks = %+v", lm.Global)
	}
}

func TestParseLayerRecordInvalidGeometry(t *testing.T) {
	bad := testutil.Layer{Name: "inverted", Top: 5, Bottom: 1, Opacity: 255}
	data := testutil.Doc{Width: 2, Height: 2, Layers: []testutil.Layer{bad}}.Build()
	c := buf.NewCursor(data)
	_, _ = ParseHeader(c, lim)
	_, _ = ParseColorModeData(c)
	_, _ = ParseResources(c)
	_, err := ParseLayerAndMask(c, lim)
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("expected invalid geometry, got %v", err)
	}
}

func TestParseLayerRecordBadBlendSignature(t *testing.T) {
	l := testutil.Solid("x", 0, 0, 1, 1, 0, 0, 0, 0)
	l.Signature = "8BPS"
	data := testutil.Doc{Width: 1, Height: 1, Layers: []testutil.Layer{l}}.Build()
	c := buf.NewCursor(data)
	_, _ = ParseHeader(c, lim)
	_, _ = ParseColorModeData(c)
	_, _ = ParseResources(c)
	if _, err := ParseLayerAndMask(c, lim); !errors.Is(err, ErrSignatureMismatch) {
		t.Fatalf("expected signature mismatch, got %v", err)
	}
}

func TestParseLayerInfoChannelOverrun(t *testing.T) {
	l := testutil.Solid("x", 0, 0, 1, 1, 0, 0, 0, 0)
	l.Channels[3].Length = 1000
	data := testutil.Doc{Width: 1, Height: 1, Layers: []testutil.Layer{l}}.Build()
	c := buf.NewCursor(data)
	_, _ = ParseHeader(c, lim)
	_, _ = ParseColorModeData(c)
	_, _ = ParseResources(c)
	if _, err := ParseLayerAndMask(c, lim); !errors.Is(err, buf.ErrOverrun) {
		t.Fatalf("expected overrun, got %v", err)
	}
}

func TestParseLayerAndMaskTruncated(t *testing.T) {
	data := testutil.Doc{Width: 1, Height: 1, Layers: []testutil.Layer{testutil.Solid("x", 0, 0, 1, 1, 0, 0, 0, 0)}}.Build()
	_, _, _, c := parseDoc(t, data)
	cut := data[:int(c.Pos())-10]

	c = buf.NewCursor(cut)
	_, _ = ParseHeader(c, lim)
	_, _ = ParseColorModeData(c)
	_, _ = ParseResources(c)
	if _, err := ParseLayerAndMask(c, lim); !errors.Is(err, buf.ErrTruncated) {
		t.Fatalf("expected truncation, got %v", err)
	}
}

func TestParseLayerInfoLayerLimit(t *testing.T) {
	layers := make([]testutil.Layer, 3)
	for i := range layers {
		layers[i] = testutil.Empty("e")
	}
	data := testutil.Doc{Width: 1, Height: 1, Layers: layers}.Build()
	c := buf.NewCursor(data)
	_, _ = ParseHeader(c, lim)
	_, _ = ParseColorModeData(c)
	_, _ = ParseResources(c)
	small := lim
	small.MaxLayers = 2
	if _, err := ParseLayerAndMask(c, small); !errors.Is(err, ErrLimit) {
		t.Fatalf("expected limit error, got %v", err)
	}
}

func TestParseImageData(t *testing.T) {
	data := testutil.Doc{Width: 2, Height: 2, CompositeCompression: 1}.Build()
	_, _, lm, c := parseDoc(t, data)
	if len(lm.Layers.Records) != 0 {
		t.Fatalf("expected no layers")
	}
	img, err := ParseImageData(c)
	if err != nil {
		t.Fatalf("ParseImageData: %v", err)
	}
	if img == nil || img.Compression != CompressionRLE || len(img.Data) == 0 {
		t.Fatalf("image data = %+v", img)
	}

	none, err := ParseImageData(buf.NewCursor(nil))
	if err != nil || none != nil {
		t.Fatalf("expected nil composite, got %+v, %v", none, err)
	}
}

func TestDecodeStrings(t *testing.T) {
	if got := DecodeMacRoman([]byte("plain")); got != "plain" {
		t.Fatalf("ascii = %q", got)
	}
	if got := DecodeMacRoman([]byte{'b', 0x8A, 'r'}); got != "bär" {
		t.Fatalf("mac roman = %q", got)
	}
	got, err := DecodeUTF16BE([]byte{0x00, 'h', 0x00, 'i', 0x00, 0x00})
	if err != nil || got != "hi" {
		t.Fatalf("utf16 = %q, %v", got, err)
	}
}

func TestBlendModeFor(t *testing.T) {
	if m := BlendModeFor("mul "); m.Label != "multiply" {
		t.Fatalf("mul = %+v", m)
	}
	if m := BlendModeFor("zzzz"); m != (types.BlendMode{Code: "zzzz", Label: "zzzz"}) {
		t.Fatalf("unknown = %+v", m)
	}
}
