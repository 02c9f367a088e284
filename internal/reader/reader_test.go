package reader

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/psdkit/internal/testutil"
	"github.com/joshuapare/psdkit/pkg/types"
)

func extract(t *testing.T, data []byte, opts types.Options) (*Document, *types.ExtractedDocument) {
	t.Helper()
	d, err := OpenBytes(data, opts)
	require.NoError(t, err)
	out, err := d.Extract()
	require.NoError(t, err)
	return d, out
}

func TestOpenBytes_MissingSource(t *testing.T) {
	_, err := OpenBytes(nil, types.DefaultOptions())
	require.ErrorIs(t, err, types.ErrMissingSource)

	_, err = Diagnose(nil, types.DefaultOptions())
	require.ErrorIs(t, err, types.ErrMissingSource)
}

func TestExtract_Layers(t *testing.T) {
	low := testutil.Solid("low", 0, 0, 2, 2, 255, 0, 0, 255)
	high := testutil.Solid("high", 1, 1, 3, 4, 0, 0, 255, 128)
	high.Opacity = 51
	data := testutil.Doc{Width: 4, Height: 4, Layers: []testutil.Layer{low, high}}.Build()

	_, doc := extract(t, data, types.DefaultOptions())
	require.Len(t, doc.Layers, 2)
	require.Equal(t, []int{0, 1}, doc.Roots)

	require.Equal(t, "low", doc.Layers[0].Name)
	require.Equal(t, color.NRGBA{255, 0, 0, 255}, doc.Layers[0].Image.NRGBAAt(1, 1))

	h := doc.Layers[1]
	require.Equal(t, "high", h.Name)
	require.Equal(t, uint8(51), h.Opacity)
	require.Equal(t, 3, h.Image.Bounds().Dx())
	require.Equal(t, 2, h.Image.Bounds().Dy())
	require.Equal(t, uint8((128*51+127)/255), h.Image.NRGBAAt(0, 0).A)
	require.Empty(t, h.ImageError)
}

func TestExtract_Groups(t *testing.T) {
	layers := testutil.Flatten(
		[]testutil.Layer{testutil.Solid("bg", 0, 0, 1, 1, 1, 1, 1, 255)},
		testutil.Group("outer", true,
			testutil.Flatten(
				[]testutil.Layer{testutil.Solid("a", 0, 0, 1, 1, 2, 2, 2, 255)},
				testutil.Group("inner", false, testutil.Solid("b", 0, 0, 1, 1, 3, 3, 3, 255)),
			)...,
		),
	)
	_, doc := extract(t, testutil.Doc{Width: 1, Height: 1, Layers: layers}.Build(), types.DefaultOptions())

	names := make([]string, len(doc.Layers))
	for i, l := range doc.Layers {
		names[i] = l.Name
	}
	require.Equal(t, []string{"bg", "a", "b", "inner", "outer"}, names)
	require.Equal(t, []int{0, 4}, doc.Roots)

	outer, inner := doc.Layers[4], doc.Layers[3]
	require.Equal(t, types.SectionOpenFolder, outer.SectionType)
	require.Equal(t, types.SectionClosedFolder, inner.SectionType)
	require.Equal(t, []int{1, 3}, outer.Children)
	require.Equal(t, []int{2}, inner.Children)
	require.Equal(t, 3, doc.Layers[2].Parent)
	require.Equal(t, types.RootParent, outer.Parent)
	require.Nil(t, outer.Image, "folders carry no pixels")
	require.NotNil(t, doc.Layers[2].Image)
}

func TestOpenBytes_HeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  testutil.Doc
		want error
	}{
		{"signature", testutil.Doc{Width: 1, Height: 1, Signature: "8BPX"}, types.ErrInvalidSignature},
		{"psb", testutil.Doc{Width: 1, Height: 1, Version: 2}, types.ErrUnsupportedVersion},
		{"zero width", testutil.Doc{Width: 0, Height: 1}, types.ErrInvalidHeader},
		{"depth", testutil.Doc{Width: 1, Height: 1, Depth: 12}, types.ErrInvalidHeader},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := OpenBytes(tt.doc.Build(), types.DefaultOptions())
			require.ErrorIs(t, err, tt.want)
			var te *types.Error
			require.ErrorAs(t, err, &te)
			require.GreaterOrEqual(t, te.Offset, int64(0))
		})
	}
}

func TestOpenBytes_Truncated(t *testing.T) {
	data := testutil.Doc{Width: 1, Height: 1, Layers: []testutil.Layer{
		testutil.Solid("a", 0, 0, 1, 1, 0, 0, 0, 255),
	}}.Build()
	_, err := OpenBytes(data[:40], types.DefaultOptions())
	require.ErrorIs(t, err, types.ErrTruncatedInput)
	require.True(t, types.ErrKindTruncated.Fatal())
}

func TestOpenBytes_ChannelOverrun(t *testing.T) {
	l := testutil.Solid("long", 0, 0, 1, 1, 0, 0, 0, 255)
	l.Channels[3].Length = 1000
	data := testutil.Doc{Width: 1, Height: 1, Layers: []testutil.Layer{l}}.Build()

	_, err := OpenBytes(data, types.DefaultOptions())
	require.ErrorIs(t, err, types.ErrSectionOverrun)
	require.NotErrorIs(t, err, types.ErrTruncatedInput)
	var te *types.Error
	require.ErrorAs(t, err, &te)
	require.Positive(t, te.Offset)
}

func TestExtract_DecodeBudget(t *testing.T) {
	data := testutil.Doc{Width: 4, Height: 4, Layers: []testutil.Layer{
		testutil.Solid("a", 0, 0, 4, 4, 1, 2, 3, 255),
		testutil.Solid("b", 0, 0, 4, 4, 4, 5, 6, 255),
	}}.Build()

	// Each layer decodes four 16-byte planes.
	opts := types.DefaultOptions()
	opts.Limits.MaxDecodeBytes = 128
	extract(t, data, opts)

	opts.Limits.MaxDecodeBytes = 100
	d, err := OpenBytes(data, opts)
	require.NoError(t, err)
	_, err = d.Extract()
	require.ErrorIs(t, err, types.ErrLimitExceeded)
	require.True(t, types.ErrKindLimit.Fatal())
}

func TestExtract_MalformedRLEIsFatal(t *testing.T) {
	bad := testutil.Solid("bad", 0, 0, 1, 1, 0, 0, 0, 255)
	bad.Channels[1] = testutil.Channel{ID: 0, Compression: 1, Payload: []byte{0, 1, 0x05}}
	d, err := OpenBytes(testutil.Doc{Width: 1, Height: 1, Layers: []testutil.Layer{bad}}.Build(),
		types.Options{CollectDiagnostics: true})
	require.NoError(t, err, "RLE rows are only decoded on extraction")

	_, err = d.Extract()
	require.ErrorIs(t, err, types.ErrMalformedRLE)
	var te *types.Error
	require.ErrorAs(t, err, &te)
	require.Positive(t, te.Offset)
	require.True(t, d.Diagnostics().HasCriticalIssues())
}

func TestExtract_UnknownCompression(t *testing.T) {
	odd := testutil.Solid("odd", 0, 0, 1, 1, 0, 0, 0, 255)
	odd.Channels[2] = testutil.Channel{ID: 1, Compression: 7, Payload: []byte{1}}
	ok := testutil.Solid("ok", 0, 0, 1, 1, 9, 9, 9, 255)
	data := testutil.Doc{Width: 1, Height: 1, Layers: []testutil.Layer{odd, ok}}.Build()

	d, doc := extract(t, data, types.Options{CollectDiagnostics: true})
	require.Nil(t, doc.Layers[0].Image)
	require.Contains(t, doc.Layers[0].ImageError, "unsupported compression")
	require.NotNil(t, doc.Layers[1].Image, "siblings still decode")

	diags := d.Diagnostics().ForLayer(0)
	require.Len(t, diags, 1)
	require.Equal(t, types.ErrKindUnsupported, diags[0].Kind)

	strict, err := OpenBytes(data, types.Options{Strict: true})
	require.NoError(t, err)
	_, err = strict.Extract()
	require.ErrorIs(t, err, types.ErrUnsupported)
}

func TestExtract_IncompleteLayer(t *testing.T) {
	partial := testutil.Solid("partial", 0, 0, 1, 1, 0, 0, 0, 255)
	partial.Channels = partial.Channels[:3] // alpha, red, green
	data := testutil.Doc{Width: 1, Height: 1, Layers: []testutil.Layer{partial}}.Build()

	var seen []types.Diagnostic
	sink := types.SinkFunc(func(d types.Diagnostic) { seen = append(seen, d) })
	_, doc := extract(t, data, types.Options{Sink: sink})
	require.Nil(t, doc.Layers[0].Image)
	require.Contains(t, doc.Layers[0].ImageError, "missing mandatory channel")
	require.Len(t, seen, 1)
	require.Equal(t, types.ErrKindIncomplete, seen[0].Kind)
	require.Equal(t, "partial", seen[0].LayerName)

	d, err := OpenBytes(data, types.Options{Strict: true})
	require.NoError(t, err)
	_, err = d.Extract()
	require.ErrorIs(t, err, types.ErrIncompleteLayer)
}

func TestOpenBytes_UnbalancedHierarchy(t *testing.T) {
	folder := testutil.Empty("orphan")
	folder.Section = testutil.Section(testutil.SectionOpen)
	data := testutil.Doc{Width: 1, Height: 1, Layers: []testutil.Layer{
		testutil.Solid("a", 0, 0, 1, 1, 0, 0, 0, 255), folder,
	}}.Build()

	_, err := OpenBytes(data, types.DefaultOptions())
	require.ErrorIs(t, err, types.ErrUnbalancedHierarchy)
	var te *types.Error
	require.ErrorAs(t, err, &te)
	require.Positive(t, te.Offset, "offset of the offending record")
}

func TestOpenBytes_UnknownColorMode(t *testing.T) {
	data := testutil.Doc{Width: 1, Height: 1, Mode: 5, Layers: []testutil.Layer{
		testutil.Solid("a", 0, 0, 1, 1, 0, 0, 0, 255),
	}}.Build()

	d, doc := extract(t, data, types.Options{CollectDiagnostics: true})
	require.Len(t, doc.Layers, 1)
	require.Nil(t, doc.Layers[0].Image)
	require.NotEmpty(t, doc.Layers[0].ImageError)
	require.Equal(t, 1, d.Diagnostics().Summary.Warnings)

	_, err := OpenBytes(data, types.Options{Strict: true})
	require.ErrorIs(t, err, types.ErrUnsupportedColorMode)
}

func TestExtract_Composite(t *testing.T) {
	data := testutil.Doc{
		Width: 2, Height: 1, Channels: 4, MergedAlpha: true,
		Layers:               []testutil.Layer{testutil.Solid("a", 0, 0, 1, 1, 0, 0, 0, 255)},
		Composite:            [][]byte{{1, 2}, {3, 4}, {5, 6}, {7, 8}},
		CompositeCompression: 1,
	}.Build()

	_, doc := extract(t, data, types.Options{Composite: true})
	require.True(t, doc.MergedAlpha)
	require.NotNil(t, doc.Composite)
	require.Equal(t, color.NRGBA{1, 3, 5, 7}, doc.Composite.NRGBAAt(0, 0))
	require.Equal(t, color.NRGBA{2, 4, 6, 8}, doc.Composite.NRGBAAt(1, 0))

	_, doc = extract(t, data, types.DefaultOptions())
	require.Nil(t, doc.Composite, "composite is opt-in")
}

func TestOpenBytes_Lr16(t *testing.T) {
	data := testutil.Doc{Width: 1, Height: 1, InLr16: true, Layers: []testutil.Layer{
		testutil.Solid("deep", 0, 0, 1, 1, 4, 5, 6, 255),
	}}.Build()
	d, doc := extract(t, data, types.Options{CollectDiagnostics: true})
	require.Equal(t, "Lr16", d.LayerSource)
	require.Equal(t, "deep", doc.Layers[0].Name)
	assert.Equal(t, 1, d.Diagnostics().Summary.Info)
}

func TestClose(t *testing.T) {
	d, err := OpenBytes(testutil.Doc{Width: 1, Height: 1}.Build(), types.DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, d.Close())
	require.NoError(t, d.Close(), "idempotent")
	_, err = d.Extract()
	require.Error(t, err)
}

func TestOpen_MatchesOpenBytes(t *testing.T) {
	data := testutil.Doc{Width: 2, Height: 2, Layers: []testutil.Layer{
		testutil.Solid("a", 0, 0, 2, 2, 10, 20, 30, 255),
	}}.Build()
	path := testutil.WriteFile(t, "doc.psd", data)

	d, err := Open(path, types.Options{CollectDiagnostics: true})
	require.NoError(t, err)
	fromFile, err := d.Extract()
	require.NoError(t, err)
	require.NoError(t, d.Close())

	_, fromBytes := extract(t, data, types.DefaultOptions())
	require.Equal(t, fromBytes.Layers[0].Image.Pix, fromFile.Layers[0].Image.Pix)
	require.Equal(t, fromBytes.Header, fromFile.Header)
	require.Equal(t, path, d.Diagnostics().FilePath)
}

func TestDiagnose(t *testing.T) {
	partial := testutil.Solid("partial", 0, 0, 1, 1, 0, 0, 0, 255)
	partial.Channels = partial.Channels[:2]
	report, err := Diagnose(testutil.Doc{Width: 1, Height: 1, Layers: []testutil.Layer{partial}}.Build(),
		types.Options{Strict: true})
	require.NoError(t, err)
	require.False(t, report.HasCriticalIssues())
	require.Equal(t, 1, report.Summary.Warnings)

	report, err = Diagnose([]byte("8BPS"), types.DefaultOptions())
	require.NoError(t, err)
	require.True(t, report.HasCriticalIssues())
	require.Equal(t, int64(4), report.FileSize)
}
