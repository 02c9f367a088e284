package psd_test

import (
	"github.com/joshuapare/psdkit/internal/testutil"
)

// sampleDoc is a 100x100 RGB document with two one-row layers: "sample2"
// (4 px, opacity 0.2) below "sample" (5 px, opaque).
func sampleDoc() []byte {
	sample2 := testutil.Solid("sample2", 0, 0, 1, 4, 0, 0, 255, 255)
	sample2.Opacity = 51
	sample := testutil.Solid("sample", 0, 0, 1, 5, 0, 0, 0, 255)
	return testutil.Doc{
		Width: 100, Height: 100,
		Layers: []testutil.Layer{sample2, sample},
	}.Build()
}

// checklistDoc is a 5x5 document exercising groups, flags and blend modes.
//
//	colors/            (open)
//	  Insider/         (open)
//	    cross
//	  blue
//	  colors
//	Invisible/         (open, hidden)
//	  layer
//	closed/            (closed)
//	  layer2
//	other/             (open)
//	  invisible        (hidden)
//	  lockTrans        (transparency protected)
//	  darken           (blend dark)
//	Background         (transparency protected)
//
// Listed top-down; storage order is the reverse.
func checklistDoc() []byte {
	px := func(name string, v uint8) testutil.Layer {
		return testutil.Solid(name, 1, 1, 3, 3, v, v, v, 255)
	}

	background := px("Background", 255)
	background.Flags = testutil.FlagTransparencyProtected

	darken := px("darken", 10)
	darken.Blend = "dark"
	lockTrans := px("lockTrans", 20)
	lockTrans.Flags = testutil.FlagTransparencyProtected
	invisible := px("invisible", 30)
	invisible.Flags = testutil.FlagHidden

	hiddenGroup := testutil.Group("Invisible", true, px("layer", 40))
	hiddenGroup[len(hiddenGroup)-1].Flags |= testutil.FlagHidden

	layers := testutil.Flatten(
		[]testutil.Layer{background},
		testutil.Group("other", true, darken, lockTrans, invisible),
		testutil.Group("closed", false, px("layer2", 50)),
		hiddenGroup,
		testutil.Group("colors", true, testutil.Flatten(
			[]testutil.Layer{px("colors", 60), px("blue", 70)},
			testutil.Group("Insider", true, px("cross", 80)),
		)...),
	)
	return testutil.Doc{Width: 5, Height: 5, Layers: layers}.Build()
}
