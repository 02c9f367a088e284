/*
Package psd decodes Adobe Photoshop (PSD) documents into a plain,
serializable layer tree with per-layer RGBA images.

# Quick Start

Parse a file and walk its layers:

	doc, err := psd.ParseFile("poster.psd", types.DefaultOptions())
	if err != nil {
	    log.Fatal(err)
	}
	defer doc.Close()

	info, err := psd.ExtractInfo(doc)
	if err != nil {
	    log.Fatal(err)
	}
	psd.Walk(info, func(l *types.Layer, depth int) error {
	    fmt.Printf("%*s%s\n", depth*2, "", l.Name)
	    return nil
	})

# Two phases

Parse frames every section, decodes the layer records and rebuilds the
folder tree. It is cheap: channel data is not decompressed. ExtractInfo then
decodes the channel planes in parallel and builds one image per layer.
Callers that only need structure can stop after Parse.

# Ordering

Layers, Roots and every Children slice are in file storage order, which is
bottom-to-top: index 0 is the lowest layer in the stack, and a folder comes
after all of its descendants.

# Error Handling

Errors are *types.Error values; match them with errors.Is against the
sentinels in package types:

	if errors.Is(err, types.ErrMalformedRLE) { ... }

Framing errors abort the parse. Problems confined to one layer (a missing
color channel, an unknown compression method) leave that layer without an
image and set Layer.ImageError; set Options.Strict to make them errors.
Diagnostics for every such problem are available through Options.Sink or
Options.CollectDiagnostics.

# Export

Save writes one image per leaf layer:

	err := psd.Save(info, psd.SaveOptions{Dir: "out", InFolders: true})
*/
package psd
