// Package reader decodes a PSD document into its structural parts and
// extracts per-layer images from them. The exported entry points are used
// by the public psd package; nothing here is part of the public API.
//
// Decoding runs in two phases. Open/OpenBytes frames every section, decodes
// all layer records and rebuilds the layer tree, keeping channel payloads as
// zero-copy slices of the input. Extract decompresses the planes in parallel
// and composes them into images.
package reader

import (
	"errors"
	"fmt"

	"github.com/joshuapare/psdkit/internal/buf"
	"github.com/joshuapare/psdkit/internal/format"
	"github.com/joshuapare/psdkit/internal/hierarchy"
	"github.com/joshuapare/psdkit/internal/mmfile"
	"github.com/joshuapare/psdkit/pkg/types"
)

// Structure names used in errors and diagnostics.
const (
	structHeader    = "HEADER"
	structColorMode = "COLOR MODE DATA"
	structResources = "RESOURCES"
	structLayers    = "LAYER AND MASK"
	structImage     = "IMAGE DATA"
	structTree      = "HIERARCHY"
	structPlane     = "PLANE"
	structComposite = "COMPOSITE"
)

// colorModeOffset is the file offset of the header's color mode field.
const colorModeOffset = 24

// Document is a parsed but not yet extracted PSD file.
type Document struct {
	Header    types.Header
	Resources []types.Resource
	Layers    format.LayerInfo
	// LayerSource is "layer info" or the global key (Lr16, Lr32) that
	// carried the layer records.
	LayerSource string
	GlobalMask  *format.GlobalMask
	Global      []types.InfoBlock
	Image       *format.ImageData
	Tree        hierarchy.Result

	buf         []byte
	unmap       func() error
	opts        types.Options
	closed      bool
	diagnostics *diagnosticCollector
}

// Open maps the document at path and parses it.
func Open(path string, opts types.Options) (*Document, error) {
	data, unmap, err := mmfile.Map(path)
	if err != nil {
		return nil, wrapIOErr(fmt.Errorf("open document: %w", err))
	}
	d, err := newDocument(data, unmap, opts)
	if err != nil {
		if unmap != nil {
			_ = unmap()
		}
		return nil, err
	}
	if d.diagnostics != nil && d.diagnostics.report != nil {
		d.diagnostics.report.FilePath = path
	}
	return d, nil
}

// OpenBytes parses a document held in memory. data is not copied and must
// not be modified while the document is in use.
func OpenBytes(data []byte, opts types.Options) (*Document, error) {
	return newDocument(data, nil, opts)
}

func newDocument(data []byte, unmap func() error, opts types.Options) (*Document, error) {
	if data == nil {
		return nil, types.ErrMissingSource
	}
	opts = opts.Normalize()
	d := &Document{
		buf:         data,
		unmap:       unmap,
		opts:        opts,
		diagnostics: newDiagnosticCollector(opts.CollectDiagnostics, opts.Sink, int64(len(data))),
	}
	if err := d.parse(); err != nil {
		return nil, err
	}
	return d, nil
}

// parse frames the five top-level sections in order. Each section's start
// depends on the previous one's declared length, so any framing error ends
// the parse.
func (d *Document) parse() error {
	c := buf.NewCursor(d.buf)

	hdr, err := format.ParseHeader(c, d.opts.Limits)
	if err != nil {
		return d.fail(structHeader, err)
	}
	if !hdr.ColorMode.Known() {
		issue := fmt.Sprintf("color mode %d has no image conversion; layers keep metadata only", uint16(hdr.ColorMode))
		if d.opts.Strict {
			return d.fail(structHeader, types.NewError(types.ErrKindColorMode, colorModeOffset, issue, nil))
		}
		d.diagnostics.record(diagStructure(types.SevWarning, colorModeOffset, structHeader, issue, types.ErrKindColorMode))
	}

	if hdr.ColorModeData, err = format.ParseColorModeData(c); err != nil {
		return d.fail(structColorMode, err)
	}
	d.Header = hdr

	if d.Resources, err = format.ParseResources(c); err != nil {
		return d.fail(structResources, err)
	}

	lm, err := format.ParseLayerAndMask(c, d.opts.Limits)
	if err != nil {
		return d.fail(structLayers, err)
	}
	d.Layers = lm.Layers
	d.LayerSource = lm.Source
	d.GlobalMask = lm.GlobalMask
	d.Global = lm.Global
	if lm.Source != "" && lm.Source != "layer info" {
		d.diagnostics.record(diagStructure(types.SevInfo, -1, structLayers,
			fmt.Sprintf("layer records carried in global %s block", lm.Source), types.ErrKindUsage))
	}

	at := c.Pos()
	if d.Image, err = format.ParseImageData(c); err != nil {
		return d.fail(structImage, err)
	}
	if d.Image == nil {
		d.diagnostics.record(diagStructure(types.SevInfo, at, structImage, "document has no image data section", types.ErrKindUsage))
	}

	sections := make([]types.SectionType, len(d.Layers.Records))
	for i := range d.Layers.Records {
		sections[i] = d.Layers.Records[i].SectionType
	}
	tree, err := hierarchy.Build(sections)
	if err != nil {
		return d.fail(structTree, types.NewError(types.ErrKindHierarchy, d.recordOffset(err), "section dividers do not nest", err))
	}
	d.Tree = tree

	d.checkRecords()
	return nil
}

// checkRecords reports unusual but decodable record contents.
func (d *Document) checkRecords() {
	if d.diagnostics == nil {
		return
	}
	for i := range d.Layers.Records {
		rec := &d.Layers.Records[i]
		if rec.BlendMode.Label == rec.BlendMode.Code {
			d.diagnostics.record(diagLayer(types.SevInfo, types.DiagSupport, d.Layers.Offsets[i], i, rec.Name,
				fmt.Sprintf("unknown blend mode %q", rec.BlendMode.Code), types.ErrKindUnsupported))
		}
	}
}

// recordOffset returns the file offset of the record a hierarchy error
// names, or -1.
func (d *Document) recordOffset(err error) int64 {
	var he *hierarchy.Error
	if !errors.As(err, &he) || he.Record < 0 || he.Record >= len(d.Layers.Offsets) {
		return -1
	}
	return d.Layers.Offsets[he.Record]
}

// fail maps err, records it as a critical diagnostic and returns it.
func (d *Document) fail(structure string, err error) error {
	err = wrapFormatErr(structure, err)
	d.diagnostics.record(types.Diagnostic{
		Severity:  types.SevCritical,
		Category:  types.DiagStructure,
		Offset:    offsetOf(err),
		Structure: structure,
		Layer:     -1,
		Issue:     err.Error(),
		Kind:      kindOf(err),
	})
	return err
}

// Options returns the normalized options the document was parsed with.
func (d *Document) Options() types.Options { return d.opts }

// Size returns the input length in bytes.
func (d *Document) Size() int { return len(d.buf) }

// Diagnostics returns the report collected so far, or nil unless
// CollectDiagnostics was set.
func (d *Document) Diagnostics() *types.DiagnosticReport {
	return d.diagnostics.getReport()
}

// Close releases the input mapping. Documents extracted earlier stay valid.
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.unmap != nil {
		return d.unmap()
	}
	return nil
}

func (d *Document) ensureOpen() error {
	if d.closed {
		return types.NewError(types.ErrKindUsage, -1, "document is closed", nil)
	}
	return nil
}
