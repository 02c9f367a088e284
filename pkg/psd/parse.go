package psd

import (
	"fmt"
	"io"

	"github.com/joshuapare/psdkit/internal/reader"
	"github.com/joshuapare/psdkit/pkg/types"
)

// ParsedDocument is a framed and structurally decoded document whose pixel
// data has not been decompressed yet.
type ParsedDocument struct {
	r *reader.Document
}

// Parse decodes a document held in memory. data is not copied and must
// stay unchanged until the document is no longer used. A nil slice is a
// usage error (types.ErrMissingSource).
//
// Example:
//
//	data, _ := os.ReadFile("poster.psd")
//	doc, err := psd.Parse(data, types.DefaultOptions())
func Parse(data []byte, opts types.Options) (*ParsedDocument, error) {
	r, err := reader.OpenBytes(data, opts)
	if err != nil {
		return nil, err
	}
	return &ParsedDocument{r: r}, nil
}

// ParseFile memory-maps path and parses it. Call Close to release the
// mapping; extracted documents remain valid afterwards.
func ParseFile(path string, opts types.Options) (*ParsedDocument, error) {
	r, err := reader.Open(path, opts)
	if err != nil {
		return nil, err
	}
	return &ParsedDocument{r: r}, nil
}

// ParseReader reads src to the end and parses the result. The format
// cannot be decoded incrementally.
func ParseReader(src io.Reader, opts types.Options) (*ParsedDocument, error) {
	if src == nil {
		return nil, types.ErrMissingSource
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("psd: read source: %w", err)
	}
	if data == nil {
		data = []byte{}
	}
	return Parse(data, opts)
}

// ExtractInfo decodes every layer image and returns the extracted document.
func ExtractInfo(doc *ParsedDocument) (*types.ExtractedDocument, error) {
	if doc == nil || doc.r == nil {
		return nil, types.ErrMissingSource
	}
	return doc.r.Extract()
}

// Diagnose runs a tolerant parse and extraction of data and returns every
// issue found. Fatal problems appear as critical diagnostics; the returned
// error is only set for a nil input.
func Diagnose(data []byte, opts types.Options) (*types.DiagnosticReport, error) {
	return reader.Diagnose(data, opts)
}

// Header returns the document header.
func (d *ParsedDocument) Header() types.Header { return d.r.Header }

// Resources returns the image resource blocks in file order.
func (d *ParsedDocument) Resources() []types.Resource { return d.r.Resources }

// Records returns the flat layer records in storage order, bounding
// dividers included.
func (d *ParsedDocument) Records() []types.LayerRecord { return d.r.Layers.Records }

// GlobalInfo returns the global additional info blocks that follow the
// global layer mask.
func (d *ParsedDocument) GlobalInfo() []types.InfoBlock { return d.r.Global }

// HasComposite reports whether the file carries a merged image.
func (d *ParsedDocument) HasComposite() bool { return d.r.Image != nil }

// Size returns the input size in bytes.
func (d *ParsedDocument) Size() int { return d.r.Size() }

// Diagnostics returns the collected report, or nil unless
// Options.CollectDiagnostics was set.
func (d *ParsedDocument) Diagnostics() *types.DiagnosticReport { return d.r.Diagnostics() }

// Close releases the file mapping of a document opened with ParseFile. It
// is a no-op for in-memory documents and safe to call more than once.
func (d *ParsedDocument) Close() error { return d.r.Close() }
