// Package printer renders an extracted document's layer tree as text, JSON
// or YAML.
package printer

import (
	"fmt"
	"io"

	"github.com/joshuapare/psdkit/pkg/types"
)

const (
	DefaultIndentSize = 2
	DefaultMaxDepth   = 0
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs an indented human-readable tree.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"

	// FormatYAML outputs YAML format.
	FormatYAML Format = "yaml"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json, yaml).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces per indent level (text format only).
	// Default: 2
	IndentSize int

	// MaxDepth limits recursion depth (0 = unlimited).
	// Default: 0 (unlimited)
	MaxDepth int

	// ShowHidden includes layers whose visibility flag is off.
	// Default: true
	ShowHidden bool

	// ShowDetails includes geometry, blend mode, flags and channels.
	// Default: false
	ShowDetails bool

	// TopDown lists siblings topmost first, the way Photoshop's layer
	// panel does. Otherwise they follow storage order (bottom first).
	// Default: false
	TopDown bool
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:     FormatText,
		IndentSize: DefaultIndentSize,
		MaxDepth:   DefaultMaxDepth,
		ShowHidden: true,
	}
}

// Printer handles formatted output of a document tree.
type Printer struct {
	opts   Options
	writer io.Writer
	doc    *types.ExtractedDocument
}

// New creates a new Printer.
//
// Example:
//
//	info, _ := psd.ExtractInfo(doc)
//	p := printer.New(info, os.Stdout, printer.DefaultOptions())
//	p.PrintTree()
func New(doc *types.ExtractedDocument, w io.Writer, opts Options) *Printer {
	if opts.IndentSize <= 0 {
		opts.IndentSize = DefaultIndentSize
	}
	return &Printer{doc: doc, writer: w, opts: opts}
}

// PrintTree prints every root layer and its descendants.
func (p *Printer) PrintTree() error {
	nodes := p.buildLevel(p.doc.Roots, 0)
	switch p.opts.Format {
	case FormatJSON:
		return p.printJSON(treeDoc{Header: headerOf(p.doc.Header), Layers: nodes})
	case FormatYAML:
		return p.printYAML(treeDoc{Header: headerOf(p.doc.Header), Layers: nodes})
	default:
		p.printHeaderText()
		return p.printNodesText(nodes, 0)
	}
}

// PrintLayer prints layer i and, for folders, its descendants.
func (p *Printer) PrintLayer(i int) error {
	l := p.doc.Layer(i)
	if l == nil {
		return fmt.Errorf("layer %d out of range [0,%d)", i, len(p.doc.Layers))
	}
	n := p.buildNode(l, 0)
	switch p.opts.Format {
	case FormatJSON:
		return p.printJSON(n)
	case FormatYAML:
		return p.printYAML(n)
	default:
		return p.printNodesText([]node{n}, 0)
	}
}

// PrintHeader prints the document header only.
func (p *Printer) PrintHeader() error {
	switch p.opts.Format {
	case FormatJSON:
		return p.printJSON(headerOf(p.doc.Header))
	case FormatYAML:
		return p.printYAML(headerOf(p.doc.Header))
	default:
		p.printHeaderText()
		return nil
	}
}
