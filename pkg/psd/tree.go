package psd

import (
	"errors"
	"strings"

	"github.com/joshuapare/psdkit/pkg/types"
)

// SkipChildren may be returned by a WalkFunc to skip a folder's contents.
var SkipChildren = errors.New("skip children")

// WalkFunc is called for every layer with its nesting depth (0 for roots).
type WalkFunc func(l *types.Layer, depth int) error

// Walk visits the tree depth-first in storage order: a folder is visited
// before its children, siblings bottom-to-top. Walk stops at the first
// error other than SkipChildren and returns it.
func Walk(doc *types.ExtractedDocument, fn WalkFunc) error {
	for _, i := range doc.Roots {
		if err := walk(doc, i, 0, fn); err != nil {
			return err
		}
	}
	return nil
}

func walk(doc *types.ExtractedDocument, i, depth int, fn WalkFunc) error {
	l := doc.Layer(i)
	if l == nil {
		return nil
	}
	if err := fn(l, depth); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}
	for _, c := range l.Children {
		if err := walk(doc, c, depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// ParentOf returns the folder containing layer i, or nil for top-level
// layers and out-of-range indices.
func ParentOf(doc *types.ExtractedDocument, i int) *types.Layer {
	l := doc.Layer(i)
	if l == nil || l.Parent == types.RootParent {
		return nil
	}
	return doc.Layer(l.Parent)
}

// FindByName returns the indices of every layer named name, in storage
// order.
func FindByName(doc *types.ExtractedDocument, name string) []int {
	var out []int
	for i := range doc.Layers {
		if doc.Layers[i].Name == name {
			out = append(out, i)
		}
	}
	return out
}

// Path returns the slash-joined names from the outermost folder down to
// layer i, e.g. "colors/blue". It returns "" for an out-of-range index.
func Path(doc *types.ExtractedDocument, i int) string {
	var parts []string
	for l, n := doc.Layer(i), 0; l != nil && n <= len(doc.Layers); l, n = ParentOf(doc, l.Index), n+1 {
		parts = append(parts, l.Name)
	}
	for a, b := 0, len(parts)-1; a < b; a, b = a+1, b-1 {
		parts[a], parts[b] = parts[b], parts[a]
	}
	return strings.Join(parts, "/")
}

// Leaves returns the indices of layers that are not folders, in storage
// order.
func Leaves(doc *types.ExtractedDocument) []int {
	var out []int
	for i := range doc.Layers {
		if !doc.Layers[i].IsFolder() {
			out = append(out, i)
		}
	}
	return out
}
