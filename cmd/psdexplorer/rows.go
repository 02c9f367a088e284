package main

import (
	"slices"

	"github.com/joshuapare/psdkit/pkg/types"
)

// row is one visible line of the layer tree.
type row struct {
	layer int
	depth int
}

// buildRows flattens the expanded part of the tree. With topDown the
// topmost sibling comes first, as in Photoshop's layer panel.
func buildRows(doc *types.ExtractedDocument, expanded map[int]bool, topDown bool) []row {
	if doc == nil {
		return nil
	}
	var rows []row
	var visit func(indices []int, depth int)
	visit = func(indices []int, depth int) {
		if topDown {
			indices = slices.Clone(indices)
			slices.Reverse(indices)
		}
		for _, i := range indices {
			l := doc.Layer(i)
			if l == nil {
				continue
			}
			rows = append(rows, row{layer: i, depth: depth})
			if l.IsFolder() && expanded[i] {
				visit(l.Children, depth+1)
			}
		}
	}
	visit(doc.Roots, 0)
	return rows
}

// initialExpanded opens every folder whose record is stored open.
func initialExpanded(doc *types.ExtractedDocument) map[int]bool {
	expanded := make(map[int]bool)
	for i := range doc.Layers {
		if doc.Layers[i].SectionType == types.SectionOpenFolder {
			expanded[i] = true
		}
	}
	return expanded
}
