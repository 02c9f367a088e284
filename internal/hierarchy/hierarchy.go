// Package hierarchy rebuilds the layer tree from the flat record list.
//
// Photoshop stores layers bottom-to-top and marks groups with section
// divider records instead of parent pointers. Walking in storage order, a
// group begins with its hidden bounding divider (type 3, usually named
// "</Layer group>"), then its children, and ends with the folder record
// (type 1 open or 2 closed) that carries the group's name and attributes.
//
//	storage order           tree
//	-------------           ----
//	0 </Layer group>        (dropped)
//	1 cross                 Insider/cross
//	2 Insider  (folder)     Insider
//	3 Background            Background
//
// Build is a pure function over section types so it can be tested without
// any decoding.
package hierarchy

import (
	"errors"
	"fmt"

	"github.com/joshuapare/psdkit/pkg/types"
)

// ErrUnbalanced indicates dividers that do not nest.
var ErrUnbalanced = errors.New("hierarchy: unbalanced section dividers")

// Node is a kept record in the rebuilt tree. Indices refer to Result.Nodes.
type Node struct {
	Record   int // index of the source record in storage order
	Parent   int // types.RootParent for top-level nodes
	Children []int
}

// Result maps kept records to tree nodes. Bounding dividers are not kept.
type Result struct {
	Nodes []Node
	Roots []int
	// Index maps a record index to its node index, or -1 for dropped records.
	Index []int
}

// Error reports the record that broke nesting.
type Error struct {
	Record int
	Open   int // frames still open
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("record %d: %s (%d open)", e.Record, e.Msg, e.Open)
}

func (e *Error) Unwrap() error { return ErrUnbalanced }

type frame struct {
	divider  int   // record index of the bounding divider
	children []int // node indices, storage order
}

// Build scans sections once, in storage order, with a stack of open frames.
// A bounding divider pushes a frame; every other record becomes a node
// attached to the innermost frame (or the root); a folder record pops the
// innermost frame and adopts its children.
func Build(sections []types.SectionType) (Result, error) {
	res := Result{Index: make([]int, len(sections))}
	var stack []frame

	attach := func(node int) {
		if len(stack) == 0 {
			res.Roots = append(res.Roots, node)
			return
		}
		top := &stack[len(stack)-1]
		top.children = append(top.children, node)
	}

	for i, s := range sections {
		switch {
		case s.IsDivider():
			res.Index[i] = -1
			stack = append(stack, frame{divider: i})

		case s.IsFolder():
			if len(stack) == 0 {
				return Result{}, &Error{Record: i, Msg: "folder record closes no open group"}
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			node := len(res.Nodes)
			res.Index[i] = node
			res.Nodes = append(res.Nodes, Node{Record: i, Parent: types.RootParent, Children: top.children})
			for _, c := range top.children {
				res.Nodes[c].Parent = node
			}
			attach(node)

		default:
			node := len(res.Nodes)
			res.Index[i] = node
			res.Nodes = append(res.Nodes, Node{Record: i, Parent: types.RootParent})
			attach(node)
		}
	}

	if len(stack) > 0 {
		return Result{}, &Error{
			Record: stack[len(stack)-1].divider,
			Open:   len(stack),
			Msg:    "group divider without a folder record",
		}
	}
	return res, nil
}
