package printer

import (
	"slices"

	"github.com/joshuapare/psdkit/pkg/types"
)

// node is the format-neutral view of one layer shared by the JSON and YAML
// printers.
type node struct {
	Name     string   `json:"name" yaml:"name"`
	Index    int      `json:"index" yaml:"index"`
	Kind     string   `json:"kind" yaml:"kind"`
	Visible  bool     `json:"visible" yaml:"visible"`
	Opacity  uint8    `json:"opacity" yaml:"opacity"`
	Details  *details `json:"details,omitempty" yaml:"details,omitempty"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
	Children []node   `json:"children,omitempty" yaml:"children,omitempty"`
}

type details struct {
	Top       int32    `json:"top" yaml:"top"`
	Left      int32    `json:"left" yaml:"left"`
	Bottom    int32    `json:"bottom" yaml:"bottom"`
	Right     int32    `json:"right" yaml:"right"`
	Blend     string   `json:"blend" yaml:"blend"`
	Clipping  string   `json:"clipping" yaml:"clipping"`
	Protected bool     `json:"transparency_protected,omitempty" yaml:"transparency_protected,omitempty"`
	LayerID   uint32   `json:"layer_id,omitempty" yaml:"layer_id,omitempty"`
	Channels  []string `json:"channels,omitempty" yaml:"channels,omitempty"`
	Mask      bool     `json:"mask,omitempty" yaml:"mask,omitempty"`
	Info      []string `json:"info,omitempty" yaml:"info,omitempty"`
}

type header struct {
	Width     uint32 `json:"width" yaml:"width"`
	Height    uint32 `json:"height" yaml:"height"`
	Channels  uint16 `json:"channels" yaml:"channels"`
	Depth     uint16 `json:"depth" yaml:"depth"`
	ColorMode string `json:"color_mode" yaml:"color_mode"`
}

type treeDoc struct {
	Header header `json:"header" yaml:"header"`
	Layers []node `json:"layers" yaml:"layers"`
}

func headerOf(h types.Header) header {
	return header{
		Width:     h.Width,
		Height:    h.Height,
		Channels:  h.Channels,
		Depth:     uint16(h.Depth),
		ColorMode: h.ColorMode.String(),
	}
}

func kindOf(l *types.Layer) string {
	if l.IsFolder() {
		return l.SectionType.String()
	}
	return "layer"
}

func (p *Printer) buildLevel(indices []int, depth int) []node {
	if p.opts.TopDown {
		indices = slices.Clone(indices)
		slices.Reverse(indices)
	}
	var out []node
	for _, i := range indices {
		l := p.doc.Layer(i)
		if l == nil || (!p.opts.ShowHidden && !l.Flags.Visible) {
			continue
		}
		out = append(out, p.buildNode(l, depth))
	}
	return out
}

func (p *Printer) buildNode(l *types.Layer, depth int) node {
	n := node{
		Name:    l.Name,
		Index:   l.Index,
		Kind:    kindOf(l),
		Visible: l.Flags.Visible,
		Opacity: l.Opacity,
		Error:   l.ImageError,
	}
	if p.opts.ShowDetails {
		d := &details{
			Top: l.Rect.Top, Left: l.Rect.Left, Bottom: l.Rect.Bottom, Right: l.Rect.Right,
			Blend:     l.BlendMode.Label,
			Clipping:  l.Clipping.String(),
			Protected: l.Flags.TransparencyProtected,
			LayerID:   l.LayerID,
			Mask:      l.Mask != nil,
		}
		for _, c := range l.Channels {
			d.Channels = append(d.Channels, c.ID.String())
		}
		for _, b := range l.Info {
			d.Info = append(d.Info, b.Key)
		}
		n.Details = d
	}
	if p.opts.MaxDepth == 0 || depth+1 < p.opts.MaxDepth {
		n.Children = p.buildLevel(l.Children, depth+1)
	}
	return n
}
