package reader

import (
	"fmt"
	"image"
	"image/color"
	"slices"

	"github.com/joshuapare/psdkit/internal/compose"
	"github.com/joshuapare/psdkit/internal/format"
	"github.com/joshuapare/psdkit/internal/plane"
	"github.com/joshuapare/psdkit/pkg/types"
)

// Extract builds the public document: header, resources, the rebuilt tree
// and one image per paintable layer. Planes of all layers are decoded in
// parallel; the result order follows storage order regardless.
//
// Failures confined to one layer (missing channel, unknown compression,
// corrupt deflate stream) leave that layer without an image and set its
// ImageError, unless Strict is set. RLE and size mismatches are fatal.
func (d *Document) Extract() (*types.ExtractedDocument, error) {
	if err := d.ensureOpen(); err != nil {
		return nil, err
	}
	out := &types.ExtractedDocument{
		Header:      d.Header,
		Resources:   d.Resources,
		MergedAlpha: d.Layers.MergedAlpha,
		Roots:       slices.Clone(d.Tree.Roots),
	}
	if len(d.Tree.Nodes) > 0 {
		out.Layers = make([]types.Layer, len(d.Tree.Nodes))
	}
	for i, n := range d.Tree.Nodes {
		out.Layers[i] = types.Layer{
			LayerRecord: d.Layers.Records[n.Record],
			Index:       i,
			Parent:      n.Parent,
			Children:    slices.Clone(n.Children),
		}
	}

	if _, err := compose.Required(d.Header.ColorMode); err != nil {
		msg := fmt.Sprintf("unsupported color mode %s", d.Header.ColorMode)
		for i := range out.Layers {
			if d.paintable(i) {
				out.Layers[i].ImageError = msg
			}
		}
		return out, nil
	}

	pal := d.palette()
	if err := d.extractLayers(out, pal); err != nil {
		return nil, err
	}
	if d.opts.Composite && d.Image != nil {
		img, err := d.extractComposite(pal)
		if err != nil {
			return nil, err
		}
		out.Composite = img
	}
	return out, nil
}

// paintable reports whether node i can carry pixels.
func (d *Document) paintable(i int) bool {
	rec := &d.Layers.Records[d.Tree.Nodes[i].Record]
	return !rec.IsFolder() && !rec.Rect.Empty()
}

func (d *Document) palette() color.Palette {
	if d.Header.ColorMode != types.ColorModeIndexed {
		return nil
	}
	pal, err := format.Palette(d.Header.ColorModeData)
	if err != nil {
		d.diagnostics.record(diagStructure(types.SevError, int64(format.HeaderSize), structColorMode,
			fmt.Sprintf("indexed document without a usable palette: %v", err), types.ErrKindIncomplete))
		return nil
	}
	return pal
}

// planeJobs lists every plane that feeds a layer image. Jobs refer to tree
// node indices. Masks and spot channels are not decoded.
func (d *Document) planeJobs() []plane.Job {
	var jobs []plane.Job
	for i, n := range d.Tree.Nodes {
		if !d.paintable(i) {
			continue
		}
		rec := &d.Layers.Records[n.Record]
		for j, ch := range d.Layers.Channels[n.Record] {
			if ch.Empty || !compose.Wanted(d.Header.ColorMode, ch.ID) {
				continue
			}
			jobs = append(jobs, plane.Job{
				Layer:       i,
				Channel:     j,
				ID:          ch.ID,
				Compression: ch.Compression,
				Data:        ch.Data,
				Width:       rec.Rect.Width(),
				Height:      rec.Rect.Height(),
				Depth:       d.Header.Depth,
				Offset:      ch.Offset,
			})
		}
	}
	return jobs
}

// checkBudget rejects a decode whose planes add up to more than
// Limits.MaxDecodeBytes.
func (d *Document) checkBudget(jobs []plane.Job) error {
	limit := d.opts.Limits.MaxDecodeBytes
	var total int64
	for _, j := range jobs {
		total += int64(j.Depth.BytesPerRow(j.Width)) * int64(j.Height)
		if total > limit {
			return types.NewError(types.ErrKindLimit, j.Offset,
				fmt.Sprintf("layer planes exceed %d decoded bytes", limit), nil)
		}
	}
	return nil
}

func (d *Document) extractLayers(out *types.ExtractedDocument, pal color.Palette) error {
	jobs := d.planeJobs()
	if err := d.checkBudget(jobs); err != nil {
		return d.fail(structPlane, err)
	}
	results, err := plane.DecodeAll(jobs, d.opts.Workers, d.opts.Limits.MaxPlaneBytes)
	if err != nil {
		return d.fail(structPlane, err)
	}

	planes := make(map[int]compose.Planes)
	failed := make(map[int]error)
	for k, r := range results {
		layer := jobs[k].Layer
		if r.Err != nil {
			if _, seen := failed[layer]; !seen {
				failed[layer] = r.Err
			}
			continue
		}
		if planes[layer] == nil {
			planes[layer] = compose.Planes{}
		}
		p := r.Plane
		planes[layer][p.ID] = &p
	}

	for i := range out.Layers {
		if !d.paintable(i) {
			continue
		}
		l := &out.Layers[i]
		if err := failed[i]; err != nil {
			if err := d.layerProblem(l, err, types.DiagData); err != nil {
				return err
			}
			continue
		}
		img, err := compose.Image(planes[i], compose.Options{
			Mode:    d.Header.ColorMode,
			Width:   l.Rect.Width(),
			Height:  l.Rect.Height(),
			Opacity: l.Opacity,
			Palette: pal,
		})
		if err != nil {
			if err := d.layerProblem(l, err, types.DiagIntegrity); err != nil {
				return err
			}
			continue
		}
		l.Image = img
	}
	return nil
}

// layerProblem attaches a non-fatal failure to l. In strict mode it is
// returned instead.
func (d *Document) layerProblem(l *types.Layer, err error, cat types.DiagCategory) error {
	rec := d.Tree.Nodes[l.Index].Record
	offset := offsetOf(err)
	if offset < 0 {
		offset = d.Layers.Offsets[rec]
	}
	kind := kindOf(err)
	if d.opts.Strict {
		return d.fail(structPlane, types.NewError(kind, offset, fmt.Sprintf("layer %d %q", rec, l.Name), err))
	}
	l.ImageError = err.Error()
	d.diagnostics.record(diagLayer(types.SevWarning, cat, offset, rec, l.Name, err.Error(), kind))
	return nil
}

// extractComposite decodes the merged image data section. When the layer
// count was negative, the first channel past the color channels is the
// merged transparency.
func (d *Document) extractComposite(pal color.Palette) (*image.NRGBA, error) {
	h := d.Header
	planes, err := plane.DecodeComposite(d.Image.Compression, d.Image.Data,
		int(h.Width), int(h.Height), int(h.Channels), h.Depth, d.opts.Limits.MaxPlaneBytes)
	if err != nil {
		if plane.Fatal(err) || d.opts.Strict {
			return nil, d.fail(structComposite, &plane.Error{Layer: -1, Offset: d.Image.Offset, Err: err})
		}
		d.diagnostics.record(diagStructure(types.SevWarning, d.Image.Offset, structComposite, err.Error(), kindOf(err)))
		return nil, nil
	}

	req, _ := compose.Required(h.ColorMode)
	set := compose.Planes{}
	for i := range planes {
		switch {
		case i < len(req):
			set[planes[i].ID] = &planes[i]
		case i == len(req) && d.Layers.MergedAlpha:
			planes[i].ID = types.ChannelAlpha
			set[types.ChannelAlpha] = &planes[i]
		}
	}
	img, err := compose.Image(set, compose.Options{
		Mode: h.ColorMode, Width: int(h.Width), Height: int(h.Height), Opacity: 255, Palette: pal,
	})
	if err != nil {
		if d.opts.Strict {
			return nil, d.fail(structComposite, err)
		}
		d.diagnostics.record(diagStructure(types.SevWarning, d.Image.Offset, structComposite, err.Error(), kindOf(err)))
		return nil, nil
	}
	return img, nil
}
