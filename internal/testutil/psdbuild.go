package testutil

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/klauspost/compress/zlib"
)

// Doc describes a synthetic PSD document. Zero values take sensible
// defaults: 8-bit RGB, three channels, a raw all-zero composite.
//
// Layers are listed in storage order, bottom layer first, exactly as they
// are written.
//
// Example:
//
//	data := testutil.Doc{
//	    Width: 4, Height: 4,
//	    Layers: testutil.Group("g", true,
//	        testutil.Solid("a", 0, 0, 2, 2, 255, 0, 0, 255),
//	    ),
//	}.Build()
type Doc struct {
	Width, Height int
	Depth         uint16 // default 8
	Mode          uint16 // default 3 (RGB); set ModeSet to write 0 (Bitmap)
	ModeSet       bool
	Channels      uint16 // default 3
	Version       uint16 // default 1
	Signature     string // default "8BPS"

	ColorModeData []byte
	Resources     []Resource
	Layers        []Layer

	// MergedAlpha writes the layer count negated.
	MergedAlpha bool
	// InLr16 moves the layer info into a global Lr16 block and leaves the
	// primary layer info empty, as Photoshop does for 16-bit documents.
	InLr16 bool
	// GlobalMask writes a global layer mask info record.
	GlobalMask bool
	// GlobalBlocks are extra global additional info blocks.
	GlobalBlocks []Block

	// Composite holds raw planar samples per channel; nil writes zeros.
	Composite            [][]byte
	CompositeCompression uint16
	// NoComposite ends the file after the layer and mask section.
	NoComposite bool
}

// Resource is an image resource block.
type Resource struct {
	ID   uint16
	Name string
	Data []byte
}

// Block is an additional info block written verbatim.
type Block struct {
	Signature string // default "8BIM"
	Key       string
	Data      []byte
}

// Mask is a layer mask sub-record.
type Mask struct {
	Top, Left, Bottom, Right int32
	DefaultColor             uint8
	Flags                    uint8
	Real                     bool
}

// Channel is one channel plane. Samples holds the decoded bytes; Payload,
// when set, is written verbatim after the compression word instead.
type Channel struct {
	ID          int16
	Compression uint16
	Samples     []byte
	Payload     []byte
	// Length overrides the declared descriptor length when non-zero.
	Length uint32
}

// Layer is one layer record plus its channel planes.
type Layer struct {
	Name                     string
	UnicodeName              string
	Top, Left, Bottom, Right int32
	Blend                    string // default "norm"
	Opacity                  uint8
	Clipping                 uint8
	Flags                    uint8
	Section                  *int32
	SectionBlend             string
	LayerID                  uint32
	Mask                     *Mask
	BlendingRanges           []byte
	Channels                 []Channel
	Extra                    []Block
	// Signature overrides the blend mode signature ("8BIM").
	Signature string
}

// Flag bits of Layer.Flags.
const (
	FlagTransparencyProtected uint8 = 1 << 0
	FlagHidden                uint8 = 1 << 1
	FlagObsolete              uint8 = 1 << 2
	FlagBit4Valid             uint8 = 1 << 3
	FlagPixelDataIrrelevant   uint8 = 1 << 4
)

// Section types for Layer.Section.
const (
	SectionOther    int32 = 0
	SectionOpen     int32 = 1
	SectionClosed   int32 = 2
	SectionBounding int32 = 3
)

// BoundingDividerName is the name Photoshop gives a group's hidden end record.
const BoundingDividerName = "</Layer group>"

// Section returns a pointer to t for Layer.Section.
func Section(t int32) *int32 { return &t }

// Solid returns an RGBA layer filled with one color, all planes raw.
func Solid(name string, top, left, bottom, right int32, r, g, b, a uint8) Layer {
	n := int(bottom-top) * int(right-left)
	return Layer{
		Name: name, Top: top, Left: left, Bottom: bottom, Right: right,
		Opacity: 255,
		Channels: []Channel{
			{ID: -1, Samples: bytes.Repeat([]byte{a}, n)},
			{ID: 0, Samples: bytes.Repeat([]byte{r}, n)},
			{ID: 1, Samples: bytes.Repeat([]byte{g}, n)},
			{ID: 2, Samples: bytes.Repeat([]byte{b}, n)},
		},
	}
}

// Empty returns a layer with an empty bounding box and empty RGBA planes.
func Empty(name string) Layer {
	return Layer{
		Name: name, Opacity: 255,
		Channels: []Channel{{ID: -1}, {ID: 0}, {ID: 1}, {ID: 2}},
	}
}

// Group wraps children in the records Photoshop writes around a folder:
// the bounding divider first, then the children, then the folder record
// that carries the group's name and attributes.
func Group(name string, open bool, children ...Layer) []Layer {
	t := SectionClosed
	if open {
		t = SectionOpen
	}
	out := make([]Layer, 0, len(children)+2)
	divider := Empty(BoundingDividerName)
	divider.Section = Section(SectionBounding)
	out = append(out, divider)
	out = append(out, children...)
	folder := Empty(name)
	folder.Section = Section(t)
	folder.Flags = FlagBit4Valid | FlagPixelDataIrrelevant
	out = append(out, folder)
	return out
}

// Flatten joins layer lists, for building stacks from Group results.
func Flatten(lists ...[]Layer) []Layer {
	var out []Layer
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}

// Build encodes the document.
func (d Doc) Build() []byte {
	d.defaults()
	var w writer

	// header
	w.str(d.Signature)
	w.u16(d.Version)
	w.raw(make([]byte, 6))
	w.u16(d.Channels)
	w.u32(uint32(d.Height))
	w.u32(uint32(d.Width))
	w.u16(d.Depth)
	w.u16(d.Mode)

	// color mode data
	w.u32(uint32(len(d.ColorModeData)))
	w.raw(d.ColorModeData)

	// image resources
	w.section(func(s *writer) {
		for _, r := range d.Resources {
			s.str("8BIM")
			s.u16(r.ID)
			s.pascal(r.Name, 2)
			s.u32(uint32(len(r.Data)))
			s.raw(r.Data)
			if len(r.Data)%2 == 1 {
				s.u8(0)
			}
		}
	})

	// layer and mask info
	w.section(func(s *writer) {
		info := d.layerInfo()
		if d.InLr16 {
			s.u32(0)
		} else {
			s.u32(uint32(len(info)))
			s.raw(info)
		}
		if d.GlobalMask {
			s.u32(16)
			s.u16(0)
			s.u16(0xFFFF)
			s.u16(0)
			s.u16(0)
			s.u16(0)
			s.u16(50)
			s.u8(128)
			s.raw(make([]byte, 3))
		} else {
			s.u32(0)
		}
		if d.InLr16 {
			s.block(Block{Key: "Lr16", Data: info}, 4)
		}
		for _, b := range d.GlobalBlocks {
			s.block(b, 4)
		}
	})

	if !d.NoComposite {
		d.writeComposite(&w)
	}
	return w.b.Bytes()
}

func (d *Doc) defaults() {
	if d.Depth == 0 {
		d.Depth = 8
	}
	if d.Mode == 0 && !d.ModeSet {
		d.Mode = 3
	}
	if d.Channels == 0 {
		d.Channels = 3
	}
	if d.Version == 0 {
		d.Version = 1
	}
	if d.Signature == "" {
		d.Signature = "8BPS"
	}
}

func (d *Doc) bytesPerRow(width int) int {
	return (width*int(d.Depth) + 7) / 8
}

func (d *Doc) layerInfo() []byte {
	if len(d.Layers) == 0 && !d.MergedAlpha {
		return nil
	}
	var s writer
	count := int16(len(d.Layers))
	if d.MergedAlpha {
		count = -count
	}
	s.u16(uint16(count))

	payloads := make([][][]byte, len(d.Layers))
	for i, l := range d.Layers {
		width := int(l.Right - l.Left)
		height := int(l.Bottom - l.Top)
		payloads[i] = make([][]byte, len(l.Channels))
		for j, ch := range l.Channels {
			payloads[i][j] = d.encodeChannel(ch, width, height)
		}
		s.record(l, payloads[i])
	}
	for i, l := range d.Layers {
		for j, ch := range l.Channels {
			if ch.Length == 1 {
				s.u8(0)
				continue
			}
			s.u16(ch.Compression)
			s.raw(payloads[i][j])
		}
	}
	for s.b.Len()%4 != 0 {
		s.u8(0)
	}
	return s.b.Bytes()
}

func (d *Doc) encodeChannel(ch Channel, width, height int) []byte {
	if ch.Payload != nil {
		return ch.Payload
	}
	rowBytes := d.bytesPerRow(width)
	samples := ch.Samples
	if samples == nil {
		samples = make([]byte, rowBytes*height)
	}
	return Encode(ch.Compression, samples, width, height, int(d.Depth))
}

func (d *Doc) writeComposite(w *writer) {
	rowBytes := d.bytesPerRow(d.Width)
	planes := make([][]byte, d.Channels)
	for i := range planes {
		if i < len(d.Composite) && d.Composite[i] != nil {
			planes[i] = d.Composite[i]
		} else {
			planes[i] = make([]byte, rowBytes*d.Height)
		}
	}
	w.u16(d.CompositeCompression)
	switch d.CompositeCompression {
	case 1:
		var counts, data writer
		for _, p := range planes {
			for y := 0; y < d.Height; y++ {
				row := PackBits(p[y*rowBytes : (y+1)*rowBytes])
				counts.u16(uint16(len(row)))
				data.raw(row)
			}
		}
		w.raw(counts.b.Bytes())
		w.raw(data.b.Bytes())
	case 2:
		w.raw(Deflate(bytes.Join(planes, nil)))
	default:
		for _, p := range planes {
			w.raw(p)
		}
	}
}

// Encode compresses decoded samples with the given method.
func Encode(method uint16, samples []byte, width, height, depth int) []byte {
	rowBytes := (width*depth + 7) / 8
	switch method {
	case 1:
		return EncodeRLE(samples, height, rowBytes)
	case 2:
		return Deflate(samples)
	case 3:
		return Deflate(Predict(samples, width, height, depth))
	default:
		return samples
	}
}

// EncodeRLE writes the per-row byte counts followed by each PackBits row.
func EncodeRLE(samples []byte, rows, rowBytes int) []byte {
	var counts, data writer
	for y := 0; y < rows; y++ {
		row := PackBits(samples[y*rowBytes : (y+1)*rowBytes])
		counts.u16(uint16(len(row)))
		data.raw(row)
	}
	return append(counts.b.Bytes(), data.b.Bytes()...)
}

// PackBits compresses one row. Runs of three or more equal bytes become
// repeat runs; everything else is emitted as literals.
func PackBits(row []byte) []byte {
	var out []byte
	i := 0
	for i < len(row) {
		run := 1
		for i+run < len(row) && run < 128 && row[i+run] == row[i] {
			run++
		}
		if run >= 3 {
			out = append(out, byte(int8(1-run)), row[i])
			i += run
			continue
		}
		start := i
		for i < len(row) && i-start < 128 {
			if i+2 < len(row) && row[i] == row[i+1] && row[i] == row[i+2] {
				break
			}
			i++
		}
		out = append(out, byte(i-start-1))
		out = append(out, row[start:i]...)
	}
	return out
}

// Deflate compresses b as a zlib stream.
func Deflate(b []byte) []byte {
	var out bytes.Buffer
	zw := zlib.NewWriter(&out)
	_, _ = zw.Write(b)
	_ = zw.Close()
	return out.Bytes()
}

// Predict applies Photoshop's ZIP prediction: per row byte deltas for 8-bit
// samples, u16 deltas for 16-bit, and for 32-bit the row is first split into
// byte planes (all high bytes, then the next, ...) and byte deltas applied.
func Predict(samples []byte, width, height, depth int) []byte {
	out := make([]byte, len(samples))
	copy(out, samples)
	switch depth {
	case 16:
		for y := 0; y < height; y++ {
			row := out[y*width*2 : (y+1)*width*2]
			for x := width - 1; x > 0; x-- {
				cur := binary.BigEndian.Uint16(row[x*2:])
				prev := binary.BigEndian.Uint16(row[(x-1)*2:])
				binary.BigEndian.PutUint16(row[x*2:], cur-prev)
			}
		}
	case 32:
		rowBytes := width * 4
		for y := 0; y < height; y++ {
			src := samples[y*rowBytes : (y+1)*rowBytes]
			row := out[y*rowBytes : (y+1)*rowBytes]
			for x := 0; x < width; x++ {
				for k := 0; k < 4; k++ {
					row[k*width+x] = src[x*4+k]
				}
			}
			for i := rowBytes - 1; i > 0; i-- {
				row[i] -= row[i-1]
			}
		}
	default:
		for y := 0; y < height; y++ {
			row := out[y*width : (y+1)*width]
			for x := width - 1; x > 0; x-- {
				row[x] -= row[x-1]
			}
		}
	}
	return out
}

// WriteFile writes data under t.TempDir() and returns the path.
func WriteFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

type writer struct {
	b bytes.Buffer
}

func (w *writer) u8(v uint8)   { w.b.WriteByte(v) }
func (w *writer) raw(b []byte) { w.b.Write(b) }
func (w *writer) str(s string) { w.b.WriteString(s) }
func (w *writer) u16(v uint16) { w.b.Write(binary.BigEndian.AppendUint16(nil, v)) }
func (w *writer) u32(v uint32) { w.b.Write(binary.BigEndian.AppendUint32(nil, v)) }
func (w *writer) i32(v int32)  { w.u32(uint32(v)) }
func (w *writer) i16(v int16)  { w.u16(uint16(v)) }

// section writes a u32 length followed by whatever body writes.
func (w *writer) section(body func(*writer)) {
	var s writer
	body(&s)
	w.u32(uint32(s.b.Len()))
	w.raw(s.b.Bytes())
}

func (w *writer) pascal(s string, pad int) {
	w.u8(uint8(len(s)))
	w.str(s)
	for n := len(s) + 1; n%pad != 0; n++ {
		w.u8(0)
	}
}

func (w *writer) block(b Block, align int) {
	sig := b.Signature
	if sig == "" {
		sig = "8BIM"
	}
	w.str(sig)
	w.str(b.Key)
	w.u32(uint32(len(b.Data)))
	w.raw(b.Data)
	for n := len(b.Data); n%align != 0; n++ {
		w.u8(0)
	}
}

func (w *writer) record(l Layer, payloads [][]byte) {
	w.i32(l.Top)
	w.i32(l.Left)
	w.i32(l.Bottom)
	w.i32(l.Right)
	w.u16(uint16(len(l.Channels)))
	for j, ch := range l.Channels {
		w.i16(ch.ID)
		length := uint32(len(payloads[j]) + 2)
		if ch.Length != 0 {
			length = ch.Length
		}
		w.u32(length)
	}
	sig := l.Signature
	if sig == "" {
		sig = "8BIM"
	}
	w.str(sig)
	blend := l.Blend
	if blend == "" {
		blend = "norm"
	}
	w.str(blend)
	w.u8(l.Opacity)
	w.u8(l.Clipping)
	w.u8(l.Flags)
	w.u8(0)

	w.section(func(x *writer) {
		if m := l.Mask; m != nil {
			x.section(func(mw *writer) {
				mw.i32(m.Top)
				mw.i32(m.Left)
				mw.i32(m.Bottom)
				mw.i32(m.Right)
				mw.u8(m.DefaultColor)
				mw.u8(m.Flags)
				if m.Real {
					mw.u8(m.Flags)
					mw.u8(m.DefaultColor)
					mw.i32(m.Top)
					mw.i32(m.Left)
					mw.i32(m.Bottom)
					mw.i32(m.Right)
				} else {
					mw.raw([]byte{0, 0})
				}
			})
		} else {
			x.u32(0)
		}
		x.u32(uint32(len(l.BlendingRanges)))
		x.raw(l.BlendingRanges)
		x.pascal(l.Name, 4)

		if l.UnicodeName != "" {
			units := utf16.Encode([]rune(l.UnicodeName))
			var p writer
			p.u32(uint32(len(units)))
			for _, u := range units {
				p.u16(u)
			}
			x.block(Block{Key: "luni", Data: p.b.Bytes()}, 2)
		}
		if l.Section != nil {
			var p writer
			p.i32(*l.Section)
			if l.SectionBlend != "" {
				p.str("8BIM")
				p.str(l.SectionBlend)
			}
			x.block(Block{Key: "lsct", Data: p.b.Bytes()}, 2)
		}
		if l.LayerID != 0 {
			var p writer
			p.u32(l.LayerID)
			x.block(Block{Key: "lyid", Data: p.b.Bytes()}, 2)
		}
		for _, b := range l.Extra {
			x.block(b, 2)
		}
	})
}
