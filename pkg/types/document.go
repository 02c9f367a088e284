package types

import (
	"fmt"
	"image"
)

// Rect is a layer or mask bounding box in document coordinates.
// Bottom and Right are exclusive.
type Rect struct {
	Top    int32 `json:"top"`
	Left   int32 `json:"left"`
	Bottom int32 `json:"bottom"`
	Right  int32 `json:"right"`
}

// Width returns Right-Left.
func (r Rect) Width() int { return int(r.Right) - int(r.Left) }

// Height returns Bottom-Top.
func (r Rect) Height() int { return int(r.Bottom) - int(r.Top) }

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Valid reports whether the rectangle is not inverted.
func (r Rect) Valid() bool { return r.Bottom >= r.Top && r.Right >= r.Left }

// ChannelID identifies a channel plane within a layer.
type ChannelID int16

const (
	ChannelRed          ChannelID = 0
	ChannelGreen        ChannelID = 1
	ChannelBlue         ChannelID = 2
	ChannelAlpha        ChannelID = -1
	ChannelUserMask     ChannelID = -2
	ChannelRealUserMask ChannelID = -3
)

// ChannelGray is the single color channel of grayscale-like modes.
const ChannelGray = ChannelRed

func (c ChannelID) String() string {
	switch c {
	case ChannelRed:
		return "red"
	case ChannelGreen:
		return "green"
	case ChannelBlue:
		return "blue"
	case ChannelAlpha:
		return "alpha"
	case ChannelUserMask:
		return "user mask"
	case ChannelRealUserMask:
		return "real user mask"
	default:
		return fmt.Sprintf("channel %d", int16(c))
	}
}

// ChannelInfo is one channel descriptor from a layer record. Length counts
// the compression method word plus the compressed payload.
type ChannelInfo struct {
	ID     ChannelID `json:"id"`
	Length uint32    `json:"length"`
}

// BlendMode is a four-character blend key with its readable label.
type BlendMode struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Clipping is the layer clipping flag.
type Clipping uint8

const (
	ClippingBase    Clipping = 0
	ClippingNonBase Clipping = 1
)

func (c Clipping) String() string {
	if c == ClippingBase {
		return "base"
	}
	return "non-base"
}

// LayerFlags is the decoded layer flags byte.
type LayerFlags struct {
	TransparencyProtected bool `json:"transparency_protected"`
	Visible               bool `json:"visible"`
	Obsolete              bool `json:"obsolete"`
	PixelDataIrrelevant   bool `json:"pixel_data_irrelevant"`
}

// MaskFlags is the decoded flags byte of a layer mask.
type MaskFlags struct {
	PositionRelative bool `json:"position_relative"`
	Disabled         bool `json:"disabled"`
	Invert           bool `json:"invert"`
}

// RealMask holds the second mask record present when a layer has both a
// user mask and a vector mask.
type RealMask struct {
	Flags        MaskFlags `json:"flags"`
	DefaultColor uint8     `json:"default_color"`
	Rect         Rect      `json:"rect"`
}

// LayerMask is the optional layer mask sub-record.
type LayerMask struct {
	Rect         Rect      `json:"rect"`
	DefaultColor uint8     `json:"default_color"`
	Flags        MaskFlags `json:"flags"`
	Real         *RealMask `json:"real,omitempty"`
}

// SectionType is the lsct divider type.
type SectionType int32

const (
	SectionOther           SectionType = 0
	SectionOpenFolder      SectionType = 1
	SectionClosedFolder    SectionType = 2
	SectionBoundingDivider SectionType = 3
)

func (s SectionType) String() string {
	switch s {
	case SectionOther:
		return "other"
	case SectionOpenFolder:
		return "open folder"
	case SectionClosedFolder:
		return "closed folder"
	case SectionBoundingDivider:
		return "bounding section divider"
	default:
		return fmt.Sprintf("section type %d", int32(s))
	}
}

// IsFolder reports whether s marks a group's folder record.
func (s SectionType) IsFolder() bool {
	return s == SectionOpenFolder || s == SectionClosedFolder
}

// IsDivider reports whether s marks the hidden bounding record of a group.
func (s SectionType) IsDivider() bool { return s == SectionBoundingDivider }

// SectionDivider is the payload of an lsct or lsdk block.
type SectionDivider struct {
	Type      SectionType `json:"type"`
	BlendMode *BlendMode  `json:"blend_mode,omitempty"`
	SubType   int32       `json:"sub_type,omitempty"`
}

// InfoKind tags the decoded variant of an additional info block.
type InfoKind uint8

const (
	InfoOpaque InfoKind = iota
	InfoUnicodeName
	InfoSection
	InfoLayerID
	InfoFillOpacity
)

func (k InfoKind) String() string {
	switch k {
	case InfoUnicodeName:
		return "unicode name"
	case InfoSection:
		return "section divider"
	case InfoLayerID:
		return "layer id"
	case InfoFillOpacity:
		return "fill opacity"
	default:
		return "opaque"
	}
}

// InfoBlock is one additional layer information block. Only the field
// selected by Kind is meaningful; Raw is kept for opaque blocks.
type InfoBlock struct {
	Signature   string          `json:"signature"`
	Key         string          `json:"key"`
	Kind        InfoKind        `json:"kind"`
	UnicodeName string          `json:"unicode_name,omitempty"`
	Section     *SectionDivider `json:"section,omitempty"`
	LayerID     uint32          `json:"layer_id,omitempty"`
	FillOpacity uint8           `json:"fill_opacity,omitempty"`
	Raw         []byte          `json:"raw,omitempty"`
}

// LayerRecord is a layer as stored, before hierarchy reconstruction.
type LayerRecord struct {
	Name           string        `json:"name"`
	Rect           Rect          `json:"rect"`
	Channels       []ChannelInfo `json:"channels"`
	BlendMode      BlendMode     `json:"blend_mode"`
	Opacity        uint8         `json:"opacity"`
	Clipping       Clipping      `json:"clipping"`
	Flags          LayerFlags    `json:"flags"`
	SectionType    SectionType   `json:"section_type"`
	Mask           *LayerMask    `json:"mask,omitempty"`
	BlendingRanges []byte        `json:"blending_ranges,omitempty"`
	LayerID        uint32        `json:"layer_id,omitempty"`
	Info           []InfoBlock   `json:"info,omitempty"`
}

// FindInfo returns the first info block with the given key.
func (r *LayerRecord) FindInfo(key string) (InfoBlock, bool) {
	for _, b := range r.Info {
		if b.Key == key {
			return b, true
		}
	}
	return InfoBlock{}, false
}

// IsFolder reports whether the record is a group's folder record.
func (r *LayerRecord) IsFolder() bool { return r.SectionType.IsFolder() }

// RootParent is the Parent value of top-level layers.
const RootParent = -1

// Layer is a reconstructed tree node. Parent and Children are indices into
// ExtractedDocument.Layers.
type Layer struct {
	LayerRecord
	Index      int          `json:"index"`
	Parent     int          `json:"parent"`
	Children   []int        `json:"children,omitempty"`
	Image      *image.NRGBA `json:"image,omitempty"`
	ImageError string       `json:"image_error,omitempty"`
}

// ExtractedDocument is the fully decoded document.
//
// Layers, Roots and every Children slice are in file storage order, which
// runs bottom-to-top: index 0 is the lowest layer in the stack. Folder
// bounding records are not included.
type ExtractedDocument struct {
	Header      Header       `json:"header"`
	Resources   []Resource   `json:"resources,omitempty"`
	MergedAlpha bool         `json:"merged_alpha"`
	Layers      []Layer      `json:"layers,omitempty"`
	Roots       []int        `json:"roots,omitempty"`
	Composite   *image.NRGBA `json:"composite,omitempty"`
}

// Layer returns the layer at index i, or nil when i is out of range.
func (d *ExtractedDocument) Layer(i int) *Layer {
	if i < 0 || i >= len(d.Layers) {
		return nil
	}
	return &d.Layers[i]
}
