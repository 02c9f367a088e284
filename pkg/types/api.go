package types

import (
	"fmt"
	"strconv"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindUsage       ErrKind = iota // caller misuse (e.g., no input source)
	ErrKindTruncated                  // input ended before a structure was complete
	ErrKindOverrun                    // a read ran past a section's declared length
	ErrKindSignature                  // bad magic ("8BPS", "8BIM")
	ErrKindVersion                    // version other than 1
	ErrKindHeader                     // header field out of range
	ErrKindColorMode                  // color mode not supported for image extraction
	ErrKindGeometry                   // layer bounding box is inverted
	ErrKindRLE                        // PackBits stream does not match row widths
	ErrKindHierarchy                  // section dividers do not nest
	ErrKindIncomplete                 // a mandatory color channel is missing
	ErrKindUnsupported                // valid feature we don't decode (e.g., compression method)
	ErrKindCorrupt                    // any other structural inconsistency
	ErrKindLimit                      // a count or size exceeds the configured Limits
)

var errKindNames = [...]string{
	ErrKindUsage:       "MissingSource",
	ErrKindTruncated:   "TruncatedInput",
	ErrKindOverrun:     "SectionOverrun",
	ErrKindSignature:   "InvalidSignature",
	ErrKindVersion:     "UnsupportedVersion",
	ErrKindHeader:      "InvalidHeader",
	ErrKindColorMode:   "UnsupportedColorMode",
	ErrKindGeometry:    "InvalidLayerGeometry",
	ErrKindRLE:         "MalformedRLE",
	ErrKindHierarchy:   "UnbalancedHierarchy",
	ErrKindIncomplete:  "IncompleteLayer",
	ErrKindUnsupported: "Unsupported",
	ErrKindCorrupt:     "Corrupt",
	ErrKindLimit:       "LimitExceeded",
}

func (k ErrKind) String() string {
	if k >= 0 && int(k) < len(errKindNames) {
		return errKindNames[k]
	}
	return "ErrKind(" + strconv.Itoa(int(k)) + ")"
}

// Fatal reports whether an error of this kind makes the whole document
// untrustworthy. Non-fatal kinds are attached to the affected layer and
// surfaced as diagnostics.
func (k ErrKind) Fatal() bool {
	switch k {
	case ErrKindColorMode, ErrKindIncomplete, ErrKindUnsupported:
		return false
	default:
		return true
	}
}

// Error is a typed error with an optional underlying cause.
// Offset is the absolute file offset where the problem was detected, or -1.
type Error struct {
	Kind   ErrKind
	Msg    string
	Offset int64
	Err    error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Msg
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s (offset %d)", msg, e.Offset)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrMalformedRLE)
// holds for every RLE failure regardless of message or offset.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e != nil && t.Kind == e.Kind
}

// NewError builds an *Error of the given kind.
func NewError(kind ErrKind, offset int64, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Offset: offset, Err: cause}
}

// Sentinels for errors.Is checks.
var (
	ErrMissingSource        = &Error{Kind: ErrKindUsage, Msg: "no input source", Offset: -1}
	ErrTruncatedInput       = &Error{Kind: ErrKindTruncated, Msg: "truncated input", Offset: -1}
	ErrSectionOverrun       = &Error{Kind: ErrKindOverrun, Msg: "section overrun", Offset: -1}
	ErrInvalidSignature     = &Error{Kind: ErrKindSignature, Msg: "invalid signature", Offset: -1}
	ErrUnsupportedVersion   = &Error{Kind: ErrKindVersion, Msg: "unsupported version", Offset: -1}
	ErrInvalidHeader        = &Error{Kind: ErrKindHeader, Msg: "invalid header", Offset: -1}
	ErrUnsupportedColorMode = &Error{Kind: ErrKindColorMode, Msg: "unsupported color mode", Offset: -1}
	ErrInvalidLayerGeometry = &Error{Kind: ErrKindGeometry, Msg: "invalid layer geometry", Offset: -1}
	ErrMalformedRLE         = &Error{Kind: ErrKindRLE, Msg: "malformed RLE data", Offset: -1}
	ErrUnbalancedHierarchy  = &Error{Kind: ErrKindHierarchy, Msg: "unbalanced layer hierarchy", Offset: -1}
	ErrIncompleteLayer      = &Error{Kind: ErrKindIncomplete, Msg: "incomplete layer", Offset: -1}
	ErrUnsupported          = &Error{Kind: ErrKindUnsupported, Msg: "unsupported feature", Offset: -1}
	ErrCorrupt              = &Error{Kind: ErrKindCorrupt, Msg: "corrupt document", Offset: -1}
	ErrLimitExceeded        = &Error{Kind: ErrKindLimit, Msg: "limit exceeded", Offset: -1}
)

// -----------------------------------------------------------------------------
// Header
// -----------------------------------------------------------------------------

// ColorMode is the document color mode as numbered by Photoshop.
type ColorMode uint16

const (
	ColorModeBitmap       ColorMode = 0
	ColorModeGrayscale    ColorMode = 1
	ColorModeIndexed      ColorMode = 2
	ColorModeRGB          ColorMode = 3
	ColorModeCMYK         ColorMode = 4
	ColorModeMultichannel ColorMode = 7
	ColorModeDuotone      ColorMode = 8
	ColorModeLab          ColorMode = 9
)

// String implements the Stringer interface for ColorMode
func (m ColorMode) String() string {
	switch m {
	case ColorModeBitmap:
		return "Bitmap"
	case ColorModeGrayscale:
		return "Grayscale"
	case ColorModeIndexed:
		return "Indexed"
	case ColorModeRGB:
		return "RGB"
	case ColorModeCMYK:
		return "CMYK"
	case ColorModeMultichannel:
		return "Multichannel"
	case ColorModeDuotone:
		return "Duotone"
	case ColorModeLab:
		return "Lab"
	default:
		return fmt.Sprintf("UNKNOWN_MODE_%d", uint16(m))
	}
}

// Known reports whether m is one of the enumerated color modes.
func (m ColorMode) Known() bool {
	switch m {
	case ColorModeBitmap, ColorModeGrayscale, ColorModeIndexed, ColorModeRGB,
		ColorModeCMYK, ColorModeMultichannel, ColorModeDuotone, ColorModeLab:
		return true
	}
	return false
}

// Depth is the number of bits per channel sample.
type Depth uint16

const (
	Depth1  Depth = 1
	Depth8  Depth = 8
	Depth16 Depth = 16
	Depth32 Depth = 32
)

// Valid reports whether d is a bit depth Photoshop writes.
func (d Depth) Valid() bool {
	return d == Depth1 || d == Depth8 || d == Depth16 || d == Depth32
}

// BytesPerRow returns the size of one decoded scanline of width samples.
// 1-bit rows are packed and rounded up to whole bytes.
func (d Depth) BytesPerRow(width int) int {
	return (width*int(d) + 7) / 8
}

// Header is the fixed file preamble plus the color mode data section.
type Header struct {
	Version       uint16    `json:"version"`
	Channels      uint16    `json:"channels"`
	Height        uint32    `json:"height"`
	Width         uint32    `json:"width"`
	Depth         Depth     `json:"depth"`
	ColorMode     ColorMode `json:"color_mode"`
	ColorModeData []byte    `json:"color_mode_data,omitempty"` // palette for Indexed, curves for Duotone
}

// -----------------------------------------------------------------------------
// Image resources
// -----------------------------------------------------------------------------

// Resource is one image resource block, kept opaque.
type Resource struct {
	ID   uint16 `json:"id"`
	Name string `json:"name,omitempty"`
	Data []byte `json:"data,omitempty"`
}

// Well-known resource ids.
const (
	ResResolutionInfo   uint16 = 1005
	ResAlphaNames       uint16 = 1006
	ResCaption          uint16 = 1008
	ResLayerState       uint16 = 1024
	ResLayerGroups      uint16 = 1026
	ResGridGuides       uint16 = 1032
	ResThumbnail        uint16 = 1036
	ResGlobalAngle      uint16 = 1037
	ResICCProfile       uint16 = 1039
	ResSlices           uint16 = 1050
	ResURLList          uint16 = 1054
	ResVersionInfo      uint16 = 1057
	ResEXIF             uint16 = 1058
	ResXMP              uint16 = 1060
	ResLayerSelectionID uint16 = 1069
	ResLayerGroupsOn    uint16 = 1072
	ResLayerComps       uint16 = 1065
)

var resourceNames = map[uint16]string{
	ResResolutionInfo:   "resolution info",
	ResAlphaNames:       "alpha channel names",
	ResCaption:          "caption",
	ResLayerState:       "layer state",
	ResLayerGroups:      "layer group ids",
	ResGridGuides:       "grid and guides",
	ResThumbnail:        "thumbnail",
	ResGlobalAngle:      "global angle",
	ResICCProfile:       "ICC profile",
	ResSlices:           "slices",
	ResURLList:          "URL list",
	ResVersionInfo:      "version info",
	ResEXIF:             "EXIF data",
	ResXMP:              "XMP metadata",
	ResLayerSelectionID: "layer selection ids",
	ResLayerGroupsOn:    "layer groups enabled",
	ResLayerComps:       "layer comps",
}

// ResourceName returns a label for well-known resource ids and "resource N"
// for everything else.
func ResourceName(id uint16) string {
	if name, ok := resourceNames[id]; ok {
		return name
	}
	return "resource " + strconv.Itoa(int(id))
}
