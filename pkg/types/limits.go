package types

// ============================================================================
// Photoshop Format Limits
// ============================================================================
// Version 1 documents are bounded by the format itself; these are the values
// Photoshop enforces when it writes a PSD.

const (
	// PSDMaxChannels is the largest channel count a header may declare.
	PSDMaxChannels = 56

	// PSDMaxDimension is the largest width or height of a version 1 document.
	PSDMaxDimension = 30000

	// PSDMaxLayers is a practical ceiling on layer records. The count field
	// is an i16, so nothing larger can be encoded.
	PSDMaxLayers = 1<<15 - 1

	// MaxPlaneBytes1GB bounds one decompressed channel plane. A 30000x30000
	// 8-bit plane is ~860MB.
	MaxPlaneBytes1GB = 1 << 30

	// MaxPlaneBytes64MB is a conservative plane ceiling for services that
	// decode untrusted uploads.
	MaxPlaneBytes64MB = 64 << 20

	// MaxDecodeBytes16GB bounds the sum of all decoded layer planes.
	MaxDecodeBytes16GB int64 = 16 << 30

	// MaxDecodeBytes512MB is the StrictLimits decode budget.
	MaxDecodeBytes512MB int64 = 512 << 20

	// StrictDimension caps width/height in StrictLimits.
	StrictDimension = 8192

	// StrictLayers caps the layer count in StrictLimits.
	StrictLayers = 4096
)

// Limits bounds the resources a single decode may consume. Values come from
// untrusted input, so every allocation sized by the file is checked against
// these first.
type Limits struct {
	// MaxChannels is the maximum number of channels in the header.
	MaxChannels int

	// MaxDimension is the maximum document width or height.
	MaxDimension int

	// MaxLayers is the maximum number of layer records.
	MaxLayers int

	// MaxPlaneBytes is the maximum decompressed size of one channel plane.
	MaxPlaneBytes int

	// MaxDecodeBytes is the maximum decompressed size of all layer planes
	// together. It is checked before any plane is allocated.
	MaxDecodeBytes int64
}

// DefaultLimits returns the format's own bounds.
func DefaultLimits() Limits {
	return Limits{
		MaxChannels:    PSDMaxChannels,
		MaxDimension:   PSDMaxDimension,
		MaxLayers:      PSDMaxLayers,
		MaxPlaneBytes:  MaxPlaneBytes1GB,
		MaxDecodeBytes: MaxDecodeBytes16GB,
	}
}

// StrictLimits returns conservative limits for untrusted input.
func StrictLimits() Limits {
	return Limits{
		MaxChannels:    PSDMaxChannels,
		MaxDimension:   StrictDimension,
		MaxLayers:      StrictLayers,
		MaxPlaneBytes:  MaxPlaneBytes64MB,
		MaxDecodeBytes: MaxDecodeBytes512MB,
	}
}

// withDefaults fills zero fields from DefaultLimits.
func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxChannels <= 0 {
		l.MaxChannels = d.MaxChannels
	}
	if l.MaxDimension <= 0 {
		l.MaxDimension = d.MaxDimension
	}
	if l.MaxLayers <= 0 {
		l.MaxLayers = d.MaxLayers
	}
	if l.MaxPlaneBytes <= 0 {
		l.MaxPlaneBytes = d.MaxPlaneBytes
	}
	if l.MaxDecodeBytes <= 0 {
		l.MaxDecodeBytes = d.MaxDecodeBytes
	}
	return l
}
