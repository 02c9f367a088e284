// Package format houses low-level decoders for the Adobe Photoshop document
// (PSD, version 1) file format. Each decoder reads one structure from a
// buf.Cursor positioned at its start and leaves the cursor at its end. The
// package knows nothing about hierarchy or pixel composition; higher-level
// packages orchestrate the data in a more ergonomic form.
package format

var (
	// Signature is the four-byte magic at the start of every PSD file.
	// Layout (big-endian):
	//   0x00  '8' 'B' 'P' 'S'
	Signature = []byte{'8', 'B', 'P', 'S'}
)

const (
	// SigResource prefixes image resource blocks, the blend mode field of a
	// layer record, and additional layer info blocks.
	SigResource = "8BIM"

	// SigResource64 is the alternate info block signature Photoshop uses for
	// keys whose length is 8 bytes in PSB files. In PSD files the length is
	// still 4 bytes.
	SigResource64 = "8B64"
)

const (
	// HeaderSize is the fixed size of the file header.
	HeaderSize = 26

	// Version is the only supported file version. Version 2 is PSB.
	Version = 1

	// VersionPSB identifies large document files.
	VersionPSB = 2

	// MinChannels and MaxChannels bound the header channel count.
	MinChannels = 1
	MaxChannels = 56

	// MaxDimension bounds header width and height for version 1 files.
	MaxDimension = 30000

	// infoBlockHeaderSize is signature + key + length.
	infoBlockHeaderSize = 12

	// layerBlockAlign pads additional info payloads inside layer records.
	layerBlockAlign = 2

	// globalBlockAlign pads additional info payloads after the global mask.
	globalBlockAlign = 4

	// resourceNameAlign pads image resource names.
	resourceNameAlign = 2

	// layerNameAlign pads layer record names.
	layerNameAlign = 4

	// PaletteSize is the length of an Indexed mode color table.
	PaletteSize = 768
)

// Additional layer info keys with decoded payloads.
const (
	KeyUnicodeName   = "luni"
	KeySection       = "lsct"
	KeyNestedSection = "lsdk"
	KeyLayerID       = "lyid"
	KeyFillOpacity   = "iOpa"
	KeyLayers16      = "Lr16"
	KeyLayers32      = "Lr32"
	KeyLayers        = "Layr"
)

// Compression methods of channel and image data.
const (
	CompressionRaw     uint16 = 0
	CompressionRLE     uint16 = 1
	CompressionZIP     uint16 = 2
	CompressionZIPPred uint16 = 3
)

// Layer flag bits.
const (
	flagTransparencyProtected = 1 << 0
	flagHidden                = 1 << 1
	flagObsolete              = 1 << 2
	flagBit4Valid             = 1 << 3
	flagPixelDataIrrelevant   = 1 << 4
)

// Layer mask flag bits.
const (
	maskFlagPositionRelative = 1 << 0
	maskFlagDisabled         = 1 << 1
	maskFlagInvert           = 1 << 2
	maskFlagHasParameters    = 1 << 4
)
