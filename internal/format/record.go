package format

import (
	"github.com/joshuapare/psdkit/internal/buf"
	"github.com/joshuapare/psdkit/pkg/types"
)

// ParseLayerRecord decodes one layer record. The layout is
//
//	16  top, left, bottom, right (i32)
//	 2  channel count
//	 6  per channel: id (i16), data length (u32)
//	 4  '8' 'B' 'I' 'M'
//	 4  blend mode key
//	 1  opacity
//	 1  clipping
//	 1  flags
//	 1  filler
//	 4  extra data length, then within that bound:
//	      layer mask data (u32 length + body)
//	      blending ranges (u32 length + body)
//	      Pascal name padded to a multiple of 4
//	      additional info blocks
func ParseLayerRecord(c *buf.Cursor, lim types.Limits) (types.LayerRecord, error) {
	var rec types.LayerRecord
	start := c.Pos()

	var box [4]int32
	for i := range box {
		v, err := c.I32()
		if err != nil {
			return rec, err
		}
		box[i] = v
	}
	rec.Rect = types.Rect{Top: box[0], Left: box[1], Bottom: box[2], Right: box[3]}
	if !rec.Rect.Valid() {
		return rec, decodeErr("layer record", start, ErrInvalidGeometry,
			"top=%d left=%d bottom=%d right=%d", box[0], box[1], box[2], box[3])
	}
	if rec.Rect.Width() > lim.MaxDimension*2 || rec.Rect.Height() > lim.MaxDimension*2 {
		return rec, decodeErr("layer record", start, ErrLimit,
			"bounding box %dx%d", rec.Rect.Width(), rec.Rect.Height())
	}

	countAt := c.Pos()
	n, err := c.U16()
	if err != nil {
		return rec, err
	}
	if int(n) > lim.MaxChannels {
		return rec, decodeErr("layer record", countAt, ErrLimit, "%d channels", n)
	}
	if n > 0 {
		rec.Channels = make([]types.ChannelInfo, n)
	}
	for i := range rec.Channels {
		id, err := c.I16()
		if err != nil {
			return rec, err
		}
		size, err := c.U32()
		if err != nil {
			return rec, err
		}
		rec.Channels[i] = types.ChannelInfo{ID: types.ChannelID(id), Length: size}
	}

	sigAt := c.Pos()
	sig, err := c.FourCC()
	if err != nil {
		return rec, err
	}
	if sig != SigResource {
		return rec, decodeErr("layer record", sigAt, ErrSignatureMismatch, "blend signature %q", sig)
	}
	key, err := c.FourCC()
	if err != nil {
		return rec, err
	}
	rec.BlendMode = BlendModeFor(key)

	fields, err := c.Bytes(4)
	if err != nil {
		return rec, err
	}
	rec.Opacity = fields[0]
	rec.Clipping = types.Clipping(fields[1])
	rec.Flags = decodeLayerFlags(fields[2])

	extra, err := c.U32()
	if err != nil {
		return rec, err
	}
	err = c.Section(int(extra), func(s *buf.Cursor) error {
		return parseExtraData(s, &rec)
	})
	if err != nil {
		return rec, err
	}

	applyInfo(&rec)
	return rec, nil
}

func decodeLayerFlags(f byte) types.LayerFlags {
	return types.LayerFlags{
		TransparencyProtected: f&flagTransparencyProtected != 0,
		Visible:               f&flagHidden == 0,
		Obsolete:              f&flagObsolete != 0,
		PixelDataIrrelevant:   f&flagBit4Valid != 0 && f&flagPixelDataIrrelevant != 0,
	}
}

func parseExtraData(s *buf.Cursor, rec *types.LayerRecord) error {
	n, err := s.U32()
	if err != nil {
		return within("layer mask", err)
	}
	if n > 0 {
		err = s.Section(int(n), func(m *buf.Cursor) error {
			mask, err := parseLayerMask(m)
			rec.Mask = mask
			return err
		})
		if err != nil {
			return within("layer mask", err)
		}
	}

	n, err = s.U32()
	if err != nil {
		return within("blending ranges", err)
	}
	ranges, err := s.Bytes(int(n))
	if err != nil {
		return within("blending ranges", err)
	}
	rec.BlendingRanges = cloneBytes(ranges)

	name, err := s.PascalString(layerNameAlign)
	if err != nil {
		return within("layer name", err)
	}
	rec.Name = DecodeMacRoman(name)

	info, err := ParseInfoBlocks(s, layerBlockAlign)
	if err != nil {
		return err
	}
	rec.Info = info
	return nil
}

// parseLayerMask reads the mask sub-record. A 20-byte record carries only
// the user mask; longer ones append the real user mask used alongside a
// vector mask.
func parseLayerMask(m *buf.Cursor) (*types.LayerMask, error) {
	rect, err := readRect(m)
	if err != nil {
		return nil, err
	}
	def, err := m.U8()
	if err != nil {
		return nil, err
	}
	flags, err := m.U8()
	if err != nil {
		return nil, err
	}
	mask := &types.LayerMask{Rect: rect, DefaultColor: def, Flags: decodeMaskFlags(flags)}

	if flags&maskFlagHasParameters != 0 && m.Remaining() > 0 {
		if err := skipMaskParameters(m); err != nil {
			return mask, err
		}
	}
	// 18 = real flags + real background + rect
	if m.Remaining() >= 18 {
		rf, err := m.U8()
		if err != nil {
			return mask, err
		}
		rbg, err := m.U8()
		if err != nil {
			return mask, err
		}
		rr, err := readRect(m)
		if err != nil {
			return mask, err
		}
		mask.Real = &types.RealMask{Flags: decodeMaskFlags(rf), DefaultColor: rbg, Rect: rr}
	}
	return mask, nil
}

// skipMaskParameters consumes the optional density/feather block: a bit
// set followed by a u8 or f64 per present parameter.
func skipMaskParameters(m *buf.Cursor) error {
	present, err := m.U8()
	if err != nil {
		return err
	}
	sizes := [4]int{1, 8, 1, 8} // user density, user feather, vector density, vector feather
	for bit, size := range sizes {
		if present&(1<<bit) != 0 {
			if err := m.Skip(size); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeMaskFlags(f byte) types.MaskFlags {
	return types.MaskFlags{
		PositionRelative: f&maskFlagPositionRelative != 0,
		Disabled:         f&maskFlagDisabled != 0,
		Invert:           f&maskFlagInvert != 0,
	}
}

func readRect(c *buf.Cursor) (types.Rect, error) {
	var v [4]int32
	for i := range v {
		x, err := c.I32()
		if err != nil {
			return types.Rect{}, err
		}
		v[i] = x
	}
	return types.Rect{Top: v[0], Left: v[1], Bottom: v[2], Right: v[3]}, nil
}

// applyInfo lifts recognized info blocks onto the record. A Unicode name
// supersedes the Pascal name; lsct takes precedence over lsdk.
func applyInfo(rec *types.LayerRecord) {
	var nested *types.SectionDivider
	haveSection := false
	for _, b := range rec.Info {
		switch b.Kind {
		case types.InfoUnicodeName:
			rec.Name = b.UnicodeName
		case types.InfoSection:
			if b.Key == KeySection {
				rec.SectionType = b.Section.Type
				haveSection = true
			} else if nested == nil {
				nested = b.Section
			}
		case types.InfoLayerID:
			rec.LayerID = b.LayerID
		}
	}
	if !haveSection && nested != nil {
		rec.SectionType = nested.Type
	}
}
