package format

import (
	"fmt"

	"github.com/joshuapare/psdkit/internal/buf"
	"github.com/joshuapare/psdkit/pkg/types"
)

// ParseInfoBlocks reads additional info blocks until fewer than a block
// header's worth of bytes remain. align is the payload padding: 2 inside
// layer records, 4 for the global blocks after the layer mask info.
//
//	4  '8' 'B' 'I' 'M' or '8' 'B' '6' '4'
//	4  key
//	4  payload length
//	n  payload
func ParseInfoBlocks(s *buf.Cursor, align int) ([]types.InfoBlock, error) {
	return parseInfoBlocks(s, align, nil)
}

// nestedFunc lets a caller consume a payload itself. Returning true keeps
// the block with its key but without payload bytes.
type nestedFunc func(key string, payload *buf.Cursor) (bool, error)

func parseInfoBlocks(s *buf.Cursor, align int, nested nestedFunc) ([]types.InfoBlock, error) {
	var out []types.InfoBlock
	for s.Remaining() >= infoBlockHeaderSize {
		start := s.Pos()
		sig, err := s.FourCC()
		if err != nil {
			return nil, within("info block", err)
		}
		if sig != SigResource && sig != SigResource64 {
			return nil, decodeErr("info block", start, ErrSignatureMismatch, "got %q", sig)
		}
		key, err := s.FourCC()
		if err != nil {
			return nil, within("info block", err)
		}
		size, err := s.U32()
		if err != nil {
			return nil, within("info block "+key, err)
		}
		payload, err := s.Sub(int(size))
		if err != nil {
			return nil, within("info block "+key, err)
		}
		if pad := buf.PadTo(int(size), align) - int(size); pad > 0 {
			// Writers disagree on padding; never let it run past the bound.
			if err := s.Skip(min(pad, s.Remaining())); err != nil {
				return nil, err
			}
		}
		if nested != nil {
			handled, err := nested(key, payload)
			if err != nil {
				return nil, err
			}
			if handled {
				out = append(out, types.InfoBlock{Signature: sig, Key: key, Kind: types.InfoOpaque})
				continue
			}
		}
		block, err := DecodeInfoBlock(sig, key, payload)
		if err != nil {
			return nil, within("info block "+key, err)
		}
		out = append(out, block)
	}
	return out, nil
}

// DecodeInfoBlock decodes the payload of a recognized key. Anything else is
// kept as opaque bytes.
func DecodeInfoBlock(sig, key string, p *buf.Cursor) (types.InfoBlock, error) {
	b := types.InfoBlock{Signature: sig, Key: key}
	switch key {
	case KeyUnicodeName:
		n, err := p.U32()
		if err != nil {
			return b, err
		}
		text, err := p.Bytes(int(n) * 2)
		if err != nil {
			return b, err
		}
		name, err := DecodeUTF16BE(text)
		if err != nil {
			return b, fmt.Errorf("unicode name: %w", err)
		}
		b.Kind = types.InfoUnicodeName
		b.UnicodeName = name
	case KeySection, KeyNestedSection:
		sec, err := decodeSection(p)
		if err != nil {
			return b, err
		}
		b.Kind = types.InfoSection
		b.Section = sec
	case KeyLayerID:
		id, err := p.U32()
		if err != nil {
			return b, err
		}
		b.Kind = types.InfoLayerID
		b.LayerID = id
	case KeyFillOpacity:
		v, err := p.U8()
		if err != nil {
			return b, err
		}
		b.Kind = types.InfoFillOpacity
		b.FillOpacity = v
	default:
		b.Kind = types.InfoOpaque
		b.Raw = cloneBytes(p.Rest())
	}
	return b, nil
}

// decodeSection reads an lsct/lsdk payload: the divider type, then an
// optional blend signature and key, then an optional sub type.
func decodeSection(p *buf.Cursor) (*types.SectionDivider, error) {
	t, err := p.I32()
	if err != nil {
		return nil, err
	}
	sec := &types.SectionDivider{Type: types.SectionType(t)}
	if p.Remaining() < 8 {
		return sec, nil
	}
	start := p.Pos()
	sig, err := p.FourCC()
	if err != nil {
		return nil, err
	}
	if sig != SigResource {
		return nil, decodeErr("section divider", start, ErrSignatureMismatch, "got %q", sig)
	}
	key, err := p.FourCC()
	if err != nil {
		return nil, err
	}
	mode := BlendModeFor(key)
	sec.BlendMode = &mode
	if p.Remaining() >= 4 {
		sub, err := p.I32()
		if err != nil {
			return nil, err
		}
		sec.SubType = sub
	}
	return sec, nil
}
