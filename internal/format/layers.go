package format

import (
	"fmt"

	"github.com/joshuapare/psdkit/internal/buf"
	"github.com/joshuapare/psdkit/pkg/types"
)

// ChannelData is one channel plane as stored: the compression method and
// the compressed payload. Data aliases the input buffer.
type ChannelData struct {
	ID          types.ChannelID
	Compression uint16
	Data        []byte
	Offset      int64 // absolute offset of the compression word
	Empty       bool  // declared length was too short to hold a method word
}

// LayerInfo is the decoded layer info section: records in storage order
// (bottom-to-top) and, for each record, its channel planes in descriptor
// order.
type LayerInfo struct {
	MergedAlpha bool
	Records     []types.LayerRecord
	Offsets     []int64 // absolute offset of each record
	Channels    [][]ChannelData
}

// GlobalMask is the global layer mask info record.
type GlobalMask struct {
	OverlayColorSpace uint16
	Colors            [4]uint16
	Opacity           uint16 // 0 = transparent, 100 = opaque
	Kind              uint8  // 0 = color selected, 1 = color protected, 128 = per layer
}

// LayerAndMask is the whole layer and mask information section.
type LayerAndMask struct {
	Layers     LayerInfo
	GlobalMask *GlobalMask
	Global     []types.InfoBlock
	// Source names where Layers came from: "layer info", or the key of the
	// global block (Lr16, Lr32) that carried it.
	Source string
}

// ParseLayerAndMask reads the layer and mask information section.
//
//	4  section length
//	4  layer info length, then layer info
//	4  global mask length, then global mask
//	*  global additional info blocks
//
// 16- and 32-bit documents usually leave the layer info empty and carry the
// layers in an Lr16/Lr32 global block instead; that block is decoded in its
// place.
func ParseLayerAndMask(c *buf.Cursor, lim types.Limits) (LayerAndMask, error) {
	var out LayerAndMask
	n, err := c.U32()
	if err != nil {
		return out, within("layer and mask info", err)
	}
	err = c.Section(int(n), func(s *buf.Cursor) error {
		if s.Remaining() == 0 {
			return nil
		}
		size, err := s.U32()
		if err != nil {
			return within("layer info", err)
		}
		out.Source = "layer info"
		err = s.Section(int(size), func(li *buf.Cursor) error {
			info, err := ParseLayerInfo(li, lim)
			out.Layers = info
			return err
		})
		if err != nil {
			return err
		}

		if s.Remaining() >= 4 {
			gm, err := parseGlobalMask(s)
			if err != nil {
				return err
			}
			out.GlobalMask = gm
		}

		blocks, err := parseInfoBlocks(s, globalBlockAlign, func(key string, p *buf.Cursor) (bool, error) {
			if len(out.Layers.Records) > 0 || (key != KeyLayers16 && key != KeyLayers32 && key != KeyLayers) {
				return false, nil
			}
			info, err := ParseLayerInfo(p, lim)
			if err != nil {
				return true, within("global "+key, err)
			}
			out.Layers = info
			out.Source = key
			return true, nil
		})
		if err != nil {
			return within("global info", err)
		}
		out.Global = blocks
		return nil
	})
	if err != nil {
		return out, err
	}

	return out, nil
}

// ParseLayerInfo reads a layer info body: the signed layer count, every
// layer record, then the channel image data of every layer.
func ParseLayerInfo(s *buf.Cursor, lim types.Limits) (LayerInfo, error) {
	var info LayerInfo
	if s.Remaining() == 0 {
		return info, nil
	}
	countAt := s.Pos()
	count, err := s.I16()
	if err != nil {
		return info, within("layer count", err)
	}
	n := int(count)
	if n < 0 {
		// A negative count marks channel 0 of the composite as merged alpha.
		info.MergedAlpha = true
		n = -n
	}
	if n > lim.MaxLayers {
		return info, decodeErr("layer info", countAt, ErrLimit, "%d layers exceed %d", n, lim.MaxLayers)
	}

	info.Records = make([]types.LayerRecord, 0, n)
	info.Offsets = make([]int64, 0, n)
	for i := range n {
		at := s.Pos()
		rec, err := ParseLayerRecord(s, lim)
		if err != nil {
			return info, within(fmt.Sprintf("layer record %d", i), err)
		}
		info.Records = append(info.Records, rec)
		info.Offsets = append(info.Offsets, at)
	}

	info.Channels = make([][]ChannelData, n)
	for i := range info.Records {
		planes, err := sliceChannels(s, &info.Records[i])
		if err != nil {
			return info, within(fmt.Sprintf("channel data of layer %d", i), err)
		}
		info.Channels[i] = planes
	}
	return info, nil
}

func sliceChannels(s *buf.Cursor, rec *types.LayerRecord) ([]ChannelData, error) {
	out := make([]ChannelData, len(rec.Channels))
	for j, ch := range rec.Channels {
		at := s.Pos()
		if ch.Length < 2 {
			if err := s.Skip(int(ch.Length)); err != nil {
				return nil, err
			}
			out[j] = ChannelData{ID: ch.ID, Offset: at, Empty: true}
			continue
		}
		method, err := s.U16()
		if err != nil {
			return nil, err
		}
		data, err := s.Bytes(int(ch.Length) - 2)
		if err != nil {
			return nil, err
		}
		out[j] = ChannelData{ID: ch.ID, Compression: method, Data: data, Offset: at}
	}
	return out, nil
}

func parseGlobalMask(s *buf.Cursor) (*GlobalMask, error) {
	n, err := s.U32()
	if err != nil {
		return nil, within("global layer mask", err)
	}
	if n == 0 {
		return nil, nil
	}
	var gm GlobalMask
	err = s.Section(int(n), func(m *buf.Cursor) error {
		cs, err := m.U16()
		if err != nil {
			return err
		}
		gm.OverlayColorSpace = cs
		for i := range gm.Colors {
			if gm.Colors[i], err = m.U16(); err != nil {
				return err
			}
		}
		if gm.Opacity, err = m.U16(); err != nil {
			return err
		}
		gm.Kind, err = m.U8()
		return err
	})
	if err != nil {
		return nil, within("global layer mask", err)
	}
	return &gm, nil
}
