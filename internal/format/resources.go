package format

import (
	"github.com/joshuapare/psdkit/internal/buf"
	"github.com/joshuapare/psdkit/pkg/types"
)

// ParseResources reads the image resources section. Each block is
//
//	4  '8' 'B' 'I' 'M'
//	2  resource id
//	n  Pascal name, padded to an even size
//	4  data length
//	n  data, padded to an even size
//
// Blocks are retained opaquely in file order.
func ParseResources(c *buf.Cursor) ([]types.Resource, error) {
	n, err := c.U32()
	if err != nil {
		return nil, within("image resources", err)
	}
	var out []types.Resource
	err = c.Section(int(n), func(s *buf.Cursor) error {
		for s.Remaining() > 0 {
			res, err := parseResource(s)
			if err != nil {
				return err
			}
			out = append(out, res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func parseResource(s *buf.Cursor) (types.Resource, error) {
	start := s.Pos()
	sig, err := s.FourCC()
	if err != nil {
		return types.Resource{}, within("image resource", err)
	}
	if sig != SigResource {
		return types.Resource{}, decodeErr("image resource", start, ErrSignatureMismatch, "got %q", sig)
	}
	id, err := s.U16()
	if err != nil {
		return types.Resource{}, within("image resource", err)
	}
	name, err := s.PascalString(resourceNameAlign)
	if err != nil {
		return types.Resource{}, within("image resource name", err)
	}
	size, err := s.U32()
	if err != nil {
		return types.Resource{}, within("image resource", err)
	}
	data, err := s.Bytes(int(size))
	if err != nil {
		return types.Resource{}, within("image resource data", err)
	}
	if size%2 == 1 && s.Remaining() > 0 {
		if err := s.Skip(1); err != nil {
			return types.Resource{}, err
		}
	}
	return types.Resource{ID: id, Name: DecodeMacRoman(name), Data: cloneBytes(data)}, nil
}
