package reader

import (
	"errors"
	"fmt"

	"github.com/joshuapare/psdkit/internal/buf"
	"github.com/joshuapare/psdkit/internal/compose"
	"github.com/joshuapare/psdkit/internal/format"
	"github.com/joshuapare/psdkit/internal/hierarchy"
	"github.com/joshuapare/psdkit/internal/plane"
	"github.com/joshuapare/psdkit/pkg/types"
)

// kindOf classifies an internal error.
func kindOf(err error) types.ErrKind {
	var te *types.Error
	switch {
	case errors.As(err, &te):
		return te.Kind
	case errors.Is(err, format.ErrSignatureMismatch):
		return types.ErrKindSignature
	case errors.Is(err, format.ErrUnsupportedVersion):
		return types.ErrKindVersion
	case errors.Is(err, format.ErrInvalidHeader):
		return types.ErrKindHeader
	case errors.Is(err, format.ErrInvalidGeometry):
		return types.ErrKindGeometry
	case errors.Is(err, format.ErrLimit), errors.Is(err, plane.ErrTooLarge):
		return types.ErrKindLimit
	case errors.Is(err, plane.ErrMalformedRLE):
		return types.ErrKindRLE
	case errors.Is(err, hierarchy.ErrUnbalanced):
		return types.ErrKindHierarchy
	case errors.Is(err, compose.ErrIncomplete):
		return types.ErrKindIncomplete
	case errors.Is(err, compose.ErrColorMode):
		return types.ErrKindColorMode
	case errors.Is(err, plane.ErrUnsupportedCompression), errors.Is(err, format.ErrUnsupported):
		return types.ErrKindUnsupported
	case errors.Is(err, buf.ErrOverrun):
		return types.ErrKindOverrun
	case errors.Is(err, buf.ErrTruncated):
		return types.ErrKindTruncated
	default:
		return types.ErrKindCorrupt
	}
}

// offsetOf returns the most precise absolute offset carried by err, or -1.
func offsetOf(err error) int64 {
	var ce *buf.CursorError
	if errors.As(err, &ce) {
		return ce.Offset
	}
	var pe *plane.Error
	if errors.As(err, &pe) {
		return pe.Offset
	}
	var de *format.DecodeError
	if errors.As(err, &de) {
		return de.Offset
	}
	return -1
}

// wrapFormatErr maps an internal decoding error onto the public taxonomy.
// The original error stays reachable through Unwrap.
func wrapFormatErr(structure string, err error) error {
	if err == nil {
		return nil
	}
	var te *types.Error
	if errors.As(err, &te) {
		return err
	}
	kind := kindOf(err)
	return &types.Error{
		Kind:   kind,
		Msg:    fmt.Sprintf("%s: %s", structure, kind),
		Offset: offsetOf(err),
		Err:    err,
	}
}

func wrapIOErr(err error) error {
	return fmt.Errorf("psd: %w", err)
}
