package psd

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/joshuapare/psdkit/pkg/types"
)

// snapshotVersion is bumped whenever ExtractedDocument changes shape.
const snapshotVersion = 1

// ErrSnapshotVersion indicates a snapshot written by an incompatible
// version of this package.
var ErrSnapshotVersion = errors.New("psd: unsupported snapshot version")

type snapshot struct {
	Version int
	Doc     *types.ExtractedDocument
}

// WriteSnapshot stores doc, pixels included, as a zstd-compressed gob
// stream. ReadSnapshot restores it without the original file.
func WriteSnapshot(w io.Writer, doc *types.ExtractedDocument) error {
	if doc == nil {
		return types.ErrMissingSource
	}
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("psd: snapshot: %w", err)
	}
	if err := gob.NewEncoder(zw).Encode(snapshot{Version: snapshotVersion, Doc: doc}); err != nil {
		zw.Close()
		return fmt.Errorf("psd: snapshot: %w", err)
	}
	return zw.Close()
}

// ReadSnapshot decodes a stream written by WriteSnapshot.
func ReadSnapshot(r io.Reader) (*types.ExtractedDocument, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("psd: snapshot: %w", err)
	}
	defer zr.Close()

	var s snapshot
	if err := gob.NewDecoder(zr).Decode(&s); err != nil {
		return nil, fmt.Errorf("psd: snapshot: %w", err)
	}
	if s.Version != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotVersion, s.Version)
	}
	if s.Doc == nil {
		return nil, fmt.Errorf("psd: snapshot: empty document")
	}
	return s.Doc, nil
}
