package plane

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/joshuapare/psdkit/pkg/types"
)

// Job is one plane to decode.
type Job struct {
	Layer       int // record index in storage order
	Channel     int // descriptor index within the record
	ID          types.ChannelID
	Compression uint16
	Data        []byte
	Width       int
	Height      int
	Depth       types.Depth
	Offset      int64 // absolute offset of the compression word
}

// Result pairs a job's plane with its non-fatal error, if any.
type Result struct {
	Plane Plane
	Err   error
}

// Error attributes a plane failure to its layer, channel and file offset.
type Error struct {
	Layer   int
	Channel types.ChannelID
	Offset  int64
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("layer %d %s channel at offset %d: %v", e.Layer, e.Channel, e.Offset, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Fatal reports whether err leaves the document untrustworthy. Malformed
// RLE and size mismatches mean the declared lengths cannot be relied on;
// an unknown method or a corrupt deflate stream only costs that plane.
func Fatal(err error) bool {
	return errors.Is(err, ErrMalformedRLE) || errors.Is(err, ErrLength) || errors.Is(err, ErrTooLarge)
}

// DecodeAll decodes jobs on up to workers goroutines (runtime.NumCPU() when
// workers <= 0). Results are in job order regardless of completion order.
// The first fatal error stops the remaining work and is returned; other
// failures are left on the job's Result.
func DecodeAll(jobs []Job, workers, limit int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	results := make([]Result, len(jobs))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	for i := range jobs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			j := &jobs[i]
			data, err := Decode(j.Compression, j.Data, j.Width, j.Height, j.Depth, limit)
			if err != nil {
				err = &Error{Layer: j.Layer, Channel: j.ID, Offset: j.Offset, Err: err}
				if Fatal(err) {
					return err
				}
				results[i].Err = err
				return nil
			}
			results[i].Plane = Plane{ID: j.ID, Width: j.Width, Height: j.Height, Depth: j.Depth, Data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
