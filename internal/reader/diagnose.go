package reader

import (
	"github.com/joshuapare/psdkit/pkg/types"
)

// Diagnose parses and extracts data, collecting every issue instead of
// stopping at the first one it can tolerate. A fatal error ends the scan
// and appears in the report as a critical diagnostic; the report is
// returned either way. Strict is ignored so that per-layer problems are
// all reported.
func Diagnose(data []byte, opts types.Options) (*types.DiagnosticReport, error) {
	if data == nil {
		return nil, types.ErrMissingSource
	}
	opts.Strict = false
	opts.CollectDiagnostics = true
	opts.Composite = true
	opts = opts.Normalize()

	d := &Document{
		buf:         data,
		opts:        opts,
		diagnostics: newDiagnosticCollector(true, opts.Sink, int64(len(data))),
	}
	if err := d.parse(); err == nil {
		_, _ = d.Extract()
	}
	return d.diagnostics.getReport(), nil
}
