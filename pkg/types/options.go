package types

import "runtime"

// Options controls how a document is parsed and extracted.
type Options struct {
	// Strict promotes non-fatal problems (unsupported color mode, incomplete
	// layers, unknown compression) to errors.
	Strict bool

	// CollectDiagnostics keeps a DiagnosticReport on the parsed document.
	CollectDiagnostics bool

	// Sink, if set, receives every diagnostic as it is produced.
	Sink DiagnosticSink

	// Workers bounds parallel plane decoding. Zero means runtime.NumCPU().
	Workers int

	// Composite also decodes the merged image data section.
	Composite bool

	// Limits bounds allocations driven by file contents. Zero fields take
	// the DefaultLimits value.
	Limits Limits
}

// DefaultOptions returns tolerant options with default limits.
func DefaultOptions() Options {
	return Options{Limits: DefaultLimits()}
}

// Normalize returns o with zero values replaced by defaults.
func (o Options) Normalize() Options {
	o.Limits = o.Limits.withDefaults()
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return o
}
