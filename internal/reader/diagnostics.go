package reader

import (
	"sync"
	"time"

	"github.com/joshuapare/psdkit/pkg/types"
)

// diagnosticCollector accumulates diagnostics during a decode. It is nil
// when neither a report nor a sink was requested, and every method is a
// no-op on a nil receiver.
type diagnosticCollector struct {
	mu     sync.Mutex
	report *types.DiagnosticReport
	sink   types.DiagnosticSink
	start  time.Time
}

func newDiagnosticCollector(collect bool, sink types.DiagnosticSink, size int64) *diagnosticCollector {
	if !collect && sink == nil {
		return nil
	}
	dc := &diagnosticCollector{sink: sink, start: time.Now()}
	if collect {
		dc.report = types.NewDiagnosticReport()
		dc.report.FileSize = size
	}
	return dc
}

// record adds a diagnostic and forwards it to the sink.
func (dc *diagnosticCollector) record(d types.Diagnostic) {
	if dc == nil {
		return
	}
	dc.mu.Lock()
	defer dc.mu.Unlock()
	if dc.report != nil {
		dc.report.Add(d)
	}
	if dc.sink != nil {
		dc.sink.Report(d)
	}
}

// getReport finalizes and returns the report, or nil when not collecting.
func (dc *diagnosticCollector) getReport() *types.DiagnosticReport {
	if dc == nil || dc.report == nil {
		return nil
	}
	dc.mu.Lock()
	defer dc.mu.Unlock()
	dc.report.ScanTime = time.Since(dc.start)
	dc.report.Finalize()
	return dc.report
}

func diagStructure(sev types.Severity, offset int64, structure, issue string, kind types.ErrKind) types.Diagnostic {
	return types.Diagnostic{
		Severity:  sev,
		Category:  types.DiagStructure,
		Offset:    offset,
		Structure: structure,
		Layer:     -1,
		Issue:     issue,
		Kind:      kind,
	}
}

func diagLayer(sev types.Severity, cat types.DiagCategory, offset int64, layer int, name, issue string, kind types.ErrKind) types.Diagnostic {
	return types.Diagnostic{
		Severity:  sev,
		Category:  cat,
		Offset:    offset,
		Structure: "LAYER",
		Layer:     layer,
		LayerName: name,
		Issue:     issue,
		Kind:      kind,
	}
}
