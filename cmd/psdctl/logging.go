package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/joshuapare/psdkit/pkg/types"
)

// configureLogger sets the output format and level of l. Quiet keeps
// errors only; verbose shows every diagnostic including informational ones.
func configureLogger(l *logrus.Logger, format string, verbose, quiet bool) error {
	l.SetOutput(os.Stderr)
	switch format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q (want text or json)", format)
	}

	switch {
	case quiet:
		l.SetLevel(logrus.ErrorLevel)
	case verbose:
		l.SetLevel(logrus.DebugLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}
	return nil
}

// logSink forwards decode diagnostics to a logrus logger.
type logSink struct {
	log *logrus.Logger
}

func (s logSink) Report(d types.Diagnostic) {
	fields := logrus.Fields{
		"structure": d.Structure,
		"category":  d.Category.String(),
		"kind":      d.Kind.String(),
	}
	if d.Offset >= 0 {
		fields["offset"] = d.Offset
	}
	if d.Layer >= 0 {
		fields["layer"] = d.Layer
		if d.LayerName != "" {
			fields["layer_name"] = d.LayerName
		}
	}
	entry := s.log.WithFields(fields)

	switch d.Severity {
	case types.SevCritical, types.SevError:
		entry.Error(d.Issue)
	case types.SevWarning:
		entry.Warn(d.Issue)
	default:
		entry.Debug(d.Issue)
	}
}
