// Package logger writes psdexplorer's debug log. The terminal belongs to the
// UI, so records go to a dated JSON file and are discarded unless enabled.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joshuapare/psdkit/pkg/types"
)

// L is the process logger. It discards everything until Init enables it.
var L = slog.New(slog.NewTextHandler(io.Discard, nil))

const (
	logPrefix     = "psdexplorer-"
	logSuffix     = ".log"
	retentionDays = 30
)

// Init points L at dir/psdexplorer-YYYY-MM-DD.log, or at io.Discard when
// enabled is false. An empty dir means ~/.psdexplorer/logs.
func Init(enabled bool, dir string) error {
	if !enabled {
		L = slog.New(slog.NewTextHandler(io.Discard, nil))
		return nil
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(home, ".psdexplorer", "logs")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	now := time.Now()
	cleanOldLogs(dir, now)

	name := filepath.Join(dir, logPrefix+now.Format("2006-01-02")+logSuffix)
	f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	L = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return nil
}

// Doc returns a logger whose records carry the document path.
func Doc(path string) *slog.Logger {
	return L.With(slog.String("doc", path))
}

// Loaded records a decoded document: its geometry, layer and folder counts,
// and one debug record per diagnostic. report may be nil.
func Loaded(path string, doc *types.ExtractedDocument, report *types.DiagnosticReport, elapsed time.Duration) {
	log := Doc(path)
	folders := 0
	for i := range doc.Layers {
		if doc.Layers[i].IsFolder() {
			folders++
		}
	}
	log.Info("document loaded",
		slog.Group("header",
			slog.Uint64("width", uint64(doc.Header.Width)),
			slog.Uint64("height", uint64(doc.Header.Height)),
			slog.Int("depth", int(doc.Header.Depth)),
			slog.String("mode", doc.Header.ColorMode.String()),
		),
		slog.Int("layers", len(doc.Layers)),
		slog.Int("folders", folders),
		slog.Duration("elapsed", elapsed),
	)
	if report == nil {
		return
	}
	for _, d := range report.Diagnostics {
		log.Debug(d.Issue,
			slog.String("severity", d.Severity.String()),
			slog.String("structure", d.Structure),
			slog.Int64("offset", d.Offset),
			slog.Int("layer", d.Layer),
			slog.String("layer_name", d.LayerName),
		)
	}
}

// cleanOldLogs removes log files dated more than retentionDays before now.
func cleanOldLogs(dir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		stamp, ok := strings.CutPrefix(e.Name(), logPrefix)
		if !ok {
			continue
		}
		stamp, ok = strings.CutSuffix(stamp, logSuffix)
		if !ok {
			continue
		}
		if day, err := time.Parse("2006-01-02", stamp); err == nil && day.Before(cutoff) {
			os.Remove(filepath.Join(dir, e.Name()))
		}
	}
}
