package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/joshuapare/psdkit/internal/testutil"
)

// fixturePath writes a small layered document and returns its path.
//
// Storage order: bg, grp{a, a}, top (hidden).
func fixturePath(t *testing.T) string {
	t.Helper()
	top := testutil.Solid("top", 0, 0, 1, 1, 9, 9, 9, 255)
	top.Flags = testutil.FlagHidden
	data := testutil.Doc{
		Width: 4, Height: 4,
		Layers: testutil.Flatten(
			[]testutil.Layer{testutil.Solid("bg", 0, 0, 4, 4, 255, 0, 0, 255)},
			testutil.Group("grp", true,
				testutil.Solid("a", 0, 0, 2, 2, 0, 255, 0, 255),
				testutil.Solid("a", 1, 1, 3, 3, 0, 0, 255, 255),
			),
			[]testutil.Layer{top},
		),
	}.Build()
	return testutil.WriteFile(t, "fixture.psd", data)
}

// brokenPath writes a document whose only layer has a corrupt RLE plane.
func brokenPath(t *testing.T) string {
	t.Helper()
	l := testutil.Solid("bad", 0, 0, 1, 3, 1, 2, 3, 255)
	l.Channels[1] = testutil.Channel{ID: 0, Compression: 1, Payload: []byte{0, 1, 0x05}}
	data := testutil.Doc{Width: 3, Height: 1, Layers: []testutil.Layer{l}}.Build()
	return testutil.WriteFile(t, "broken.psd", data)
}

// resetFlags restores global and command flags after a test.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		verbose, quiet, jsonOut, strict, untrusted = false, false, false, false, false
		workers = 0
		logFormat = "text"
		layersLeaves, layersName = false, ""
		treeDepth, treeDetails, treeFormat = 0, false, "text"
		treeTopDown, treeHideHidden, treeLayer = false, false, -1
		exportFormat, exportIndexNames, exportFolders, exportComposite = "png", false, false, false
		diagFormat, diagOutputFile, diagShowSummary = "text", "", false
		snapshotComposite = false
		log = logrus.New()
	})
	log = newTestLogger(&bytes.Buffer{})
	treeFormat, treeLayer = "text", -1
	exportFormat = "png"
	diagFormat = "text"
	logFormat = "text"
}

// newTestLogger returns a logger writing uncolored text to w at debug level.
func newTestLogger(w *bytes.Buffer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	l.SetLevel(logrus.DebugLevel)
	return l
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.String()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return <-done, fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
