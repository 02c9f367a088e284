package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/psdkit/cmd/psdexplorer/logger"
	"github.com/joshuapare/psdkit/pkg/psd"
	"github.com/joshuapare/psdkit/pkg/types"
)

// InputMode represents different input modes
type InputMode int

const (
	NormalMode InputMode = iota
	SearchMode
)

// Model is the main application model
type Model struct {
	path string
	doc  *types.ExtractedDocument
	keys KeyMap
	help help.Model

	// Tree state
	expanded map[int]bool
	topDown  bool
	rows     []row
	cursor   int // index into rows
	offset   int // first visible row

	width  int
	height int

	// Search state
	inputMode InputMode
	search    textinput.Model
	query     string
	matches   []int // layer indices, storage order
	matchIdx  int

	showHelp bool

	// Status message for temporary feedback
	statusMessage string
	warnings      int

	copyFn func(string) error

	err error
}

// NewModel creates a new TUI model. The document is loaded by Init.
func NewModel(path string) Model {
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "layer name"
	ti.CharLimit = 256

	return Model{
		path:     path,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		search:   ti,
		topDown:  true,
		expanded: make(map[int]bool),
		copyFn:   clipboard.WriteAll,
	}
}

// Messages

type docLoadedMsg struct {
	doc      *types.ExtractedDocument
	warnings int
	err      error
}

// Init starts loading the document
func (m Model) Init() tea.Cmd {
	return loadDocument(m.path)
}

// loadDocument parses and extracts the document off the UI goroutine.
func loadDocument(path string) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		opts := types.DefaultOptions()
		opts.CollectDiagnostics = true

		parsed, err := psd.ParseFile(path, opts)
		if err != nil {
			logger.Doc(path).Error("parse failed", "error", err)
			return docLoadedMsg{err: err}
		}
		defer parsed.Close()

		doc, err := psd.ExtractInfo(parsed)
		if err != nil {
			logger.Doc(path).Error("extract failed", "error", err)
			return docLoadedMsg{err: err}
		}
		msg := docLoadedMsg{doc: doc}
		report := parsed.Diagnostics()
		if report != nil {
			msg.warnings = report.Summary.Warnings + report.Summary.Errors
		}
		logger.Loaded(path, doc, report, time.Since(start))
		return msg
	}
}

// setDocument installs a loaded document and resets the view.
func (m *Model) setDocument(doc *types.ExtractedDocument) {
	m.doc = doc
	m.expanded = initialExpanded(doc)
	m.cursor, m.offset = 0, 0
	m.refreshRows()
}

// refreshRows rebuilds the visible rows, keeping the selected layer when it
// is still visible.
func (m *Model) refreshRows() {
	selected := m.selectedLayer()
	m.rows = buildRows(m.doc, m.expanded, m.topDown)
	if selected >= 0 {
		m.selectLayer(selected)
	}
	m.clampCursor()
}

// selectedLayer returns the layer index under the cursor, or -1.
func (m *Model) selectedLayer() int {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return -1
	}
	return m.rows[m.cursor].layer
}

// selectLayer moves the cursor to layer i, expanding its ancestors.
func (m *Model) selectLayer(i int) {
	changed := false
	for p := psd.ParentOf(m.doc, i); p != nil; p = psd.ParentOf(m.doc, p.Index) {
		if !m.expanded[p.Index] {
			m.expanded[p.Index] = true
			changed = true
		}
	}
	if changed {
		m.rows = buildRows(m.doc, m.expanded, m.topDown)
	}
	for r, row := range m.rows {
		if row.layer == i {
			m.cursor = r
			return
		}
	}
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// treeHeight is the number of tree rows that fit on screen.
func (m *Model) treeHeight() int {
	return max(m.height-7, 3)
}

// ensureVisible scrolls so the cursor row is on screen.
func (m *Model) ensureVisible() {
	h := m.treeHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// runSearch collects layers whose names contain query, ignoring case.
func (m *Model) runSearch(query string) {
	m.query = query
	m.matches = nil
	m.matchIdx = 0
	if query == "" || m.doc == nil {
		return
	}
	q := strings.ToLower(query)
	for i := range m.doc.Layers {
		if strings.Contains(strings.ToLower(m.doc.Layers[i].Name), q) {
			m.matches = append(m.matches, i)
		}
	}
	if len(m.matches) == 0 {
		m.statusMessage = fmt.Sprintf("no layer matches %q", query)
		return
	}
	m.jumpToMatch(0)
}

func (m *Model) jumpToMatch(idx int) {
	n := len(m.matches)
	if n == 0 {
		return
	}
	m.matchIdx = ((idx % n) + n) % n
	m.selectLayer(m.matches[m.matchIdx])
	m.ensureVisible()
	m.statusMessage = fmt.Sprintf("match %d of %d", m.matchIdx+1, n)
}

// copyPath copies the selected layer's folder path to the clipboard.
func (m *Model) copyPath() {
	i := m.selectedLayer()
	if i < 0 {
		return
	}
	path := psd.Path(m.doc, i)
	if err := m.copyFn(path); err != nil {
		logger.L.Warn("clipboard write failed", "error", err)
		m.statusMessage = "copy failed: " + err.Error()
		return
	}
	m.statusMessage = "copied " + path
}
