package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/psdkit/pkg/psd"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ensureVisible()
		return m, nil

	case docLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.setDocument(msg.doc)
		m.warnings = msg.warnings
		if msg.warnings > 0 {
			m.statusMessage = fmt.Sprintf("%d layers, %d decode warnings", len(msg.doc.Layers), msg.warnings)
		}
		return m, nil

	case tea.KeyMsg:
		if m.inputMode == SearchMode {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Esc):
		m.inputMode = NormalMode
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Enter):
		m.inputMode = NormalMode
		m.search.Blur()
		m.runSearch(m.search.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.showHelp {
		if key.Matches(msg, m.keys.Help, m.keys.Esc) {
			m.showHelp = false
		}
		return m, nil
	}
	if m.err != nil || m.doc == nil {
		return m, nil
	}

	m.statusMessage = ""
	switch {
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Up):
		m.cursor--
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.PageUp):
		m.cursor -= m.treeHeight()
	case key.Matches(msg, m.keys.PageDown):
		m.cursor += m.treeHeight()
	case key.Matches(msg, m.keys.Home):
		m.cursor = 0
	case key.Matches(msg, m.keys.End):
		m.cursor = len(m.rows) - 1
	case key.Matches(msg, m.keys.Right):
		m.expandOrDescend()
	case key.Matches(msg, m.keys.Left):
		m.collapseOrAscend()
	case key.Matches(msg, m.keys.Enter):
		if i := m.selectedLayer(); i >= 0 && m.doc.Layers[i].IsFolder() {
			m.expanded[i] = !m.expanded[i]
			m.refreshRows()
		}
	case key.Matches(msg, m.keys.ExpandAll):
		for i := range m.doc.Layers {
			if m.doc.Layers[i].IsFolder() {
				m.expanded[i] = true
			}
		}
		m.refreshRows()
	case key.Matches(msg, m.keys.CollapseAll):
		root := m.selectedLayer()
		for p := psd.ParentOf(m.doc, root); p != nil; p = psd.ParentOf(m.doc, p.Index) {
			root = p.Index
		}
		clear(m.expanded)
		m.rows = buildRows(m.doc, m.expanded, m.topDown)
		m.selectLayer(root)
	case key.Matches(msg, m.keys.ToggleOrder):
		m.topDown = !m.topDown
		m.refreshRows()
	case key.Matches(msg, m.keys.Copy):
		m.copyPath()
	case key.Matches(msg, m.keys.Search):
		m.inputMode = SearchMode
		m.search.SetValue(m.query)
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.NextMatch):
		m.jumpToMatch(m.matchIdx + 1)
	case key.Matches(msg, m.keys.PrevMatch):
		m.jumpToMatch(m.matchIdx - 1)
	}
	m.clampCursor()
	m.ensureVisible()
	return m, nil
}

// expandOrDescend opens a collapsed folder or steps into an open one.
func (m *Model) expandOrDescend() {
	i := m.selectedLayer()
	if i < 0 || !m.doc.Layers[i].IsFolder() {
		return
	}
	if !m.expanded[i] {
		m.expanded[i] = true
		m.refreshRows()
		return
	}
	if len(m.doc.Layers[i].Children) > 0 {
		m.cursor++
	}
}

// collapseOrAscend closes an open folder or moves to the enclosing one.
func (m *Model) collapseOrAscend() {
	i := m.selectedLayer()
	if i < 0 {
		return
	}
	if m.doc.Layers[i].IsFolder() && m.expanded[i] {
		m.expanded[i] = false
		m.refreshRows()
		return
	}
	if p := psd.ParentOf(m.doc, i); p != nil {
		m.selectLayer(p.Index)
	}
}
