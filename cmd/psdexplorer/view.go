package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	overlay "github.com/rmhubbert/bubbletea-overlay"

	"github.com/joshuapare/psdkit/pkg/psd"
	"github.com/joshuapare/psdkit/pkg/types"
)

// View renders the entire UI
func (m Model) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.doc == nil {
		return statusStyle.Render("Loading " + m.path + "...")
	}

	screen := lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.renderContent(),
		m.renderStatus(),
	)
	if !m.showHelp {
		return screen
	}

	// The overlay composes two models; both are rendered views here.
	return overlay.New(
		staticView(m.renderHelp()),
		staticView(screen),
		overlay.Center,
		overlay.Center,
		0,
		0,
	).View()
}

// renderHeader renders the title, document summary and selected path
func (m Model) renderHeader() string {
	h := m.doc.Header
	summary := fmt.Sprintf("%s  %dx%d %s %d-bit", m.path, h.Width, h.Height, h.ColorMode, h.Depth)
	header := lipgloss.JoinHorizontal(
		lipgloss.Top,
		headerStyle.Render("PSD Explorer"),
		"  ",
		pathStyle.Render(summary),
	)
	if i := m.selectedLayer(); i >= 0 {
		header = lipgloss.JoinVertical(lipgloss.Left, header, pathStyle.Render("Path: "+psd.Path(m.doc, i)))
	}
	return header
}

// renderContent renders the tree and detail panes side by side
func (m Model) renderContent() string {
	treeWidth := max(m.width/2-4, 20)
	detailWidth := max(m.width-treeWidth-8, 20)
	height := m.treeHeight()

	tree := activePaneStyle.Width(treeWidth).Height(height).Render(m.renderTree(treeWidth, height))
	details := paneStyle.Width(detailWidth).Height(height).Render(m.renderDetails(detailWidth))
	return lipgloss.JoinHorizontal(lipgloss.Top, tree, details)
}

// renderTree renders the visible window of tree rows
func (m Model) renderTree(width, height int) string {
	if len(m.rows) == 0 {
		return statusStyle.Render("(no layers)")
	}
	var b strings.Builder
	end := min(m.offset+height, len(m.rows))
	for r := m.offset; r < end; r++ {
		row := m.rows[r]
		l := &m.doc.Layers[row.layer]

		marker := "  "
		if l.IsFolder() {
			marker = "▸ "
			if m.expanded[row.layer] {
				marker = "▾ "
			}
		}
		line := truncate(strings.Repeat("  ", row.depth)+marker+l.Name, width)

		switch {
		case r == m.cursor:
			line = selectedStyle.Render(line)
		case m.isMatch(row.layer):
			line = matchStyle.Render(line)
		case !l.Flags.Visible:
			line = hiddenStyle.Render(line)
		case l.IsFolder():
			line = folderStyle.Render(line)
		}
		b.WriteString(line)
		if r < end-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m Model) isMatch(i int) bool {
	for _, j := range m.matches {
		if j == i {
			return true
		}
	}
	return false
}

// renderDetails renders the attributes of the selected layer
func (m Model) renderDetails(width int) string {
	i := m.selectedLayer()
	if i < 0 {
		return ""
	}
	l := &m.doc.Layers[i]

	kind := "layer"
	if l.IsFolder() {
		kind = l.SectionType.String()
	}
	var channels []string
	for _, c := range l.Channels {
		channels = append(channels, c.ID.String())
	}
	var info []string
	for _, blk := range l.Info {
		info = append(info, blk.Key)
	}
	pixels := "none"
	switch {
	case l.ImageError != "":
		pixels = errorStyle.Render(l.ImageError)
	case l.Image != nil:
		pixels = fmt.Sprintf("%dx%d RGBA", l.Image.Rect.Dx(), l.Image.Rect.Dy())
	}

	lines := [][2]string{
		{"Name", l.Name},
		{"Index", fmt.Sprintf("%d", l.Index)},
		{"Kind", kind},
		{"Bounds", formatBounds(l.Rect)},
		{"Opacity", fmt.Sprintf("%d (%d%%)", l.Opacity, int(l.Opacity)*100/255)},
		{"Blend", fmt.Sprintf("%s (%s)", l.BlendMode.Label, l.BlendMode.Code)},
		{"Clipping", l.Clipping.String()},
		{"Visible", fmt.Sprintf("%v", l.Flags.Visible)},
		{"Locked", fmt.Sprintf("%v", l.Flags.TransparencyProtected)},
		{"Channels", strings.Join(channels, ", ")},
		{"Mask", fmt.Sprintf("%v", l.Mask != nil)},
		{"Info", strings.Join(info, " ")},
		{"Pixels", pixels},
	}
	if l.LayerID != 0 {
		lines = append(lines, [2]string{"Layer ID", fmt.Sprintf("%d", l.LayerID)})
	}
	if l.IsFolder() {
		lines = append(lines, [2]string{"Children", fmt.Sprintf("%d", len(l.Children))})
	}

	var b strings.Builder
	for n, kv := range lines {
		b.WriteString(labelStyle.Render(kv[0]))
		b.WriteString(truncate(kv[1], max(width-12, 8)))
		if n < len(lines)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func formatBounds(r types.Rect) string {
	if r.Empty() {
		return "empty"
	}
	return fmt.Sprintf("%dx%d at (%d,%d)", r.Width(), r.Height(), r.Left, r.Top)
}

// renderStatus renders the search prompt, a status message or key help
func (m Model) renderStatus() string {
	if m.inputMode == SearchMode {
		return searchPromptStyle.Render(m.search.View())
	}
	if m.statusMessage != "" {
		return statusStyle.Render(m.statusMessage)
	}
	return statusStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

// renderHelp renders the full key reference shown in the help overlay
func (m Model) renderHelp() string {
	body := lipgloss.JoinVertical(
		lipgloss.Left,
		modalTitleStyle.Render("Keyboard shortcuts"),
		m.help.FullHelpView(m.keys.FullHelp()),
	)
	return modalStyle.Render(body)
}

// staticView adapts rendered text to tea.Model for the overlay.
type staticView string

func (s staticView) Init() tea.Cmd                       { return nil }
func (s staticView) Update(tea.Msg) (tea.Model, tea.Cmd) { return s, nil }
func (s staticView) View() string                        { return string(s) }
