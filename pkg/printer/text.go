package printer

import (
	"fmt"
	"strings"
)

func (p *Printer) printHeaderText() {
	h := headerOf(p.doc.Header)
	fmt.Fprintf(p.writer, "%dx%d %s, %d-bit, %d channels, %d layers\n",
		h.Width, h.Height, h.ColorMode, h.Depth, h.Channels, len(p.doc.Layers))
}

// printNodesText prints nodes as an indented tree. Folders end with "/".
func (p *Printer) printNodesText(nodes []node, depth int) error {
	indent := strings.Repeat(" ", depth*p.opts.IndentSize)
	for _, n := range nodes {
		name := n.Name
		if n.Kind != "layer" {
			name += "/"
		}
		var tags []string
		if !n.Visible {
			tags = append(tags, "hidden")
		}
		if n.Opacity != 255 {
			tags = append(tags, fmt.Sprintf("opacity %d", n.Opacity))
		}
		if n.Kind == "closed folder" {
			tags = append(tags, "closed")
		}
		if n.Error != "" {
			tags = append(tags, "error: "+n.Error)
		}
		line := indent + name
		if len(tags) > 0 {
			line += " (" + strings.Join(tags, ", ") + ")"
		}
		if _, err := fmt.Fprintln(p.writer, line); err != nil {
			return err
		}
		if d := n.Details; d != nil {
			fmt.Fprintf(p.writer, "%s  #%d rect [%d,%d,%d,%d] blend %s, clipping %s",
				indent, n.Index, d.Top, d.Left, d.Bottom, d.Right, d.Blend, d.Clipping)
			if len(d.Channels) > 0 {
				fmt.Fprintf(p.writer, ", channels %s", strings.Join(d.Channels, " "))
			}
			if len(d.Info) > 0 {
				fmt.Fprintf(p.writer, ", info %s", strings.Join(d.Info, " "))
			}
			fmt.Fprintln(p.writer)
		}
		if err := p.printNodesText(n.Children, depth+1); err != nil {
			return err
		}
	}
	return nil
}
