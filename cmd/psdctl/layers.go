package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/psdkit/pkg/psd"
	"github.com/joshuapare/psdkit/pkg/types"
)

var (
	layersLeaves bool
	layersName   string
)

func init() {
	cmd := &cobra.Command{
		Use:   "layers <file.psd>",
		Short: "List layers with their paths and attributes",
		Long: `The layers command lists every layer in storage order (bottom first)
with its folder path, bounds, opacity and blend mode.

Example:
  psdctl layers poster.psd
  psdctl layers poster.psd --leaves
  psdctl layers poster.psd --name Background --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayers(args)
		},
	}
	cmd.Flags().BoolVar(&layersLeaves, "leaves", false, "Only list layers that are not folders")
	cmd.Flags().StringVar(&layersName, "name", "", "Only list layers with this exact name")
	rootCmd.AddCommand(cmd)
}

type layerRow struct {
	Index   int        `json:"index"`
	Path    string     `json:"path"`
	Kind    string     `json:"kind"`
	Rect    types.Rect `json:"rect"`
	Opacity uint8      `json:"opacity"`
	Blend   string     `json:"blend"`
	Visible bool       `json:"visible"`
	Error   string     `json:"error,omitempty"`
}

func runLayers(args []string) error {
	if err := fileExists(args[0]); err != nil {
		return err
	}
	doc, err := extractFile(args[0], false)
	if err != nil {
		return err
	}

	var indices []int
	switch {
	case layersName != "":
		indices = psd.FindByName(doc, layersName)
	case layersLeaves:
		indices = psd.Leaves(doc)
	default:
		for i := range doc.Layers {
			indices = append(indices, i)
		}
	}

	rows := make([]layerRow, 0, len(indices))
	for _, i := range indices {
		l := &doc.Layers[i]
		kind := "layer"
		if l.IsFolder() {
			kind = "folder"
		}
		rows = append(rows, layerRow{
			Index:   i,
			Path:    psd.Path(doc, i),
			Kind:    kind,
			Rect:    l.Rect,
			Opacity: l.Opacity,
			Blend:   l.BlendMode.Label,
			Visible: l.Flags.Visible,
			Error:   l.ImageError,
		})
	}

	if jsonOut {
		return printJSON(rows)
	}

	printInfo("%-5s %-7s %-24s %7s  %-12s %s\n", "INDEX", "KIND", "BOUNDS", "OPACITY", "BLEND", "PATH")
	for _, r := range rows {
		bounds := formatRect(r.Rect)
		printInfo("%-5d %-7s %-24s %7d  %-12s %s", r.Index, r.Kind, bounds, r.Opacity, r.Blend, r.Path)
		if !r.Visible {
			printInfo(" (hidden)")
		}
		if r.Error != "" {
			printInfo(" [%s]", r.Error)
		}
		printInfo("\n")
	}
	printVerbose("\n%d layers\n", len(rows))
	return nil
}

func formatRect(r types.Rect) string {
	if r.Empty() {
		return "-"
	}
	return fmt.Sprintf("%dx%d at (%d,%d)", r.Width(), r.Height(), r.Left, r.Top)
}
