package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/psdkit/pkg/psd"
	"github.com/joshuapare/psdkit/pkg/types"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <file.psd>",
		Short: "Validate a document header and report basic metadata",
		Long: `The info command parses a PSD document without decoding any pixels and
displays its header, image resources and layer counts.

Example:
  psdctl info poster.psd
  psdctl info poster.psd --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args)
		},
	}
	return cmd
}

type infoResource struct {
	ID   uint16 `json:"id"`
	Name string `json:"name"`
	Size int    `json:"size"`
}

type infoOutput struct {
	File         string         `json:"file"`
	Size         int            `json:"size"`
	Width        uint32         `json:"width"`
	Height       uint32         `json:"height"`
	Channels     uint16         `json:"channels"`
	Depth        uint16         `json:"depth"`
	ColorMode    string         `json:"color_mode"`
	Records      int            `json:"records"`
	Layers       int            `json:"layers"`
	Folders      int            `json:"folders"`
	HasComposite bool           `json:"has_composite"`
	Resources    []infoResource `json:"resources,omitempty"`
	GlobalInfo   []string       `json:"global_info,omitempty"`
}

func runInfo(args []string) error {
	path := args[0]

	printVerbose("Opening document: %s\n", path)

	doc, err := psd.ParseFile(path, decodeOptions(false))
	if err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}
	defer doc.Close()

	h := doc.Header()
	out := infoOutput{
		File:         path,
		Size:         doc.Size(),
		Width:        h.Width,
		Height:       h.Height,
		Channels:     h.Channels,
		Depth:        uint16(h.Depth),
		ColorMode:    h.ColorMode.String(),
		HasComposite: doc.HasComposite(),
	}
	for _, rec := range doc.Records() {
		out.Records++
		switch {
		case rec.SectionType.IsDivider():
		case rec.IsFolder():
			out.Folders++
			out.Layers++
		default:
			out.Layers++
		}
	}
	for _, r := range doc.Resources() {
		out.Resources = append(out.Resources, infoResource{
			ID: r.ID, Name: types.ResourceName(r.ID), Size: len(r.Data),
		})
	}
	for _, b := range doc.GlobalInfo() {
		out.GlobalInfo = append(out.GlobalInfo, b.Key)
	}

	if jsonOut {
		return printJSON(out)
	}

	printInfo("\nDocument Information:\n")
	printInfo("  File: %s\n", path)
	printInfo("  Size: %s\n", formatSize(int64(out.Size)))
	printInfo("  Dimensions: %dx%d\n", out.Width, out.Height)
	printInfo("  Color mode: %s, %d-bit, %d channels\n", out.ColorMode, out.Depth, out.Channels)
	printInfo("  Layers: %d (%d folders, %d records)\n", out.Layers, out.Folders, out.Records)
	printInfo("  Composite image: %v\n", out.HasComposite)

	if len(out.Resources) > 0 {
		printInfo("\nResources:\n")
		for _, r := range out.Resources {
			printInfo("  %5d  %-22s %s\n", r.ID, r.Name, formatSize(int64(r.Size)))
		}
	}
	if verbose && len(out.GlobalInfo) > 0 {
		printInfo("\nGlobal info blocks: %v\n", out.GlobalInfo)
	}
	return nil
}

func formatSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d bytes", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}

// fileExists reports a friendly error for a missing input.
func fileExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", path)
	}
	return nil
}
