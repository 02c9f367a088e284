package main

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joshuapare/psdkit/pkg/psd"
)

var (
	exportFormat     string
	exportIndexNames bool
	exportFolders    bool
	exportComposite  bool
)

func init() {
	cmd := newExportCmd()
	cmd.Flags().StringVarP(&exportFormat, "format", "f", psd.FormatPNG, "Image format: png, tiff, bmp")
	cmd.Flags().BoolVar(&exportIndexNames, "index-names", false, "Suffix same-named siblings with _1, _2, ...")
	cmd.Flags().BoolVar(&exportFolders, "folders", false, "Mirror layer folders as directories")
	cmd.Flags().BoolVar(&exportComposite, "composite", false, "Also write the merged image as composite.png")
	rootCmd.AddCommand(cmd)
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file.psd> [output-dir]",
		Short: "Export layer images",
		Long: `The export command writes one image per layer that has pixels. Folders
produce no image of their own. Names are sanitized for the file system.

Example:
  psdctl export poster.psd out/
  psdctl export poster.psd out/ --folders --index-names
  psdctl export poster.psd --format tiff --composite`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args)
		},
	}
	return cmd
}

func runExport(args []string) error {
	path := args[0]
	dir := "."
	if len(args) > 1 {
		dir = args[1]
	}
	if err := fileExists(path); err != nil {
		return err
	}

	doc, err := extractFile(path, exportComposite)
	if err != nil {
		return err
	}

	paths, err := psd.Save(doc, psd.SaveOptions{
		Dir:        dir,
		IndexNames: exportIndexNames,
		InFolders:  exportFolders,
		Format:     exportFormat,
	})
	if err != nil {
		return fmt.Errorf("failed to export layers: %w", err)
	}
	for _, p := range paths {
		printVerbose("  %s\n", p)
	}

	if exportComposite {
		if doc.Composite == nil {
			log.WithField("file", path).Warn("document has no composite image")
		} else {
			out := filepath.Join(dir, "composite.png")
			if err := writePNG(out, doc.Composite); err != nil {
				return err
			}
			paths = append(paths, out)
		}
	}

	if jsonOut {
		return printJSON(map[string]interface{}{"files": paths})
	}
	printInfo("Exported %d images to %s\n", len(paths), dir)
	return nil
}

func writePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := png.Encode(w, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
