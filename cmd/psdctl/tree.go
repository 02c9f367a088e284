package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/psdkit/pkg/printer"
)

var (
	treeDepth      int
	treeDetails    bool
	treeFormat     string
	treeTopDown    bool
	treeHideHidden bool
	treeLayer      int
)

func init() {
	cmd := &cobra.Command{
		Use:   "tree <file.psd>",
		Short: "Display the layer tree",
		Long: `The tree command displays the folder structure of a document. Siblings are
listed bottom first, as stored in the file, unless --top-down is given.

Example:
  psdctl tree poster.psd
  psdctl tree poster.psd --top-down --depth 2
  psdctl tree poster.psd --details --format yaml
  psdctl tree poster.psd --layer 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(args)
		},
	}
	cmd.Flags().IntVar(&treeDepth, "depth", 0, "Maximum depth to display (0 = unlimited)")
	cmd.Flags().BoolVar(&treeDetails, "details", false, "Show bounds, blend mode and channels")
	cmd.Flags().StringVarP(&treeFormat, "format", "f", "text", "Output format: text, json, yaml")
	cmd.Flags().BoolVar(&treeTopDown, "top-down", false, "List the topmost sibling first")
	cmd.Flags().BoolVar(&treeHideHidden, "hide-hidden", false, "Omit hidden layers and folders")
	cmd.Flags().IntVar(&treeLayer, "layer", -1, "Print only the subtree of this layer index")
	rootCmd.AddCommand(cmd)
}

func runTree(args []string) error {
	if err := fileExists(args[0]); err != nil {
		return err
	}
	doc, err := extractFile(args[0], false)
	if err != nil {
		return err
	}

	opts := printer.DefaultOptions()
	opts.MaxDepth = treeDepth
	opts.ShowDetails = treeDetails
	opts.ShowHidden = !treeHideHidden
	opts.TopDown = treeTopDown
	switch {
	case jsonOut:
		opts.Format = printer.FormatJSON
	case treeFormat == "text", treeFormat == "json", treeFormat == "yaml":
		opts.Format = printer.Format(treeFormat)
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", treeFormat)
	}

	p := printer.New(doc, os.Stdout, opts)
	if treeLayer >= 0 {
		return p.PrintLayer(treeLayer)
	}
	return p.PrintTree()
}
