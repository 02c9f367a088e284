package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/psdkit/pkg/printer"
	"github.com/joshuapare/psdkit/pkg/psd"
)

var snapshotComposite bool

func init() {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Save or inspect decoded document snapshots",
		Long: `A snapshot is a decoded document, pixels included, stored as a
zstd-compressed stream. Loading one skips parsing and plane decoding.`,
	}

	save := &cobra.Command{
		Use:   "save <file.psd> <output.snap>",
		Short: "Decode a document and write a snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotSave(args)
		},
	}
	save.Flags().BoolVar(&snapshotComposite, "composite", false, "Include the composite image")

	show := &cobra.Command{
		Use:   "show <input.snap>",
		Short: "Print the layer tree stored in a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshotShow(args)
		},
	}

	cmd.AddCommand(save, show)
	rootCmd.AddCommand(cmd)
}

func runSnapshotSave(args []string) error {
	src, dst := args[0], args[1]
	if err := fileExists(src); err != nil {
		return err
	}
	doc, err := extractFile(src, snapshotComposite)
	if err != nil {
		return err
	}

	f, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	if err := psd.WriteSnapshot(f, doc); err != nil {
		f.Close()
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	if st, err := os.Stat(dst); err == nil {
		printInfo("Snapshot written to %s (%s)\n", dst, formatSize(st.Size()))
	}
	return nil
}

func runSnapshotShow(args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	doc, err := psd.ReadSnapshot(f)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	opts := printer.DefaultOptions()
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	return printer.New(doc, os.Stdout, opts).PrintTree()
}
