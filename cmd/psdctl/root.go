package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/joshuapare/psdkit/pkg/psd"
	"github.com/joshuapare/psdkit/pkg/types"
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	jsonOut   bool
	logFormat string
	strict    bool
	workers   int
	untrusted bool

	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "psdctl",
	Short: "Inspect and extract Photoshop PSD documents",
	Long: `psdctl reads Adobe Photoshop (PSD) documents and reports their header,
layer tree and diagnostics. It exports layer images as PNG, TIFF or BMP and
stores decoded documents as compressed snapshots.`,
	Version: "0.1.0",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return configureLogger(log, logFormat, verbose, quiet)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&logFormat, "log-format", "text", "Log format on stderr: text or json")
	rootCmd.PersistentFlags().
		BoolVar(&strict, "strict", false, "Fail on problems that would otherwise only affect one layer")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 0, "Parallel plane decoders (0 = one per CPU)")
	rootCmd.PersistentFlags().
		BoolVar(&untrusted, "untrusted", false, "Apply conservative size limits for untrusted input")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.err != nil {
				fmt.Fprintln(os.Stderr, ee.err)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// decodeOptions builds decode options from the global flags. Diagnostics
// are forwarded to the logger as they are produced.
func decodeOptions(composite bool) types.Options {
	opts := types.DefaultOptions()
	opts.Strict = strict
	opts.Workers = workers
	opts.Composite = composite
	opts.Sink = logSink{log: log}
	if untrusted {
		opts.Limits = types.StrictLimits()
	}
	return opts
}

// extractFile parses and extracts the document at path.
func extractFile(path string, composite bool) (*types.ExtractedDocument, error) {
	printVerbose("Opening document: %s\n", path)
	doc, err := psd.ParseFile(path, decodeOptions(composite))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer doc.Close()

	info, err := psd.ExtractInfo(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", path, err)
	}
	return info, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
