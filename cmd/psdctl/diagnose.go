package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/psdkit/pkg/psd"
	"github.com/joshuapare/psdkit/pkg/types"
)

var (
	diagFormat      string
	diagOutputFile  string
	diagShowSummary bool
)

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose <file.psd>",
	Short: "Run a full diagnostic decode of a document",
	Long: `Decodes every structure, layer plane and the composite image of a PSD
document, checking for:
  - Framing problems (signatures, section lengths, truncation)
  - Layer problems (missing channels, unsupported compression, corrupt planes)
  - Folder structure (unbalanced group dividers)

Every issue is reported with its byte offset. The scan never stops at the
first non-fatal problem.`,
	Example: `  # Scan a document and show a text report
  psdctl diagnose poster.psd

  # Output JSON for programmatic analysis
  psdctl diagnose --format json poster.psd

  # Compact format for grep
  psdctl diagnose --format compact broken.psd

  # Save report to file
  psdctl diagnose --output report.txt poster.psd`,
	Args: cobra.ExactArgs(1),
	RunE: runDiagnose,
}

func init() {
	diagnoseCmd.Flags().StringVarP(&diagFormat, "format", "f", "text",
		"Output format: text, json, compact")
	diagnoseCmd.Flags().StringVarP(&diagOutputFile, "output", "o", "",
		"Write report to file instead of stdout")
	diagnoseCmd.Flags().BoolVarP(&diagShowSummary, "summary", "s", false,
		"Show only summary (no detailed diagnostics)")

	rootCmd.AddCommand(diagnoseCmd)
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	path := args[0]
	if err := fileExists(path); err != nil {
		return err
	}

	printInfo("Scanning document: %s\n\n", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	opts := decodeOptions(true)
	opts.Sink = nil
	report, err := psd.Diagnose(data, opts)
	if report == nil {
		return fmt.Errorf("diagnostic scan failed: %w", err)
	}
	report.FilePath = path

	var output string
	format := diagFormat
	if jsonOut {
		format = "json"
	}
	switch format {
	case "json":
		jsonStr, err := report.FormatJSON()
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		output = jsonStr
	case "compact":
		output = report.FormatTextCompact()
	case "text":
		if diagShowSummary {
			output = formatSummaryOnly(report)
		} else {
			output = report.FormatText()
		}
	default:
		return fmt.Errorf("unknown format: %s (use: text, json, compact)", format)
	}

	if diagOutputFile != "" {
		if err := os.WriteFile(diagOutputFile, []byte(output), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		printInfo("Report written to: %s\n", diagOutputFile)
	} else {
		fmt.Fprint(os.Stdout, output)
	}

	switch {
	case report.HasCriticalIssues():
		printInfo("\nCRITICAL issues found\n")
		return &exitError{code: 2, err: err}
	case report.HasErrors():
		printInfo("\nErrors found\n")
		return &exitError{code: 1, err: err}
	case report.Summary.Warnings > 0:
		printInfo("\nWarnings found (non-critical)\n")
	default:
		printInfo("\nNo issues found\n")
	}
	return nil
}

func formatSummaryOnly(report *types.DiagnosticReport) string {
	output := fmt.Sprintf("Diagnostic Summary for %s\n", report.FilePath)
	output += fmt.Sprintf("File size: %d bytes\n", report.FileSize)
	output += fmt.Sprintf("Scan time: %v\n\n", report.ScanTime)
	output += fmt.Sprintf("Critical:  %d\n", report.Summary.Critical)
	output += fmt.Sprintf("Errors:    %d\n", report.Summary.Errors)
	output += fmt.Sprintf("Warnings:  %d\n", report.Summary.Warnings)
	output += fmt.Sprintf("Info:      %d\n", report.Summary.Info)
	return output
}

// exitError carries a process exit code out of a command. err may be nil
// when the report itself was the output.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return fmt.Sprintf("exit status %d", e.code)
}

func (e *exitError) Unwrap() error { return e.err }
