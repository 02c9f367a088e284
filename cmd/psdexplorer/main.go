package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joshuapare/psdkit/cmd/psdexplorer/logger"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	args := os.Args[1:]
	debugMode := false

	// Extract --debug/-d flag
	filteredArgs := make([]string, 0, len(args))
	for _, arg := range args {
		if arg == "--debug" || arg == "-d" {
			debugMode = true
		} else {
			filteredArgs = append(filteredArgs, arg)
		}
	}

	if err := logger.Init(debugMode, ""); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to init logging: %v\n", err)
	}

	if len(filteredArgs) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch filteredArgs[0] {
	case "--help", "-h":
		printHelp()
		os.Exit(0)
	case "--version", "-v":
		fmt.Printf("psdexplorer %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
		os.Exit(0)
	}

	path := filteredArgs[0]
	log := logger.Doc(path)
	log.Info("starting psdexplorer")

	if _, err := os.Stat(path); err != nil {
		log.Error("document not found", "error", err)
		fmt.Fprintf(os.Stderr, "Error: document not found: %s\n", path)
		os.Exit(1)
	}

	p := tea.NewProgram(NewModel(path), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error("TUI error", "error", err)
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
	log.Info("psdexplorer exited normally")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: psdexplorer [options] <file.psd>\n")
	fmt.Fprintf(os.Stderr, "Try 'psdexplorer --help' for more information.\n")
}

func printHelp() {
	fmt.Println("psdexplorer - Interactive layer browser for Photoshop documents")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  psdexplorer [options] <file.psd>")
	fmt.Println()
	fmt.Println("  Navigation:")
	fmt.Println("    ↑/k, ↓/j    Navigate up/down")
	fmt.Println("    →/l         Expand folder / enter folder")
	fmt.Println("    ←/h         Collapse folder / go to enclosing folder")
	fmt.Println("    /           Search layer names (n/N for next/previous)")
	fmt.Println("    c           Copy layer path")
	fmt.Println("    o           Toggle top-down / storage order")
	fmt.Println("    ?           Show help")
	fmt.Println("    q           Quit")
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -d, --debug    Enable debug logging to ~/.psdexplorer/logs/")
	fmt.Println("  -h, --help     Show this help message")
	fmt.Println("  -v, --version  Show version information")
	fmt.Println()
	fmt.Println("For non-interactive operations, use the 'psdctl' command instead.")
}
