package main

import (
	"fmt"
	"log/slog"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/slabkit/internal/logger"
)

// Set by -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool
)

// numbers formats counts with digit grouping in human output.
var numbers = message.NewPrinter(language.English)

var rootCmd = &cobra.Command{
	Use:   "slabctl",
	Short: "Inspect segregated slab layouts and replay allocation workloads",
	Long: `slabctl computes the slab and class layout of a power-of-two segregated
slab allocator and replays allocation workloads against it over a real
memory mapping, reporting occupancy and fragmentation.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initLogger()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and allocator debug logs")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	rootCmd.SetVersionTemplate(versionText())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVersion()
		},
	})
}

// buildInfo is the --json form of the version command.
type buildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

func versionText() string {
	return fmt.Sprintf("slabctl %s (commit %s, built %s)\n", version, commit, date)
}

func runVersion() error {
	if jsonOut {
		return printJSON(buildInfo{Version: version, Commit: commit, Date: date})
	}
	fmt.Fprint(os.Stdout, versionText())
	return nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// initLogger routes allocator logs to stderr: debug with --verbose, nothing
// with --quiet, otherwise whatever SLABKIT_LOG_ALLOC selected.
func initLogger() {
	switch {
	case quiet:
		logger.Init(logger.Options{Enabled: false})
	case verbose:
		logger.Init(logger.Options{Enabled: true, Writer: os.Stderr, Level: slog.LevelDebug})
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		numbers.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as indented JSON
func printJSON(v any) error {
	encoder := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
