package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linkscout/browser"
	"linkscout/di"
	"linkscout/vetting"
)

// Report formats accepted by --format
const (
	formatJSON     = "json"
	formatMarkdown = "markdown"
	formatText     = "text"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url]",
		Short: "Analyze a single URL and print the report",
		Long: `Scan runs the full analysis once and prints the report.

Examples:
  # Colored summary in the terminal
  linkscout scan example.com

  # Markdown report written to a file
  linkscout scan -f markdown -o report.md https://example.com/login

  # Raw JSON, the same document POST /api/preview returns
  linkscout scan -f json example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runScanCmd,
	}

	cmd.Flags().StringP("format", "f", formatText, "Report format: json, markdown or text")
	cmd.Flags().StringP("output", "o", "", "Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-color", false, "Disable colored text output")

	return cmd
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	format = strings.ToLower(format)
	if !validFormat(format) {
		return fmt.Errorf("unknown format %q (want json, markdown or text)", format)
	}
	output, _ := cmd.Flags().GetString("output")
	noColor, _ := cmd.Flags().GetBool("no-color")

	container, err := di.BuildContainer(configPath(cmd))
	if err != nil {
		return fmt.Errorf("failed to build dependency container: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var report *vetting.Report
	err = container.Invoke(func(logger *zap.Logger, chrome *browser.Chrome, analyzer *vetting.Analyzer) error {
		defer logger.Sync() //nolint:errcheck
		defer chrome.Close()

		report, err = analyzer.Analyze(ctx, args[0])
		return err
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if output != "" {
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
		// files never get escape codes
		noColor = true
	}

	return writeReport(w, report, format, noColor)
}

func validFormat(format string) bool {
	switch format {
	case formatJSON, formatMarkdown, formatText:
		return true
	}
	return false
}

func writeReport(w io.Writer, report *vetting.Report, format string, noColor bool) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case formatMarkdown:
		return vetting.WriteMarkdown(w, report)
	default:
		return vetting.WriteText(w, report, noColor)
	}
}
