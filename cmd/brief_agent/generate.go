package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/company-brief/internal/observability"
	"github.com/jonathan/company-brief/internal/pipeline"
	"github.com/jonathan/company-brief/internal/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate one report and write its PDF",
	Long: `Research a company, print the report and write "<company> - Intro.pdf".

Configuration can be loaded from a JSON file using --config. Command-line flags override config file values.`,
	RunE: runGenerate,
}

var (
	genCompany  string
	genIndustry string
	genRegion   string
	genUpload   string
	genOut      string
	genRuntime  runtimeOptions
)

func init() {
	generateCmd.Flags().StringVar(&genCompany, "company", "", "Company name (required)")
	generateCmd.Flags().StringVar(&genIndustry, "industry", "", "Industry (required)")
	generateCmd.Flags().StringVar(&genRegion, "region", "", "Region (optional)")
	generateCmd.Flags().StringVarP(&genUpload, "upload", "u", "", "Supporting document, PDF or text (optional)")
	generateCmd.Flags().StringVarP(&genOut, "out", "o", "", `PDF output path or directory (default "<company> - Intro.pdf")`)
	generateCmd.Flags().StringVar(&genRuntime.configPath, "config", "", "Path to config.json file")
	generateCmd.Flags().StringVar(&genRuntime.mode, "mode", "", "Collection mode: sections or combined (overrides config)")
	generateCmd.Flags().BoolVar(&genRuntime.useBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	generateCmd.Flags().BoolVarP(&genRuntime.verbose, "verbose", "v", false, "Print progress, sources and debug logs")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	req := types.ReportRequest{Company: genCompany, Industry: genIndustry, Region: genRegion}
	req.Normalize()
	if req.Company == "" || req.Industry == "" {
		return fmt.Errorf("--company and --industry are required")
	}
	if genUpload != "" {
		data, err := os.ReadFile(genUpload)
		if err != nil {
			return fmt.Errorf("failed to read upload: %w", err)
		}
		req.Document = data
		req.DocumentName = filepath.Base(genUpload)
	}

	cfg, secrets, log, err := loadRuntime(genRuntime)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p, closeClient, err := pipeline.FromConfig(ctx, cfg, secrets, log)
	if err != nil {
		return err
	}
	defer closeClient() //nolint:errcheck

	printer := observability.NewPrinter(cmd.OutOrStdout())
	var onProgress pipeline.ProgressCallback
	if cfg.Verbose {
		onProgress = printer.PrintProgress
	}

	report, err := p.RunWithProgress(ctx, req, onProgress)
	if err != nil {
		var pe *pipeline.Error
		if errors.As(err, &pe) && pe.Kind != pipeline.KindInternal {
			return errors.New(pe.UserMessage())
		}
		return err
	}

	printer.PrintReport(report)
	if cfg.Verbose {
		printer.PrintSources(report.Sources)
		printer.PrintSummary(report)
	}

	if err := pipeline.ExportErr(report); err != nil {
		return err
	}

	path, err := outputPath(genOut, report.PDFName)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, report.PDF, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\nSaved %s\n", path) //nolint:errcheck
	return nil
}

// outputPath resolves --out: empty means the default name in the working
// directory, an existing directory gets the default name inside it.
func outputPath(out, defaultName string) (string, error) {
	if out == "" {
		return defaultName, nil
	}
	info, err := os.Stat(out)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(out, defaultName), nil
	case err == nil || os.IsNotExist(err):
		if dir := filepath.Dir(out); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		return out, nil
	default:
		return "", err
	}
}
