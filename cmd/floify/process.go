package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"floify-api/internal/app"
	"floify-api/internal/service"
	"floify-api/pkg/config"
	"floify-api/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	processOutputDir string
	processHaltOnOCR bool
	processLogJSON   bool
)

var processCmd = &cobra.Command{
	Use:   "process <document>",
	Short: "Process a document URL or local path",
	Args:  cobra.ExactArgs(1),
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringVarP(&processOutputDir, "output-dir", "o", "", "output directory (default output_<name>_<timestamp>)")
	processCmd.Flags().BoolVar(&processHaltOnOCR, "halt-on-ocr-failure", false, "stop when OCR fails instead of continuing with empty text")
	processCmd.Flags().BoolVar(&processLogJSON, "log-json", false, "log as JSON instead of console text")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.Logger.Level = "debug"
	}
	if cmd.Flags().Changed("halt-on-ocr-failure") {
		cfg.OCR.HaltOnFailure = processHaltOnOCR
	}

	format := logger.FormatConsole
	if processLogJSON {
		format = logger.FormatJSON
	}
	if err := logger.Init(cfg.Logger.Level, format); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()
	appLogger := logger.Component("cli")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	docService, cleanup, err := app.NewDocumentService(ctx, cfg, nil, appLogger)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := docService.Process(ctx, args[0], service.ProcessOptions{OutputDir: processOutputDir})
	if err != nil {
		appLogger.Error("Processing failed", zap.Error(err))
		if result != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Partial artifacts in %s\n", result.Bundle.Dir)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Output directory: %s\n", result.Bundle.Dir)
	if result.OCRFailed {
		fmt.Fprintln(out, "OCR failed: the LLM ran on empty text and its reply was kept for diagnosis only")
	}

	if result.Document == nil {
		if result.Bundle.Has(service.LLMResponseFile) {
			fmt.Fprintf(out, "Raw LLM response kept in %s\n", result.Bundle.Path(service.LLMResponseFile))
		}
		return errors.New("failed to generate Floify JSON")
	}

	fmt.Fprintf(out, "Floify JSON: %s\n\n%s\n", result.Bundle.Path(service.FloifyFile), service.Preview(result.Document))
	return nil
}
