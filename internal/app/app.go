// Package app assembles the document pipeline from configuration. It is shared
// by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"

	"floify-api/internal/localocr"
	"floify-api/internal/service"
	"floify-api/pkg/config"

	"go.uber.org/zap"
)

// NewOCRProvider returns the provider selected by OCR_PROVIDER.
func NewOCRProvider(cfg *config.OCRConfig, logger *zap.Logger) (service.OCRProvider, error) {
	switch cfg.Provider {
	case config.OCRProviderLandingAI:
		return service.NewLandingAIService(cfg, logger), nil
	case config.OCRProviderLocal:
		return localocr.New(logger), nil
	default:
		return nil, fmt.Errorf("unknown OCR provider %q", cfg.Provider)
	}
}

// NewCompleter returns the chat backend selected by LLM_PROVIDER.
func NewCompleter(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Completer, error) {
	switch cfg.LLM.Provider {
	case config.LLMProviderMistral:
		return service.NewMistralClient(&cfg.Mistral, cfg.LLM.Timeout, logger), nil
	case config.LLMProviderGigaChat:
		return service.NewGigaChatClient(ctx, &cfg.GigaChat, service.FloifySystemPrompt, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLM.Provider)
	}
}

// NewDocumentService wires resolver, OCR, LLM and the optional run recorder.
// The returned cleanup releases the LLM client.
func NewDocumentService(
	ctx context.Context,
	cfg *config.Config,
	runs service.RunRecorder,
	logger *zap.Logger,
) (*service.DocumentService, func(), error) {
	ocr, err := NewOCRProvider(&cfg.OCR, logger)
	if err != nil {
		return nil, nil, err
	}

	completer, err := NewCompleter(ctx, cfg, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	}

	logger.Info("Pipeline configured",
		zap.String("ocr_provider", ocr.Name()),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("llm_model", completer.Model()),
		zap.String("output_root", cfg.Pipeline.OutputRoot),
		zap.Bool("halt_on_ocr_failure", cfg.OCR.HaltOnFailure),
	)

	resolver := service.NewResolverService(cfg.Pipeline.DownloadTimeout, logger)
	llm := service.NewLLMService(completer, cfg.LLM.MaxTokens, logger)

	docService := service.NewDocumentService(resolver, ocr, llm, runs, service.PipelineOptions{
		OutputRoot:       cfg.Pipeline.OutputRoot,
		HaltOnOCRFailure: cfg.OCR.HaltOnFailure,
	}, logger)

	cleanup := func() {
		if err := completer.Close(); err != nil {
			logger.Warn("Failed to close LLM client", zap.Error(err))
		}
	}

	return docService, cleanup, nil
}
