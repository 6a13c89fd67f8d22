package service

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"floify-api/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const previewLength = 500

// RunRecorder persists pipeline run history. Recording failures never fail a run.
type RunRecorder interface {
	Create(ctx context.Context, run *models.PipelineRun) error
	Finish(ctx context.Context, id uuid.UUID, status models.RunStatus, errMsg string, ocrFailed bool) error
}

type PipelineOptions struct {
	OutputRoot       string
	HaltOnOCRFailure bool
}

type ProcessOptions struct {
	// OutputDir overrides the generated bundle directory.
	OutputDir string
	RequestID string
}

type ProcessResult struct {
	RunID     uuid.UUID
	Bundle    *OutputBundle
	OCRFailed bool
	Document  json.RawMessage
}

// DocumentService runs resolve -> OCR -> extract -> transform, writing each
// stage's artifact to the output bundle before the next stage starts.
type DocumentService struct {
	resolver *ResolverService
	ocr      OCRProvider
	llm      *LLMService
	runs     RunRecorder
	opts     PipelineOptions
	now      func() time.Time
	logger   *zap.Logger
}

// NewDocumentService wires the pipeline. runs may be nil when run history is disabled.
func NewDocumentService(
	resolver *ResolverService,
	ocr OCRProvider,
	llm *LLMService,
	runs RunRecorder,
	opts PipelineOptions,
	logger *zap.Logger,
) *DocumentService {
	if opts.OutputRoot == "" {
		opts.OutputRoot = "."
	}

	return &DocumentService{
		resolver: resolver,
		ocr:      ocr,
		llm:      llm,
		runs:     runs,
		opts:     opts,
		now:      time.Now,
		logger:   logger,
	}
}

// Process runs the whole pipeline for one document reference. The returned
// result is non-nil whenever the bundle directory was created, including when
// err is non-nil, so callers can point at the partial artifacts.
func (s *DocumentService) Process(ctx context.Context, ref string, opts ProcessOptions) (*ProcessResult, error) {
	dir := opts.OutputDir
	if dir == "" {
		dir = filepath.Join(s.opts.OutputRoot, BundleDirName(BundleBaseName(ref), s.now()))
	}

	bundle, err := OpenBundle(dir)
	if err != nil {
		return nil, err
	}

	log := s.logger.With(zap.String("output_dir", bundle.Dir))
	if opts.RequestID != "" {
		log = log.With(zap.String("request_id", opts.RequestID))
	}
	log.Info("Output will be saved to bundle", zap.String("document", ref))

	result := &ProcessResult{RunID: uuid.New(), Bundle: bundle}
	s.startRun(ctx, result, ref, opts.RequestID, log)

	err = s.run(ctx, ref, result, log)
	s.finishRun(ctx, result, err, log)

	return result, err
}

func (s *DocumentService) run(ctx context.Context, ref string, result *ProcessResult, log *zap.Logger) error {
	bundle := result.Bundle

	doc, err := s.resolver.Resolve(ctx, ref)
	if err != nil {
		return err
	}

	ocrResult, err := s.ocr.Analyze(ctx, doc)
	if err != nil {
		result.OCRFailed = true
		if s.opts.HaltOnOCRFailure {
			log.Error("Failed to process document with OCR provider, stopping",
				zap.String("provider", s.ocr.Name()),
				zap.Error(err),
			)
			return nil
		}
		log.Warn("Failed to process document with OCR provider, continuing with empty text for diagnosis",
			zap.String("provider", s.ocr.Name()),
			zap.Error(err),
		)
	} else {
		if err := bundle.WriteOCRResults(ocrResult.Raw); err != nil {
			return err
		}
		log.Info("OCR results saved", zap.String("file", bundle.Path(OCRResultsFile)))
	}

	text := ExtractText(ocrResult)
	if err := bundle.WriteExtractedText(text); err != nil {
		return err
	}
	log.Info("Extracted text saved",
		zap.String("file", bundle.Path(ExtractedTextFile)),
		zap.Int("text_length", len(text)),
	)

	floify, err := s.llm.TransformToFloify(ctx, text)
	if err != nil {
		return err
	}

	if err := bundle.WriteLLMResponse(floify.RawReply); err != nil {
		return err
	}
	log.Info("LLM response saved", zap.String("file", bundle.Path(LLMResponseFile)))

	if floify.Document == nil {
		log.Error("Failed to generate valid Floify JSON", zap.Error(floify.ParseErr))
		return nil
	}

	// A document built from empty text is not a result.
	if result.OCRFailed {
		log.Error("Floify JSON not saved because OCR failed",
			zap.String("preview", Preview(floify.Document)),
		)
		return nil
	}

	if err := bundle.WriteFloify(floify.Document); err != nil {
		return err
	}
	result.Document = floify.Document

	log.Info("Floify JSON saved", zap.String("file", bundle.Path(FloifyFile)))
	log.Debug("Floify JSON preview", zap.String("preview", Preview(floify.Document)))

	return nil
}

func (s *DocumentService) startRun(ctx context.Context, result *ProcessResult, ref, requestID string, log *zap.Logger) {
	if s.runs == nil {
		return
	}

	run := &models.PipelineRun{
		ID:          result.RunID,
		RequestID:   requestID,
		DocumentRef: sanitizeUTF8(ref),
		OutputDir:   result.Bundle.Dir,
		Status:      models.RunStatusProcessing,
		StartedAt:   s.now(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		log.Warn("Failed to record pipeline run", zap.Error(err))
	}
}

func (s *DocumentService) finishRun(ctx context.Context, result *ProcessResult, runErr error, log *zap.Logger) {
	if s.runs == nil {
		return
	}

	status := models.RunStatusSucceeded
	var errMsg string
	switch {
	case runErr != nil:
		status = models.RunStatusFailed
		errMsg = sanitizeUTF8(runErr.Error())
	case result.OCRFailed:
		status = models.RunStatusFailed
		errMsg = "OCR failed, Floify JSON not generated"
	case result.Document == nil:
		status = models.RunStatusFailed
		errMsg = "Floify JSON not generated"
	}

	if err := s.runs.Finish(ctx, result.RunID, status, errMsg, result.OCRFailed); err != nil {
		log.Warn("Failed to update pipeline run", zap.Error(err))
	}
}

// sanitizeUTF8 drops invalid UTF-8 so run records are accepted by PostgreSQL.
func sanitizeUTF8(s string) string {
	return strings.ToValidUTF8(s, "")
}

// Preview renders doc indented and truncated for logs and the CLI.
func Preview(doc json.RawMessage) string {
	var out []byte
	if indented, err := json.MarshalIndent(doc, "", "  "); err == nil {
		out = indented
	} else {
		out = doc
	}
	if len(out) > previewLength {
		return string(out[:previewLength]) + "..."
	}
	return string(out)
}
