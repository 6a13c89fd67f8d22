package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"floify-api/internal/models"
	"floify-api/pkg/config"

	"go.uber.org/zap"
)

// OCRProvider submits a resolved document for text recognition.
// Implementations return an error wrapping ErrOCRFailed when no result is available.
type OCRProvider interface {
	Analyze(ctx context.Context, doc *models.Document) (*models.OCRResult, error)
	Name() string
}

// LandingAIService calls the Landing.ai agentic document analysis endpoint.
type LandingAIService struct {
	apiKey     string
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewLandingAIService(cfg *config.OCRConfig, logger *zap.Logger) *LandingAIService {
	return &LandingAIService{
		apiKey:     cfg.APIKey,
		url:        cfg.URL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

func (s *LandingAIService) Name() string {
	return config.OCRProviderLandingAI
}

// Analyze uploads the document as a pdf or image part. Non-200 responses are
// logged with their body and reported as ErrOCRFailed.
func (s *LandingAIService) Analyze(ctx context.Context, doc *models.Document) (*models.OCRResult, error) {
	body, contentType, err := s.createBody(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOCRFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrOCRFailed, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Basic "+s.apiKey)

	s.logger.Info("Sending request to Landing.ai (this may take 2-5 minutes)",
		zap.String("file_name", doc.FileName),
		zap.String("field", doc.UploadField()),
		zap.Int("body_bytes", body.Len()),
	)
	start := time.Now()

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("Error processing document with Landing.ai", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrOCRFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", ErrOCRFailed, err)
	}

	s.logger.Info("Landing.ai request completed",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("status", resp.StatusCode),
	)

	if resp.StatusCode != http.StatusOK {
		s.logger.Error("Error from Landing.ai API",
			zap.Int("status", resp.StatusCode),
			zap.String("response", string(respBody)),
		)
		return nil, fmt.Errorf("%w: status %d", ErrOCRFailed, resp.StatusCode)
	}

	var result models.OCRResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		s.logger.Error("Failed to decode Landing.ai response", zap.Error(err))
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrOCRFailed, err)
	}

	return &result, nil
}

func (s *LandingAIService) createBody(doc *models.Document) (*bytes.Buffer, string, error) {
	src, err := doc.Open()
	if err != nil {
		return nil, "", fmt.Errorf("failed to open document: %w", err)
	}
	defer src.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreatePart(map[string][]string{
		"Content-Type":        {mimeType(doc.Extension())},
		"Content-Disposition": {fmt.Sprintf(`form-data; name=%q; filename=%q`, doc.UploadField(), filepath.Base(doc.FileName))},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := io.Copy(part, src); err != nil {
		return nil, "", fmt.Errorf("failed to copy file: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close writer: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}

func mimeType(ext string) string {
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	switch strings.ToLower(ext) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return "application/octet-stream"
	}
}
