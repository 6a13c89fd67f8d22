// Package localocr extracts text in-process with MuPDF (go-fitz) instead of
// calling the OCR vendor. It needs cgo and only reads documents that carry a
// text layer; scanned images yield no text.
package localocr

import (
	"context"
	"fmt"
	"strings"

	"floify-api/internal/models"
	"floify-api/internal/service"
	"floify-api/pkg/config"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

type Provider struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Provider {
	return &Provider{logger: logger}
}

func (p *Provider) Name() string {
	return config.OCRProviderLocal
}

// Analyze returns one chunk per page that has text.
func (p *Provider) Analyze(ctx context.Context, doc *models.Document) (*models.OCRResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrOCRFailed, err)
	}

	var (
		fdoc *fitz.Document
		err  error
	)
	if doc.Source == models.DocumentSourceLocal {
		fdoc, err = fitz.New(doc.Path)
	} else {
		fdoc, err = fitz.NewFromMemory(doc.Content)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open document: %v", service.ErrOCRFailed, err)
	}
	defer fdoc.Close()

	pages := make([]string, 0, fdoc.NumPage())
	for i := 0; i < fdoc.NumPage(); i++ {
		pageText, err := fdoc.Text(i)
		if err != nil {
			p.logger.Warn("Failed to extract text from page",
				zap.Int("page", i+1),
				zap.String("file", doc.FileName),
				zap.Error(err),
			)
			continue
		}

		if text := strings.TrimSpace(pageText); text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no text found in %s", service.ErrOCRFailed, doc.FileName)
	}

	p.logger.Info("Text extracted using go-fitz",
		zap.String("file", doc.FileName),
		zap.Int("pages", fdoc.NumPage()),
		zap.Int("pages_with_text", len(pages)),
	)

	result, err := models.NewChunkedOCRResult(pages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrOCRFailed, err)
	}
	return result, nil
}
