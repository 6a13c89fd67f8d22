package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"floify-api/internal/models"

	"go.uber.org/zap"
)

const (
	defaultDownloadName = "document.pdf"
	defaultURLBaseName  = "url_document"
)

// ResolverService turns a document reference into document bytes or a verified local path.
type ResolverService struct {
	httpClient *http.Client
	logger     *zap.Logger
}

func NewResolverService(downloadTimeout time.Duration, logger *zap.Logger) *ResolverService {
	return &ResolverService{
		httpClient: &http.Client{Timeout: downloadTimeout},
		logger:     logger,
	}
}

// IsURL reports whether ref has both a scheme and a host.
func IsURL(ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Resolve downloads remote documents and checks that local ones exist. No retries.
func (s *ResolverService) Resolve(ctx context.Context, ref string) (*models.Document, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, ErrInvalidReference
	}

	if IsURL(ref) {
		return s.download(ctx, ref)
	}

	info, err := os.Stat(ref)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, ref)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentNotFound, ref, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrDocumentNotFound, ref)
	}

	s.logger.Info("Resolved local document", zap.String("path", ref), zap.Int64("size", info.Size()))

	return &models.Document{
		Reference: ref,
		Source:    models.DocumentSourceLocal,
		FileName:  filepath.Base(ref),
		Path:      ref,
	}, nil
}

func (s *ResolverService) download(ctx context.Context, rawURL string) (*models.Document, error) {
	fileName := DownloadFileName(rawURL)
	s.logger.Info("Downloading document", zap.String("url", rawURL), zap.String("file_name", fileName))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDownloadFailed, rawURL, err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("Error downloading document", zap.String("url", rawURL), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", ErrDownloadFailed, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Error("Error downloading document",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: %s: status %d", ErrDownloadFailed, rawURL, resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDownloadFailed, rawURL, err)
	}

	s.logger.Info("Download completed", zap.Int("bytes", len(content)))

	return &models.Document{
		Reference: rawURL,
		Source:    models.DocumentSourceURL,
		FileName:  fileName,
		Content:   content,
	}, nil
}

// DownloadFileName derives an upload file name from the last URL path segment,
// defaulting to document.pdf and appending .pdf when the name has no extension.
func DownloadFileName(rawURL string) string {
	name := lastURLSegment(rawURL)
	if name == "" {
		return defaultDownloadName
	}
	if !strings.Contains(name, ".") {
		name += models.DefaultExtension
	}
	return name
}

// BundleBaseName is the document-derived part of the output bundle directory name.
func BundleBaseName(ref string) string {
	if IsURL(ref) {
		if name := lastURLSegment(ref); name != "" {
			return name
		}
		return defaultURLBaseName
	}
	name := filepath.Base(ref)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func lastURLSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	segments := strings.Split(u.Path, "/")
	return segments[len(segments)-1]
}
