package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"floify-api/internal/models"
	"floify-api/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLandingAI(url string) *LandingAIService {
	return NewLandingAIService(&config.OCRConfig{
		APIKey:  "secret",
		URL:     url,
		Timeout: 5 * time.Second,
	}, zap.NewNop())
}

func TestLandingAIAnalyzePDF(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Basic secret", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("pdf")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, _ := io.ReadAll(file)
		assert.Equal(t, "pdf-bytes", string(data))
		assert.Equal(t, "loan.pdf", header.Filename)
		assert.Equal(t, "application/pdf", header.Header.Get("Content-Type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"markdown":"# Loan","chunks":[]},"errors":[]}`))
	}))
	defer server.Close()

	doc := &models.Document{Source: models.DocumentSourceURL, FileName: "loan.pdf", Content: []byte("pdf-bytes")}

	result, err := newTestLandingAI(server.URL).Analyze(context.Background(), doc)
	require.NoError(t, err)
	require.NotNil(t, result.Data)
	require.NotNil(t, result.Data.Markdown)
	assert.Equal(t, "# Loan", *result.Data.Markdown)
	assert.JSONEq(t, `{"data":{"markdown":"# Loan","chunks":[]},"errors":[]}`, string(result.Raw))
}

func TestLandingAIAnalyzeLocalImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stub.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o644))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, _ := io.ReadAll(file)
		assert.Equal(t, "png-bytes", string(data))
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		_, _ = w.Write([]byte(`{"data":{"chunks":[{"text":"a"}]}}`))
	}))
	defer server.Close()

	doc := &models.Document{Source: models.DocumentSourceLocal, FileName: "stub.png", Path: path}

	result, err := newTestLandingAI(server.URL).Analyze(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "a\n\n", ExtractText(result))
}

func TestLandingAIAnalyzeFailures(t *testing.T) {
	t.Run("vendor error status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		doc := &models.Document{Source: models.DocumentSourceURL, FileName: "a.pdf", Content: []byte("x")}
		_, err := newTestLandingAI(server.URL).Analyze(context.Background(), doc)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrOCRFailed)
		assert.Contains(t, err.Error(), "status 500")
	})

	t.Run("non json body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		}))
		defer server.Close()

		doc := &models.Document{Source: models.DocumentSourceURL, FileName: "a.pdf", Content: []byte("x")}
		_, err := newTestLandingAI(server.URL).Analyze(context.Background(), doc)
		assert.ErrorIs(t, err, ErrOCRFailed)
	})

	t.Run("unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		doc := &models.Document{Source: models.DocumentSourceURL, FileName: "a.pdf", Content: []byte("x")}
		_, err := newTestLandingAI(url).Analyze(context.Background(), doc)
		assert.ErrorIs(t, err, ErrOCRFailed)
	})
}
