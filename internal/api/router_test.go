package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"floify-api/internal/api/handlers"
	"floify-api/internal/models"
	"floify-api/internal/service"
	"floify-api/pkg/config"
	"floify-api/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCompleter struct {
	reply string
}

func (s *stubCompleter) Complete(ctx context.Context, req service.CompletionRequest) (string, error) {
	return s.reply, nil
}

func (s *stubCompleter) Model() string { return "stub" }

func (s *stubCompleter) Close() error { return nil }

type stubRunLister struct {
	runs  []*models.PipelineRun
	limit int
}

func (s *stubRunLister) List(ctx context.Context, limit, offset int) ([]*models.PipelineRun, error) {
	s.limit = limit
	return s.runs, nil
}

type testEnv struct {
	app        *fiber.App
	outputRoot string
	docURL     string
}

// newTestEnv serves a PDF and an OCR endpoint from httptest servers and wires
// the real resolver and Landing.ai client against them.
func newTestEnv(t *testing.T, ocrStatus int, llmReply string, halt bool, runs handlers.RunLister) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	docServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	t.Cleanup(docServer.Close)

	ocrServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ocrStatus != http.StatusOK {
			http.Error(w, "vendor down", ocrStatus)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"markdown":"Borrower: Jane Roe"}}`))
	}))
	t.Cleanup(ocrServer.Close)

	outputRoot := t.TempDir()
	ocr := service.NewLandingAIService(&config.OCRConfig{APIKey: "k", URL: ocrServer.URL, Timeout: 5 * time.Second}, logger)
	llm := service.NewLLMService(&stubCompleter{reply: llmReply}, 4000, logger)
	docService := service.NewDocumentService(
		service.NewResolverService(5*time.Second, logger),
		ocr,
		llm,
		nil,
		service.PipelineOptions{OutputRoot: outputRoot, HaltOnOCRFailure: halt},
		logger,
	)

	var runHandler *handlers.RunHandler
	if runs != nil {
		runHandler = handlers.NewRunHandler(runs, logger)
	}

	app := SetupRouter(&config.ServerConfig{}, handlers.NewDocumentHandler(docService, logger), runHandler, logger)

	return &testEnv{app: app, outputRoot: outputRoot, docURL: docServer.URL + "/doc.pdf"}
}

func (e *testEnv) post(t *testing.T, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/process-document", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) bundleDir(t *testing.T) string {
	t.Helper()
	entries, err := os.ReadDir(e.outputRoot)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "output_doc.pdf_"))
	return filepath.Join(e.outputRoot, entries[0].Name())
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body), string(data))
	return body
}

func TestProcessDocumentSuccess(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, "```json\n{\"borrower\":{\"name\":\"Jane Roe\"},\"loan\":null}\n```", false, nil)

	resp := env.post(t, `{"document_url":"`+env.docURL+`"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "application/json")
	_, err := uuid.Parse(resp.Header.Get(middleware.HeaderRequestID))
	assert.NoError(t, err)

	body := decodeBody(t, resp)
	assert.Equal(t, map[string]interface{}{"name": "Jane Roe"}, body["borrower"])
	assert.Contains(t, body, "loan")

	dir := env.bundleDir(t)
	for _, name := range []string{service.OCRResultsFile, service.ExtractedTextFile, service.LLMResponseFile, service.FloifyFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestProcessDocumentOCRFailure(t *testing.T) {
	replies := map[string]string{
		"valid json reply":  `{"borrower":null,"co_borrower":null,"property":null,"loan":null}`,
		"unparseable reply": "not json",
	}

	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			env := newTestEnv(t, http.StatusInternalServerError, reply, false, nil)

			resp := env.post(t, `{"document_url":"`+env.docURL+`"}`)
			assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
			assert.Equal(t, "Failed to generate Floify JSON", decodeBody(t, resp)["error"])

			dir := env.bundleDir(t)
			assert.NoFileExists(t, filepath.Join(dir, service.FloifyFile))
			assert.NoFileExists(t, filepath.Join(dir, service.OCRResultsFile))
			assert.FileExists(t, filepath.Join(dir, service.ExtractedTextFile))
			assert.FileExists(t, filepath.Join(dir, service.LLMResponseFile))
		})
	}
}

func TestProcessDocumentOCRFailureHalt(t *testing.T) {
	env := newTestEnv(t, http.StatusBadGateway, `{"borrower":null}`, true, nil)

	resp := env.post(t, `{"document_url":"`+env.docURL+`"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	entries, err := os.ReadDir(env.bundleDir(t))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestProcessDocumentFetchError(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, `{}`, false, nil)

	resp := env.post(t, `{"document_url":"`+filepath.Join(t.TempDir(), "missing.pdf")+`"}`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["error"], "document not found")
}

func TestProcessDocumentBadRequest(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, `{}`, false, nil)

	for _, body := range []string{`{}`, `{"document_url":""}`, `{"document_url":"   "}`, `{"url":"x"}`} {
		t.Run(body, func(t *testing.T) {
			resp := env.post(t, body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, "Missing document_url", decodeBody(t, resp)["error"])
		})
	}

	resp := env.post(t, `{"document_url":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	entries, err := os.ReadDir(env.outputRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHealthAndIndex(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, `{}`, false, nil)

	resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, map[string]interface{}{"status": "healthy"}, decodeBody(t, resp))

	resp, err = env.app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, handlers.Banner, string(data))
}

func TestRequestIDPropagated(t *testing.T) {
	env := newTestEnv(t, http.StatusOK, `{}`, false, nil)
	id := uuid.New().String()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(middleware.HeaderRequestID, id)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, id, resp.Header.Get(middleware.HeaderRequestID))
}

func TestRunsRoute(t *testing.T) {
	t.Run("disabled without run history", func(t *testing.T) {
		env := newTestEnv(t, http.StatusOK, `{}`, false, nil)
		resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/runs", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("lists runs", func(t *testing.T) {
		finished := time.Date(2025, 1, 1, 12, 3, 0, 0, time.UTC)
		lister := &stubRunLister{runs: []*models.PipelineRun{{
			ID:          uuid.New(),
			DocumentRef: "https://example.com/a.pdf",
			OutputDir:   "output_a.pdf_20250101_120000",
			Status:      models.RunStatusSucceeded,
			StartedAt:   time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
			FinishedAt:  &finished,
		}}}
		env := newTestEnv(t, http.StatusOK, `{}`, false, lister)

		resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/runs?limit=5", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, 5, lister.limit)

		var body []map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body, 1)
		assert.Equal(t, "succeeded", body[0]["status"])
		assert.Equal(t, "2025-01-01T12:03:00Z", body[0]["finished_at"])
	})

	t.Run("rejects bad limit", func(t *testing.T) {
		env := newTestEnv(t, http.StatusOK, `{}`, false, &stubRunLister{})
		resp, err := env.app.Test(httptest.NewRequest(http.MethodGet, "/runs?limit=0", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
