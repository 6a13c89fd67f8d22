package service

import (
	"context"
	"sync"

	"floify-api/internal/models"

	"github.com/google/uuid"
)

type fakeCompleter struct {
	reply string
	err   error

	mu       sync.Mutex
	requests []CompletionRequest
}

func (f *fakeCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.reply, f.err
}

func (f *fakeCompleter) Model() string { return "fake" }

func (f *fakeCompleter) Close() error { return nil }

func (f *fakeCompleter) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		return ""
	}
	msgs := f.requests[len(f.requests)-1].Messages
	return msgs[len(msgs)-1].Content
}

type fakeOCR struct {
	result *models.OCRResult
	err    error
	calls  int
}

func (f *fakeOCR) Analyze(ctx context.Context, doc *models.Document) (*models.OCRResult, error) {
	f.calls++
	return f.result, f.err
}

func (f *fakeOCR) Name() string { return "fake" }

type finishedRun struct {
	id        uuid.UUID
	status    models.RunStatus
	errMsg    string
	ocrFailed bool
}

type fakeRecorder struct {
	created  []*models.PipelineRun
	finished []finishedRun
}

func (f *fakeRecorder) Create(ctx context.Context, run *models.PipelineRun) error {
	f.created = append(f.created, run)
	return nil
}

func (f *fakeRecorder) Finish(ctx context.Context, id uuid.UUID, status models.RunStatus, errMsg string, ocrFailed bool) error {
	f.finished = append(f.finished, finishedRun{id: id, status: status, errMsg: errMsg, ocrFailed: ocrFailed})
	return nil
}
