package service

import "errors"

var (
	ErrInvalidReference = errors.New("missing or invalid document reference")
	ErrDownloadFailed   = errors.New("download failed")
	ErrDocumentNotFound = errors.New("document not found")
	ErrOCRFailed        = errors.New("ocr request failed")
	ErrNoCompletion     = errors.New("no completion in LLM response")
)
