package models

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type DocumentSource string

const (
	DocumentSourceURL   DocumentSource = "url"
	DocumentSourceLocal DocumentSource = "local"

	DefaultExtension = ".pdf"
)

// Document is a resolved document reference. Remote documents carry their
// downloaded Content; local documents carry a Path that is opened on demand.
type Document struct {
	Reference string
	Source    DocumentSource
	FileName  string
	Path      string
	Content   []byte
}

// Extension returns the lowercased file extension, defaulting to .pdf.
func (d *Document) Extension() string {
	ext := strings.ToLower(filepath.Ext(d.FileName))
	if ext == "" {
		return DefaultExtension
	}
	return ext
}

func (d *Document) IsPDF() bool {
	return d.Extension() == ".pdf"
}

// UploadField is the multipart field name the OCR vendor expects for this document.
func (d *Document) UploadField() string {
	if d.IsPDF() {
		return "pdf"
	}
	return "image"
}

// Open returns a reader over the document bytes. The caller must close it.
func (d *Document) Open() (io.ReadCloser, error) {
	if d.Source == DocumentSourceLocal {
		return os.Open(d.Path)
	}
	return io.NopCloser(bytes.NewReader(d.Content)), nil
}
