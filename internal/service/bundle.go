package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	OCRResultsFile    = "landingai_results.json"
	ExtractedTextFile = "extracted_text.txt"
	LLMResponseFile   = "llm_response.txt"
	FloifyFile        = "floify_1003.json"

	bundleTimeLayout = "20060102_150405"
)

// OutputBundle is the per-request artifact directory. It is never cleaned up,
// and two documents with the same base name in the same second share a directory.
type OutputBundle struct {
	Dir string
}

// BundleDirName returns output_<base>_<YYYYmmdd_HHMMSS>.
func BundleDirName(base string, now time.Time) string {
	return fmt.Sprintf("output_%s_%s", base, now.Format(bundleTimeLayout))
}

// OpenBundle creates dir (and parents) if needed.
func OpenBundle(dir string) (*OutputBundle, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}
	return &OutputBundle{Dir: dir}, nil
}

func (b *OutputBundle) Path(name string) string {
	return filepath.Join(b.Dir, name)
}

func (b *OutputBundle) Has(name string) bool {
	_, err := os.Stat(b.Path(name))
	return err == nil
}

func (b *OutputBundle) WriteOCRResults(raw json.RawMessage) error {
	return b.writeJSON(OCRResultsFile, raw)
}

func (b *OutputBundle) WriteExtractedText(text string) error {
	return b.write(ExtractedTextFile, []byte(text))
}

func (b *OutputBundle) WriteLLMResponse(reply string) error {
	return b.write(LLMResponseFile, []byte(reply))
}

func (b *OutputBundle) WriteFloify(doc json.RawMessage) error {
	return b.writeJSON(FloifyFile, doc)
}

// ReadFloify returns the final document, failing when it is absent or not a JSON object.
func (b *OutputBundle) ReadFloify() (json.RawMessage, error) {
	data, err := os.ReadFile(b.Path(FloifyFile))
	if err != nil {
		return nil, err
	}
	doc, err := decodeObject(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", FloifyFile, err)
	}
	return doc, nil
}

// writeJSON stores raw re-indented with two spaces, keeping the key order it arrived in.
func (b *OutputBundle) writeJSON(name string, raw json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("indent %s: %w", name, err)
	}
	return b.write(name, buf.Bytes())
}

func (b *OutputBundle) write(name string, data []byte) error {
	if err := os.WriteFile(b.Path(name), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
