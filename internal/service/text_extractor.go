package service

import (
	"strings"

	"floify-api/internal/models"
)

// ExtractText flattens an OCR result into plain text. data.markdown wins when
// present (even if empty); otherwise each chunk text is emitted followed by a
// blank line. Absent structure yields "".
func ExtractText(result *models.OCRResult) string {
	if result == nil || result.Data == nil {
		return ""
	}

	if result.Data.Markdown != nil {
		return *result.Data.Markdown
	}

	var b strings.Builder
	for _, chunk := range result.Data.Chunks {
		if chunk.Text == nil {
			continue
		}
		b.WriteString(*chunk.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}
