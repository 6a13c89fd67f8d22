package models

import (
	"encoding/json"
)

// OCRResult is the OCR vendor response. Only the parts the pipeline reads are
// decoded; Raw keeps the full response for the output bundle.
type OCRResult struct {
	Data *OCRData
	Raw  json.RawMessage
}

type OCRData struct {
	Markdown *string
	Chunks   []OCRChunk
}

type OCRChunk struct {
	Text *string
}

// UnmarshalJSON requires a JSON object at the top level but tolerates any shape
// below it: unexpected types for data, markdown, chunks or text are treated as absent.
func (r *OCRResult) UnmarshalJSON(b []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(b, &top); err != nil {
		return err
	}

	r.Raw = append(json.RawMessage(nil), b...)
	r.Data = nil

	rawData, ok := top["data"]
	if !ok {
		return nil
	}
	var data map[string]json.RawMessage
	if err := json.Unmarshal(rawData, &data); err != nil || data == nil {
		return nil
	}

	r.Data = &OCRData{}
	if rawMarkdown, ok := data["markdown"]; ok {
		var md string
		if json.Unmarshal(rawMarkdown, &md) == nil {
			r.Data.Markdown = &md
		}
	}

	rawChunks, ok := data["chunks"]
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if json.Unmarshal(rawChunks, &items) != nil {
		return nil
	}
	r.Data.Chunks = make([]OCRChunk, 0, len(items))
	for _, item := range items {
		var fields map[string]json.RawMessage
		if json.Unmarshal(item, &fields) != nil {
			continue
		}
		chunk := OCRChunk{}
		if rawText, ok := fields["text"]; ok {
			var text string
			if json.Unmarshal(rawText, &text) == nil {
				chunk.Text = &text
			}
		}
		r.Data.Chunks = append(r.Data.Chunks, chunk)
	}

	return nil
}

type ocrChunkPayload struct {
	Text string `json:"text"`
}

type ocrPayload struct {
	Data struct {
		Chunks []ocrChunkPayload `json:"chunks"`
	} `json:"data"`
}

// NewChunkedOCRResult builds a vendor-shaped result from ordered text chunks,
// used by OCR providers that produce plain text rather than vendor JSON.
func NewChunkedOCRResult(texts []string) (*OCRResult, error) {
	var payload ocrPayload
	payload.Data.Chunks = make([]ocrChunkPayload, 0, len(texts))
	for _, text := range texts {
		payload.Data.Chunks = append(payload.Data.Chunks, ocrChunkPayload{Text: text})
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var result OCRResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
