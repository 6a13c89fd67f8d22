package dto

type RunResponse struct {
	ID          string `json:"id"`
	RequestID   string `json:"request_id,omitempty"`
	DocumentRef string `json:"document_ref"`
	OutputDir   string `json:"output_dir"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	OCRFailed   bool   `json:"ocr_failed"`
	StartedAt   string `json:"started_at"`
	FinishedAt  string `json:"finished_at,omitempty"`
}
