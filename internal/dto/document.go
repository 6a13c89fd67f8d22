package dto

type ProcessDocumentRequest struct {
	DocumentURL string `json:"document_url" example:"https://example.com/sample.pdf"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status" example:"healthy"`
}
