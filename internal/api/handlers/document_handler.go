package handlers

import (
	"errors"
	"strings"

	"floify-api/internal/dto"
	"floify-api/internal/service"
	"floify-api/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	docService *service.DocumentService
	logger     *zap.Logger
}

func NewDocumentHandler(docService *service.DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		docService: docService,
		logger:     logger,
	}
}

// ProcessDocument godoc
// @Summary Convert a document into a Floify 1003 JSON
// @Description Runs OCR, text extraction and LLM transformation. document_url may be an http(s) URL or a path on the server.
// @Tags documents
// @Accept json
// @Produce json
// @Param request body dto.ProcessDocumentRequest true "Document reference"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /process-document [post]
func (h *DocumentHandler) ProcessDocument(c *fiber.Ctx) error {
	var req dto.ProcessDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if strings.TrimSpace(req.DocumentURL) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing document_url",
		})
	}

	h.logger.Info("Processing document", zap.String("document", req.DocumentURL))

	result, err := h.docService.Process(c.Context(), req.DocumentURL, service.ProcessOptions{
		RequestID: middleware.GetRequestID(c),
	})
	if err != nil {
		log := h.logger.Error
		if errors.Is(err, service.ErrDownloadFailed) || errors.Is(err, service.ErrDocumentNotFound) {
			log = h.logger.Warn
		}
		log("Document processing failed",
			zap.String("document", req.DocumentURL),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	doc, err := result.Bundle.ReadFloify()
	if err != nil {
		h.logger.Error("Floify JSON missing from output bundle",
			zap.String("output_dir", result.Bundle.Dir),
			zap.Bool("ocr_failed", result.OCRFailed),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to generate Floify JSON",
		})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(doc)
}
