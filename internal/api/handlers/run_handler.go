package handlers

import (
	"context"
	"time"

	"floify-api/internal/dto"
	"floify-api/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

type RunLister interface {
	List(ctx context.Context, limit, offset int) ([]*models.PipelineRun, error)
}

type RunHandler struct {
	runs   RunLister
	logger *zap.Logger
}

func NewRunHandler(runs RunLister, logger *zap.Logger) *RunHandler {
	return &RunHandler{
		runs:   runs,
		logger: logger,
	}
}

// ListRuns godoc
// @Summary List pipeline runs
// @Description Newest first. Available only when run history is enabled.
// @Tags runs
// @Produce json
// @Param limit query int false "Page size (1-100)" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} dto.RunResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /runs [get]
func (h *RunHandler) ListRuns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultRunsLimit)
	offset := c.QueryInt("offset", 0)

	if limit < 1 || limit > maxRunsLimit {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "limit must be between 1 and 100",
		})
	}
	if offset < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "offset must not be negative",
		})
	}

	runs, err := h.runs.List(c.Context(), limit, offset)
	if err != nil {
		h.logger.Error("Failed to list pipeline runs", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list runs",
		})
	}

	response := make([]dto.RunResponse, 0, len(runs))
	for _, run := range runs {
		response = append(response, toRunResponse(run))
	}

	return c.JSON(response)
}

func toRunResponse(run *models.PipelineRun) dto.RunResponse {
	resp := dto.RunResponse{
		ID:          run.ID.String(),
		RequestID:   run.RequestID,
		DocumentRef: run.DocumentRef,
		OutputDir:   run.OutputDir,
		Status:      string(run.Status),
		Error:       run.Error,
		OCRFailed:   run.OCRFailed,
		StartedAt:   run.StartedAt.Format(time.RFC3339),
	}
	if run.FinishedAt != nil {
		resp.FinishedAt = run.FinishedAt.Format(time.RFC3339)
	}
	return resp
}
