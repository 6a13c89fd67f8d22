package handlers

import (
	"floify-api/internal/dto"

	"github.com/gofiber/fiber/v2"
)

const Banner = "Document to Floify API is running. Use /process-document endpoint for document processing."

// Health godoc
// @Summary Liveness check
// @Tags system
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{Status: "healthy"})
}

// Index godoc
// @Summary Service banner
// @Tags system
// @Produce plain
// @Success 200 {string} string
// @Router / [get]
func Index(c *fiber.Ctx) error {
	return c.SendString(Banner)
}
