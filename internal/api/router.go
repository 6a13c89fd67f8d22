package api

import (
	"fmt"
	"runtime/debug"

	"floify-api/docs"
	"floify-api/internal/api/handlers"
	"floify-api/pkg/config"
	"floify-api/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// SetupRouter builds the HTTP app. runHandler may be nil when run history is disabled.
func SetupRouter(
	serverCfg *config.ServerConfig,
	docHandler *handlers.DocumentHandler,
	runHandler *handlers.RunHandler,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:           "floify-api",
		ReadTimeout:       serverCfg.ReadTimeout,
		WriteTimeout:      serverCfg.WriteTimeout,
		EnablePrintRoutes: serverCfg.Debug,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			appLogger.Error("Unhandled panic",
				zap.String("path", c.Path()),
				zap.String("request_id", middleware.GetRequestID(c)),
				zap.String("panic", fmt.Sprint(e)),
				zap.ByteString("stack", debug.Stack()),
			)
		},
	}))
	app.Use(middleware.RequestID(appLogger))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept," + middleware.HeaderRequestID,
		ExposeHeaders: middleware.HeaderRequestID,
	}))
	app.Use(logger.New(logger.Config{
		Format: "${time} | ${status} | ${latency} | ${method} ${path} | ${respHeader:" + middleware.HeaderRequestID + "}\n",
	}))

	// Swagger
	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/", handlers.Index)
	app.Get("/health", handlers.Health)
	app.Post("/process-document", docHandler.ProcessDocument)

	if runHandler != nil {
		app.Get("/runs", runHandler.ListRuns)
	}

	return app
}
