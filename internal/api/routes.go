package api

import (
	"time"

	apperrors "github.com/bobby-s-dev/transit-air-quality/internal/pkg/errors"
	"github.com/bobby-s-dev/transit-air-quality/internal/pkg/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

func SetupRoutes(app *fiber.App, handler *Handler, log *zap.Logger) {
	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD",
	}))
	app.Use(compress.New())

	app.Use(logger.New(logger.Config{
		Format:     "${time} ${pid} ${locals:requestid} ${status} - ${method} ${path}\n",
		TimeFormat: time.RFC3339,
	}))

	// API v1 routes
	api := app.Group("/api/v1")

	api.Get("/health", handler.GetHealth)

	// Reference data
	api.Get("/cities", handler.GetCities)
	api.Get("/pollutants", handler.GetPollutants)
	api.Get("/phases", handler.GetPhases)

	// Reconciled series
	series := api.Group("/series")
	series.Get("/pollutant", handler.GetPollutantSeries)
	series.Get("/mobility", handler.GetMobilitySeries)

	// Chart data
	charts := api.Group("/charts")
	charts.Get("/timeseries", handler.GetTimeSeriesChart)
	charts.Get("/phases", handler.GetPhaseChart)
	charts.Get("/scatter", handler.GetScatterChart)

	api.Get("/export.xlsx", handler.ExportWorkbook)

	admin := api.Group("/admin")
	admin.Post("/reload", handler.Reload)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		log.Debug("Endpoint not found", zap.String("path", c.Path()))
		return utils.SendError(c, apperrors.New("NOT_FOUND", "Endpoint not found", fiber.StatusNotFound))
	})
}
