package api

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/bobby-s-dev/transit-air-quality/internal/models"
	apperrors "github.com/bobby-s-dev/transit-air-quality/internal/pkg/errors"
	"github.com/bobby-s-dev/transit-air-quality/internal/pkg/utils"
	"github.com/bobby-s-dev/transit-air-quality/internal/pkg/validator"
	"github.com/bobby-s-dev/transit-air-quality/internal/services"
	"github.com/bobby-s-dev/transit-air-quality/pkg/stats"
	playground "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Reloader rebuilds the dataset from the input files.
type Reloader interface {
	Reload(ctx context.Context) error
}

// StatusReporter exposes the state of the reload schedule.
type StatusReporter interface {
	GetStatus() map[string]interface{}
}

type Handler struct {
	analyzer  *services.Analyzer
	store     *services.DataStore
	reloader  Reloader
	scheduler StatusReporter
	logger    *zap.Logger
	startTime time.Time
}

func NewHandler(analyzer *services.Analyzer, store *services.DataStore, reloader Reloader, logger *zap.Logger) *Handler {
	return &Handler{
		analyzer:  analyzer,
		store:     store,
		reloader:  reloader,
		logger:    logger,
		startTime: time.Now(),
	}
}

// SetScheduler adds the reload schedule to the health report.
func (h *Handler) SetScheduler(s StatusReporter) {
	h.scheduler = s
}

// GetHealth handles GET /api/v1/health
func (h *Handler) GetHealth(c *fiber.Ctx) error {
	resp := HealthResponse{
		Status:    "healthy",
		Uptime:    time.Since(h.startTime).String(),
		Store:     h.store.GetStats(),
		Timestamp: time.Now(),
	}
	if h.scheduler != nil {
		resp.Scheduler = h.scheduler.GetStatus()
	}

	dataset, err := h.store.Current()
	if err != nil {
		resp.Status = "loading"
		c.Status(fiber.StatusServiceUnavailable)
		return utils.SendSuccess(c, resp, nil)
	}

	resp.DatasetID = dataset.ID
	resp.LoadedAt = &dataset.LoadedAt
	return utils.SendSuccess(c, resp, nil)
}

// GetCities handles GET /api/v1/cities
func (h *Handler) GetCities(c *fiber.Ctx) error {
	cities := make([]CityResponse, 0, len(models.AllCities()))
	for _, city := range models.AllCities() {
		cities = append(cities, CityResponse{
			ID:        city,
			Name:      city.DisplayName(),
			MetroName: city.MetroName(),
			County:    city.County(),
		})
	}
	return utils.SendSuccess(c, cities, &utils.Meta{Total: len(cities)})
}

// GetPollutants handles GET /api/v1/pollutants
func (h *Handler) GetPollutants(c *fiber.Ctx) error {
	pollutants := make([]PollutantResponse, 0, len(models.AllPollutants()))
	for _, p := range models.AllPollutants() {
		pollutants = append(pollutants, PollutantResponse{
			ID:          p,
			Label:       p.Label(),
			Unit:        p.Unit(),
			Description: p.Description(),
		})
	}
	return utils.SendSuccess(c, pollutants, &utils.Meta{Total: len(pollutants)})
}

// GetPhases handles GET /api/v1/phases
func (h *Handler) GetPhases(c *fiber.Ctx) error {
	phases := make([]PhaseResponse, 0, len(models.AllPhases()))
	for _, p := range models.AllPhases() {
		start, end := p.Range()
		phases = append(phases, PhaseResponse{Name: p, Start: start, End: end})
	}
	return utils.SendSuccess(c, phases, &utils.Meta{Total: len(phases)})
}

// GetPollutantSeries handles GET /api/v1/series/pollutant
func (h *Handler) GetPollutantSeries(c *fiber.Ctx) error {
	req := SeriesRequest{City: c.Query("city"), Pollutant: c.Query("pollutant")}
	city, pollutant, err := parseSeriesRequest(req)
	if err != nil {
		return h.sendError(c, err)
	}

	dataset, err := h.store.Current()
	if err != nil {
		return h.sendError(c, err)
	}
	series, err := dataset.PollutantSeries(city, pollutant)
	if err != nil {
		return h.sendError(c, err)
	}

	return utils.SendSuccess(c, PollutantSeriesResponse{
		City:      city,
		Pollutant: pollutant,
		Unit:      pollutant.Unit(),
		Summary:   dataset.Summary(city, pollutant),
		Points:    series,
	}, &utils.Meta{Total: len(series), DatasetID: dataset.ID})
}

// GetMobilitySeries handles GET /api/v1/series/mobility
func (h *Handler) GetMobilitySeries(c *fiber.Ctx) error {
	req := MobilityRequest{City: c.Query("city")}
	if err := validator.Validate(&req); err != nil {
		return h.sendError(c, err)
	}
	city, err := models.ParseCity(req.City)
	if err != nil {
		return h.sendError(c, err)
	}

	dataset, err := h.store.Current()
	if err != nil {
		return h.sendError(c, err)
	}
	series, err := dataset.MobilitySeries(city)
	if err != nil {
		return h.sendError(c, err)
	}

	return utils.SendSuccess(c, MobilitySeriesResponse{City: city, Points: series},
		&utils.Meta{Total: len(series), DatasetID: dataset.ID})
}

// GetTimeSeriesChart handles GET /api/v1/charts/timeseries
func (h *Handler) GetTimeSeriesChart(c *fiber.Ctx) error {
	req := TimeSeriesRequest{
		City:      c.Query("city"),
		Pollutant: c.Query("pollutant"),
		Start:     c.Query("start"),
		End:       c.Query("end"),
	}
	if err := validator.Validate(&req); err != nil {
		return h.sendError(c, err)
	}
	city, pollutant, err := parseSeriesRequest(SeriesRequest{City: req.City, Pollutant: req.Pollutant})
	if err != nil {
		return h.sendError(c, err)
	}

	start, end := models.StudyStart, models.StudyEnd
	if req.Start != "" {
		if start, err = models.ParseDate(req.Start); err != nil {
			return h.sendError(c, apperrors.ErrInvalidRequest.WithMessage(err.Error()))
		}
	}
	if req.End != "" {
		if end, err = models.ParseDate(req.End); err != nil {
			return h.sendError(c, apperrors.ErrInvalidRequest.WithMessage(err.Error()))
		}
	}

	chart, err := h.analyzer.TimeSeries(city, pollutant, start, end)
	if err != nil {
		return h.sendError(c, err)
	}
	return utils.SendSuccess(c, chart, &utils.Meta{Total: len(chart.Points)})
}

// GetPhaseChart handles GET /api/v1/charts/phases
func (h *Handler) GetPhaseChart(c *fiber.Ctx) error {
	city, pollutant, err := parseSeriesRequest(SeriesRequest{City: c.Query("city"), Pollutant: c.Query("pollutant")})
	if err != nil {
		return h.sendError(c, err)
	}

	chart, err := h.analyzer.PhaseAverages(city, pollutant)
	if err != nil {
		return h.sendError(c, err)
	}
	return utils.SendSuccess(c, chart, nil)
}

// GetScatterChart handles GET /api/v1/charts/scatter
func (h *Handler) GetScatterChart(c *fiber.Ctx) error {
	city, pollutant, err := parseSeriesRequest(SeriesRequest{City: c.Query("city"), Pollutant: c.Query("pollutant")})
	if err != nil {
		return h.sendError(c, err)
	}

	chart, err := h.analyzer.Scatter(city, pollutant)
	if err != nil {
		return h.sendError(c, err)
	}
	return utils.SendSuccess(c, chart, &utils.Meta{Total: len(chart.Records)})
}

// ExportWorkbook handles GET /api/v1/export.xlsx
func (h *Handler) ExportWorkbook(c *fiber.Ctx) error {
	dataset, err := h.store.Current()
	if err != nil {
		return h.sendError(c, err)
	}

	var buf bytes.Buffer
	if err := services.WriteWorkbook(dataset, &buf); err != nil {
		return h.sendError(c, err)
	}

	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="transit-air-quality-`+dataset.ID+`.xlsx"`)
	return c.Send(buf.Bytes())
}

// Reload handles POST /api/v1/admin/reload
func (h *Handler) Reload(c *fiber.Ctx) error {
	h.logger.Info("Manual dataset reload requested", zap.String("ip", c.IP()))

	if err := h.reloader.Reload(c.UserContext()); err != nil {
		return utils.SendError(c, apperrors.ErrReloadFailed.WithMessage(err.Error()))
	}
	return utils.SendSuccess(c, h.store.GetStats(), nil)
}

func parseSeriesRequest(req SeriesRequest) (models.City, models.Pollutant, error) {
	if err := validator.Validate(&req); err != nil {
		return 0, 0, err
	}
	city, err := models.ParseCity(req.City)
	if err != nil {
		return 0, 0, err
	}
	pollutant, err := models.ParsePollutant(req.Pollutant)
	if err != nil {
		return 0, 0, err
	}
	return city, pollutant, nil
}

func (h *Handler) sendError(c *fiber.Ctx, err error) error {
	appErr := mapError(err)
	if appErr.StatusCode >= fiber.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.Path()),
			zap.Error(err))
	} else {
		h.logger.Debug("Request rejected",
			zap.String("path", c.Path()),
			zap.String("code", appErr.Code),
			zap.Error(err))
	}
	return utils.SendError(c, appErr)
}

// mapError translates domain errors into API errors.
func mapError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	var validationErrs playground.ValidationErrors
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.As(err, &validationErrs):
		fields := make(map[string]interface{}, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Field()] = fe.Tag()
		}
		return apperrors.ErrInvalidRequest.
			WithMessage("invalid query parameters").
			WithDetails(map[string]interface{}{"fields": fields})
	case errors.Is(err, models.ErrUnknownCity):
		return apperrors.ErrUnknownCity.WithMessage(err.Error())
	case errors.Is(err, models.ErrUnknownPollutant):
		return apperrors.ErrUnknownPollutant.WithMessage(err.Error())
	case errors.Is(err, services.ErrInvalidRange):
		return apperrors.ErrInvalidDateRange
	case errors.Is(err, services.ErrDatasetNotReady):
		return apperrors.ErrDatasetNotReady
	case errors.Is(err, services.ErrSeriesNotFound):
		return apperrors.ErrSeriesNotFound.WithMessage(err.Error())
	case errors.Is(err, stats.ErrZeroVariance), errors.Is(err, stats.ErrZeroRange):
		return apperrors.ErrZeroVariance.WithMessage(err.Error())
	case errors.Is(err, stats.ErrEmpty), errors.Is(err, stats.ErrLengthMismatch), errors.Is(err, stats.ErrNonFinite):
		return apperrors.ErrInsufficientData.WithMessage(err.Error())
	}
	return apperrors.ErrInternalServer
}
