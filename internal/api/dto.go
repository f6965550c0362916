package api

import (
	"time"

	"github.com/bobby-s-dev/transit-air-quality/internal/models"
	"github.com/bobby-s-dev/transit-air-quality/internal/services"
)

type SeriesRequest struct {
	City      string `query:"city" validate:"required"`
	Pollutant string `query:"pollutant" validate:"required"`
}

type MobilityRequest struct {
	City string `query:"city" validate:"required"`
}

type TimeSeriesRequest struct {
	City      string `query:"city" validate:"required"`
	Pollutant string `query:"pollutant" validate:"required"`
	Start     string `query:"start" validate:"omitempty,datetime=2006-01-02"`
	End       string `query:"end" validate:"omitempty,datetime=2006-01-02"`
}

type CityResponse struct {
	ID        models.City   `json:"id"`
	Name      string        `json:"name"`
	MetroName string        `json:"metroName"`
	County    models.County `json:"county"`
}

type PollutantResponse struct {
	ID          models.Pollutant `json:"id"`
	Label       string           `json:"label"`
	Unit        string           `json:"unit"`
	Description string           `json:"description"`
}

type PhaseResponse struct {
	Name  models.Phase `json:"name"`
	Start models.Date  `json:"start"`
	End   models.Date  `json:"end"`
}

type PollutantSeriesResponse struct {
	City      models.City            `json:"city"`
	Pollutant models.Pollutant       `json:"pollutant"`
	Unit      string                 `json:"unit"`
	Summary   services.SeriesSummary `json:"summary"`
	Points    models.DailySeries     `json:"points"`
}

type MobilitySeriesResponse struct {
	City   models.City        `json:"city"`
	Points models.DailySeries `json:"points"`
}

type HealthResponse struct {
	Status    string                 `json:"status"`
	DatasetID string                 `json:"datasetId,omitempty"`
	LoadedAt  *time.Time             `json:"loadedAt,omitempty"`
	Uptime    string                 `json:"uptime"`
	Store     map[string]interface{} `json:"store"`
	Scheduler map[string]interface{} `json:"scheduler,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}
