package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bobby-s-dev/transit-air-quality/internal/models"
	"go.uber.org/zap"
)

// MeasurementFetcher is the acquisition source, normally the OpenAQ client.
type MeasurementFetcher interface {
	GetMeasurements(ctx context.Context, city models.City, pollutant models.Pollutant, from, to models.Date) ([]models.RawMeasurement, error)
}

// Pacer spaces consecutive fetches.
type Pacer interface {
	Wait(ctx context.Context) error
}

// PollutantFile is the layout of the pollutant input file, keyed by OpenAQ
// metro name and then pollutant id.
type PollutantFile map[string]map[string][]models.DailyAverage

// Collector downloads every city/pollutant pair one request at a time and
// reduces the raw measurements to daily averages.
type Collector struct {
	fetcher MeasurementFetcher
	pacer   Pacer
	logger  *zap.Logger
}

func NewCollector(fetcher MeasurementFetcher, pacer Pacer, logger *zap.Logger) *Collector {
	return &Collector{
		fetcher: fetcher,
		pacer:   pacer,
		logger:  logger,
	}
}

// Collect fetches the whole range for every tracked pair. The first failed
// pair aborts the run.
func (c *Collector) Collect(ctx context.Context, from, to models.Date) (PollutantFile, error) {
	startTime := time.Now()
	out := make(PollutantFile, len(models.AllCities()))

	for _, city := range models.AllCities() {
		byPollutant := make(map[string][]models.DailyAverage, len(models.AllPollutants()))

		for _, pollutant := range models.AllPollutants() {
			if err := c.pacer.Wait(ctx); err != nil {
				return nil, err
			}

			c.logger.Info("Fetching measurements",
				zap.String("city", city.String()),
				zap.String("pollutant", pollutant.String()))

			raw, err := c.fetcher.GetMeasurements(ctx, city, pollutant, from, to)
			if err != nil {
				return nil, fmt.Errorf("collect %s/%s: %w", city, pollutant, err)
			}

			readings, stats := NormalizeMeasurements(raw)
			if stats.Dropped() > 0 {
				c.logger.Debug("Dropped measurements",
					zap.String("city", city.String()),
					zap.String("pollutant", pollutant.String()),
					zap.Int("bad_date", stats.BadDate),
					zap.Int("missing_value", stats.MissingValue))
			}

			daily := Aggregate(readings)
			byPollutant[pollutant.String()] = daily

			c.logger.Info("Aggregated measurements",
				zap.String("city", city.String()),
				zap.String("pollutant", pollutant.String()),
				zap.Int("measurements", len(raw)),
				zap.Int("days", len(daily)))
		}

		out[city.MetroName()] = byPollutant
	}

	c.logger.Info("Collection completed", zap.Duration("duration", time.Since(startTime)))
	return out, nil
}

// WritePollutantFile writes data to path through a temporary file in the same
// directory, so a failed write never leaves a truncated file behind.
func WritePollutantFile(path string, data PollutantFile) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		tmp.Close()
		return fmt.Errorf("encode pollutant data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
