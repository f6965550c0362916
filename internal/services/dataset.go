package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/bobby-s-dev/transit-air-quality/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrDatasetNotReady = errors.New("dataset not loaded yet")
	ErrSeriesNotFound  = errors.New("series not found")
)

// SeriesSummary describes how a series was assembled.
type SeriesSummary struct {
	Observed     int `json:"observed"`
	Interpolated int `json:"interpolated"`
	Unresolved   int `json:"unresolved"`
}

// Dataset is the reconciled output of one pipeline run. It is never modified
// after NewDataset returns; accessors hand out copies.
type Dataset struct {
	ID       string
	LoadedAt time.Time
	Start    models.Date
	End      models.Date

	pollutants map[models.City]map[models.Pollutant]models.DailySeries
	mobility   map[models.City]models.DailySeries
	summaries  map[models.City]map[models.Pollutant]SeriesSummary
}

// NewDataset runs the gap filler and interpolator over every tracked
// city/pollutant pair and aggregates the mobility readings per city.
func NewDataset(
	pollutants map[models.City]map[models.Pollutant][]models.DailyAverage,
	mobility map[models.City][]models.Reading,
	start, end models.Date,
	logger *zap.Logger,
) (*Dataset, error) {
	d := &Dataset{
		ID:         uuid.NewString(),
		LoadedAt:   time.Now(),
		Start:      start,
		End:        end,
		pollutants: make(map[models.City]map[models.Pollutant]models.DailySeries, len(models.AllCities())),
		mobility:   make(map[models.City]models.DailySeries, len(models.AllCities())),
		summaries:  make(map[models.City]map[models.Pollutant]SeriesSummary, len(models.AllCities())),
	}

	for _, city := range models.AllCities() {
		byPollutant, ok := pollutants[city]
		if !ok {
			return nil, fmt.Errorf("no pollutant data for city %s", city)
		}

		d.pollutants[city] = make(map[models.Pollutant]models.DailySeries, len(models.AllPollutants()))
		d.summaries[city] = make(map[models.Pollutant]SeriesSummary, len(models.AllPollutants()))

		for _, pollutant := range models.AllPollutants() {
			averages, ok := byPollutant[pollutant]
			if !ok {
				return nil, fmt.Errorf("no %s data for city %s", pollutant, city)
			}

			filled, err := FillGaps(Combine(averages), start, end)
			if err != nil {
				return nil, fmt.Errorf("fill gaps for %s/%s: %w", city, pollutant, err)
			}
			series := Interpolate(filled)

			counts := series.Counts()
			summary := SeriesSummary{
				Observed:     counts[models.QualityObserved],
				Interpolated: counts[models.QualityInterpolated],
				Unresolved:   counts[models.QualityUnresolved],
			}
			if summary.Unresolved > 0 {
				logger.Debug("Series has unbounded gaps",
					zap.String("city", city.String()),
					zap.String("pollutant", pollutant.String()),
					zap.Int("unresolved", summary.Unresolved))
			}

			d.pollutants[city][pollutant] = series
			d.summaries[city][pollutant] = summary
		}

		d.mobility[city] = mobilitySeries(mobility[city])
		if len(d.mobility[city]) == 0 {
			logger.Warn("No mobility data for city", zap.String("city", city.String()))
		}
	}

	return d, nil
}

// mobilitySeries keeps only observed days; the mobility calendar is not gap
// filled.
func mobilitySeries(readings []models.Reading) models.DailySeries {
	daily := Aggregate(readings)
	series := make(models.DailySeries, len(daily))
	for i, a := range daily {
		series[i] = models.Point{Date: a.Date, Value: a.Average, Quality: models.QualityObserved}
	}
	return series
}

func (d *Dataset) PollutantSeries(city models.City, pollutant models.Pollutant) (models.DailySeries, error) {
	series, ok := d.pollutants[city][pollutant]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrSeriesNotFound, city, pollutant)
	}
	out := make(models.DailySeries, len(series))
	copy(out, series)
	return out, nil
}

func (d *Dataset) MobilitySeries(city models.City) (models.DailySeries, error) {
	series, ok := d.mobility[city]
	if !ok {
		return nil, fmt.Errorf("%w: mobility/%s", ErrSeriesNotFound, city)
	}
	out := make(models.DailySeries, len(series))
	copy(out, series)
	return out, nil
}

func (d *Dataset) Summary(city models.City, pollutant models.Pollutant) SeriesSummary {
	return d.summaries[city][pollutant]
}
