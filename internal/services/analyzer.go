package services

import (
	"errors"
	"fmt"

	"github.com/bobby-s-dev/transit-air-quality/internal/models"
	"github.com/bobby-s-dev/transit-air-quality/pkg/stats"
	"go.uber.org/zap"
)

var ErrInvalidRange = errors.New("start date is after end date")

// Analyzer derives chart data from the current dataset. Nothing is cached:
// every call reads whatever dataset the store holds at that moment.
type Analyzer struct {
	store  *DataStore
	logger *zap.Logger
}

func NewAnalyzer(store *DataStore, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		store:  store,
		logger: logger,
	}
}

func (a *Analyzer) Dataset() (*Dataset, error) {
	return a.store.Current()
}

func (a *Analyzer) series(city models.City, pollutant models.Pollutant) (models.DailySeries, models.DailySeries, error) {
	dataset, err := a.store.Current()
	if err != nil {
		return nil, nil, err
	}
	pSeries, err := dataset.PollutantSeries(city, pollutant)
	if err != nil {
		return nil, nil, err
	}
	mSeries, err := dataset.MobilitySeries(city)
	if err != nil {
		return nil, nil, err
	}
	return pSeries, mSeries, nil
}

// TimeSeries normalizes both series over the whole study year and then cuts
// them to [start, end], so the scale does not depend on the window. A side
// with no known values is left nil on every point.
func (a *Analyzer) TimeSeries(city models.City, pollutant models.Pollutant, start, end models.Date) (*models.TimeSeriesChart, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}

	pSeries, mSeries, err := a.series(city, pollutant)
	if err != nil {
		return nil, err
	}

	pNorm, err := normalizeSeries(pSeries)
	if err != nil {
		return nil, fmt.Errorf("normalize %s for %s: %w", pollutant, city, err)
	}
	mNorm, err := normalizeSeries(mSeries)
	if err != nil {
		return nil, fmt.Errorf("normalize transit for %s: %w", city, err)
	}

	chart := &models.TimeSeriesChart{
		City:      city,
		Pollutant: pollutant,
		Start:     start,
		End:       end,
		Points:    make([]models.TimeSeriesPoint, 0),
	}
	for _, p := range pSeries.Between(start, end) {
		point := models.TimeSeriesPoint{Date: p.Date, Interpolated: p.Interpolated()}
		if v, ok := pNorm[p.Date]; ok {
			point.Pollutant = &v
		}
		if v, ok := mNorm[p.Date]; ok {
			point.Transit = &v
		}
		chart.Points = append(chart.Points, point)
	}

	return chart, nil
}

// normalizeSeries min-max scales the known points of s, keyed by date.
func normalizeSeries(s models.DailySeries) (map[models.Date]float64, error) {
	known := s.Known()
	if len(known) == 0 {
		return map[models.Date]float64{}, nil
	}
	scaled, err := stats.Normalize(known.Values())
	if err != nil {
		return nil, err
	}
	out := make(map[models.Date]float64, len(known))
	for i, p := range known {
		out[p.Date] = scaled[i]
	}
	return out, nil
}

// PhaseAverages averages each series inside every lockdown phase. A phase
// with no known values yields nil rather than zero.
func (a *Analyzer) PhaseAverages(city models.City, pollutant models.Pollutant) (*models.PhaseChart, error) {
	pSeries, mSeries, err := a.series(city, pollutant)
	if err != nil {
		return nil, err
	}

	chart := &models.PhaseChart{
		City:      city,
		Pollutant: pollutant,
		Unit:      pollutant.Unit(),
		Phases:    make([]models.PhaseAverage, 0, len(models.AllPhases())),
	}
	for _, phase := range models.AllPhases() {
		start, end := phase.Range()
		pKnown := pSeries.Between(start, end).Known()

		avg := models.PhaseAverage{Phase: phase, Start: start, End: end, Days: len(pKnown)}
		if avg.Pollutant, err = phaseMean(pKnown); err != nil {
			return nil, fmt.Errorf("average %s in %s: %w", pollutant, phase, err)
		}
		if avg.Transit, err = phaseMean(mSeries.Between(start, end).Known()); err != nil {
			return nil, fmt.Errorf("average transit in %s: %w", phase, err)
		}
		chart.Phases = append(chart.Phases, avg)
	}

	return chart, nil
}

func phaseMean(s models.DailySeries) (*float64, error) {
	m, err := stats.Mean(s.Values())
	if errors.Is(err, stats.ErrEmpty) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Scatter aligns the two series and fits pollutant level against transit
// change. Degenerate inputs surface the stats sentinel errors unchanged.
func (a *Analyzer) Scatter(city models.City, pollutant models.Pollutant) (*models.ScatterChart, error) {
	pSeries, mSeries, err := a.series(city, pollutant)
	if err != nil {
		return nil, err
	}

	records := Align(pSeries, mSeries)
	xs := make([]float64, len(records))
	ys := make([]float64, len(records))
	for i, r := range records {
		xs[i] = r.TransitValue
		ys[i] = r.PollutantValue
	}

	line, err := stats.LinearRegression(xs, ys)
	if err != nil {
		return nil, fmt.Errorf("fit %s against transit for %s: %w", pollutant, city, err)
	}
	r, err := stats.Pearson(xs, ys)
	if err != nil {
		return nil, fmt.Errorf("correlate %s with transit for %s: %w", pollutant, city, err)
	}

	minX, maxX, err := stats.MinMax(xs)
	if err != nil {
		return nil, fmt.Errorf("trend range for %s: %w", city, err)
	}

	a.logger.Debug("Scatter computed",
		zap.String("city", city.String()),
		zap.String("pollutant", pollutant.String()),
		zap.Int("records", len(records)),
		zap.Float64("r", r))

	return &models.ScatterChart{
		City:      city,
		Pollutant: pollutant,
		Records:   records,
		Line:      line,
		Trend: [2]models.TrendPoint{
			{X: minX, Y: line.At(minX)},
			{X: maxX, Y: line.At(maxX)},
		},
		Correlation: r,
	}, nil
}
