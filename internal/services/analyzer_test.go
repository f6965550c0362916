package services

import (
	"testing"

	"github.com/bobby-s-dev/transit-air-quality/internal/models"
	"github.com/bobby-s-dev/transit-air-quality/pkg/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	store := NewDataStore(zap.NewNop())
	store.Publish(testDataset(t))
	return NewAnalyzer(store, zap.NewNop())
}

func TestAnalyzerTimeSeries(t *testing.T) {
	a := testAnalyzer(t)

	t.Run("normalized over the whole year", func(t *testing.T) {
		chart, err := a.TimeSeries(models.Chicago, models.PM25, models.StudyStart, models.StudyEnd)
		require.NoError(t, err)
		require.Len(t, chart.Points, 366)

		first := chart.Points[0]
		require.NotNil(t, first.Pollutant)
		require.NotNil(t, first.Transit)
		assert.InDelta(t, 0.0, *first.Pollutant, 1e-12)
		assert.InDelta(t, 0.0, *first.Transit, 1e-12)

		last := chart.Points[99]
		assert.InDelta(t, 1.0, *last.Pollutant, 1e-12)
		assert.InDelta(t, 1.0, *last.Transit, 1e-12)

		assert.Nil(t, chart.Points[200].Pollutant)
		assert.Nil(t, chart.Points[200].Transit)
	})

	t.Run("window does not rescale", func(t *testing.T) {
		chart, err := a.TimeSeries(models.Chicago, models.PM25, day(50), day(60))
		require.NoError(t, err)
		require.Len(t, chart.Points, 11)
		assert.Equal(t, day(50), chart.Points[0].Date)
		assert.InDelta(t, 98.0/198.0, *chart.Points[0].Pollutant, 1e-12)
		assert.InDelta(t, 49.0/99.0, *chart.Points[0].Transit, 1e-12)
	})

	t.Run("start after end", func(t *testing.T) {
		_, err := a.TimeSeries(models.Chicago, models.PM25, day(10), day(5))
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("flat series", func(t *testing.T) {
		_, err := a.TimeSeries(models.Miami, models.PM25, models.StudyStart, models.StudyEnd)
		assert.ErrorIs(t, err, stats.ErrZeroRange)
	})

	t.Run("city without mobility rows", func(t *testing.T) {
		pollutants, mobility := testInputs()
		pollutants[models.Miami][models.PM25] = []models.DailyAverage{
			{Date: day(1), Average: 10, ReadingCount: 1},
			{Date: day(3), Average: 30, ReadingCount: 1},
		}
		d, err := NewDataset(pollutants, mobility, models.StudyStart, models.StudyEnd, zap.NewNop())
		require.NoError(t, err)
		store := NewDataStore(zap.NewNop())
		store.Publish(d)

		chart, err := NewAnalyzer(store, zap.NewNop()).TimeSeries(models.Miami, models.PM25, day(1), day(3))
		require.NoError(t, err)
		require.Len(t, chart.Points, 3)
		for _, p := range chart.Points {
			assert.Nil(t, p.Transit)
		}
		require.NotNil(t, chart.Points[1].Pollutant)
		assert.InDelta(t, 0.5, *chart.Points[1].Pollutant, 1e-12)
		assert.True(t, chart.Points[1].Interpolated)
	})
}

func TestAnalyzerPhaseAverages(t *testing.T) {
	a := testAnalyzer(t)

	chart, err := a.PhaseAverages(models.Chicago, models.PM25)
	require.NoError(t, err)
	require.Len(t, chart.Phases, 3)

	pre := chart.Phases[0]
	assert.Equal(t, models.PreLockdown, pre.Phase)
	assert.Equal(t, 60, pre.Days)
	assert.InDelta(t, 162.0, *pre.Pollutant, 1e-9)
	assert.InDelta(t, -19.5, *pre.Transit, 1e-9)

	lockdown := chart.Phases[1]
	assert.Equal(t, 40, lockdown.Days)
	assert.InDelta(t, 262.0, *lockdown.Pollutant, 1e-9)
	assert.InDelta(t, 30.5, *lockdown.Transit, 1e-9)

	post := chart.Phases[2]
	assert.Equal(t, 0, post.Days)
	assert.Nil(t, post.Pollutant)
	assert.Nil(t, post.Transit)
}

func TestAnalyzerScatter(t *testing.T) {
	a := testAnalyzer(t)

	t.Run("exact linear relation", func(t *testing.T) {
		chart, err := a.Scatter(models.Chicago, models.PM25)
		require.NoError(t, err)
		assert.Len(t, chart.Records, 100)
		assert.InDelta(t, 2.0, chart.Line.Slope, 1e-9)
		assert.InDelta(t, 201.0, chart.Line.Intercept, 1e-9)
		assert.InDelta(t, 1.0, chart.Correlation, 1e-12)
		assert.Equal(t, -49.0, chart.Trend[0].X)
		assert.InDelta(t, 103.0, chart.Trend[0].Y, 1e-9)
		assert.Equal(t, 50.0, chart.Trend[1].X)
		assert.InDelta(t, 301.0, chart.Trend[1].Y, 1e-9)
	})

	t.Run("flat pollutant", func(t *testing.T) {
		_, err := a.Scatter(models.Seattle, models.PM25)
		assert.ErrorIs(t, err, stats.ErrZeroVariance)
	})

	t.Run("no overlap", func(t *testing.T) {
		_, err := a.Scatter(models.Miami, models.PM25)
		assert.ErrorIs(t, err, stats.ErrEmpty)
	})

	t.Run("not ready", func(t *testing.T) {
		empty := NewAnalyzer(NewDataStore(zap.NewNop()), zap.NewNop())
		_, err := empty.Scatter(models.Chicago, models.PM25)
		assert.ErrorIs(t, err, ErrDatasetNotReady)
	})
}
