package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bobby-s-dev/transit-air-quality/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeFetcher struct {
	calls  []string
	failOn string
}

func (f *fakeFetcher) GetMeasurements(_ context.Context, city models.City, pollutant models.Pollutant, _, _ models.Date) ([]models.RawMeasurement, error) {
	key := city.String() + "/" + pollutant.String()
	f.calls = append(f.calls, key)
	if key == f.failOn {
		return nil, errors.New("upstream unavailable")
	}
	return []models.RawMeasurement{
		{Location: "north", Parameter: pollutant.String(), Value: 1, DateUTC: "2020-01-01T01:00:00+00:00"},
		{Location: "south", Parameter: pollutant.String(), Value: 3, DateUTC: "2020-01-01T13:00:00+00:00"},
		{Location: "north", Parameter: pollutant.String(), Value: 5, DateUTC: "2020-01-01T22:00:00+00:00"},
		{Location: "north", Parameter: pollutant.String(), Value: 8, DateUTC: "2020-01-03T00:00:00+00:00"},
	}, nil
}

type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

func TestCollectorCollect(t *testing.T) {
	t.Run("fetches every pair in order", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		pacer := &countingPacer{}
		c := NewCollector(fetcher, pacer, zap.NewNop())

		data, err := c.Collect(context.Background(), models.StudyStart, models.StudyEnd)
		require.NoError(t, err)

		pairs := len(models.AllCities()) * len(models.AllPollutants())
		assert.Len(t, fetcher.calls, pairs)
		assert.Equal(t, pairs, pacer.waits)
		assert.Equal(t, "chicago/pm25", fetcher.calls[0])

		daily := data[models.NewYork.MetroName()]["so2"]
		require.Len(t, daily, 2)
		assert.Equal(t, models.DailyAverage{Date: day(1), Average: 3, ReadingCount: 3}, daily[0])
		assert.Equal(t, models.DailyAverage{Date: day(3), Average: 8, ReadingCount: 1}, daily[1])
	})

	t.Run("first failure aborts", func(t *testing.T) {
		fetcher := &fakeFetcher{failOn: "seattle/so2"}
		c := NewCollector(fetcher, &countingPacer{}, zap.NewNop())

		data, err := c.Collect(context.Background(), models.StudyStart, models.StudyEnd)
		assert.Error(t, err)
		assert.Nil(t, data)
		assert.Equal(t, "seattle/so2", fetcher.calls[len(fetcher.calls)-1])
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		fetcher := &fakeFetcher{}
		c := NewCollector(fetcher, &countingPacer{}, zap.NewNop())

		_, err := c.Collect(ctx, models.StudyStart, models.StudyEnd)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, fetcher.calls)
	})
}

func TestWritePollutantFile(t *testing.T) {
	fetcher := &fakeFetcher{}
	c := NewCollector(fetcher, &countingPacer{}, zap.NewNop())
	data, err := c.Collect(context.Background(), models.StudyStart, models.StudyEnd)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "nested", "data_all.json")
	require.NoError(t, WritePollutantFile(path, data))

	loader := NewLoader(path, "", zap.NewNop())
	got, err := loader.readPollutants(path)
	require.NoError(t, err)
	require.Len(t, got, len(models.AllCities()))
	assert.Equal(t, data[models.Miami.MetroName()]["no2"], got[models.Miami][models.NO2])

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temporary file must be cleaned up")
}
