package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bobby-s-dev/transit-air-quality/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testInputs builds a full input set. Every series is flat at 5 except
// Chicago PM2.5, which is observed on days 1..100 as 2*transit + 201 where
// Chicago transit is day-50. Seattle has ten days of transit data; the other
// cities have none.
func testInputs() (map[models.City]map[models.Pollutant][]models.DailyAverage, map[models.City][]models.Reading) {
	pollutants := make(map[models.City]map[models.Pollutant][]models.DailyAverage)
	for _, c := range models.AllCities() {
		pollutants[c] = make(map[models.Pollutant][]models.DailyAverage)
		for _, p := range models.AllPollutants() {
			pollutants[c][p] = []models.DailyAverage{
				{Date: day(1), Average: 5, ReadingCount: 2},
				{Date: day(366), Average: 5, ReadingCount: 2},
			}
		}
	}

	chicago := make([]models.DailyAverage, 0, 100)
	mobility := map[models.City][]models.Reading{}
	for i := 1; i <= 100; i++ {
		transit := float64(i - 50)
		chicago = append(chicago, models.DailyAverage{Date: day(i), Average: 2*transit + 201, ReadingCount: 1})
		mobility[models.Chicago] = append(mobility[models.Chicago], models.Reading{Date: day(i), Value: transit})
	}
	pollutants[models.Chicago][models.PM25] = chicago

	for i := 1; i <= 10; i++ {
		mobility[models.Seattle] = append(mobility[models.Seattle], models.Reading{Date: day(i), Value: float64(i)})
	}

	return pollutants, mobility
}

func testDataset(t *testing.T) *Dataset {
	t.Helper()
	pollutants, mobility := testInputs()
	d, err := NewDataset(pollutants, mobility, models.StudyStart, models.StudyEnd, zap.NewNop())
	require.NoError(t, err)
	return d
}

func TestNewDataset(t *testing.T) {
	t.Run("builds every series", func(t *testing.T) {
		d := testDataset(t)
		assert.NotEmpty(t, d.ID)

		for _, c := range models.AllCities() {
			for _, p := range models.AllPollutants() {
				s, err := d.PollutantSeries(c, p)
				require.NoError(t, err)
				assert.Len(t, s, 366)
			}
		}

		assert.Equal(t, SeriesSummary{Observed: 100, Unresolved: 266}, d.Summary(models.Chicago, models.PM25))
		assert.Equal(t, SeriesSummary{Observed: 2, Interpolated: 364}, d.Summary(models.Miami, models.NO2))

		m, err := d.MobilitySeries(models.Chicago)
		require.NoError(t, err)
		assert.Len(t, m, 100)

		m, err = d.MobilitySeries(models.Miami)
		require.NoError(t, err)
		assert.Empty(t, m)
	})

	t.Run("accessors return copies", func(t *testing.T) {
		d := testDataset(t)
		s, err := d.PollutantSeries(models.Chicago, models.PM25)
		require.NoError(t, err)
		s[0].Value = -1

		again, err := d.PollutantSeries(models.Chicago, models.PM25)
		require.NoError(t, err)
		assert.Equal(t, 103.0, again[0].Value)
	})

	t.Run("missing city", func(t *testing.T) {
		pollutants, mobility := testInputs()
		delete(pollutants, models.Miami)
		_, err := NewDataset(pollutants, mobility, models.StudyStart, models.StudyEnd, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("missing pollutant", func(t *testing.T) {
		pollutants, mobility := testInputs()
		delete(pollutants[models.Seattle], models.SO2)
		_, err := NewDataset(pollutants, mobility, models.StudyStart, models.StudyEnd, zap.NewNop())
		assert.Error(t, err)
	})

	t.Run("unknown series", func(t *testing.T) {
		d := testDataset(t)
		_, err := d.PollutantSeries(models.City(99), models.PM25)
		assert.ErrorIs(t, err, ErrSeriesNotFound)
	})
}

func TestDataStore(t *testing.T) {
	t.Run("not ready before first publish", func(t *testing.T) {
		store := NewDataStore(zap.NewNop())
		_, err := store.Current()
		assert.ErrorIs(t, err, ErrDatasetNotReady)

		select {
		case <-store.Ready():
			t.Fatal("ready closed before publish")
		default:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err = store.Wait(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("publish releases waiters", func(t *testing.T) {
		store := NewDataStore(zap.NewNop())
		d := testDataset(t)

		got := make(chan *Dataset, 1)
		go func() {
			ds, err := store.Wait(context.Background())
			if err == nil {
				got <- ds
			}
		}()

		store.Publish(d)

		select {
		case ds := <-got:
			assert.Equal(t, d.ID, ds.ID)
		case <-time.After(time.Second):
			t.Fatal("waiter was not released")
		}
	})

	t.Run("failure keeps previous dataset", func(t *testing.T) {
		store := NewDataStore(zap.NewNop())
		first := testDataset(t)
		store.Publish(first)
		store.RecordFailure(errors.New("boom"))

		current, err := store.Current()
		require.NoError(t, err)
		assert.Equal(t, first.ID, current.ID)

		second := testDataset(t)
		store.Publish(second)
		current, err = store.Current()
		require.NoError(t, err)
		assert.Equal(t, second.ID, current.ID)

		stats := store.GetStats()
		assert.Equal(t, 2, stats["load_count"])
		assert.Equal(t, 1, stats["failure_count"])
		assert.NotContains(t, stats, "last_error")
	})
}
