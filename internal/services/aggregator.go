package services

import (
	"sort"

	"github.com/bobby-s-dev/transit-air-quality/internal/models"
)

type dailyTotal struct {
	sum   float64
	count int
}

// Aggregate collapses readings that share a date into one arithmetic mean per
// day, sorted by date. Empty input yields an empty result.
func Aggregate(readings []models.Reading) []models.DailyAverage {
	totals := make(map[models.Date]*dailyTotal)

	for _, r := range readings {
		t, ok := totals[r.Date]
		if !ok {
			t = &dailyTotal{}
			totals[r.Date] = t
		}
		t.sum += r.Value
		t.count++
	}

	result := make([]models.DailyAverage, 0, len(totals))
	for date, t := range totals {
		result = append(result, models.DailyAverage{
			Date:         date,
			Average:      t.sum / float64(t.count),
			ReadingCount: t.count,
		})
	}

	sortByDate(result)
	return result
}

// Combine merges pre-aggregated entries that repeat a date, weighting each
// average by its reading count. A zero count weighs as one reading.
func Combine(averages []models.DailyAverage) []models.DailyAverage {
	type weighted struct {
		sum    float64
		weight int
		count  int
	}
	totals := make(map[models.Date]*weighted)

	for _, a := range averages {
		w := a.ReadingCount
		if w <= 0 {
			w = 1
		}
		t, ok := totals[a.Date]
		if !ok {
			t = &weighted{}
			totals[a.Date] = t
		}
		t.sum += a.Average * float64(w)
		t.weight += w
		t.count += a.ReadingCount
	}

	result := make([]models.DailyAverage, 0, len(totals))
	for date, t := range totals {
		result = append(result, models.DailyAverage{
			Date:         date,
			Average:      t.sum / float64(t.weight),
			ReadingCount: t.count,
		})
	}

	sortByDate(result)
	return result
}

func sortByDate(averages []models.DailyAverage) {
	sort.Slice(averages, func(i, j int) bool {
		return averages[i].Date.Before(averages[j].Date)
	})
}
