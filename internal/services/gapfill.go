package services

import (
	"fmt"

	"github.com/bobby-s-dev/transit-air-quality/internal/models"
)

// FillGaps expands sparse daily averages into one point per day of
// [start, end]. Days without an average are marked missing; their value is
// left at zero but is not meaningful.
func FillGaps(averages []models.DailyAverage, start, end models.Date) (models.DailySeries, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("invalid range: end %s is before start %s", end, start)
	}

	byDate := make(map[models.Date]float64, len(averages))
	for _, a := range averages {
		byDate[a.Date] = a.Average
	}

	days := start.DaysUntil(end) + 1
	series := make(models.DailySeries, days)
	for i := range series {
		date := start.AddDays(i)
		if v, ok := byDate[date]; ok {
			series[i] = models.Point{Date: date, Value: v, Quality: models.QualityObserved}
		} else {
			series[i] = models.Point{Date: date, Quality: models.QualityMissing}
		}
	}

	return series, nil
}
