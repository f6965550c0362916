package services

import (
	"github.com/bobby-s-dev/transit-air-quality/internal/models"
)

// Align joins a city's pollutant series with its mobility series on date.
// Only dates where both series carry a value are kept, in mobility order.
func Align(pollutant, mobility models.DailySeries) []models.MergedRecord {
	merged := make([]models.MergedRecord, 0, len(mobility))

	for _, m := range mobility {
		if !m.Known() {
			continue
		}
		p, ok := pollutant.Lookup(m.Date)
		if !ok || !p.Known() {
			continue
		}
		merged = append(merged, models.MergedRecord{
			Date:           m.Date,
			PollutantValue: p.Value,
			TransitValue:   m.Value,
			Interpolated:   p.Interpolated(),
		})
	}

	return merged
}
