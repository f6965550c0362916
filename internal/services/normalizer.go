package services

import (
	"math"
	"strconv"
	"strings"

	"github.com/bobby-s-dev/transit-air-quality/internal/models"
)

// NormalizeStats counts what the normalizer kept and why it dropped the rest.
type NormalizeStats struct {
	Kept         int `json:"kept"`
	Untracked    int `json:"untracked"`
	BadDate      int `json:"bad_date"`
	MissingValue int `json:"missing_value"`
}

func (s NormalizeStats) Dropped() int {
	return s.Untracked + s.BadDate + s.MissingValue
}

// NormalizeMeasurements reduces raw OpenAQ measurements to dated readings. The
// sub-location is discarded and the date is the UTC day of the timestamp.
func NormalizeMeasurements(raw []models.RawMeasurement) ([]models.Reading, NormalizeStats) {
	var stats NormalizeStats
	readings := make([]models.Reading, 0, len(raw))

	for _, m := range raw {
		date, err := models.ParseTimestampDate(m.DateUTC)
		if err != nil {
			stats.BadDate++
			continue
		}
		if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
			stats.MissingValue++
			continue
		}
		readings = append(readings, models.Reading{Date: date, Value: m.Value})
		stats.Kept++
	}

	return readings, stats
}

// NormalizeMobility keeps the mobility rows of the five tracked counties and
// groups their transit-station change by city. Rows from other regions are
// dropped without error.
func NormalizeMobility(rows []models.MobilityRow) (map[models.City][]models.Reading, NormalizeStats) {
	var stats NormalizeStats
	byCity := make(map[models.City][]models.Reading, len(models.AllCities()))

	for _, row := range rows {
		city, ok := models.CityForCounty(row.SubRegion1, row.SubRegion2)
		if !ok {
			stats.Untracked++
			continue
		}

		date, err := models.ParseDate(strings.TrimSpace(row.Date))
		if err != nil {
			stats.BadDate++
			continue
		}

		value, ok := parseMobilityValue(row.TransitChange)
		if !ok {
			stats.MissingValue++
			continue
		}

		byCity[city] = append(byCity[city], models.Reading{Date: date, Value: value})
		stats.Kept++
	}

	return byCity, stats
}

// parseMobilityValue treats blank cells as absent. The report leaves the cell
// empty when a county has too little data for a day.
func parseMobilityValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "NaN") || strings.EqualFold(s, "NA") {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
