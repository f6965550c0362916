package models

import (
	"encoding/json"
)

// Reading is one day's observation for one city and signal.
type Reading struct {
	Date  Date    `json:"date"`
	Value float64 `json:"value"`
}

// DailyAverage is the per-day mean of all readings sharing a date. It is also
// the entry shape of the pre-aggregated pollutant input file.
type DailyAverage struct {
	Date         Date    `json:"date"`
	Average      float64 `json:"average"`
	ReadingCount int     `json:"readingCount"`
}

// RawMeasurement is a single OpenAQ measurement as returned by the API.
type RawMeasurement struct {
	Location  string  `json:"location"`
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
	DateUTC   string  `json:"date_utc"`
}

// MobilityRow holds the mobility report columns the pipeline reads, as text.
type MobilityRow struct {
	Date          string
	SubRegion1    string
	SubRegion2    string
	TransitChange string
}

type Quality string

const (
	QualityObserved     Quality = "observed"
	QualityMissing      Quality = "missing"
	QualityInterpolated Quality = "interpolated"
	// QualityUnresolved marks a gap with no observation on one side, which
	// linear interpolation cannot fill.
	QualityUnresolved Quality = "unresolved"
)

// Point is one day of a DailySeries. Value is meaningful only when Known.
type Point struct {
	Date    Date
	Value   float64
	Quality Quality
}

func (p Point) Known() bool {
	return p.Quality == QualityObserved || p.Quality == QualityInterpolated
}

func (p Point) Interpolated() bool {
	return p.Quality == QualityInterpolated
}

type pointJSON struct {
	Date         Date     `json:"date"`
	Value        *float64 `json:"value"`
	Interpolated bool     `json:"interpolated"`
	Quality      Quality  `json:"quality"`
}

func (p Point) MarshalJSON() ([]byte, error) {
	out := pointJSON{Date: p.Date, Interpolated: p.Interpolated(), Quality: p.Quality}
	if p.Known() {
		v := p.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

// DailySeries is in ascending date order. Pollutant series hold one entry per
// day of the study range; mobility series hold observed days only.
type DailySeries []Point

// Known returns the points that carry a value.
func (s DailySeries) Known() DailySeries {
	out := make(DailySeries, 0, len(s))
	for _, p := range s {
		if p.Known() {
			out = append(out, p)
		}
	}
	return out
}

// Between returns the points dated within [start, end].
func (s DailySeries) Between(start, end Date) DailySeries {
	out := make(DailySeries, 0, len(s))
	for _, p := range s {
		if p.Date.Within(start, end) {
			out = append(out, p)
		}
	}
	return out
}

// Values returns the values of the known points.
func (s DailySeries) Values() []float64 {
	out := make([]float64, 0, len(s))
	for _, p := range s {
		if p.Known() {
			out = append(out, p.Value)
		}
	}
	return out
}

// Lookup returns the point dated d, if any.
func (s DailySeries) Lookup(d Date) (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}
	// Contiguous series: index directly when the date falls inside.
	idx := s[0].Date.DaysUntil(d)
	if idx >= 0 && idx < len(s) && s[idx].Date == d {
		return s[idx], true
	}
	for _, p := range s {
		if p.Date == d {
			return p, true
		}
	}
	return Point{}, false
}

// Counts tallies the points by quality.
func (s DailySeries) Counts() map[Quality]int {
	counts := make(map[Quality]int, 4)
	for _, p := range s {
		counts[p.Quality]++
	}
	return counts
}

// MergedRecord pairs a pollutant value with the transit change for the same
// city and date.
type MergedRecord struct {
	Date           Date    `json:"date"`
	PollutantValue float64 `json:"pollutantValue"`
	TransitValue   float64 `json:"transitValue"`
	Interpolated   bool    `json:"interpolated"`
}
