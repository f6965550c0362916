package models

import (
	"github.com/bobby-s-dev/transit-air-quality/pkg/stats"
)

// TimeSeriesPoint is one day of the dual-axis chart. Both values are min-max
// normalized over the full study year; nil means no value for that day.
type TimeSeriesPoint struct {
	Date         Date     `json:"date"`
	Pollutant    *float64 `json:"pollutant"`
	Transit      *float64 `json:"transit"`
	Interpolated bool     `json:"interpolated"`
}

type TimeSeriesChart struct {
	City      City              `json:"city"`
	Pollutant Pollutant         `json:"pollutant"`
	Start     Date              `json:"start"`
	End       Date              `json:"end"`
	Points    []TimeSeriesPoint `json:"points"`
}

// PhaseAverage is the mean of the known values inside one lockdown phase.
type PhaseAverage struct {
	Phase     Phase    `json:"phase"`
	Start     Date     `json:"start"`
	End       Date     `json:"end"`
	Pollutant *float64 `json:"pollutant"`
	Transit   *float64 `json:"transit"`
	Days      int      `json:"days"`
}

type PhaseChart struct {
	City      City           `json:"city"`
	Pollutant Pollutant      `json:"pollutant"`
	Unit      string         `json:"unit"`
	Phases    []PhaseAverage `json:"phases"`
}

type TrendPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ScatterChart plots transit change (x) against pollutant level (y) with the
// least-squares line drawn between the smallest and largest x.
type ScatterChart struct {
	City        City           `json:"city"`
	Pollutant   Pollutant      `json:"pollutant"`
	Records     []MergedRecord `json:"records"`
	Line        stats.Line     `json:"line"`
	Trend       [2]TrendPoint  `json:"trend"`
	Correlation float64        `json:"r"`
}
