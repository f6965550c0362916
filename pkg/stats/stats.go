// Package stats implements the small set of descriptive statistics used to
// compare pollutant and mobility series: min-max normalization, ordinary
// least squares with one predictor, and the Pearson correlation coefficient.
//
// Every function returns a sentinel error instead of a NaN or infinite result
// when its input is degenerate.
package stats

import (
	"errors"
	"math"
)

var (
	ErrEmpty          = errors.New("stats: no samples")
	ErrLengthMismatch = errors.New("stats: x and y have different lengths")
	ErrZeroRange      = errors.New("stats: all values are equal")
	ErrZeroVariance   = errors.New("stats: variable has zero variance")
	ErrNonFinite      = errors.New("stats: non-finite sample")
)

// Line is y = Slope*x + Intercept.
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
}

func (l Line) At(x float64) float64 {
	return l.Slope*x + l.Intercept
}

func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmpty
	}
	if err := checkFinite(values); err != nil {
		return 0, err
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

func MinMax(values []float64) (min, max float64, err error) {
	if len(values) == 0 {
		return 0, 0, ErrEmpty
	}
	if err := checkFinite(values); err != nil {
		return 0, 0, err
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, nil
}

// Normalize maps each value to (v - min) / (max - min).
func Normalize(values []float64) ([]float64, error) {
	min, max, err := MinMax(values)
	if err != nil {
		return nil, err
	}
	if max == min {
		return nil, ErrZeroRange
	}
	span := max - min
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - min) / span
	}
	return out, nil
}

type sums struct {
	n, x, y, xy, xx, yy float64
}

func accumulate(xs, ys []float64) (sums, error) {
	if len(xs) != len(ys) {
		return sums{}, ErrLengthMismatch
	}
	if len(xs) == 0 {
		return sums{}, ErrEmpty
	}
	if err := checkFinite(xs); err != nil {
		return sums{}, err
	}
	if err := checkFinite(ys); err != nil {
		return sums{}, err
	}
	s := sums{n: float64(len(xs))}
	for i := range xs {
		x, y := xs[i], ys[i]
		s.x += x
		s.y += y
		s.xy += x * y
		s.xx += x * x
		s.yy += y * y
	}
	return s, nil
}

// LinearRegression fits y = slope*x + intercept by ordinary least squares.
func LinearRegression(xs, ys []float64) (Line, error) {
	s, err := accumulate(xs, ys)
	if err != nil {
		return Line{}, err
	}
	denom := s.n*s.xx - s.x*s.x
	if denom <= 0 || isConstant(xs) {
		return Line{}, ErrZeroVariance
	}
	slope := (s.n*s.xy - s.x*s.y) / denom
	intercept := (s.y - slope*s.x) / s.n
	return Line{Slope: slope, Intercept: intercept}, nil
}

// Pearson returns the correlation coefficient r, clamped to [-1, 1] to absorb
// rounding.
func Pearson(xs, ys []float64) (float64, error) {
	s, err := accumulate(xs, ys)
	if err != nil {
		return 0, err
	}
	vx := s.n*s.xx - s.x*s.x
	vy := s.n*s.yy - s.y*s.y
	if vx <= 0 || vy <= 0 || isConstant(xs) || isConstant(ys) {
		return 0, ErrZeroVariance
	}
	r := (s.n*s.xy - s.x*s.y) / math.Sqrt(vx*vy)
	return math.Max(-1, math.Min(1, r)), nil
}

// isConstant catches series whose computed variance is a tiny positive number
// only because of cancellation.
func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func checkFinite(values []float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFinite
		}
	}
	return nil
}
