package services

import (
	"github.com/bobby-s-dev/transit-air-quality/internal/models"
)

// Interpolate returns a copy of series with every missing run that has a
// known value on both sides filled by linear interpolation between those two
// values. Runs before the first or after the last known value stay without a
// value and are marked unresolved. Observed points are never changed, so the
// function is idempotent.
func Interpolate(series models.DailySeries) models.DailySeries {
	out := make(models.DailySeries, len(series))
	copy(out, series)

	last := -1
	for i := 0; i < len(out); i++ {
		if out[i].Known() {
			last = i
			continue
		}

		next := i + 1
		for next < len(out) && !out[next].Known() {
			next++
		}

		if last < 0 || next >= len(out) {
			for j := i; j < next; j++ {
				out[j].Value = 0
				out[j].Quality = models.QualityUnresolved
			}
			i = next - 1
			continue
		}

		lastValue := out[last].Value
		slope := (out[next].Value - lastValue) / float64(next-last)
		for j := i; j < next; j++ {
			out[j].Value = lastValue + slope*float64(j-last)
			out[j].Quality = models.QualityInterpolated
		}
		i = next - 1
	}

	return out
}
