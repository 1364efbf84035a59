// Package report prepares simulation results for presentation: the charging
// time breakdown shown in chart titles, the axes of the SoC and
// voltage/current charts, and a plain text summary.
package report

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/fuzzycharge/core/charging"
)

// SecondsPerHour is the granularity the SoC chart is padded to.
const SecondsPerHour = 3600

// Breakdown splits a duration in seconds into minutes and seconds the way
// the chart titles display it: the minutes are first rounded to two
// decimals, so the seconds part can differ from seconds%60 by one.
func Breakdown(seconds int) (minutes, secs int) {
	t := roundHalfEven(float64(seconds)/60, 2)
	minutes = int(t)
	secs = int(math.RoundToEven((t - float64(minutes)) * 60))
	return minutes, secs
}

func roundHalfEven(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(x*p) / p
}

// PadToHour extends series with its last value up to the next whole hour of
// samples. An empty series is returned unchanged.
func PadToHour(series []float64) []float64 {
	n := len(series)
	if n == 0 {
		return series
	}
	total := int(math.Ceil(float64(n)/SecondsPerHour)) * SecondsPerHour
	out := make([]float64, total)
	copy(out, series)
	for i := n; i < total; i++ {
		out[i] = series[n-1]
	}
	return out
}

// MinuteAxis returns n evenly spaced points from 0 to totalMinutes inclusive.
func MinuteAxis(n int, totalMinutes float64) []float64 {
	if n <= 0 {
		return []float64{}
	}
	return span(make([]float64, n), 0, totalMinutes)
}

// SoCCurve returns the x (minutes) and y (percent) series of the SoC chart:
// the trajectory followed by a flat segment up to the next whole hour.
func SoCCurve(soc []float64) (x, y []float64) {
	n := len(soc)
	if n == 0 {
		return []float64{}, []float64{}
	}
	y = PadToHour(soc)
	end := float64(n) / 60
	x = make([]float64, len(y))
	span(x[:n], 0, end)
	span(x[n:], end, float64(len(y)/SecondsPerHour*60))
	return x, y
}

// span is floats.Span extended to zero and one element destinations.
func span(dst []float64, l, u float64) []float64 {
	switch len(dst) {
	case 0:
	case 1:
		dst[0] = l
	default:
		floats.Span(dst, l, u)
	}
	return dst
}

// Summary describes a run in a few lines of text.
func Summary(res charging.Result, cfg charging.Config) string {
	var b strings.Builder
	minutes, secs := Breakdown(res.ElapsedSeconds())
	fmt.Fprintf(&b, "Total charging time is %d minutes and %d seconds\n", minutes, secs)
	fmt.Fprintf(&b, "for charging from %g%% to %g%% of battery capacity\n", cfg.SoCInit, cfg.SoCTarget)
	fmt.Fprintf(&b, "battery: %g mAh at %g V, temperature %g C, device load %g%%\n",
		cfg.Battery.CapacityMAh, cfg.Battery.NominalVoltage,
		cfg.Conditions.Temperature, cfg.Conditions.Utilization)
	fmt.Fprintf(&b, "final SoC: %.2f%%\n", res.FinalSoC())
	if res.ElapsedSeconds() > 0 {
		st := res.Stats()
		fmt.Fprintf(&b, "voltage: min %.3f V, mean %.3f V, max %.3f V\n", st.VoltageMin, st.VoltageMean, st.VoltageMax)
		fmt.Fprintf(&b, "current: min %.3f A, mean %.3f A, max %.3f A\n", st.CurrentMin, st.CurrentMean, st.CurrentMax)
		fmt.Fprintf(&b, "energy delivered: %.1f J\n", st.EnergyJ)
	}
	return b.String()
}
