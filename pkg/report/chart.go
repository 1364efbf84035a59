package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/fuzzycharge/core/charging"
)

// SoCChart plots the state of charge against minutes, padded to the next
// whole hour.
func SoCChart(res charging.Result, cfg charging.Config) *charts.Line {
	minutes, secs := Breakdown(res.ElapsedSeconds())
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Total charging time is %d minutes and %d seconds", minutes, secs),
			Subtitle: fmt.Sprintf("for charging from %g%% to %g%% of battery capacity",
				cfg.SoCInit, cfg.SoCTarget),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Minutes", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "% of capacity", Min: -5, Max: 105}),
	)
	x, y := SoCCurve(res.SoC)
	line.AddSeries("SoC", points(x, y))
	return line
}

// OutputChart plots the controller voltage and current against minutes.
func OutputChart(res charging.Result, limits charging.Limits) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Changing of I and U during charging"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Minutes", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Value", Min: 0, Max: max(limits.CurrentMax, limits.VoltageMax) + 2}),
	)
	total := roundHalfEven(float64(res.ElapsedSeconds())/60, 2)
	x := MinuteAxis(len(res.Current), total)
	line.AddSeries("I", points(x, res.Current)).
		AddSeries("U", points(x, res.Voltage))
	return line
}

func points(x, y []float64) []opts.LineData {
	out := make([]opts.LineData, len(y))
	for i := range y {
		out[i] = opts.LineData{Value: []float64{x[i], y[i]}}
	}
	return out
}

// RenderCharts writes an HTML page holding the SoC and output charts.
func RenderCharts(w io.Writer, res charging.Result, cfg charging.Config) error {
	page := components.NewPage()
	page.PageTitle = "Charge Simulation"
	page.AddCharts(SoCChart(res, cfg), OutputChart(res, cfg.Limits))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	return nil
}
