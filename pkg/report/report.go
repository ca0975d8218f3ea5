// Package report renders an engine run's iteration history as an HTML
// line chart of hole count, mean priority and patches copied per
// iteration, grounded
// in the retrieval pack's go-echarts usage
// (JonasLazardGIT-SPRUCE's Additionnals/plot_pacs_sweep.go) for
// per-run-metrics charting.
package report

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Fepozopo/inpaint/pkg/engine"
)

// WriteHTML renders history as a three-series line chart (hole count,
// mean priority and patches copied against iteration number) to path.
func WriteHTML(path string, history engine.History) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: create %s: %w", path, err)
	}
	defer f.Close()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Inpainting progress",
			Subtitle: fmt.Sprintf("%d iteration(s)", len(history)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "iteration"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "value"}),
	)

	xs := make([]string, len(history))
	holeCounts := make([]opts.LineData, len(history))
	priorities := make([]opts.LineData, len(history))
	patchCounts := make([]opts.LineData, len(history))
	for i, rec := range history {
		xs[i] = fmt.Sprintf("%d", rec.Iteration)
		holeCounts[i] = opts.LineData{Value: rec.HoleCount}
		priorities[i] = opts.LineData{Value: rec.MeanPriority}
		patchCounts[i] = opts.LineData{Value: len(rec.Patches)}
	}

	line.SetXAxis(xs).
		AddSeries("hole count", holeCounts).
		AddSeries("mean priority", priorities).
		AddSeries("patches copied", patchCounts).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}))

	return line.Render(f)
}
