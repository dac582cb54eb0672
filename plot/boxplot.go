package plot

import (
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/pivolan/ridership_clipper/winsor"
)

// Series is one named column of values
type Series struct {
	Name   string
	Values []float64
}

// BoxGroup is one box per column, e.g. "raw" or "clipped" or an era label
type BoxGroup struct {
	Label  string
	Series []Series
}

// FiveNumber returns min, Q1, median, Q3 and max of the present values.
// ok is false when every value is missing.
func FiveNumber(values []float64) (result [5]float64, ok bool) {
	present := winsor.PresentSorted(values)
	if len(present) == 0 {
		for i := range result {
			result[i] = math.NaN()
		}
		return result, false
	}
	result[0] = present[0]
	result[1] = winsor.Quantile(present, 0.25)
	result[2] = winsor.Quantile(present, 0.5)
	result[3] = winsor.Quantile(present, 0.75)
	result[4] = present[len(present)-1]
	return result, true
}

// RenderBoxPlots writes an HTML page with one box-plot chart per column
// and one box per group inside every chart
func RenderBoxPlots(w io.Writer, title string, groups []BoxGroup) error {
	var columns []string
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, s := range g.Series {
			if !seen[s.Name] {
				seen[s.Name] = true
				columns = append(columns, s.Name)
			}
		}
	}

	labels := make([]string, len(groups))
	for i, g := range groups {
		labels[i] = g.Label
	}

	page := components.NewPage()
	page.PageTitle = title
	for _, column := range columns {
		data := make([]opts.BoxPlotData, 0, len(groups))
		for _, g := range groups {
			item := opts.BoxPlotData{Name: g.Label}
			for _, s := range g.Series {
				if s.Name != column {
					continue
				}
				if five, ok := FiveNumber(s.Values); ok {
					item.Value = five[:]
				}
			}
			data = append(data, item)
		}

		bp := charts.NewBoxPlot()
		bp.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: column, Subtitle: title}),
		)
		bp.SetXAxis(labels).AddSeries(column, data)
		page.AddCharts(bp)
	}
	return page.Render(w)
}
