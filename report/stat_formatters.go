package report

import (
	"fmt"
	"math"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pivolan/ridership_clipper/domain/models"
	"github.com/pivolan/ridership_clipper/winsor"
)

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

// RenderStats draws the describe() table
func RenderStats(stats []models.ColumnStats) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Column", "Count", "Missing", "Mean", "Std", "Min", "25%", "50%", "75%", "Max", "Outliers"})
	for _, s := range stats {
		t.AppendRow(table.Row{
			s.Name, s.Count, s.Missing,
			formatFloat(s.Mean), formatFloat(s.Std), formatFloat(s.Min),
			formatFloat(s.Q25), formatFloat(s.Median), formatFloat(s.Q75), formatFloat(s.Max),
			s.Outliers,
		})
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}

// RenderWindows lists every window with the bounds each column was clipped to
func RenderWindows(windows []winsor.WindowBounds, dateLayout string) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Window", "From", "To", "Rows", "Column", "Lower", "Upper", "Clipped"})
	for _, w := range windows {
		from := w.Boundary.Start.Format(dateLayout)
		to := w.Boundary.End.Format(dateLayout)
		if len(w.Bounds) == 0 {
			t.AppendRow(table.Row{w.Boundary.Label, from, to, w.Rows, "", "", "", ""})
			continue
		}
		for _, b := range w.Bounds {
			t.AppendRow(table.Row{w.Boundary.Label, from, to, w.Rows, b.Column, formatFloat(b.Lower), formatFloat(b.Upper), b.Clipped})
		}
	}
	t.SetStyle(table.StyleDefault)
	return t.Render()
}
