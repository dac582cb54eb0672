package plot

import (
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var ErrNoValues = errors.New("no values to plot")

// histogramData holds bin ranges and counts for one column
type histogramData struct {
	xStart, xEnd []float64
	counts       []float64
	nameGraph    string
}

// NewHistogram bins the present values of a column into equal-width ranges.
// Missing values are ignored.
func NewHistogram(values []float64, bins int, name string) (histogramData, error) {
	if bins <= 0 {
		bins = 10
	}
	min, max := math.Inf(1), math.Inf(-1)
	present := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		present++
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if present == 0 {
		return histogramData{}, fmt.Errorf("%s: %w", name, ErrNoValues)
	}
	if min == max {
		bins = 1
	}

	d := histogramData{
		xStart:    make([]float64, bins),
		xEnd:      make([]float64, bins),
		counts:    make([]float64, bins),
		nameGraph: name,
	}
	width := (max - min) / float64(bins)
	for i := 0; i < bins; i++ {
		d.xStart[i] = min + float64(i)*width
		d.xEnd[i] = min + float64(i+1)*width
	}
	d.xEnd[bins-1] = max
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		idx := bins - 1
		if width > 0 {
			idx = int((v - min) / width)
			if idx >= bins {
				idx = bins - 1
			}
		}
		d.counts[idx]++
	}
	return d, nil
}

func (d histogramData) GetNameGraph() string {
	return d.nameGraph
}

func (d histogramData) getYValues() []float64 {
	return d.counts
}

func (d histogramData) calculateChartDimensions(minBarWidth float64) (width, height int) {
	if len(d.counts) == 0 || minBarWidth <= 0 {
		return 0, 0
	}
	x := 1.1
	if len(d.counts) < 2 {
		x = 10.0
	} else if len(d.counts) < 10 {
		x = 3.0
	}

	const (
		paddingY     = 100
		spacingRatio = 0.2
		aspectRatio  = 9.0 / 16.0
	)

	barSpacing := minBarWidth * spacingRatio
	totalWidth := (minBarWidth+barSpacing)*float64(len(d.counts)) + paddingY
	width = int(totalWidth*x) + paddingY
	height = int(float64(width) * aspectRatio)
	return width, height
}

func (d histogramData) generateBarValues() []chart.Value {
	bars := make([]chart.Value, 0, len(d.counts))
	for i := range d.counts {
		bars = append(bars, chart.Value{
			Value: d.counts[i],
			Label: fmt.Sprintf("%.f-%.f", d.xStart[i], d.xEnd[i]),
			Style: chart.Style{
				FillColor: drawing.ColorPurple.WithAlpha(100),
			},
		})
	}
	return bars
}

func (d histogramData) generateGrid() []chart.Tick {
	var ticks []chart.Tick
	max := findMaxValue(d.counts)
	gridStep := calculateGridStep(max)
	if gridStep <= 0 {
		return nil
	}
	for i := 0.0; i <= max; i += gridStep {
		ticks = append(ticks, chart.Tick{
			Value: i,
			Label: fmt.Sprintf("%.f", i),
		})
	}
	return ticks
}
