package plot

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG")

func TestCalculateGridStep(t *testing.T) {
	tests := []struct {
		max  float64
		want float64
	}{
		{0, 0},
		{-5, 0},
		{1, 0.2},
		{3, 1},
		{8, 2},
		{15, 5},
		{450, 100},
		{2500, 1000},
		{9000, 2000},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, calculateGridStep(tt.max), 1e-9, "max=%v", tt.max)
	}
}

func TestNewHistogram(t *testing.T) {
	h, err := NewHistogram([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, math.NaN()}, 5, "Subway")
	require.NoError(t, err)
	assert.Equal(t, "Subway", h.GetNameGraph())
	assert.Equal(t, []float64{2, 2, 2, 2, 3}, h.getYValues())
	assert.Equal(t, 0.0, h.xStart[0])
	assert.Equal(t, 10.0, h.xEnd[4])

	bars := h.generateBarValues()
	require.Len(t, bars, 5)
	assert.Equal(t, "0-2", bars[0].Label)

	ticks := h.generateGrid()
	require.NotEmpty(t, ticks)
	assert.Equal(t, 0.0, ticks[0].Value)
}

func TestNewHistogramConstantAndEmpty(t *testing.T) {
	h, err := NewHistogram([]float64{4, 4, 4}, 10, "Bus")
	require.NoError(t, err)
	assert.Equal(t, []float64{3}, h.getYValues())

	_, err = NewHistogram([]float64{math.NaN()}, 10, "Bus")
	assert.ErrorIs(t, err, ErrNoValues)
}

func TestDrawPlotBar(t *testing.T) {
	h, err := NewHistogram([]float64{1, 2, 2, 3, 3, 3, 4, 4, 5, 40}, 4, "Bus")
	require.NoError(t, err)
	png, err := DrawPlotBar(h)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestDrawTimeSeries(t *testing.T) {
	start := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 30)
	values := make([]float64, 30)
	for i := range times {
		times[i] = start.AddDate(0, 0, i)
		values[i] = float64(i * i)
	}
	values[4] = math.NaN()

	png, err := DrawTimeSeries(times, values, "Subway")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}

func TestDrawTimeSeriesErrors(t *testing.T) {
	day := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := DrawTimeSeries([]time.Time{day}, []float64{1, 2}, "Bus")
	assert.Error(t, err)

	_, err = DrawTimeSeries([]time.Time{day, day.AddDate(0, 0, 1)}, []float64{1, math.NaN()}, "Bus")
	assert.ErrorIs(t, err, ErrNoValues)
}

func TestDrawTimeSeriesConstant(t *testing.T) {
	day := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	png, err := DrawTimeSeries([]time.Time{day, day.AddDate(0, 0, 1), day.AddDate(0, 0, 2)}, []float64{7, 7, 7}, "Ferry")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))
}
