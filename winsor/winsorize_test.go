package winsor

import (
	"math"
	"testing"

	"github.com/pivolan/ridership_clipper/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func assertSameValues(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.Truef(t, math.IsNaN(got[i]), "value %d: want missing, got %v", i, got[i])
			continue
		}
		assert.InDeltaf(t, want[i], got[i], 1e-9, "value %d", i)
	}
}

func ridershipTable(values ...float64) *dataset.Table {
	return dataset.MustNew(dataset.NewFloatColumn("Subway", values))
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"median of even count", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"lowest", []float64{1, 2, 3, 4}, 0, 1},
		{"highest", []float64{1, 2, 3, 4}, 1, 4},
		{"interpolated first quartile", []float64{1, 2, 3, 4}, 0.25, 1.75},
		{"exact order statistic", []float64{10, 20, 30, 40, 50}, 0.25, 20},
		{"single value", []float64{7}, 0.9, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Quantile(tt.sorted, tt.p), 1e-12)
		})
	}
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestPresentSorted(t *testing.T) {
	assert.Equal(t, []float64{1, 2, 3}, PresentSorted([]float64{3, nan, 1, 2, nan}))
	assert.Empty(t, PresentSorted([]float64{nan}))
}

func TestWinsorizeBoundsInvariant(t *testing.T) {
	values := []float64{-50, 4, 8, 15, 16, 23, 42, 7, 9, 11, 13, 2, 5, 6, 3, 1, 10, 12, 14, 500}
	table := ridershipTable(values...)

	before, err := Bounds(table, []string{"Subway"}, 0.1, 0.1)
	require.NoError(t, err)
	require.Len(t, before, 1)
	lo, hi := before[0].Lower, before[0].Upper

	_, err = Winsorize(table, []string{"Subway"}, 0.1, 0.1)
	require.NoError(t, err)

	got, _ := table.Numeric("Subway")
	require.Len(t, got, len(values))
	for i, v := range got {
		assert.GreaterOrEqual(t, v, lo)
		assert.LessOrEqual(t, v, hi)
		assert.Equal(t, math.Min(math.Max(values[i], lo), hi), v)
	}
}

func TestWinsorizeIsIdempotent(t *testing.T) {
	table := ridershipTable(1, 2, 3, 4, 5, 6, 7, 8, 100)

	_, err := Winsorize(table, []string{"Subway"}, 0.25, 0.25)
	require.NoError(t, err)
	once, _ := table.Numeric("Subway")
	assertSameValues(t, []float64{3, 3, 3, 4, 5, 6, 7, 7, 7}, once)
	snapshot := append([]float64(nil), once...)

	bounds, err := WinsorizeWithBounds(table, []string{"Subway"}, 0.25, 0.25)
	require.NoError(t, err)
	twice, _ := table.Numeric("Subway")
	assertSameValues(t, snapshot, twice)
	assert.Equal(t, 0, bounds[0].Clipped)
}

func TestWinsorizeZeroFractionsIsNoop(t *testing.T) {
	values := []float64{12, nan, -3, 4000, 7.5, 0}
	table := ridershipTable(values...)

	bounds, err := WinsorizeWithBounds(table, []string{"Subway"}, 0, 0)
	require.NoError(t, err)

	got, _ := table.Numeric("Subway")
	assertSameValues(t, values, got)
	assert.Equal(t, -3.0, bounds[0].Lower)
	assert.Equal(t, 4000.0, bounds[0].Upper)
	assert.Equal(t, 0, bounds[0].Clipped)
}

func TestWinsorizeLeavesMissingValues(t *testing.T) {
	table := ridershipTable(nan, 1, 2, 3, 100, nan)

	bounds, err := WinsorizeWithBounds(table, []string{"Subway"}, 0.25, 0.25)
	require.NoError(t, err)

	got, _ := table.Numeric("Subway")
	assertSameValues(t, []float64{nan, 1.75, 2, 3, 27.25, nan}, got)
	assert.Equal(t, 4, bounds[0].Present)
	assert.Equal(t, 2, bounds[0].Clipped)
}

func TestWinsorizeCollapsesDegenerateColumns(t *testing.T) {
	single := ridershipTable(nan, 5, nan)
	bounds, err := WinsorizeWithBounds(single, []string{"Subway"}, 0.1, 0.2)
	require.NoError(t, err)
	assert.Equal(t, bounds[0].Lower, bounds[0].Upper)
	got, _ := single.Numeric("Subway")
	assertSameValues(t, []float64{nan, 5, nan}, got)

	flat := ridershipTable(4, 4, 4, 4)
	bounds, err = WinsorizeWithBounds(flat, []string{"Subway"}, 0.3, 0.3)
	require.NoError(t, err)
	assert.Equal(t, 4.0, bounds[0].Lower)
	assert.Equal(t, 4.0, bounds[0].Upper)
}

func TestWinsorizeEmptyTableIsNoop(t *testing.T) {
	table := ridershipTable()
	out, err := Winsorize(table, []string{"Subway"}, 0.05, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())

	allMissing := ridershipTable(nan, nan)
	bounds, err := WinsorizeWithBounds(allMissing, []string{"Subway"}, 0.05, 0.05)
	require.NoError(t, err)
	assert.Equal(t, 0, bounds[0].Present)
	assert.Equal(t, 0, bounds[0].Clipped)
}

func TestWinsorizeColumnsAreIndependent(t *testing.T) {
	table := dataset.MustNew(
		dataset.NewFloatColumn("Subway", []float64{1, 2, 3, 4, 100}),
		dataset.NewIntColumn("Bus", []int64{1000, 2000, 3000, 4000, 5000}),
	)
	_, err := Winsorize(table, []string{"Subway", "Bus"}, 0.25, 0.25)
	require.NoError(t, err)

	subway, _ := table.Numeric("Subway")
	bus, _ := table.Numeric("Bus")
	assertSameValues(t, []float64{2, 2, 3, 4, 4}, subway)
	assertSameValues(t, []float64{2000, 2000, 3000, 4000, 4000}, bus)
}

func TestWinsorizeRejectsInvalidFractions(t *testing.T) {
	tests := []struct {
		name         string
		lower, upper float64
	}{
		{"crossed bounds", 0.6, 0.6},
		{"sum of one", 0.5, 0.5},
		{"negative lower", -0.1, 0.1},
		{"negative upper", 0.1, -0.01},
		{"nan", nan, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := ridershipTable(1, 2, 300)
			out, err := Winsorize(table, []string{"Subway"}, tt.lower, tt.upper)
			assert.ErrorIs(t, err, ErrInvalidArgument)
			assert.Nil(t, out)
			got, _ := table.Numeric("Subway")
			assertSameValues(t, []float64{1, 2, 300}, got)
		})
	}
}

func TestWinsorizePropagatesColumnErrors(t *testing.T) {
	table := dataset.MustNew(
		dataset.NewStringColumn("Line", []string{"A", "B", "C"}),
		dataset.NewFloatColumn("Subway", []float64{1, 2, 300}),
	)

	_, err := Winsorize(table, []string{"Ferry"}, 0.1, 0.1)
	assert.ErrorIs(t, err, dataset.ErrColumnNotFound)
	assert.NotErrorIs(t, err, ErrInvalidArgument)

	// a failing column later in the list must not leave earlier ones clipped
	_, err = Winsorize(table, []string{"Subway", "Line"}, 0.4, 0.4)
	assert.ErrorIs(t, err, dataset.ErrNotNumeric)
	got, _ := table.Numeric("Subway")
	assertSameValues(t, []float64{1, 2, 300}, got)
}
