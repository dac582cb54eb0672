package store

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/pivolan/ridership_clipper/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ridershipTable(rows int) *dataset.Table {
	dates := make([]time.Time, rows)
	subway := make([]float64, rows)
	lines := make([]string, rows)
	start := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < rows; i++ {
		dates[i] = start.AddDate(0, 0, i)
		subway[i] = float64(i) + 0.5
		lines[i] = "A"
	}
	return dataset.MustNew(
		dataset.NewTimeColumn("Date", dates),
		dataset.NewFloatColumn("Subway: % of pre-pandemic", subway),
		dataset.NewStringColumn("Line", lines),
	)
}

func TestCreateTableSQL(t *testing.T) {
	sql := CreateTableSQL("ridership", ridershipTable(1))
	assert.Equal(t, "CREATE TABLE ridership (Date DateTime, Subway_of_pre_pandemic Nullable(Float64), Line String) ENGINE = MergeTree ORDER BY Date", sql)
}

func TestCreateTableSQLWithoutDate(t *testing.T) {
	table := dataset.MustNew(dataset.NewIntColumn("Bus", []int64{1}))
	sql := CreateTableSQL("bus", table)
	assert.True(t, strings.HasSuffix(sql, "ORDER BY tuple()"))
	assert.Contains(t, sql, "Bus Nullable(Float64)")
}

func TestCreateTableSQLCollidingIdentifiers(t *testing.T) {
	table := dataset.MustNew(
		dataset.NewFloatColumn("Subway", []float64{1}),
		dataset.NewFloatColumn("Subway %", []float64{2}),
	)
	sql := CreateTableSQL("ridership", table)
	assert.Equal(t, "CREATE TABLE ridership (Subway Nullable(Float64), Subway_1 Nullable(Float64)) ENGINE = MergeTree ORDER BY tuple()", sql)
}

func TestInsertSQLBatches(t *testing.T) {
	statements, err := InsertSQL("ridership", ridershipTable(12), 5)
	require.NoError(t, err)
	require.Len(t, statements, 3)
	for _, s := range statements {
		assert.True(t, strings.HasPrefix(s, "INSERT INTO ridership FORMAT CSV\n"))
	}
	assert.Equal(t, 5, strings.Count(statements[0], "\n")-1)
	assert.Equal(t, 2, strings.Count(statements[2], "\n")-1)
	assert.Contains(t, statements[0], "2020-03-01 00:00:00,0.5,A\n")
}

func TestInsertSQLExactBatch(t *testing.T) {
	statements, err := InsertSQL("ridership", ridershipTable(10), 5)
	require.NoError(t, err)
	assert.Len(t, statements, 2)

	statements, err = InsertSQL("ridership", ridershipTable(0), 5)
	require.NoError(t, err)
	assert.Empty(t, statements)
}

func TestInsertSQLMissingValue(t *testing.T) {
	table := dataset.MustNew(dataset.NewFloatColumn("Bus", []float64{math.NaN(), 2}))
	statements, err := InsertSQL("bus", table, 0)
	require.NoError(t, err)
	require.Len(t, statements, 1)
	assert.Equal(t, "INSERT INTO bus FORMAT CSV\n\\N\n2\n", statements[0])
}

func TestIsNumericType(t *testing.T) {
	assert.True(t, IsNumericType("Nullable(Float64)"))
	assert.True(t, IsNumericType("Int64"))
	assert.False(t, IsNumericType("String"))
	assert.False(t, IsNumericType("DateTime"))
}

func TestSummarySQL(t *testing.T) {
	columns := []ColumnInfo{
		{Name: "Date", Type: "DateTime"},
		{Name: "Subway", Type: "Nullable(Float64)"},
	}
	sql := SummarySQL(columns, "ridership")
	assert.Equal(t, "SELECT min(Subway) as min__Subway,max(Subway) as max__Subway,avg(Subway) as avg__Subway,"+
		"quantile(0.01)(Subway) as quantile001__Subway,quantile(0.99)(Subway) as quantile099__Subway FROM ridership", sql)

	assert.Empty(t, SummarySQL(columns[:1], "ridership"))
}

func TestParseSummary(t *testing.T) {
	result := parseSummary(map[string]interface{}{
		"min__Subway":         float64(1),
		"max__Subway":         "9.5",
		"avg__Subway":         []byte("4"),
		"quantile001__Subway": int64(1),
		"quantile099__Subway": float32(9),
		"min__Bus":            float64(3),
		"count":               int64(10),
	})
	require.Len(t, result, 2)
	assert.Equal(t, ColumnSummary{Name: "Bus", Min: 3}, result[0])
	assert.Equal(t, ColumnSummary{Name: "Subway", Min: 1, Max: 9.5, Avg: 4, Quantile001: 1, Quantile099: 9}, result[1])
}
