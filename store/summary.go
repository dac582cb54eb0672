package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pivolan/ridership_clipper/dataset"
	"gorm.io/gorm"
)

type ColumnInfo struct {
	Name string
	Type string
}

// ColumnSummary is what ClickHouse reports for one stored numeric column
type ColumnSummary struct {
	Name          string
	Min, Max, Avg float64
	Quantile001   float64
	Quantile099   float64
}

var summaryMethods = []string{"min", "max", "avg", "quantile(0.01)", "quantile(0.99)"}

// DescribeTable lists the stored columns and their ClickHouse types
func DescribeTable(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	tx := db.Raw("DESCRIBE TABLE " + tableName).Scan(&columns)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return columns, nil
}

func removeSpecialChars(s string) string {
	var b strings.Builder
	for _, c := range s {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// SummarySQL selects every aggregate for every numeric column as method__column
func SummarySQL(columns []ColumnInfo, table string) string {
	fields := []string{}
	for _, column := range columns {
		if !IsNumericType(column.Type) {
			continue
		}
		for _, method := range summaryMethods {
			fields = append(fields, fmt.Sprintf("%s(%s) as %s__%s", method, column.Name, removeSpecialChars(method), column.Name))
		}
	}
	if len(fields) == 0 {
		return ""
	}
	return "SELECT " + strings.Join(fields, ",") + " FROM " + table
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case []byte:
		f, err := strconv.ParseFloat(string(v), 64)
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// parseSummary folds a method__column result row into per-column summaries
func parseSummary(row map[string]interface{}) []ColumnSummary {
	byName := map[string]*ColumnSummary{}
	for key, value := range row {
		args := strings.SplitN(key, "__", 2)
		if len(args) != 2 {
			continue
		}
		f, ok := toFloat(value)
		if !ok {
			continue
		}
		s, exists := byName[args[1]]
		if !exists {
			s = &ColumnSummary{Name: args[1]}
			byName[args[1]] = s
		}
		switch args[0] {
		case "min":
			s.Min = f
		case "max":
			s.Max = f
		case "avg":
			s.Avg = f
		case "quantile001":
			s.Quantile001 = f
		case "quantile099":
			s.Quantile099 = f
		}
	}
	result := make([]ColumnSummary, 0, len(byName))
	for _, s := range byName {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Summary reads back min, max, avg and the 1%/99% quantiles of every numeric column
func Summary(db *gorm.DB, table string) ([]ColumnSummary, error) {
	table = dataset.Identifier(table)
	columns, err := DescribeTable(db, table)
	if err != nil {
		return nil, err
	}
	sql := SummarySQL(columns, table)
	if sql == "" {
		return nil, nil
	}
	row := map[string]interface{}{}
	if tx := db.Raw(sql).Scan(&row); tx.Error != nil {
		return nil, tx.Error
	}
	return parseSummary(row), nil
}
