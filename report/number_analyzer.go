package report

import (
	"math"

	"github.com/aclements/go-moremath/stats"
	"github.com/pivolan/ridership_clipper/dataset"
	"github.com/pivolan/ridership_clipper/domain/models"
	"github.com/pivolan/ridership_clipper/winsor"
)

// AnalyzeNumbers describes one column the way a dataframe describe() does,
// plus the interquartile range and the count of values outside the 1.5*IQR fences.
func AnalyzeNumbers(name string, values []float64) models.ColumnStats {
	present := winsor.PresentSorted(values)
	result := models.ColumnStats{
		Name:    name,
		Count:   len(present),
		Missing: len(values) - len(present),
	}
	if len(present) == 0 {
		nan := math.NaN()
		result.Mean, result.Std, result.Min, result.Q25, result.Median, result.Q75, result.Max, result.IQR =
			nan, nan, nan, nan, nan, nan, nan, nan
		return result
	}

	sample := stats.Sample{Xs: present, Sorted: true}
	result.Mean = sample.Mean()
	result.Std = math.NaN()
	if len(present) > 1 {
		result.Std = sample.StdDev()
	}
	result.Min, result.Max = sample.Bounds()
	result.Q25 = winsor.Quantile(present, 0.25)
	result.Median = winsor.Quantile(present, 0.5)
	result.Q75 = winsor.Quantile(present, 0.75)
	result.IQR = result.Q75 - result.Q25
	result.Outliers = countOutliers(present, result.Q25, result.Q75, result.IQR)
	return result
}

func countOutliers(numbers []float64, q1, q3, iqr float64) int {
	lowerBound := q1 - 1.5*iqr
	upperBound := q3 + 1.5*iqr
	count := 0
	for _, num := range numbers {
		if num < lowerBound || num > upperBound {
			count++
		}
	}
	return count
}

// Describe runs AnalyzeNumbers over the given numeric columns
func Describe(t *dataset.Table, columns []string) ([]models.ColumnStats, error) {
	result := make([]models.ColumnStats, 0, len(columns))
	for _, name := range columns {
		values, err := t.Numeric(name)
		if err != nil {
			return nil, err
		}
		result = append(result, AnalyzeNumbers(name, values))
	}
	return result, nil
}
