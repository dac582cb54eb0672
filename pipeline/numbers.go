package pipeline

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pivolan/ridership_clipper/dataset"
	"github.com/pivolan/ridership_clipper/domain/models"
	"github.com/pivolan/ridership_clipper/report"
	"github.com/pivolan/ridership_clipper/winsor"
)

var numberPattern = regexp.MustCompile(`-?\d*\.?\d+`)

// ExtractNumbers pulls every number out of free text like "1 2 3", "1,2,3" or one per line
func ExtractNumbers(text string) []float64 {
	text = strings.ReplaceAll(text, ",", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	matches := numberPattern.FindAllString(text, -1)
	numbers := make([]float64, 0, len(matches))
	for _, match := range matches {
		if num, err := strconv.ParseFloat(match, 64); err == nil {
			numbers = append(numbers, num)
		}
	}
	return numbers
}

// ClipNumbers Winsorizes a loose list of numbers as one column with no date windows
func ClipNumbers(numbers []float64, lower, upper float64) (clipped []float64, before, after models.ColumnStats, err error) {
	values := append([]float64(nil), numbers...)
	t, err := dataset.New(dataset.NewFloatColumn("values", values))
	if err != nil {
		return nil, before, after, err
	}
	before = report.AnalyzeNumbers("before", numbers)
	if _, err = winsor.Winsorize(t, []string{"values"}, lower, upper); err != nil {
		return nil, before, after, err
	}
	after = report.AnalyzeNumbers("after", values)
	return values, before, after, nil
}
