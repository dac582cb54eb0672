// Package winsor clips numeric columns to their empirical quantiles (Winsorization),
// either over a whole table or independently inside date windows.
package winsor

import (
	"errors"
	"fmt"
	"math"

	"github.com/pivolan/ridership_clipper/dataset"
	"github.com/pivolan/ridership_clipper/domain/models"
	"github.com/pivolan/ridership_clipper/gologger"
)

var logger = gologger.NewLogger()

// ErrInvalidArgument is the only error kind raised by this package itself
var ErrInvalidArgument = errors.New("invalid argument")

func validateFractions(lowerFrac, upperFrac float64) error {
	if math.IsNaN(lowerFrac) || math.IsNaN(upperFrac) {
		return fmt.Errorf("%w: tail fractions must be numbers", ErrInvalidArgument)
	}
	if lowerFrac < 0 || upperFrac < 0 {
		return fmt.Errorf("%w: tail fractions must not be negative, got %v and %v", ErrInvalidArgument, lowerFrac, upperFrac)
	}
	if lowerFrac+upperFrac >= 1 {
		return fmt.Errorf("%w: lower %v + upper %v >= 1, bounds would cross", ErrInvalidArgument, lowerFrac, upperFrac)
	}
	return nil
}

// Bounds computes the clip bounds of every target column without touching the table.
// Columns with no present values get NaN bounds.
func Bounds(t *dataset.Table, columns []string, lowerFrac, upperFrac float64) ([]models.ClipBounds, error) {
	if err := validateFractions(lowerFrac, upperFrac); err != nil {
		return nil, err
	}
	bounds := make([]models.ClipBounds, 0, len(columns))
	for _, name := range columns {
		values, err := t.Numeric(name)
		if err != nil {
			return nil, fmt.Errorf("winsorize: %w", err)
		}
		present := PresentSorted(values)
		bounds = append(bounds, models.ClipBounds{
			Column:  name,
			Lower:   Quantile(present, lowerFrac),
			Upper:   Quantile(present, 1-upperFrac),
			Present: len(present),
		})
	}
	return bounds, nil
}

// Winsorize clips each target column in place to its [lowerFrac, 1-upperFrac] quantiles
// and returns the same table. Missing values stay missing.
func Winsorize(t *dataset.Table, columns []string, lowerFrac, upperFrac float64) (*dataset.Table, error) {
	if _, err := WinsorizeWithBounds(t, columns, lowerFrac, upperFrac); err != nil {
		return nil, err
	}
	return t, nil
}

// WinsorizeWithBounds is Winsorize that also reports the bounds used and how many values moved.
// All bounds are computed before the first write, so a failed call leaves the table as it was.
func WinsorizeWithBounds(t *dataset.Table, columns []string, lowerFrac, upperFrac float64) ([]models.ClipBounds, error) {
	bounds, err := Bounds(t, columns, lowerFrac, upperFrac)
	if err != nil {
		return nil, err
	}
	for i := range bounds {
		values, _ := t.Numeric(bounds[i].Column)
		bounds[i].Clipped = clip(values, bounds[i].Lower, bounds[i].Upper)
	}
	return bounds, nil
}

func clip(values []float64, lower, upper float64) int {
	if math.IsNaN(lower) || math.IsNaN(upper) {
		return 0
	}
	clipped := 0
	for i, v := range values {
		switch {
		case v < lower:
			values[i] = lower
			clipped++
		case v > upper:
			values[i] = upper
			clipped++
		}
	}
	return clipped
}
