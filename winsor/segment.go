package winsor

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pivolan/ridership_clipper/dataset"
	"github.com/pivolan/ridership_clipper/domain/models"
)

// WindowBounds describes what happened inside one date window
type WindowBounds struct {
	Boundary models.Boundary
	Rows     int
	Bounds   []models.ClipBounds
}

// ValidateBoundaries requires Start < End for every window and no two windows overlapping.
// Unsorted windows are accepted on purpose: their given order decides the output order,
// and only overlap is rejected.
func ValidateBoundaries(boundaries []models.Boundary) error {
	if len(boundaries) == 0 {
		return fmt.Errorf("%w: no boundaries given", ErrInvalidArgument)
	}
	for i, b := range boundaries {
		if !b.Start.Before(b.End) {
			return fmt.Errorf("%w: window %d %q starts %s, not before its end %s",
				ErrInvalidArgument, i, b.Label, b.Start.Format(time.RFC3339), b.End.Format(time.RFC3339))
		}
		for j := 0; j < i; j++ {
			other := boundaries[j]
			if b.Start.Before(other.End) && other.Start.Before(b.End) {
				return fmt.Errorf("%w: window %d %q overlaps window %d %q", ErrInvalidArgument, i, b.Label, j, other.Label)
			}
		}
	}
	return nil
}

// Segment splits the table into one partition per window, rows with Start <= date < End,
// keeping input order inside each partition. Rows in no window appear nowhere.
func Segment(t *dataset.Table, dateColumn string, boundaries []models.Boundary) ([]*dataset.Table, error) {
	if err := ValidateBoundaries(boundaries); err != nil {
		return nil, err
	}
	dates, err := t.Times(dateColumn)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}

	parts := make([]*dataset.Table, len(boundaries))
	for i, b := range boundaries {
		b := b
		parts[i] = t.Filter(func(row int) bool {
			return !dates[row].IsZero() && b.Contains(dates[row])
		})
	}
	return parts, nil
}

// SegmentAndClip Winsorizes every window independently and concatenates the windows
// in the order boundaries were given. The input table is not modified.
func SegmentAndClip(t *dataset.Table, dateColumn string, columns []string, boundaries []models.Boundary, lowerFrac, upperFrac float64) (*dataset.Table, error) {
	out, _, err := SegmentAndClipWithBounds(t, dateColumn, columns, boundaries, lowerFrac, upperFrac)
	return out, err
}

func SegmentAndClipWithBounds(t *dataset.Table, dateColumn string, columns []string, boundaries []models.Boundary, lowerFrac, upperFrac float64) (*dataset.Table, []WindowBounds, error) {
	if err := validateFractions(lowerFrac, upperFrac); err != nil {
		return nil, nil, err
	}
	parts, err := Segment(t, dateColumn, boundaries)
	if err != nil {
		return nil, nil, err
	}

	targets := make([]string, 0, len(columns))
	for _, c := range columns {
		if c != dateColumn {
			targets = append(targets, c)
		}
	}

	windows := make([]WindowBounds, len(parts))
	errs := make([]error, len(parts))
	var wg sync.WaitGroup
	for i := range parts {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bounds, err := WinsorizeWithBounds(parts[i], targets, lowerFrac, upperFrac)
			if err != nil {
				errs[i] = fmt.Errorf("window %q: %w", boundaries[i].Label, err)
				return
			}
			windows[i] = WindowBounds{Boundary: boundaries[i], Rows: parts[i].Len(), Bounds: bounds}
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	for _, w := range windows {
		logger.Debug().Str("window", w.Boundary.Label).Int("rows", w.Rows).Msg("window clipped")
	}

	out, err := dataset.Concat(parts...)
	if err != nil {
		return nil, nil, err
	}
	return out, windows, nil
}

// ParseBoundaries reads "label=start..end" entries separated by ';' or ','.
// Labels are optional, dates use layout.
func ParseBoundaries(s string, layout string) ([]models.Boundary, error) {
	if layout == "" {
		layout = dataset.DefaultDateLayout
	}
	entries := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' })
	boundaries := make([]models.Boundary, 0, len(entries))
	for i, entry := range entries {
		entry = strings.TrimSpace(entry)
		label := fmt.Sprintf("window_%d", i+1)
		if eq := strings.Index(entry, "="); eq >= 0 {
			label = strings.TrimSpace(entry[:eq])
			entry = strings.TrimSpace(entry[eq+1:])
		}
		dates := strings.Split(entry, "..")
		if len(dates) != 2 {
			return nil, fmt.Errorf("%w: window %q is not start..end", ErrInvalidArgument, entry)
		}
		start, err := time.Parse(layout, strings.TrimSpace(dates[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: window %q start: %v", ErrInvalidArgument, label, err)
		}
		end, err := time.Parse(layout, strings.TrimSpace(dates[1]))
		if err != nil {
			return nil, fmt.Errorf("%w: window %q end: %v", ErrInvalidArgument, label, err)
		}
		boundaries = append(boundaries, models.Boundary{Label: label, Start: start, End: end})
	}
	if err := ValidateBoundaries(boundaries); err != nil {
		return nil, err
	}
	return boundaries, nil
}
