package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pivolan/ridership_clipper/dataset"
	"github.com/pivolan/ridership_clipper/plot"
	"github.com/pivolan/ridership_clipper/winsor"
)

const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"

	histogramBins = 20
)

func (r *Result) WriteCSV(w io.Writer) error {
	return dataset.WriteCSV(w, r.Clipped, r.dateLayout())
}

// WriteOutput saves the clipped table as csv or parquet
func (r *Result) WriteOutput(path, format string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	switch format {
	case FormatCSV, "":
		err = r.WriteCSV(f)
	case FormatParquet:
		err = dataset.WriteParquet(f, r.Clipped, r.dateLayout())
	default:
		err = fmt.Errorf("unknown output format %q", format)
	}
	if err == nil {
		logger.Info().Str("path", path).Str("format", format).Int("rows", r.Clipped.Len()).Msg("output written")
	}
	return err
}

func seriesOf(t *dataset.Table, columns []string) []plot.Series {
	series := make([]plot.Series, 0, len(columns))
	for _, name := range columns {
		values, err := t.Numeric(name)
		if err != nil {
			continue
		}
		series = append(series, plot.Series{Name: name, Values: values})
	}
	return series
}

// CompareGroups puts the raw table next to the clipped one
func (r *Result) CompareGroups() []plot.BoxGroup {
	return []plot.BoxGroup{
		{Label: "raw", Series: seriesOf(r.Raw, r.Columns)},
		{Label: "clipped", Series: seriesOf(r.Clipped, r.Columns)},
	}
}

// WindowGroups has one box per window of the clipped table
func (r *Result) WindowGroups() ([]plot.BoxGroup, error) {
	parts, err := winsor.Segment(r.Clipped, r.Options.DateColumn, r.Options.Boundaries)
	if err != nil {
		return nil, err
	}
	groups := make([]plot.BoxGroup, len(parts))
	for i, part := range parts {
		groups[i] = plot.BoxGroup{Label: r.Options.Boundaries[i].Label, Series: seriesOf(part, r.Columns)}
	}
	return groups, nil
}

func (r *Result) WriteBoxPlots(w io.Writer) error {
	return plot.RenderBoxPlots(w, "Ridership before and after clipping", r.CompareGroups())
}

func (r *Result) WriteWindowBoxPlots(w io.Writer) error {
	groups, err := r.WindowGroups()
	if err != nil {
		return err
	}
	return plot.RenderBoxPlots(w, "Clipped ridership per window", groups)
}

func (r *Result) table(clipped bool) *dataset.Table {
	if clipped {
		return r.Clipped
	}
	return r.Raw
}

// TimeSeries draws one column of the raw or clipped table over the date column
func (r *Result) TimeSeries(column string, clipped bool) ([]byte, error) {
	t := r.table(clipped)
	times, err := t.Times(r.Options.DateColumn)
	if err != nil {
		return nil, err
	}
	values, err := t.Numeric(column)
	if err != nil {
		return nil, err
	}
	return plot.DrawTimeSeries(times, values, column)
}

func (r *Result) Histogram(column string, clipped bool) ([]byte, error) {
	values, err := r.table(clipped).Numeric(column)
	if err != nil {
		return nil, err
	}
	h, err := plot.NewHistogram(values, histogramBins, column)
	if err != nil {
		return nil, err
	}
	return plot.DrawPlotBar(h)
}

func writeFile(path string, write func(w io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return write(f)
}

// WriteReport fills dir with the summary, both box plot pages and
// a time series and histogram per clipped column. It returns the written paths.
func (r *Result) WriteReport(dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	var written []string

	pages := []struct {
		name  string
		write func(w io.Writer) error
	}{
		{"summary.txt", func(w io.Writer) error {
			_, err := io.WriteString(w, r.Summary())
			return err
		}},
		{"boxplots.html", r.WriteBoxPlots},
		{"windows.html", r.WriteWindowBoxPlots},
	}
	for _, p := range pages {
		path := filepath.Join(dir, p.name)
		if err := writeFile(path, p.write); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}

	for _, column := range r.Columns {
		charts := map[string]func() ([]byte, error){
			"timeseries": func() ([]byte, error) { return r.TimeSeries(column, true) },
			"histogram":  func() ([]byte, error) { return r.Histogram(column, true) },
		}
		for kind, draw := range charts {
			png, err := draw()
			if errors.Is(err, plot.ErrNoValues) {
				logger.Warn().Str("column", column).Str("chart", kind).Msg("nothing to draw")
				continue
			}
			if err != nil {
				return written, fmt.Errorf("%s of %s: %w", kind, column, err)
			}
			path := filepath.Join(dir, fmt.Sprintf("%s_%s.png", kind, dataset.Identifier(column)))
			if err := os.WriteFile(path, png, 0644); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}
	logger.Info().Str("dir", dir).Int("files", len(written)).Msg("report written")
	return written, nil
}
