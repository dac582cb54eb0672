// Package pipeline runs load, describe, segment-and-clip and describe again
// for one ridership table, and renders what the surfaces hand back to users.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/pivolan/ridership_clipper/config"
	"github.com/pivolan/ridership_clipper/dataset"
	"github.com/pivolan/ridership_clipper/domain/models"
	"github.com/pivolan/ridership_clipper/gologger"
	"github.com/pivolan/ridership_clipper/report"
	"github.com/pivolan/ridership_clipper/winsor"
)

var logger = gologger.NewLogger()

type Options struct {
	DateColumn string
	DateLayout string
	Columns    []string // empty means every numeric column
	Boundaries []models.Boundary
	Lower      float64
	Upper      float64
}

func OptionsFromConfig(cfg *config.Config) (*Options, error) {
	boundaries, err := winsor.ParseBoundaries(cfg.Boundaries, cfg.DateFormat)
	if err != nil {
		return nil, fmt.Errorf("BOUNDARIES: %w", err)
	}
	return &Options{
		DateColumn: cfg.DateColumn,
		DateLayout: cfg.DateFormat,
		Columns:    cfg.ClipColumns,
		Boundaries: boundaries,
		Lower:      cfg.LowerFrac,
		Upper:      cfg.UpperFrac,
	}, nil
}

// Clone copies o so a request can override fields without touching shared defaults
func (o *Options) Clone() *Options {
	c := *o
	c.Columns = append([]string(nil), o.Columns...)
	c.Boundaries = append([]models.Boundary(nil), o.Boundaries...)
	return &c
}

func (o *Options) csvOptions() *dataset.CSVOptions {
	csvOpts := dataset.DefaultCSVOptions()
	csvOpts.DateColumn = o.DateColumn
	if o.DateLayout != "" && o.DateLayout != dataset.DefaultDateLayout {
		csvOpts.DateLayouts = append([]string{o.DateLayout}, csvOpts.DateLayouts...)
	}
	return csvOpts
}

type Result struct {
	Source  string
	Raw     *dataset.Table
	Clipped *dataset.Table
	Columns []string
	Before  []models.ColumnStats
	After   []models.ColumnStats
	Windows []winsor.WindowBounds
	Options *Options
}

func targetColumns(t *dataset.Table, opts *Options) []string {
	candidates := opts.Columns
	if len(candidates) == 0 {
		candidates = t.NumericColumns()
	}
	var columns []string
	for _, name := range candidates {
		if name != opts.DateColumn {
			columns = append(columns, name)
		}
	}
	return columns
}

// Run clips t inside the configured windows and describes it before and after
func Run(t *dataset.Table, opts *Options) (*Result, error) {
	columns := targetColumns(t, opts)
	before, err := report.Describe(t, columns)
	if err != nil {
		return nil, err
	}
	clipped, windows, err := winsor.SegmentAndClipWithBounds(t, opts.DateColumn, columns, opts.Boundaries, opts.Lower, opts.Upper)
	if err != nil {
		return nil, err
	}
	after, err := report.Describe(clipped, columns)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Int("rows_in", t.Len()).
		Int("rows_out", clipped.Len()).
		Strs("columns", columns).
		Float64("lower", opts.Lower).
		Float64("upper", opts.Upper).
		Msg("table clipped")
	return &Result{
		Raw:     t,
		Clipped: clipped,
		Columns: columns,
		Before:  before,
		After:   after,
		Windows: windows,
		Options: opts,
	}, nil
}

func LoadFile(path string, opts *Options) (*dataset.Table, error) {
	return dataset.LoadCSV(path, opts.csvOptions())
}

// RunFile loads a CSV (plain or archived) and runs it
func RunFile(path string, opts *Options) (*Result, error) {
	t, err := LoadFile(path, opts)
	if err != nil {
		return nil, err
	}
	r, err := Run(t, opts)
	if err != nil {
		return nil, err
	}
	r.Source = path
	return r, nil
}

// Summary is the plain-text report: stats before, stats after and the per-window bounds
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rows: %d loaded, %d inside windows\n\n", r.Raw.Len(), r.Clipped.Len())
	b.WriteString("Before clipping\n")
	b.WriteString(report.RenderStats(r.Before))
	b.WriteString("\n\nAfter clipping\n")
	b.WriteString(report.RenderStats(r.After))
	b.WriteString("\n\nWindows\n")
	b.WriteString(report.RenderWindows(r.Windows, r.dateLayout()))
	b.WriteString("\n")
	return b.String()
}

func (r *Result) dateLayout() string {
	if r.Options == nil || r.Options.DateLayout == "" {
		return dataset.DefaultDateLayout
	}
	return r.Options.DateLayout
}

// FindColumn matches a target column by name or by its identifier form,
// which is what bot commands carry
func (r *Result) FindColumn(name string) (string, bool) {
	for _, c := range r.Columns {
		if c == name || dataset.Identifier(c) == name {
			return c, true
		}
	}
	return "", false
}
