package dataset

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/pivolan/ridership_clipper/domain/models"
)

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrNotNumeric     = errors.New("column is not numeric")
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrInvalidData    = errors.New("invalid data")
	ErrNotTime        = errors.New("column is not a timestamp")
)

// Column holds one homogeneous column. Only the slice matching Kind is used:
// Times for KindTime, Values for KindInt/KindFloat, Strings for KindString.
// Missing values are the zero time, NaN and "" respectively.
type Column struct {
	Name    string
	Kind    models.ColumnKind
	Times   []time.Time
	Values  []float64
	Strings []string
}

func NewTimeColumn(name string, values []time.Time) *Column {
	return &Column{Name: name, Kind: models.KindTime, Times: values}
}

func NewFloatColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: models.KindFloat, Values: values}
}

func NewIntColumn(name string, values []int64) *Column {
	floats := make([]float64, len(values))
	for i, v := range values {
		floats[i] = float64(v)
	}
	return &Column{Name: name, Kind: models.KindInt, Values: floats}
}

func NewStringColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: models.KindString, Strings: values}
}

func (c *Column) Len() int {
	switch c.Kind {
	case models.KindTime:
		return len(c.Times)
	case models.KindString:
		return len(c.Strings)
	default:
		return len(c.Values)
	}
}

func (c *Column) IsMissing(i int) bool {
	switch c.Kind {
	case models.KindTime:
		return c.Times[i].IsZero()
	case models.KindString:
		return c.Strings[i] == ""
	default:
		return math.IsNaN(c.Values[i])
	}
}

// Value returns the cell as time.Time, float64 or string, nil when missing
func (c *Column) Value(i int) any {
	if c.IsMissing(i) {
		return nil
	}
	switch c.Kind {
	case models.KindTime:
		return c.Times[i]
	case models.KindString:
		return c.Strings[i]
	default:
		return c.Values[i]
	}
}

func (c *Column) selectRows(idx []int) *Column {
	out := &Column{Name: c.Name, Kind: c.Kind}
	switch c.Kind {
	case models.KindTime:
		out.Times = make([]time.Time, len(idx))
		for i, j := range idx {
			out.Times[i] = c.Times[j]
		}
	case models.KindString:
		out.Strings = make([]string, len(idx))
		for i, j := range idx {
			out.Strings[i] = c.Strings[j]
		}
	default:
		out.Values = make([]float64, len(idx))
		for i, j := range idx {
			out.Values[i] = c.Values[j]
		}
	}
	return out
}

func (c *Column) appendFrom(other *Column) {
	c.Times = append(c.Times, other.Times...)
	c.Values = append(c.Values, other.Values...)
	c.Strings = append(c.Strings, other.Strings...)
}

// Table is an ordered set of equally long columns
type Table struct {
	Columns []*Column
}

func New(columns ...*Column) (*Table, error) {
	seen := map[string]bool{}
	for _, c := range columns {
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrSchemaMismatch, c.Name)
		}
		seen[c.Name] = true
		if c.Len() != columns[0].Len() {
			return nil, fmt.Errorf("%w: column %q has %d rows, expected %d", ErrSchemaMismatch, c.Name, c.Len(), columns[0].Len())
		}
	}
	return &Table{Columns: columns}, nil
}

// MustNew is New for literals in tests and examples
func MustNew(columns ...*Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func (t *Table) Info() []models.ColumnInfo {
	info := make([]models.ColumnInfo, len(t.Columns))
	for i, c := range t.Columns {
		info[i] = models.ColumnInfo{Name: c.Name, Kind: c.Kind}
	}
	return info
}

func (t *Table) Column(name string) (*Column, error) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// Numeric returns the backing slice of a numeric column, writes go to the table
func (t *Table) Numeric(name string) ([]float64, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if !c.Kind.IsNumeric() {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotNumeric, name, c.Kind)
	}
	return c.Values, nil
}

func (t *Table) Times(name string) ([]time.Time, error) {
	c, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if c.Kind != models.KindTime {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotTime, name, c.Kind)
	}
	return c.Times, nil
}

// NumericColumns lists numeric column names in table order
func (t *Table) NumericColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if c.Kind.IsNumeric() {
			names = append(names, c.Name)
		}
	}
	return names
}

// Select builds a new table from the given row indexes, in that order.
// Storage is copied so the result can be mutated independently.
func (t *Table) Select(idx []int) *Table {
	out := &Table{Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = c.selectRows(idx)
	}
	return out
}

func (t *Table) Filter(keep func(row int) bool) *Table {
	idx := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return t.Select(idx)
}

func (t *Table) Clone() *Table {
	return t.Filter(func(int) bool { return true })
}

func (t *Table) Row(i int) map[string]any {
	row := make(map[string]any, len(t.Columns))
	for _, c := range t.Columns {
		row[c.Name] = c.Value(i)
	}
	return row
}

// Concat appends parts in order. All parts must share names and kinds.
func Concat(parts ...*Table) (*Table, error) {
	if len(parts) == 0 {
		return &Table{}, nil
	}
	out := &Table{Columns: make([]*Column, len(parts[0].Columns))}
	for i, c := range parts[0].Columns {
		out.Columns[i] = &Column{Name: c.Name, Kind: c.Kind}
	}
	for n, part := range parts {
		if len(part.Columns) != len(out.Columns) {
			return nil, fmt.Errorf("%w: part %d has %d columns, expected %d", ErrSchemaMismatch, n, len(part.Columns), len(out.Columns))
		}
		for i, c := range part.Columns {
			if c.Name != out.Columns[i].Name || c.Kind != out.Columns[i].Kind {
				return nil, fmt.Errorf("%w: part %d column %d is %s %q, expected %s %q",
					ErrSchemaMismatch, n, i, c.Kind, c.Name, out.Columns[i].Kind, out.Columns[i].Name)
			}
			out.Columns[i].appendFrom(c)
		}
	}
	return out, nil
}
