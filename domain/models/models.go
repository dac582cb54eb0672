package models

import "time"

type ColumnKind int

const (
	KindUnknown ColumnKind = iota
	KindTime
	KindInt
	KindFloat
	KindString
)

func (k ColumnKind) String() string {
	switch k {
	case KindTime:
		return "DateTime"
	case KindInt:
		return "Int64"
	case KindFloat:
		return "Float64"
	case KindString:
		return "String"
	default:
		return ""
	}
}

func (k ColumnKind) IsNumeric() bool {
	return k == KindInt || k == KindFloat
}

type ColumnInfo struct {
	Name string
	Kind ColumnKind
}

// Boundary is a half-open window [Start, End)
type Boundary struct {
	Label string
	Start time.Time
	End   time.Time
}

func (b Boundary) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

type ClipBounds struct {
	Column  string
	Lower   float64
	Upper   float64
	Present int // non-missing values the bounds were computed from
	Clipped int
}

type ColumnStats struct {
	Name     string
	Count    int
	Missing  int
	Mean     float64
	Std      float64
	Min      float64
	Q25      float64
	Median   float64
	Q75      float64
	Max      float64
	IQR      float64
	Outliers int
}
