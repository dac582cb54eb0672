package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pivolan/go_utils"
	"github.com/pivolan/ridership_clipper/domain/models"
	"github.com/pivolan/ridership_clipper/gologger"
)

var logger = gologger.NewLogger()

const DefaultDateLayout = "2006-01-02"

type CSVOptions struct {
	Delimiter   rune
	DateColumn  string   // always parsed as a timestamp, bad values are an error
	DateLayouts []string // tried in order for every cell while sniffing
	SniffRows   int      // rows used to decide column kinds
}

func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		Delimiter:  ',',
		DateColumn: "Date",
		DateLayouts: []string{
			"2006-01-02 15:04:05.999999",
			"2006-01-02 15:04:05",
			DefaultDateLayout,
			"01/02/2006",
			"02.01.2006",
			time.RFC3339,
		},
		SniffRows: 50000,
	}
}

var missingTokens = []string{"", "NA", "N/A", "NaN", "nan", "null", "NULL"}

var thousandsNumber = regexp.MustCompile(`^-?\d{1,3}(,\d{3})+(\.\d+)?$`)

func isMissingCell(value string) bool {
	return go_utils.InArray(strings.TrimSpace(value), missingTokens)
}

// normalizeNumber accepts "1,234,567" and "97%" as they show up in ridership exports
func normalizeNumber(value string) string {
	value = strings.TrimSuffix(strings.TrimSpace(value), "%")
	if thousandsNumber.MatchString(value) {
		value = strings.ReplaceAll(value, ",", "")
	}
	return value
}

func parseTime(value string, layouts []string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q as a date", value)
}

func detectKind(value string, layouts []string) models.ColumnKind {
	if _, err := parseTime(value, layouts); err == nil {
		return models.KindTime
	}
	n := normalizeNumber(value)
	if _, err := strconv.ParseInt(n, 10, 64); err == nil {
		return models.KindInt
	}
	if _, err := strconv.ParseFloat(n, 64); err == nil {
		return models.KindFloat
	}
	return models.KindString
}

// sniffKinds picks the widest kind seen per column: time < int < float < string
func sniffKinds(rows [][]string, width int, opts *CSVOptions) []models.ColumnKind {
	kinds := make([]models.ColumnKind, width)
	for r, row := range rows {
		if r >= opts.SniffRows {
			break
		}
		for n, value := range row {
			if n >= width || isMissingCell(value) {
				continue
			}
			if k := detectKind(value, opts.DateLayouts); k > kinds[n] {
				kinds[n] = k
			}
		}
	}
	for n, k := range kinds {
		if k == models.KindUnknown {
			kinds[n] = models.KindString
		}
	}
	return kinds
}

func LoadCSV(filePath string, opts *CSVOptions) (*Table, error) {
	rc, err := Open(filePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, err := LoadCSVFromReader(rc, opts)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filePath, err)
	}
	logger.Debug().Str("path", filePath).Int("rows", t.Len()).Strs("columns", t.Names()).Msg("csv loaded")
	return t, nil
}

func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Table, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	reader := csv.NewReader(r)
	reader.Comma = opts.Delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: csv is empty", ErrInvalidData)
	}

	analysis := AnalyzeHeaders(records[0])
	headers := analysis.Headers
	rows := records[1:]
	if analysis.FirstRowIsData {
		rows = records
	}

	kinds := sniffKinds(rows, len(headers), opts)
	for n, h := range headers {
		if h == opts.DateColumn {
			kinds[n] = models.KindTime
		}
	}

	columns := make([]*Column, len(headers))
	for n, h := range headers {
		columns[n] = &Column{Name: h, Kind: kinds[n]}
	}
	for r, row := range rows {
		for n, c := range columns {
			value := ""
			if n < len(row) {
				value = row[n]
			}
			if err := appendCell(c, value, opts); err != nil {
				return nil, fmt.Errorf("row %d: %w", r+1, err)
			}
		}
	}
	return New(columns...)
}

func appendCell(c *Column, value string, opts *CSVOptions) error {
	missing := isMissingCell(value)
	switch c.Kind {
	case models.KindTime:
		var t time.Time
		if !missing {
			parsed, err := parseTime(value, opts.DateLayouts)
			if err != nil && c.Name == opts.DateColumn {
				return fmt.Errorf("%w: column %q: %v", ErrInvalidData, c.Name, err)
			}
			t = parsed
		}
		c.Times = append(c.Times, t)
	case models.KindString:
		if missing {
			value = ""
		}
		c.Strings = append(c.Strings, value)
	default:
		v := math.NaN()
		if !missing {
			if parsed, err := strconv.ParseFloat(normalizeNumber(value), 64); err == nil {
				v = parsed
			}
		}
		c.Values = append(c.Values, v)
	}
	return nil
}

func formatCell(c *Column, i int, dateLayout string) string {
	if c.IsMissing(i) {
		return ""
	}
	switch c.Kind {
	case models.KindTime:
		return c.Times[i].Format(dateLayout)
	case models.KindString:
		return c.Strings[i]
	default:
		return strconv.FormatFloat(c.Values[i], 'f', -1, 64)
	}
}

func WriteCSV(w io.Writer, t *Table, dateLayout string) error {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Names()); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for i := 0; i < t.Len(); i++ {
		for n, c := range t.Columns {
			record[n] = formatCell(c, i, dateLayout)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func SaveCSV(filePath string, t *Table, dateLayout string) (err error) {
	f, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return WriteCSV(f, t, dateLayout)
}
