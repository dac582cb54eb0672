// Package store saves clipped tables into ClickHouse through its mysql interface.
package store

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pivolan/go_utils"
	"github.com/pivolan/ridership_clipper/dataset"
	"github.com/pivolan/ridership_clipper/domain/models"
	"github.com/pivolan/ridership_clipper/gologger"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	BatchSize      = 5000
	dateTimeLayout = "2006-01-02 15:04:05"
	nullValue      = `\N`
)

var logger = gologger.NewLogger()

// Open connects to the ClickHouse mysql port, e.g. "default:@tcp(127.0.0.1:9004)/default"
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("cannot connect to clickhouse: %w", err)
	}
	return db, nil
}

// clickhouseType maps a column kind onto the ClickHouse type used to store it.
// Numeric columns are always Float64 since clipping can produce fractional bounds.
func clickhouseType(kind models.ColumnKind) string {
	switch {
	case kind == models.KindTime:
		return "DateTime"
	case kind.IsNumeric():
		return "Nullable(Float64)"
	default:
		return "String"
	}
}

// CreateTableSQL builds the DDL for t, ordered by the first date column
func CreateTableSQL(name string, t *dataset.Table) string {
	fields := make([]string, 0, len(t.Columns))
	orderBy := "tuple()"
	names := dataset.Identifiers(t)
	for i, c := range t.Columns {
		ident := names[i]
		fields = append(fields, fmt.Sprintf("%s %s", ident, clickhouseType(c.Kind)))
		if c.Kind == models.KindTime && orderBy == "tuple()" {
			orderBy = ident
		}
	}
	return "CREATE TABLE " + name + " (" + strings.Join(fields, ", ") + ") ENGINE = MergeTree ORDER BY " + orderBy
}

func formatValue(c *dataset.Column, row int) string {
	switch {
	case c.Kind == models.KindTime:
		if c.Times[row].IsZero() {
			return "1970-01-01 00:00:00"
		}
		return c.Times[row].Format(dateTimeLayout)
	case c.Kind.IsNumeric():
		v := c.Values[row]
		if math.IsNaN(v) {
			return nullValue
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return c.Strings[row]
	}
}

// InsertSQL splits t into INSERT ... FORMAT CSV statements of at most batchSize rows
func InsertSQL(name string, t *dataset.Table, batchSize int) ([]string, error) {
	if batchSize <= 0 {
		batchSize = BatchSize
	}
	var statements []string
	b := bytes.NewBufferString("")
	csvWriter := csv.NewWriter(b)
	flush := func() error {
		csvWriter.Flush()
		if err := csvWriter.Error(); err != nil {
			return err
		}
		if b.Len() > 0 {
			statements = append(statements, fmt.Sprintf("INSERT INTO %s FORMAT CSV\n%s", name, b.String()))
			b.Reset()
		}
		return nil
	}

	record := make([]string, len(t.Columns))
	for row := 0; row < t.Len(); row++ {
		for i, c := range t.Columns {
			record[i] = formatValue(c, row)
		}
		if err := csvWriter.Write(record); err != nil {
			return nil, err
		}
		if (row+1)%batchSize == 0 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return statements, nil
}

// SaveTable replaces the table called name with the contents of t
func SaveTable(db *gorm.DB, name string, t *dataset.Table) error {
	name = dataset.Identifier(name)
	if tx := db.Exec("DROP TABLE IF EXISTS " + name); tx.Error != nil {
		return fmt.Errorf("drop table %s: %w", name, tx.Error)
	}
	if tx := db.Exec(CreateTableSQL(name, t)); tx.Error != nil {
		return fmt.Errorf("create table %s: %w", name, tx.Error)
	}
	statements, err := InsertSQL(name, t, BatchSize)
	if err != nil {
		return err
	}
	for i, sql := range statements {
		if tx := db.Exec(sql); tx.Error != nil {
			return fmt.Errorf("insert batch %d into %s: %w", i, name, tx.Error)
		}
	}
	logger.Info().Str("table", name).Int("rows", t.Len()).Int("batches", len(statements)).Msg("table saved")
	return nil
}

// IsNumericType reports whether a ClickHouse column type holds numbers
func IsNumericType(_type string) bool {
	return go_utils.InArray(_type, []string{"Int64", "Float64", "Nullable(Int64)", "Nullable(Float64)"})
}
