package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pivolan/ridership_clipper/domain/models"
	"github.com/xitongsys/parquet-go/writer"
)

type parquetJSONSchema struct {
	Tag    string               `json:",omitempty"`
	Fields []*parquetJSONSchema `json:",omitempty"`
}

func parquetFieldTag(c *Column, name string) string {
	var tags []string
	switch c.Kind {
	case models.KindInt, models.KindFloat:
		tags = append(tags, "type=DOUBLE")
	default:
		// dates are written as formatted strings
		tags = append(tags, "type=BYTE_ARRAY", "convertedtype=UTF8", "encoding=PLAIN")
	}
	tags = append(tags, "name="+name, "repetitiontype=OPTIONAL")
	return strings.Join(tags, ", ")
}

// ParquetSchema returns the parquet-go JSON schema for the table
func ParquetSchema(t *Table) (string, error) {
	root := parquetJSONSchema{Tag: "name=parquet_go_root, repetitiontype=REQUIRED"}
	names := Identifiers(t)
	for i, c := range t.Columns {
		root.Fields = append(root.Fields, &parquetJSONSchema{Tag: parquetFieldTag(c, names[i])})
	}
	b, err := json.Marshal(root)
	if err != nil {
		return "", fmt.Errorf("error in json.Marshal: %w", err)
	}
	return string(b), nil
}

func WriteParquet(w io.Writer, t *Table, dateLayout string) error {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	schema, err := ParquetSchema(t)
	if err != nil {
		return err
	}
	pw, err := writer.NewJSONWriterFromWriter(schema, w, 4)
	if err != nil {
		return fmt.Errorf("error in NewJSONWriterFromWriter: %w", err)
	}

	names := Identifiers(t)
	for i := 0; i < t.Len(); i++ {
		row := make(map[string]any, len(t.Columns))
		for j, c := range t.Columns {
			key := names[j]
			switch {
			case c.IsMissing(i):
				row[key] = nil
			case c.Kind.IsNumeric():
				row[key] = c.Values[i]
			default:
				row[key] = formatCell(c, i, dateLayout)
			}
		}
		rowBytes, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("error in json.Marshal of row %d: %w", i, err)
		}
		if err := pw.Write(string(rowBytes)); err != nil {
			return fmt.Errorf("error in pw.Write for row %d: %w", i, err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("error in pw.WriteStop: %w", err)
	}
	return nil
}
