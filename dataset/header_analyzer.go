package dataset

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
)

type HeaderAnalysis struct {
	Headers        []string
	FirstRowIsData bool
	FirstDataRow   []string
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
	regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`),
	regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`),
	regexp.MustCompile(`^\d{4}-\d{2}-\d{2}[\sT]\d{2}:\d{2}:\d{2}`),
}

var nonIdentifier = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

// AnalyzeHeaders decides whether the first CSV row is a header and returns usable column names
func AnalyzeHeaders(firstRow []string) *HeaderAnalysis {
	if len(firstRow) == 0 {
		return nil
	}

	result := &HeaderAnalysis{
		Headers:      make([]string, len(firstRow)),
		FirstDataRow: firstRow,
	}

	headerLikeCount := 0
	for _, field := range firstRow {
		if isLikelyHeader(field) {
			headerLikeCount++
		}
	}

	if float64(headerLikeCount)/float64(len(firstRow)) >= 0.5 {
		for i, header := range firstRow {
			result.Headers[i] = cleanHeaderName(header, i)
		}
	} else {
		result.FirstRowIsData = true
		for i := range firstRow {
			result.Headers[i] = generateColumnName(i)
		}
	}

	result.Headers = ValidateHeaders(result.Headers)
	return result
}

func isLikelyHeader(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}
	if _, err := strconv.ParseFloat(text, 64); err == nil {
		return false
	}
	for _, pattern := range datePatterns {
		if pattern.MatchString(text) {
			return false
		}
	}

	letters, others := 0, 0
	for _, r := range text {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsSpace(r):
		default:
			others++
		}
	}
	total := letters + others
	if total == 0 {
		return false
	}
	return letters > 0 && float64(letters)/float64(total) >= 0.3
}

func generateColumnName(index int) string {
	return fmt.Sprintf("column_%d", index+1)
}

// ValidateHeaders suffixes repeated names with _1, _2, ...
func ValidateHeaders(headers []string) []string {
	seen := make(map[string]bool)
	result := make([]string, len(headers))

	for i, header := range headers {
		name := header
		for counter := 1; seen[name]; counter++ {
			name = fmt.Sprintf("%s_%d", header, counter)
		}
		seen[name] = true
		result[i] = name
	}
	return result
}

// cleanHeaderName keeps the author's casing so configured names like "Date" still match
func cleanHeaderName(header string, index int) string {
	header = strings.TrimSpace(strings.Trim(header, "\ufeff\""))
	if header == "" || !isLikelyHeader(header) {
		return generateColumnName(index)
	}
	return header
}

// Identifier turns a header into a storage-safe name (parquet fields, ClickHouse columns)
func Identifier(name string) string {
	cleaned := nonIdentifier.ReplaceAllString(unidecode.Unidecode(name), "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return "column"
	}
	if unicode.IsDigit(rune(cleaned[0])) {
		cleaned = "c_" + cleaned
	}
	return cleaned
}

// Identifiers maps every column of t to a storage name, suffixing
// names that collide after Identifier with _1, _2, ...
func Identifiers(t *Table) []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = Identifier(c.Name)
	}
	return ValidateHeaders(names)
}
