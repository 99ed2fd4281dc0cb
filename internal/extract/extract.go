// Package extract turns source files of supported formats into plain text
// for chunking and embedding.
package extract

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedType reports a file type that is neither declared nor
	// inferable from the extension.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrExtraction reports a failure reading or parsing a source file.
	// Extraction failures are not transient and are never retried.
	ErrExtraction = errors.New("text extraction failed")
)

// Type identifies a supported source file format.
type Type string

const (
	TypeTXT  Type = "txt"
	TypeMD   Type = "md"
	TypePDF  Type = "pdf"
	TypeCSV  Type = "csv"
	TypeJSON Type = "json"
)

// ResolveType determines the file type from the declared value, falling
// back to the path extension. An unrecognized type in either position
// fails with ErrUnsupportedType.
func ResolveType(path, declared string) (Type, error) {
	name := strings.ToLower(declared)
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch name {
	case "txt", "text":
		return TypeTXT, nil
	case "md", "markdown":
		return TypeMD, nil
	case "pdf":
		return TypePDF, nil
	case "csv":
		return TypeCSV, nil
	case "json":
		return TypeJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedType, name)
}

// Extractor reads a source file and produces its plain text content.
type Extractor struct{}

// New creates a new Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the text content of the file at path, interpreted as the
// given type. Failures wrap ErrExtraction with the underlying cause.
func (e *Extractor) Extract(path string, typ Type) (string, error) {
	var (
		text string
		err  error
	)
	switch typ {
	case TypeTXT:
		text, err = readText(path)
	case TypeMD:
		text, err = readMarkdown(path)
	case TypePDF:
		text, err = readPDF(path)
	case TypeCSV:
		text, err = readCSV(path)
	case TypeJSON:
		text, err = readJSON(path)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, typ)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrExtraction, path, err)
	}
	return text, nil
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readCSV renders a CSV file as one line per record with comma-separated
// fields, header row included.
func readCSV(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, record := range records {
		b.WriteString(strings.Join(record, ", "))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// readJSON flattens a JSON document into "path: value" lines with map keys
// sorted, so extraction output is deterministic.
func readJSON(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", err
	}

	var lines []string
	flattenJSON("", doc, &lines)
	return strings.Join(lines, "\n"), nil
}

func flattenJSON(prefix string, v any, lines *[]string) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenJSON(joinPath(prefix, k), val[k], lines)
		}
	case []any:
		for i, item := range val {
			flattenJSON(joinPath(prefix, strconv.Itoa(i)), item, lines)
		}
	case nil:
		*lines = append(*lines, prefix+": null")
	case bool:
		*lines = append(*lines, prefix+": "+strconv.FormatBool(val))
	case float64:
		*lines = append(*lines, prefix+": "+strconv.FormatFloat(val, 'g', -1, 64))
	case string:
		*lines = append(*lines, prefix+": "+val)
	default:
		*lines = append(*lines, fmt.Sprintf("%s: %v", prefix, val))
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
