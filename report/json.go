package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/use-agent/glean/models"
)

// JSONWriter outputs the result as a single JSON object.
type JSONWriter struct {
	output       io.Writer
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter; output is compact unless an indent
// option is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{output: output}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *JSONWriter) Write(result *models.ScrapeResult) error {
	enc := json.NewEncoder(w.output)
	enc.SetEscapeHTML(false)
	if w.indentPrefix != "" || w.indentString != "" {
		enc.SetIndent(w.indentPrefix, w.indentString)
	}
	if err := enc.Encode(result); err != nil {
		return fmt.Errorf("report: encode json: %w", err)
	}
	return nil
}

// DecodeJSON reads back a result written by JSONWriter.
func DecodeJSON(r io.Reader) (*models.ScrapeResult, error) {
	var result models.ScrapeResult
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return nil, fmt.Errorf("report: decode json: %w", err)
	}
	return &result, nil
}
