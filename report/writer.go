// Package report renders a scrape result for humans and tools.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/use-agent/glean/models"
)

// Supported output formats.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Formats lists the accepted values of the --format flag.
var Formats = []string{FormatText, FormatJSON, FormatMarkdown}

// Writer renders one result to its destination.
type Writer interface {
	Write(result *models.ScrapeResult) error
}

// New returns the Writer for format. An unknown format is an
// ErrCodeInvalidInput error.
func New(format string, output io.Writer) (Writer, error) {
	switch format {
	case FormatText, "":
		return NewTextWriter(output), nil
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint()), nil
	case FormatMarkdown:
		return NewMarkdownWriter(output), nil
	default:
		return nil, models.NewScrapeError(models.ErrCodeInvalidInput,
			fmt.Sprintf("Unknown output format %q (want one of %v)", format, Formats), nil)
	}
}

// sortedKeys returns the attribute names in lexical order so output is stable.
func sortedKeys(attrs map[string]string) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
