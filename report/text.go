package report

import (
	"bufio"
	"fmt"
	"io"
	"time"

	"github.com/use-agent/glean/models"
)

// TextWriter prints the plain-text report.
type TextWriter struct {
	output io.Writer
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{output: output}
}

// Write prints the header, then one block per element. Empty text and
// empty attribute sets are omitted from an element's block.
func (w *TextWriter) Write(result *models.ScrapeResult) error {
	bw := bufio.NewWriter(w.output)

	fmt.Fprintln(bw, "=== Web Scraping Results ===")
	fmt.Fprintf(bw, "URL: %s\n", result.URL)
	fmt.Fprintf(bw, "Selector: %s\n", result.Selector)
	fmt.Fprintf(bw, "Timestamp: %s\n", result.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(bw, "Found %d element(s):\n\n", len(result.Results))

	for i, el := range result.Results {
		fmt.Fprintf(bw, "--- Element %d ---\n", i+1)
		if el.Text != "" {
			fmt.Fprintf(bw, "Text: %s\n", el.Text)
		}
		if len(el.Attributes) > 0 {
			fmt.Fprintln(bw, "Attributes:")
			for _, k := range sortedKeys(el.Attributes) {
				fmt.Fprintf(bw, "  %s: %s\n", k, el.Attributes[k])
			}
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}
