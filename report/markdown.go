package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"
	"github.com/use-agent/glean/models"
)

// MarkdownWriter outputs the result as a Markdown document.
type MarkdownWriter struct {
	output io.Writer
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{output: output}
}

func (w *MarkdownWriter) Write(result *models.ScrapeResult) error {
	md := markdown.NewMarkdown(w.output)

	md.H1("Web Scraping Results")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"URL", tableCell(result.URL)},
			{"Selector", "`" + tableCell(result.Selector) + "`"},
			{"Timestamp", result.Timestamp.Format(time.RFC3339)},
			{"Elements", strconv.Itoa(len(result.Results))},
		},
	})
	md.PlainText("")

	for i, el := range result.Results {
		md.H2(fmt.Sprintf("Element %d", i+1))
		md.PlainText("")
		if el.Text != "" {
			md.PlainText(el.Text)
			md.PlainText("")
		}
		if len(el.Attributes) > 0 {
			rows := make([][]string, 0, len(el.Attributes))
			for _, k := range sortedKeys(el.Attributes) {
				rows = append(rows, []string{"`" + tableCell(k) + "`", tableCell(el.Attributes[k])})
			}
			md.Table(markdown.TableSet{
				Header: []string{"Attribute", "Value"},
				Rows:   rows,
			})
			md.PlainText("")
		}
	}

	if err := md.Build(); err != nil {
		return fmt.Errorf("report: build markdown: %w", err)
	}
	return nil
}

var cellReplacer = strings.NewReplacer(
	"|", `\|`,
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

// tableCell keeps a value on one table row: pipes are escaped and line
// breaks become spaces.
func tableCell(s string) string {
	return cellReplacer.Replace(s)
}
