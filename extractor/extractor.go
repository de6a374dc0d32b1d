// Package extractor turns matched HTML nodes into structured elements.
package extractor

import (
	"strings"

	"golang.org/x/net/html"
)

// Element is the structured form of one matched node.
type Element struct {
	Text       string            `json:"text"`
	Attributes map[string]string `json:"attributes"`
}

// Empty reports whether the element carries neither text nor attributes.
func (e Element) Empty() bool {
	return e.Text == "" && len(e.Attributes) == 0
}

// Extractor converts a single node. The bool result is false when the node
// should be dropped from the result set.
type Extractor interface {
	Extract(n *html.Node) (Element, bool)
}

// Default joins descendant text with single spaces and copies the node's own
// attributes verbatim.
type Default struct{}

func (Default) Extract(n *html.Node) (Element, bool) {
	if n == nil {
		return Element{}, false
	}

	el := Element{
		Text:       Text(n),
		Attributes: Attributes(n),
	}
	if el.Empty() {
		return Element{}, false
	}
	return el, true
}

// ExtractAll applies e to nodes in order and drops rejected nodes.
func ExtractAll(e Extractor, nodes []*html.Node) []Element {
	out := make([]Element, 0, len(nodes))
	for _, n := range nodes {
		if el, ok := e.Extract(n); ok {
			out = append(out, el)
		}
	}
	return out
}

// Text concatenates every descendant text node of n in document order,
// separated by a single space, then trims the result.
func Text(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			parts = append(parts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

// Attributes returns the attributes set on n itself. Namespaced attributes
// are keyed "ns:key". The parser already keeps only the first of duplicate
// names; the map enforces the same if a tree was built by hand.
func Attributes(n *html.Node) map[string]string {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + a.Key
		}
		if _, dup := attrs[key]; dup {
			continue
		}
		attrs[key] = a.Val
	}
	return attrs
}
