// Package selector compiles selector expressions and matches them against a
// parsed HTML tree.
//
// The Compiler and Matcher interfaces keep callers independent of the
// selector grammar. CSS is the default implementation, backed by cascadia for
// parsing and goquery for traversal.
package selector

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// Compiler turns a selector expression into a reusable Matcher.
type Compiler interface {
	Compile(expr string) (Matcher, error)
}

// Matcher returns the nodes under root that satisfy a compiled expression.
// Results are in document order and contain no duplicates.
type Matcher interface {
	Match(root *html.Node) []*html.Node
	String() string
}

// SyntaxError reports a selector that failed to compile.
type SyntaxError struct {
	Expr string
	Err  error
}

func (e *SyntaxError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid CSS selector %q: %v", e.Expr, e.Err)
	}
	return fmt.Sprintf("invalid CSS selector %q", e.Expr)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// CSS compiles CSS selector groups such as "h1, div.price > span".
type CSS struct{}

// Compile parses expr eagerly; any grammar error is a *SyntaxError.
func (CSS) Compile(expr string) (Matcher, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, &SyntaxError{Expr: expr, Err: fmt.Errorf("empty selector")}
	}

	group, err := cascadia.ParseGroup(expr)
	if err != nil {
		return nil, &SyntaxError{Expr: expr, Err: err}
	}

	return &cssMatcher{expr: expr, group: group}, nil
}

// Compile is shorthand for CSS{}.Compile.
func Compile(expr string) (Matcher, error) {
	return CSS{}.Compile(expr)
}

type cssMatcher struct {
	expr  string
	group cascadia.SelectorGroup
}

func (m *cssMatcher) String() string { return m.expr }

// Match walks the tree through goquery so that selector groups come back
// merged in document order rather than grouped per selector.
func (m *cssMatcher) Match(root *html.Node) []*html.Node {
	if root == nil {
		return nil
	}
	doc := goquery.NewDocumentFromNode(root)
	return doc.FindMatcher(groupMatcher{m.group}).Nodes
}

// groupMatcher adapts a cascadia.SelectorGroup to goquery.Matcher.
type groupMatcher struct {
	group cascadia.SelectorGroup
}

func (g groupMatcher) Match(n *html.Node) bool {
	return g.group.Match(n)
}

// MatchAll returns n (if it matches) followed by its matching descendants,
// in pre-order.
func (g groupMatcher) MatchAll(n *html.Node) []*html.Node {
	var out []*html.Node
	if g.group.Match(n) {
		out = append(out, n)
	}
	return append(out, cascadia.QueryAll(n, g.group)...)
}

func (g groupMatcher) Filter(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		if g.group.Match(n) {
			out = append(out, n)
		}
	}
	return out
}
