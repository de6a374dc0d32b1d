// Package robots evaluates robots.txt exclusion rules for a single agent.
//
// Only User-agent and Disallow directives are recognised. A Disallow applies
// to the User-agent block(s) most recently opened, and any recorded prefix
// that starts the requested path disallows it. There is no longest-match
// precedence and no Allow override.
package robots

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	userAgentDirective = "User-agent:"
	disallowDirective  = "Disallow:"
)

// AgentMatcher identifies the agent(s) a rule block applies to.
type AgentMatcher struct {
	// Name is "*" for the wildcard, otherwise a literal agent name.
	Name string
}

// Wildcard reports whether the matcher applies to every agent.
func (m AgentMatcher) Wildcard() bool { return m.Name == "*" }

// Matches reports whether agent falls under this matcher. Literal names are
// compared case-insensitively against the whole agent string.
func (m AgentMatcher) Matches(agent string) bool {
	return m.Wildcard() || strings.EqualFold(m.Name, agent)
}

// Rule is one Disallow directive scoped to an agent block.
type Rule struct {
	AppliesTo AgentMatcher
	Prefix    string
}

func (r Rule) String() string {
	return fmt.Sprintf("Disallow: %s", r.Prefix)
}

// Decision is the outcome of evaluating a path.
type Decision struct {
	Allowed bool
	// MatchedRule is the first rule whose prefix matched, nil when allowed.
	MatchedRule *Rule
}

// Evaluate decides whether agent may fetch path under document.
// It never fails: unrecognised or malformed lines are skipped.
func Evaluate(document, agent, path string) Decision {
	for _, rule := range Rules(document, agent) {
		if strings.HasPrefix(path, rule.Prefix) {
			return Decision{Allowed: false, MatchedRule: &rule}
		}
	}
	return Decision{Allowed: true}
}

// Rules returns, in document order, the Disallow rules that apply to agent.
func Rules(document, agent string) []Rule {
	var (
		rules  []Rule
		active bool
		block  AgentMatcher
	)

	for raw := range strings.Lines(document) {
		line := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(line, userAgentDirective):
			block = AgentMatcher{Name: directiveValue(line)}
			active = block.Matches(agent)

		case strings.HasPrefix(line, disallowDirective):
			if !active {
				continue
			}
			if prefix := directiveValue(line); prefix != "" {
				rules = append(rules, Rule{AppliesTo: block, Prefix: prefix})
			}
		}
	}
	return rules
}

// URLFor returns the robots.txt location for target's scheme and host.
func URLFor(target *url.URL) string {
	return fmt.Sprintf("%s://%s/robots.txt", target.Scheme, target.Host)
}

// directiveValue returns the trimmed text after the first colon.
func directiveValue(line string) string {
	_, value, found := strings.Cut(line, ":")
	if !found {
		return ""
	}
	return strings.TrimSpace(value)
}
