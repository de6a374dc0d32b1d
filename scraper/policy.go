package scraper

import (
	"context"
	"fmt"
	"net/url"

	"github.com/use-agent/glean/fetch"
	"github.com/use-agent/glean/models"
	"github.com/use-agent/glean/robots"
)

// checkPolicy returns a POLICY_VIOLATION error when robots.txt disallows the
// target path for agent. Any problem obtaining robots.txt is logged as a
// warning and treated as "no restriction".
func (s *Scraper) checkPolicy(ctx context.Context, target *url.URL, agent string) error {
	robotsURL := robots.URLFor(target)

	document, ok := s.robotsDocument(ctx, robotsURL, agent)
	if !ok {
		return nil
	}

	path := target.EscapedPath()
	if path == "" {
		path = "/"
	}

	decision := robots.Evaluate(document, agent, path)
	if !decision.Allowed {
		return models.NewScrapeError(models.ErrCodePolicyViolation,
			fmt.Sprintf("Access to %s is disallowed by robots.txt (rule: %s)", path, decision.MatchedRule), nil)
	}

	s.logger.Info("robots.txt check passed", "url", robotsURL)
	return nil
}

// robotsDocument returns the robots.txt body, from the cache when possible.
// ok is false when the file could not be obtained; that is logged here.
func (s *Scraper) robotsDocument(ctx context.Context, robotsURL, agent string) (document string, ok bool) {
	if s.policies != nil {
		if body, hit := s.policies.Get(robotsURL); hit {
			s.logger.Debug("robots.txt cache hit", "url", robotsURL)
			return body, true
		}
	}

	client := s.newClient(fetch.Options{
		UserAgent:    agent,
		MaxBodyBytes: s.cfg.MaxBodyBytes,
	})
	defer client.CloseIdleConnections()

	resp, err := client.Get(ctx, robotsURL, s.cfg.PolicyTimeout)
	if err != nil {
		s.logger.Warn("robots.txt unavailable, proceeding", "url", robotsURL, "error", err)
		return "", false
	}
	if !resp.OK() {
		s.logger.Warn("robots.txt unavailable, proceeding", "url", robotsURL, "status", resp.StatusCode)
		return "", false
	}

	document = string(resp.Body)
	if s.policies != nil {
		s.policies.Set(robotsURL, document)
	}
	return document, true
}
