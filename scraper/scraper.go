package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/glean/config"
	"github.com/use-agent/glean/extractor"
	"github.com/use-agent/glean/fetch"
	"github.com/use-agent/glean/models"
	"github.com/use-agent/glean/selector"
)

// Getter is the slice of fetch.Client the scraper depends on.
type Getter interface {
	Get(ctx context.Context, rawURL string, timeout time.Duration) (*fetch.Response, error)
	CloseIdleConnections()
}

// ClientFactory builds the HTTP client for one request. Every scrape creates
// its own clients and drops them when done.
type ClientFactory func(opts fetch.Options) Getter

// PolicyCache stores robots.txt bodies keyed by their URL.
type PolicyCache interface {
	Get(key string) (string, bool)
	Set(key, body string)
}

// Scraper runs the single-page pipeline:
//
//	validate URL → compile selector → robots.txt → delay → fetch → parse → extract
//
// It holds no per-scrape state and is safe for concurrent use.
type Scraper struct {
	cfg       config.ScraperConfig
	logger    *slog.Logger
	compiler  selector.Compiler
	extractor extractor.Extractor
	newClient ClientFactory
	policies  PolicyCache
	now       func() time.Time
	sleep     func(ctx context.Context, d time.Duration) error
}

// Option customises a Scraper.
type Option func(*Scraper)

// WithLogger sets the logger; the default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Scraper) { s.logger = l }
}

// WithCompiler swaps the selector grammar.
func WithCompiler(c selector.Compiler) Option {
	return func(s *Scraper) { s.compiler = c }
}

// WithExtractor swaps the node-to-element conversion.
func WithExtractor(e extractor.Extractor) Option {
	return func(s *Scraper) { s.extractor = e }
}

// WithClientFactory swaps the HTTP client constructor.
func WithClientFactory(f ClientFactory) Option {
	return func(s *Scraper) { s.newClient = f }
}

// WithPolicyCache reuses robots.txt bodies across scrapes. Only successful
// fetches are cached.
func WithPolicyCache(c PolicyCache) Option {
	return func(s *Scraper) { s.policies = c }
}

// WithClock sets the clock used to stamp results.
func WithClock(now func() time.Time) Option {
	return func(s *Scraper) { s.now = now }
}

// WithSleep replaces the inter-request pause.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Scraper) { s.sleep = sleep }
}

// New creates a Scraper. Timeouts and body limits come from cfg. Identity,
// delay and the robots switch come from each request, falling back to cfg,
// so cfg should start from config.Defaults.
func New(cfg config.ScraperConfig, opts ...Option) *Scraper {
	s := &Scraper{
		cfg:       cfg,
		logger:    slog.Default(),
		compiler:  selector.CSS{},
		extractor: extractor.Default{},
		newClient: func(o fetch.Options) Getter { return fetch.New(o) },
		now:       time.Now,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scrape fetches req.URL and returns the elements matching req.Selector.
// Every failure is a *models.ScrapeError; a missing or unreachable
// robots.txt is logged and does not fail the scrape.
func (s *Scraper) Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResult, error) {
	r := *req
	s.fillFromConfig(&r)
	r.Defaults()
	start := time.Now()

	target, err := ParseTarget(r.URL)
	if err != nil {
		return nil, err
	}

	matcher, err := s.compiler.Compile(r.Selector)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeSelectorSyntax,
			fmt.Sprintf("Invalid CSS selector: %s", r.Selector), err)
	}

	if r.RespectRobots() {
		if err := s.checkPolicy(ctx, target, r.UserAgent); err != nil {
			return nil, err
		}
	}

	if err := s.sleep(ctx, time.Duration(*r.DelayMs)*time.Millisecond); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeNetwork, "Network error", err)
	}

	client := s.newClient(fetch.Options{
		UserAgent:    r.UserAgent,
		Impersonate:  r.Impersonate,
		MaxBodyBytes: s.cfg.MaxBodyBytes,
	})
	defer client.CloseIdleConnections()

	s.logger.Info("fetching", "url", r.URL)
	resp, err := client.Get(ctx, r.URL, s.cfg.FetchTimeout)
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeNetwork, "Network error", err)
	}
	if !resp.OK() {
		return nil, models.NewHTTPStatusError(resp.StatusCode, resp.Reason())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "Failed to parse response body", err)
	}

	elements := extractor.ExtractAll(s.extractor, matcher.Match(doc.Get(0)))
	if len(elements) == 0 {
		return nil, models.NewScrapeError(models.ErrCodeNoMatch,
			fmt.Sprintf("No elements found matching selector '%s' on %s", r.Selector, r.URL), nil)
	}

	s.logger.Info("scrape complete",
		"url", r.URL,
		"elements", len(elements),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return &models.ScrapeResult{
		URL:       r.URL,
		Selector:  r.Selector,
		Results:   elements,
		Timestamp: s.now().UTC(),
	}, nil
}

// fillFromConfig gives unset request fields the configured values. The robots
// and impersonation switches in cfg apply to every request.
func (s *Scraper) fillFromConfig(r *models.ScrapeRequest) {
	if r.UserAgent == "" {
		r.UserAgent = s.cfg.UserAgent
	}
	if r.DelayMs == nil {
		ms := int(s.cfg.Delay / time.Millisecond)
		r.DelayMs = &ms
	}
	if !s.cfg.RespectRobots {
		r.IgnoreRobots = true
	}
	if s.cfg.Impersonate {
		r.Impersonate = true
	}
}

// ParseTarget validates that raw is an absolute URL with a scheme and host.
func ParseTarget(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, models.NewScrapeError(models.ErrCodeInvalidURL,
			fmt.Sprintf("Invalid URL format: %s", raw), err)
	}
	return u, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
