package scraper

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/use-agent/glean/cache"
	"github.com/use-agent/glean/config"
	"github.com/use-agent/glean/fetch"
	"github.com/use-agent/glean/models"
)

const testPage = `<!DOCTYPE html>
<html><body>
  <h1>First</h1>
  <ul id="list">
    <li data-id="1">One</li>
    <li></li>
    <li data-id="3"></li>
    <li>   </li>
    <li>Four <b>bold</b></li>
  </ul>
</body></html>`

// site is a test origin serving /robots.txt and /page, counting hits.
type site struct {
	server     *httptest.Server
	robots     string
	robotsCode int
	pageCode   int
	robotsHits atomic.Int32
	pageHits   atomic.Int32
	mu         sync.Mutex
	userAgents []string
}

func newSite(t *testing.T) *site {
	t.Helper()
	s := &site{robotsCode: http.StatusOK, pageCode: http.StatusOK}
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		s.robotsHits.Add(1)
		s.record(r)
		w.WriteHeader(s.robotsCode)
		_, _ = io.WriteString(w, s.robots)
	})
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		s.pageHits.Add(1)
		s.record(r)
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(s.pageCode)
		_, _ = io.WriteString(w, testPage)
	})
	s.server = httptest.NewServer(mux)
	t.Cleanup(s.server.Close)
	return s
}

func (s *site) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userAgents = append(s.userAgents, r.Header.Get("User-Agent"))
}

type sleepRecorder struct {
	calls []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.calls = append(r.calls, d)
	return ctx.Err()
}

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newTestScraper(t *testing.T, opts ...Option) (*Scraper, *sleepRecorder, *bytes.Buffer) {
	t.Helper()
	rec := &sleepRecorder{}
	var logs bytes.Buffer
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		WithSleep(rec.sleep),
		WithClock(func() time.Time { return fixedNow }),
	}
	return New(config.Defaults().Scraper, append(base, opts...)...), rec, &logs
}

func intPtr(v int) *int { return &v }

func requireCode(t *testing.T, err error, code string) *models.ScrapeError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var se *models.ScrapeError
	if !errors.As(err, &se) {
		t.Fatalf("error %T (%v) is not *models.ScrapeError", err, err)
	}
	if se.Code != code {
		t.Fatalf("code = %s, want %s (%v)", se.Code, code, err)
	}
	return se
}

func TestScrape_Success(t *testing.T) {
	s := newSite(t)
	s.robots = "User-agent: *\nDisallow: /admin\n"
	sc, rec, logs := newTestScraper(t)

	res, err := sc.Scrape(context.Background(), &models.ScrapeRequest{
		URL:       s.server.URL + "/page",
		Selector:  "#list > li",
		UserAgent: "TestBot/1.0",
	})
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}

	if len(res.Results) != 3 {
		t.Fatalf("len(Results) = %d, want 3: %+v", len(res.Results), res.Results)
	}
	if res.Results[0].Text != "One" || res.Results[0].Attributes["data-id"] != "1" {
		t.Errorf("Results[0] = %+v", res.Results[0])
	}
	if res.Results[1].Text != "" || res.Results[1].Attributes["data-id"] != "3" {
		t.Errorf("Results[1] = %+v", res.Results[1])
	}
	if res.Results[2].Text != "Four  bold" {
		t.Errorf("Results[2].Text = %q", res.Results[2].Text)
	}
	if !res.Timestamp.Equal(fixedNow) || res.Selector != "#list > li" || res.URL != s.server.URL+"/page" {
		t.Errorf("result header = %q %q %v", res.URL, res.Selector, res.Timestamp)
	}

	if s.robotsHits.Load() != 1 || s.pageHits.Load() != 1 {
		t.Errorf("hits robots=%d page=%d", s.robotsHits.Load(), s.pageHits.Load())
	}
	for _, ua := range s.userAgents {
		if ua != "TestBot/1.0" {
			t.Errorf("User-Agent = %q", ua)
		}
	}
	if len(rec.calls) != 1 || rec.calls[0] != time.Second {
		t.Errorf("sleep calls = %v, want [1s]", rec.calls)
	}
	if !strings.Contains(logs.String(), "robots.txt check passed") {
		t.Errorf("missing robots log: %s", logs.String())
	}
}

func TestScrape_DoesNotMutateRequest(t *testing.T) {
	s := newSite(t)
	sc, _, _ := newTestScraper(t)

	req := &models.ScrapeRequest{URL: s.server.URL + "/page", Selector: "h1"}
	if _, err := sc.Scrape(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if req.DelayMs != nil || req.Format != "" || req.UserAgent != "" {
		t.Errorf("request mutated: %+v", req)
	}
}

func TestScrape_PolicyViolation(t *testing.T) {
	s := newSite(t)
	s.robots = "User-agent: *\nDisallow: /page\n"
	sc, rec, _ := newTestScraper(t)

	_, err := sc.Scrape(context.Background(), &models.ScrapeRequest{
		URL:      s.server.URL + "/page",
		Selector: "h1",
	})
	se := requireCode(t, err, models.ErrCodePolicyViolation)
	if !strings.Contains(se.Message, "/page") || !strings.Contains(se.Message, "Disallow: /page") {
		t.Errorf("message = %q", se.Message)
	}
	if s.pageHits.Load() != 0 {
		t.Error("page must not be fetched after a policy violation")
	}
	if len(rec.calls) != 0 {
		t.Error("delay must not run after a policy violation")
	}
}

func TestScrape_PolicyScopedToOtherAgent(t *testing.T) {
	s := newSite(t)
	s.robots = "User-agent: GoodBot\nDisallow: /page\n\nUser-agent: *\n"
	sc, _, _ := newTestScraper(t)

	_, err := sc.Scrape(context.Background(), &models.ScrapeRequest{
		URL:       s.server.URL + "/page",
		Selector:  "h1",
		UserAgent: "OtherBot",
	})
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
}

func TestScrape_PolicyCache(t *testing.T) {
	s := newSite(t)
	s.robots = "User-agent: *\nDisallow: /private\n"
	rc := cache.New(10, time.Minute)
	defer rc.Close()
	sc, _, _ := newTestScraper(t, WithPolicyCache(rc))

	for i := 0; i < 3; i++ {
		if _, err := sc.Scrape(context.Background(), &models.ScrapeRequest{
			URL:      s.server.URL + "/page",
			Selector: "h1",
		}); err != nil {
			t.Fatalf("scrape %d: %v", i, err)
		}
	}
	if s.robotsHits.Load() != 1 {
		t.Errorf("robots hits = %d, want 1", s.robotsHits.Load())
	}

	_, err := sc.Scrape(context.Background(), &models.ScrapeRequest{
		URL:      s.server.URL + "/private/x",
		Selector: "h1",
	})
	requireCode(t, err, models.ErrCodePolicyViolation)
}

func TestScrape_PolicyCacheSkipsFailures(t *testing.T) {
	s := newSite(t)
	s.robotsCode = http.StatusServiceUnavailable
	rc := cache.New(10, time.Minute)
	defer rc.Close()
	sc, _, _ := newTestScraper(t, WithPolicyCache(rc))

	for i := 0; i < 2; i++ {
		if _, err := sc.Scrape(context.Background(), &models.ScrapeRequest{
			URL:      s.server.URL + "/page",
			Selector: "h1",
		}); err != nil {
			t.Fatal(err)
		}
	}
	if s.robotsHits.Load() != 2 || rc.Len() != 0 {
		t.Errorf("robots hits = %d, cached = %d", s.robotsHits.Load(), rc.Len())
	}
}

func TestScrape_IgnoreRobots(t *testing.T) {
	s := newSite(t)
	s.robots = "User-agent: *\nDisallow: /\n"
	sc, _, _ := newTestScraper(t)

	_, err := sc.Scrape(context.Background(), &models.ScrapeRequest{
		URL:          s.server.URL + "/page",
		Selector:     "h1",
		IgnoreRobots: true,
	})
	if err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if s.robotsHits.Load() != 0 {
		t.Error("robots.txt must not be fetched when ignored")
	}
}

func TestScrape_RobotsStatusErrorProceeds(t *testing.T) {
	s := newSite(t)
	s.robotsCode = http.StatusInternalServerError
	s.robots = "User-agent: *\nDisallow: /\n"
	sc, _, logs := newTestScraper(t)

	if _, err := sc.Scrape(context.Background(), &models.ScrapeRequest{
		URL:      s.server.URL + "/page",
		Selector: "h1",
	}); err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if !strings.Contains(logs.String(), "level=WARN") || !strings.Contains(logs.String(), "status=500") {
		t.Errorf("expected warning log, got: %s", logs.String())
	}
}

// refusingRobots fails every robots.txt request with a transport error and
// delegates everything else to a real client.
type refusingRobots struct {
	inner Getter
}

func (g refusingRobots) Get(ctx context.Context, rawURL string, timeout time.Duration) (*fetch.Response, error) {
	if strings.HasSuffix(rawURL, "/robots.txt") {
		return nil, errors.New("dial tcp: connection refused")
	}
	return g.inner.Get(ctx, rawURL, timeout)
}

func (g refusingRobots) CloseIdleConnections() { g.inner.CloseIdleConnections() }

func TestScrape_RobotsFetchFailureProceeds(t *testing.T) {
	s := newSite(t)
	sc, _, logs := newTestScraper(t, WithClientFactory(func(o fetch.Options) Getter {
		return refusingRobots{inner: fetch.New(o)}
	}))

	if _, err := sc.Scrape(context.Background(), &models.ScrapeRequest{
		URL:      s.server.URL + "/page",
		Selector: "h1",
	}); err != nil {
		t.Fatalf("Scrape: %v", err)
	}
	if s.pageHits.Load() != 1 {
		t.Error("primary fetch must still be attempted")
	}
	if !strings.Contains(logs.String(), "connection refused") {
		t.Errorf("expected warning log, got: %s", logs.String())
	}
}

func TestScrape_InvalidURL(t *testing.T) {
	sc, rec, _ := newTestScraper(t)

	for _, raw := range []string{"", "not a url", "/relative/path", "http://", "::"} {
		t.Run(raw, func(t *testing.T) {
			_, err := sc.Scrape(context.Background(), &models.ScrapeRequest{URL: raw, Selector: "h1"})
			requireCode(t, err, models.ErrCodeInvalidURL)
		})
	}
	if len(rec.calls) != 0 {
		t.Error("no delay expected for invalid URLs")
	}
}

func TestScrape_InvalidSelectorBeforeNetwork(t *testing.T) {
	s := newSite(t)
	sc, _, _ := newTestScraper(t)

	_, err := sc.Scrape(context.Background(), &models.ScrapeRequest{
		URL:      s.server.URL + "/page",
		Selector: "div[",
	})
	requireCode(t, err, models.ErrCodeSelectorSyntax)
	if s.robotsHits.Load() != 0 || s.pageHits.Load() != 0 {
		t.Error("no requests expected for an invalid selector")
	}
}

func TestScrape_HTTPStatus(t *testing.T) {
	s := newSite(t)
	s.pageCode = http.StatusNotFound
	sc, _, _ := newTestScraper(t)

	_, err := sc.Scrape(context.Background(), &models.ScrapeRequest{
		URL:      s.server.URL + "/page",
		Selector: "h1",
	})
	se := requireCode(t, err, models.ErrCodeHTTPStatus)
	if se.StatusCode != http.StatusNotFound || !strings.Contains(se.Message, "Not Found") {
		t.Errorf("got %+v", se)
	}
}

func TestScrape_NetworkError(t *testing.T) {
	s := newSite(t)
	target := s.server.URL + "/page"
	s.server.Close()
	sc, _, _ := newTestScraper(t)

	_, err := sc.Scrape(context.Background(), &models.ScrapeRequest{URL: target, Selector: "h1"})
	requireCode(t, err, models.ErrCodeNetwork)
}

func TestScrape_NoMatch(t *testing.T) {
	s := newSite(t)
	sc, _, _ := newTestScraper(t)

	_, err := sc.Scrape(context.Background(), &models.ScrapeRequest{
		URL:      s.server.URL + "/page",
		Selector: ".does-not-exist",
	})
	se := requireCode(t, err, models.ErrCodeNoMatch)
	if !strings.Contains(se.Message, ".does-not-exist") || !strings.Contains(se.Message, s.server.URL) {
		t.Errorf("message = %q", se.Message)
	}
}

func TestScrape_AllMatchesEmptyIsNoMatch(t *testing.T) {
	s := newSite(t)
	sc, _, _ := newTestScraper(t)

	// Matches only the bare <li></li>, which carries nothing to extract.
	_, err := sc.Scrape(context.Background(), &models.ScrapeRequest{
		URL:      s.server.URL + "/page",
		Selector: "#list > li:empty:not([data-id])",
	})
	requireCode(t, err, models.ErrCodeNoMatch)
}

func TestScrape_DelayConfigured(t *testing.T) {
	s := newSite(t)
	sc, rec, _ := newTestScraper(t)

	_, err := sc.Scrape(context.Background(), &models.ScrapeRequest{
		URL:      s.server.URL + "/page",
		Selector: "h1",
		DelayMs:  intPtr(0),
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.calls) != 1 || rec.calls[0] != 0 {
		t.Errorf("sleep calls = %v, want [0s]", rec.calls)
	}
}

func TestScrape_CanceledDuringDelay(t *testing.T) {
	s := newSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	sc, _, _ := newTestScraper(t, WithSleep(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	_, err := sc.Scrape(ctx, &models.ScrapeRequest{
		URL:          s.server.URL + "/page",
		Selector:     "h1",
		IgnoreRobots: true,
	})
	se := requireCode(t, err, models.ErrCodeNetwork)
	if !errors.Is(se, context.Canceled) {
		t.Errorf("expected context.Canceled in chain, got %v", se)
	}
	if s.pageHits.Load() != 0 {
		t.Error("page must not be fetched after cancellation")
	}
}

func TestSleepContext(t *testing.T) {
	if err := sleepContext(context.Background(), 0); err != nil {
		t.Errorf("zero delay: %v", err)
	}
	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Errorf("short delay: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled delay: %v", err)
	}
}
