// Package fetch performs the single-page HTTP GETs the scraper needs.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 10 << 20

const maxRedirects = 10

// Options configures a Client.
type Options struct {
	// UserAgent is sent on every request.
	UserAgent string

	// Impersonate dials TLS with a Chrome ClientHello instead of Go's.
	Impersonate bool

	// MaxBodyBytes limits the bytes read per response; 0 means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// Response is a fully-read HTTP response.
type Response struct {
	StatusCode  int
	Status      string
	Body        []byte
	FinalURL    string
	ContentType string
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Reason returns the status text without the numeric code.
func (r *Response) Reason() string {
	if text := http.StatusText(r.StatusCode); text != "" {
		return text
	}
	if _, reason, ok := strings.Cut(r.Status, " "); ok {
		return reason
	}
	return "Unknown"
}

// Client issues GET requests with a fixed identity. It is owned by a single
// scrape and discarded afterwards.
type Client struct {
	http    *http.Client
	opts    Options
	maxBody int64
}

// New builds a Client.
func New(opts Options) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if opts.Impersonate {
		transport.DialTLSContext = dialChromeTLS
		transport.ForceAttemptHTTP2 = false
	}

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		opts:    opts,
		maxBody: maxBody,
	}
}

// Get fetches rawURL, bounded by timeout. Non-2xx statuses are returned as a
// Response, not an error; only transport failures and timeouts are errors.
func (c *Client) Get(ctx context.Context, rawURL string, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	if c.opts.UserAgent != "" {
		req.Header.Set("User-Agent", c.opts.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, fmt.Errorf("fetch: read body: %w", err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		Body:        body,
		FinalURL:    resp.Request.URL.String(),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// CloseIdleConnections releases pooled connections.
func (c *Client) CloseIdleConnections() {
	c.http.CloseIdleConnections()
}
