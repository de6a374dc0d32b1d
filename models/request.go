package models

// Default request values.
const (
	DefaultFormat    = "text"
	DefaultDelayMs   = 1000
	DefaultUserAgent = "glean/0.1.0 (Go)"

	// MaxDelayMs bounds DelayMs on the API and MCP surfaces.
	MaxDelayMs = 60000
)

// ScrapeRequest describes one scrape: the page, the selector, and the
// politeness settings. It is also the payload for POST /api/v1/scrape.
type ScrapeRequest struct {
	// URL is the absolute page to fetch. Required.
	URL string `json:"url" yaml:"url" binding:"required"`

	// Selector is the CSS selector to extract. Required.
	Selector string `json:"selector" yaml:"selector" binding:"required"`

	// Format selects the output serialization for the CLI.
	// Allowed: "text" (default), "json", "markdown".
	Format string `json:"format,omitempty" yaml:"format,omitempty" binding:"omitempty,oneof=text json markdown"`

	// DelayMs is the pause before the page request, in milliseconds.
	// Default: 1000. Zero disables the pause.
	DelayMs *int `json:"delay_ms,omitempty" yaml:"delay_ms,omitempty" binding:"omitempty,min=0,max=60000"`

	// UserAgent is sent as the User-Agent header and matched against
	// robots.txt agent blocks.
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`

	// IgnoreRobots skips the robots.txt check.
	IgnoreRobots bool `json:"ignore_robots,omitempty" yaml:"ignore_robots,omitempty"`

	// Impersonate uses a Chrome TLS fingerprint for the page request.
	Impersonate bool `json:"impersonate,omitempty" yaml:"impersonate,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *ScrapeRequest) Defaults() {
	if r.Format == "" {
		r.Format = DefaultFormat
	}
	if r.DelayMs == nil {
		d := DefaultDelayMs
		r.DelayMs = &d
	}
	if r.UserAgent == "" {
		r.UserAgent = DefaultUserAgent
	}
}

// RespectRobots reports whether the robots.txt check runs.
func (r *ScrapeRequest) RespectRobots() bool {
	return !r.IgnoreRobots
}
