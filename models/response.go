package models

import (
	"time"

	"github.com/use-agent/glean/extractor"
)

// ScrapeResult is the outcome of a successful scrape.
type ScrapeResult struct {
	// URL is the page as requested.
	URL string `json:"url"`

	// Selector is the selector text as given.
	Selector string `json:"selector"`

	// Results holds the extracted elements in document order.
	Results []extractor.Element `json:"results"`

	// Timestamp is when the scrape completed (RFC 3339).
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the body returned by the API on failure.
type ErrorResponse struct {
	Success bool         `json:"success"`
	Error   *ErrorDetail `json:"error"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
