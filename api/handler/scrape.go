package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/glean/models"
)

// Scraper is the part of *scraper.Scraper the handlers use.
type Scraper interface {
	Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResult, error)
}

// Scrape returns a handler for POST /api/v1/scrape.
//
// The body is a models.ScrapeRequest; Format is ignored since the API always
// answers in JSON. A success is the bare models.ScrapeResult.
func Scrape(sc Scraper) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		result, err := sc.Scrape(c.Request.Context(), &req)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error) {
	scrapeErr := models.AsScrapeError(err)

	c.JSON(StatusFor(scrapeErr.Code), models.ErrorResponse{
		Success: false,
		Error:   scrapeErr.ToDetail(),
	})
}

// StatusFor translates error codes to HTTP status codes.
func StatusFor(code string) int {
	switch code {
	case models.ErrCodeInvalidURL, models.ErrCodeInvalidInput, models.ErrCodeSelectorSyntax:
		return http.StatusBadRequest // 400
	case models.ErrCodePolicyViolation:
		return http.StatusForbidden // 403
	case models.ErrCodeNoMatch:
		return http.StatusNotFound // 404
	case models.ErrCodeNetwork, models.ErrCodeHTTPStatus:
		return http.StatusBadGateway // 502
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
