package main

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/glean/models"
	"github.com/use-agent/glean/report"
)

// scraperRunner is the part of *scraper.Scraper the tool uses.
type scraperRunner interface {
	Scrape(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResult, error)
}

func scrapeSelectorTool() mcp.Tool {
	return mcp.NewTool("scrape_selector",
		mcp.WithDescription("Fetch a web page and return the text and attributes of every element matching a CSS selector, as JSON. Honors robots.txt unless ignore_robots is set."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Absolute URL of the page to scrape"),
		),
		mcp.WithString("selector",
			mcp.Required(),
			mcp.Description("CSS selector, e.g. 'h1, h2' or 'a[href]'"),
		),
		mcp.WithString("user_agent",
			mcp.Description("User-Agent header, also matched against robots.txt"),
		),
		mcp.WithBoolean("ignore_robots",
			mcp.Description("Skip the robots.txt check (default: false)"),
		),
		mcp.WithNumber("delay_ms",
			mcp.Description("Pause before the page request in milliseconds, 0 to 60000 (default: configured delay)"),
		),
	)
}

func handleScrapeSelector(sc scraperRunner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}
		sel, err := request.RequireString("selector")
		if err != nil {
			return mcp.NewToolResultError("selector is required"), nil
		}

		req := &models.ScrapeRequest{
			URL:          url,
			Selector:     sel,
			Format:       report.FormatJSON,
			UserAgent:    request.GetString("user_agent", ""),
			IgnoreRobots: request.GetBool("ignore_robots", false),
		}
		if raw, ok := request.GetArguments()["delay_ms"]; ok {
			ms, ok := raw.(float64)
			if !ok || ms < 0 || ms > models.MaxDelayMs {
				return mcp.NewToolResultError(
					fmt.Sprintf("delay_ms must be a number between 0 and %d", models.MaxDelayMs)), nil
			}
			d := int(ms)
			req.DelayMs = &d
		}

		result, err := sc.Scrape(ctx, req)
		if err != nil {
			se := models.AsScrapeError(err)
			return mcp.NewToolResultError(fmt.Sprintf("[%s] %s", se.Code, se.Message)), nil
		}

		var buf bytes.Buffer
		if err := report.NewJSONWriter(&buf, report.WithPrettyPrint()).Write(result); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(buf.String()), nil
	}
}
