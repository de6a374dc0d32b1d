// Command glean-mcp exposes the scraper as an MCP tool over stdio.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/use-agent/glean/api/handler"
	"github.com/use-agent/glean/cache"
	"github.com/use-agent/glean/config"
	"github.com/use-agent/glean/scraper"
)

func main() {
	cfg, err := config.LoadFile(os.Getenv("GLEAN_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// stdout is the MCP transport; logs must stay on stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	robotsCache := cache.New(cfg.Scraper.RobotsCacheSize, cfg.Scraper.RobotsCacheTTL)
	defer robotsCache.Close()

	sc := scraper.New(cfg.Scraper,
		scraper.WithLogger(logger),
		scraper.WithPolicyCache(robotsCache),
	)

	s := server.NewMCPServer(
		"glean",
		handler.Version,
		server.WithToolCapabilities(false),
	)
	s.AddTool(scrapeSelectorTool(), handleScrapeSelector(sc))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
