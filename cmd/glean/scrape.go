package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/use-agent/glean/models"
	"github.com/use-agent/glean/report"
	"github.com/use-agent/glean/scraper"
)

func addScrapeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("url", "u", "", "Page to scrape (absolute URL)")
	cmd.Flags().StringP("selector", "s", "", "CSS selector to extract")
	cmd.Flags().StringP("format", "f", models.DefaultFormat, "Output format: text, json or markdown")
	cmd.Flags().StringP("delay", "d", strconv.Itoa(models.DefaultDelayMs),
		"Delay before the page request in milliseconds")
	cmd.Flags().String("user-agent", "", "User-Agent header and robots.txt identity")
	cmd.Flags().Bool("ignore-robots", false, "Skip the robots.txt check")
	cmd.Flags().Bool("impersonate", false, "Use a Chrome TLS fingerprint for the page request")

	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("selector")
}

// runScrapeCmd scrapes one page and writes the report to stdout. Logs go to
// stderr so stdout carries only the report.
func runScrapeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := initLogger(cmd, cfg.Log, cmd.ErrOrStderr())

	req, err := buildRequest(cmd)
	if err != nil {
		return err
	}

	w, err := report.New(req.Format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd.Context())
	defer stop()

	sc := scraper.New(cfg.Scraper, scraper.WithLogger(logger))
	result, err := sc.Scrape(ctx, req)
	if err != nil {
		return err
	}
	return w.Write(result)
}

// buildRequest maps flags onto a ScrapeRequest. Flags left unset stay empty
// so the scraper falls back to the loaded configuration.
func buildRequest(cmd *cobra.Command) (*models.ScrapeRequest, error) {
	flags := cmd.Flags()
	req := &models.ScrapeRequest{}

	var err error
	if req.URL, err = flags.GetString("url"); err != nil {
		return nil, err
	}
	if req.Selector, err = flags.GetString("selector"); err != nil {
		return nil, err
	}
	if req.Format, err = flags.GetString("format"); err != nil {
		return nil, err
	}
	if flags.Changed("delay") {
		raw, err := flags.GetString("delay")
		if err != nil {
			return nil, err
		}
		ms := parseDelay(raw)
		req.DelayMs = &ms
	}
	if flags.Changed("user-agent") {
		if req.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if req.IgnoreRobots, err = flags.GetBool("ignore-robots"); err != nil {
		return nil, err
	}
	if req.Impersonate, err = flags.GetBool("impersonate"); err != nil {
		return nil, err
	}
	return req, nil
}

// parseDelay reads a non-negative millisecond count. Anything else means the
// default delay.
func parseDelay(raw string) int {
	ms, err := strconv.ParseUint(raw, 10, 31)
	if err != nil {
		return models.DefaultDelayMs
	}
	return int(ms)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
