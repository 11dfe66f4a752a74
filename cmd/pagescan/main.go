package main

import (
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/wisnuprasetya/gamedex/internal/output"
	"github.com/wisnuprasetya/gamedex/internal/scraper"
	"github.com/wisnuprasetya/gamedex/internal/ui"
)

func main() {
	outputPath := flag.String("output", "", "Output JSON path (default: page_<host>.json)")
	timeout := flag.Duration("timeout", 30*time.Second, "HTTP timeout for the page fetch")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: pagescan [flags] <url>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	pageURL := flag.Arg(0)

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
	})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	}

	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		ui.PrintError(fmt.Sprintf("Invalid URL: %s", pageURL))
		os.Exit(1)
	}

	path := *outputPath
	if path == "" {
		path = fmt.Sprintf("page_%s.json", strings.ReplaceAll(parsed.Host, ":", "_"))
	}

	logger.Info("Fetching page", "url", pageURL)
	client := &http.Client{Timeout: *timeout}
	doc, err := scraper.FetchDocument(client, pageURL)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Fetch failed: %v", err))
		os.Exit(1)
	}

	content := scraper.ExtractPage(doc, pageURL)

	if err := output.WritePageJSON(path, content); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}

	headings := 0
	for _, hs := range content.Headings {
		headings += len(hs)
	}
	logger.Info("Extraction finished",
		"title", content.Title,
		"headings", headings,
		"paragraphs", len(content.Paragraphs),
		"links", len(content.Links),
		"images", len(content.Images))
	ui.PrintSuccess(fmt.Sprintf("Saved page content to %s", path))
}
