package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/unhtml"
	"github.com/fwojciec/unhtml/goquery"
	unhtmlhttp "github.com/fwojciec/unhtml/http"
	"github.com/fwojciec/unhtml/readability"
	"github.com/fwojciec/unhtml/rod"
	unhtmlslog "github.com/fwojciec/unhtml/slog"
	"github.com/fwojciec/unhtml/sqlite"
	"github.com/fwojciec/unhtml/trafilatura"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Stdin is read when no file or URL is given.
	Stdin io.Reader

	// Parser overrides the default goquery parser.
	Parser unhtml.Parser

	// Fetcher overrides the default HTTP fetcher.
	Fetcher Fetcher

	// Sitemap overrides the default HTTP sitemap reader.
	Sitemap SitemapReader
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Stdin: os.Stdin,
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("unhtml"),
		kong.Description("Extract typed values from HTML with CSS selectors"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'unhtml --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	var p unhtml.Parser = goquery.NewParser()
	if m.Parser != nil {
		p = m.Parser
	}
	if cli.Verbose {
		p = unhtmlslog.NewLoggingParser(p, logger)
	}

	var fetcher Fetcher
	switch {
	case m.Fetcher != nil:
		fetcher = m.Fetcher
	case cli.Render:
		rf, err := rod.NewFetcher(rod.WithFetchTimeout(cli.Timeout))
		if err != nil {
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer rf.Close()
		fetcher = rf
	default:
		fetcher = unhtmlhttp.NewFetcher(
			unhtmlhttp.WithTimeout(cli.Timeout),
			unhtmlhttp.WithRateLimit(cli.Rate),
		)
	}
	if cli.Verbose {
		fetcher = unhtmlslog.NewLoggingFetcher(fetcher, logger)
	}
	if cli.Retries > 0 {
		fetcher = unhtmlhttp.Retry(fetcher.Fetch, unhtmlhttp.RetryDelays(cli.Retries), logger)
	}
	if cli.Cache != "" {
		db := sqlite.NewDB(cli.Cache)
		if err := db.Open(); err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer db.Close()
		fetcher = sqlite.NewCachingFetcher(fetcher, sqlite.NewPageCache(db), cli.MaxAge, logger)
	}

	var sitemap SitemapReader = unhtmlhttp.NewSitemap(&http.Client{Timeout: cli.Timeout})
	if m.Sitemap != nil {
		sitemap = m.Sitemap
	}

	var extractor Extractor
	switch cli.Extract {
	case "readability":
		extractor = readability.NewExtractor()
	case "trafilatura":
		extractor = trafilatura.NewExtractor()
	}

	concurrency := cli.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	deps := &Dependencies{
		Ctx:         ctx,
		Stdin:       m.Stdin,
		Stdout:      stdout,
		Stderr:      stderr,
		Logger:      logger,
		Parser:      p,
		Fetcher:     fetcher,
		Sitemap:     sitemap,
		Extractor:   extractor,
		Concurrency: concurrency,
	}
	return kongCtx.Run(deps)
}
