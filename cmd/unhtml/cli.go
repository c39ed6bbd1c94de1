package main

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"time"

	"github.com/fwojciec/unhtml"
)

// Fetcher retrieves a document from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// SitemapReader lists the pages a site publishes in its sitemaps.
type SitemapReader interface {
	URLs(ctx context.Context, siteURL string, match *regexp.Regexp) ([]string, error)
}

// Extractor reduces a document to its main content.
type Extractor interface {
	Extract(html string) (string, error)
}

// ResultStore persists one result per document with atomic semantics.
// Save writes to a temporary location; Commit makes changes permanent;
// Abort discards pending changes.
type ResultStore interface {
	Save(ctx context.Context, name string, data []byte) error
	Commit() error
	Abort() error
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	Logger      *slog.Logger
	Parser      unhtml.Parser
	Fetcher     Fetcher
	Sitemap     SitemapReader
	Extractor   Extractor
	Concurrency int
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose     bool          `short:"v" help:"Log parsing and selector activity to stderr"`
	Timeout     time.Duration `default:"10s" help:"HTTP timeout when fetching --url"`
	Rate        float64       `default:"0" help:"Requests per second per host when fetching --url over HTTP (0: unlimited)"`
	Retries     int           `default:"0" help:"Retry failed --url fetches with exponential backoff"`
	Render      bool          `help:"Render --url documents in headless Chrome before extracting"`
	Extract     string        `enum:"none,readability,trafilatura" default:"none" help:"Reduce documents to their main content first (none, readability, trafilatura)"`
	Cache       string        `type:"path" help:"SQLite database caching documents fetched with --url"`
	MaxAge      time.Duration `default:"0" help:"Refetch cached documents older than this (0: never)"`
	Concurrency int           `short:"c" default:"4" help:"Documents decoded concurrently"`

	Select SelectCmd `cmd:"" help:"Print values matched by a CSS selector"`
	Schema SchemaCmd `cmd:"" help:"Decode documents with a YAML schema and print JSON"`
}

// SelectCmd is the "select" subcommand.
type SelectCmd struct {
	Selector string   `arg:"" help:"CSS selector"`
	Files    []string `arg:"" optional:"" type:"existingfile" help:"HTML files (default: stdin)"`
	Attr     string   `short:"a" xor:"source" help:"Attribute to print, or 'inner' for inner text (default: outer HTML)"`
	Markdown bool     `short:"m" xor:"source" help:"Print matches as Markdown"`
	All      bool     `help:"Print every match instead of the first"`
	Optional bool     `help:"Print nothing instead of failing when nothing matches"`
	Remote   Remote   `embed:""`
}

// SchemaCmd is the "schema" subcommand.
type SchemaCmd struct {
	Schema string   `arg:"" type:"existingfile" help:"YAML schema file"`
	Files  []string `arg:"" optional:"" type:"existingfile" help:"HTML files (default: stdin)"`
	Indent bool     `short:"i" help:"Indent JSON output"`
	Out    string   `short:"o" type:"path" help:"Write one JSON file per document into this directory instead of stdout"`
	Remote Remote   `embed:""`
}

// Remote selects documents to fetch instead of reading files.
type Remote struct {
	URLs    []string `short:"u" name:"url" sep:"none" help:"Fetch documents from URLs (repeatable)"`
	Sitemap string   `help:"Fetch every page listed in the sitemaps of this site"`
	Match   string   `help:"Keep only sitemap URLs matching this regular expression"`
}
