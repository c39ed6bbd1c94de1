package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"

	"golang.org/x/sync/errgroup"
)

// document is one HTML input and the name it is reported under.
type document struct {
	name string
	html string
}

// loadDocuments reads the command's inputs and reduces them to their main
// content if an extractor is configured.
func loadDocuments(deps *Dependencies, files []string, remote Remote) ([]document, error) {
	docs, err := readDocuments(deps, files, remote)
	if err != nil || deps.Extractor == nil {
		return docs, err
	}
	for i, d := range docs {
		html, err := deps.Extractor.Extract(d.html)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.name, err)
		}
		deps.Logger.Debug("extracted main content", "document", d.name, "bytes", len(d.html), "kept", len(html))
		docs[i].html = html
	}
	return docs, nil
}

// readDocuments reads files, else the remote documents, else stdin.
func readDocuments(deps *Dependencies, files []string, remote Remote) ([]document, error) {
	remoteSet := len(remote.URLs) > 0 || remote.Sitemap != ""
	if len(files) > 0 && remoteSet {
		return nil, fmt.Errorf("use either files or --url/--sitemap, not both")
	}
	if remote.Match != "" && remote.Sitemap == "" {
		return nil, fmt.Errorf("--match requires --sitemap")
	}

	if remoteSet {
		urls, err := remoteURLs(deps, remote)
		if err != nil {
			return nil, err
		}
		return fetchDocuments(deps, urls)
	}

	if len(files) == 0 {
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return []document{{name: "stdin", html: string(data)}}, nil
	}

	docs := make([]document, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		docs = append(docs, document{name: path, html: string(data)})
	}
	return docs, nil
}

// remoteURLs returns the --url values followed by the sitemap pages.
func remoteURLs(deps *Dependencies, remote Remote) ([]string, error) {
	if remote.Sitemap == "" {
		return remote.URLs, nil
	}
	var match *regexp.Regexp
	if remote.Match != "" {
		m, err := regexp.Compile(remote.Match)
		if err != nil {
			return nil, fmt.Errorf("invalid --match: %w", err)
		}
		match = m
	}
	pages, err := deps.Sitemap.URLs(deps.Ctx, remote.Sitemap, match)
	if err != nil {
		return nil, fmt.Errorf("failed to read sitemap: %w", err)
	}
	deps.Logger.Debug("read sitemap", "site", remote.Sitemap, "pages", len(pages))
	return append(slices.Clone(remote.URLs), pages...), nil
}

// fetchDocuments fetches urls concurrently, keeping their order.
func fetchDocuments(deps *Dependencies, urls []string) ([]document, error) {
	docs := make([]document, len(urls))
	g, ctx := errgroup.WithContext(deps.Ctx)
	g.SetLimit(deps.Concurrency)
	for i, url := range urls {
		g.Go(func() error {
			html, err := deps.Fetcher.Fetch(ctx, url)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", url, err)
			}
			deps.Logger.Debug("fetched document", "url", url, "bytes", len(html))
			docs[i] = document{name: url, html: html}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// decodeDocuments runs fn over docs with at most limit calls in flight.
// Results keep the order of docs; the first failure cancels the rest.
func decodeDocuments[T any](ctx context.Context, docs []document, limit int, fn func(document) (T, error)) ([]T, error) {
	out := make([]T, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, d := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := fn(d)
			if err != nil {
				return fmt.Errorf("%s: %w", d.name, err)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
