package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Page is a cached document.
type Page struct {
	URL         string
	HTML        string
	ContentHash string
	FetchedAt   time.Time
}

// PageCache stores fetched documents keyed by URL.
type PageCache struct {
	db *DB

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewPageCache creates a new PageCache.
func NewPageCache(db *DB) *PageCache {
	return &PageCache{db: db, Now: time.Now}
}

// hashContent returns the hex xxHash of content.
func hashContent(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}

// Find returns the cached page for url. ok is false if none is cached.
func (c *PageCache) Find(ctx context.Context, url string) (page *Page, ok bool, err error) {
	var p Page
	var fetchedAt string
	err = c.db.QueryRowContext(ctx, `
		SELECT url, html, content_hash, fetched_at
		FROM pages
		WHERE url = ?
	`, url).Scan(&p.URL, &p.HTML, &p.ContentHash, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if p.FetchedAt, err = time.Parse(time.RFC3339Nano, fetchedAt); err != nil {
		return nil, false, fmt.Errorf("failed to parse fetched_at: %w", err)
	}
	return &p, true, nil
}

// Save stores html for url, replacing any previous version.
// changed reports whether the content differs from the previous version.
func (c *PageCache) Save(ctx context.Context, url, html string) (changed bool, err error) {
	hash := hashContent(html)

	var prev string
	err = c.db.QueryRowContext(ctx, `SELECT content_hash FROM pages WHERE url = ?`, url).Scan(&prev)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		changed = true
	case err != nil:
		return false, err
	default:
		changed = prev != hash
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO pages (url, html, content_hash, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			html = excluded.html,
			content_hash = excluded.content_hash,
			fetched_at = excluded.fetched_at
	`, url, html, hash, c.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, err
	}
	return changed, nil
}

// Fetcher retrieves a document from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// CachingFetcher serves documents from a PageCache, falling back to the
// wrapped fetcher for missing or stale pages.
type CachingFetcher struct {
	next   Fetcher
	cache  *PageCache
	maxAge time.Duration
	logger *slog.Logger
}

// NewCachingFetcher creates a new CachingFetcher. Pages older than maxAge
// are refetched; a non-positive maxAge keeps pages forever.
func NewCachingFetcher(next Fetcher, cache *PageCache, maxAge time.Duration, logger *slog.Logger) *CachingFetcher {
	return &CachingFetcher{next: next, cache: cache, maxAge: maxAge, logger: logger}
}

// Fetch returns the cached document for url if fresh, otherwise fetches
// and caches it.
func (f *CachingFetcher) Fetch(ctx context.Context, url string) (string, error) {
	page, ok, err := f.cache.Find(ctx, url)
	if err != nil {
		return "", err
	}
	if ok && (f.maxAge <= 0 || f.cache.Now().Sub(page.FetchedAt) < f.maxAge) {
		f.logger.Debug("cache hit", "url", url, "age", f.cache.Now().Sub(page.FetchedAt))
		return page.HTML, nil
	}

	html, err := f.next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	changed, err := f.cache.Save(ctx, url, html)
	if err != nil {
		return "", err
	}
	f.logger.Debug("cache store", "url", url, "changed", changed)
	return html, nil
}
