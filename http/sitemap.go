package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// Sitemap lists the pages a site publishes in its sitemaps.
type Sitemap struct {
	client *http.Client
}

// NewSitemap creates a Sitemap using client, or http.DefaultClient if nil.
func NewSitemap(client *http.Client) *Sitemap {
	if client == nil {
		client = http.DefaultClient
	}
	return &Sitemap{client: client}
}

// URLs returns the page URLs listed in the sitemaps of siteURL, in sitemap
// order without duplicates. Sitemaps are located through robots.txt, else
// /sitemap.xml, and indexes are followed recursively.
//
// A non-root path in siteURL keeps only pages below that path. A non-nil
// match keeps only URLs it matches. No sitemap yields an empty slice.
func (s *Sitemap) URLs(ctx context.Context, siteURL string, match *regexp.Regexp) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base, err := neturl.Parse(siteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site URL: %w", err)
	}
	prefix := strings.TrimSuffix(base.Path, "/")
	root := neturl.URL{Scheme: base.Scheme, Host: base.Host}

	sitemaps, err := s.locate(ctx, &root)
	if err != nil {
		return nil, err
	}

	urls := []string{}
	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)
	for _, sm := range sitemaps {
		found, err := s.read(ctx, sm, seenSitemaps)
		if err != nil {
			return nil, err
		}
		for _, u := range found {
			if seenURLs[u] || !below(u, prefix) || (match != nil && !match.MatchString(u)) {
				continue
			}
			seenURLs[u] = true
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// below reports whether the path of rawURL is prefix or lies under it.
func below(rawURL, prefix string) bool {
	if prefix == "" {
		return true
	}
	u, err := neturl.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Path == prefix || strings.HasPrefix(u.Path, prefix+"/")
}

// locate returns the sitemaps declared in robots.txt, else /sitemap.xml
// if it exists.
func (s *Sitemap) locate(ctx context.Context, root *neturl.URL) ([]string, error) {
	robots := root.ResolveReference(&neturl.URL{Path: "/robots.txt"})
	if sitemaps, err := s.robots(ctx, robots.String()); err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}

	fallback := root.ResolveReference(&neturl.URL{Path: "/sitemap.xml"}).String()
	body, err := s.get(ctx, fallback)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, nil
	}
	body.Close()
	return []string{fallback}, nil
}

// robots extracts Sitemap: directives from robots.txt.
func (s *Sitemap) robots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.get(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		name, value, ok := strings.Cut(line, ":")
		if !ok || !strings.EqualFold(name, "sitemap") {
			continue
		}
		if v := strings.TrimSpace(value); v != "" {
			sitemaps = append(sitemaps, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}
	return sitemaps, nil
}

// read returns the page URLs of one sitemap, following sitemap indexes.
func (s *Sitemap) read(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.get(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("parsing sitemap %s: %w", sitemapURL, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap %s", sitemapURL)
	}

	if root.Tag != "sitemapindex" {
		return locs(root, "url"), nil
	}
	var urls []string
	for _, child := range locs(root, "sitemap") {
		found, err := s.read(ctx, child, seen)
		if err != nil {
			return nil, err
		}
		urls = append(urls, found...)
	}
	return urls, nil
}

// locs returns the non-empty <loc> values of root's children named tag.
func locs(root *etree.Element, tag string) []string {
	var out []string
	for _, el := range root.SelectElements(tag) {
		loc := el.SelectElement("loc")
		if loc == nil {
			continue
		}
		if v := strings.TrimSpace(loc.Text()); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (s *Sitemap) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, target)
	}
	return resp.Body, nil
}
