// Package page fetches a web page and extracts its readable article text.
package page

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
)

var skipPrefixes = []string{"about:", "moz-extension:", "chrome-extension:", "file:", "chrome:", "resource:", "data:"}

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Article is the readable part of a page.
type Article struct {
	URL   string
	Title string
	Text  string
}

// Fetcher downloads pages. The zero value uses a 15s timeout client.
type Fetcher struct {
	HTTP *http.Client
}

// FetchReadable fetches url with a default Fetcher.
func FetchReadable(ctx context.Context, url string) (Article, error) {
	return Fetcher{}.Fetch(ctx, url)
}

// Fetch downloads url and runs readability over it. Browser-internal
// URLs are rejected without a request.
func (f Fetcher) Fetch(ctx context.Context, url string) (Article, error) {
	for _, prefix := range skipPrefixes {
		if strings.HasPrefix(url, prefix) {
			return Article{}, fmt.Errorf("skipping non-HTTP URL: %s", url)
		}
	}

	client := f.HTTP
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Article{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := client.Do(req)
	if err != nil {
		return Article{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Article{}, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	parsed, err := readability.FromReader(resp.Body, resp.Request.URL)
	if err != nil {
		return Article{}, fmt.Errorf("extract readable content from %s: %w", url, err)
	}

	text := strings.TrimSpace(parsed.TextContent)
	if text == "" {
		return Article{}, fmt.Errorf("no readable content at %s", url)
	}
	return Article{URL: url, Title: parsed.Title, Text: text}, nil
}

// Content is the text sent for processing: the title on its own line
// followed by the article body.
func (a Article) Content() string {
	if a.Title == "" {
		return a.Text
	}
	return a.Title + "\n\n" + a.Text
}
