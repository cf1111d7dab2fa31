package page

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Test Article</title></head>
<body>
<article>
<h1>Test Article</h1>
<p>This is the main content of the article. It has enough text to be considered readable content by the readability algorithm. The quick brown fox jumps over the lazy dog. This paragraph needs to be long enough for readability to pick it up as meaningful content.</p>
<p>Second paragraph with more meaningful content that helps the readability parser understand this is a real article and not just navigation or boilerplate. We need several sentences here to make this work properly.</p>
</article>
</body></html>`

func TestFetchReadable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	a, err := FetchReadable(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Title == "" {
		t.Error("expected non-empty title")
	}
	if !strings.Contains(a.Text, "quick brown fox") {
		t.Errorf("expected article text, got %q", a.Text)
	}
	if a.URL != srv.URL {
		t.Errorf("URL = %q, want %q", a.URL, srv.URL)
	}
	if !strings.HasPrefix(a.Content(), a.Title+"\n\n") {
		t.Errorf("Content() should start with the title, got %q", a.Content())
	}
}

func TestFetchReadable_SkipsNonHTTP(t *testing.T) {
	urls := []string{
		"about:newtab",
		"moz-extension://abc/page",
		"chrome-extension://abc/sidepanel.html",
		"file:///home/user/doc.html",
		"chrome://settings",
		"resource://gre/modules",
		"data:text/html,hello",
	}
	for _, u := range urls {
		if _, err := FetchReadable(context.Background(), u); err == nil {
			t.Errorf("expected error for %q, got nil", u)
		}
	}
}

func TestFetchReadable_SendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	FetchReadable(context.Background(), srv.URL)
	if gotUA == "" || gotUA == "Go-http-client/1.1" {
		t.Errorf("expected browser-like User-Agent, got %q", gotUA)
	}
}

func TestFetchReadable_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
	}))
	defer srv.Close()

	if _, err := FetchReadable(context.Background(), srv.URL); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestFetchReadable_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := FetchReadable(ctx, srv.URL); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestArticleContent_NoTitle(t *testing.T) {
	a := Article{Text: "body"}
	if a.Content() != "body" {
		t.Errorf("Content() = %q, want %q", a.Content(), "body")
	}
}
