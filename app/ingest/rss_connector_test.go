package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"stormsense/app/config"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Thời sự</title>
    <language>vi</language>
    <item>
      <title>Bão Yagi đổ bộ Quảng Ninh</title>
      <link>https://news.example.com/bao-yagi</link>
      <guid>news-1</guid>
      <description>Gió giật cấp 14, nhiều nhà tốc mái.</description>
      <pubDate>Tue, 10 Sep 2024 08:00:00 GMT</pubDate>
      <category>Thời sự</category>
    </item>
    <item>
      <title>Không có GUID</title>
      <link>https://news.example.com/no-guid</link>
      <description>Tin khác.</description>
      <pubDate>Tue, 10 Sep 2024 09:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func rssSource(name, url string) *config.SourceConfig {
	sc := &config.SourceConfig{}
	sc.Source.Name = name
	sc.Source.Type = "rss"
	sc.Source.URL = url
	sc.Settings.Enabled = true
	sc.Settings.Timeout = 5
	return sc
}

func TestRSSConnectorFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("expected custom user agent, got %q", got)
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	conn := NewRSSConnector(rssSource("news-feed", server.URL), "test-agent")
	posts, err := conn.Fetch(context.Background(), QuerySpec{})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}

	first := posts[0]
	if first.ID != "news-1" {
		t.Errorf("expected guid as id, got %q", first.ID)
	}
	if first.Platform != "news" {
		t.Errorf("expected platform news, got %q", first.Platform)
	}
	if first.Lang != "vi" {
		t.Errorf("expected feed language, got %q", first.Lang)
	}
	if first.CreatedAt != "2024-09-10T08:00:00Z" {
		t.Errorf("unexpected createdAt: %q", first.CreatedAt)
	}
	if first.Meta["link"] != "https://news.example.com/bao-yagi" {
		t.Errorf("unexpected link meta: %v", first.Meta["link"])
	}

	// Falls back to the item link when there is no GUID.
	if posts[1].ID != "https://news.example.com/no-guid" {
		t.Errorf("expected link as id, got %q", posts[1].ID)
	}
}

func TestRSSConnectorKeywordFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	conn := NewRSSConnector(rssSource("news-feed", server.URL), "test-agent")
	posts, err := conn.Fetch(context.Background(), QuerySpec{Keywords: []string{"bao yagi"}})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "news-1" {
		t.Errorf("expected only the matching item, got %v", posts)
	}
}

func TestRSSConnectorHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	conn := NewRSSConnector(rssSource("news-feed", server.URL), "test-agent")
	if _, err := conn.Fetch(context.Background(), QuerySpec{}); err == nil {
		t.Error("expected an error for HTTP 500")
	}
}
