package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"stormsense/app/config"
)

// RSSConnector fetches a news feed and maps its items to raw posts. The
// platform tag is "news"; item text is the title plus the plain text of the
// summary or content.
type RSSConnector struct {
	name      string
	url       string
	userAgent string
	client    *http.Client
	parser    *gofeed.Parser
}

func NewRSSConnector(sourceConfig *config.SourceConfig, userAgent string) *RSSConnector {
	return &RSSConnector{
		name:      sourceConfig.Source.Name,
		url:       sourceConfig.Source.URL,
		userAgent: userAgent,
		client: &http.Client{
			Timeout: sourceConfig.Settings.GetTimeout(),
		},
		parser: gofeed.NewParser(),
	}
}

func (c *RSSConnector) ID() string {
	return c.name
}

func (c *RSSConnector) Fetch(ctx context.Context, spec QuerySpec) ([]RawPost, error) {
	data, err := c.fetchFeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}

	feed, err := c.parser.Parse(strings.NewReader(string(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	posts := make([]RawPost, 0, len(feed.Items))
	for _, item := range feed.Items {
		post := c.toRawPost(item, feed.Language)
		if !withinWindow(post.CreatedAt, spec) {
			continue
		}
		if len(spec.Keywords) > 0 && !keywordMatch(foldText(post.Text), spec.Keywords) {
			continue
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (c *RSSConnector) fetchFeed(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty response body")
	}
	return data, nil
}

func (c *RSSConnector) toRawPost(item *gofeed.Item, lang string) RawPost {
	id := item.GUID
	if id == "" {
		id = item.Link
	}

	body := item.Description
	if item.Content != "" {
		body = item.Content
	}
	text := strings.TrimSpace(item.Title + ". " + plainText(body))

	createdAt := item.Published
	if item.PublishedParsed != nil {
		createdAt = item.PublishedParsed.UTC().Format(time.RFC3339)
	}

	meta := map[string]any{"link": item.Link}
	if len(item.Categories) > 0 {
		meta["categories"] = item.Categories
	}

	return RawPost{
		ID:        id,
		Platform:  "news",
		Text:      text,
		Lang:      lang,
		CreatedAt: createdAt,
		Meta:      meta,
	}
}

// plainText strips HTML from feed item bodies via readability; non-HTML
// bodies pass through unchanged.
func plainText(body string) string {
	if !strings.Contains(body, "<") {
		return body
	}
	article, err := readability.FromReader(strings.NewReader(body), nil)
	if err != nil || article.TextContent == "" {
		return body
	}
	return article.TextContent
}
