package ingest

import (
	"context"
	"log/slog"
	"sync"
)

// Adapter fans a query out to every configured connector, merges the
// results, and applies the cross-connector guarantees: permissive time
// filtering, dedup by post id (first seen wins) and the requested limit.
type Adapter struct {
	connectors []Connector
}

func NewAdapter(connectors []Connector) *Adapter {
	return &Adapter{connectors: connectors}
}

// Fetch collects raw posts from all connectors concurrently. A connector
// failure is logged and its results dropped; ingestion never fails the whole
// run because one source failed.
func (a *Adapter) Fetch(ctx context.Context, spec QuerySpec) []RawPost {
	results := make([][]RawPost, len(a.connectors))

	var wg sync.WaitGroup
	for i, connector := range a.connectors {
		wg.Add(1)
		go func(i int, c Connector) {
			defer wg.Done()
			posts, err := c.Fetch(ctx, spec)
			if err != nil {
				slog.Warn("Connector failed, skipping", "connector", c.ID(), "error", err)
				return
			}
			slog.Debug("Connector fetch complete", "connector", c.ID(), "posts", len(posts))
			results[i] = posts
		}(i, connector)
	}
	wg.Wait()

	// Merge in configured connector order so first-seen dedup is stable.
	seen := make(map[string]bool)
	var out []RawPost
	for _, posts := range results {
		for _, post := range posts {
			if spec.Limit > 0 && len(out) >= spec.Limit {
				return out
			}
			if post.ID == "" || seen[post.ID] {
				continue
			}
			if !withinWindow(post.CreatedAt, spec) {
				continue
			}
			seen[post.ID] = true
			out = append(out, post)
		}
	}
	return out
}

// withinWindow applies the [from, to] filter. A post whose timestamp cannot
// be parsed passes by default.
func withinWindow(createdAt string, spec QuerySpec) bool {
	if spec.From == nil && spec.To == nil {
		return true
	}
	ts, ok := parseCreatedAt(createdAt)
	if !ok {
		return true
	}
	if spec.From != nil && ts.Before(*spec.From) {
		return false
	}
	if spec.To != nil && ts.After(*spec.To) {
		return false
	}
	return true
}
