package ingest

import (
	"strings"
	"time"
)

// RawPost is one post exactly as a connector produced it. Identity is ID;
// it must be unique across platforms for deduplication to hold.
type RawPost struct {
	ID        string         `json:"id"`
	Platform  string         `json:"platform"`
	Text      string         `json:"text"`
	Lang      string         `json:"lang"`
	CreatedAt string         `json:"createdAt"` // loosely formatted, resolved later
	UserLoc   string         `json:"userLoc"`
	Meta      map[string]any `json:"meta"`
}

// QuerySpec describes what a connector should fetch
type QuerySpec struct {
	Keywords []string
	From     *time.Time
	To       *time.Time
	Limit    int
}

// NewQuerySpec builds a spec from already-normalized keywords, dropping blanks
// and duplicates while preserving order.
func NewQuerySpec(keywords []string, from, to *time.Time, limit int) QuerySpec {
	seen := make(map[string]bool, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return QuerySpec{Keywords: out, From: from, To: to, Limit: limit}
}
