package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeCollection(t *testing.T, dir, name string, lines ...string) {
	t.Helper()
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write collection: %v", err)
	}
}

func TestFileConnectorReadsJSONLines(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, "posts.jsonl",
		`{"id":"p1","platform":"facebook","text":"Nhà sập ở Hạ Long","createdAt":"2024-09-10T08:00:00Z"}`,
		`{"id":"p2","text":"Mưa lớn","createdAt":"2024-09-11T08:00:00Z"}`,
	)

	conn := NewFileConnector("drop", dir, 0)
	posts, err := conn.Fetch(context.Background(), QuerySpec{})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].ID != "p1" || posts[0].Platform != "facebook" {
		t.Errorf("unexpected first post: %+v", posts[0])
	}
	// Platform defaults to the connector name.
	if posts[1].Platform != "drop" {
		t.Errorf("expected default platform, got %q", posts[1].Platform)
	}
}

func TestFileConnectorSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, "posts.jsonl",
		`{"id":"p1","text":"ok","createdAt":"2024-09-10T08:00:00Z"}`,
		`{not json at all`,
		`{"id":"p2","text":"also ok","createdAt":"2024-09-10T09:00:00Z"}`,
	)

	conn := NewFileConnector("drop", dir, 0)
	posts, err := conn.Fetch(context.Background(), QuerySpec{})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("expected malformed line skipped, got %d posts", len(posts))
	}
}

func TestFileConnectorGeneratesMissingIDs(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, "posts.jsonl", `{"text":"no id here"}`)

	conn := NewFileConnector("drop", dir, 0)
	posts, err := conn.Fetch(context.Background(), QuerySpec{})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	if !strings.HasPrefix(posts[0].ID, "gen_") {
		t.Errorf("expected generated id, got %q", posts[0].ID)
	}
}

func TestFileConnectorKeywordPrefilter(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, "posts.jsonl",
		`{"id":"match","text":"Bão Yagi gây ngập"}`,
		`{"id":"miss","text":"Trận bóng tối nay"}`,
	)

	conn := NewFileConnector("drop", dir, 0)
	posts, err := conn.Fetch(context.Background(), QuerySpec{Keywords: []string{"bao yagi"}})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "match" {
		t.Errorf("expected only the matching post, got %v", posts)
	}
}

func TestFileConnectorTimeWindow(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, "posts.jsonl",
		`{"id":"old","text":"x","createdAt":"2024-08-01T00:00:00Z"}`,
		`{"id":"new","text":"x","createdAt":"2024-09-10T00:00:00Z"}`,
	)

	from := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	conn := NewFileConnector("drop", dir, 0)
	posts, err := conn.Fetch(context.Background(), QuerySpec{From: &from})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "new" {
		t.Errorf("expected only the recent post, got %v", posts)
	}
}

func TestFileConnectorMaxPosts(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, "posts.jsonl",
		`{"id":"p1","text":"a"}`,
		`{"id":"p2","text":"b"}`,
		`{"id":"p3","text":"c"}`,
	)

	conn := NewFileConnector("drop", dir, 2)
	posts, err := conn.Fetch(context.Background(), QuerySpec{})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if len(posts) != 2 {
		t.Errorf("expected 2 posts, got %d", len(posts))
	}
}

func TestFileConnectorMissingRoot(t *testing.T) {
	conn := NewFileConnector("drop", filepath.Join(t.TempDir(), "absent"), 0)
	if _, err := conn.Fetch(context.Background(), QuerySpec{}); err == nil {
		t.Error("expected an error for a missing root")
	}
}

func TestFoldText(t *testing.T) {
	got := foldText("Bão YAGI đổ bộ, #CứuTrợ!")
	want := "bao yagi do bo #cuutro"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
