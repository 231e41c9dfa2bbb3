package ingest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FileConnector reads offline drop-folder collections: every *.jsonl file
// under its root, one JSON post per line. Malformed lines are skipped, never
// fatal.
type FileConnector struct {
	name     string
	root     string
	maxPosts int
}

func NewFileConnector(name, root string, maxPosts int) *FileConnector {
	return &FileConnector{name: name, root: root, maxPosts: maxPosts}
}

func (c *FileConnector) ID() string {
	return c.name
}

func (c *FileConnector) Fetch(ctx context.Context, spec QuerySpec) ([]RawPost, error) {
	info, err := os.Stat(c.root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("collections root not found: %s", c.root)
	}

	lineCount, parsedCount := 0, 0
	var out []RawPost

	err = filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".jsonl") {
			return nil
		}
		if c.maxPosts > 0 && len(out) >= c.maxPosts {
			return fs.SkipAll
		}

		posts, lines, parsed, err := c.readFile(path, spec)
		if err != nil {
			slog.Warn("Failed to read collection file", "file", path, "error", err)
			return nil
		}
		lineCount += lines
		parsedCount += parsed
		out = append(out, posts...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk collections: %w", err)
	}

	if c.maxPosts > 0 && len(out) > c.maxPosts {
		out = out[:c.maxPosts]
	}

	slog.Debug("File connector summary",
		"connector", c.name, "lines", lineCount, "parsed", parsedCount, "result", len(out))

	return out, nil
}

func (c *FileConnector) readFile(path string, spec QuerySpec) (posts []RawPost, lines, parsed int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines++

		var post RawPost
		if err := json.Unmarshal([]byte(line), &post); err != nil {
			continue // one bad record never spoils the file
		}
		parsed++

		if post.ID == "" {
			post.ID = "gen_" + uuid.NewString()
		}
		if post.Platform == "" {
			post.Platform = c.name
		}

		if !withinWindow(post.CreatedAt, spec) {
			continue
		}
		if len(spec.Keywords) > 0 && !keywordMatch(foldText(post.Text), spec.Keywords) {
			continue
		}

		posts = append(posts, post)
	}
	return posts, lines, parsed, scanner.Err()
}

func keywordMatch(textNorm string, keywords []string) bool {
	if textNorm == "" {
		return false
	}
	for _, k := range keywords {
		if strings.Contains(textNorm, k) {
			return true
		}
	}
	return false
}

var foldStrip = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var foldNonWordRe = regexp.MustCompile(`[^a-z0-9#\s]+`)

// foldText is the connector-side folding used only for keyword prefiltering;
// the authoritative normalization lives in app/preprocess.
func foldText(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	folded, _, err := transform.String(foldStrip, lower)
	if err != nil {
		folded = lower
	}
	folded = strings.ReplaceAll(folded, "đ", "d")
	folded = foldNonWordRe.ReplaceAllString(folded, " ")
	return strings.TrimSpace(strings.Join(strings.Fields(folded), " "))
}

// parseCreatedAt mirrors the normalizer's timestamp resolution for the
// connector-side time filter.
func parseCreatedAt(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if len(s) == 13 && allDigits(s) {
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
	}
	if len(s) == 10 && allDigits(s) {
		if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.Unix(sec, 0).UTC(), true
		}
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.UTC); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006/01/02 15:04:05", s, time.UTC); err == nil {
		return t, true
	}

	return time.Time{}, false
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
