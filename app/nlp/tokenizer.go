package nlp

import (
	"bufio"
	"log/slog"
	"os"
	"regexp"
	"strings"
)

var trendSplitRe = regexp.MustCompile(`[^a-z0-9#\s]+`)

// Tokenizer splits normalized trend text into stopword-filtered unigrams and
// hashtags for frequency counting.
type Tokenizer struct {
	stop map[string]struct{}
}

// NewTokenizer builds a tokenizer over the given stopword list.
func NewTokenizer(stopwords []string) *Tokenizer {
	stop := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			stop[w] = struct{}{}
		}
	}
	return &Tokenizer{stop: stop}
}

// NewTokenizerFromFile loads stopwords from a plain-text file, one word per
// line, # comments skipped. A missing file yields an empty stopword set.
func NewTokenizerFromFile(path string) (*Tokenizer, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Stopword file missing, trends will keep every token", "path", path)
			return NewTokenizer(nil), nil
		}
		return nil, err
	}
	defer file.Close()

	var words []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return NewTokenizer(words), nil
}

// Run tokenizes trend text (hashtag-preserving normalized view) on
// non-alphanumeric boundaries except #, dropping stopwords and tokens of
// length <= 1. Tokens starting with # are hashtags, the rest keywords.
func (t *Tokenizer) Run(trendText string) []string {
	s := trendSplitRe.ReplaceAllString(trendText, " ")
	fields := strings.Fields(s)

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 1 {
			continue
		}
		if _, ok := t.stop[f]; ok {
			continue
		}
		out = append(out, f)
	}
	return out
}

// IsHashtag reports whether a trend token is a hashtag.
func IsHashtag(token string) bool {
	return strings.HasPrefix(token, "#")
}
