package nlp

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Modifier token sets. Diacritics-free to match normalized text.
var (
	negators  = newSet("khong", "chang", "cha", "deo", "khg", "k", "ko", "k0", "kh")
	boosters  = newSet("rat", "very", "qua", "too", "cuc", "kha", "quite")
	dampeners = newSet("hoi", "slightly", "abit", "it", "slight", "a-bit")
)

var (
	positiveEmoji = []string{"🙂", "😊", "❤️", "👍", "💪", "✨", "🎉"}
	negativeEmoji = []string{"🙁", "😢", "😞", "😡", "💔", "👎"}
)

// Fallback entries used when a lexicon file is missing, so a bare checkout
// still scores something sensible.
var (
	fallbackPos = []string{"ung ho", "cam on", "hy vong", "tich cuc", "an toan", "khac phuc", "ho tro", "on dinh", "tuyet voi"}
	fallbackNeg = []string{"nguy hiem", "thiet hai", "ngap sau", "mat dien", "gio manh", "lu lut", "do nat", "sap cau", "tieu cuc"}
)

const (
	boosterWeight  = 1.25
	dampenerWeight = 0.8
	negationWindow = 3

	posThreshold = 0.05
	negThreshold = -0.05
)

var nonTokenRe = regexp.MustCompile(`[^a-z0-9#]+`)

// entries is one polarity of the lexicon: single-token entries plus
// multi-token phrases sorted longest-first.
type entries struct {
	unigrams map[string]struct{}
	phrases  [][]string
}

// Lexicon is the immutable rule base for sentiment scoring. Construct once
// via LoadLexicon and share freely; scoring is read-only.
type Lexicon struct {
	pos entries
	neg entries
}

// LoadLexicon reads sentiment_pos.txt and sentiment_neg.txt from dir. A
// missing file falls back to the built-in entries; a present file replaces
// them. Lines starting with # are comments.
func LoadLexicon(dir string) (*Lexicon, error) {
	pos, err := loadEntries(filepath.Join(dir, "sentiment_pos.txt"), fallbackPos)
	if err != nil {
		return nil, fmt.Errorf("failed to load positive lexicon: %w", err)
	}
	neg, err := loadEntries(filepath.Join(dir, "sentiment_neg.txt"), fallbackNeg)
	if err != nil {
		return nil, fmt.Errorf("failed to load negative lexicon: %w", err)
	}

	slog.Info("Lexicon loaded",
		"pos_unigrams", len(pos.unigrams), "pos_phrases", len(pos.phrases),
		"neg_unigrams", len(neg.unigrams), "neg_phrases", len(neg.phrases))

	return &Lexicon{pos: pos, neg: neg}, nil
}

// NewLexicon builds a lexicon directly from entry lines, for tests and
// callers that keep their word lists elsewhere.
func NewLexicon(posLines, negLines []string) *Lexicon {
	return &Lexicon{
		pos: entriesFromLines(posLines),
		neg: entriesFromLines(negLines),
	}
}

// Score scans a normalized text and returns its sentiment label and a score
// in [-1, 1]. Blank text is neutral without scanning.
func (lx *Lexicon) Score(textNorm string) (SentimentLabel, float64) {
	if strings.TrimSpace(textNorm) == "" {
		return LabelNeu, 0.0
	}

	toks := Tokenize(textNorm)
	raw := lx.voteScore(toks)

	if exclam := strings.Count(textNorm, "!"); exclam >= 1 {
		raw *= 1.0 + min(0.5, float64(exclam)*0.1)
	}
	raw += emojiDelta(textNorm)

	score := max(-1.0, min(1.0, raw/3.0))

	switch {
	case score > posThreshold:
		return LabelPos, score
	case score < negThreshold:
		return LabelNeg, score
	default:
		return LabelNeu, score
	}
}

// voteScore walks the token sequence left to right, preferring the longest
// phrase match at each position, and keeps integer vote counts. Modifier
// weights influence a match only through the sign of its vote.
func (lx *Lexicon) voteScore(toks []string) float64 {
	pos, neg := 0, 0

	for i := 0; i < len(toks); i++ {
		sign, length := lx.matchAt(toks, i)
		if sign == 0 {
			sign = lx.unigramSign(toks[i])
			if sign == 0 {
				continue
			}
			length = 1
		}

		w := 1.0
		if i > 0 {
			if _, ok := boosters[toks[i-1]]; ok {
				w *= boosterWeight
			}
			if _, ok := dampeners[toks[i-1]]; ok {
				w *= dampenerWeight
			}
		}

		negated := false
		for k := max(0, i-negationWindow); k < i; k++ {
			if _, ok := negators[toks[k]]; ok {
				negated = true
				break
			}
		}

		signed := float64(sign) * w
		if negated {
			signed = -signed
		}

		if signed > 0 {
			pos++
		} else {
			neg++
		}
		i += length - 1
	}

	return float64(pos - neg)
}

// matchAt returns the sign and length of the longest phrase starting at i,
// or (0, 0) when no phrase matches. Positive phrases win length ties.
func (lx *Lexicon) matchAt(toks []string, i int) (sign, length int) {
	bestLen, bestSign := 0, 0
	for _, p := range lx.pos.phrases {
		if len(p) > bestLen && phraseMatches(toks, i, p) {
			bestLen, bestSign = len(p), +1
		}
	}
	for _, p := range lx.neg.phrases {
		if len(p) > bestLen && phraseMatches(toks, i, p) {
			bestLen, bestSign = len(p), -1
		}
	}
	return bestSign, bestLen
}

func (lx *Lexicon) unigramSign(tok string) int {
	sign := 0
	if _, ok := lx.pos.unigrams[tok]; ok {
		sign++
	}
	if _, ok := lx.neg.unigrams[tok]; ok {
		sign--
	}
	return sign
}

func phraseMatches(toks []string, i int, phrase []string) bool {
	if i+len(phrase) > len(toks) {
		return false
	}
	for k, w := range phrase {
		if toks[i+k] != w {
			return false
		}
	}
	return true
}

// emojiDelta counts which sentiment-bearing glyphs appear anywhere in the
// text. The delta is bounded to [-0.2, +0.15].
func emojiDelta(s string) float64 {
	plus, minus := 0, 0
	for _, e := range positiveEmoji {
		if strings.Contains(s, e) {
			plus++
		}
	}
	for _, e := range negativeEmoji {
		if strings.Contains(s, e) {
			minus++
		}
	}
	return min(0.15, float64(plus)*0.15) - min(0.2, float64(minus)*0.2)
}

// Tokenize splits normalized text on whitespace, keeping only a-z, 0-9 and #
// inside tokens.
func Tokenize(textNorm string) []string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(textNorm)))
	toks := make([]string, 0, len(fields))
	for _, f := range fields {
		f = nonTokenRe.ReplaceAllString(f, "")
		if f != "" {
			toks = append(toks, f)
		}
	}
	return toks
}

func loadEntries(path string, fallback []string) (entries, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Lexicon file missing, using built-in entries", "path", path)
			return entriesFromLines(fallback), nil
		}
		return entries{}, err
	}
	defer file.Close()

	e := entries{unigrams: make(map[string]struct{})}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e.add(line)
	}
	if err := scanner.Err(); err != nil {
		return entries{}, err
	}

	e.sortPhrases()
	return e, nil
}

func entriesFromLines(lines []string) entries {
	e := entries{unigrams: make(map[string]struct{})}
	for _, line := range lines {
		e.add(strings.ToLower(strings.TrimSpace(line)))
	}
	e.sortPhrases()
	return e
}

func (e *entries) add(line string) {
	toks := Tokenize(line)
	switch {
	case len(toks) == 0:
	case len(toks) == 1:
		e.unigrams[toks[0]] = struct{}{}
	default:
		e.phrases = append(e.phrases, toks)
	}
}

func (e *entries) sortPhrases() {
	sort.SliceStable(e.phrases, func(i, j int) bool {
		return len(e.phrases[i]) > len(e.phrases[j])
	})
}

func newSet(words ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}
