package preprocess

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"stormsense/app/ingest"
)

var (
	urlRe     = regexp.MustCompile(`(?i)((https?|ftp)://|www\.)\S+`)
	emailRe   = regexp.MustCompile(`(?i)[\w.+-]+@[\w.-]+\.[a-zA-Z]{2,}`)
	mentionRe = regexp.MustCompile(`@[\p{L}0-9_]+`)
	hashtagRe = regexp.MustCompile(`#([\p{L}0-9_]+)`)
	multiWsRe = regexp.MustCompile(`\s+`)

	epochMillisRe  = regexp.MustCompile(`^\d{13}$`)
	epochSecondsRe = regexp.MustCompile(`^\d{10}$`)
)

// stripMarks removes combining diacritical marks after canonical decomposition.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalizer derives CleanPosts from raw posts
type Normalizer struct {
	now func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// Run normalizes a raw post into a CleanPost. It never fails: unparseable
// text yields an empty normalized string and the keyword filter drops it later.
func (n *Normalizer) Run(raw ingest.RawPost) CleanPost {
	lang := raw.Lang
	if lang == "" {
		lang = "vi"
	}

	createdAt := firstNonBlank(raw.CreatedAt, metaString(raw.Meta, "createdAt"), metaString(raw.Meta, "ts"))
	ts, ok := ParseTimestamp(createdAt)
	if !ok {
		// Known precision loss: bad timestamps inherit the run's wall clock.
		ts = n.now().UTC()
		slog.Debug("Unparseable timestamp, substituting current time", "post", raw.ID, "created_at", createdAt)
	}

	geo := firstNonBlank(raw.UserLoc, metaString(raw.Meta, "geo"), metaString(raw.Meta, "location"))

	return CleanPost{
		RawID:     raw.ID,
		Platform:  raw.Platform,
		TextNorm:  NormalizeText(raw.Text),
		TrendText: NormalizeTrendText(raw.Text),
		Lang:      lang,
		Timestamp: ts,
		Geo:       geo,
	}
}

// NormalizeText produces the sentiment-oriented view: hashtags collapse to
// their bare word. Idempotent under re-application.
func NormalizeText(text string) string {
	return normalize(text, false)
}

// NormalizeTrendText produces the trend-oriented view: hashtags keep their #.
func NormalizeTrendText(text string) string {
	return normalize(text, true)
}

func normalize(text string, keepHashtags bool) string {
	s := urlRe.ReplaceAllString(text, " ")
	s = emailRe.ReplaceAllString(s, " ")
	s = mentionRe.ReplaceAllString(s, " ")
	if !keepHashtags {
		s = hashtagRe.ReplaceAllString(s, "$1")
	}
	s = strings.ToLower(s)
	s = StripDiacritics(s)
	s = collapseRepeats(s)
	s = strings.ReplaceAll(s, " ", " ")
	s = multiWsRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// StripDiacritics removes combining marks and maps the Vietnamese đ/Đ, which
// canonical decomposition does not cover.
func StripDiacritics(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	out = strings.ReplaceAll(out, "đ", "d")
	out = strings.ReplaceAll(out, "Đ", "D")
	return out
}

// collapseRepeats reduces runs of 3+ identical letters to 2 and runs of
// repeated ! or ? to a single character. Backreferences are unavailable in
// RE2, so this is a plain scan.
func collapseRepeats(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var prev rune
	run := 0
	for _, r := range s {
		if r == prev && (unicode.IsLetter(r) || r == '!' || r == '?') {
			run++
		} else {
			prev = r
			run = 1
		}

		if unicode.IsLetter(r) && run > 2 {
			continue
		}
		if (r == '!' || r == '?') && run > 1 {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ParseTimestamp resolves a loosely formatted timestamp string. Accepted
// forms, in order: epoch millis (13 digits), epoch seconds (10 digits),
// RFC 3339, "yyyy-MM-dd HH:mm:ss" and "yyyy/MM/dd HH:mm:ss" (both UTC).
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	if epochMillisRe.MatchString(s) {
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), true
		}
	}
	if epochSecondsRe.MatchString(s) {
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

func firstNonBlank(xs ...string) string {
	for _, x := range xs {
		if strings.TrimSpace(x) != "" {
			return x
		}
	}
	return ""
}

func metaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	if v, ok := meta[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
