package preprocess

import (
	"time"
)

// CleanPost is the normalized, analysis-ready form of a raw post.
// TextNorm flattens hashtags to bare words for sentiment and taxonomy
// matching; TrendText keeps the leading # so the trend tokenizer can tell
// hashtags and keywords apart. Immutable once created.
type CleanPost struct {
	RawID     string
	Platform  string
	TextNorm  string
	TrendText string
	Lang      string
	Timestamp time.Time
	Geo       string
}
