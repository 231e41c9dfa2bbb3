package nlp

import (
	"time"
)

type SentimentLabel string

const (
	LabelPos SentimentLabel = "pos"
	LabelNeg SentimentLabel = "neg"
	LabelNeu SentimentLabel = "neu"
)

// SentimentResult is the scored sentiment of one clean post
type SentimentResult struct {
	PostID    string
	Label     SentimentLabel
	Score     float64 // normalized to [-1, 1]
	Timestamp time.Time
}
