package pipeline

import (
	"stormsense/app/nlp"
	"stormsense/app/preprocess"
)

// RunSummary is returned to the caller after a successful run
type RunSummary struct {
	RunID    string `json:"run_id"`
	Ingested int    `json:"ingested_count"`
	Analyzed int    `json:"analyzed_count"`
}

// PostAnalysis bundles every per-post result. Computing one is a pure
// function of a single CleanPost, so the scoring stage parallelizes freely;
// only the folds over these need serializing.
type PostAnalysis struct {
	Post             preprocess.CleanPost
	Sentiment        nlp.SentimentResult
	DamageCategories []string
	ReliefCategories []string
	TrendTokens      []string
}
