package database

import (
	"time"
)

// Record is one (post, category) classification hit, for damage or relief
type Record struct {
	PostID    string
	Category  string
	Timestamp time.Time
}

// OverallSentimentRow is the daily overall sentiment aggregate
type OverallSentimentRow struct {
	BucketStart time.Time `json:"bucket_start"`
	Pos         int       `json:"pos"`
	Neg         int       `json:"neg"`
	Neu         int       `json:"neu"`
}

// CategorySentimentRow is the per-category sentiment aggregate
type CategorySentimentRow struct {
	Category string `json:"category"`
	Pos      int    `json:"pos"`
	Neg      int    `json:"neg"`
	Neu      int    `json:"neu"`
}

// CategoryDailySentimentRow is the per-category-per-day sentiment aggregate
type CategoryDailySentimentRow struct {
	BucketStart time.Time `json:"bucket_start"`
	Category    string    `json:"category"`
	Pos         int       `json:"pos"`
	Neg         int       `json:"neg"`
	Neu         int       `json:"neu"`
}

// TokenCountRow is one per-day keyword or hashtag count
type TokenCountRow struct {
	BucketStart time.Time `json:"bucket_start"`
	Token       string    `json:"token"`
	Count       int       `json:"count"`
}

// TagCount is a read-shaped total for one category, keyword or hashtag
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// Run is one complete pipeline execution
type Run struct {
	RunID         string     `json:"run_id"`
	ParamsJSON    string     `json:"params"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
	IngestedCount int        `json:"ingested_count"`
	AnalyzedCount int        `json:"analyzed_count"`
	Error         string     `json:"error,omitempty"`
}

// Run status values
const (
	RunStatusStarted  = "started"
	RunStatusFinished = "finished"
	RunStatusFailed   = "failed"
)
