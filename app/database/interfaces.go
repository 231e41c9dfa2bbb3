package database

import (
	"time"

	"stormsense/app/nlp"
	"stormsense/app/preprocess"
)

// PostRepository persists per-post rows. All writes are batched inside one
// transaction and replace any prior rows for the run.
type PostRepository interface {
	ReplacePosts(runID string, posts []preprocess.CleanPost) error
	ReplaceSentiments(runID string, results []nlp.SentimentResult) error
	ReplaceDamageRecords(runID string, records []Record) error
	ReplaceReliefRecords(runID string, records []Record) error
}

// AnalyticsRepository persists and reads the aggregate tables. Writes fully
// replace the run's prior aggregate rows; reads serve the reporting layer.
type AnalyticsRepository interface {
	ReplaceOverallSentiment(runID string, rows []OverallSentimentRow) error
	ReplaceReliefSentiment(runID string, rows []CategorySentimentRow) error
	ReplaceReliefSentimentDaily(runID string, rows []CategoryDailySentimentRow) error
	ReplaceTrendCounts(runID string, keywords, hashtags []TokenCountRow) error

	GetOverallSentiment(runID string) ([]OverallSentimentRow, error)
	GetDamageCounts(runID string) ([]TagCount, error)
	GetReliefCounts(runID string) ([]TagCount, error)
	GetReliefSentiment(runID string) ([]CategorySentimentRow, error)
	GetReliefSentimentDaily(runID string, from, to *time.Time) ([]CategoryDailySentimentRow, error)
	GetTopKeywords(runID string, limit int) ([]TagCount, error)
	GetTopHashtags(runID string, limit int) ([]TagCount, error)
}

// RunRepository tracks run metadata
type RunRepository interface {
	StartRun(runID, paramsJSON string, startedAt time.Time) error
	FinishRun(runID string, finishedAt time.Time, ingested, analyzed int) error
	FailRun(runID string, finishedAt time.Time, reason string) error
	GetRun(runID string) (*Run, error)
	ListRuns(limit int) ([]Run, error)
}
