package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stormsense/app/database"
	"stormsense/app/ingest"
	"stormsense/app/nlp"
	"stormsense/app/preprocess"
)

// Service drives a full analysis run: fetch raw posts, normalize and filter
// them, score and classify each one, fold the aggregates and persist
// everything under a fresh run id. Re-running with the same run id fully
// replaces its rows.
type Service struct {
	adapter     *ingest.Adapter
	normalizer  *preprocess.Normalizer
	lexicon     *nlp.Lexicon
	damage      *nlp.Taxonomy
	relief      *nlp.Taxonomy
	tokenizer   *nlp.Tokenizer
	posts       database.PostRepository
	analytics   database.AnalyticsRepository
	runs        database.RunRepository
	workerCount int
}

func NewService(
	adapter *ingest.Adapter,
	normalizer *preprocess.Normalizer,
	lexicon *nlp.Lexicon,
	damage, relief *nlp.Taxonomy,
	tokenizer *nlp.Tokenizer,
	posts database.PostRepository,
	analytics database.AnalyticsRepository,
	runs database.RunRepository,
	workerCount int,
) *Service {
	return &Service{
		adapter:     adapter,
		normalizer:  normalizer,
		lexicon:     lexicon,
		damage:      damage,
		relief:      relief,
		tokenizer:   tokenizer,
		posts:       posts,
		analytics:   analytics,
		runs:        runs,
		workerCount: max(1, workerCount),
	}
}

// ExpandKeywords derives the match set for a raw keyword: the normalized
// keyword itself, its hashtag form and the "bao "-prefixed storm variants.
// A blank keyword expands to nil, which disables filtering.
func ExpandKeywords(keyword string) []string {
	k := preprocess.NormalizeText(keyword)
	if k == "" {
		return nil
	}
	return []string{k, "#" + k, "bao " + k, "#bao " + k}
}

// Run executes one end-to-end pipeline pass. Connector failures are
// tolerated upstream; any persistence failure aborts the run and marks it
// failed with the stage that broke.
func (s *Service) Run(ctx context.Context, keyword string, from, to *time.Time, limit int) (RunSummary, error) {
	runID := "run_" + uuid.NewString()
	startedAt := time.Now().UTC()

	params, _ := json.Marshal(map[string]any{
		"keyword": keyword,
		"from":    formatOpt(from),
		"to":      formatOpt(to),
		"limit":   limit,
	})
	if err := s.runs.StartRun(runID, string(params), startedAt); err != nil {
		return RunSummary{}, fmt.Errorf("failed to register run: %w", err)
	}

	slog.Info("Run started", "run", runID, "keyword", keyword)

	keys := ExpandKeywords(keyword)
	spec := ingest.NewQuerySpec(keys, from, to, limit)

	raw := s.adapter.Fetch(ctx, spec)
	slog.Info("Ingest finished", "run", runID, "posts", len(raw))

	cleaned := s.preprocessAll(raw, keys)
	if err := s.posts.ReplacePosts(runID, cleaned); err != nil {
		return RunSummary{}, s.fail(runID, fmt.Errorf("failed to persist posts: %w", err))
	}

	analyses := s.analyzeAll(cleaned)
	slog.Info("Scoring finished", "run", runID, "analyzed", len(analyses))

	if err := s.persistAnalyses(runID, analyses); err != nil {
		return RunSummary{}, s.fail(runID, err)
	}
	if err := s.persistAggregates(runID, analyses); err != nil {
		return RunSummary{}, s.fail(runID, err)
	}

	summary := RunSummary{RunID: runID, Ingested: len(raw), Analyzed: len(cleaned)}
	if err := s.runs.FinishRun(runID, time.Now().UTC(), summary.Ingested, summary.Analyzed); err != nil {
		return RunSummary{}, fmt.Errorf("failed to finish run: %w", err)
	}
	slog.Info("Run finished", "run", runID, "ingested", summary.Ingested, "analyzed", summary.Analyzed)
	return summary, nil
}

// preprocessAll normalizes every raw post and keeps the ones with text that
// matches the expanded keyword set. An empty keyword set keeps every
// non-blank post.
func (s *Service) preprocessAll(raw []ingest.RawPost, keys []string) []preprocess.CleanPost {
	out := make([]preprocess.CleanPost, 0, len(raw))
	for _, rp := range raw {
		cp := s.normalizer.Run(rp)
		if cp.TextNorm == "" {
			continue
		}
		if !matchesKeywords(cp, keys) {
			continue
		}
		out = append(out, cp)
	}
	return out
}

func matchesKeywords(cp preprocess.CleanPost, keys []string) bool {
	if len(keys) == 0 {
		return true
	}
	for _, k := range keys {
		if strings.Contains(cp.TextNorm, k) || strings.Contains(cp.TrendText, k) {
			return true
		}
	}
	return false
}

// analyzeAll scores and classifies posts on a bounded worker pool. Results
// land in a preallocated slice by index, keeping the configured post order.
func (s *Service) analyzeAll(cleaned []preprocess.CleanPost) []PostAnalysis {
	analyses := make([]PostAnalysis, len(cleaned))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < s.workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				analyses[i] = s.analyze(cleaned[i])
			}
		}()
	}
	for i := range cleaned {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return analyses
}

func (s *Service) analyze(cp preprocess.CleanPost) PostAnalysis {
	label, score := s.lexicon.Score(cp.TextNorm)
	return PostAnalysis{
		Post: cp,
		Sentiment: nlp.SentimentResult{
			PostID:    cp.RawID,
			Label:     label,
			Score:     score,
			Timestamp: cp.Timestamp,
		},
		DamageCategories: s.damage.Match(cp.TextNorm),
		ReliefCategories: s.relief.Match(cp.TextNorm),
		TrendTokens:      s.tokenizer.Run(cp.TrendText),
	}
}

func (s *Service) persistAnalyses(runID string, analyses []PostAnalysis) error {
	sentiments := make([]nlp.SentimentResult, len(analyses))
	var damage, relief []database.Record
	for i, pa := range analyses {
		sentiments[i] = pa.Sentiment
		for _, category := range pa.DamageCategories {
			damage = append(damage, database.Record{PostID: pa.Post.RawID, Category: category, Timestamp: pa.Post.Timestamp})
		}
		for _, category := range pa.ReliefCategories {
			relief = append(relief, database.Record{PostID: pa.Post.RawID, Category: category, Timestamp: pa.Post.Timestamp})
		}
	}

	if err := s.posts.ReplaceSentiments(runID, sentiments); err != nil {
		return fmt.Errorf("failed to persist sentiments: %w", err)
	}
	if err := s.posts.ReplaceDamageRecords(runID, damage); err != nil {
		return fmt.Errorf("failed to persist damage records: %w", err)
	}
	if err := s.posts.ReplaceReliefRecords(runID, relief); err != nil {
		return fmt.Errorf("failed to persist relief records: %w", err)
	}
	return nil
}

func (s *Service) persistAggregates(runID string, analyses []PostAnalysis) error {
	agg := NewAggregator()

	sentiments := make([]nlp.SentimentResult, len(analyses))
	for i, pa := range analyses {
		sentiments[i] = pa.Sentiment
	}

	if err := s.analytics.ReplaceOverallSentiment(runID, agg.OverallDaily(sentiments)); err != nil {
		return fmt.Errorf("failed to persist overall sentiment: %w", err)
	}
	if err := s.analytics.ReplaceReliefSentiment(runID, agg.ReliefSentiment(analyses)); err != nil {
		return fmt.Errorf("failed to persist relief sentiment: %w", err)
	}
	if err := s.analytics.ReplaceReliefSentimentDaily(runID, agg.ReliefSentimentDaily(analyses)); err != nil {
		return fmt.Errorf("failed to persist relief daily sentiment: %w", err)
	}
	keywords, hashtags := agg.TrendCounts(analyses)
	if err := s.analytics.ReplaceTrendCounts(runID, keywords, hashtags); err != nil {
		return fmt.Errorf("failed to persist trend counts: %w", err)
	}
	return nil
}

// fail marks the run failed, keeping the original error even if the status
// update itself breaks.
func (s *Service) fail(runID string, cause error) error {
	if err := s.runs.FailRun(runID, time.Now().UTC(), cause.Error()); err != nil {
		slog.Error("Failed to mark run as failed", "run", runID, "error", err)
	}
	slog.Error("Run failed", "run", runID, "error", cause)
	return cause
}

func formatOpt(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
