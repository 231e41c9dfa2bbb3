package pipeline

import (
	"sort"
	"time"

	"stormsense/app/database"
	"stormsense/app/nlp"
)

// Aggregator folds per-post analyses into the four aggregate row sets. All
// folds are commutative over posts; output rows are sorted for stable
// persistence and tests.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// DayBucket truncates a timestamp to the start of its UTC calendar day.
func DayBucket(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type counts struct {
	pos, neg, neu int
}

func (c *counts) add(label nlp.SentimentLabel) {
	switch label {
	case nlp.LabelPos:
		c.pos++
	case nlp.LabelNeg:
		c.neg++
	default:
		c.neu++
	}
}

// OverallDaily groups sentiment results by UTC day and counts labels.
func (a *Aggregator) OverallDaily(results []nlp.SentimentResult) []database.OverallSentimentRow {
	acc := make(map[time.Time]*counts)
	for _, s := range results {
		day := DayBucket(s.Timestamp)
		c, ok := acc[day]
		if !ok {
			c = &counts{}
			acc[day] = c
		}
		c.add(s.Label)
	}

	out := make([]database.OverallSentimentRow, 0, len(acc))
	for day, c := range acc {
		out = append(out, database.OverallSentimentRow{BucketStart: day, Pos: c.pos, Neg: c.neg, Neu: c.neu})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketStart.Before(out[j].BucketStart) })
	return out
}

// ReliefSentiment counts each post's sentiment once per matched relief
// category.
func (a *Aggregator) ReliefSentiment(analyses []PostAnalysis) []database.CategorySentimentRow {
	acc := make(map[string]*counts)
	for _, pa := range analyses {
		for _, category := range pa.ReliefCategories {
			c, ok := acc[category]
			if !ok {
				c = &counts{}
				acc[category] = c
			}
			c.add(pa.Sentiment.Label)
		}
	}

	out := make([]database.CategorySentimentRow, 0, len(acc))
	for category, c := range acc {
		out = append(out, database.CategorySentimentRow{Category: category, Pos: c.pos, Neg: c.neg, Neu: c.neu})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// ReliefSentimentDaily is ReliefSentiment additionally keyed by UTC day.
func (a *Aggregator) ReliefSentimentDaily(analyses []PostAnalysis) []database.CategoryDailySentimentRow {
	type key struct {
		day      time.Time
		category string
	}
	acc := make(map[key]*counts)
	for _, pa := range analyses {
		day := DayBucket(pa.Sentiment.Timestamp)
		for _, category := range pa.ReliefCategories {
			k := key{day: day, category: category}
			c, ok := acc[k]
			if !ok {
				c = &counts{}
				acc[k] = c
			}
			c.add(pa.Sentiment.Label)
		}
	}

	out := make([]database.CategoryDailySentimentRow, 0, len(acc))
	for k, c := range acc {
		out = append(out, database.CategoryDailySentimentRow{
			BucketStart: k.day, Category: k.category, Pos: c.pos, Neg: c.neg, Neu: c.neu,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BucketStart.Equal(out[j].BucketStart) {
			return out[i].BucketStart.Before(out[j].BucketStart)
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// TrendCounts folds per-day token frequencies, split into keywords and
// hashtags.
func (a *Aggregator) TrendCounts(analyses []PostAnalysis) (keywords, hashtags []database.TokenCountRow) {
	type key struct {
		day   time.Time
		token string
	}
	kwAcc := make(map[key]int)
	tagAcc := make(map[key]int)

	for _, pa := range analyses {
		day := DayBucket(pa.Post.Timestamp)
		for _, token := range pa.TrendTokens {
			k := key{day: day, token: token}
			if nlp.IsHashtag(token) {
				tagAcc[k]++
			} else {
				kwAcc[k]++
			}
		}
	}

	toRows := func(acc map[key]int) []database.TokenCountRow {
		out := make([]database.TokenCountRow, 0, len(acc))
		for k, n := range acc {
			out = append(out, database.TokenCountRow{BucketStart: k.day, Token: k.token, Count: n})
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].BucketStart.Equal(out[j].BucketStart) {
				return out[i].BucketStart.Before(out[j].BucketStart)
			}
			return out[i].Token < out[j].Token
		})
		return out
	}

	return toRows(kwAcc), toRows(tagAcc)
}
