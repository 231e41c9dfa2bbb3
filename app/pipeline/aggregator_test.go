package pipeline

import (
	"testing"
	"time"

	"stormsense/app/nlp"
	"stormsense/app/preprocess"
)

func ts(day, hour int) time.Time {
	return time.Date(2024, 9, day, hour, 0, 0, 0, time.UTC)
}

func TestDayBucketUsesUTCDay(t *testing.T) {
	hanoi := time.FixedZone("ICT", 7*3600)
	local := time.Date(2024, 9, 11, 2, 0, 0, 0, hanoi)

	got := DayBucket(local)
	want := time.Date(2024, 9, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("expected bucket %v, got %v", want, got)
	}
}

func TestOverallDailyCountsPerDay(t *testing.T) {
	agg := NewAggregator()
	rows := agg.OverallDaily([]nlp.SentimentResult{
		{PostID: "a", Label: nlp.LabelPos, Timestamp: ts(10, 8)},
		{PostID: "b", Label: nlp.LabelNeg, Timestamp: ts(10, 20)},
		{PostID: "c", Label: nlp.LabelNeu, Timestamp: ts(11, 1)},
		{PostID: "d", Label: nlp.LabelPos, Timestamp: ts(11, 2)},
	})

	if len(rows) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(rows))
	}
	if !rows[0].BucketStart.Before(rows[1].BucketStart) {
		t.Error("expected buckets sorted ascending")
	}
	if rows[0].Pos != 1 || rows[0].Neg != 1 || rows[0].Neu != 0 {
		t.Errorf("unexpected first bucket counts: %+v", rows[0])
	}
	if rows[1].Pos != 1 || rows[1].Neg != 0 || rows[1].Neu != 1 {
		t.Errorf("unexpected second bucket counts: %+v", rows[1])
	}
}

func analysisWith(id string, label nlp.SentimentLabel, when time.Time, relief []string, tokens []string) PostAnalysis {
	return PostAnalysis{
		Post: preprocess.CleanPost{RawID: id, Timestamp: when},
		Sentiment: nlp.SentimentResult{
			PostID: id, Label: label, Timestamp: when,
		},
		ReliefCategories: relief,
		TrendTokens:      tokens,
	}
}

func TestReliefSentimentCountsPerCategory(t *testing.T) {
	agg := NewAggregator()
	rows := agg.ReliefSentiment([]PostAnalysis{
		analysisWith("a", nlp.LabelPos, ts(10, 8), []string{"tiền mặt", "thuốc men"}, nil),
		analysisWith("b", nlp.LabelNeg, ts(10, 9), []string{"tiền mặt"}, nil),
		analysisWith("c", nlp.LabelPos, ts(10, 10), nil, nil),
	})

	if len(rows) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(rows))
	}
	if rows[0].Category != "thuốc men" || rows[1].Category != "tiền mặt" {
		t.Errorf("expected categories sorted by name, got %q, %q", rows[0].Category, rows[1].Category)
	}
	if rows[1].Pos != 1 || rows[1].Neg != 1 {
		t.Errorf("unexpected counts for %q: %+v", rows[1].Category, rows[1])
	}
}

func TestReliefSentimentDailySplitsByDay(t *testing.T) {
	agg := NewAggregator()
	rows := agg.ReliefSentimentDaily([]PostAnalysis{
		analysisWith("a", nlp.LabelPos, ts(10, 8), []string{"tiền mặt"}, nil),
		analysisWith("b", nlp.LabelPos, ts(11, 8), []string{"tiền mặt"}, nil),
	})

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	for i, row := range rows {
		if row.Category != "tiền mặt" || row.Pos != 1 {
			t.Errorf("unexpected row %d: %+v", i, row)
		}
	}
	if !rows[0].BucketStart.Before(rows[1].BucketStart) {
		t.Error("expected rows sorted by day")
	}
}

func TestTrendCountsSplitsHashtagsFromKeywords(t *testing.T) {
	agg := NewAggregator()
	keywords, hashtags := agg.TrendCounts([]PostAnalysis{
		analysisWith("a", nlp.LabelNeu, ts(10, 8), nil, []string{"lut", "#yagi", "lut"}),
		analysisWith("b", nlp.LabelNeu, ts(10, 9), nil, []string{"#yagi", "sap"}),
	})

	if len(keywords) != 2 {
		t.Fatalf("expected 2 keyword rows, got %d", len(keywords))
	}
	if keywords[0].Token != "lut" || keywords[0].Count != 2 {
		t.Errorf("unexpected keyword row: %+v", keywords[0])
	}
	if len(hashtags) != 1 || hashtags[0].Token != "#yagi" || hashtags[0].Count != 2 {
		t.Errorf("unexpected hashtag rows: %+v", hashtags)
	}
}
