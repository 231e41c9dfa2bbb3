package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ AnalyticsRepository = (*SQLAnalyticsRepository)(nil)

// SQLAnalyticsRepository stores and reads the aggregate tables
type SQLAnalyticsRepository struct {
	db *DB
}

func NewAnalyticsRepository(db *DB) *SQLAnalyticsRepository {
	return &SQLAnalyticsRepository{db: db}
}

/* ---------- writes ---------- */

func (r *SQLAnalyticsRepository) ReplaceOverallSentiment(runID string, rows []OverallSentimentRow) error {
	return r.replace(runID, map[string]inserter{
		"overall_sentiment": {
			sql: "INSERT INTO overall_sentiment (run_id, bucket_start, pos, neg, neu) VALUES (?, ?, ?, ?, ?)",
			n:   len(rows),
			bind: func(stmt *sql.Stmt, i int) error {
				row := rows[i]
				_, err := stmt.Exec(runID, formatTS(row.BucketStart), row.Pos, row.Neg, row.Neu)
				return err
			},
		},
	})
}

func (r *SQLAnalyticsRepository) ReplaceReliefSentiment(runID string, rows []CategorySentimentRow) error {
	return r.replace(runID, map[string]inserter{
		"relief_sentiment": {
			sql: "INSERT INTO relief_sentiment (run_id, category, pos, neg, neu) VALUES (?, ?, ?, ?, ?)",
			n:   len(rows),
			bind: func(stmt *sql.Stmt, i int) error {
				row := rows[i]
				_, err := stmt.Exec(runID, row.Category, row.Pos, row.Neg, row.Neu)
				return err
			},
		},
	})
}

func (r *SQLAnalyticsRepository) ReplaceReliefSentimentDaily(runID string, rows []CategoryDailySentimentRow) error {
	return r.replace(runID, map[string]inserter{
		"relief_sentiment_daily": {
			sql: "INSERT INTO relief_sentiment_daily (run_id, bucket_start, category, pos, neg, neu) VALUES (?, ?, ?, ?, ?, ?)",
			n:   len(rows),
			bind: func(stmt *sql.Stmt, i int) error {
				row := rows[i]
				_, err := stmt.Exec(runID, formatTS(row.BucketStart), row.Category, row.Pos, row.Neg, row.Neu)
				return err
			},
		},
	})
}

func (r *SQLAnalyticsRepository) ReplaceTrendCounts(runID string, keywords, hashtags []TokenCountRow) error {
	return r.replace(runID, map[string]inserter{
		"keyword_counts": {
			sql: "INSERT INTO keyword_counts (run_id, bucket_start, token, cnt) VALUES (?, ?, ?, ?)",
			n:   len(keywords),
			bind: func(stmt *sql.Stmt, i int) error {
				row := keywords[i]
				_, err := stmt.Exec(runID, formatTS(row.BucketStart), row.Token, row.Count)
				return err
			},
		},
		"hashtag_counts": {
			sql: "INSERT INTO hashtag_counts (run_id, bucket_start, tag, cnt) VALUES (?, ?, ?, ?)",
			n:   len(hashtags),
			bind: func(stmt *sql.Stmt, i int) error {
				row := hashtags[i]
				_, err := stmt.Exec(runID, formatTS(row.BucketStart), row.Token, row.Count)
				return err
			},
		},
	})
}

type inserter struct {
	sql  string
	n    int
	bind func(*sql.Stmt, int) error
}

// replace clears and refills one or more aggregate tables for a run inside
// a single transaction.
func (r *SQLAnalyticsRepository) replace(runID string, tables map[string]inserter) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for table, ins := range tables {
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE run_id = ?", table), runID); err != nil {
			return fmt.Errorf("failed to clear %s for run: %w", table, err)
		}

		stmt, err := tx.Prepare(ins.sql)
		if err != nil {
			return fmt.Errorf("failed to prepare %s insert: %w", table, err)
		}
		for i := 0; i < ins.n; i++ {
			if err := ins.bind(stmt, i); err != nil {
				stmt.Close()
				return fmt.Errorf("failed to insert into %s: %w", table, err)
			}
		}
		stmt.Close()
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit aggregate batch: %w", err)
	}
	return nil
}

/* ---------- reads ---------- */

func (r *SQLAnalyticsRepository) GetOverallSentiment(runID string) ([]OverallSentimentRow, error) {
	rows, err := r.db.Query(`
		SELECT bucket_start, pos, neg, neu
		FROM overall_sentiment
		WHERE run_id = ?
		ORDER BY bucket_start
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to read overall sentiment: %w", err)
	}
	defer rows.Close()

	var out []OverallSentimentRow
	for rows.Next() {
		var bucket string
		var row OverallSentimentRow
		if err := rows.Scan(&bucket, &row.Pos, &row.Neg, &row.Neu); err != nil {
			return nil, fmt.Errorf("failed to scan overall sentiment row: %w", err)
		}
		row.BucketStart = parseTS(bucket)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLAnalyticsRepository) GetDamageCounts(runID string) ([]TagCount, error) {
	return r.tagCounts(`
		SELECT category, COUNT(*) AS c
		FROM damage
		WHERE run_id = ?
		GROUP BY category
		ORDER BY c DESC
	`, runID)
}

func (r *SQLAnalyticsRepository) GetReliefCounts(runID string) ([]TagCount, error) {
	return r.tagCounts(`
		SELECT category, COUNT(*) AS c
		FROM relief_items
		WHERE run_id = ?
		GROUP BY category
		ORDER BY c DESC
	`, runID)
}

func (r *SQLAnalyticsRepository) GetReliefSentiment(runID string) ([]CategorySentimentRow, error) {
	rows, err := r.db.Query(`
		SELECT category, pos, neg, neu
		FROM relief_sentiment
		WHERE run_id = ?
		ORDER BY category
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to read relief sentiment: %w", err)
	}
	defer rows.Close()

	var out []CategorySentimentRow
	for rows.Next() {
		var row CategorySentimentRow
		if err := rows.Scan(&row.Category, &row.Pos, &row.Neg, &row.Neu); err != nil {
			return nil, fmt.Errorf("failed to scan relief sentiment row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLAnalyticsRepository) GetReliefSentimentDaily(runID string, from, to *time.Time) ([]CategoryDailySentimentRow, error) {
	query := `
		SELECT bucket_start, category, pos, neg, neu
		FROM relief_sentiment_daily
		WHERE run_id = ?
	`
	args := []any{runID}
	if from != nil {
		query += " AND bucket_start >= ?"
		args = append(args, formatTS(*from))
	}
	if to != nil {
		query += " AND bucket_start <= ?"
		args = append(args, formatTS(*to))
	}
	query += " ORDER BY bucket_start, category"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read relief daily sentiment: %w", err)
	}
	defer rows.Close()

	var out []CategoryDailySentimentRow
	for rows.Next() {
		var bucket string
		var row CategoryDailySentimentRow
		if err := rows.Scan(&bucket, &row.Category, &row.Pos, &row.Neg, &row.Neu); err != nil {
			return nil, fmt.Errorf("failed to scan relief daily row: %w", err)
		}
		row.BucketStart = parseTS(bucket)
		out = append(out, row)
	}
	return out, rows.Err()
}

func (r *SQLAnalyticsRepository) GetTopKeywords(runID string, limit int) ([]TagCount, error) {
	return r.tagCounts(`
		SELECT token, SUM(cnt) AS c
		FROM keyword_counts
		WHERE run_id = ?
		GROUP BY token
		ORDER BY c DESC
		LIMIT ?
	`, runID, max(1, limit))
}

func (r *SQLAnalyticsRepository) GetTopHashtags(runID string, limit int) ([]TagCount, error) {
	return r.tagCounts(`
		SELECT tag, SUM(cnt) AS c
		FROM hashtag_counts
		WHERE run_id = ?
		GROUP BY tag
		ORDER BY c DESC
		LIMIT ?
	`, runID, max(1, limit))
}

func (r *SQLAnalyticsRepository) tagCounts(query string, args ...any) ([]TagCount, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to read tag counts: %w", err)
	}
	defer rows.Close()

	var out []TagCount
	for rows.Next() {
		var tc TagCount
		if err := rows.Scan(&tc.Tag, &tc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan tag count row: %w", err)
		}
		out = append(out, tc)
	}
	return out, rows.Err()
}
