package database

import (
	"database/sql"
	"fmt"
	"time"

	"stormsense/app/nlp"
	"stormsense/app/preprocess"
)

var _ PostRepository = (*SQLPostRepository)(nil)

// SQLPostRepository stores per-post rows in sqlite
type SQLPostRepository struct {
	db *DB
}

func NewPostRepository(db *DB) *SQLPostRepository {
	return &SQLPostRepository{db: db}
}

func (r *SQLPostRepository) ReplacePosts(runID string, posts []preprocess.CleanPost) error {
	return r.replaceBatch(runID, "posts", len(posts), `
		INSERT INTO posts (run_id, id, platform, text_norm, trend_text, lang, ts, geo)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, func(stmt *sql.Stmt, i int) error {
		p := posts[i]
		_, err := stmt.Exec(runID, p.RawID, p.Platform, p.TextNorm, p.TrendText, p.Lang, formatTS(p.Timestamp), p.Geo)
		return err
	})
}

func (r *SQLPostRepository) ReplaceSentiments(runID string, results []nlp.SentimentResult) error {
	return r.replaceBatch(runID, "sentiments", len(results), `
		INSERT INTO sentiments (run_id, post_id, label, score, ts)
		VALUES (?, ?, ?, ?, ?)
	`, func(stmt *sql.Stmt, i int) error {
		s := results[i]
		_, err := stmt.Exec(runID, s.PostID, string(s.Label), s.Score, formatTS(s.Timestamp))
		return err
	})
}

func (r *SQLPostRepository) ReplaceDamageRecords(runID string, records []Record) error {
	return r.replaceRecords(runID, "damage", records)
}

func (r *SQLPostRepository) ReplaceReliefRecords(runID string, records []Record) error {
	return r.replaceRecords(runID, "relief_items", records)
}

func (r *SQLPostRepository) replaceRecords(runID, table string, records []Record) error {
	return r.replaceBatch(runID, table, len(records), fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (run_id, post_id, category, ts)
		VALUES (?, ?, ?, ?)
	`, table), func(stmt *sql.Stmt, i int) error {
		rec := records[i]
		_, err := stmt.Exec(runID, rec.PostID, rec.Category, formatTS(rec.Timestamp))
		return err
	})
}

// replaceBatch deletes the run's prior rows in table and inserts n new ones
// inside a single transaction, so a crash leaves either the old rows or a
// clean failure.
func (r *SQLPostRepository) replaceBatch(runID, table string, n int, insertSQL string, bind func(*sql.Stmt, int) error) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE run_id = ?", table), runID); err != nil {
		return fmt.Errorf("failed to clear %s for run: %w", table, err)
	}

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for i := 0; i < n; i++ {
		if err := bind(stmt, i); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s batch: %w", table, err)
	}
	return nil
}

func formatTS(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTS(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
