package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stormsense/app/database"
)

func NewHandler(analyticsRepo database.AnalyticsRepository, runRepo database.RunRepository, version string) *Handler {
	return &Handler{
		analyticsRepo: analyticsRepo,
		runRepo:       runRepo,
		version:       version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"version":   h.version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if runs, err := h.runRepo.ListRuns(1); err == nil && len(runs) > 0 {
		health["last_run"] = gin.H{
			"run_id":     runs[0].RunID,
			"status":     runs[0].Status,
			"started_at": runs[0].StartedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListRuns(c *gin.Context) {
	limit := queryInt(c, "limit", 20)

	runs, err := h.runRepo.ListRuns(limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]gin.H, 0, len(runs))
	for _, run := range runs {
		out = append(out, runJSON(run))
	}

	c.JSON(http.StatusOK, gin.H{"runs": out, "total": len(out)})
}

func (h *Handler) GetRun(c *gin.Context) {
	run, ok := h.requireRun(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, runJSON(*run))
}

func (h *Handler) GetOverallSentiment(c *gin.Context) {
	run, ok := h.requireRun(c)
	if !ok {
		return
	}

	rows, err := h.analyticsRepo.GetOverallSentiment(run.RunID)
	if err != nil {
		slog.Error("Database error", "operation", "get_overall", "run", run.RunID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	buckets := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, gin.H{
			"bucket_start": row.BucketStart.Format(time.RFC3339),
			"pos":          row.Pos,
			"neg":          row.Neg,
			"neu":          row.Neu,
		})
	}

	c.JSON(http.StatusOK, gin.H{"run_id": run.RunID, "buckets": buckets})
}

func (h *Handler) GetDamageCounts(c *gin.Context) {
	run, ok := h.requireRun(c)
	if !ok {
		return
	}

	counts, err := h.analyticsRepo.GetDamageCounts(run.RunID)
	if err != nil {
		slog.Error("Database error", "operation", "get_damage", "run", run.RunID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"run_id": run.RunID, "categories": tagCountsJSON(counts)})
}

func (h *Handler) GetReliefSummary(c *gin.Context) {
	run, ok := h.requireRun(c)
	if !ok {
		return
	}

	counts, err := h.analyticsRepo.GetReliefCounts(run.RunID)
	if err != nil {
		slog.Error("Database error", "operation", "get_relief_counts", "run", run.RunID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	sentiment, err := h.analyticsRepo.GetReliefSentiment(run.RunID)
	if err != nil {
		slog.Error("Database error", "operation", "get_relief_sentiment", "run", run.RunID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	rows := make([]gin.H, 0, len(sentiment))
	for _, row := range sentiment {
		rows = append(rows, gin.H{
			"category": row.Category,
			"pos":      row.Pos,
			"neg":      row.Neg,
			"neu":      row.Neu,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":     run.RunID,
		"categories": tagCountsJSON(counts),
		"sentiment":  rows,
	})
}

func (h *Handler) GetReliefDaily(c *gin.Context) {
	run, ok := h.requireRun(c)
	if !ok {
		return
	}

	from, ok := queryTime(c, "from")
	if !ok {
		return
	}
	to, ok := queryTime(c, "to")
	if !ok {
		return
	}

	rows, err := h.analyticsRepo.GetReliefSentimentDaily(run.RunID, from, to)
	if err != nil {
		slog.Error("Database error", "operation", "get_relief_daily", "run", run.RunID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, gin.H{
			"bucket_start": row.BucketStart.Format(time.RFC3339),
			"category":     row.Category,
			"pos":          row.Pos,
			"neg":          row.Neg,
			"neu":          row.Neu,
		})
	}

	c.JSON(http.StatusOK, gin.H{"run_id": run.RunID, "rows": out})
}

func (h *Handler) GetTrends(c *gin.Context) {
	run, ok := h.requireRun(c)
	if !ok {
		return
	}

	limit := queryInt(c, "limit", 10)

	keywords, err := h.analyticsRepo.GetTopKeywords(run.RunID, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_top_keywords", "run", run.RunID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	hashtags, err := h.analyticsRepo.GetTopHashtags(run.RunID, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_top_hashtags", "run", run.RunID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":   run.RunID,
		"keywords": tagCountsJSON(keywords),
		"hashtags": tagCountsJSON(hashtags),
	})
}

// requireRun resolves the :id path parameter to a stored run and writes the
// error response itself when that fails.
func (h *Handler) requireRun(c *gin.Context) (*database.Run, bool) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing run id parameter"})
		return nil, false
	}

	run, err := h.runRepo.GetRun(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_run", "run", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return nil, false
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Run not found"})
		return nil, false
	}
	return run, true
}

func runJSON(run database.Run) gin.H {
	out := gin.H{
		"run_id":         run.RunID,
		"params":         run.ParamsJSON,
		"status":         run.Status,
		"started_at":     run.StartedAt.Format(time.RFC3339),
		"ingested_count": run.IngestedCount,
		"analyzed_count": run.AnalyzedCount,
	}
	if run.FinishedAt != nil {
		out["finished_at"] = run.FinishedAt.Format(time.RFC3339)
	}
	if run.Error != "" {
		out["error"] = run.Error
	}
	return out
}

func tagCountsJSON(counts []database.TagCount) []gin.H {
	out := make([]gin.H, 0, len(counts))
	for _, tc := range counts {
		out = append(out, gin.H{"tag": tc.Tag, "count": tc.Count})
	}
	return out
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// queryTime parses an optional RFC 3339 query parameter. A malformed value
// is a client error, not a silent nil.
func queryTime(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " parameter, expected RFC 3339"})
		return nil, false
	}
	t = t.UTC()
	return &t, true
}
