package api

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS, so dashboards served elsewhere can read the JSON directly
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/health", handler.GetHealth)

	r.GET("/runs", handler.ListRuns)
	r.GET("/runs/:id", handler.GetRun)
	r.GET("/runs/:id/overall", handler.GetOverallSentiment)
	r.GET("/runs/:id/damage", handler.GetDamageCounts)
	r.GET("/runs/:id/relief", handler.GetReliefSummary)
	r.GET("/runs/:id/relief/daily", handler.GetReliefDaily)
	r.GET("/runs/:id/trends", handler.GetTrends)

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "stormsense",
			"endpoints": map[string]string{
				"health":       "/health",
				"runs":         "/runs",
				"run":          "/runs/<id>",
				"overall":      "/runs/<id>/overall",
				"damage":       "/runs/<id>/damage",
				"relief":       "/runs/<id>/relief",
				"relief_daily": "/runs/<id>/relief/daily?from=<ts>&to=<ts>",
				"trends":       "/runs/<id>/trends?limit=<n>",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
