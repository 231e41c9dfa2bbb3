package api

import (
	"stormsense/app/database"
)

// Handler serves the reporting endpoints over the aggregate tables.
type Handler struct {
	analyticsRepo database.AnalyticsRepository
	runRepo       database.RunRepository
	version       string
}
