package ingest

import (
	"context"
	"fmt"

	"stormsense/app/config"
)

// Connector pulls raw posts from one source. Fetch may fail; the adapter
// logs and skips a failing connector instead of aborting the run.
type Connector interface {
	ID() string
	Fetch(ctx context.Context, spec QuerySpec) ([]RawPost, error)
}

// NewConnector builds a connector from a source definition.
func NewConnector(sourceConfig *config.SourceConfig, userAgent string) (Connector, error) {
	switch sourceConfig.Source.Type {
	case "file":
		return NewFileConnector(sourceConfig.Source.Name, sourceConfig.Source.Path, sourceConfig.Settings.MaxPosts), nil
	case "rss":
		return NewRSSConnector(sourceConfig, userAgent), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", sourceConfig.Source.Type)
	}
}
