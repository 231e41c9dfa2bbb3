package config

// SourceConfig represents a complete source definition
type SourceConfig struct {
	Source   SourceInfo     `yaml:"source"`
	Settings SourceSettings `yaml:"settings"`
}

// SourceInfo identifies one post source
type SourceInfo struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"` // file, rss
	URL  string `yaml:"url"`  // rss only
	Path string `yaml:"path"` // file only
}

// SourceSettings contains per-source fetch settings
type SourceSettings struct {
	Enabled  bool `yaml:"enabled"`
	MaxPosts int  `yaml:"max_posts"`
	Timeout  int  `yaml:"timeout"` // seconds
}
