package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Data directories
	LexiconsDir string
	SourcesDir  string

	// Run parameters
	Keyword     string
	From        string
	To          string
	Limit       int
	WorkerCount int

	// Reporting API
	Serve bool
	Port  string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
