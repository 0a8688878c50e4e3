package cfg

type Cfg struct {
	// Pipeline configuration
	ProfilePath   string
	DocumentPath  string
	OpenAIKey     string
	OpenAIBaseURL string
	Model         string
	DryRun        bool

	// Run history
	DBPath string

	// Serve mode
	Serve        bool
	Port         string
	Schedule     string
	APIAccessKey string
	RunOnStart   bool

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
