package internal

// Mode selects what Run does after startup.
type Mode string

const (
	// ModeTUI runs the interactive terminal UI. Default.
	ModeTUI Mode = "tui"
	// ModeReconcile prints (and optionally repairs) the drift report.
	ModeReconcile Mode = "reconcile"
	// ModeWatch monitors the storage directory and repairs drift on change.
	ModeWatch Mode = "watch"
	// ModeMCP serves the note tools over stdio MCP.
	ModeMCP Mode = "mcp"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	home   string
	mode   Mode
	apply  bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithHome sets the application home directory (config, index, template).
func WithHome(dir string) Option {
	return func(a *application) {
		a.home = dir
	}
}

// WithMode selects the run mode.
func WithMode(mode Mode) Option {
	return func(a *application) {
		a.mode = mode
	}
}

// WithApply makes reconcile mode repair the drift it reports.
func WithApply(apply bool) Option {
	return func(a *application) {
		a.apply = apply
	}
}
