package sqlite

// Config holds SQLite database settings
type Config struct {
	// Path is the database file path; parent directories are created on open
	Path string
	// BusyTimeoutMS is how long a connection waits on a locked database
	BusyTimeoutMS int
}

// DefaultConfig returns sensible defaults for SQLite configuration
func DefaultConfig() Config {
	return Config{
		Path:          "data/symcheck.db",
		BusyTimeoutMS: 5000,
	}
}
