package config

const (
	// Storage errors
	ErrInitializeDatabaseFmt = "Failed to initialize database: %v"
	ErrOpenDraftStore        = "Failed to open draft store"

	// Config errors
	ErrLoadConfig            = "Failed to load config"
	ErrWriteConfigContentFmt = "Failed to write config content: %v"
	ErrCreateTempFileFmt     = "Failed to create temp file: %v"

	// Runtime errors
	ErrStartWatcher = "Failed to start file watcher"
	ErrStartServer  = "Companion server stopped"
	ErrRunUI        = "Terminal UI exited with an error"
)
