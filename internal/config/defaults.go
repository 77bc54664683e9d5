package config

import "time"

// Defaults mirrored from the struct tags in config.go; the tests keep both in sync.
const (
	DefaultVersion          = "1"
	DefaultServiceBaseURL   = "http://127.0.0.1:8000"
	DefaultFilename         = "main.tex"
	DefaultStorageKey       = "texpad_tex_v1"
	DefaultSaveDelay        = 250 * time.Millisecond
	DefaultExportFilename   = "output.docx"
	DefaultStorageDriver    = "sqlite"
	DefaultServerPort       = "12601"
	DefaultWatchMinInterval = 2 * time.Second
)
