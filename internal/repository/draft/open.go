package draft

import (
	"fmt"
	"io"

	"github.com/debemdeboas/texpad/internal/config"
	"github.com/debemdeboas/texpad/internal/db"
)

// Open builds the repository selected by cfg.Driver. The closer releases any database
// handle and is never nil.
func Open(cfg config.StorageConfig) (Repository, io.Closer, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryRepository(), nopCloser{}, nil
	case "fs":
		return NewFSRepository(cfg.Path), nopCloser{}, nil
	case "sqlite", "":
		database := db.NewSQLite(cfg.Path)
		if err := database.InitDB(); err != nil {
			return nil, nil, fmt.Errorf("error initializing database: %w", err)
		}
		repo, err := NewDBRepository(database, cfg.Compression)
		if err != nil {
			database.Close()
			return nil, nil, err
		}
		return repo, database, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
