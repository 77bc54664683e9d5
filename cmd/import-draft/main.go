package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/texpad/internal/config"
	"github.com/debemdeboas/texpad/internal/db"
	"github.com/debemdeboas/texpad/internal/repository/draft"
	"github.com/debemdeboas/texpad/internal/util"
)

// main copies a .tex file into the draft store, or the stored draft out to a file.
func main() {
	configPath := flag.String("config", "texpad.yaml", "Path to the texpad configuration file")
	path := flag.String("path", "", "Path of the .tex file to read from, or write to with -export")
	key := flag.String("key", "", "Draft key (defaults to document.storage_key)")
	export := flag.Bool("export", false, "Write the stored draft to -path instead of importing it")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "The -path flag is required")
		os.Exit(2)
	}

	if err := run(*configPath, *path, *key, *export); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, path, key string, export bool) error {
	quiet := zerolog.New(os.Stderr).Level(zerolog.WarnLevel)
	config.SetLogger(quiet)
	db.SetLogger(quiet)
	draft.SetLogger(quiet)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf(config.ErrLoadConfig+": %w", err)
	}
	if key == "" {
		key = cfg.Document.StorageKey
	}

	repo, closer, err := draft.Open(cfg.Storage)
	if err != nil {
		return fmt.Errorf(config.ErrOpenDraftStore+": %w", err)
	}
	defer closer.Close()

	if export {
		d, err := repo.GetDraft(key)
		if errors.Is(err, draft.ErrDraftNotFound) {
			return fmt.Errorf("no draft stored under %q", key)
		} else if err != nil {
			return err
		}
		if err := util.WriteFileAtomic(path, d.Content, 0o644); err != nil {
			return err
		}
		fmt.Printf("Exported draft %q (%d bytes) to %s\n", key, len(d.Content), path)
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}
	if err := repo.SaveDraft(key, content); err != nil {
		return err
	}
	fmt.Printf("Imported %s into draft %q (%d bytes, sha256 %s)\n", path, key, len(content), util.ContentHash(content)[:12])
	return nil
}
