package draft

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/debemdeboas/texpad/internal/util"
)

const draftExt = ".tex"

// FSRepository keeps one plain file per key, readable by any editor.
type FSRepository struct {
	dir string
}

func NewFSRepository(dir string) *FSRepository {
	return &FSRepository{dir: dir}
}

func (r *FSRepository) path(key string) string {
	safe := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
			return c
		default:
			return '_'
		}
	}, key)
	return filepath.Join(r.dir, safe+draftExt)
}

func (r *FSRepository) SaveDraft(key string, content []byte) error {
	if err := util.WriteFileAtomic(r.path(key), content, 0o644); err != nil {
		return fmt.Errorf("error saving draft %s: %w", key, err)
	}
	return nil
}

func (r *FSRepository) GetDraft(key string) (*Draft, error) {
	path := r.path(key)

	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, key)
	} else if err != nil {
		return nil, fmt.Errorf("error reading draft %s: %w", key, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error reading draft %s: %w", key, err)
	}

	return &Draft{
		Key:         key,
		Content:     content,
		ContentHash: util.ContentHash(content),
		ModifiedAt:  info.ModTime().UTC(),
	}, nil
}

func (r *FSRepository) DeleteDraft(key string) error {
	if err := os.Remove(r.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error deleting draft %s: %w", key, err)
	}
	return nil
}
