// Package draft stores the document source under a single key, the way a browser keeps a
// value in local storage.
package draft

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
)

var ErrDraftNotFound = errors.New("draft not found")

type Draft struct {
	Key         string
	Content     []byte
	ContentHash string
	ModifiedAt  time.Time
}

type Repository interface {
	GetDraft(key string) (*Draft, error)
	SaveDraft(key string, content []byte) error
	DeleteDraft(key string) error
}

var repoLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	repoLogger = l
}
