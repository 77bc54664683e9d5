// Package artifact holds compile results in memory behind revocable references and delivers
// them to their destinations.
package artifact

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/debemdeboas/texpad/internal/cache"
)

var artifactLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	artifactLogger = l
}

// ErrUnknownRef is returned when a reference was never issued or has been revoked.
var ErrUnknownRef = errors.New("unknown or revoked artifact reference")

const refScheme = "blob:"

// Ref is an ephemeral reference to an artifact held by a Registry.
type Ref string

func (r Ref) String() string { return string(r) }

// Valid reports whether r has the shape of a reference a Registry issues.
func (r Ref) Valid() bool {
	id, ok := strings.CutPrefix(string(r), refScheme)
	if !ok {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

// Artifact is a result payload as returned by the typesetting service.
type Artifact struct {
	Data      []byte
	MediaType string
	CreatedAt time.Time
}

type Registry struct {
	items *cache.Cache[Ref, Artifact]
}

func NewRegistry() *Registry {
	return &Registry{
		items: cache.NewCache[Ref, Artifact](),
	}
}

// Create stores data and returns a fresh reference to it.
func (r *Registry) Create(data []byte, mediaType string) Ref {
	ref := Ref(refScheme + uuid.NewString())
	r.items.Set(ref, Artifact{
		Data:      data,
		MediaType: mediaType,
		CreatedAt: time.Now(),
	})
	artifactLogger.Debug().Str("ref", ref.String()).Str("media_type", mediaType).Int("bytes", len(data)).Msg("Artifact registered")
	return ref
}

func (r *Registry) Resolve(ref Ref) (Artifact, bool) {
	if !ref.Valid() {
		return Artifact{}, false
	}
	return r.items.Get(ref)
}

// Revoke releases ref. It reports false when ref was not live, so a reference is only ever
// released once.
func (r *Registry) Revoke(ref Ref) bool {
	if !ref.Valid() {
		return false
	}
	_, ok := r.items.Take(ref)
	if ok {
		artifactLogger.Debug().Str("ref", ref.String()).Msg("Artifact revoked")
	}
	return ok
}

// RevokeAll releases every live reference and returns how many there were.
func (r *Registry) RevokeAll() int {
	return len(r.items.TakeAll())
}

// Len is the number of live references.
func (r *Registry) Len() int {
	return r.items.Len()
}
