package draft

import (
	"fmt"
	"sync"
	"time"

	"github.com/debemdeboas/texpad/internal/util"
)

type MemoryRepository struct {
	drafts sync.Map
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) SaveDraft(key string, content []byte) error {
	stored := make([]byte, len(content))
	copy(stored, content)

	r.drafts.Store(key, &Draft{
		Key:         key,
		Content:     stored,
		ContentHash: util.ContentHash(stored),
		ModifiedAt:  time.Now().UTC(),
	})
	return nil
}

func (r *MemoryRepository) GetDraft(key string) (*Draft, error) {
	if d, ok := r.drafts.Load(key); ok {
		return d.(*Draft), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, key)
}

func (r *MemoryRepository) DeleteDraft(key string) error {
	r.drafts.Delete(key)
	return nil
}
