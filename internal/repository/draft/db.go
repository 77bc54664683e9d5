package draft

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/debemdeboas/texpad/internal/db"
	"github.com/debemdeboas/texpad/internal/util"
	"github.com/debemdeboas/texpad/internal/util/compression"
)

type DBRepository struct { // implements Repository
	db db.DB

	compressor      compression.Compressor
	compressionName string
}

// NewDBRepository stores drafts in the drafts table, compressed with the named codec.
func NewDBRepository(database db.DB, compressionName string) (*DBRepository, error) {
	compressor, err := compression.ForName(compressionName)
	if err != nil {
		return nil, err
	}
	if compressionName == "" {
		compressionName = "none"
	}

	return &DBRepository{
		db:              database,
		compressor:      compressor,
		compressionName: compressionName,
	}, nil
}

func (r *DBRepository) SaveDraft(key string, content []byte) error {
	compressed, err := r.compressor.Compress(content)
	if err != nil {
		return fmt.Errorf("error compressing content: %w", err)
	}
	if compressed == nil {
		// A nil slice binds as NULL.
		compressed = []byte{}
	}

	hash := util.ContentHash(content)

	res, err := r.db.Exec(
		`INSERT INTO drafts (key, content, content_hash, compression, modified_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET content = excluded.content, content_hash = excluded.content_hash,
		 compression = excluded.compression, modified_at = excluded.modified_at`,
		key, compressed, hash, r.compressionName, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("error saving draft: %w", err)
	}

	repoLogger.Debug().Interface("result", res).Str("key", key).Str("hash", hash).Msg("Draft saved")
	return nil
}

func (r *DBRepository) GetDraft(key string) (*Draft, error) {
	var d Draft
	var stored []byte
	var codec string

	err := r.db.QueryRow(
		`SELECT key, content, content_hash, compression, modified_at FROM drafts WHERE key = ?`, key,
	).Scan(&d.Key, &stored, &d.ContentHash, &codec, &d.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrDraftNotFound, key)
	} else if err != nil {
		return nil, fmt.Errorf("error reading draft: %w", err)
	}

	// Rows written under a different codec setting stay readable.
	decoder := r.compressor
	if codec != r.compressionName {
		if decoder, err = compression.ForName(codec); err != nil {
			return nil, fmt.Errorf("error reading draft: %w", err)
		}
	}

	d.Content, err = decoder.Decompress(stored)
	if err != nil {
		return nil, fmt.Errorf("error decompressing content: %w", err)
	}

	return &d, nil
}

func (r *DBRepository) DeleteDraft(key string) error {
	if _, err := r.db.Exec(`DELETE FROM drafts WHERE key = ?`, key); err != nil {
		return fmt.Errorf("error deleting draft: %w", err)
	}
	return nil
}
