// Package retention bounds the number of stored entries per scope by
// evicting oldest-first. The policy is generic over what an entry is; the
// store decides scope keying and ordering.
package retention

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Entry is one evictable item: a metadata row and, optionally, a blob.
type Entry struct {
	ID      string
	BlobKey string
}

// Store lists and removes entries for a scope, oldest first.
type Store interface {
	CountInScope(ctx context.Context, scope string) (int, error)
	OldestInScope(ctx context.Context, scope string, n int) ([]Entry, error)
	DeleteEntry(ctx context.Context, scope string, id string) error
}

// BlobDeleter removes the stored bytes behind an entry.
type BlobDeleter interface {
	Delete(ctx context.Context, key string) error
}

// Policy enforces a per-scope cap.
type Policy struct {
	store Store
	blobs BlobDeleter
	cap   int
	log   zerolog.Logger
}

func New(store Store, blobs BlobDeleter, cap int, log zerolog.Logger) *Policy {
	return &Policy{store: store, blobs: blobs, cap: cap, log: log}
}

// Enforce deletes the oldest entries beyond the cap so the scope converges
// back to <= cap. Blob and metadata deletion are a best-effort pair: a
// missing blob never blocks the metadata delete, otherwise orphan rows would
// keep the scope over the cap forever.
func (p *Policy) Enforce(ctx context.Context, scope string) (int, error) {
	count, err := p.store.CountInScope(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("retention count: %w", err)
	}
	excess := count - p.cap
	if excess <= 0 {
		return 0, nil
	}

	oldest, err := p.store.OldestInScope(ctx, scope, excess)
	if err != nil {
		return 0, fmt.Errorf("retention list: %w", err)
	}

	evicted := 0
	for _, e := range oldest {
		if p.blobs != nil && e.BlobKey != "" {
			if err := p.blobs.Delete(ctx, e.BlobKey); err != nil {
				p.log.Warn().Err(err).Str("scope", scope).Str("key", e.BlobKey).Msg("blob delete failed, removing metadata anyway")
			}
		}
		if err := p.store.DeleteEntry(ctx, scope, e.ID); err != nil {
			return evicted, fmt.Errorf("retention delete %s: %w", e.ID, err)
		}
		evicted++
	}
	return evicted, nil
}
