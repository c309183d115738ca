// Package ingestion resolves profile identifiers and runs the chunked
// pagination loop that accumulates normalized posts.
package ingestion

import (
	"context"
	"errors"
	"log"

	"influencer-stats/internal/domain"
	"influencer-stats/internal/observability"
	"influencer-stats/internal/session"
	"influencer-stats/internal/storage"
	"influencer-stats/internal/upstream"
)

// Resolver resolves a handle to its profile identifier. Precedence:
// session cache, then the durable store, then a single network lookup.
// A successful lookup updates both caches.
type Resolver struct {
	platform upstream.Platform
	store    storage.IdentifierStore
	logger   *log.Logger
}

// NewResolver creates a Resolver for one platform adapter.
func NewResolver(platform upstream.Platform, store storage.IdentifierStore, logger *log.Logger) *Resolver {
	return &Resolver{platform: platform, store: store, logger: logger}
}

// Resolve returns the profile identifier for handle. Fails with a
// ResolutionError when the handle is empty or upstream exposes no usable
// identifier field; upstream HTTP failures pass through unwrapped inside it.
func (r *Resolver) Resolve(ctx context.Context, sess *session.Session, handle string) (*domain.ProfileIdentifier, error) {
	if handle == "" {
		return nil, &ResolutionError{Handle: handle, Err: ErrEmptyHandle}
	}

	if id := sess.Identifier(); !id.Empty() {
		observability.RecordResolverLookup(string(r.platform.Name()), "session")
		return id, nil
	}

	// Durable cache. Read failures degrade to a network lookup.
	if r.store != nil {
		id, err := r.store.Get(ctx, r.platform.Name(), handle)
		if err == nil && !id.Empty() {
			observability.RecordResolverLookup(string(r.platform.Name()), "store")
			sess.SetIdentifier(id)
			return id, nil
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			r.logger.Printf("identifier store read failed for %q: %v", handle, err)
		}
	}

	id, err := r.platform.ResolveIdentifier(ctx, handle)
	if err != nil {
		return nil, &ResolutionError{Handle: handle, Err: err}
	}

	observability.RecordResolverLookup(string(r.platform.Name()), "network")
	if r.store != nil {
		// Write failures are not fatal; the next cold run resolves again.
		if err := r.store.Put(ctx, r.platform.Name(), handle, id); err != nil {
			r.logger.Printf("identifier store write failed for %q: %v", handle, err)
		}
	}
	sess.SetIdentifier(id)
	return id, nil
}
