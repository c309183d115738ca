package storage

import (
	"context"

	"influencer-stats/internal/domain"
)

// IdentifierStore is the durable handle → identifier cache. Entries never
// expire on their own; a forced refresh clears posts and stats but leaves
// the persisted identifier in place.
type IdentifierStore interface {
	// Put stores or replaces the identifier for (platform, handle).
	Put(ctx context.Context, platform domain.Platform, handle string, id *domain.ProfileIdentifier) error

	// Get retrieves the identifier for (platform, handle).
	// Returns ErrNotFound if no entry exists.
	Get(ctx context.Context, platform domain.Platform, handle string) (*domain.ProfileIdentifier, error)
}
