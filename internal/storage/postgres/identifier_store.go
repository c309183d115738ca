package postgres

import (
	"context"
	"fmt"
	"time"

	"influencer-stats/internal/domain"
	"influencer-stats/internal/storage"
)

// IdentifierStore implements storage.IdentifierStore using PostgreSQL.
type IdentifierStore struct {
	pool *Pool
}

// NewIdentifierStore creates a new IdentifierStore.
func NewIdentifierStore(pool *Pool) *IdentifierStore {
	return &IdentifierStore{pool: pool}
}

// Compile-time interface check.
var _ storage.IdentifierStore = (*IdentifierStore)(nil)

// Put stores or replaces the identifier for (platform, handle).
func (s *IdentifierStore) Put(ctx context.Context, platform domain.Platform, handle string, id *domain.ProfileIdentifier) error {
	if !platform.Valid() || handle == "" || id.Empty() {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO identifier_cache (platform, handle, primary_id, secondary_id, resolved_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (platform, handle)
		DO UPDATE SET primary_id = EXCLUDED.primary_id,
		              secondary_id = EXCLUDED.secondary_id,
		              resolved_at = EXCLUDED.resolved_at
	`

	_, err := s.pool.Exec(ctx, query,
		string(platform),
		handle,
		id.Primary,
		id.Secondary,
		time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("put identifier: %w", err)
	}
	return nil
}

// Get retrieves the identifier for (platform, handle). Returns ErrNotFound
// if no entry exists.
func (s *IdentifierStore) Get(ctx context.Context, platform domain.Platform, handle string) (*domain.ProfileIdentifier, error) {
	query := `
		SELECT primary_id, secondary_id
		FROM identifier_cache
		WHERE platform = $1 AND handle = $2
	`

	var id domain.ProfileIdentifier
	row := s.pool.QueryRow(ctx, query, string(platform), handle)
	if err := row.Scan(&id.Primary, &id.Secondary); err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get identifier: %w", err)
	}
	return &id, nil
}
