// Package upstream talks to the third-party proxy APIs that front the two
// supported platforms. Each platform adapter owns its endpoints, identifier
// alias chains, page shape, and post field chains; the fetch loop and the
// normalizer stay platform-agnostic.
package upstream

import (
	"context"
	"errors"

	"influencer-stats/internal/domain"
	"influencer-stats/internal/normalization"
)

// Page is one unit of paginated fetch response. The cursor is owned by the
// fetch loop and never leaves it.
type Page struct {
	Records    []normalization.Raw
	NextCursor string
	HasMore    bool
}

// End reports whether upstream signaled no further pages.
func (p *Page) End() bool {
	return !p.HasMore || p.NextCursor == ""
}

// Platform is the adapter contract one platform target implements.
type Platform interface {
	// Name returns the platform this adapter targets.
	Name() domain.Platform

	// ResolveIdentifier looks the handle up against the proxy API and
	// extracts the pagination identifier, trying known field aliases in
	// priority order. Returns ErrNoIdentifier when no alias yields a value.
	ResolveIdentifier(ctx context.Context, handle string) (*domain.ProfileIdentifier, error)

	// FetchPage requests one page of posts for the identifier at the given
	// cursor ("" for the first page).
	FetchPage(ctx context.Context, id *domain.ProfileIdentifier, cursor string) (*Page, error)

	// Chains returns the accessor chains used to normalize this platform's
	// raw records.
	Chains() normalization.Chains

	// PostURL builds the public permalink for a post, or "" if the post
	// lacks the fields the platform needs.
	PostURL(handle string, post *domain.Post) string
}

// ErrNoIdentifier is returned when the lookup response exposes none of the
// known identifier aliases.
var ErrNoIdentifier = errors.New("no identifier field in upstream response")
