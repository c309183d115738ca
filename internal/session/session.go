// Package session holds the per-profile working state of a run. The state
// lives in memory only; invalidating a session never touches the durable
// identifier cache.
package session

import (
	"errors"
	"sync"
	"time"

	"influencer-stats/internal/domain"
)

// ErrRunInProgress is returned by TryStart when a run is already active
// for the session.
var ErrRunInProgress = errors.New("run already in progress")

// State is the run lifecycle phase of a session.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is the mutable working state for one (platform, handle) pair.
// Safe for concurrent use.
type Session struct {
	mu sync.Mutex

	platform domain.Platform
	handle   string

	state         State
	identifier    *domain.ProfileIdentifier
	posts         []domain.Post
	stats         *domain.StatsSummary
	lastFetchedAt time.Time
}

// New creates an idle session for the pair.
func New(platform domain.Platform, handle string) *Session {
	return &Session{platform: platform, handle: handle, state: StateIdle}
}

// Platform returns the session's platform.
func (s *Session) Platform() domain.Platform { return s.platform }

// Handle returns the session's handle.
func (s *Session) Handle() string { return s.handle }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TryStart transitions the session into StateRunning. Returns
// ErrRunInProgress when a run is already active; any other state is a
// valid starting point.
func (s *Session) TryStart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateRunning {
		return ErrRunInProgress
	}
	s.state = StateRunning
	return nil
}

// Finish ends the active run, transitioning to StateDone or StateFailed.
func (s *Session) Finish(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateFailed
		return
	}
	s.state = StateDone
}

// Identifier returns the cached identifier, or nil when unresolved.
func (s *Session) Identifier() *domain.ProfileIdentifier {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identifier == nil {
		return nil
	}
	id := *s.identifier
	return &id
}

// SetIdentifier caches the resolved identifier on the session.
func (s *Session) SetIdentifier(id *domain.ProfileIdentifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == nil {
		s.identifier = nil
		return
	}
	cp := *id
	s.identifier = &cp
}

// Posts returns the cached post set from the last completed fetch.
func (s *Session) Posts() []domain.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.posts == nil {
		return nil
	}
	out := make([]domain.Post, len(s.posts))
	copy(out, s.posts)
	return out
}

// Stats returns the cached summary, or nil when none has been computed.
func (s *Session) Stats() *domain.StatsSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return nil
	}
	cp := *s.stats
	return &cp
}

// LastFetchedAt returns when the cached posts were fetched; zero when never.
func (s *Session) LastFetchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastFetchedAt
}

// SetResults stores the outcome of a completed fetch.
func (s *Session) SetResults(posts []domain.Post, stats *domain.StatsSummary, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = make([]domain.Post, len(posts))
	copy(s.posts, posts)
	if stats != nil {
		cp := *stats
		s.stats = &cp
	} else {
		s.stats = nil
	}
	s.lastFetchedAt = fetchedAt
}

// Invalidate clears all in-memory state so the next run resolves and
// fetches from scratch. The durable identifier cache is untouched.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identifier = nil
	s.posts = nil
	s.stats = nil
	s.lastFetchedAt = time.Time{}
}
