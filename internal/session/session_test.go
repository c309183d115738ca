package session

import (
	"errors"
	"testing"
	"time"

	"influencer-stats/internal/domain"
)

func TestSession_RunGuard(t *testing.T) {
	s := New(domain.PlatformTikTok, "creator")

	if s.State() != StateIdle {
		t.Fatalf("Expected idle, got %v", s.State())
	}
	if err := s.TryStart(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := s.TryStart(); !errors.Is(err, ErrRunInProgress) {
		t.Fatalf("Expected ErrRunInProgress, got %v", err)
	}

	s.Finish(nil)
	if s.State() != StateDone {
		t.Errorf("Expected done, got %v", s.State())
	}

	// Done and failed sessions can start again.
	if err := s.TryStart(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	s.Finish(errors.New("boom"))
	if s.State() != StateFailed {
		t.Errorf("Expected failed, got %v", s.State())
	}
	if err := s.TryStart(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

func TestSession_InvalidateClearsEverything(t *testing.T) {
	s := New(domain.PlatformInstagram, "creator")
	now := time.Now()

	s.SetIdentifier(&domain.ProfileIdentifier{Primary: "123"})
	s.SetResults([]domain.Post{{ID: "p1"}}, &domain.StatsSummary{SampleSize: 1}, now)

	s.Invalidate()

	if s.Identifier() != nil {
		t.Error("Expected nil identifier")
	}
	if s.Posts() != nil {
		t.Error("Expected nil posts")
	}
	if s.Stats() != nil {
		t.Error("Expected nil stats")
	}
	if !s.LastFetchedAt().IsZero() {
		t.Error("Expected zero fetch time")
	}
}

func TestSession_CopiesOut(t *testing.T) {
	s := New(domain.PlatformTikTok, "creator")
	s.SetResults([]domain.Post{{ID: "p1"}}, &domain.StatsSummary{SampleSize: 1}, time.Now())

	posts := s.Posts()
	posts[0].ID = "mutated"
	if s.Posts()[0].ID != "p1" {
		t.Error("Caller mutation leaked into session state")
	}

	stats := s.Stats()
	stats.SampleSize = 99
	if s.Stats().SampleSize != 1 {
		t.Error("Caller mutation leaked into session stats")
	}
}

func TestManager_OneSessionPerPair(t *testing.T) {
	m := NewManager()

	a := m.Get(domain.PlatformTikTok, "creator")
	b := m.Get(domain.PlatformTikTok, "creator")
	c := m.Get(domain.PlatformInstagram, "creator")

	if a != b {
		t.Error("Expected the same session for the same pair")
	}
	if a == c {
		t.Error("Expected distinct sessions per platform")
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateIdle:    "idle",
		StateRunning: "running",
		StateDone:    "done",
		StateFailed:  "failed",
		State(42):    "unknown",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d): expected %q, got %q", state, want, got)
		}
	}
}
