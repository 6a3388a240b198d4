package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"mandi/server/internal/gateway"
	"mandi/server/internal/geocoding"
	"mandi/server/internal/geometry"
	"mandi/server/internal/models"
	"mandi/server/internal/search"
)

// Session owns the per-user state of one dashboard: pacing, caches, the
// running search and its progress
type Session struct {
	ID        string
	CreatedAt time.Time

	logger       *logrus.Logger
	gateway      *gateway.Gateway
	resolver     *geocoding.Resolver
	orchestrator *search.Orchestrator
	release      func() error

	mu         sync.Mutex
	lastSeen   time.Time
	progress   models.SearchProgress
	searching  bool
	generation uint64
	cancel     context.CancelCauseFunc
	closed     bool
}

func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Resolver is used by the suggestion endpoints
func (s *Session) Resolver() *geocoding.Resolver {
	return s.resolver
}

// GatewayStats reports the outbound calls made for this session
func (s *Session) GatewayStats() gateway.Stats {
	return s.gateway.Stats()
}

// SetDeviceLocation stores the browser position and names its state from the
// static bounding boxes. The state is empty when no box matches.
func (s *Session) SetDeviceLocation(coords models.Coordinates) string {
	s.resolver.SetDeviceLocation(coords)
	state := geometry.StateAt(coords)
	s.logger.WithFields(logrus.Fields{
		"session": s.ID,
		"state":   state,
	}).Info("Device location set")
	return state
}

// Search runs a smart search. A search already running on the session is
// cancelled first.
func (s *Session) Search(ctx context.Context, location, crop string) (*search.Result, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, search.ErrCancelled
	}
	if s.cancel != nil {
		s.cancel(search.ErrCancelled)
	}
	s.generation++
	gen := s.generation
	s.cancel = cancel
	s.searching = true
	s.progress = models.SearchProgress{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.generation == gen {
			s.cancel = nil
			s.searching = false
		}
		s.mu.Unlock()
	}()

	return s.orchestrator.SmartSearch(ctx, location, crop, func(p models.SearchProgress) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.generation == gen && ctx.Err() == nil {
			s.progress = p
		}
	})
}

// Cancel stops the running search, false when there is none
func (s *Session) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return false
	}
	s.cancel(search.ErrCancelled)
	s.cancel = nil
	s.searching = false
	return true
}

type Progress struct {
	models.SearchProgress
	Searching bool `json:"searching"`
}

func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Progress{SearchProgress: s.progress, Searching: s.searching}
}

// Close cancels any running search and drops the session caches
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel(search.ErrCancelled)
		s.cancel = nil
	}
	s.mu.Unlock()

	if s.release != nil {
		return s.release()
	}
	return nil
}
