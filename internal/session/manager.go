package session

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mandi/server/config"
	"mandi/server/internal/database"
	"mandi/server/internal/gateway"
	"mandi/server/internal/geocoding"
	"mandi/server/internal/processor"
	"mandi/server/internal/search"
)

var ErrNotFound = errors.New("session not found")

// purgeableStore is a geocode store that can be emptied when its session ends
type purgeableStore interface {
	geocoding.Store
	Purge() error
}

// Manager creates, looks up and expires sessions
type Manager struct {
	cfg     *config.Config
	logger  *logrus.Logger
	fetcher search.Fetcher
	db      *database.Database
	client  *http.Client
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager builds a manager. db is only used by the sqlite cache backend
// and may be nil otherwise.
func NewManager(cfg *config.Config, fetcher search.Fetcher, db *database.Database, logger *logrus.Logger) (*Manager, error) {
	if cfg.Cache.Backend == config.CacheBackendSQLite && db == nil {
		return nil, errors.New("sqlite geocode cache requires a database")
	}
	return &Manager{
		cfg:      cfg,
		logger:   logger,
		fetcher:  fetcher,
		db:       db,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}, nil
}

// WithHTTPClient sets the client used by new session gateways
func (m *Manager) WithHTTPClient(client *http.Client) *Manager {
	m.client = client
	return m
}

func (m *Manager) Create() (*Session, error) {
	id := uuid.NewString()

	store, err := m.newStore(id)
	if err != nil {
		return nil, err
	}

	gw := gateway.New(m.logger, gateway.Options{
		MinInterval:       m.cfg.Gateway.MinInterval,
		MaxRetries:        m.cfg.Gateway.MaxRetries,
		BackoffBase:       m.cfg.Gateway.BackoffBase,
		BackoffCap:        m.cfg.Gateway.BackoffCap,
		NetworkRetryDelay: m.cfg.Gateway.NetworkRetryDelay,
		Timeout:           m.cfg.Geocoder.Timeout,
	})
	if m.client != nil {
		gw.WithHTTPClient(m.client)
	}

	resolver, err := geocoding.NewResolver(m.logger, gw, store, geocoding.Options{
		BaseURL:         m.cfg.Geocoder.BaseURL,
		Key:             m.cfg.Geocoder.Key,
		CountryCode:     m.cfg.Geocoder.CountryCode,
		SuggestionLimit: m.cfg.Geocoder.SuggestionLimit,
	})
	if err != nil {
		return nil, err
	}

	orchestrator := search.NewOrchestrator(resolver, m.fetcher, search.Options{
		Timeout:       m.cfg.Search.Timeout,
		MaxCandidates: m.cfg.Search.MaxCandidates,
		TopN:          m.cfg.Search.TopN,
		Batch: processor.Options{
			BatchSize:     m.cfg.Search.BatchSize,
			Stagger:       m.cfg.Search.Stagger,
			BatchPause:    m.cfg.Search.BatchPause,
			TargetResults: m.cfg.Search.TargetResults,
			MaxRadiusKm:   m.cfg.Search.MaxRadiusKm,
		},
	}, m.logger)

	now := m.now()
	s := &Session{
		ID:           id,
		CreatedAt:    now,
		logger:       m.logger,
		gateway:      gw,
		resolver:     resolver,
		orchestrator: orchestrator,
		release:      store.Purge,
		lastSeen:     now,
	}

	m.mu.Lock()
	m.sessions[id] = s
	total := len(m.sessions)
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"session":  id,
		"backend":  m.cfg.Cache.Backend,
		"sessions": total,
	}).Info("Session created")
	return s, nil
}

func (m *Manager) newStore(id string) (purgeableStore, error) {
	switch m.cfg.Cache.Backend {
	case config.CacheBackendSQLite:
		return m.db.GeocodeStore(id), nil
	default:
		store, err := geocoding.NewMemoryStore(m.cfg.Cache.Size)
		if err != nil {
			return nil, fmt.Errorf("failed to create session cache: %w", err)
		}
		return store, nil
	}
}

// Get returns the session and marks it as seen
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.Touch(m.now())
	return s, nil
}

// Close ends a session and drops its caches
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	if err := s.Close(); err != nil {
		m.logger.WithError(err).WithField("session", id).Error("Failed to release session cache")
		return err
	}
	m.logger.WithField("session", id).Info("Session closed")
	return nil
}

// Sweep closes sessions idle for longer than the TTL and returns how many
func (m *Manager) Sweep(now time.Time) int {
	var expired []string
	m.mu.RLock()
	for id, s := range m.sessions {
		if now.Sub(s.LastSeen()) > m.cfg.Session.TTL {
			expired = append(expired, id)
		}
	}
	m.mu.RUnlock()

	closed := 0
	for _, id := range expired {
		if err := m.Close(id); err == nil {
			closed++
		}
	}
	return closed
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CloseAll ends every session
func (m *Manager) CloseAll() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		_ = m.Close(id)
	}
}
