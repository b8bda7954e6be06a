package memory

import (
	"chatrouter/app/config"
	"log/slog"
	"sync"

	"github.com/samber/do"
)

const DefaultSession = "default"

type session struct {
	mu    sync.Mutex
	turns []Turn
}

// Service keeps a bounded window of turns per session plus the last
// location any request resolved. Nothing is persisted.
type Service struct {
	maxEntries int

	sessions sync.Map

	locationMu   sync.RWMutex
	lastLocation string
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewWithLimit(cfg.Memory.MaxTurns), nil
}

// NewWithLimit keeps 2*maxTurns entries per session.
func NewWithLimit(maxTurns int) *Service {
	return &Service{
		maxEntries: 2 * maxTurns,
	}
}

func sessionKey(id string) string {
	if id == "" {
		return DefaultSession
	}

	return id
}

func (s *Service) get(id string) *session {
	value, _ := s.sessions.LoadOrStore(sessionKey(id), &session{})
	return value.(*session)
}

// History returns a copy of the session window, oldest first.
func (s *Service) History(id string) []Turn {
	sess := s.get(id)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	result := make([]Turn, len(sess.turns))
	copy(result, sess.turns)

	return result
}

func (s *Service) Append(id string, turns ...Turn) {
	sess := s.get(id)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.turns = s.trim(append(sess.turns, turns...))
}

// Seed installs client-supplied history, but only into an empty session.
func (s *Service) Seed(id string, turns []Turn) bool {
	if len(turns) == 0 {
		return false
	}

	sess := s.get(id)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(sess.turns) > 0 {
		return false
	}

	seeded := make([]Turn, len(turns))
	copy(seeded, turns)
	sess.turns = s.trim(seeded)

	slog.Debug("Seeded session history",
		"session_id", sessionKey(id),
		"turns", len(sess.turns),
	)

	return true
}

func (s *Service) trim(turns []Turn) []Turn {
	if len(turns) <= s.maxEntries {
		return turns
	}

	result := make([]Turn, s.maxEntries)
	copy(result, turns[len(turns)-s.maxEntries:])

	return result
}

// LastLocation is shared by every session.
func (s *Service) LastLocation() string {
	s.locationMu.RLock()
	defer s.locationMu.RUnlock()

	return s.lastLocation
}

func (s *Service) SetLastLocation(location string) {
	if location == "" {
		return
	}

	s.locationMu.Lock()
	s.lastLocation = location
	s.locationMu.Unlock()
}
