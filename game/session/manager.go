package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/voidgrid/game/level"
	"github.com/wricardo/voidgrid/game/service"
	"github.com/wricardo/voidgrid/logger"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = service.ErrSessionAlreadyExists
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager keeps live sessions keyed by lowercase ID. With a persistence
// layer attached, sessions missing from memory are replayed from storage
// on first access.
type Manager struct {
	mu          sync.RWMutex
	sessions    map[string]*service.Session
	persistence SessionPersistence
	log         *logrus.Entry
}

// NewManager creates a manager that keeps sessions in memory only
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		log:      logger.WithComponent("session"),
	}
}

// NewManagerWithPersistence creates a manager backed by persistence
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	m := NewManager()
	m.persistence = persistence
	return m
}

func key(id string) string { return strings.ToLower(id) }

// Create starts a session on lvl. An empty id gets a generated one.
func (m *Manager) Create(id, levelID string, lvl *level.Level) (*service.Session, error) {
	if strings.ContainsAny(id, `/\. `) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.freeID()
	}
	if m.takenLocked(id) {
		return nil, ErrSessionAlreadyExists
	}

	sess, err := service.NewSession(id, levelID, lvl, engineOptions(id)...)
	if err != nil {
		return nil, fmt.Errorf("start session %s: %w", id, err)
	}
	m.sessions[key(id)] = sess

	// a storage failure does not cost the player the session
	if m.persistence != nil {
		if err := m.persistence.Save(sess); err != nil {
			m.log.WithError(err).WithField("session_id", id).Warn("new session not persisted")
		}
	}
	return sess, nil
}

// Get looks the session up in memory, then in persistence
func (m *Manager) Get(id string) (*service.Session, error) {
	k := key(id)

	m.mu.RLock()
	sess, ok := m.sessions[k]
	m.mu.RUnlock()
	if ok {
		return sess, nil
	}

	if m.persistence == nil || !m.persistence.Exists(k) {
		return nil, ErrSessionNotFound
	}

	loaded, err := m.persistence.Load(k)
	if err != nil {
		return nil, fmt.Errorf("replay session %s: %w", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if sess, ok := m.sessions[k]; ok {
		return sess, nil
	}
	m.sessions[k] = loaded
	m.log.WithField("session_id", k).Debug("session replayed from storage")
	return loaded, nil
}

// List returns the live sessions in no particular order
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.live()
}

// Delete drops the session from memory and storage
func (m *Manager) Delete(id string) error {
	k := key(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.sessions[k]
	delete(m.sessions, k)

	if m.persistence != nil && m.persistence.Exists(k) {
		if err := m.persistence.Delete(k); err != nil {
			return fmt.Errorf("delete stored session %s: %w", id, err)
		}
		return nil
	}
	if !inMemory {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteFromMemory evicts a session but leaves its stored log alone
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[key(id)]; !ok {
		return ErrSessionNotFound
	}
	delete(m.sessions, key(id))
	return nil
}

// UpdateLastAccessed stamps the session. The stamp reaches storage with
// the next Save.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[key(id)]
	if !ok {
		return ErrSessionNotFound
	}
	sess.LastAccessedAt = time.Now()
	return nil
}

// Save writes one live session to storage. Without storage it is a no-op.
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	sess, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	if !ok {
		return ErrSessionNotFound
	}
	return m.persistence.Save(sess)
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge and
// returns how many went. Stored logs stay loadable.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for k, sess := range m.sessions {
		if sess.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, k)
			evicted++
		}
	}
	if evicted > 0 {
		m.log.WithField("evicted", evicted).Info("idle sessions evicted")
	}
	return evicted
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Exists reports whether the session is live or stored
func (m *Manager) Exists(id string) bool {
	m.mu.RLock()
	_, ok := m.sessions[key(id)]
	m.mu.RUnlock()
	return ok || (m.persistence != nil && m.persistence.Exists(key(id)))
}

// LoadPersistedSessions replays every stored log not already live. Logs
// that fail to replay are skipped with a warning.
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	ids, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("list stored sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	replayed := 0
	for _, id := range ids {
		if _, ok := m.sessions[key(id)]; ok {
			continue
		}
		sess, err := m.persistence.Load(id)
		if err != nil {
			m.log.WithError(err).WithField("session_id", id).Warn("stored session skipped")
			continue
		}
		m.sessions[key(id)] = sess
		replayed++
	}

	m.log.WithFields(logrus.Fields{"stored": len(ids), "replayed": replayed}).Info("stored sessions loaded")
	return nil
}

// SaveAllSessions writes every live session and joins the failures
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	sessions := m.live()
	m.mu.RUnlock()

	var errs []error
	for _, sess := range sessions {
		if err := m.persistence.Save(sess); err != nil {
			m.log.WithError(err).WithField("session_id", sess.ID).Warn("session not saved")
			errs = append(errs, fmt.Errorf("session %s: %w", sess.ID, err))
		}
	}
	return errors.Join(errs...)
}

// live copies the session map values. Callers hold m.mu.
func (m *Manager) live() []*service.Session {
	out := make([]*service.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		out = append(out, sess)
	}
	return out
}

// takenLocked reports whether id is live or has a stored log. Evicted
// sessions stay in storage, so memory alone is not enough. Callers hold m.mu.
func (m *Manager) takenLocked(id string) bool {
	if _, ok := m.sessions[key(id)]; ok {
		return true
	}
	return m.persistence != nil && m.persistence.Exists(key(id))
}

// freeID draws random 4-hex IDs until one is unused. Callers hold m.mu.
func (m *Manager) freeID() string {
	buf := make([]byte, 2)
	for {
		rand.Read(buf)
		if id := hex.EncodeToString(buf); !m.takenLocked(id) {
			return id
		}
	}
}
