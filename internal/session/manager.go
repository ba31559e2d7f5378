package session

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/ops-cockpit/internal/pipeline"
	"github.com/sells-group/ops-cockpit/internal/store"
)

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	// DSN is ":memory:" (or empty) for private in-memory stores, otherwise a
	// directory that receives one SQLite file per live session. The file is
	// removed when the session is deleted or the manager closed.
	DSN         string
	MaxSessions int
	Options     pipeline.Options
}

// Manager tracks live sessions by id.
type Manager struct {
	cfg ManagerConfig

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager returns an empty manager.
func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{cfg: cfg, sessions: make(map[string]*Session)}
}

func (m *Manager) dsnFor(id string) string {
	if m.cfg.DSN == "" || m.cfg.DSN == store.MemoryDSN {
		return store.MemoryDSN
	}
	return filepath.Join(m.cfg.DSN, id+".db")
}

// Create opens a session over tables with its own scenario store.
func (m *Manager) Create(ctx context.Context, tables pipeline.Tables, source string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return nil, eris.Errorf("session: limit of %d sessions reached", m.cfg.MaxSessions)
	}

	s := newSession(tables, source, m.cfg.Options)
	dsn := m.dsnFor(s.ID)
	st, err := store.NewSQLite(dsn)
	if err != nil {
		return nil, eris.Wrap(err, "session: open store")
	}
	if dsn != store.MemoryDSN {
		s.storePath = dsn
	}
	s.store = st
	if err := st.Migrate(ctx); err != nil {
		closeSession(s) //nolint:errcheck
		return nil, eris.Wrap(err, "session: migrate store")
	}
	m.sessions[s.ID] = s

	zap.L().Info("session: created",
		zap.String("session_id", s.ID),
		zap.String("source", source),
		zap.Int("ops_rows", tables.Ops.Len()),
	)
	return s, nil
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// IDs returns the live session ids, sorted.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Delete closes and forgets a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return eris.Errorf("session not found: %s", id)
	}
	return eris.Wrapf(closeSession(s), "session: close %s", id)
}

// Close closes every session. The first close error is returned.
func (m *Manager) Close() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	var first error
	for id, s := range sessions {
		if err := closeSession(s); err != nil && first == nil {
			first = eris.Wrapf(err, "session: close %s", id)
		}
	}
	return first
}

// closeSession closes the session store and removes its file, if any.
func closeSession(s *Session) error {
	err := s.Close()
	if s.storePath == "" {
		return err
	}
	if rmErr := os.Remove(s.storePath); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) && err == nil {
		err = eris.Wrapf(rmErr, "session: remove store %s", s.storePath)
	}
	return err
}
