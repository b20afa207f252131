// Package state persists where each file was left off so playback can
// resume from there.
package state

import (
	"database/sql"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/llehouerou/mediaplayer/internal/db"
	"github.com/llehouerou/mediaplayer/internal/logger"
)

const (
	appName      = "mediaplayer"
	dbFileName   = "state.db"
	saveDebounce = 500 * time.Millisecond

	// Positions this close to either end are not worth resuming.
	resumeMargin = 5 * time.Second
)

// Position is a saved playhead for one file.
type Position struct {
	Path     string
	Position time.Duration
	Duration time.Duration
	SavedAt  time.Time
}

type Manager struct {
	db *sql.DB

	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   map[string]Position
	now       func() time.Time
}

// Open opens the store in the XDG data directory.
func Open() (*Manager, error) {
	path, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath opens the store at path. ":memory:" gives a private in-memory
// store.
func OpenPath(path string) (*Manager, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" a single database.
	conn.SetMaxOpenConns(1)

	if err := db.Configure(conn); err != nil {
		conn.Close()
		return nil, err
	}
	if err := initSchema(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &Manager{
		db:      conn,
		pending: make(map[string]Position),
		now:     time.Now,
	}, nil
}

// Close flushes pending saves and closes the database.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
		m.saveTimer = nil
	}
	pending := m.takePendingLocked()
	m.saveMu.Unlock()

	flushErr := savePositions(m.db, pending)
	return errors.Join(flushErr, m.db.Close())
}

// ResumePosition returns where playback of path should start. Zero means
// from the beginning.
func (m *Manager) ResumePosition(path string) time.Duration {
	m.saveMu.Lock()
	p, ok := m.pending[path]
	m.saveMu.Unlock()

	if !ok {
		stored, err := getPosition(m.db, path)
		if err != nil {
			logger.Log.Warn().Err(err).Str("path", path).Msg("reading resume position")
			return 0
		}
		if stored == nil {
			return 0
		}
		p = *stored
	}
	if !resumable(p.Position, p.Duration) {
		return 0
	}
	return p.Position
}

// SavePosition records the playhead of path. Writes are debounced; an
// unresumable position clears the saved one.
func (m *Manager) SavePosition(path string, position, duration time.Duration) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending[path] = Position{
		Path:     path,
		Position: position,
		Duration: duration,
		SavedAt:  m.now(),
	}

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	m.saveTimer = time.AfterFunc(saveDebounce, m.flush)
}

// Forget drops the saved position of path, for example once it played to
// the end.
func (m *Manager) Forget(path string) {
	m.saveMu.Lock()
	delete(m.pending, path)
	m.saveMu.Unlock()

	if err := deletePosition(m.db, path); err != nil {
		logger.Log.Warn().Err(err).Str("path", path).Msg("forgetting resume position")
	}
}

// Positions returns every stored position, most recent first.
func (m *Manager) Positions() ([]Position, error) {
	return listPositions(m.db)
}

func (m *Manager) flush() {
	m.saveMu.Lock()
	pending := m.takePendingLocked()
	m.saveMu.Unlock()

	if err := savePositions(m.db, pending); err != nil {
		logger.Log.Warn().Err(err).Int("count", len(pending)).Msg("saving resume positions")
	}
}

func (m *Manager) takePendingLocked() []Position {
	if len(m.pending) == 0 {
		return nil
	}
	out := make([]Position, 0, len(m.pending))
	for _, p := range m.pending {
		out = append(out, p)
	}
	m.pending = make(map[string]Position)
	return out
}

func resumable(position, duration time.Duration) bool {
	if position < resumeMargin {
		return false
	}
	return duration <= 0 || position < duration-resumeMargin
}
