package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/voidgrid/game/level"
	"github.com/wricardo/voidgrid/game/service"
)

var (
	ErrLevelNotFound = service.ErrLevelNotFound
	ErrInvalidLevel  = level.ErrInvalidLevel
	ErrInvalidID     = errors.New("invalid level id")
)

// DefaultLevelID is preferred as the default level when present
const DefaultLevelID = "intro"

// Manager handles level loading and caching
type Manager struct {
	levelDir     string
	defaultID    string
	defaultLevel *level.Level
	levels       map[string]*level.Level
	mu           sync.RWMutex
}

// NewManager creates a new level manager over a directory
func NewManager(levelDir string) (*Manager, error) {
	if _, err := os.Stat(levelDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("level directory does not exist: %s", levelDir)
	}

	m := &Manager{
		levelDir: levelDir,
		levels:   make(map[string]*level.Level),
	}

	if err := m.loadDefaultLevel(); err != nil {
		return nil, fmt.Errorf("failed to load default level: %w", err)
	}

	return m, nil
}

// LoadLevel loads a level by ID. A file extension in id is accepted.
func (m *Manager) LoadLevel(id string) (*level.Level, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	if l, exists := m.levels[id]; exists {
		m.mu.RUnlock()
		return l, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked(id)
}

func (m *Manager) loadLocked(id string) (*level.Level, error) {
	// Double-check after acquiring write lock
	if l, exists := m.levels[id]; exists {
		return l, nil
	}

	path, ok := m.findFile(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLevelNotFound, id)
	}

	l, err := level.Load(path)
	if err != nil {
		return nil, err
	}

	m.levels[id] = l
	return l, nil
}

// findFile returns the first existing file for id
func (m *Manager) findFile(id string) (string, bool) {
	for _, ext := range level.Extensions {
		path := filepath.Join(m.levelDir, id+ext)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// ListLevels returns information about all valid levels, sorted by ID.
// Invalid files are skipped.
func (m *Manager) ListLevels() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.levelDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read level directory: %w", err)
	}

	seen := make(map[string]bool)
	var infos []*service.LevelInfo

	for _, entry := range entries {
		if entry.IsDir() || !level.IsLevelFile(entry.Name()) {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if seen[id] {
			continue
		}

		l, err := m.LoadLevel(id)
		if err != nil {
			continue
		}
		seen[id] = true

		path, _ := m.findFile(id)
		infos = append(infos, &service.LevelInfo{
			Filename:    filepath.Base(path),
			LevelID:     id,
			Name:        l.Name,
			Description: l.Description,
			Width:       l.Width,
			Height:      l.Height(),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].LevelID < infos[j].LevelID })
	return infos, nil
}

// GetDefault returns the default level and its ID
func (m *Manager) GetDefault() (string, *level.Level) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID, m.defaultLevel
}

// SetDefault sets the default level by ID
func (m *Manager) SetDefault(id string) error {
	l, err := m.LoadLevel(id)
	if err != nil {
		return err
	}

	id, _ = normalizeID(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = id
	m.defaultLevel = l
	return nil
}

// RefreshCache drops every cached level and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.levels = make(map[string]*level.Level)
	m.mu.Unlock()

	return m.loadDefaultLevel()
}

// loadDefaultLevel picks DefaultLevelID, then the first listed level, then
// a built-in minimal level
func (m *Manager) loadDefaultLevel() error {
	id := DefaultLevelID
	l, err := m.LoadLevel(id)
	if err != nil {
		infos, listErr := m.ListLevels()
		if listErr != nil || len(infos) == 0 {
			id, l = "default", minimalLevel()
		} else {
			id = infos[0].LevelID
			if l, err = m.LoadLevel(id); err != nil {
				id, l = "default", minimalLevel()
			}
		}
	}

	m.mu.Lock()
	m.defaultID = id
	m.defaultLevel = l
	m.mu.Unlock()
	return nil
}

// SaveLevel validates a level and writes it to disk. Without an extension
// in id the level is written as JSON.
func (m *Manager) SaveLevel(id string, l *level.Level) error {
	if err := level.Validate(l); err != nil {
		return err
	}

	filename := id
	if !level.IsLevelFile(filename) {
		filename = id + ".json"
	}
	key, err := normalizeID(filename)
	if err != nil {
		return err
	}

	if err := level.Save(filepath.Join(m.levelDir, filename), l); err != nil {
		return err
	}

	m.mu.Lock()
	m.levels[key] = l
	m.mu.Unlock()

	return nil
}

func normalizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if level.IsLevelFile(id) {
		id = strings.TrimSuffix(id, filepath.Ext(id))
	}
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return id, nil
}

// minimalLevel is used when the directory holds no valid level
func minimalLevel() *level.Level {
	return &level.Level{
		Name:        "default",
		Description: "Walk to the stairs",
		Width:       3,
		Tiles: []string{
			"W,W,W",
			".,.,E",
			"W,W,W",
		},
		Entities: []string{
			".,.,.",
			"P,.,.",
			".,.,.",
		},
	}
}
