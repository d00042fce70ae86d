package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/voidgrid/game/service"
)

const sessionFileExt = ".json"

// FilePersistence keeps one replay log per session as a JSON file
type FilePersistence struct {
	dir    string
	levels service.LevelManager
}

// NewFilePersistence creates dir if needed. Levels are needed to replay
// the logs on load.
func NewFilePersistence(dir string, levels service.LevelManager) (*FilePersistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create session dir %s: %w", dir, err)
	}
	return &FilePersistence{dir: dir, levels: levels}, nil
}

// Save writes the session's log, replacing any previous one
func (fp *FilePersistence) Save(session *service.Session) error {
	if session == nil {
		return errors.New("nil session")
	}

	body, err := json.MarshalIndent(newPersistedData(session), "", "  ")
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}

	// readers never see a half-written log
	path := fp.path(session.ID)
	tmp, err := os.CreateTemp(fp.dir, ".session-*")
	if err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

// Load replays a stored log into a live session
func (fp *FilePersistence) Load(id string) (*service.Session, error) {
	body, err := os.ReadFile(fp.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", id, err)
	}

	var data PersistedSessionData
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	if !strings.EqualFold(data.ID, id) {
		return nil, fmt.Errorf("session file %s holds session %q", fp.path(id), data.ID)
	}
	return restore(data, fp.levels)
}

// Delete removes the stored log, or returns ErrSessionNotFound
func (fp *FilePersistence) Delete(id string) error {
	err := os.Remove(fp.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// ListAll returns the stored session IDs in sorted order
func (fp *FilePersistence) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fp.dir)
	if err != nil {
		return nil, fmt.Errorf("list sessions in %s: %w", fp.dir, err)
	}

	ids := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != sessionFileExt {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, sessionFileExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// Exists reports whether a log file is stored for id
func (fp *FilePersistence) Exists(id string) bool {
	info, err := os.Stat(fp.path(id))
	return err == nil && info.Mode().IsRegular()
}

func (fp *FilePersistence) path(id string) string {
	return filepath.Join(fp.dir, strings.ToLower(id)+sessionFileExt)
}
