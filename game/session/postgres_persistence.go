package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/wricardo/voidgrid/game/service"
)

// PostgresPersistence implements SessionPersistence on a PostgreSQL table
type PostgresPersistence struct {
	db     *sql.DB
	levels service.LevelManager
}

// NewPostgresPersistence connects, pings and creates the sessions table
func NewPostgresPersistence(connectionString string, levels service.LevelManager) (*PostgresPersistence, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	p := &PostgresPersistence{db: db, levels: levels}
	if err := p.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return p, nil
}

func (p *PostgresPersistence) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		level_id TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		last_accessed_at TIMESTAMP WITH TIME ZONE NOT NULL,
		choices JSONB NOT NULL DEFAULT '[]'
	);
	`

	_, err := p.db.Exec(schema)
	return err
}

// Close releases the database handle
func (p *PostgresPersistence) Close() error {
	return p.db.Close()
}

// Save upserts the session row
func (p *PostgresPersistence) Save(session *service.Session) error {
	if session == nil {
		return fmt.Errorf("session cannot be nil")
	}

	data := newPersistedData(session)
	choicesJSON, err := json.Marshal(data.Choices)
	if err != nil {
		return fmt.Errorf("failed to marshal choices: %w", err)
	}

	query := `
	INSERT INTO sessions (id, level_id, created_at, last_accessed_at, choices)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id)
	DO UPDATE SET
		level_id = $2,
		last_accessed_at = $4,
		choices = $5
	`

	if _, err := p.db.Exec(query, strings.ToLower(data.ID), data.LevelID, data.CreatedAt, data.LastAccessedAt, string(choicesJSON)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load reads the session row and replays its choices
func (p *PostgresPersistence) Load(id string) (*service.Session, error) {
	query := `SELECT id, level_id, created_at, last_accessed_at, choices FROM sessions WHERE id = $1`

	var data PersistedSessionData
	var choicesJSON []byte
	err := p.db.QueryRow(query, strings.ToLower(id)).Scan(&data.ID, &data.LevelID, &data.CreatedAt, &data.LastAccessedAt, &choicesJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if err := json.Unmarshal(choicesJSON, &data.Choices); err != nil {
		return nil, fmt.Errorf("failed to unmarshal choices: %w", err)
	}

	return restore(data, p.levels)
}

// Delete removes the session row
func (p *PostgresPersistence) Delete(id string) error {
	res, err := p.db.Exec(`DELETE FROM sessions WHERE id = $1`, strings.ToLower(id))
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns all persisted session IDs
func (p *PostgresPersistence) ListAll() ([]string, error) {
	rows, err := p.db.Query(`SELECT id FROM sessions ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks if a session row exists
func (p *PostgresPersistence) Exists(id string) bool {
	var exists bool
	err := p.db.QueryRow(`SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, strings.ToLower(id)).Scan(&exists)
	return err == nil && exists
}
