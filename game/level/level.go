package level

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidLevel      = errors.New("invalid level")
	ErrUnknownTileCode   = errors.New("unknown tile code")
	ErrUnknownEntityCode = errors.New("unknown entity code")
	ErrUnknownManager    = errors.New("unknown manager")
)

// Level is the on-disk description of a puzzle board.
// Rows are comma separated codes, one string per board row.
type Level struct {
	Name        string   `json:"name" yaml:"name" jsonschema:"required,minLength=1,description=Display name of the level"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" jsonschema:"description=Short hint shown to the player"`
	Width       int      `json:"width" yaml:"width" jsonschema:"required,minimum=1,description=Number of cells per row"`
	Tiles       []string `json:"tiles" yaml:"tiles" jsonschema:"required,minItems=1,description=Tile code rows separated by commas"`
	Entities    []string `json:"entities" yaml:"entities" jsonschema:"required,minItems=1,description=Entity code rows separated by commas; . marks an empty cell"`
	// Managers is nil for the default set. An explicit empty list runs no managers.
	Managers []string `json:"managers" yaml:"managers,omitempty" jsonschema:"description=Managers to run: killer stairs watcher copy"`
}

// Height returns the number of rows
func (l *Level) Height() int {
	return len(l.Tiles)
}

// ManagerNames returns the managers the level runs
func (l *Level) ManagerNames() []string {
	if l.Managers == nil {
		return DefaultManagers()
	}
	return l.Managers
}

// SplitRow splits a row into its codes. Codes keep inner spacing so that
// a lone space still reads as a cell.
func SplitRow(row string) []string {
	return strings.Split(row, ",")
}

// TileGrid returns the tile codes as rows of cells, holes normalized
func (l *Level) TileGrid() [][]string {
	grid := make([][]string, len(l.Tiles))
	for r, row := range l.Tiles {
		codes := SplitRow(row)
		for c := range codes {
			codes[c] = normalizeTileCode(codes[c])
		}
		grid[r] = codes
	}
	return grid
}

// EntityGrid returns the entity codes as rows of cells
func (l *Level) EntityGrid() [][]string {
	grid := make([][]string, len(l.Entities))
	for r, row := range l.Entities {
		codes := SplitRow(row)
		for c := range codes {
			codes[c] = strings.TrimSpace(codes[c])
		}
		grid[r] = codes
	}
	return grid
}

// Validate checks that a level is complete and consistent
func Validate(l *Level) error {
	if l == nil {
		return fmt.Errorf("%w: level is nil", ErrInvalidLevel)
	}
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLevel)
	}
	if l.Width <= 0 {
		return fmt.Errorf("%w: width must be positive, got %d", ErrInvalidLevel, l.Width)
	}
	if len(l.Tiles) == 0 {
		return fmt.Errorf("%w: tiles must have at least one row", ErrInvalidLevel)
	}
	if len(l.Entities) != len(l.Tiles) {
		return fmt.Errorf("%w: %d tile rows but %d entity rows", ErrInvalidLevel, len(l.Tiles), len(l.Entities))
	}

	for r, row := range l.TileGrid() {
		if len(row) != l.Width {
			return fmt.Errorf("%w: tiles row %d has %d cells, expected %d", ErrInvalidLevel, r+1, len(row), l.Width)
		}
		for c, code := range row {
			if _, ok := LookupTile(code); !ok {
				return fmt.Errorf("%w: tiles row %d, col %d: %w %q", ErrInvalidLevel, r+1, c+1, ErrUnknownTileCode, code)
			}
		}
	}

	players := 0
	for r, row := range l.EntityGrid() {
		if len(row) != l.Width {
			return fmt.Errorf("%w: entities row %d has %d cells, expected %d", ErrInvalidLevel, r+1, len(row), l.Width)
		}
		for c, code := range row {
			if code == NoEntity {
				continue
			}
			ec, ok := LookupEntity(code)
			if !ok {
				return fmt.Errorf("%w: entities row %d, col %d: %w %q", ErrInvalidLevel, r+1, c+1, ErrUnknownEntityCode, code)
			}
			if ec.Code == "P" {
				players++
			}
		}
	}
	if players != 1 {
		return fmt.Errorf("%w: level must have exactly one player, found %d", ErrInvalidLevel, players)
	}

	seen := make(map[string]bool)
	for _, name := range l.Managers {
		mc, ok := LookupManager(name)
		if !ok {
			return fmt.Errorf("%w: %w %q", ErrInvalidLevel, ErrUnknownManager, name)
		}
		if seen[mc.Name] {
			return fmt.Errorf("%w: manager %q listed twice", ErrInvalidLevel, mc.Name)
		}
		seen[mc.Name] = true
	}

	return nil
}
