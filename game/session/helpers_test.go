package session

import (
	"path/filepath"
	"testing"

	"github.com/wricardo/voidgrid/game/config"
	"github.com/wricardo/voidgrid/game/level"
)

func corridorLevel() *level.Level {
	return &level.Level{
		Name:     "Corridor",
		Width:    5,
		Tiles:    []string{".,.,.,.,E", "W,W,W,W,W"},
		Entities: []string{"P,R,.,.,.", ".,.,.,.,."},
	}
}

// newTestLevels writes the corridor level to a temporary level directory
func newTestLevels(t *testing.T) *config.Manager {
	t.Helper()
	dir := t.TempDir()
	if err := level.Save(filepath.Join(dir, "corridor.json"), corridorLevel()); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}
	levels, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create level manager: %v", err)
	}
	return levels
}
