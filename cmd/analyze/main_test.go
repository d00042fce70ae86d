package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/solver"
)

const switchRoom = `{
	"name": "Switch room",
	"width": 5,
	"tiles": [
		"W,W,W,W,W",
		"W,.,S,E,W",
		"W,.,.,.,W",
		"W,.,.,.,W"
	],
	"entities": [
		".,.,.,.,.",
		".,P,.,.,.",
		".,.,R,.,.",
		".,.,.,.,."
	]
}`

func writeLevel(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}
	return path
}

func TestAnalyzeLevel(t *testing.T) {
	path := writeLevel(t, "switch.json", switchRoom)

	a, err := analyzeLevel(context.Background(), path, 0)
	if err != nil {
		t.Fatalf("analyzeLevel failed: %v", err)
	}

	if a.Name != "Switch room" {
		t.Errorf("Expected name 'Switch room', got '%s'", a.Name)
	}
	if a.Width != 5 || a.Height != 4 {
		t.Errorf("Expected 5x4 board, got %dx%d", a.Width, a.Height)
	}
	if a.Tiles[engine.TileWall] != 11 {
		t.Errorf("Expected 11 walls, got %d", a.Tiles[engine.TileWall])
	}
	if a.Switches != 1 || a.Stairs != 1 {
		t.Errorf("Expected 1 switch and 1 stairs, got %d and %d", a.Switches, a.Stairs)
	}
	if a.Entities[engine.EntityPlayer] != 1 || a.Entities[engine.EntityRock] != 1 {
		t.Errorf("Unexpected entity counts: %v", a.Entities)
	}
	if len(a.Managers) != 4 {
		t.Errorf("Expected the default managers, got %v", a.Managers)
	}
	if a.Solution != nil || a.SolveErr != nil {
		t.Error("Expected the solver to be skipped at depth 0")
	}
}

func TestAnalyzeLevel_Solver(t *testing.T) {
	path := writeLevel(t, "switch.json", switchRoom)

	tests := []struct {
		name    string
		depth   int
		wantErr error
	}{
		{name: "deep enough", depth: 20},
		{name: "too shallow", depth: 2, wantErr: solver.ErrNoSolution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := analyzeLevel(context.Background(), path, tt.depth)
			if err != nil {
				t.Fatalf("analyzeLevel failed: %v", err)
			}
			if tt.wantErr != nil {
				if !errors.Is(a.SolveErr, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, a.SolveErr)
				}
				return
			}
			if a.SolveErr != nil || a.Solution == nil {
				t.Fatalf("Expected a solution, got %v", a.SolveErr)
			}
			if len(a.Solution.Choices) == 0 {
				t.Error("Expected a non-empty solution")
			}
		})
	}
}

func TestAnalyzeLevel_InvalidFile(t *testing.T) {
	path := writeLevel(t, "broken.json", `{"name": "broken"}`)

	if _, err := analyzeLevel(context.Background(), path, 0); err == nil {
		t.Error("Expected error for invalid level")
	}
}

func TestCounts(t *testing.T) {
	got := counts(map[string]int{"wall": 3, "normal": 2, "bomb": 1})
	if want := "bomb=1 normal=2 wall=3"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestFormatChoices(t *testing.T) {
	got := formatChoices([]engine.Choice{engine.ChoiceUp, engine.ChoiceAction})
	if want := "Up,Action"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}
