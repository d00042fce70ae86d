package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const corridorYAML = `name: Corridor
width: 5
tiles:
  - ".,.,.,.,E"
entities:
  - "P,.,.,.,."
`

func writeLevel(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write level: %v", err)
	}
	return path
}

func contains(lines []string, substr string) bool {
	for _, line := range lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestValidateLevel(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		content    string
		solveDepth int
		wantValid  bool
		wantError  string
		wantNote   string
	}{
		{
			name:      "valid yaml",
			file:      "corridor.yaml",
			content:   corridorYAML,
			wantValid: true,
			wantNote:  "1/1 stairs reachable",
		},
		{
			name:       "valid and solvable",
			file:       "corridor.yml",
			content:    corridorYAML,
			solveDepth: 10,
			wantValid:  true,
			wantNote:   "Solvable in 4 turns",
		},
		{
			name:       "too shallow for the solver",
			file:       "corridor.yaml",
			content:    corridorYAML,
			solveDepth: 2,
			wantError:  "no solution",
		},
		{
			name:      "invalid json",
			file:      "broken.json",
			content:   `{"name": "test", invalid json}`,
			wantError: "failed to parse level JSON",
		},
		{
			name:      "no player",
			file:      "empty.json",
			content:   `{"name": "Empty", "width": 2, "tiles": [".,E"], "entities": [".,."]}`,
			wantError: "invalid level",
		},
		{
			name:      "no stairs",
			file:      "closed.json",
			content:   `{"name": "Closed", "width": 2, "tiles": [".,."], "entities": ["P,."]}`,
			wantError: "no stairs",
		},
		{
			name:      "stairs behind a wall",
			file:      "walled.json",
			content:   `{"name": "Walled", "width": 3, "tiles": [".,W,E"], "entities": ["P,.,."]}`,
			wantValid: true,
			wantNote:  "No stairs reachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeLevel(t, t.TempDir(), tt.file, tt.content)

			result := validateLevel(context.Background(), path, tt.solveDepth)

			if result.File != tt.file {
				t.Errorf("Expected file name %s, got %s", tt.file, result.File)
			}
			if result.Valid != tt.wantValid {
				t.Fatalf("Expected valid=%v, got %v (errors: %v)", tt.wantValid, result.Valid, result.Errors)
			}
			if tt.wantError != "" && !contains(result.Errors, tt.wantError) {
				t.Errorf("Expected an error containing %q, got %v", tt.wantError, result.Errors)
			}
			if tt.wantNote != "" && !contains(result.Notes, tt.wantNote) {
				t.Errorf("Expected a note containing %q, got %v", tt.wantNote, result.Notes)
			}
		})
	}
}

func TestValidateLevel_MissingFile(t *testing.T) {
	result := validateLevel(context.Background(), "/non/existent/level.json", 0)
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !contains(result.Errors, "failed to read level file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestLevelFiles(t *testing.T) {
	dir := t.TempDir()
	writeLevel(t, dir, "b.yaml", corridorYAML)
	writeLevel(t, dir, "a.json", "{}")
	writeLevel(t, dir, "notes.txt", "ignored")
	if err := os.Mkdir(filepath.Join(dir, "sub.json"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := levelFiles(dir)
	if err != nil {
		t.Fatalf("levelFiles failed: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("Expected 2 level files, got %v", files)
	}
	if filepath.Base(files[0]) != "a.json" || filepath.Base(files[1]) != "b.yaml" {
		t.Errorf("Expected sorted files, got %v", files)
	}
}

func TestLevelFiles_MissingDir(t *testing.T) {
	if _, err := levelFiles("/non/existent/dir"); err == nil {
		t.Error("Expected error for missing directory")
	}
}
