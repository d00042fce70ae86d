package engine

import (
	"testing"
)

func TestPushSingleRock(t *testing.T) {
	eng := startTestEngine(t, []string{"...."}, []string{"PR.."})

	play(t, eng, ChoiceRight)

	if got := cellOf(t, eng, EntityRock); got != 2 {
		t.Errorf("Expected rock pushed to 2, got %d", got)
	}
	if got := playerCell(t, eng); got != 0 {
		t.Errorf("Expected pusher to stay at 0, got %d", got)
	}

	play(t, eng, ChoiceRight)
	if got := playerCell(t, eng); got != 1 {
		t.Errorf("Expected player to follow to 1, got %d", got)
	}
}

func TestPushChainIsBlocked(t *testing.T) {
	eng := startTestEngine(t,
		[]string{".....#"},
		[]string{"PRRR.."},
	)

	play(t, eng, ChoiceRight)

	rocks := eng.EntitiesNamed(EntityRock)
	if len(rocks) != 3 {
		t.Fatalf("Expected 3 rocks, got %d", len(rocks))
	}
	for i, id := range rocks {
		if cell, _ := eng.IndexOf(id); cell != i+1 {
			t.Errorf("Expected rock %d to stay at %d, got %d", i, i+1, cell)
		}
	}
	if got := playerCell(t, eng); got != 0 {
		t.Errorf("Expected player to stay at 0, got %d", got)
	}
}

func TestPushBlockedByBoundary(t *testing.T) {
	eng := startTestEngine(t, []string{"..."}, []string{".PR"})

	play(t, eng, ChoiceRight)

	if got := cellOf(t, eng, EntityRock); got != 2 {
		t.Errorf("Expected rock to stay at the edge, got %d", got)
	}
}

func TestPushIntoWallIsDropped(t *testing.T) {
	eng := startTestEngine(t, []string{"..#"}, []string{"PR."})

	play(t, eng, ChoiceRight)

	if got := cellOf(t, eng, EntityRock); got != 1 {
		t.Errorf("Expected rock to stay at 1, got %d", got)
	}
}

func TestJammedPushAbortsRemainingPushes(t *testing.T) {
	tests := []struct {
		name      string
		tiles     []string
		wantFirst int
		wantOther int
	}{
		{
			name:      "first push jams",
			tiles:     []string{"..#.", "....", "...."},
			wantFirst: 1,
			wantOther: 5,
		},
		{
			name:      "no jam",
			tiles:     []string{"....", "....", "...."},
			wantFirst: 2,
			wantOther: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := startTestEngine(t, tt.tiles, []string{
				"MR..",
				"MR..",
				"P...",
			})

			play(t, eng, ChoiceRight)

			rocks := eng.EntitiesNamed(EntityRock)
			first, _ := eng.IndexOf(rocks[0])
			other, _ := eng.IndexOf(rocks[1])
			if first != tt.wantFirst {
				t.Errorf("Expected first rock at %d, got %d", tt.wantFirst, first)
			}
			if other != tt.wantOther {
				t.Errorf("Expected second rock at %d, got %d", tt.wantOther, other)
			}
		})
	}
}

func TestPushedRockCrushesEnemy(t *testing.T) {
	eng := startTestEngine(t, []string{"...."}, []string{"PRE."})

	play(t, eng, ChoiceRight)

	if got := cellOf(t, eng, EntityRock); got != 2 {
		t.Errorf("Expected rock at 2, got %d", got)
	}
	if ids := eng.EntitiesNamed(EntityLazyEye); len(ids) != 0 {
		t.Error("Expected lazy eye to die under the rock")
	}
}

func TestRockPushedIntoHoleFalls(t *testing.T) {
	eng := startTestEngine(t, []string{".. ."}, []string{"PR.."})

	play(t, eng, ChoiceRight)

	if ids := eng.EntitiesNamed(EntityRock); len(ids) != 0 {
		t.Error("Expected rock to fall")
	}
	if eng.TileAt(2).Name() != TileEmpty {
		t.Errorf("Expected hole to remain, got %s", eng.TileAt(2).Name())
	}
}

func TestEnemiesCollide(t *testing.T) {
	// two leeches walk into the same cell
	eng := startTestEngine(t,
		[]string{".....", "....."},
		[]string{"L.l..", "P...."},
	)

	play(t, eng, ChoiceDown)

	if ids := eng.EntitiesNamed(EntityLeech); len(ids) != 0 {
		t.Errorf("Expected both leeches to die, %d left", len(ids))
	}
}
