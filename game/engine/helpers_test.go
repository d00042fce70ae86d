package engine

import (
	"testing"
)

// Layout legend for tests.
//
// Tiles:    '.' normal  '#' wall  ' ' empty  'E' stairs  'S' switch
//           'G' glass  'g' damaged glass  'B' bomb  'X' explo  'C' copy
//           'W' white  'r' rod  's' sword  'w' wings
// Entities: '.' none  'P' player  'R' rock  'l'/'L' leech left/right
//           'u'/'d' maggot up/down  'S' smile  'B' beaver  'E' lazy eye
//           'M' mimic  'V' mimic mirrored left-right  'H' mimic mirrored
//           up-down  'O' lover  'o' slower  'G' greeder  'K' killer
//           'T' watcher  'A' atoner

func testTile(t *testing.T, c rune) Tile {
	t.Helper()
	switch c {
	case '.':
		return NewNormal()
	case '#':
		return NewWall()
	case ' ':
		return NewEmpty()
	case 'E':
		return NewStairs()
	case 'S':
		return NewSwitch()
	case 'G':
		return NewGlass()
	case 'g':
		return NewDamagedGlass()
	case 'B':
		return NewBomb()
	case 'X':
		return NewExplo()
	case 'C':
		return NewCopy()
	case 'W':
		return NewWhite()
	case 'r':
		return NewRod()
	case 's':
		return NewSword()
	case 'w':
		return NewWings()
	}
	t.Fatalf("unknown tile code %q", c)
	return nil
}

func testEntity(t *testing.T, c rune) Entity {
	t.Helper()
	switch c {
	case '.':
		return nil
	case 'P':
		return NewPlayer()
	case 'R':
		return NewRock()
	case 'l':
		return NewLeech(false)
	case 'L':
		return NewLeech(true)
	case 'u':
		return NewMaggot(false)
	case 'd':
		return NewMaggot(true)
	case 'S':
		return NewSmile()
	case 'B':
		return NewBeaver()
	case 'E':
		return NewLazyEye()
	case 'M':
		return NewMimic(false, false)
	case 'V':
		return NewMimic(true, false)
	case 'H':
		return NewMimic(false, true)
	case 'O':
		return NewLover()
	case 'o':
		return NewSlower()
	case 'G':
		return NewGreeder()
	case 'K':
		return NewKiller()
	case 'T':
		return NewWatcher()
	case 'A':
		return NewAtoner()
	}
	t.Fatalf("unknown entity code %q", c)
	return nil
}

// newTestEngine builds an engine from row layouts without starting it
func newTestEngine(t *testing.T, tiles, entities []string, managers ...Entity) *Engine {
	t.Helper()
	if len(tiles) != len(entities) {
		t.Fatalf("layout mismatch: %d tile rows, %d entity rows", len(tiles), len(entities))
	}

	width := len(tiles[0])
	var ts []Tile
	var es []Entity
	for r := range tiles {
		if len(tiles[r]) != width || len(entities[r]) != width {
			t.Fatalf("row %d has the wrong width", r)
		}
		for _, c := range tiles[r] {
			ts = append(ts, testTile(t, c))
		}
		for _, c := range entities[r] {
			es = append(es, testEntity(t, c))
		}
	}

	if managers == nil {
		managers = DefaultManagers()
	}

	eng, err := New(width, ts, es, managers)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return eng
}

// startTestEngine builds and starts an engine
func startTestEngine(t *testing.T, tiles, entities []string, managers ...Entity) *Engine {
	t.Helper()
	eng := newTestEngine(t, tiles, entities, managers...)
	if err := eng.Start(); err != nil {
		t.Fatalf("Failed to start engine: %v", err)
	}
	return eng
}

func play(t *testing.T, eng *Engine, choices ...Choice) {
	t.Helper()
	for _, c := range choices {
		if _, err := eng.Play(c); err != nil {
			t.Fatalf("Play(%s) failed: %v", c, err)
		}
	}
}

// cellOf returns the cell of the first live entity with the given name
func cellOf(t *testing.T, eng *Engine, name string) int {
	t.Helper()
	ids := eng.EntitiesNamed(name)
	if len(ids) == 0 {
		t.Fatalf("no live %s", name)
	}
	cell, ok := eng.IndexOf(ids[0])
	if !ok {
		t.Fatalf("%s is not on the board", name)
	}
	return cell
}

func playerCell(t *testing.T, eng *Engine) int {
	t.Helper()
	cell, ok := eng.IndexOf(eng.PlayerID())
	if !ok {
		t.Fatal("player is not on the board")
	}
	return cell
}

func at(eng *Engine, row, col int) int {
	return eng.Grid().ToIndex(Position{Row: row, Col: col})
}
