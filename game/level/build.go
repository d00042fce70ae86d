package level

import (
	"fmt"
	"slices"
	"strings"

	"github.com/wricardo/voidgrid/game/engine"
)

// Build validates the level and constructs an engine that has not been
// started yet
func Build(l *Level, opts ...engine.Option) (*engine.Engine, error) {
	if err := Validate(l); err != nil {
		return nil, err
	}

	tiles := make([]engine.Tile, 0, l.Width*l.Height())
	for _, row := range l.TileGrid() {
		for _, code := range row {
			tc, _ := LookupTile(code)
			tiles = append(tiles, tc.New())
		}
	}

	entities := make([]engine.Entity, 0, len(tiles))
	for _, row := range l.EntityGrid() {
		for _, code := range row {
			if code == NoEntity {
				entities = append(entities, nil)
				continue
			}
			ec, _ := LookupEntity(code)
			entities = append(entities, ec.New())
		}
	}

	names := l.ManagerNames()
	managers := make([]engine.Entity, 0, len(names))
	for _, name := range names {
		mc, _ := LookupManager(name)
		managers = append(managers, mc.New())
	}

	eng, err := engine.New(l.Width, tiles, entities, managers, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build level %q: %w", l.Name, err)
	}
	return eng, nil
}

// Start builds the level and runs the start phase
func Start(l *Level, opts ...engine.Option) (*engine.Engine, error) {
	eng, err := Build(l, opts...)
	if err != nil {
		return nil, err
	}
	if err := eng.Start(); err != nil {
		return nil, err
	}
	return eng, nil
}

// Encode writes the current board of an engine back into a level.
// Only the first encodable entity of each cell is kept; shades and the
// internal state of managers have no code and are dropped.
func Encode(eng *engine.Engine, name, description string) (*Level, error) {
	snap := eng.Snapshot()
	tiles, entities, err := Rows(snap)
	if err != nil {
		return nil, err
	}
	l := &Level{
		Name:        name,
		Description: description,
		Width:       snap.Width,
		Tiles:       tiles,
		Entities:    entities,
	}

	l.Managers = []string{}
	for _, id := range eng.Managers() {
		if name, ok := managerNameFor(eng.Entity(id).Name()); ok {
			l.Managers = append(l.Managers, name)
		}
	}

	if slices.Equal(l.Managers, DefaultManagers()) {
		l.Managers = nil
	}

	if err := Validate(l); err != nil {
		return nil, err
	}
	return l, nil
}

// Rows renders a snapshot as level tile and entity rows
func Rows(snap engine.Snapshot) (tiles, entities []string, err error) {
	for r := 0; r < snap.Height; r++ {
		tileRow := make([]string, snap.Width)
		entityRow := make([]string, snap.Width)
		for c := 0; c < snap.Width; c++ {
			cell := snap.Cell(r, c)
			code, ok := tileCodeFor(cell.Tile)
			if !ok {
				return nil, nil, fmt.Errorf("%w: tile %q has no code", ErrUnknownTileCode, cell.Tile)
			}
			tileRow[c] = code

			entityRow[c] = NoEntity
			for _, v := range cell.Entities {
				if code, ok := entityCodeFor(v.Name, v.Facing); ok {
					entityRow[c] = code
					break
				}
			}
		}
		tiles = append(tiles, strings.Join(tileRow, ","))
		entities = append(entities, strings.Join(entityRow, ","))
	}
	return tiles, entities, nil
}
