package engine

// Grid returns the board geometry
func (e *Engine) Grid() Grid { return e.grid }

// Width returns the board width
func (e *Engine) Width() int { return e.grid.Width }

// Height returns the board height
func (e *Engine) Height() int { return e.grid.Height }

// TileAt returns the tile at cell
func (e *Engine) TileAt(cell int) Tile { return e.world.tiles[cell] }

// EntitiesAt returns a copy of the IDs stacked on cell, oldest first
func (e *Engine) EntitiesAt(cell int) []ID {
	return append([]ID(nil), e.world.cells[cell]...)
}

// IndexOf returns the cell holding id. Managers and dead entities have none.
func (e *Engine) IndexOf(id ID) (int, bool) {
	cell, ok := e.world.where[id]
	return cell, ok
}

// Entity resolves a live entity by ID, or nil
func (e *Engine) Entity(id ID) Entity { return e.world.arena[id] }

// Alive reports whether id is still in the world
func (e *Engine) Alive(id ID) bool {
	_, ok := e.world.arena[id]
	return ok
}

// EntitiesNamed returns the live entities with the given name in
// creation order
func (e *Engine) EntitiesNamed(name string) []ID {
	return append([]ID(nil), e.world.byName[name]...)
}

// TilesNamed returns the cells holding a tile with the given name in
// ascending order
func (e *Engine) TilesNamed(name string) []int {
	return append([]int(nil), e.world.tileCells[name]...)
}

// Entities returns every board entity in cell order
func (e *Engine) Entities() []ID { return e.world.boardEntities() }

// Managers returns the live managers in schedule order
func (e *Engine) Managers() []ID {
	return append([]ID(nil), e.world.managers...)
}

// Manager returns the live manager with the given name, or nil
func (e *Engine) Manager(name string) Entity {
	for _, id := range e.world.managers {
		if ent := e.world.arena[id]; ent != nil && ent.Name() == name {
			return ent
		}
	}
	return nil
}

// Player returns the player. It stays valid after the player dies.
func (e *Engine) Player() *Player { return e.player }

// PlayerID returns the player's ID
func (e *Engine) PlayerID() ID { return e.playerID }

// HasItem reports whether a pickup tile with the given name is on the board
func (e *Engine) HasItem(name string) bool {
	return len(e.world.tileCells[name]) > 0
}

// Started reports whether Start has run
func (e *Engine) Started() bool { return e.started }

// Ended reports whether the level is over, won or lost
func (e *Engine) Ended() bool { return e.ended }

// Outcome is Playing until the level ends
func (e *Engine) Outcome() Outcome { return e.outcome }

// LastCancelled reports whether the most recent Play was cancelled
func (e *Engine) LastCancelled() bool { return e.cancelled }

// Turns returns the number of completed (not cancelled) turns
func (e *Engine) Turns() int { return e.turns }

// Steps returns the number of directional turns the player took
func (e *Engine) Steps() int { return e.player.Steps() }

// Voids returns the number of tiles the player picked up or placed
func (e *Engine) Voids() int { return e.player.Voids() }

// StairsClosed reports whether the exit is closed. Without a stairs
// manager the exit never opens.
func (e *Engine) StairsClosed() bool {
	m, ok := e.Manager(ManagerStairs).(*StairsManager)
	if !ok {
		return true
	}
	return m.Closed()
}

// WatcherAlert returns the watcher manager's void count and the number of
// watchers on the board
func (e *Engine) WatcherAlert() (voids, watchers int) {
	watchers = len(e.world.byName[EntityWatcher])
	if m, ok := e.Manager(ManagerWatcher).(*WatcherManager); ok {
		voids = m.Voids()
	}
	return voids, watchers
}
