package engine

// resolve applies what one priority group requested: pending moves, a
// collision pass, aggregated pushes, a second collision pass, then the
// stay reactions for entries that did not change cell.
func (e *Engine) resolve(group []scheduleEntry, recorded []int) {
	moves := e.moves
	e.moves = nil
	for _, m := range moves {
		from, ok := e.world.where[m.id]
		if !ok || from == m.to {
			continue
		}
		e.moveEntity(m.id, m.to)
	}

	e.collide()

	pushes := e.pushes
	e.pushes = nil
	e.push(pushes)

	e.collide()

	for k, entry := range group {
		cell := recorded[k]
		if cell < 0 {
			continue
		}
		if now, ok := e.world.where[entry.id]; !ok || now != cell {
			continue
		}
		e.world.tiles[cell].OnStay(TileEvent{Engine: e, Cell: cell, Entity: entry.id})
	}
}

// collide calls OnCollision for every resident of every stacked cell
func (e *Engine) collide() {
	for cell := range e.world.cells {
		if len(e.world.cells[cell]) < 2 {
			continue
		}
		stack := append([]ID(nil), e.world.cells[cell]...)
		for _, id := range stack {
			ent := e.world.arena[id]
			if ent == nil {
				continue
			}
			if at := e.world.where[id]; at != cell {
				continue
			}
			ent.OnCollision(e, id, stack)
		}
	}
}

type aggregatedPush struct {
	id   ID
	dirs []Direction
}

// push applies pushes, merging every request on the same entity into a
// single net offset. A destination on an obstacle tile jams the line and
// drops every push after it.
func (e *Engine) push(pushes []pendingPush) {
	var aggregated []aggregatedPush
	seen := make(map[ID]int)
	for _, p := range pushes {
		if i, ok := seen[p.id]; ok {
			aggregated[i].dirs = append(aggregated[i].dirs, p.dir)
			continue
		}
		seen[p.id] = len(aggregated)
		aggregated = append(aggregated, aggregatedPush{id: p.id, dirs: []Direction{p.dir}})
	}

	for _, a := range aggregated {
		ent := e.world.arena[a.id]
		if ent == nil || !ent.IsPushable() {
			continue
		}
		index, ok := e.world.where[a.id]
		if !ok {
			continue
		}

		pos := e.grid.ToPosition(index)
		for _, d := range a.dirs {
			dr, dc := Delta(d)
			pos.Row += dr
			pos.Col += dc
		}
		if !e.grid.Contains(pos) {
			continue
		}
		dest := e.grid.ToIndex(pos)
		if dest == index {
			continue
		}

		if e.hasObstacleEntity(dest) {
			continue
		}
		if e.world.tiles[dest].IsObstacle() {
			e.log.WithField("cell", dest).Debug("push line jammed")
			return
		}

		e.moveEntity(a.id, dest)
		if e.world.arena[a.id] != nil {
			ent.OnPush(e, a.id)
		}
	}
}

func (e *Engine) hasObstacleEntity(cell int) bool {
	for _, id := range e.world.cells[cell] {
		if ent := e.world.arena[id]; ent != nil && ent.IsObstacle() {
			return true
		}
	}
	return false
}
