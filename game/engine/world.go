package engine

import "sort"

// world is the authoritative board state plus its lookup indices. It
// performs pure bookkeeping; reactions are fired by the Engine methods
// wrapping it.
type world struct {
	tiles []Tile
	cells [][]ID

	where  map[ID]int
	arena  map[ID]Entity
	byName map[string][]ID

	tileCells map[string][]int
	managers  []ID
}

func newWorld(tiles []Tile) *world {
	w := &world{
		tiles:     make([]Tile, len(tiles)),
		cells:     make([][]ID, len(tiles)),
		where:     make(map[ID]int),
		arena:     make(map[ID]Entity),
		byName:    make(map[string][]ID),
		tileCells: make(map[string][]int),
	}
	copy(w.tiles, tiles)
	for cell, tile := range w.tiles {
		name := tile.Name()
		w.tileCells[name] = append(w.tileCells[name], cell)
	}
	return w
}

// place registers a board entity at cell
func (w *world) place(id ID, ent Entity, cell int) {
	w.arena[id] = ent
	w.where[id] = cell
	w.cells[cell] = append(w.cells[cell], id)
	w.byName[ent.Name()] = append(w.byName[ent.Name()], id)
}

// register adds a boardless manager
func (w *world) register(id ID, ent Entity) {
	w.arena[id] = ent
	w.managers = append(w.managers, id)
	w.byName[ent.Name()] = append(w.byName[ent.Name()], id)
}

// relocate moves id to cell and returns the cell it left
func (w *world) relocate(id ID, to int) int {
	from := w.where[id]
	w.cells[from] = without(w.cells[from], id)
	w.cells[to] = append(w.cells[to], id)
	w.where[id] = to
	return from
}

// remove drops id from every index. It returns the vacated cell, if any.
func (w *world) remove(id ID) (Entity, int, bool) {
	ent, ok := w.arena[id]
	if !ok {
		return nil, -1, false
	}
	delete(w.arena, id)

	name := ent.Name()
	w.byName[name] = without(w.byName[name], id)
	if len(w.byName[name]) == 0 {
		delete(w.byName, name)
	}

	cell, onBoard := w.where[id]
	if !onBoard {
		w.managers = without(w.managers, id)
		return ent, -1, true
	}
	delete(w.where, id)
	w.cells[cell] = without(w.cells[cell], id)
	return ent, cell, true
}

// replaceTile swaps the tile at cell and returns the previous one
func (w *world) replaceTile(tile Tile, cell int) Tile {
	old := w.tiles[cell]
	w.tiles[cell] = tile

	oldName := old.Name()
	w.tileCells[oldName] = withoutCell(w.tileCells[oldName], cell)
	if len(w.tileCells[oldName]) == 0 {
		delete(w.tileCells, oldName)
	}

	name := tile.Name()
	cells := w.tileCells[name]
	i := sort.SearchInts(cells, cell)
	cells = append(cells, 0)
	copy(cells[i+1:], cells[i:])
	cells[i] = cell
	w.tileCells[name] = cells

	return old
}

// boardEntities returns every board entity in cell order
func (w *world) boardEntities() []ID {
	var ids []ID
	for _, stack := range w.cells {
		ids = append(ids, stack...)
	}
	return ids
}

func without(ids []ID, id ID) []ID {
	out := ids[:0:0]
	for _, other := range ids {
		if other != id {
			out = append(out, other)
		}
	}
	return out
}

func withoutCell(cells []int, cell int) []int {
	out := cells[:0:0]
	for _, other := range cells {
		if other != cell {
			out = append(out, other)
		}
	}
	return out
}
