package engine

import (
	"strconv"
	"strings"
)

// EntityView is the read-only view of one entity
type EntityView struct {
	ID       ID        `json:"id"`
	Name     string    `json:"name"`
	Kind     Kind      `json:"kind"`
	Facing   Direction `json:"facing"`
	Pushable bool      `json:"pushable"`
}

// CellView is the read-only view of one cell
type CellView struct {
	Tile     string       `json:"tile"`
	Entities []EntityView `json:"entities,omitempty"`
}

// Snapshot is a serialisable copy of the observable engine state
type Snapshot struct {
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	Cells          []CellView `json:"cells"`
	Turns          int        `json:"turns"`
	Steps          int        `json:"steps"`
	Voids          int        `json:"voids"`
	WingsUsed      int        `json:"wings_used"`
	Wings          int        `json:"wings"`
	Stock          string     `json:"stock,omitempty"`
	HasRod         bool       `json:"has_rod"`
	HasSword       bool       `json:"has_sword"`
	Ended          bool       `json:"ended"`
	Outcome        Outcome    `json:"outcome"`
	StairsClosed   bool       `json:"stairs_closed"`
	WatcherVoids   int        `json:"watcher_voids"`
	Watchers       int        `json:"watchers"`
	PlayerAlive    bool       `json:"player_alive"`
	PlayerPosition Position   `json:"player_position"`
	PlayerFacing   Direction  `json:"player_facing"`
}

// Cell returns the view of the cell at (row, col)
func (s Snapshot) Cell(row, col int) CellView {
	return s.Cells[row*s.Width+col]
}

// WatcherAlert reports whether the watchers have noticed the player
func (s Snapshot) WatcherAlert() bool {
	return s.Watchers > 0 && s.WatcherVoids > 0
}

// Snapshot captures the current state
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Width:        e.grid.Width,
		Height:       e.grid.Height,
		Cells:        make([]CellView, e.grid.Size()),
		Turns:        e.turns,
		Steps:        e.player.Steps(),
		Voids:        e.player.Voids(),
		WingsUsed:    e.player.WingsUsed(),
		Wings:        len(e.world.tileCells[TileWings]),
		HasRod:       e.HasItem(TileRod),
		HasSword:     e.HasItem(TileSword),
		Ended:        e.ended,
		Outcome:      e.outcome,
		StairsClosed: e.StairsClosed(),
		PlayerFacing: e.player.Facing(),
	}
	if stock := e.player.Stock(); stock != nil {
		s.Stock = stock.Name()
	}
	s.WatcherVoids, s.Watchers = e.WatcherAlert()

	if cell, ok := e.world.where[e.playerID]; ok {
		s.PlayerAlive = true
		s.PlayerPosition = e.grid.ToPosition(cell)
	}

	for cell, tile := range e.world.tiles {
		view := CellView{Tile: tile.Name()}
		for _, id := range e.world.cells[cell] {
			ent := e.world.arena[id]
			view.Entities = append(view.Entities, EntityView{
				ID:       id,
				Name:     ent.Name(),
				Kind:     ent.Kind(),
				Facing:   ent.Facing(),
				Pushable: ent.IsPushable(),
			})
		}
		s.Cells[cell] = view
	}

	return s
}

// Fingerprint encodes every piece of state that influences future turns,
// including the hidden state of stateful entities, tiles and managers.
// Counters (turns, steps, voids) are left out, so two positions reached
// by different paths compare equal.
func (e *Engine) Fingerprint() string {
	var b strings.Builder

	for cell, tile := range e.world.tiles {
		b.WriteString(tile.Name())
		if k, ok := tile.(StateKeyer); ok {
			b.WriteByte('+')
			b.WriteString(k.StateKey())
		}
		for _, id := range e.world.cells[cell] {
			writeEntityKey(&b, id, e.world.arena[id])
		}
		b.WriteByte(';')
	}

	b.WriteByte('|')
	for _, id := range e.world.managers {
		writeEntityKey(&b, id, e.world.arena[id])
	}

	b.WriteByte('|')
	b.WriteString(string(e.outcome))
	return b.String()
}

func writeEntityKey(b *strings.Builder, id ID, ent Entity) {
	b.WriteByte(',')
	b.WriteString(itoa(int(id)))
	b.WriteByte(':')
	b.WriteString(ent.Name())
	b.WriteByte(':')
	b.WriteString(string(ent.Facing()))
	if k, ok := ent.(StateKeyer); ok {
		b.WriteByte(':')
		b.WriteString(k.StateKey())
	}
}

func (t *CopyTile) StateKey() string {
	entered := "0"
	if t.playerEntered {
		entered = "1"
	}
	return entered + "/" + itoa(int(t.lastShade))
}

func itoa(n int) string { return strconv.Itoa(n) }
