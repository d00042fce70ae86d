package engine

import (
	"fmt"
	"io"
	"sort"

	"github.com/sirupsen/logrus"
)

// Engine owns the board and runs turns. It is not safe for concurrent
// use; callers serialize access.
type Engine struct {
	grid  Grid
	world *world
	log   *logrus.Entry

	nextID   ID
	player   *Player
	playerID ID

	moves  []pendingMove
	pushes []pendingPush

	started   bool
	ended     bool
	cancelled bool
	outcome   Outcome
	turns     int
}

type pendingMove struct {
	id ID
	to int
}

type pendingPush struct {
	id  ID
	dir Direction
}

type scheduleEntry struct {
	id       ID
	priority float64
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger routes engine debug output to l
func WithLogger(l *logrus.Entry) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func discardLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// New builds an engine from a row-major board. tiles and entities are
// parallel slices with one slot per cell; a nil entity means an empty
// cell. Board entities receive IDs in cell order, managers after them.
func New(width int, tiles []Tile, entities []Entity, managers []Entity, opts ...Option) (*Engine, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWidth, width)
	}
	if len(tiles) != len(entities) {
		return nil, fmt.Errorf("%w: %d tiles, %d entities", ErrLengthMismatch, len(tiles), len(entities))
	}
	if len(tiles)%width != 0 {
		return nil, fmt.Errorf("%w: %d cells with width %d", ErrNotRectangular, len(tiles), width)
	}
	for cell, tile := range tiles {
		if tile == nil {
			return nil, fmt.Errorf("%w: cell %d", ErrMissingTile, cell)
		}
	}

	var player *Player
	players := 0
	for _, ent := range entities {
		if ent == nil || ent.Kind() != KindPlayer {
			continue
		}
		players++
		if p, ok := ent.(*Player); ok {
			player = p
		}
	}
	if players != 1 || player == nil {
		return nil, fmt.Errorf("%w: found %d", ErrPlayerCount, players)
	}

	e := &Engine{
		grid:     Grid{Width: width, Height: len(tiles) / width},
		world:    newWorld(tiles),
		log:      discardLogger(),
		player:   player,
		playerID: NoID,
		outcome:  Playing,
	}
	for _, opt := range opts {
		opt(e)
	}

	for cell, ent := range entities {
		if ent == nil {
			continue
		}
		id := e.generateID()
		e.world.place(id, ent, cell)
		if ent == Entity(player) {
			e.playerID = id
		}
	}
	for _, m := range managers {
		if m == nil {
			continue
		}
		e.world.register(e.generateID(), m)
	}

	return e, nil
}

func (e *Engine) generateID() ID {
	id := e.nextID
	e.nextID++
	return id
}

// Start fires the initial enter reactions, runs a collision pass, then
// calls OnStart on every board entity followed by every manager.
func (e *Engine) Start() error {
	if e.started {
		return ErrAlreadyStarted
	}
	e.started = true

	for cell := range e.world.cells {
		for _, id := range append([]ID(nil), e.world.cells[cell]...) {
			if at, ok := e.world.where[id]; ok && at == cell {
				e.world.tiles[cell].OnEnter(TileEvent{Engine: e, Cell: cell, Entity: id})
			}
		}
	}

	e.collide()

	for _, id := range e.world.boardEntities() {
		if ent := e.world.arena[id]; ent != nil {
			ent.OnStart(e, id)
		}
	}
	for _, id := range append([]ID(nil), e.world.managers...) {
		if ent := e.world.arena[id]; ent != nil {
			ent.OnStart(e, id)
		}
	}

	e.log.WithField("entities", len(e.world.arena)).Debug("engine started")
	return nil
}

// Play runs one full turn for choice and reports whether the simulation
// has ended. Playing after the end is a no-op.
func (e *Engine) Play(choice Choice) (bool, error) {
	if !e.started {
		return false, ErrNotStarted
	}
	if !validChoice(choice) {
		return false, fmt.Errorf("%w: %q", ErrUnknownChoice, choice)
	}
	if e.ended {
		return true, nil
	}

	schedule := e.schedule()
	e.cancelled = false

	log := e.log.WithFields(logrus.Fields{"turn": e.turns, "choice": choice})
	log.Debug("turn started")

	for i := 0; i < len(schedule) && !e.ended && !e.cancelled; {
		priority := schedule[i].priority
		j := i
		for j < len(schedule) && schedule[j].priority == priority {
			j++
		}
		group := schedule[i:j]
		i = j

		e.moves = nil
		e.pushes = nil

		recorded := make([]int, len(group))
		for k, entry := range group {
			recorded[k] = -1
			if e.cancelled {
				break
			}
			ent := e.world.arena[entry.id]
			if ent == nil {
				continue
			}
			if cell, ok := e.world.where[entry.id]; ok {
				recorded[k] = cell
			}
			ent.OnTurn(e, entry.id, TurnEvent{Choice: choice, Priority: priority})
		}

		if e.cancelled {
			log.WithField("priority", priority).Debug("turn cancelled")
			break
		}

		e.resolve(group, recorded)
	}

	if !e.cancelled {
		e.turns++
	}

	log.WithFields(logrus.Fields{"ended": e.ended, "outcome": e.outcome}).Debug("turn finished")
	return e.ended, nil
}

// schedule flattens every (entity, priority) pair, board entities in cell
// order then managers, and sorts them stably by priority.
func (e *Engine) schedule() []scheduleEntry {
	var entries []scheduleEntry
	add := func(id ID) {
		ent := e.world.arena[id]
		if ent == nil {
			return
		}
		for _, p := range ent.Turns() {
			entries = append(entries, scheduleEntry{id: id, priority: p})
		}
	}
	for _, id := range e.world.boardEntities() {
		add(id)
	}
	for _, id := range e.world.managers {
		add(id)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].priority < entries[j].priority
	})
	return entries
}

func validChoice(c Choice) bool {
	for _, valid := range Choices {
		if c == valid {
			return true
		}
	}
	return false
}

// Move requests a one-cell move for id. The request is ignored when the
// step leaves the board or hits an obstacle tile. When the destination
// is occupied, the occupants are pushed instead and the mover stays.
func (e *Engine) Move(id ID, d Direction) {
	index, ok := e.world.where[id]
	if !ok {
		return
	}
	next, ok := e.grid.Step(index, d)
	if !ok {
		return
	}
	if e.world.tiles[next].IsObstacle() {
		return
	}

	if occupants := e.world.cells[next]; len(occupants) > 0 {
		for _, other := range occupants {
			e.pushes = append(e.pushes, pendingPush{id: other, dir: d})
		}
		return
	}
	e.moves = append(e.moves, pendingMove{id: id, to: next})
}

// Teleport requests a move of id straight to cell, applied with the
// other pending moves of the current priority group.
func (e *Engine) Teleport(id ID, cell int) {
	if _, ok := e.world.where[id]; !ok {
		return
	}
	if cell < 0 || cell >= e.grid.Size() {
		return
	}
	e.moves = append(e.moves, pendingMove{id: id, to: cell})
}

// Transform replaces the tile at cell and returns the old tile. Every
// occupant sees the new tile's enter reaction and the old tile's leave
// reaction, both flagged as transformed.
func (e *Engine) Transform(tile Tile, cell int) Tile {
	old := e.world.replaceTile(tile, cell)

	e.log.WithFields(logrus.Fields{"cell": cell, "from": old.Name(), "to": tile.Name()}).Debug("tile transformed")

	for _, id := range append([]ID(nil), e.world.cells[cell]...) {
		if at, ok := e.world.where[id]; !ok || at != cell {
			continue
		}
		tile.OnEnter(TileEvent{Engine: e, Cell: cell, Entity: id, Transformed: true})
		if at, ok := e.world.where[id]; !ok || at != cell {
			continue
		}
		old.OnLeave(TileEvent{Engine: e, Cell: cell, Entity: id, Transformed: true})
	}
	return old
}

// Spawn places a new entity at cell and returns its ID. A second player
// is refused with NoID.
func (e *Engine) Spawn(ent Entity, cell int) ID {
	if ent == nil || ent.Kind() == KindPlayer || cell < 0 || cell >= e.grid.Size() {
		return NoID
	}
	id := e.generateID()
	e.world.place(id, ent, cell)

	e.log.WithFields(logrus.Fields{"entity": ent.Name(), "id": id, "cell": cell}).Debug("entity spawned")

	e.world.tiles[cell].OnEnter(TileEvent{Engine: e, Cell: cell, Entity: id})
	return id
}

// Kill removes victim from the world, fires the vacated tile's leave
// reaction, then the victim's OnDeath and the killer's OnKill. Unknown
// IDs are ignored.
func (e *Engine) Kill(victim, killer ID) {
	ent, cell, ok := e.world.remove(victim)
	if !ok {
		return
	}

	e.log.WithFields(logrus.Fields{"entity": ent.Name(), "id": victim, "cell": cell, "killer": killer}).Debug("entity killed")

	if cell >= 0 {
		e.world.tiles[cell].OnLeave(TileEvent{Engine: e, Cell: cell, Entity: victim})
	}
	ent.OnDeath(e, victim, killer)
	if killer != NoID {
		if k := e.world.arena[killer]; k != nil {
			k.OnKill(e, killer, victim)
		}
	}
}

// End stops the simulation. Only the first outcome sticks.
func (e *Engine) End(outcome Outcome) {
	if e.ended {
		return
	}
	e.ended = true
	e.outcome = outcome
	e.log.WithField("outcome", outcome).Debug("simulation ended")
}

// CancelTurn aborts the current turn: nothing left in it is resolved and
// the turn counter does not advance.
func (e *Engine) CancelTurn() {
	e.cancelled = true
}

// moveEntity relocates id and fires the leave then enter reactions
func (e *Engine) moveEntity(id ID, to int) {
	from := e.world.relocate(id, to)
	e.world.tiles[from].OnLeave(TileEvent{Engine: e, Cell: from, Entity: id})
	if at, ok := e.world.where[id]; !ok || at != to {
		return
	}
	e.world.tiles[to].OnEnter(TileEvent{Engine: e, Cell: to, Entity: id})
}

func (e *Engine) fall(id ID) {
	if ent := e.world.arena[id]; ent != nil {
		ent.OnFall(e, id)
	}
}

func (e *Engine) allMatch(ids []ID, pred func(Entity) bool) bool {
	for _, id := range ids {
		ent := e.world.arena[id]
		if ent == nil || !pred(ent) {
			return false
		}
	}
	return true
}
