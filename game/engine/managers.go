package engine

// Manager names
const (
	ManagerKiller  = "killer-manager"
	ManagerStairs  = "stairs-manager"
	ManagerWatcher = "watcher-manager"
	ManagerCopy    = "copy-manager"
)

// manager is a boardless rule enforcer. It is scheduled like any other
// entity but never occupies a cell.
type manager struct {
	baseEntity
}

func newManager(name string) manager { return manager{baseEntity{name: name}} }

func (*manager) Kind() Kind        { return KindObject }
func (*manager) Facing() Direction { return Down }
func (*manager) IsPushable() bool  { return false }
func (*manager) IsObstacle() bool  { return false }

// DefaultManagers returns a fresh instance of every manager in schedule order
func DefaultManagers() []Entity {
	return []Entity{
		NewKillerManager(),
		NewStairsManager(),
		NewWatcherManager(),
		NewCopyManager(),
	}
}

// KillerManager removes every killer statue once no enemy remains.
// It fires at most once per level.
type KillerManager struct {
	manager
	activated bool
}

// NewKillerManager returns an unlatched killer manager
func NewKillerManager() *KillerManager {
	return &KillerManager{manager: newManager(ManagerKiller)}
}

func (*KillerManager) Turns() []float64 { return []float64{1, 3} }

// Activated reports whether the killers have been removed
func (m *KillerManager) Activated() bool { return m.activated }

func (m *KillerManager) StateKey() string {
	if m.activated {
		return "activated"
	}
	return ""
}

func (m *KillerManager) OnStart(e *Engine, self ID) { m.check(e) }

func (m *KillerManager) OnTurn(e *Engine, self ID, ev TurnEvent) { m.check(e) }

func (m *KillerManager) check(e *Engine) {
	if m.activated {
		return
	}
	for _, id := range e.Entities() {
		if ent := e.Entity(id); ent != nil && isEnemy(ent) {
			return
		}
	}
	for _, id := range e.EntitiesNamed(EntityKiller) {
		e.Kill(id, NoID)
	}
	m.activated = true
}

// StairsManager keeps the exit closed while a switch is uncovered or the
// player holds a switch tile, and wins the level when the player stands
// on open stairs.
type StairsManager struct {
	manager
	closed bool
}

// NewStairsManager returns the stairs manager
func NewStairsManager() *StairsManager {
	return &StairsManager{manager: newManager(ManagerStairs), closed: true}
}

func (*StairsManager) Turns() []float64 { return []float64{1} }

// Closed reports whether the exit is closed
func (m *StairsManager) Closed() bool { return m.closed }

func (m *StairsManager) OnStart(e *Engine, self ID) { m.Check(e) }

func (m *StairsManager) OnTurn(e *Engine, self ID, ev TurnEvent) { m.Check(e) }

// Check recomputes the exit state and ends the level when it is open
// under the player.
func (m *StairsManager) Check(e *Engine) {
	player := e.Player()
	if stock := player.Stock(); stock != nil && stock.Name() == TileSwitch {
		m.closed = true
		return
	}

	m.closed = false
	for _, cell := range e.TilesNamed(TileSwitch) {
		if len(e.world.cells[cell]) == 0 {
			m.closed = true
			return
		}
	}

	index, ok := e.IndexOf(e.PlayerID())
	if !ok {
		return
	}
	if e.TileAt(index).Name() == TileStairs {
		e.End(Won)
	}
}

// WatcherManager punishes voiding under watch: each turn the player uses
// the rod raises the alert, and the player dies once the alert reaches
// the number of watchers.
type WatcherManager struct {
	manager
	voids int
}

// NewWatcherManager returns a watcher manager with no voids counted
func NewWatcherManager() *WatcherManager {
	return &WatcherManager{manager: newManager(ManagerWatcher)}
}

func (*WatcherManager) Turns() []float64 { return []float64{0.5} }

// Voids returns the current alert level
func (m *WatcherManager) Voids() int { return m.voids }

func (m *WatcherManager) StateKey() string { return itoa(m.voids) }

func (m *WatcherManager) OnTurn(e *Engine, self ID, ev TurnEvent) {
	watchers := len(e.EntitiesNamed(EntityWatcher))
	if watchers == 0 {
		m.voids = 0
		return
	}

	if e.Player().RodUsed() {
		m.voids++
	}

	if m.voids >= watchers {
		e.Kill(e.PlayerID(), self)
	}
}

// CopyManager spawns a shade on every copy pad the player stepped on and
// has since vacated. The shade trails the last shade that left the pad,
// or the player when there is none.
type CopyManager struct {
	manager
}

// NewCopyManager returns the copy manager
func NewCopyManager() *CopyManager {
	return &CopyManager{manager: newManager(ManagerCopy)}
}

func (*CopyManager) Turns() []float64 { return []float64{0.75} }

func (m *CopyManager) OnTurn(e *Engine, self ID, ev TurnEvent) {
	for _, cell := range e.TilesNamed(TileCopy) {
		pad, ok := e.TileAt(cell).(*CopyTile)
		if !ok || !pad.playerEntered || len(e.world.cells[cell]) > 0 {
			continue
		}

		leader := pad.lastShade
		if leader == NoID || e.Entity(leader) == nil {
			leader = e.PlayerID()
		}

		pad.reset()
		e.Spawn(NewShade(leader), cell)
	}
}
