package engine

// Tile names
const (
	TileEmpty        = "empty"
	TileNormal       = "normal"
	TileWall         = "wall"
	TileStairs       = "stairs"
	TileSwitch       = "switch"
	TileGlass        = "glass"
	TileDamagedGlass = "damagedglass"
	TileBomb         = "bomb"
	TileExplo        = "explo"
	TileCopy         = "copy"
	TileWhite        = "white"
	TileRod          = "rod"
	TileSword        = "sword"
	TileWings        = "wings"
)

// TileEvent is passed to tile reactions. Transformed is set when the
// reaction comes from a tile replacement rather than an entity moving.
type TileEvent struct {
	Engine      *Engine
	Cell        int
	Entity      ID
	Transformed bool
}

// Tile is the terrain occupying one cell. The set of tiles is closed:
// only types in this package implement it.
type Tile interface {
	Name() string
	IsObstacle() bool
	OnEnter(ev TileEvent)
	OnLeave(ev TileEvent)
	OnStay(ev TileEvent)
	sealedTile()
}

type baseTile struct{}

func (baseTile) IsObstacle() bool     { return false }
func (baseTile) OnEnter(ev TileEvent) {}
func (baseTile) OnLeave(ev TileEvent) {}
func (baseTile) OnStay(ev TileEvent)  {}
func (baseTile) sealedTile()          {}

// EmptyTile is a hole: anything entering or remaining on it falls.
type EmptyTile struct{ baseTile }

// NewEmpty returns a hole
func NewEmpty() Tile { return &EmptyTile{} }

func (*EmptyTile) Name() string { return TileEmpty }

func (*EmptyTile) OnEnter(ev TileEvent) { ev.Engine.fall(ev.Entity) }

func (*EmptyTile) OnStay(ev TileEvent) { ev.Engine.fall(ev.Entity) }

// NormalTile is plain floor with no reactions
type NormalTile struct{ baseTile }

// NewNormal returns a floor tile
func NewNormal() Tile { return &NormalTile{} }

func (*NormalTile) Name() string { return TileNormal }

// WallTile blocks entry; anything that ends up on it dies.
type WallTile struct{ baseTile }

// NewWall returns a wall
func NewWall() Tile { return &WallTile{} }

func (*WallTile) Name() string     { return TileWall }
func (*WallTile) IsObstacle() bool { return true }

func (*WallTile) OnEnter(ev TileEvent) { ev.Engine.Kill(ev.Entity, NoID) }

// StairsTile is the level exit, armed by the stairs manager.
type StairsTile struct{ baseTile }

// NewStairs returns the exit tile
func NewStairs() Tile { return &StairsTile{} }

func (*StairsTile) Name() string { return TileStairs }

// SwitchTile must be covered for the exit to open.
type SwitchTile struct{ baseTile }

// NewSwitch returns a switch
func NewSwitch() Tile { return &SwitchTile{} }

func (*SwitchTile) Name() string { return TileSwitch }

func (*SwitchTile) OnEnter(ev TileEvent) { checkStairs(ev.Engine) }
func (*SwitchTile) OnLeave(ev TileEvent) { checkStairs(ev.Engine) }

func checkStairs(e *Engine) {
	if m, ok := e.Manager(ManagerStairs).(*StairsManager); ok {
		m.Check(e)
	}
}

// GlassTile cracks under its first occupant.
type GlassTile struct{ baseTile }

// NewGlass returns intact glass
func NewGlass() Tile { return &GlassTile{} }

func (*GlassTile) Name() string { return TileGlass }

func (*GlassTile) OnEnter(ev TileEvent) {
	if len(ev.Engine.EntitiesAt(ev.Cell)) == 1 {
		ev.Engine.Transform(NewDamagedGlass(), ev.Cell)
	}
}

// DamagedGlassTile breaks into a hole once vacated.
type DamagedGlassTile struct{ baseTile }

// NewDamagedGlass returns cracked glass, as levels may start with it
func NewDamagedGlass() Tile { return &DamagedGlassTile{} }

func (*DamagedGlassTile) Name() string { return TileDamagedGlass }

func (*DamagedGlassTile) OnLeave(ev TileEvent) {
	if ev.Transformed {
		return
	}
	if len(ev.Engine.EntitiesAt(ev.Cell)) == 0 {
		ev.Engine.Transform(NewEmpty(), ev.Cell)
	}
}

// BombTile arms into an ExploTile under its first occupant.
type BombTile struct{ baseTile }

// NewBomb returns an unarmed bomb
func NewBomb() Tile { return &BombTile{} }

func (*BombTile) Name() string { return TileBomb }

func (*BombTile) OnEnter(ev TileEvent) {
	if len(ev.Engine.EntitiesAt(ev.Cell)) == 1 {
		ev.Engine.Transform(NewExplo(), ev.Cell)
	}
}

// ExploTile is an armed bomb. The next occupancy event that is not a
// transform floods every 4-connected bomb or explo tile into holes.
type ExploTile struct{ baseTile }

// NewExplo returns an armed bomb
func NewExplo() Tile { return &ExploTile{} }

func (*ExploTile) Name() string { return TileExplo }

func (*ExploTile) OnEnter(ev TileEvent) {
	if ev.Transformed {
		return
	}
	if len(ev.Engine.EntitiesAt(ev.Cell)) > 1 {
		return
	}
	explode(ev.Engine, ev.Cell)
}

func (*ExploTile) OnLeave(ev TileEvent) {
	if ev.Transformed {
		return
	}
	explode(ev.Engine, ev.Cell)
}

func (*ExploTile) OnStay(ev TileEvent) { explode(ev.Engine, ev.Cell) }

// explode runs a depth-first flood from origin. The discovered set bounds
// the walk; transforms fired on the way are flagged so explo tiles never
// re-trigger themselves.
func explode(e *Engine, origin int) {
	stack := []int{origin}
	discovered := map[int]bool{origin: true}

	for len(stack) > 0 {
		cell := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		name := e.TileAt(cell).Name()
		if name != TileExplo && name != TileBomb {
			continue
		}

		e.Transform(NewEmpty(), cell)

		for _, next := range e.Grid().Neighbors(cell) {
			if !discovered[next] {
				discovered[next] = true
				stack = append(stack, next)
			}
		}
	}
}

// CopyTile spawns shades through the copy manager. It records whether the
// player stepped on it and which shade last walked off it.
type CopyTile struct {
	baseTile
	playerEntered bool
	lastShade     ID
}

// NewCopy returns a copy pad with no shade recorded
func NewCopy() Tile { return &CopyTile{lastShade: NoID} }

func (*CopyTile) Name() string { return TileCopy }

func (t *CopyTile) OnEnter(ev TileEvent) {
	if ev.Entity == ev.Engine.PlayerID() {
		t.playerEntered = true
	}
}

func (t *CopyTile) OnLeave(ev TileEvent) {
	if ent := ev.Engine.Entity(ev.Entity); ent != nil && ent.Name() == EntityShade {
		t.lastShade = ev.Entity
	}
}

// PlayerEntered reports whether the player has stepped on the pad since the last spawn
func (t *CopyTile) PlayerEntered() bool { return t.playerEntered }

// LastShade returns the last shade that walked off the pad, or NoID
func (t *CopyTile) LastShade() ID { return t.lastShade }

func (t *CopyTile) reset() {
	t.playerEntered = false
	t.lastShade = NoID
}

// Pickup markers. The player checks for their presence on the board.

// WhiteTile is a marker with no behavior
type WhiteTile struct{ baseTile }

func NewWhite() Tile { return &WhiteTile{} }

func (*WhiteTile) Name() string { return TileWhite }

// RodTile lets the player pick up and place tiles while on the board
type RodTile struct{ baseTile }

func NewRod() Tile { return &RodTile{} }

func (*RodTile) Name() string { return TileRod }

// SwordTile lets the player strike while on the board
type SwordTile struct{ baseTile }

func NewSword() Tile { return &SwordTile{} }

func (*SwordTile) Name() string { return TileSword }

// WingsTile absorbs one fall while on the board
type WingsTile struct{ baseTile }

func NewWings() Tile { return &WingsTile{} }

func (*WingsTile) Name() string { return TileWings }
