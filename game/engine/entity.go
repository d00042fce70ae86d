package engine

// Entity names
const (
	EntityPlayer  = "player"
	EntityRock    = "rock"
	EntityLeech   = "leech"
	EntityMaggot  = "maggot"
	EntitySmile   = "smile"
	EntityBeaver  = "beaver"
	EntityLazyEye = "lazyeye"
	EntityMimic   = "mimic"
	EntityMimicV  = "mimic-v"
	EntityMimicH  = "mimic-h"
	EntityMimicVH = "mimic-vh"
	EntityShade   = "shade"
	EntityVoider  = "voider"
	EntityLover   = "lover"
	EntitySmiler  = "smiler"
	EntityGreeder = "greeder"
	EntityKiller  = "killer"
	EntitySlower  = "slower"
	EntityWatcher = "watcher"
	EntityAtoner  = "atoner"
)

// TurnEvent is passed to OnTurn
type TurnEvent struct {
	Choice   Choice
	Priority float64
}

// Entity is a board occupant or a boardless manager. Entities hold no
// references to each other; they resolve other entities by ID through
// the engine. The set of entities is closed to this package.
type Entity interface {
	Name() string
	Kind() Kind
	Facing() Direction
	Turns() []float64
	IsPushable() bool
	IsObstacle() bool

	OnStart(e *Engine, self ID)
	OnTurn(e *Engine, self ID, ev TurnEvent)
	OnPush(e *Engine, self ID)
	OnFall(e *Engine, self ID)
	OnCollision(e *Engine, self ID, stack []ID)
	OnDeath(e *Engine, self ID, killer ID)
	OnKill(e *Engine, self ID, victim ID)

	sealedEntity()
}

// StateKeyer is implemented by entities carrying internal state that
// changes their future behavior. The key feeds Engine.Fingerprint.
type StateKeyer interface {
	StateKey() string
}

// baseEntity supplies the default reactions. Falling kills.
type baseEntity struct {
	name string
}

func (b *baseEntity) Name() string { return b.name }

func (*baseEntity) OnStart(e *Engine, self ID)                 {}
func (*baseEntity) OnTurn(e *Engine, self ID, ev TurnEvent)    {}
func (*baseEntity) OnPush(e *Engine, self ID)                  {}
func (*baseEntity) OnFall(e *Engine, self ID)                  { e.Kill(self, NoID) }
func (*baseEntity) OnCollision(e *Engine, self ID, stack []ID) {}
func (*baseEntity) OnDeath(e *Engine, self ID, killer ID)      {}
func (*baseEntity) OnKill(e *Engine, self ID, victim ID)       {}
func (*baseEntity) sealedEntity()                              {}

// object is a pushable obstacle with no turn of its own
type object struct {
	baseEntity
}

func newObject(name string) object { return object{baseEntity{name: name}} }

func (*object) Kind() Kind        { return KindObject }
func (*object) Facing() Direction { return Down }
func (*object) Turns() []float64  { return nil }
func (*object) IsPushable() bool  { return true }
func (*object) IsObstacle() bool  { return true }

// enemy acts at priority 2, can be walked into and dies when stacked
type enemy struct {
	baseEntity
}

func newEnemy(name string) enemy { return enemy{baseEntity{name: name}} }

func (*enemy) Kind() Kind       { return KindEnemy }
func (*enemy) Turns() []float64 { return []float64{2} }
func (*enemy) IsPushable() bool { return false }
func (*enemy) IsObstacle() bool { return false }

func (*enemy) OnCollision(e *Engine, self ID, stack []ID) { e.Kill(self, NoID) }

// blockResult describes what stops a step from index in some direction.
// A blocked result with no blockers means the board edge or the terrain.
type blockResult struct {
	blocked   bool
	blockedBy []ID
}

// blocked reports whether a step from index in direction d is possible.
// When checkEmpty is set, holes count as blocking terrain.
func (e *Engine) blocked(index int, d Direction, checkEmpty bool) blockResult {
	next, ok := e.grid.Step(index, d)
	if !ok {
		return blockResult{blocked: true}
	}

	tile := e.world.tiles[next]
	if tile.IsObstacle() || (checkEmpty && tile.Name() == TileEmpty) {
		return blockResult{blocked: true}
	}

	if ids := e.EntitiesAt(next); len(ids) > 0 {
		return blockResult{blocked: true, blockedBy: ids}
	}

	return blockResult{}
}

// findBlocker returns the first blocker matching pred
func (e *Engine) findBlocker(r blockResult, pred func(Entity) bool) ID {
	for _, id := range r.blockedBy {
		if ent := e.Entity(id); ent != nil && pred(ent) {
			return id
		}
	}
	return NoID
}

func isPlayer(ent Entity) bool { return ent.Kind() == KindPlayer }

// isPlayerLike matches the player and the shades standing in for it
func isPlayerLike(ent Entity) bool {
	return ent.Kind() == KindPlayer || ent.Name() == EntityShade
}

func isEnemy(ent Entity) bool { return ent.Kind() == KindEnemy }

func isObject(ent Entity) bool { return ent.Kind() == KindObject }

// sightWay returns the direction from a to b when both share a row or a
// column and nothing stands between them: no obstacle tile, no entity.
func (e *Engine) sightWay(a, b int) (Direction, bool) {
	pa := e.grid.ToPosition(a)
	pb := e.grid.ToPosition(b)

	var way Direction
	switch {
	case a == b:
		return "", false
	case pa.Row == pb.Row && pb.Col < pa.Col:
		way = Left
	case pa.Row == pb.Row:
		way = Right
	case pa.Col == pb.Col && pb.Row < pa.Row:
		way = Up
	case pa.Col == pb.Col:
		way = Down
	default:
		return "", false
	}

	cell := a
	for {
		next, ok := e.grid.Step(cell, way)
		if !ok {
			return "", false
		}
		if next == b {
			return way, true
		}
		if e.world.tiles[next].IsObstacle() || len(e.world.cells[next]) > 0 {
			return "", false
		}
		cell = next
	}
}
