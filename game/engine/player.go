package engine

// Player is the single entity driven by the player's choices. Items are
// granted by pickup tiles present on the board: a rod tile enables
// voiding, a sword tile enables striking, and every wings tile absorbs
// one fall.
type Player struct {
	baseEntity

	facing Direction
	stock  Tile
	steps  int
	voids  int

	wingsUsed int

	// reset at the start of every turn
	rodUsed       bool
	swordUsed     bool
	wingsThisTurn bool
}

// NewPlayer creates a player facing down with an empty hand
func NewPlayer() *Player {
	return &Player{baseEntity: baseEntity{name: EntityPlayer}, facing: Down}
}

func (*Player) Kind() Kind          { return KindPlayer }
func (p *Player) Facing() Direction { return p.facing }
func (*Player) Turns() []float64    { return []float64{0} }
func (*Player) IsPushable() bool    { return false }
func (*Player) IsObstacle() bool    { return true }

// Stock returns the held tile, or nil
func (p *Player) Stock() Tile { return p.stock }

// Steps returns the number of directional turns taken
func (p *Player) Steps() int { return p.steps }

// Voids returns the number of tiles picked up or placed
func (p *Player) Voids() int { return p.voids }

// WingsUsed returns how many falls have been absorbed
func (p *Player) WingsUsed() int { return p.wingsUsed }

// RodUsed reports whether the player voided a tile this turn
func (p *Player) RodUsed() bool { return p.rodUsed }

// SwordUsed reports whether the player struck with the sword this turn
func (p *Player) SwordUsed() bool { return p.swordUsed }

func (p *Player) StateKey() string {
	stock := "-"
	if p.stock != nil {
		stock = p.stock.Name()
	}
	return stock + "/" + itoa(p.wingsUsed)
}

func (p *Player) OnTurn(e *Engine, self ID, ev TurnEvent) {
	p.rodUsed = false
	p.swordUsed = false
	p.wingsThisTurn = false

	index, ok := e.IndexOf(self)
	if !ok {
		return
	}

	if ev.Choice == ChoiceAction {
		p.act(e, self, index)
		return
	}

	d, ok := ev.Choice.Direction()
	if !ok {
		return
	}
	p.facing = d

	result := e.blocked(index, d, false)
	if result.blocked && len(result.blockedBy) > 0 && e.allMatch(result.blockedBy, isEnemy) {
		for _, id := range result.blockedBy {
			e.Kill(id, self)
		}
		return
	}

	e.Move(self, d)
	p.steps++
}

// act runs the Action choice on the cell ahead. Every invalid target
// cancels the turn.
func (p *Player) act(e *Engine, self ID, index int) {
	target, ok := e.grid.Step(index, p.facing)
	if !ok {
		e.CancelTurn()
		return
	}

	if occupants := e.EntitiesAt(target); len(occupants) > 0 {
		if !e.HasItem(TileSword) {
			e.CancelTurn()
			return
		}
		var struck []ID
		for _, id := range occupants {
			if ent := e.Entity(id); ent != nil && isEnemy(ent) {
				struck = append(struck, id)
			}
		}
		if len(struck) == 0 {
			e.CancelTurn()
			return
		}
		for _, id := range struck {
			e.Kill(id, self)
		}
		p.swordUsed = true
		return
	}

	if !e.HasItem(TileRod) {
		e.CancelTurn()
		return
	}

	tile := e.TileAt(target)

	switch {
	case tile.Name() == TileEmpty && p.stock != nil:
		stock := p.stock
		p.stock = nil
		e.Transform(stock, target)
	case tile.Name() != TileEmpty && !tile.IsObstacle() && p.stock == nil:
		p.stock = e.Transform(NewEmpty(), target)
	default:
		e.CancelTurn()
		return
	}

	p.voids++
	p.rodUsed = true
}

// OnFall spends one wings charge per turn while charges remain
func (p *Player) OnFall(e *Engine, self ID) {
	if p.wingsThisTurn {
		return
	}
	if p.wingsUsed < len(e.TilesNamed(TileWings)) {
		p.wingsUsed++
		p.wingsThisTurn = true
		return
	}
	e.Kill(self, NoID)
}

func (p *Player) OnDeath(e *Engine, self ID, killer ID) {
	e.End(Lost)
}
