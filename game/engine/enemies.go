package engine

// Leech patrols horizontally and turns around at walls and holes
type Leech struct {
	enemy
	right bool
}

// NewLeech returns a leech heading right or left
func NewLeech(right bool) *Leech {
	return &Leech{enemy: newEnemy(EntityLeech), right: right}
}

func (l *Leech) Facing() Direction {
	if l.right {
		return Right
	}
	return Left
}

func (l *Leech) StateKey() string { return string(l.Facing()) }

func (l *Leech) OnTurn(e *Engine, self ID, ev TurnEvent) {
	if !patrol(e, self, l.Facing()) {
		l.right = !l.right
	}
}

// Maggot patrols vertically and turns around at walls and holes
type Maggot struct {
	enemy
	down bool
}

// NewMaggot returns a maggot heading down or up
func NewMaggot(down bool) *Maggot {
	return &Maggot{enemy: newEnemy(EntityMaggot), down: down}
}

func (m *Maggot) Facing() Direction {
	if m.down {
		return Down
	}
	return Up
}

func (m *Maggot) StateKey() string { return string(m.Facing()) }

func (m *Maggot) OnTurn(e *Engine, self ID, ev TurnEvent) {
	if !patrol(e, self, m.Facing()) {
		m.down = !m.down
	}
}

// patrol advances one step in d. It returns false when the patroller
// should turn around; a blocking player or shade is killed instead.
func patrol(e *Engine, self ID, d Direction) bool {
	index, ok := e.IndexOf(self)
	if !ok {
		return true
	}

	result := e.blocked(index, d, true)
	if !result.blocked {
		e.Move(self, d)
		return true
	}

	if victim := e.findBlocker(result, isPlayerLike); victim != NoID {
		e.Kill(victim, self)
		return true
	}
	return false
}

// Smile walks toward the player whenever it can see it
type Smile struct {
	enemy
	facing Direction
}

// NewSmile returns a smile facing left
func NewSmile() *Smile {
	return &Smile{enemy: newEnemy(EntitySmile), facing: Left}
}

func (s *Smile) Facing() Direction { return s.facing }

func (s *Smile) OnTurn(e *Engine, self ID, ev TurnEvent) {
	index, ok := e.IndexOf(self)
	if !ok {
		return
	}
	target, ok := e.IndexOf(e.PlayerID())
	if !ok {
		return
	}

	way, ok := e.sightWay(index, target)
	if !ok {
		return
	}
	if way == Left || way == Right {
		s.facing = way
	}

	result := e.blocked(index, way, false)
	if !result.blocked {
		e.Move(self, way)
		return
	}
	if victim := e.findBlocker(result, isPlayer); victim != NoID {
		e.Kill(victim, self)
	}
}

// Beaver locks onto the player on sight and charges until something
// stops it, then rests for one turn.
type Beaver struct {
	enemy
	charging  Direction
	resetting bool
}

// NewBeaver returns a beaver with no charge under way
func NewBeaver() *Beaver {
	return &Beaver{enemy: newEnemy(EntityBeaver)}
}

func (b *Beaver) Facing() Direction {
	if b.charging != "" {
		return b.charging
	}
	return Down
}

func (b *Beaver) StateKey() string {
	if b.resetting {
		return "resetting"
	}
	return string(b.charging)
}

func (b *Beaver) OnTurn(e *Engine, self ID, ev TurnEvent) {
	index, ok := e.IndexOf(self)
	if !ok {
		return
	}

	if b.resetting {
		b.resetting = false
		return
	}

	if b.charging == "" {
		target, ok := e.IndexOf(e.PlayerID())
		if !ok {
			return
		}
		way, ok := e.sightWay(index, target)
		if !ok {
			return
		}
		b.charging = way
	}

	result := e.blocked(index, b.charging, true)
	if !result.blocked {
		e.Move(self, b.charging)
		return
	}

	if victim := e.findBlocker(result, isPlayer); victim != NoID {
		e.Kill(victim, self)
		return
	}
	b.charging = ""
	b.resetting = true
}

// LazyEye never acts
type LazyEye struct {
	enemy
}

// NewLazyEye returns a lazy eye
func NewLazyEye() *LazyEye {
	return &LazyEye{enemy: newEnemy(EntityLazyEye)}
}

func (*LazyEye) Facing() Direction { return Down }

// Mimic copies the player's directional input, optionally mirrored on
// either axis. Objects in the way get pushed.
type Mimic struct {
	enemy
	mirrorLeftRight bool
	mirrorUpDown    bool
	facing          Direction
}

// NewMimic returns the mimic variant for the given mirror axes
func NewMimic(mirrorLeftRight, mirrorUpDown bool) *Mimic {
	name := EntityMimic
	switch {
	case mirrorLeftRight && mirrorUpDown:
		name = EntityMimicVH
	case mirrorLeftRight:
		name = EntityMimicV
	case mirrorUpDown:
		name = EntityMimicH
	}
	return &Mimic{
		enemy:           newEnemy(name),
		mirrorLeftRight: mirrorLeftRight,
		mirrorUpDown:    mirrorUpDown,
		facing:          Down,
	}
}

func (m *Mimic) Facing() Direction { return m.facing }

func (m *Mimic) StateKey() string { return string(m.facing) }

func (m *Mimic) OnTurn(e *Engine, self ID, ev TurnEvent) {
	index, ok := e.IndexOf(self)
	if !ok {
		return
	}

	way, ok := ev.Choice.Direction()
	if !ok {
		return
	}
	if (m.mirrorUpDown && (way == Up || way == Down)) ||
		(m.mirrorLeftRight && (way == Left || way == Right)) {
		way = Opposite(way)
	}
	m.facing = way

	result := e.blocked(index, way, false)
	if !result.blocked {
		e.Move(self, way)
		return
	}

	if victim := e.findBlocker(result, isPlayer); victim != NoID {
		e.Kill(victim, self)
	}
	if e.findBlocker(result, isObject) != NoID {
		e.Move(self, way)
	}
}

// Shade trails the entity it follows by half a turn. At its negative
// priority it samples where the leader stands; at its positive priority,
// once the leader has moved on, it steps into the sampled cell.
type Shade struct {
	enemy
	follow        ID
	facing        Direction
	sampled       int
	sampledFacing Direction
}

// NewShade returns a shade trailing the entity follow
func NewShade(follow ID) *Shade {
	return &Shade{enemy: newEnemy(EntityShade), follow: follow, facing: Down, sampled: -1}
}

func (s *Shade) Facing() Direction { return s.facing }

func (*Shade) Turns() []float64 { return []float64{-0.5, 0.5} }

// Follow returns the ID of the entity being trailed
func (s *Shade) Follow() ID { return s.follow }

func (s *Shade) StateKey() string {
	return itoa(int(s.follow)) + "/" + string(s.facing)
}

func (s *Shade) OnTurn(e *Engine, self ID, ev TurnEvent) {
	if ev.Priority < 0 {
		s.sample(e)
		return
	}
	s.retarget(e, self)
}

func (s *Shade) sample(e *Engine) {
	s.sampled = -1
	leader := e.Entity(s.follow)
	if leader == nil {
		return
	}
	if index, ok := e.IndexOf(s.follow); ok {
		s.sampled = index
		s.sampledFacing = leader.Facing()
	}
}

func (s *Shade) retarget(e *Engine, self ID) {
	if s.sampled < 0 {
		return
	}
	target := s.sampled
	s.sampled = -1

	current, ok := e.IndexOf(s.follow)
	if !ok || current == target {
		return
	}
	index, ok := e.IndexOf(self)
	if !ok || index == target {
		return
	}

	e.Teleport(self, target)
	s.facing = s.sampledFacing
}
