package engine

// Statues with no behavior of their own. They matter through their names:
// managers count killers and watchers, the player's fall rules ignore them.

// Rock is the plain pushable block
type Rock struct{ object }

func NewRock() *Rock { return &Rock{newObject(EntityRock)} }

type Voider struct{ object }

func NewVoider() *Voider { return &Voider{newObject(EntityVoider)} }

type Smiler struct{ object }

func NewSmiler() *Smiler { return &Smiler{newObject(EntitySmiler)} }

type Killer struct{ object }

func NewKiller() *Killer { return &Killer{newObject(EntityKiller)} }

type Watcher struct{ object }

func NewWatcher() *Watcher { return &Watcher{newObject(EntityWatcher)} }

type Atoner struct{ object }

func NewAtoner() *Atoner { return &Atoner{newObject(EntityAtoner)} }

// Lover fills the hole it falls into
type Lover struct{ object }

// NewLover returns a lover statue
func NewLover() *Lover { return &Lover{newObject(EntityLover)} }

func (*Lover) OnFall(e *Engine, self ID) {
	index, ok := e.IndexOf(self)
	if !ok {
		return
	}
	e.Kill(self, NoID)
	e.Transform(NewNormal(), index)
}

// Slower can be pushed exactly once
type Slower struct {
	object
	pushed bool
}

// NewSlower returns a slower that has not been pushed yet
func NewSlower() *Slower { return &Slower{object: newObject(EntitySlower)} }

func (s *Slower) IsPushable() bool { return !s.pushed }

func (s *Slower) OnPush(e *Engine, self ID) { s.pushed = true }

func (s *Slower) StateKey() string {
	if s.pushed {
		return "pushed"
	}
	return ""
}

// Greeder kills the player the moment it has a clear line of sight
type Greeder struct{ object }

// NewGreeder returns a greeder statue
func NewGreeder() *Greeder { return &Greeder{newObject(EntityGreeder)} }

func (*Greeder) Turns() []float64 { return []float64{1, 3} }

func (*Greeder) OnTurn(e *Engine, self ID, ev TurnEvent) {
	index, ok := e.IndexOf(self)
	if !ok {
		return
	}
	player := e.PlayerID()
	target, ok := e.IndexOf(player)
	if !ok {
		return
	}
	if _, seen := e.sightWay(index, target); seen {
		e.Kill(player, self)
	}
}
