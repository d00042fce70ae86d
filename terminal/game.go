package terminal

import (
	"context"
	"errors"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/level"
)

// ErrEnded is returned when a choice is played after the level ended
var ErrEnded = errors.New("level has ended, press r to restart")

// Game is what the terminal plays against
type Game interface {
	Title() string
	Snapshot(ctx context.Context) (engine.Snapshot, error)
	Play(ctx context.Context, choice engine.Choice) (engine.Snapshot, error)
	Reset(ctx context.Context) (engine.Snapshot, error)
}

// Watcher is implemented by games whose state can change without a key
// press, such as a session shared with other clients. Watch calls update
// with every new snapshot until ctx is done or the feed fails.
type Watcher interface {
	Watch(ctx context.Context, update func(engine.Snapshot)) error
}

// LocalGame runs a level in process
type LocalGame struct {
	level *level.Level
	eng   *engine.Engine
}

// NewLocalGame builds and starts the level
func NewLocalGame(l *level.Level) (*LocalGame, error) {
	eng, err := level.Start(l)
	if err != nil {
		return nil, err
	}
	return &LocalGame{level: l, eng: eng}, nil
}

func (g *LocalGame) Title() string { return g.level.Name }

func (g *LocalGame) Snapshot(ctx context.Context) (engine.Snapshot, error) {
	return g.eng.Snapshot(), nil
}

// Play runs one turn. It returns ErrEnded once the level is over.
func (g *LocalGame) Play(ctx context.Context, choice engine.Choice) (engine.Snapshot, error) {
	if g.eng.Ended() {
		return g.eng.Snapshot(), ErrEnded
	}
	if _, err := g.eng.Play(choice); err != nil {
		return g.eng.Snapshot(), err
	}
	return g.eng.Snapshot(), nil
}

func (g *LocalGame) Reset(ctx context.Context) (engine.Snapshot, error) {
	eng, err := level.Start(g.level)
	if err != nil {
		return g.eng.Snapshot(), err
	}
	g.eng = eng
	return eng.Snapshot(), nil
}
