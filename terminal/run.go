package terminal

import (
	"context"
	"errors"

	"github.com/gdamore/tcell/v2"
	"github.com/sirupsen/logrus"

	"github.com/wricardo/voidgrid/game/engine"
)

type command int

const (
	cmdNone command = iota
	cmdPlay
	cmdRestart
	cmdQuit
)

// keyCommand maps a key press onto a command and, for cmdPlay, the choice
func keyCommand(ev *tcell.EventKey) (command, engine.Choice) {
	switch ev.Key() {
	case tcell.KeyUp:
		return cmdPlay, engine.ChoiceUp
	case tcell.KeyDown:
		return cmdPlay, engine.ChoiceDown
	case tcell.KeyLeft:
		return cmdPlay, engine.ChoiceLeft
	case tcell.KeyRight:
		return cmdPlay, engine.ChoiceRight
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return cmdQuit, ""
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ', 'w', 'W':
			return cmdPlay, engine.ChoiceAction
		case 'r', 'R':
			return cmdRestart, ""
		case 'q', 'Q':
			return cmdQuit, ""
		}
	}
	return cmdNone, ""
}

// snapshotEvent carries a state pushed by a Watcher into the event loop
type snapshotEvent struct {
	tcell.EventTime
	snap engine.Snapshot
}

// Run plays game on screen until the player quits or ctx is done. The
// caller owns the screen: it must be initialized before Run and finalized
// after.
func Run(ctx context.Context, screen tcell.Screen, game Game, log *logrus.Entry) error {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithField("component", "terminal")

	renderer := NewRenderer(screen)
	snap, err := game.Snapshot(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		<-ctx.Done()
		screen.PostEvent(tcell.NewEventInterrupt(nil))
	}()

	if w, ok := game.(Watcher); ok {
		go func() {
			err := w.Watch(ctx, func(s engine.Snapshot) {
				ev := &snapshotEvent{snap: s}
				ev.SetEventNow()
				if err := screen.PostEvent(ev); err != nil {
					log.WithError(err).Debug("dropped snapshot update")
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Warn("live updates stopped")
			}
		}()
	}

	status := ""
	for {
		renderer.Draw(game.Title(), snap, status)

		switch ev := screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventInterrupt:
			if ctx.Err() != nil {
				return nil
			}
		case *tcell.EventResize:
			screen.Sync()
		case *snapshotEvent:
			snap = ev.snap
		case *tcell.EventKey:
			cmd, choice := keyCommand(ev)
			switch cmd {
			case cmdQuit:
				return nil
			case cmdRestart:
				next, err := game.Reset(ctx)
				if err != nil {
					status = err.Error()
					continue
				}
				snap, status = next, ""
			case cmdPlay:
				next, err := game.Play(ctx, choice)
				if err != nil {
					status = err.Error()
					continue
				}
				snap, status = next, ""
				log.WithFields(logrus.Fields{
					"choice":  choice,
					"turns":   next.Turns,
					"outcome": next.Outcome,
				}).Debug("played")
			}
		}
	}
}
