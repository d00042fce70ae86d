// Command autoplay connects to a Void Grid server, solves the level of a
// session locally and plays the solution through the REST API. The session
// id is remembered in a file so later runs replay on the same session.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/solver"
	"github.com/wricardo/voidgrid/logger"
)

var errNotWon = errors.New("solution did not win on the server")

// settings for one autoplay run
type settings struct {
	levelID     string
	sessionID   string
	sessionFile string
	depth       int
	maxStates   int
	step        bool
	delay       time.Duration
}

// openSession resumes the requested or remembered session, or creates one
func openSession(ctx context.Context, client *Client, s settings, log *logrus.Entry) error {
	id := s.sessionID
	if id == "" && s.sessionFile != "" {
		if data, err := os.ReadFile(s.sessionFile); err == nil {
			id = string(bytes.TrimSpace(data))
		}
	}

	if id != "" {
		client.sessionID = id
		_, err := client.GetSession(ctx)
		if err == nil {
			log.WithField("session_id", id).Info("resuming session")
			return nil
		}
		log.WithError(err).WithField("session_id", id).Warn("failed to resume session, creating a new one")
	}

	info, err := client.CreateSession(ctx, s.levelID)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{"session_id": info.ID, "level_id": info.LevelID}).Info("session created")

	if s.sessionFile != "" {
		if err := os.WriteFile(s.sessionFile, []byte(info.ID), 0644); err != nil {
			log.WithError(err).Warn("failed to save session id")
		}
	}
	return nil
}

// autoplay solves the session's level and plays the solution from a reset
func autoplay(ctx context.Context, client *Client, s settings, log *logrus.Entry) (*engine.Snapshot, error) {
	if err := openSession(ctx, client, s, log); err != nil {
		return nil, err
	}

	info, err := client.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if info.Level == nil {
		return nil, fmt.Errorf("session %s has no level document", info.ID)
	}

	started := time.Now()
	result, err := solver.Solve(ctx, info.Level, s.depth, solver.WithMaxStates(s.maxStates), solver.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("solve %s: %w", info.Level.Name, err)
	}
	log.WithFields(logrus.Fields{
		"turns":    len(result.Choices),
		"explored": result.Explored,
		"elapsed":  time.Since(started).Round(time.Millisecond),
	}).Info("solution found")

	if _, err := client.Reset(ctx); err != nil {
		return nil, err
	}

	var state *engine.Snapshot
	if s.step {
		for i, choice := range result.Choices {
			res, err := client.Play(ctx, choice)
			if err != nil {
				return nil, err
			}
			state = res.State
			log.WithFields(logrus.Fields{"turn": i + 1, "choice": choice}).Debug("played")

			if s.delay > 0 {
				select {
				case <-ctx.Done():
					return state, ctx.Err()
				case <-time.After(s.delay):
				}
			}
		}
	} else {
		res, err := client.BulkPlay(ctx, result.Choices)
		if err != nil {
			return nil, err
		}
		state = res.State
	}

	if state == nil || state.Outcome != engine.Won {
		return state, errNotWon
	}
	return state, nil
}

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "solve a session's level and play the solution on a server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL"},
			&cli.StringFlag{Name: "level", Usage: "level id for a new session (server default when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "resume playing an existing session by id"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "file remembering the session id between runs"},
			&cli.IntFlag{Name: "depth", Value: 60, Usage: "solver depth in turns"},
			&cli.IntFlag{Name: "max-states", Value: solver.DefaultMaxStates, Usage: "solver state limit"},
			&cli.BoolFlag{Name: "step", Usage: "play one choice per request instead of bulk play"},
			&cli.DurationFlag{Name: "delay", Usage: "delay between choices with --step"},
			&cli.BoolFlag{Name: "v", Usage: "verbose output"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger.Init()
			if cmd.Bool("v") {
				logger.Log.SetLevel(logrus.DebugLevel)
			}
			log := logger.WithComponent("autoplay")

			client := NewClient(cmd.String("url"))
			state, err := autoplay(ctx, client, settings{
				levelID:     cmd.String("level"),
				sessionID:   cmd.String("continue"),
				sessionFile: cmd.String("session-file"),
				depth:       cmd.Int("depth"),
				maxStates:   cmd.Int("max-states"),
				step:        cmd.Bool("step"),
				delay:       cmd.Duration("delay"),
			}, log)
			if err != nil {
				return err
			}

			log.WithFields(logrus.Fields{"session_id": client.sessionID, "turns": state.Turns}).Info("level won")
			return nil
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
