// Package solver searches for the shortest winning choice sequence of a
// level by breadth-first search over engine states.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wricardo/voidgrid/game/engine"
	"github.com/wricardo/voidgrid/game/level"
)

var (
	ErrNoSolution     = errors.New("no solution found")
	ErrStateLimit     = errors.New("state limit reached")
	ErrLevelNotPlayed = errors.New("level ends before the first turn")
)

// DefaultMaxStates bounds the number of distinct states kept in memory
const DefaultMaxStates = 200000

// Result is a winning choice sequence and the search effort behind it
type Result struct {
	Choices  []engine.Choice `json:"choices"`
	Explored int             `json:"explored"`
	Depth    int             `json:"depth"`
}

// Option configures Solve
type Option func(*options)

type options struct {
	maxStates int
	log       *logrus.Entry
}

// WithMaxStates caps the number of distinct states visited. Zero or less
// means DefaultMaxStates.
func WithMaxStates(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxStates = n
		}
	}
}

// WithLogger reports search progress on the given entry
func WithLogger(log *logrus.Entry) Option {
	return func(o *options) {
		o.log = log
	}
}

type node struct {
	choices []engine.Choice
}

// Solve returns the shortest choice sequence of at most maxDepth turns that
// wins the level. Candidate prefixes are replayed on a fresh engine, states
// already seen are skipped by fingerprint, and cancelled or lost turns are
// pruned.
func Solve(ctx context.Context, l *level.Level, maxDepth int, opts ...Option) (*Result, error) {
	o := options{maxStates: DefaultMaxStates}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		discard := logrus.New()
		discard.SetLevel(logrus.PanicLevel)
		o.log = logrus.NewEntry(discard)
	}

	root, err := level.Start(l)
	if err != nil {
		return nil, err
	}
	if root.Ended() {
		if root.Outcome() == engine.Won {
			return &Result{Choices: []engine.Choice{}}, nil
		}
		return nil, ErrLevelNotPlayed
	}

	visited := map[string]bool{root.Fingerprint(): true}
	queue := []node{{choices: nil}}
	explored := 0

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var next []node

		for _, current := range queue {
			for _, choice := range engine.Choices {
				if err := ctx.Err(); err != nil {
					return nil, err
				}

				candidate := append(append(make([]engine.Choice, 0, len(current.choices)+1), current.choices...), choice)
				eng, cancelled, err := replay(l, candidate)
				if err != nil {
					return nil, err
				}
				explored++
				if cancelled {
					continue
				}

				if eng.Outcome() == engine.Won {
					o.log.WithFields(logrus.Fields{"depth": len(candidate), "explored": explored}).Info("solution found")
					return &Result{Choices: candidate, Explored: explored, Depth: len(candidate)}, nil
				}
				if eng.Ended() {
					continue
				}

				fp := eng.Fingerprint()
				if visited[fp] {
					continue
				}
				visited[fp] = true
				if len(visited) > o.maxStates {
					return nil, fmt.Errorf("%w: %d states at depth %d", ErrStateLimit, o.maxStates, depth+1)
				}
				next = append(next, node{choices: candidate})
			}
		}

		o.log.WithFields(logrus.Fields{
			"depth":    depth + 1,
			"frontier": len(next),
			"visited":  len(visited),
		}).Debug("depth searched")
		queue = next
	}

	return nil, fmt.Errorf("%w within %d turns (%d states explored)", ErrNoSolution, maxDepth, explored)
}

// replay builds a fresh engine and plays choices on it. cancelled reports
// whether the last turn was cancelled.
func replay(l *level.Level, choices []engine.Choice) (*engine.Engine, bool, error) {
	eng, err := level.Start(l)
	if err != nil {
		return nil, false, err
	}
	for _, c := range choices {
		if _, err := eng.Play(c); err != nil {
			return nil, false, fmt.Errorf("replay %s: %w", c, err)
		}
	}
	return eng, eng.LastCancelled(), nil
}
