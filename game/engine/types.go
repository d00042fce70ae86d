package engine

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is one of the four grid directions
type Direction string

const (
	Up    Direction = "Up"
	Down  Direction = "Down"
	Left  Direction = "Left"
	Right Direction = "Right"
)

// Directions lists the four directions in a fixed order
var Directions = []Direction{Up, Down, Left, Right}

// Choice is the player's input for one turn
type Choice string

const (
	ChoiceUp     Choice = "Up"
	ChoiceDown   Choice = "Down"
	ChoiceLeft   Choice = "Left"
	ChoiceRight  Choice = "Right"
	ChoiceAction Choice = "Action"
)

// Choices lists every valid choice
var Choices = []Choice{ChoiceUp, ChoiceDown, ChoiceLeft, ChoiceRight, ChoiceAction}

// Direction returns the direction of a directional choice.
// The second result is false for ChoiceAction.
func (c Choice) Direction() (Direction, bool) {
	switch c {
	case ChoiceUp:
		return Up, true
	case ChoiceDown:
		return Down, true
	case ChoiceLeft:
		return Left, true
	case ChoiceRight:
		return Right, true
	}
	return "", false
}

// ParseChoice accepts case-insensitive choice names plus a few aliases
func ParseChoice(s string) (Choice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return ChoiceUp, nil
	case "down", "d":
		return ChoiceDown, nil
	case "left", "l":
		return ChoiceLeft, nil
	case "right", "r":
		return ChoiceRight, nil
	case "action", "a", "void", "space":
		return ChoiceAction, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownChoice, s)
}

// String returns the wire form, e.g. "Up"
func (c Choice) String() string { return string(c) }

// Kind classifies entities
type Kind string

const (
	KindPlayer Kind = "player"
	KindEnemy  Kind = "enemy"
	KindObject Kind = "object"
)

// Outcome is the terminal state of a simulation
type Outcome string

const (
	Playing Outcome = "playing"
	Won     Outcome = "won"
	Lost    Outcome = "lost"
)

// ID identifies an entity for its whole lifetime
type ID int

// NoID stands for "no entity", e.g. a kill without a killer
const NoID ID = -1

var (
	ErrInvalidWidth   = errors.New("width must be positive")
	ErrLengthMismatch = errors.New("tiles and entities must have the same length")
	ErrNotRectangular = errors.New("grid is not a rectangle")
	ErrPlayerCount    = errors.New("there must be exactly one player entity")
	ErrMissingTile    = errors.New("every cell needs a tile")
	ErrNotStarted     = errors.New("engine not started")
	ErrAlreadyStarted = errors.New("engine already started")
	ErrUnknownChoice  = errors.New("unknown player choice")
)
