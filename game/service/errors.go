package service

import "errors"

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrLevelNotFound        = errors.New("level not found")
	ErrCellOutOfBounds      = errors.New("cell out of bounds")
	ErrLevelEnded           = errors.New("level has ended, reset to play again")
)
