package game

import "errors"

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrNameTaken      = errors.New("player name already taken")
	ErrInvalidName    = errors.New("invalid player name")

	// ErrNotPermitted rejects a gameplay action the player may not take right now.
	ErrNotPermitted = errors.New("not permitted")

	ErrUnknownActivity   = errors.New("unknown activity kind")
	ErrLifecycleMismatch = errors.New("activity lifecycle mismatch")
	ErrSessionMismatch   = errors.New("activity bound to another session")

	ErrNotEquippable = errors.New("item cannot be equipped")
)
