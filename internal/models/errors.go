package models

import "errors"

// Domain errors shared across repositories and services.
var (
	ErrGameNotFound      = errors.New("game not found")
	ErrScenarioNotFound  = errors.New("scenario not found")
	ErrNationNotFound    = errors.New("nation not found")
	ErrTurnNotFound      = errors.New("turn not found")
	ErrPlayerNationUnset = errors.New("player nation is not set for this game")
	ErrSeedNationMissing = errors.New("player nation not found in scenario initial world state")
	ErrPlayerNationFixed = errors.New("player nation is already set and cannot change")
	ErrNationNotInGame   = errors.New("nation does not belong to this game")
	ErrTurnConflict      = errors.New("turn was committed concurrently, please retry")
	ErrScenarioImmutable = errors.New("built-in scenarios cannot be modified")
	ErrGameNotActive     = errors.New("game is not active")
)
