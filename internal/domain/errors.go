package domain

import "errors"

var (
	// ErrInvalidAction is returned when an action is not legal in the
	// instance's current state.
	ErrInvalidAction = errors.New("action not valid in current state")
	// ErrGameInProgress is returned for a bet while a live instance exists.
	ErrGameInProgress = errors.New("game already in progress")
	// ErrEmptyDeck is returned when a draw exceeds the remaining cards.
	ErrEmptyDeck = errors.New("deck is empty")
	// ErrNotFound is returned for actions that require a live instance.
	ErrNotFound = errors.New("no live game for player")
	// ErrBetBelowMinimum is returned when a bet is under the table minimum.
	ErrBetBelowMinimum = errors.New("bet below table minimum")
)
