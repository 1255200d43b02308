package engine

import "errors"

var (
	// ErrEmptyDeck is returned when a draw is attempted on an empty draw pile.
	ErrEmptyDeck = errors.New("draw pile is empty")

	// ErrInvalidCard is returned when the played card is not in the hand.
	ErrInvalidCard = errors.New("card is not in hand")

	// ErrInvalidColorChoice is returned when the chosen color is not a candidate.
	ErrInvalidColorChoice = errors.New("color is not a valid choice")

	ErrNoPendingChoice    = errors.New("no color choice is pending")
	ErrColorChoicePending = errors.New("a color choice is pending")
	ErrGameOver           = errors.New("game is over")
	ErrUnknownColor       = errors.New("unknown color")
	ErrUnknownTurtle      = errors.New("no turtle with that color")
)
