package draft

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPick is returned for pick ids outside 1..48.
	ErrInvalidPick = errors.New("invalid pick")
	// ErrIncompleteObservation is returned when fewer cards resolved than
	// the pick position expects.
	ErrIncompleteObservation = errors.New("incomplete observation")
	// ErrNoVotes is returned when a commit is requested before anyone voted.
	ErrNoVotes = errors.New("no votes")
	// ErrAlreadyCommitted is returned when a pick already holds a
	// different selection.
	ErrAlreadyCommitted = errors.New("pick already committed")
	// ErrInvalidIndex is returned for a selection outside the offered cards.
	ErrInvalidIndex = errors.New("invalid card index")
	// ErrNotOwner is returned when someone other than the game owner commits.
	ErrNotOwner = errors.New("user does not own this game")
)

// IncompleteObservationError reports how many cards were expected and how
// many were resolved.
type IncompleteObservationError struct {
	PickID   int
	Expected int
	Resolved int
}

func (e *IncompleteObservationError) Error() string {
	return fmt.Sprintf("pick %d: expected %d cards, resolved %d", e.PickID, e.Expected, e.Resolved)
}

func (e *IncompleteObservationError) Unwrap() error {
	return ErrIncompleteObservation
}
