package state

import "errors"

// Every rejected action wraps one of these four sentinels so callers can
// classify failures without string matching. A rejected action never leaves
// partial effects behind.
var (
	// ErrNotFound: a referenced user or session id is unknown to the room.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: the participant's current placement does not satisfy
	// the action's precondition (e.g. leaving a queue they are not in).
	ErrInvalidState = errors.New("invalid state")

	// ErrConflict: an id collision or a reorder whose id set does not match
	// the current membership.
	ErrConflict = errors.New("conflict")

	// ErrForbidden: the acting role is not allowed to perform the action.
	ErrForbidden = errors.New("forbidden")
)
