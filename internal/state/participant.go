package state

import "github.com/branyang02/smart-oh-ws-server/internal/models"

// Role distinguishes the two kinds of participants. The string values are
// the ones stored in the auth provider's user_class table and rendered by
// the front end.
type Role string

const (
	RoleStudent Role = "student"
	RoleTA      Role = "TA"
)

// ParseRole maps a raw role string onto a Role.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleStudent, RoleTA:
		return Role(s), true
	default:
		return "", false
	}
}

// LocationQueue is the column id of the waiting queue. Session ids share the
// same namespace, so no session may use this id.
const LocationQueue = "queue"

// Participant is a directory entry for one student or TA in a room.
//
// location is owned exclusively by this package: "" while unplaced,
// LocationQueue while waiting, or the id of the session the participant is
// in. Queue and Session mutators keep it consistent with the collection that
// actually contains the participant; nothing outside this package writes it.
type Participant struct {
	User models.User
	Role Role

	location string
}

// NewParticipant returns an unplaced participant.
func NewParticipant(user models.User, role Role) *Participant {
	return &Participant{User: user, Role: role}
}

// ID is the participant's stable user id, reused across reconnects.
func (p *Participant) ID() string { return p.User.ID }

// Location reports where the participant currently is: "" (unplaced),
// LocationQueue, or a session id.
func (p *Participant) Location() string { return p.location }

// Placed reports whether the participant occupies the queue or a session.
func (p *Participant) Placed() bool { return p.location != "" }
