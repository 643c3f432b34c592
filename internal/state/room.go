package state

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/branyang02/smart-oh-ws-server/internal/models"
)

// Room is the authoritative office-hours state for one class: the
// participant directory, the waiting queue, and the live help sessions.
//
// Room does no locking. Exactly one goroutine (the room's hub) may call its
// methods; every action validates all of its preconditions before touching
// anything, so a returned error always means the room is unchanged.
type Room struct {
	classID string

	participants map[string]*Participant
	roster       []string // directory ids in first-seen order
	queue        *Queue
	sessions     map[string]*Session
	sessionOrder []string // session ids in creation order
}

// NewRoom returns an empty room for the given class.
func NewRoom(classID string) *Room {
	return &Room{
		classID:      classID,
		participants: make(map[string]*Participant),
		queue:        NewQueue(),
		sessions:     make(map[string]*Session),
	}
}

// ClassID returns the class this room belongs to.
func (r *Room) ClassID() string { return r.classID }

// Connect records that a user is present. A returning id resumes its
// existing directory entry (and with it any queue position or session
// membership that survived a disconnect); a new id starts out unplaced.
func (r *Room) Connect(user models.User, role Role) *Participant {
	if p, ok := r.participants[user.ID]; ok {
		p.User = user // refresh profile fields, keep placement and role
		return p
	}
	p := NewParticipant(user, role)
	r.participants[user.ID] = p
	r.roster = append(r.roster, user.ID)
	return p
}

// Disconnect drops the directory entry for a user, but only while they are
// unplaced. Queued or in-session participants are retained so a reconnect
// with the same id restores their exact spot.
func (r *Room) Disconnect(userID string) {
	p, ok := r.participants[userID]
	if !ok || p.Placed() {
		return
	}
	delete(r.participants, userID)
	r.roster = removeID(r.roster, userID)
}

// Participant looks up a directory entry by user id.
func (r *Room) Participant(id string) (*Participant, bool) {
	p, ok := r.participants[id]
	return p, ok
}

// Participants returns the directory in first-seen order.
func (r *Room) Participants() []*Participant {
	out := make([]*Participant, 0, len(r.roster))
	for _, id := range r.roster {
		out = append(out, r.participants[id])
	}
	return out
}

// Queue returns the waiting queue.
func (r *Room) Queue() *Queue { return r.queue }

// Session looks up a session by id.
func (r *Room) Session(id string) (*Session, bool) {
	s, ok := r.sessions[id]
	return s, ok
}

// Sessions returns the live sessions in creation order.
func (r *Room) Sessions() []*Session {
	out := make([]*Session, 0, len(r.sessionOrder))
	for _, id := range r.sessionOrder {
		out = append(out, r.sessions[id])
	}
	return out
}

// JoinQueue appends the acting student to the queue, or inserts at index
// when it is non-negative.
func (r *Room) JoinQueue(actorID string, index int) error {
	p, err := r.requireStudent(actorID)
	if err != nil {
		return err
	}
	return r.queue.Join(p, index)
}

// LeaveQueue removes the acting student from the queue.
func (r *Room) LeaveQueue(actorID string) error {
	p, err := r.requireStudent(actorID)
	if err != nil {
		return err
	}
	return r.queue.Leave(p)
}

// CreateSession opens a new session with a generated id and moves the
// acting TA into it, leaving (and possibly destroying) any prior session.
// It returns the new session id.
func (r *Room) CreateSession(actorID string, index int) (string, error) {
	ta, err := r.requireTA(actorID)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := r.createSession(ta, id, index); err != nil {
		return "", err
	}
	return id, nil
}

// CreateSessionWithID is CreateSession with a caller-chosen session id.
func (r *Room) CreateSessionWithID(actorID, sessionID string, index int) error {
	ta, err := r.requireTA(actorID)
	if err != nil {
		return err
	}
	return r.createSession(ta, sessionID, index)
}

func (r *Room) createSession(ta *Participant, sessionID string, index int) error {
	if sessionID == "" {
		return fmt.Errorf("empty session id: %w", ErrConflict)
	}
	if sessionID == LocationQueue {
		return fmt.Errorf("session id %q is reserved: %w", sessionID, ErrConflict)
	}
	if _, ok := r.sessions[sessionID]; ok {
		return fmt.Errorf("session %q already exists: %w", sessionID, ErrConflict)
	}
	r.detach(ta)
	sess := NewSession(sessionID)
	r.sessions[sessionID] = sess
	r.sessionOrder = append(r.sessionOrder, sessionID)
	_ = sess.AddTA(ta, index)
	return nil
}

// JoinSession moves the acting TA into an existing session, leaving (and
// possibly destroying) any prior session first.
func (r *Room) JoinSession(actorID, sessionID string, index int) error {
	ta, err := r.requireTA(actorID)
	if err != nil {
		return err
	}
	sess, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("no session %q: %w", sessionID, ErrNotFound)
	}
	if ta.Location() == sessionID {
		return fmt.Errorf("%s is already in session %q: %w", actorID, sessionID, ErrInvalidState)
	}
	r.detach(ta)
	_ = sess.AddTA(ta, index)
	return nil
}

// LeaveSession removes the acting TA from their current session. If they
// were its last TA the session is destroyed and its students are orphaned:
// location reset to unplaced, not returned to the queue.
func (r *Room) LeaveSession(actorID string) error {
	ta, err := r.requireTA(actorID)
	if err != nil {
		return err
	}
	if loc := ta.Location(); loc == "" || loc == LocationQueue {
		return fmt.Errorf("%s is not in a session: %w", actorID, ErrInvalidState)
	}
	r.detach(ta)
	return nil
}

// AssignStudentToSession moves a queued or in-session student into the
// target session at index.
func (r *Room) AssignStudentToSession(actorID, studentID, sessionID string, index int) error {
	if _, err := r.requireTA(actorID); err != nil {
		return err
	}
	student, err := r.student(studentID)
	if err != nil {
		return err
	}
	sess, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("no session %q: %w", sessionID, ErrNotFound)
	}
	switch student.Location() {
	case "":
		return fmt.Errorf("%s is neither queued nor in a session: %w", studentID, ErrInvalidState)
	case sessionID:
		return fmt.Errorf("%s is already in session %q: %w", studentID, sessionID, ErrInvalidState)
	}
	r.detach(student)
	_ = sess.AddStudent(student, index)
	return nil
}

// RemoveStudentFromSession takes a student out of their session and leaves
// them unplaced. They do not return to the queue automatically; a TA must
// follow up with AssignStudentToQueue if that is wanted.
func (r *Room) RemoveStudentFromSession(actorID, studentID string) error {
	if _, err := r.requireTA(actorID); err != nil {
		return err
	}
	student, err := r.student(studentID)
	if err != nil {
		return err
	}
	if loc := student.Location(); loc == "" || loc == LocationQueue {
		return fmt.Errorf("%s is not in a session: %w", studentID, ErrInvalidState)
	}
	r.detach(student)
	return nil
}

// AssignStudentToQueue moves a student into the queue at index, removing
// them from a session or their current queue spot first.
func (r *Room) AssignStudentToQueue(actorID, studentID string, index int) error {
	if _, err := r.requireTA(actorID); err != nil {
		return err
	}
	student, err := r.student(studentID)
	if err != nil {
		return err
	}
	r.detach(student)
	return r.queue.Join(student, index)
}

// ReorderQueue replaces the queue order with the given permutation.
func (r *Room) ReorderQueue(actorID string, ids []string) error {
	if _, err := r.requireTA(actorID); err != nil {
		return err
	}
	return r.queue.Reorder(ids)
}

// ReorderSession replaces a session's member order with the given
// permutation.
func (r *Room) ReorderSession(actorID, sessionID string, ids []string) error {
	if _, err := r.requireTA(actorID); err != nil {
		return err
	}
	sess, ok := r.sessions[sessionID]
	if !ok {
		return fmt.Errorf("no session %q: %w", sessionID, ErrNotFound)
	}
	return sess.Reorder(ids)
}

// detach removes p from wherever it currently is. Removing the last TA of a
// session destroys the session in the same step, orphaning its students.
// Callers must have validated their own preconditions already; detach
// itself cannot fail.
func (r *Room) detach(p *Participant) {
	switch loc := p.Location(); loc {
	case "":
	case LocationQueue:
		_ = r.queue.Leave(p)
	default:
		sess := r.sessions[loc]
		_ = sess.Remove(p)
		if p.Role == RoleTA && sess.TACount() == 0 {
			r.destroySession(sess)
		}
	}
}

func (r *Room) destroySession(sess *Session) {
	sess.orphanAll()
	delete(r.sessions, sess.ID())
	r.sessionOrder = removeID(r.sessionOrder, sess.ID())
}

func (r *Room) requireTA(actorID string) (*Participant, error) {
	p, ok := r.participants[actorID]
	if !ok {
		return nil, fmt.Errorf("unknown user %q: %w", actorID, ErrNotFound)
	}
	if p.Role != RoleTA {
		return nil, fmt.Errorf("%s is not a TA: %w", actorID, ErrForbidden)
	}
	return p, nil
}

func (r *Room) requireStudent(actorID string) (*Participant, error) {
	p, ok := r.participants[actorID]
	if !ok {
		return nil, fmt.Errorf("unknown user %q: %w", actorID, ErrNotFound)
	}
	if p.Role != RoleStudent {
		return nil, fmt.Errorf("%s is not a student: %w", actorID, ErrForbidden)
	}
	return p, nil
}

func (r *Room) student(id string) (*Participant, error) {
	p, ok := r.participants[id]
	if !ok || p.Role != RoleStudent {
		return nil, fmt.Errorf("no student %q in the room: %w", id, ErrNotFound)
	}
	return p, nil
}
