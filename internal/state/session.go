package state

import "fmt"

// Session is a named group of TAs and students working together. Member
// order is significant and interleaves both roles.
//
// A session with zero TAs is only valid transiently, inside the single room
// action that is about to add its first TA or that deletes it; the Room is
// responsible for destroying a session the moment its last TA leaves.
type Session struct {
	id      string
	order   []string
	members map[string]*Participant
}

// NewSession returns an empty session with the given id.
func NewSession(id string) *Session {
	return &Session{id: id, members: make(map[string]*Participant)}
}

// ID returns the session's stable id.
func (s *Session) ID() string { return s.id }

// AddTA inserts a TA at index (negative appends, past-the-end clamps).
// The caller must have removed the TA from any prior location first; this
// method only guards against duplicates within the session itself.
func (s *Session) AddTA(p *Participant, index int) error {
	if p.Role != RoleTA {
		return fmt.Errorf("%s is not a TA: %w", p.ID(), ErrInvalidState)
	}
	return s.add(p, index)
}

// AddStudent inserts a student at index, with the same contract as AddTA.
func (s *Session) AddStudent(p *Participant, index int) error {
	if p.Role != RoleStudent {
		return fmt.Errorf("%s is not a student: %w", p.ID(), ErrInvalidState)
	}
	return s.add(p, index)
}

func (s *Session) add(p *Participant, index int) error {
	if _, ok := s.members[p.ID()]; ok {
		return fmt.Errorf("%s is already in session %q: %w", p.ID(), s.id, ErrInvalidState)
	}
	s.order = insertID(s.order, p.ID(), index)
	s.members[p.ID()] = p
	p.location = s.id
	return nil
}

// Remove takes a member out of the session and resets them to unplaced.
// After removing a TA the caller must check TACount and destroy the session
// in the same step if it reached zero.
func (s *Session) Remove(p *Participant) error {
	if _, ok := s.members[p.ID()]; !ok {
		return fmt.Errorf("%s is not in session %q: %w", p.ID(), s.id, ErrInvalidState)
	}
	s.order = removeID(s.order, p.ID())
	delete(s.members, p.ID())
	p.location = ""
	return nil
}

// Reorder replaces the member order with the given permutation, all or
// nothing, scoped to this session's membership.
func (s *Session) Reorder(ids []string) error {
	if !samePermutation(s.order, ids) {
		return fmt.Errorf("reorder ids do not match session %q membership: %w", s.id, ErrConflict)
	}
	s.order = append([]string(nil), ids...)
	return nil
}

// Contains reports whether the given user id is a member.
func (s *Session) Contains(id string) bool {
	_, ok := s.members[id]
	return ok
}

// TACount returns how many members are TAs.
func (s *Session) TACount() int {
	n := 0
	for _, p := range s.members {
		if p.Role == RoleTA {
			n++
		}
	}
	return n
}

// Len returns the number of members.
func (s *Session) Len() int { return len(s.order) }

// Members returns the members in session order.
func (s *Session) Members() []*Participant {
	out := make([]*Participant, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.members[id])
	}
	return out
}

// IDs returns the member ids in session order.
func (s *Session) IDs() []string {
	return append([]string(nil), s.order...)
}

// orphanAll clears every remaining member's location without requeueing
// them. Used by the Room when the session is destroyed.
func (s *Session) orphanAll() {
	for _, p := range s.members {
		p.location = ""
	}
	s.order = nil
	s.members = make(map[string]*Participant)
}
