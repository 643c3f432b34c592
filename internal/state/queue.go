package state

import "fmt"

// Queue is the ordered waiting line of students that have no session yet.
// Order is meaningful: index 0 is the front of the line.
type Queue struct {
	order   []string
	members map[string]*Participant
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{members: make(map[string]*Participant)}
}

// Join places an unplaced participant into the queue. A negative index
// appends; an index past the end is clamped to the end.
func (q *Queue) Join(p *Participant, index int) error {
	if p.Placed() {
		return fmt.Errorf("%s is already in %q: %w", p.ID(), p.Location(), ErrInvalidState)
	}
	q.order = insertID(q.order, p.ID(), index)
	q.members[p.ID()] = p
	p.location = LocationQueue
	return nil
}

// Leave removes a queued participant and resets them to unplaced.
func (q *Queue) Leave(p *Participant) error {
	if _, ok := q.members[p.ID()]; !ok {
		return fmt.Errorf("%s is not in the queue: %w", p.ID(), ErrInvalidState)
	}
	q.order = removeID(q.order, p.ID())
	delete(q.members, p.ID())
	p.location = ""
	return nil
}

// Reorder replaces the queue order with the given permutation. The ids must
// be exactly the current membership; anything else rejects the whole call.
func (q *Queue) Reorder(ids []string) error {
	if !samePermutation(q.order, ids) {
		return fmt.Errorf("reorder ids do not match queue membership: %w", ErrConflict)
	}
	q.order = append([]string(nil), ids...)
	return nil
}

// Contains reports whether the given user id is queued.
func (q *Queue) Contains(id string) bool {
	_, ok := q.members[id]
	return ok
}

// Len returns the number of queued participants.
func (q *Queue) Len() int { return len(q.order) }

// Members returns the queued participants front-of-line first.
func (q *Queue) Members() []*Participant {
	out := make([]*Participant, 0, len(q.order))
	for _, id := range q.order {
		out = append(out, q.members[id])
	}
	return out
}

// IDs returns the queue order front-of-line first.
func (q *Queue) IDs() []string {
	return append([]string(nil), q.order...)
}

// insertID inserts id into order at index, appending when index is negative
// and clamping when it is past the end.
func insertID(order []string, id string, index int) []string {
	if index < 0 || index > len(order) {
		index = len(order)
	}
	order = append(order, "")
	copy(order[index+1:], order[index:])
	order[index] = id
	return order
}

// removeID removes the first occurrence of id from order.
func removeID(order []string, id string) []string {
	for i, cur := range order {
		if cur == id {
			return append(order[:i], order[i+1:]...)
		}
	}
	return order
}

// samePermutation reports whether ids is a permutation of current, with no
// duplicates or strays.
func samePermutation(current, ids []string) bool {
	if len(current) != len(ids) {
		return false
	}
	seen := make(map[string]bool, len(current))
	for _, id := range current {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			return false
		}
		delete(seen, id)
	}
	return len(seen) == 0
}
