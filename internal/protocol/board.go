package protocol

import (
	"time"

	"github.com/branyang02/smart-oh-ws-server/internal/state"
)

// Board is the full-state snapshot broadcast to every connection in a room
// after each accepted mutation. It is a complete render, never a diff:
// clients replace their view wholesale, so they need no merge logic. Field
// names are a contract with the front end's board component.
type Board struct {
	ClassID  string   `json:"classId"`
	AllUsers []Card   `json:"allUsers"`
	Columns  []Column `json:"columns"`
}

// Column is one ordered lane of the board: the queue first, then one column
// per live session in creation order.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Cards []Card `json:"cards"`
}

// Card is a role-tagged participant entry.
type Card struct {
	User BoardUser `json:"user"`
	Role string    `json:"role"`
}

// BoardUser is the participant's profile plus their current column, which
// is how the front end learns each participant's location.
type BoardUser struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	EmailVerified   *time.Time `json:"emailVerified,omitempty"`
	Image           *string    `json:"image,omitempty"`
	CurrentColumnID *string    `json:"currentColumnId,omitempty"`
}

const queueColumnTitle = "Queue"

// BuildBoard renders the room into its broadcast shape. The queue column is
// always present, even when empty.
func BuildBoard(room *state.Room) *Board {
	board := &Board{
		ClassID:  room.ClassID(),
		AllUsers: make([]Card, 0, len(room.Participants())),
		Columns: []Column{{
			ID:    state.LocationQueue,
			Title: queueColumnTitle,
			Cards: cards(room.Queue().Members()),
		}},
	}
	for _, p := range room.Participants() {
		board.AllUsers = append(board.AllUsers, card(p))
	}
	for _, sess := range room.Sessions() {
		board.Columns = append(board.Columns, Column{
			ID:    sess.ID(),
			Title: sess.ID(),
			Cards: cards(sess.Members()),
		})
	}
	return board
}

func cards(members []*state.Participant) []Card {
	out := make([]Card, 0, len(members))
	for _, p := range members {
		out = append(out, card(p))
	}
	return out
}

func card(p *state.Participant) Card {
	u := BoardUser{
		ID:            p.User.ID,
		Name:          p.User.Name,
		Email:         p.User.Email,
		EmailVerified: p.User.EmailVerified,
		Image:         p.User.Image,
	}
	if loc := p.Location(); loc != "" {
		u.CurrentColumnID = &loc
	}
	return Card{User: u, Role: string(p.Role)}
}
