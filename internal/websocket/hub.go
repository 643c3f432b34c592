package websocket

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/branyang02/smart-oh-ws-server/internal/protocol"
	"github.com/branyang02/smart-oh-ws-server/internal/state"
	"github.com/branyang02/smart-oh-ws-server/pkg/logger"
)

// Hub is the single-writer actor for one class's room. All mutations of the
// room state flow through Run's select loop, one at a time, which is what
// makes each action's validate-then-mutate sequence atomic: no lock is ever
// taken on the Room itself.
type Hub struct {
	room *state.Room

	// clients is the connection registry: at most one live connection per
	// user id. Only the Run goroutine touches it.
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	actions    chan inboundAction
	snapshots  chan chan []byte
	shutdown   chan struct{}
}

type inboundAction struct {
	client   *Client
	envelope *protocol.Envelope
}

// NewHub creates the actor for a class. The caller starts Run in its own
// goroutine.
func NewHub(classID string) *Hub {
	return &Hub{
		room:       state.NewRoom(classID),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		actions:    make(chan inboundAction, 64),
		snapshots:  make(chan chan []byte),
		shutdown:   make(chan struct{}),
	}
}

// Register hands a freshly-authenticated connection to the hub.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Snapshot returns the current board as JSON, serialized through the actor
// so it never observes a half-applied action.
func (h *Hub) Snapshot() []byte {
	reply := make(chan []byte, 1)
	select {
	case h.snapshots <- reply:
		return <-reply
	case <-h.shutdown:
		return nil
	}
}

// Shutdown stops the Run loop and closes every client's send channel.
func (h *Hub) Shutdown() {
	select {
	case <-h.shutdown:
	default:
		close(h.shutdown)
	}
}

// Run processes registrations, disconnects and actions in arrival order.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.handleRegister(c)

		case c := <-h.unregister:
			h.handleUnregister(c)

		case in := <-h.actions:
			if err := h.apply(in.client, in.envelope); err != nil {
				logger.Debug("room %s: rejected %s from %s: %v",
					h.room.ClassID(), in.envelope.Action, in.client.user.ID, err)
				in.client.enqueue(protocol.MarshalError(err))
				continue
			}
			h.broadcast()

		case reply := <-h.snapshots:
			reply <- h.marshalBoard()

		case <-h.shutdown:
			for _, c := range h.clients {
				close(c.send)
			}
			return
		}
	}
}

// handleRegister adds the connection to the registry, replacing any earlier
// connection the same user still has open, and broadcasts the new state.
func (h *Hub) handleRegister(c *Client) {
	if prev, ok := h.clients[c.user.ID]; ok {
		close(prev.send)
	}
	h.clients[c.user.ID] = c
	h.room.Connect(c.user, c.role)
	logger.Info("room %s: %s connected as %s", h.room.ClassID(), c.user.ID, c.role)
	h.broadcast()
}

// handleUnregister drops the connection. The room keeps queued or
// in-session participants so a reconnect restores their spot; everyone else
// is removed from the directory. Remaining connections see the new state.
func (h *Hub) handleUnregister(c *Client) {
	if h.clients[c.user.ID] != c {
		return // already replaced by a newer connection
	}
	delete(h.clients, c.user.ID)
	close(c.send)
	h.room.Disconnect(c.user.ID)
	logger.Info("room %s: %s disconnected", h.room.ClassID(), c.user.ID)
	if len(h.clients) > 0 {
		h.broadcast()
	}
}

// apply maps an envelope onto a room action. A non-nil error means the room
// is untouched and only the sender hears about it.
func (h *Hub) apply(c *Client, env *protocol.Envelope) error {
	actor := c.user.ID
	index := env.InsertIndex()

	switch env.Action {
	case protocol.ActionJoinQueue:
		return h.room.JoinQueue(actor, index)
	case protocol.ActionLeaveQueue:
		return h.room.LeaveQueue(actor)
	case protocol.ActionCreateSession:
		_, err := h.room.CreateSession(actor, index)
		return err
	case protocol.ActionCreateSessionWithID:
		return h.room.CreateSessionWithID(actor, env.SessionID, index)
	case protocol.ActionJoinSession:
		return h.room.JoinSession(actor, env.SessionID, index)
	case protocol.ActionLeaveSession:
		return h.room.LeaveSession(actor)
	case protocol.ActionAssignStudentToSession:
		return h.room.AssignStudentToSession(actor, env.StudentID, env.SessionID, index)
	case protocol.ActionRemoveStudentFromSession:
		return h.room.RemoveStudentFromSession(actor, env.StudentID)
	case protocol.ActionAssignStudentToQueue:
		return h.room.AssignStudentToQueue(actor, env.StudentID, index)
	case protocol.ActionReorderQueue:
		return h.room.ReorderQueue(actor, env.Order)
	case protocol.ActionReorderSession:
		return h.room.ReorderSession(actor, env.SessionID, env.Order)
	default:
		return fmt.Errorf("unknown action %q", env.Action)
	}
}

// broadcast pushes the full board to every registered connection. Delivery
// is best effort: a client whose send buffer is full is dropped here, the
// same way the read pump drops it on a transport error, and the remaining
// clients still get the snapshot.
func (h *Hub) broadcast() {
	data := h.marshalBoard()
	for id, c := range h.clients {
		select {
		case c.send <- data:
		default:
			delete(h.clients, id)
			close(c.send)
			h.room.Disconnect(id)
			logger.Error("room %s: dropping unresponsive connection for %s", h.room.ClassID(), id)
		}
	}
}

func (h *Hub) marshalBoard() []byte {
	data, err := json.Marshal(protocol.BuildBoard(h.room))
	if err != nil {
		// The board is plain data; this only fires on a programming error.
		logger.Error("room %s: board marshal failed: %v", h.room.ClassID(), err)
		return []byte("{}")
	}
	return data
}

// Manager owns one hub per class, created lazily on first reference. Rooms
// live for the rest of the process: tearing one down would discard the
// retained placements of disconnected participants.
type Manager struct {
	hubs  map[string]*Hub
	mutex sync.Mutex
}

// NewManager returns an empty registry of room hubs.
func NewManager() *Manager {
	return &Manager{hubs: make(map[string]*Hub)}
}

// GetHubForClass returns the hub for a class, starting it if this is the
// first reference.
func (m *Manager) GetHubForClass(classID string) *Hub {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	hub, exists := m.hubs[classID]
	if !exists {
		hub = NewHub(classID)
		m.hubs[classID] = hub
		go hub.Run()
	}
	return hub
}

// LookupHub returns the hub for a class only if it already exists. Read
// paths use this so a GET cannot conjure rooms into being.
func (m *Manager) LookupHub(classID string) (*Hub, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	hub, exists := m.hubs[classID]
	return hub, exists
}
