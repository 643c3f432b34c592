package protocol

import (
	"encoding/json"
	"fmt"
)

// Action names the mutations a client may request. The strings are the wire
// values the front end sends.
type Action string

const (
	ActionJoinQueue                Action = "join_queue"
	ActionLeaveQueue               Action = "leave_queue"
	ActionCreateSession            Action = "create_session"
	ActionCreateSessionWithID      Action = "create_session_with_id"
	ActionJoinSession              Action = "join_session"
	ActionLeaveSession             Action = "leave_session"
	ActionAssignStudentToSession   Action = "assign_student_to_session"
	ActionRemoveStudentFromSession Action = "remove_student_from_session"
	ActionAssignStudentToQueue     Action = "assign_student_to_queue"
	ActionReorderQueue             Action = "reorder_queue"
	ActionReorderSession           Action = "reorder_session"
)

// Envelope is one inbound client message. Only the fields relevant to the
// given action are set; Index is a pointer so "insert here" and "append"
// stay distinguishable.
type Envelope struct {
	Action    Action   `json:"action"`
	SessionID string   `json:"session_id,omitempty"`
	StudentID string   `json:"student_id,omitempty"`
	Index     *int     `json:"index,omitempty"`
	Order     []string `json:"order,omitempty"`
}

// InsertIndex translates the optional wire index into the state package's
// convention: -1 means append.
func (e *Envelope) InsertIndex() int {
	if e.Index == nil {
		return -1
	}
	return *e.Index
}

// DecodeEnvelope parses an inbound message. It rejects unparseable JSON and
// messages without an action; unknown action values are left for the
// dispatcher to reject so the error can name the action.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}
	if env.Action == "" {
		return nil, fmt.Errorf("message has no action")
	}
	return &env, nil
}

// ErrorPayload is sent to the acting connection only when its action is
// rejected. Rejections are never broadcast.
type ErrorPayload struct {
	Error string `json:"error"`
}

// MarshalError renders an ErrorPayload for the wire.
func MarshalError(err error) []byte {
	data, marshalErr := json.Marshal(ErrorPayload{Error: err.Error()})
	if marshalErr != nil {
		return []byte(`{"error":"internal error"}`)
	}
	return data
}
