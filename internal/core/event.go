package core

import "github.com/vovakirdan/chatroom-server/internal/store"

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventPlayerBannedFromChat tells a banned caller why it was not admitted.
	EventPlayerBannedFromChat EventKind = iota
	// EventUserEntered notifies a room that a user joined.
	EventUserEntered
	// EventUserLeft notifies a room that a user left.
	EventUserLeft
	// EventStartChat hydrates the caller with the occupants and history of its room.
	EventStartChat
	// EventReceiveMessage delivers a chat message to a room.
	EventReceiveMessage
	// EventError reports a failed invocation back to its caller.
	EventError
)

var eventNames = [...]string{
	EventPlayerBannedFromChat: "PlayerBannedFromChat",
	EventUserEntered:          "UserEntered",
	EventUserLeft:             "UserLeft",
	EventStartChat:            "StartChat",
	EventReceiveMessage:       "ReceiveMessage",
	EventError:                "Error",
}

// String returns the wire name of the event.
func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "Unknown"
	}
	return eventNames[k]
}

// Event is sent to clients to describe what happened in the system.
// Which fields are set depends on Kind.
type Event struct {
	Kind     EventKind
	Room     string
	User     User          // UserEntered, UserLeft
	Users    []User        // StartChat
	Messages []ChatMessage // StartChat
	Message  ChatMessage   // ReceiveMessage
	Ban      *store.Ban    // PlayerBannedFromChat
	Err      *CoreError    // Error
}

// ErrorEvent wraps a CoreError so it travels the same queue as other events.
func ErrorEvent(code, msg string) *Event {
	return &Event{Kind: EventError, Err: &CoreError{Code: code, Message: msg}}
}
