package core

import "sync"

// DefaultHistorySize is used when a non-positive limit is configured.
const DefaultHistorySize = 50

// ChatHistory keeps the most recent messages of every room.
type ChatHistory struct {
	limit int

	mu    sync.RWMutex
	rooms map[string][]ChatMessage
}

// NewChatHistory creates a history retaining at most limit messages per room.
func NewChatHistory(limit int) *ChatHistory {
	if limit <= 0 {
		limit = DefaultHistorySize
	}
	return &ChatHistory{
		limit: limit,
		rooms: make(map[string][]ChatMessage),
	}
}

// AddMessage appends msg to the room log, evicting the oldest entries over the limit.
func (h *ChatHistory) AddMessage(room string, msg ChatMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	messages := append(h.rooms[room], msg)
	if excess := len(messages) - h.limit; excess > 0 {
		messages = messages[excess:]
	}
	h.rooms[room] = messages
}

// GetMessages returns a copy of the room log, oldest first. Never nil.
func (h *ChatHistory) GetMessages(room string) []ChatMessage {
	h.mu.RLock()
	defer h.mu.RUnlock()

	messages := h.rooms[room]
	out := make([]ChatMessage, len(messages))
	copy(out, messages)
	return out
}
