package core

import "sync"

type connEntry struct {
	room string
	user User
}

// ConnectionMapping is the registry of live connections and the rooms they occupy.
// A connection maps to at most one room at a time.
type ConnectionMapping struct {
	mu      sync.RWMutex
	entries map[string]connEntry
	rooms   map[string][]string // room -> connection ids in insertion order
}

// NewConnectionMapping creates an empty registry.
func NewConnectionMapping() *ConnectionMapping {
	return &ConnectionMapping{
		entries: make(map[string]connEntry),
		rooms:   make(map[string][]string),
	}
}

// Add maps connID to room and user, replacing any previous entry for connID.
func (m *ConnectionMapping) Add(connID, room string, user User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(connID)
	m.entries[connID] = connEntry{room: room, user: user}
	m.rooms[room] = append(m.rooms[room], connID)
}

// Remove deletes the entry for connID. Unknown ids are ignored.
func (m *ConnectionMapping) Remove(connID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.removeLocked(connID)
}

func (m *ConnectionMapping) removeLocked(connID string) {
	entry, ok := m.entries[connID]
	if !ok {
		return
	}
	delete(m.entries, connID)

	ids := m.rooms[entry.room]
	for i, id := range ids {
		if id == connID {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(ids) == 0 {
		delete(m.rooms, entry.room)
		return
	}
	m.rooms[entry.room] = ids
}

// GetRoom returns the room of connID.
func (m *ConnectionMapping) GetRoom(connID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[connID]
	return entry.room, ok
}

// GetUser returns the user of connID.
func (m *ConnectionMapping) GetUser(connID string) (User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[connID]
	return entry.user, ok
}

// GetUsersOfRoom lists users of every connection currently in room,
// in the order the connections were added. Never nil.
func (m *ConnectionMapping) GetUsersOfRoom(room string) []User {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := m.rooms[room]
	users := make([]User, 0, len(ids))
	for _, id := range ids {
		users = append(users, m.entries[id].user)
	}
	return users
}

// Len returns the number of mapped connections.
func (m *ConnectionMapping) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
