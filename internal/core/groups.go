package core

import "sync"

// Broadcaster is the room-scoped fan-out the hub publishes events through.
type Broadcaster interface {
	JoinGroup(connID, room string)
	LeaveGroup(connID, room string)
	SendToGroup(room string, event *Event)
	SendToCaller(connID string, event *Event)
}

// Groups is an in-process Broadcaster delivering events to registered clients.
type Groups struct {
	mu      sync.RWMutex
	clients map[string]*Client
	groups  map[string]map[string]*Client
	dropped func(connID string)
}

// NewGroups creates an empty group registry. onDrop, if not nil, is called
// whenever an event is discarded because a client's buffer is full.
func NewGroups(onDrop func(connID string)) *Groups {
	return &Groups{
		clients: make(map[string]*Client),
		groups:  make(map[string]map[string]*Client),
		dropped: onDrop,
	}
}

// RegisterClient makes c addressable by its id.
func (g *Groups) RegisterClient(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clients[c.ID] = c
}

// UnregisterClient removes c from every group and closes its event channel.
func (g *Groups) UnregisterClient(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.clients[c.ID] != c {
		return
	}
	delete(g.clients, c.ID)
	for room, members := range g.groups {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(g.groups, room)
		}
	}
	close(c.Events)
}

// JoinGroup adds a registered connection to room. Unknown connections are ignored.
func (g *Groups) JoinGroup(connID, room string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.clients[connID]
	if !ok {
		return
	}
	members, ok := g.groups[room]
	if !ok {
		members = make(map[string]*Client)
		g.groups[room] = members
	}
	members[connID] = c
}

// LeaveGroup removes a connection from room.
func (g *Groups) LeaveGroup(connID, room string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	members, ok := g.groups[room]
	if !ok {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(g.groups, room)
	}
}

// SendToGroup delivers event to every member of room.
func (g *Groups) SendToGroup(room string, event *Event) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for id, c := range g.groups[room] {
		if !c.deliver(event) {
			g.onDrop(id)
		}
	}
}

// SendToCaller delivers event to a single connection.
func (g *Groups) SendToCaller(connID string, event *Event) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	c, ok := g.clients[connID]
	if !ok {
		return
	}
	if !c.deliver(event) {
		g.onDrop(connID)
	}
}

// GroupSize returns the number of connections in room.
func (g *Groups) GroupSize(room string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.groups[room])
}

func (g *Groups) onDrop(connID string) {
	if g.dropped != nil {
		g.dropped(connID)
	}
}
