package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/metrics"
	"github.com/vovakirdan/chatroom-server/internal/store"
)

// DefaultRoom is where users without saved settings land.
const DefaultRoom = "W3C Lounge"

// UserResolver maps a battle tag to a chat user.
type UserResolver interface {
	ResolveUser(ctx context.Context, battleTag string) (User, error)
}

// HubDeps lists the collaborators of a Hub.
type HubDeps struct {
	Connections *ConnectionMapping
	History     *ChatHistory
	Users       UserResolver
	Settings    store.SettingsStore
	Bans        store.BanStore
	Groups      Broadcaster

	// DefaultRoom defaults to DefaultRoom.
	DefaultRoom string
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *zerolog.Logger
}

// Hub coordinates logins, room switches, messages and disconnects.
type Hub struct {
	connections *ConnectionMapping
	history     *ChatHistory
	users       UserResolver
	settings    store.SettingsStore
	bans        store.BanStore
	groups      Broadcaster
	defaultRoom string
	now         func() time.Time
	log         *zerolog.Logger

	// mu serializes mapping changes with the presence snapshot and broadcasts
	// that follow them, so observers never see a user in two rooms.
	mu sync.Mutex
}

// NewHub creates a hub from its collaborators.
func NewHub(deps HubDeps) *Hub {
	h := &Hub{
		connections: deps.Connections,
		history:     deps.History,
		users:       deps.Users,
		settings:    deps.Settings,
		bans:        deps.Bans,
		groups:      deps.Groups,
		defaultRoom: deps.DefaultRoom,
		now:         deps.Now,
		log:         deps.Logger,
	}
	if h.connections == nil {
		h.connections = NewConnectionMapping()
	}
	if h.history == nil {
		h.history = NewChatHistory(DefaultHistorySize)
	}
	if h.defaultRoom == "" {
		h.defaultRoom = DefaultRoom
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.log == nil {
		nop := zerolog.Nop()
		h.log = &nop
	}
	return h
}

// LoginAs admits the connection into the user's default room, unless the user is banned.
// A connection already mapped to another room leaves it first.
func (h *Hub) LoginAs(ctx context.Context, connID, battleTag string) error {
	user, err := h.resolveUser(ctx, battleTag)
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.LoginError).Inc()
		return err
	}

	settings, err := h.loadSettings(ctx, user.BattleTag)
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.LoginError).Inc()
		return err
	}

	ban, err := h.loadBan(ctx, strings.ToLower(user.BattleTag))
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.LoginError).Inc()
		return err
	}

	if IsBanned(ban, h.now()) {
		h.log.Info().Str("conn_id", connID).Str("battle_tag", battleTag).Str("end_date", ban.EndDate).Msg("banned user rejected")
		metrics.Logins.WithLabelValues(metrics.LoginBanned).Inc()
		h.groups.SendToCaller(connID, &Event{Kind: EventPlayerBannedFromChat, Ban: ban})
		return nil
	}

	room := settings.DefaultChat

	h.mu.Lock()
	if prevRoom, ok := h.connections.GetRoom(connID); ok && prevRoom != room {
		prevUser, _ := h.connections.GetUser(connID)
		h.connections.Remove(connID)
		h.groups.LeaveGroup(connID, prevRoom)
		h.groups.SendToGroup(prevRoom, &Event{Kind: EventUserLeft, Room: prevRoom, User: prevUser})
	}
	h.connections.Add(connID, room, user)
	h.groups.JoinGroup(connID, room)
	usersOfRoom := h.connections.GetUsersOfRoom(room)
	h.groups.SendToGroup(room, &Event{Kind: EventUserEntered, Room: room, User: user})
	h.groups.SendToCaller(connID, &Event{
		Kind:     EventStartChat,
		Room:     room,
		Users:    usersOfRoom,
		Messages: h.history.GetMessages(room),
	})
	h.mu.Unlock()

	metrics.Logins.WithLabelValues(metrics.LoginOK).Inc()
	h.log.Debug().Str("conn_id", connID).Str("battle_tag", battleTag).Str("room", room).Msg("user logged in")
	return nil
}

// SwitchRoom moves a logged-in connection to room and remembers it as the user's default.
// Returns a CoreError with ErrCodeNotInRoom if the connection never logged in.
func (h *Hub) SwitchRoom(ctx context.Context, connID, battleTag, room string) error {
	user, err := h.resolveUser(ctx, battleTag)
	if err != nil {
		return err
	}
	settings, err := h.loadSettings(ctx, user.BattleTag)
	if err != nil {
		return err
	}

	h.mu.Lock()
	oldRoom, ok := h.connections.GetRoom(connID)
	if !ok {
		h.mu.Unlock()
		return coreError(ErrCodeNotInRoom, "login required before switching rooms", ErrNotInRoom)
	}

	h.connections.Remove(connID)
	h.connections.Add(connID, room, user)

	h.groups.LeaveGroup(connID, oldRoom)
	h.groups.JoinGroup(connID, room)

	usersOfRoom := h.connections.GetUsersOfRoom(room)
	h.groups.SendToGroup(oldRoom, &Event{Kind: EventUserLeft, Room: oldRoom, User: user})
	h.groups.SendToGroup(room, &Event{Kind: EventUserEntered, Room: room, User: user})
	h.groups.SendToCaller(connID, &Event{
		Kind:     EventStartChat,
		Room:     room,
		Users:    usersOfRoom,
		Messages: h.history.GetMessages(room),
	})
	h.mu.Unlock()

	metrics.RoomSwitches.Inc()
	h.log.Debug().Str("conn_id", connID).Str("battle_tag", battleTag).Str("from", oldRoom).Str("room", room).Msg("user switched room")

	settings.Update(room)
	if err := h.settings.SaveSettings(ctx, settings); err != nil {
		return coreError(ErrCodeUnavailable, "failed to save chat settings", fmt.Errorf("save settings: %w", err))
	}
	return nil
}

// SendMessage relays text to the caller's room. Blank text and callers
// without a room are dropped silently.
func (h *Hub) SendMessage(ctx context.Context, connID, battleTag, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	user, err := h.resolveUser(ctx, battleTag)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.connections.GetRoom(connID)
	if !ok {
		h.log.Debug().Str("conn_id", connID).Str("battle_tag", battleTag).Msg("message from connection without room dropped")
		return nil
	}

	msg := ChatMessage{User: user, Text: text, Time: h.now().UTC()}
	h.history.AddMessage(room, msg)
	h.groups.SendToGroup(room, &Event{Kind: EventReceiveMessage, Room: room, Message: msg})
	metrics.Messages.Inc()
	return nil
}

// Disconnect removes the connection from its room and tells the room it left.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	user, ok := h.connections.GetUser(connID)
	if !ok {
		return
	}
	room, _ := h.connections.GetRoom(connID)
	h.connections.Remove(connID)
	h.groups.LeaveGroup(connID, room)
	h.groups.SendToGroup(room, &Event{Kind: EventUserLeft, Room: room, User: user})

	h.log.Debug().Str("conn_id", connID).Str("battle_tag", user.BattleTag).Str("room", room).Msg("user disconnected")
}

// UsersOfRoom returns the current occupants of room.
func (h *Hub) UsersOfRoom(room string) []User {
	return h.connections.GetUsersOfRoom(room)
}

// MessagesOfRoom returns the retained history of room.
func (h *Hub) MessagesOfRoom(room string) []ChatMessage {
	return h.history.GetMessages(room)
}

func (h *Hub) resolveUser(ctx context.Context, battleTag string) (User, error) {
	user, err := h.users.ResolveUser(ctx, battleTag)
	if err != nil {
		return User{}, coreError(ErrCodeUnknownUser, "unknown user", fmt.Errorf("resolve user %q: %w", battleTag, err))
	}
	return user, nil
}

func (h *Hub) loadSettings(ctx context.Context, battleTag string) (*store.ChatSettings, error) {
	settings, err := h.settings.LoadSettings(ctx, battleTag)
	if errors.Is(err, store.ErrNotFound) {
		return store.NewChatSettings(battleTag, h.defaultRoom), nil
	}
	if err != nil {
		return nil, coreError(ErrCodeUnavailable, "failed to load chat settings", fmt.Errorf("load settings: %w", err))
	}
	return settings, nil
}

func (h *Hub) loadBan(ctx context.Context, battleTag string) (*store.Ban, error) {
	ban, err := h.bans.LoadBan(ctx, battleTag)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, coreError(ErrCodeUnavailable, "failed to load ban", fmt.Errorf("load ban: %w", err))
	}
	return ban, nil
}
