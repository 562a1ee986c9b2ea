package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/chatroom-server/internal/store"
	"github.com/vovakirdan/chatroom-server/internal/store/sqlite"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event) {
	t.Helper()

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event: %+v", ev)
	default:
	}
}

type tagResolver struct {
	unknown map[string]bool
}

func (r tagResolver) ResolveUser(_ context.Context, battleTag string) (User, error) {
	if r.unknown[battleTag] {
		return User{}, errors.New("no such user")
	}
	return NewUser(battleTag), nil
}

// recordedCall is one call made to recordingBroadcaster.
type recordedCall struct {
	Op    string // join, leave, group, caller
	Conn  string
	Room  string
	Event *Event
}

type recordingBroadcaster struct {
	mu    sync.Mutex
	calls []recordedCall
}

func (b *recordingBroadcaster) record(c recordedCall) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, c)
}

func (b *recordingBroadcaster) JoinGroup(connID, room string) {
	b.record(recordedCall{Op: "join", Conn: connID, Room: room})
}

func (b *recordingBroadcaster) LeaveGroup(connID, room string) {
	b.record(recordedCall{Op: "leave", Conn: connID, Room: room})
}

func (b *recordingBroadcaster) SendToGroup(room string, event *Event) {
	b.record(recordedCall{Op: "group", Room: room, Event: event})
}

func (b *recordingBroadcaster) SendToCaller(connID string, event *Event) {
	b.record(recordedCall{Op: "caller", Conn: connID, Event: event})
}

func (b *recordingBroadcaster) snapshot() []recordedCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]recordedCall, len(b.calls))
	copy(out, b.calls)
	return out
}

func (b *recordingBroadcaster) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

type failingStore struct {
	store.Store
	loadSettingsErr error
	saveSettingsErr error
	loadBanErr      error
}

func (s *failingStore) LoadSettings(ctx context.Context, battleTag string) (*store.ChatSettings, error) {
	if s.loadSettingsErr != nil {
		return nil, s.loadSettingsErr
	}
	return s.Store.LoadSettings(ctx, battleTag)
}

func (s *failingStore) SaveSettings(ctx context.Context, settings *store.ChatSettings) error {
	if s.saveSettingsErr != nil {
		return s.saveSettingsErr
	}
	return s.Store.SaveSettings(ctx, settings)
}

func (s *failingStore) LoadBan(ctx context.Context, battleTag string) (*store.Ban, error) {
	if s.loadBanErr != nil {
		return nil, s.loadBanErr
	}
	return s.Store.LoadBan(ctx, battleTag)
}

type hubFixture struct {
	hub         *Hub
	connections *ConnectionMapping
	history     *ChatHistory
	store       *failingStore
	broadcaster *recordingBroadcaster
}

var fixedNow = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

func newHubFixture(t *testing.T) *hubFixture {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.Migrate)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	f := &hubFixture{
		connections: NewConnectionMapping(),
		history:     NewChatHistory(10),
		store:       &failingStore{Store: st},
		broadcaster: &recordingBroadcaster{},
	}
	f.hub = NewHub(HubDeps{
		Connections: f.connections,
		History:     f.history,
		Users:       tagResolver{unknown: map[string]bool{"ghost#0": true}},
		Settings:    f.store,
		Bans:        f.store,
		Groups:      f.broadcaster,
		Now:         func() time.Time { return fixedNow },
	})
	return f
}
