package http

import (
	"context"
	stdhttp "net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/chatroom-server/internal/core"
	"github.com/vovakirdan/chatroom-server/internal/proto"
	"github.com/vovakirdan/chatroom-server/internal/store"
)

func TestHealthEndpoint(t *testing.T) {
	env := newTestEnv(t, "")

	resp, err := env.server.Client().Get(env.server.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, "")

	resp, err := env.server.Client().Get(env.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestWebSocketLoginAndMessage(t *testing.T) {
	env := newTestEnv(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := env.dial(t, ctx)
	connB := env.dial(t, ctx)

	invoke(t, ctx, connA, proto.TargetLoginAs, "", "alice#1")
	start := readUntil(t, ctx, connA, "StartChat")
	if len(start.Arguments) != 3 {
		t.Fatalf("expected 3 StartChat arguments, got %d", len(start.Arguments))
	}
	var room string
	decodeArg(t, start.Arguments[2], &room)
	if room != core.DefaultRoom {
		t.Fatalf("expected default room, got %q", room)
	}

	invoke(t, ctx, connB, proto.TargetLoginAs, "", "bob#2")
	entered := readUntil(t, ctx, connA, "UserEntered")
	var user proto.User
	decodeArg(t, entered.Arguments[0], &user)
	if user.Name != "bob" || user.BattleTag != "bob#2" {
		t.Fatalf("unexpected entered user: %+v", user)
	}

	startB := readUntil(t, ctx, connB, "StartChat")
	var users []proto.User
	decodeArg(t, startB.Arguments[0], &users)
	if len(users) != 2 || users[0].Name != "alice" || users[1].Name != "bob" {
		t.Fatalf("unexpected users of room: %+v", users)
	}

	invoke(t, ctx, connA, proto.TargetSendMessage, "", "alice#1", "  hi there  ")
	received := readUntil(t, ctx, connB, "ReceiveMessage")
	var msg proto.ChatMessage
	decodeArg(t, received.Arguments[0], &msg)
	if msg.User.Name != "alice" || msg.Message != "hi there" {
		t.Fatalf("unexpected message: %+v", msg)
	}

	if history := env.hub.MessagesOfRoom(core.DefaultRoom); len(history) != 1 {
		t.Fatalf("expected one history entry, got %d", len(history))
	}
}

func TestWebSocketSwitchRoomWithoutLogin(t *testing.T) {
	env := newTestEnv(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := env.dial(t, ctx)
	invoke(t, ctx, conn, proto.TargetSwitchRoom, "", "peter#123", "w3c")

	out := readUntil(t, ctx, conn, proto.OutboundTypeError)
	if out.Error == nil || out.Error.Code != core.ErrCodeNotInRoom {
		t.Fatalf("expected not_in_room error, got %+v", out.Error)
	}
}

func TestWebSocketSwitchRoom(t *testing.T) {
	env := newTestEnv(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := env.dial(t, ctx)
	invoke(t, ctx, conn, proto.TargetLoginAs, "", "peter#123")
	readUntil(t, ctx, conn, "StartChat")

	invoke(t, ctx, conn, proto.TargetSwitchRoom, "", "peter#123", "w3c")
	start := readUntil(t, ctx, conn, "StartChat")
	var room string
	decodeArg(t, start.Arguments[2], &room)
	if room != "w3c" {
		t.Fatalf("expected w3c, got %q", room)
	}

	// Settings are saved after StartChat is sent; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for {
		settings, err := env.store.LoadSettings(ctx, "peter#123")
		if err == nil && settings.DefaultChat == "w3c" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("settings not saved: %+v, %v", settings, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWebSocketBannedLogin(t *testing.T) {
	env := newTestEnv(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tomorrow := time.Now().AddDate(0, 0, 1).Format(store.BanDateLayout)
	if err := env.store.SaveBan(ctx, &store.Ban{BattleTag: "peter#123", EndDate: tomorrow, Reason: "flame"}); err != nil {
		t.Fatalf("seed ban: %v", err)
	}

	conn := env.dial(t, ctx)
	invoke(t, ctx, conn, proto.TargetLoginAs, "", "peter#123")

	out := readUntil(t, ctx, conn, "PlayerBannedFromChat")
	var ban proto.Ban
	decodeArg(t, out.Arguments[0], &ban)
	if ban.EndDate != tomorrow || ban.BanReason != "flame" {
		t.Fatalf("unexpected ban payload: %+v", ban)
	}
	if users := env.hub.UsersOfRoom(core.DefaultRoom); len(users) != 0 {
		t.Fatalf("banned user must not be in a room: %+v", users)
	}
}

func TestWebSocketDisconnectBroadcastsUserLeft(t *testing.T) {
	env := newTestEnv(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := env.dial(t, ctx)
	connB := env.dial(t, ctx)

	invoke(t, ctx, connA, proto.TargetLoginAs, "", "alice#1")
	readUntil(t, ctx, connA, "StartChat")
	invoke(t, ctx, connB, proto.TargetLoginAs, "", "bob#2")
	readUntil(t, ctx, connB, "StartChat")

	connB.CloseNow()

	left := readUntil(t, ctx, connA, "UserLeft")
	var user proto.User
	decodeArg(t, left.Arguments[0], &user)
	if user.BattleTag != "bob#2" {
		t.Fatalf("unexpected user left: %+v", user)
	}
}

func TestWebSocketRejectsUnknownTarget(t *testing.T) {
	env := newTestEnv(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := env.dial(t, ctx)
	invoke(t, ctx, conn, "Shout", "", "peter#123")

	out := readUntil(t, ctx, conn, proto.OutboundTypeError)
	if out.Error == nil || out.Error.Code != core.ErrCodeInvalidFrame {
		t.Fatalf("expected invalid_message error, got %+v", out.Error)
	}
}

func TestWebSocketUpgradeSwitchesProtocols(t *testing.T) {
	env := newTestEnv(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(env.server.URL, "http", "ws", 1) + "/ws"
	conn, resp, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	if resp.StatusCode != stdhttp.StatusSwitchingProtocols {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if err := conn.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestWebSocketErrorFollowsQueuedEvents(t *testing.T) {
	env := newTestEnv(t, "")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := env.dial(t, ctx)
	invoke(t, ctx, conn, proto.TargetLoginAs, "", "peter#123")
	invoke(t, ctx, conn, "Shout", "", "peter#123")

	var got []string
	for range 3 {
		var out testOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read: %v", err)
		}
		if out.Type == proto.OutboundTypeError {
			got = append(got, proto.OutboundTypeError)
			continue
		}
		got = append(got, out.Target)
	}

	want := []string{"UserEntered", "StartChat", proto.OutboundTypeError}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("unexpected frame order: got %v want %v", got, want)
	}
}
