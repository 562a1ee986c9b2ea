package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/auth"
	"github.com/vovakirdan/chatroom-server/internal/config"
	"github.com/vovakirdan/chatroom-server/internal/core"
	"github.com/vovakirdan/chatroom-server/internal/proto"
	"github.com/vovakirdan/chatroom-server/internal/store/sqlite"
)

type testEnv struct {
	server *httptest.Server
	hub    *core.Hub
	auth   *auth.Service
	store  *sqlite.SQLiteStore
}

func newTestEnv(t *testing.T, adminSecret string) *testEnv {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.Migrate)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	logger := zerolog.Nop()
	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	cfg.AdminJWTSecret = adminSecret

	authService := auth.NewService(&auth.JWTConfig{
		Secret:   []byte(cfg.AdminJWTSecret),
		Issuer:   cfg.AdminJWTIssuer,
		Audience: cfg.AdminJWTIssuer,
		TTL:      time.Hour,
	})

	groups := core.NewGroups(nil)
	hub := core.NewHub(core.HubDeps{
		Connections: core.NewConnectionMapping(),
		History:     core.NewChatHistory(cfg.HistorySize),
		Users:       authService,
		Settings:    st,
		Bans:        st,
		Groups:      groups,
		DefaultRoom: cfg.DefaultRoom,
		Logger:      &logger,
	})

	server := NewServer(hub, groups, authService, st, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, hub: hub, auth: authService, store: st}
}

func (e *testEnv) dial(t *testing.T, ctx context.Context) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(e.server.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func invoke(t *testing.T, ctx context.Context, conn *websocket.Conn, target string, args ...string) {
	t.Helper()

	raw := make([]json.RawMessage, 0, len(args))
	for _, a := range args {
		b, _ := json.Marshal(a)
		raw = append(raw, b)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Target: target, Arguments: raw}); err != nil {
		t.Fatalf("write %s: %v", target, err)
	}
}

// testOutbound mirrors proto.Outbound with raw arguments for decoding.
type testOutbound struct {
	Type      string            `json:"type"`
	Target    string            `json:"target"`
	Arguments []json.RawMessage `json:"arguments"`
	Error     *proto.Error      `json:"error"`
}

// readUntil reads frames until one matches target (or an error frame when target is "error").
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, target string) testOutbound {
	t.Helper()

	for {
		var out testOutbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("read waiting for %s: %v", target, err)
		}
		if out.Target == target || (target == proto.OutboundTypeError && out.Type == proto.OutboundTypeError) {
			return out
		}
	}
}

func decodeArg(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()

	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("decode argument %s: %v", raw, err)
	}
}
