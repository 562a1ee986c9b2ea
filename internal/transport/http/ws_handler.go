package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/chatroom-server/internal/config"
	"github.com/vovakirdan/chatroom-server/internal/core"
	"github.com/vovakirdan/chatroom-server/internal/metrics"
	"github.com/vovakirdan/chatroom-server/internal/proto"
)

// WSHandler upgrades HTTP connections and bridges them to the hub.
type WSHandler struct {
	hub          *core.Hub
	groups       *core.Groups
	log          *zerolog.Logger
	maxMsgBytes  int64
	ratePerMin   int
	clientBuffer int
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, groups *core.Groups, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		hub:          hub,
		groups:       groups,
		log:          logger,
		maxMsgBytes:  cfg.MaxMessageBytes,
		ratePerMin:   cfg.RateLimitPerMinute,
		clientBuffer: cfg.ClientBuffer,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	if h.maxMsgBytes > 0 {
		conn.SetReadLimit(h.maxMsgBytes)
	}

	client := core.NewClient(uuid.NewString(), h.clientBuffer)
	h.groups.RegisterClient(client)
	metrics.ConnectionsActive.Inc()
	defer func() {
		h.hub.Disconnect(client.ID)
		h.groups.UnregisterClient(client)
		metrics.ConnectionsActive.Dec()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("conn_id", client.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	limiter := newRateLimiter(h.ratePerMin)

	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			h.log.Debug().Err(err).Str("conn_id", client.ID).Msg("read ws inbound")
			return err
		}

		if !limiter.allow() {
			if err := client.Send(ctx, core.ErrorEvent(core.ErrCodeRateLimited, "too many messages")); err != nil {
				return err
			}
			continue
		}

		inv, protoErr := parseInbound(inbound)
		if protoErr != nil {
			if err := client.Send(ctx, core.ErrorEvent(protoErr.Code, protoErr.Msg)); err != nil {
				return err
			}
			continue
		}

		if err := h.dispatch(ctx, client.ID, inv); err != nil {
			code, msg := core.ErrCodeUnavailable, "internal error"
			var coreErr *core.CoreError
			if errors.As(err, &coreErr) {
				code, msg = coreErr.Code, coreErr.Message
			}
			h.log.Warn().Err(err).Str("conn_id", client.ID).Str("target", inv.Target).Str("battle_tag", inv.BattleTag).Msg("invocation failed")
			if err := client.Send(ctx, core.ErrorEvent(code, msg)); err != nil {
				return err
			}
		}
	}
}

func (h *WSHandler) dispatch(ctx context.Context, connID string, inv *invocation) error {
	switch inv.Target {
	case proto.TargetLoginAs:
		return h.hub.LoginAs(ctx, connID, inv.BattleTag)
	case proto.TargetSwitchRoom:
		return h.hub.SwitchRoom(ctx, connID, inv.BattleTag, inv.Room)
	case proto.TargetSendMessage:
		return h.hub.SendMessage(ctx, connID, inv.BattleTag, inv.Text)
	default:
		return nil
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("conn_id", client.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
