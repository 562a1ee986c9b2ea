package http

import (
	"encoding/json"
	"time"

	"github.com/vovakirdan/chatroom-server/internal/core"
	"github.com/vovakirdan/chatroom-server/internal/proto"
	"github.com/vovakirdan/chatroom-server/internal/store"
)

// invocation is a decoded client call. ChatKey is accepted for client
// compatibility and otherwise unused.
type invocation struct {
	Target    string
	ChatKey   string
	BattleTag string
	Room      string
	Text      string
}

var invocationArity = map[string]int{
	proto.TargetLoginAs:     2,
	proto.TargetSwitchRoom:  3,
	proto.TargetSendMessage: 3,
}

func parseInbound(inbound proto.Inbound) (*invocation, *proto.Error) {
	arity, ok := invocationArity[inbound.Target]
	if !ok {
		return nil, &proto.Error{Code: core.ErrCodeInvalidFrame, Msg: "unknown target"}
	}
	if len(inbound.Arguments) != arity {
		return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: inbound.Target + " expects different arguments"}
	}

	args := make([]string, arity)
	for i, raw := range inbound.Arguments {
		if err := json.Unmarshal(raw, &args[i]); err != nil {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "arguments must be strings"}
		}
	}

	inv := &invocation{Target: inbound.Target, ChatKey: args[0], BattleTag: args[1]}
	switch inbound.Target {
	case proto.TargetSwitchRoom:
		inv.Room = args[2]
		if inv.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}
		}
	case proto.TargetSendMessage:
		inv.Text = args[2]
	}
	return inv, nil
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	if event.Kind == core.EventError {
		return errorOutbound(event.Err.Code, event.Err.Message)
	}
	out := proto.Outbound{Type: proto.OutboundTypeEvent, Target: event.Kind.String()}

	switch event.Kind {
	case core.EventPlayerBannedFromChat:
		out.Arguments = []any{toProtoBan(event.Ban)}
	case core.EventUserEntered, core.EventUserLeft:
		out.Arguments = []any{toProtoUser(event.User)}
	case core.EventStartChat:
		out.Arguments = []any{toProtoUsers(event.Users), toProtoMessages(event.Messages), event.Room}
	case core.EventReceiveMessage:
		out.Arguments = []any{toProtoMessage(event.Message)}
	}
	return out
}

func errorOutbound(code, msg string) proto.Outbound {
	return proto.Outbound{
		Type:  proto.OutboundTypeError,
		Error: &proto.Error{Code: code, Msg: msg},
	}
}

func toProtoUser(u core.User) proto.User {
	return proto.User{Name: u.Name, BattleTag: u.BattleTag}
}

func toProtoUsers(users []core.User) []proto.User {
	out := make([]proto.User, 0, len(users))
	for _, u := range users {
		out = append(out, toProtoUser(u))
	}
	return out
}

func toProtoMessage(m core.ChatMessage) proto.ChatMessage {
	return proto.ChatMessage{
		User:    toProtoUser(m.User),
		Message: m.Text,
		Time:    m.Time.Format(time.RFC3339),
	}
}

func toProtoMessages(messages []core.ChatMessage) []proto.ChatMessage {
	out := make([]proto.ChatMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, toProtoMessage(m))
	}
	return out
}

func toProtoBan(b *store.Ban) proto.Ban {
	if b == nil {
		return proto.Ban{}
	}
	return proto.Ban{BattleTag: b.BattleTag, EndDate: b.EndDate, BanReason: b.Reason}
}
