package proto

import "encoding/json"

// Inbound is an invocation sent by the client.
type Inbound struct {
	Target    string            `json:"target"`
	Arguments []json.RawMessage `json:"arguments"`
}

const (
	TargetLoginAs     = "LoginAs"
	TargetSwitchRoom  = "SwitchRoom"
	TargetSendMessage = "SendMessage"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// Outbound is the envelope for messages sent to the client.
// Events carry their payload positionally in Arguments.
type Outbound struct {
	Type      string `json:"type"`
	Target    string `json:"target,omitempty"`
	Arguments []any  `json:"arguments,omitempty"`
	Error     *Error `json:"error,omitempty"`
}

// User identifies a chat participant.
type User struct {
	Name      string `json:"name"`
	BattleTag string `json:"battleTag"`
}

// ChatMessage is a message relayed to a room.
type ChatMessage struct {
	User    User   `json:"user"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

// Ban is sent to a banned user on login.
type Ban struct {
	BattleTag string `json:"battleTag"`
	EndDate   string `json:"endDate"`
	BanReason string `json:"banReason,omitempty"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
