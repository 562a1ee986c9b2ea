package core

import (
	"strings"
	"time"
)

// User is a chat participant resolved from a battle tag.
type User struct {
	Name      string
	BattleTag string
}

// NewUser derives the display name from the part of the battle tag before '#'.
func NewUser(battleTag string) User {
	name, _, _ := strings.Cut(battleTag, "#")
	return User{Name: name, BattleTag: battleTag}
}

// ChatMessage is an immutable message posted to a room.
type ChatMessage struct {
	User User
	Text string
	Time time.Time
}
