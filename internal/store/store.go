package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// BanDateLayout is the only accepted format for ban end dates.
// Ban expiry is decided by comparing these strings, so every write path must
// normalize through ParseBanDate.
const BanDateLayout = "2006-01-02"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ChatSettings holds per-user chat preferences.
type ChatSettings struct {
	BattleTag   string
	DefaultChat string
	UpdatedAt   time.Time
}

// NewChatSettings returns fresh settings pointing at the given room.
func NewChatSettings(battleTag, defaultChat string) *ChatSettings {
	return &ChatSettings{
		BattleTag:   battleTag,
		DefaultChat: defaultChat,
	}
}

// Update moves the user's default chat to room.
func (s *ChatSettings) Update(room string) {
	s.DefaultChat = room
}

// Ban is a moderation record keyed by lowercased battle tag.
type Ban struct {
	BattleTag string
	EndDate   string // yyyy-MM-dd
	Reason    string
	CreatedAt time.Time
}

// ParseBanDate validates a ban end date and returns it in BanDateLayout.
func ParseBanDate(value string) (string, error) {
	t, err := time.Parse(BanDateLayout, value)
	if err != nil {
		return "", fmt.Errorf("invalid ban end date %q: %w", value, err)
	}
	return t.Format(BanDateLayout), nil
}

// SettingsStore handles chat settings persistence.
type SettingsStore interface {
	// LoadSettings returns settings for the battle tag or ErrNotFound.
	LoadSettings(ctx context.Context, battleTag string) (*ChatSettings, error)

	// SaveSettings inserts or replaces settings.
	SaveSettings(ctx context.Context, settings *ChatSettings) error
}

// BanStore handles ban persistence.
type BanStore interface {
	// LoadBan returns the ban for the lowercased battle tag or ErrNotFound.
	LoadBan(ctx context.Context, battleTag string) (*Ban, error)

	// SaveBan inserts or replaces a ban.
	SaveBan(ctx context.Context, ban *Ban) error

	// DeleteBan removes a ban. Returns ErrNotFound if there was none.
	DeleteBan(ctx context.Context, battleTag string) error

	// ListBans lists all bans ordered by end date.
	ListBans(ctx context.Context) ([]*Ban, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	SettingsStore
	BanStore

	// Close closes the underlying database connection.
	Close() error
}
