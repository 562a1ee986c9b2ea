package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/vovakirdan/chatroom-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS chat_settings (
	battle_tag   TEXT PRIMARY KEY,
	default_chat TEXT NOT NULL,
	updated_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bans (
	battle_tag TEXT PRIMARY KEY,
	end_date   TEXT NOT NULL,
	reason     TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_bans_end_date ON bans(end_date);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, Migrate)
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply schema on an in-memory database.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; it also keeps :memory: alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Migrate creates the tables used by the chat service.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== SettingsStore implementation ====

// LoadSettings retrieves chat settings by battle tag.
func (s *SQLiteStore) LoadSettings(ctx context.Context, battleTag string) (*store.ChatSettings, error) {
	query := `
		SELECT battle_tag, default_chat, updated_at
		FROM chat_settings
		WHERE battle_tag = ?
	`
	var settings store.ChatSettings
	err := s.db.QueryRowContext(ctx, query, battleTag).Scan(
		&settings.BattleTag,
		&settings.DefaultChat,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("settings for %s: %w", battleTag, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query settings: %w", err)
	}

	return &settings, nil
}

// SaveSettings upserts chat settings.
func (s *SQLiteStore) SaveSettings(ctx context.Context, settings *store.ChatSettings) error {
	query := `
		INSERT INTO chat_settings (battle_tag, default_chat, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(battle_tag) DO UPDATE SET
			default_chat = excluded.default_chat,
			updated_at   = excluded.updated_at
	`
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, query, settings.BattleTag, settings.DefaultChat, now); err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	settings.UpdatedAt = now
	return nil
}

// ==== BanStore implementation ====

// LoadBan retrieves a ban by battle tag.
func (s *SQLiteStore) LoadBan(ctx context.Context, battleTag string) (*store.Ban, error) {
	query := `
		SELECT battle_tag, end_date, reason, created_at
		FROM bans
		WHERE battle_tag = ?
	`
	var ban store.Ban
	err := s.db.QueryRowContext(ctx, query, battleTag).Scan(
		&ban.BattleTag,
		&ban.EndDate,
		&ban.Reason,
		&ban.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ban for %s: %w", battleTag, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query ban: %w", err)
	}

	return &ban, nil
}

// SaveBan upserts a ban. The battle tag is lowercased and the end date
// normalized to yyyy-MM-dd.
func (s *SQLiteStore) SaveBan(ctx context.Context, ban *store.Ban) error {
	endDate, err := store.ParseBanDate(ban.EndDate)
	if err != nil {
		return err
	}
	ban.BattleTag = strings.ToLower(ban.BattleTag)
	ban.EndDate = endDate
	if ban.CreatedAt.IsZero() {
		ban.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO bans (battle_tag, end_date, reason, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(battle_tag) DO UPDATE SET
			end_date = excluded.end_date,
			reason   = excluded.reason
	`
	if _, err := s.db.ExecContext(ctx, query, ban.BattleTag, ban.EndDate, ban.Reason, ban.CreatedAt); err != nil {
		return fmt.Errorf("upsert ban: %w", err)
	}
	return nil
}

// DeleteBan removes a ban by battle tag.
func (s *SQLiteStore) DeleteBan(ctx context.Context, battleTag string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bans WHERE battle_tag = ?`, strings.ToLower(battleTag))
	if err != nil {
		return fmt.Errorf("delete ban: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("ban for %s: %w", battleTag, store.ErrNotFound)
	}
	return nil
}

// ListBans lists all bans ordered by end date.
func (s *SQLiteStore) ListBans(ctx context.Context) ([]*store.Ban, error) {
	query := `
		SELECT battle_tag, end_date, reason, created_at
		FROM bans
		ORDER BY end_date, battle_tag
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query bans: %w", err)
	}
	defer rows.Close()

	var bans []*store.Ban
	for rows.Next() {
		var ban store.Ban
		if err := rows.Scan(&ban.BattleTag, &ban.EndDate, &ban.Reason, &ban.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ban: %w", err)
		}
		bans = append(bans, &ban)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bans: %w", err)
	}

	return bans, nil
}
