package auth

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/vovakirdan/chatroom-server/internal/core"
)

const maxBattleTagLength = 64

// ErrInvalidBattleTag is returned for empty or oversized battle tags.
var ErrInvalidBattleTag = errors.New("invalid battle tag")

// Service resolves chat users and validates moderator tokens.
type Service struct {
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(jwtConfig *JWTConfig) *Service {
	return &Service{jwtConfig: jwtConfig}
}

// ResolveUser turns a battle tag into a chat user. The tag is not checked
// against any account registry; any well-formed tag is accepted.
func (s *Service) ResolveUser(_ context.Context, battleTag string) (core.User, error) {
	battleTag = strings.TrimSpace(battleTag)
	if battleTag == "" || utf8.RuneCountInString(battleTag) > maxBattleTagLength {
		return core.User{}, ErrInvalidBattleTag
	}
	return core.NewUser(battleTag), nil
}

// IssueModeratorToken signs a moderator token for subject.
func (s *Service) IssueModeratorToken(subject string) (string, error) {
	return GenerateToken(s.jwtConfig, subject)
}

// ValidateToken validates a moderator token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}

// AdminEnabled reports whether the moderation API can be used.
func (s *Service) AdminEnabled() bool {
	return s.jwtConfig.Enabled()
}
