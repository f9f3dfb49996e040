package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/wabain/codekeeper/internal/apperror"
	"github.com/wabain/codekeeper/internal/auth"
	"github.com/wabain/codekeeper/internal/dto"
	"github.com/wabain/codekeeper/internal/model"
	"github.com/wabain/codekeeper/internal/repository"
)

// AuthService handles admin login. It checks credentials against the
// users table and issues the session JWT on success.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult is what a successful login yields: the user record plus a
// signed session token ready to be set as a cookie.
type AuthResult struct {
	User  *model.User
	Token string
}

// Login verifies the credentials and returns a session token.
//
// Unknown username and wrong password both come back as the same
// ErrUnauthorized message, so a caller cannot probe which usernames
// exist.
func (s *AuthService) Login(ctx context.Context, input dto.LoginInput) (*AuthResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	if err := dto.Validate(input); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, input.Username)
	if err != nil {
		s.logger.WarnContext(ctx, "login failed: unknown user", "username", input.Username)
		return nil, apperror.Unauthorized("invalid username or password")
	}

	if err := s.passwords.Verify(user.PasswordHash, input.Password); err != nil {
		s.logger.WarnContext(ctx, "login failed: bad password", "username", input.Username)
		return nil, apperror.Unauthorized("invalid username or password")
	}

	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "login succeeded", "username", input.Username, "user_id", user.ID)
	return &AuthResult{User: user, Token: token}, nil
}

// ValidateToken checks a session token and returns the user ID it was
// issued for.
func (s *AuthService) ValidateToken(token string) (string, error) {
	return s.tokens.Validate(token)
}
