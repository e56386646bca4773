package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jmanzanog/bond-tracker/internal/domain"
)

const requiredField = "This field is required."

// TokenManager issues and verifies access tokens bound to a session id.
type TokenManager interface {
	Issue(userID, sessionID string, expiresAt time.Time) (string, error)
	Verify(token string) (userID, sessionID string, err error)
}

type UserService struct {
	users      domain.UserRepository
	sessions   domain.SessionRepository
	tokens     TokenManager
	tokenTTL   time.Duration
	bcryptCost int
	now        func() time.Time
}

func NewUserService(users domain.UserRepository, sessions domain.SessionRepository, tokens TokenManager, tokenTTL time.Duration) *UserService {
	return &UserService{
		users:      users,
		sessions:   sessions,
		tokens:     tokens,
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
}

// Register creates an account. Duplicate usernames fail with domain.ErrUserExists.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)

	var problems []string
	if username == "" {
		problems = append(problems, "username: "+requiredField)
	}
	if password == "" {
		problems = append(problems, "password: "+requiredField)
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(domain.KindInvalidValue, strings.Join(problems, "; "))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, domain.NewValidationError(domain.KindInvalidValue, "password: Ensure this field has no more than 72 bytes.")
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.NewUser(username, strings.TrimSpace(email), string(hash), s.now())
	if err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return &user, nil
}

// Login checks the credentials and returns a token for a fresh session.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to verify password: %w", err)
	}

	session := domain.NewSession(user.ID, s.now(), s.tokenTTL)
	if err := s.sessions.Save(ctx, &session); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, session.ID, session.ExpiresAt)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	slog.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return token, nil
}

// Logout revokes the session behind the caller's token.
func (s *UserService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a token to its user and session. Revoked or expired
// sessions are rejected even when the token itself still verifies.
func (s *UserService) Authenticate(ctx context.Context, token string) (userID, sessionID string, err error) {
	userID, sessionID, err = s.tokens.Verify(token)
	if err != nil {
		return "", "", err
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return "", "", domain.ErrInvalidToken
		}
		return "", "", fmt.Errorf("failed to load session: %w", err)
	}

	if session.UserID != userID {
		return "", "", domain.ErrInvalidToken
	}
	if session.Expired(s.now()) {
		return "", "", domain.ErrTokenExpired
	}

	return userID, sessionID, nil
}

// PurgeExpiredSessions removes sessions whose tokens can no longer be used.
func (s *UserService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	removed, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}
	return removed, nil
}
