package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"parkinglot/backend/services/parking-service/internal/models"
	"parkinglot/backend/services/parking-service/internal/password"
)

const bearerPrefix = "Bearer "

// AuthService contains registration, login and token resolution logic.
type AuthService struct {
	users  UserStore
	hasher password.Hasher
	tokens *TokenTable
	logger *zap.Logger
	mu     sync.Mutex
	now    func() time.Time
}

// NewAuthService builds AuthService.
func NewAuthService(users UserStore, hasher password.Hasher, tokens *TokenTable, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// Register creates a USER account and logs it in.
func (s *AuthService) Register(ctx context.Context, username, pass, name string) (string, error) {
	username = strings.TrimSpace(username)
	name = strings.TrimSpace(name)
	if username == "" || strings.TrimSpace(pass) == "" || name == "" {
		return "", newError(ErrValidation, "Missing credentials")
	}

	if err := s.createUser(ctx, username, pass, name, models.RoleUser); err != nil {
		return "", err
	}

	token := s.tokens.Issue(models.Identity{Username: username, Role: models.RoleUser})
	s.logger.Info("user registered", zap.String("username", username))
	return token, nil
}

// Login authenticates a user and issues a new token. Earlier tokens of the same user stay valid.
func (s *AuthService) Login(ctx context.Context, username, pass string) (string, error) {
	if username == "" || pass == "" {
		return "", newError(ErrValidation, "Missing credentials")
	}

	users, err := s.users.LoadUsers(ctx)
	if err != nil {
		s.logger.Error("load users failed", zap.Error(err))
		return "", storageError("Failed to load users", err)
	}
	user, ok := users.Get(username)
	if !ok {
		return "", newError(ErrUnauthorized, "Invalid credentials")
	}
	if err := s.hasher.Compare(user.PasswordHash, pass); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			s.logger.Warn("stored password hash unreadable", zap.String("username", username), zap.Error(err))
		}
		return "", newError(ErrUnauthorized, "Invalid credentials")
	}

	role := user.Role
	if role == "" {
		role = models.RoleUser
	}
	token := s.tokens.Issue(models.Identity{Username: user.Username, Role: role})
	s.logger.Info("user logged in", zap.String("username", user.Username))
	return token, nil
}

// Logout revokes token.
func (s *AuthService) Logout(token string) error {
	token = stripBearer(token)
	if token == "" || !s.tokens.Revoke(token) {
		return newError(ErrNotFound, "No active session found")
	}
	return nil
}

// RequireAuth resolves the Authorization header value, either a raw token or "Bearer <token>".
func (s *AuthService) RequireAuth(header string) (models.Identity, error) {
	token := stripBearer(header)
	if token == "" {
		return models.Identity{}, newError(ErrUnauthorized, "Unauthorized: Missing session token")
	}
	identity, ok := s.tokens.Lookup(token)
	if !ok {
		return models.Identity{}, newError(ErrUnauthorized, "Unauthorized: Invalid or expired session token")
	}
	return identity, nil
}

// EnsureAdmin creates an ADMIN account named username when no such user exists yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, pass string) error {
	username = strings.TrimSpace(username)
	if username == "" || pass == "" {
		return newError(ErrValidation, "admin username and password are required")
	}
	err := s.createUser(ctx, username, pass, "Administrator", models.RoleAdmin)
	if errors.Is(err, errUserExists) {
		return nil
	}
	if err != nil {
		return err
	}
	s.logger.Info("admin account created", zap.String("username", username))
	return nil
}

var errUserExists = errors.New("user exists")

func (s *AuthService) createUser(ctx context.Context, username, pass, name string, role models.Role) error {
	hash, err := s.hasher.Hash(pass)
	if err != nil {
		if errors.Is(err, password.ErrTooLong) {
			return newError(ErrValidation, "Password is too long")
		}
		return &Error{Kind: ErrValidation, Message: "Missing credentials", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.users.LoadUsers(ctx)
	if err != nil {
		s.logger.Error("load users failed", zap.Error(err))
		return storageError("Failed to load users", err)
	}
	if _, exists := users.Get(username); exists {
		return &Error{Kind: ErrValidation, Message: "Username already exists", Err: errUserExists}
	}

	users.Set(username, models.User{
		Username:     username,
		PasswordHash: hash,
		Name:         name,
		Role:         role,
		CreatedAt:    s.now().Format(dateLayout),
	})
	if err := s.users.SaveUsers(ctx, users); err != nil {
		s.logger.Error("save users failed", zap.String("username", username), zap.Error(err))
		return storageError("Failed to save user", err)
	}
	return nil
}

func stripBearer(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= len(bearerPrefix) && strings.EqualFold(value[:len(bearerPrefix)], bearerPrefix) {
		value = strings.TrimSpace(value[len(bearerPrefix):])
	}
	return value
}
