package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kolejker/OsaltServer/internal/core"
	"github.com/kolejker/OsaltServer/internal/store"
)

var (
	// ErrMalformedLogin is returned when a login body cannot be parsed.
	ErrMalformedLogin = errors.New("malformed login")
	// ErrAuthenticationFailure is returned when credentials don't match.
	ErrAuthenticationFailure = errors.New("authentication failure")
	// ErrUserExists is returned when trying to register with existing username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

const (
	minPasswordLen = 6
	maxPasswordLen = 128
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,15}$`)

// LoginOptions tune the handshake part of the login response.
type LoginOptions struct {
	ProtocolVersion uint32
	Permissions     uint32
	MOTD            string
}

// DefaultLoginOptions returns the handshake values stock clients expect.
func DefaultLoginOptions() LoginOptions {
	return LoginOptions{
		ProtocolVersion: 19,
		Permissions:     4,
	}
}

// Service provides registration and login.
type Service struct {
	store  store.UserStore
	engine *core.Engine
	tokens *TokenConfig
	login  LoginOptions
	log    *zerolog.Logger
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, engine *core.Engine, tokens *TokenConfig, login LoginOptions, logger *zerolog.Logger) *Service {
	return &Service{
		store:  userStore,
		engine: engine,
		tokens: tokens,
		login:  login,
		log:    logger,
	}
}

// Register validates and stores a new user. Both a bcrypt hash and the
// md5 digest used by the game client are persisted.
func (s *Service) Register(ctx context.Context, username, password string) (*store.User, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return nil, ErrInvalidPassword
	}

	if existing, err := s.store.GetUserByUsername(ctx, username); err == nil && existing != nil {
		return nil, ErrUserExists
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user, err := s.store.CreateUser(ctx, username, hashedPassword, PasswordDigest(password))
	if err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	return user, nil
}

// Users lists every registered user, newest first.
func (s *Service) Users(ctx context.Context) ([]*store.User, error) {
	return s.store.ListUsers(ctx)
}

// ValidateToken validates a session token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.tokens, tokenString)
}
