package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/kolejker/OsaltServer/internal/core"
	"github.com/kolejker/OsaltServer/internal/proto"
	"github.com/kolejker/OsaltServer/internal/store"
)

const mintAttempts = 3

// LoginRequest is a decoded login body.
type LoginRequest struct {
	Username   string
	Digest     string
	ClientInfo string
}

// ParseLogin decodes the newline separated login body: username,
// password digest and client info. Extra lines are ignored.
func ParseLogin(body []byte) (LoginRequest, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return LoginRequest{}, fmt.Errorf("%w: empty body", ErrMalformedLogin)
	}
	if !utf8.Valid(body) {
		return LoginRequest{}, fmt.Errorf("%w: invalid utf-8", ErrMalformedLogin)
	}

	parts := strings.Split(string(body), "\n")
	if len(parts) < 3 {
		return LoginRequest{}, fmt.Errorf("%w: expected 3 fields, got %d", ErrMalformedLogin, len(parts))
	}

	return LoginRequest{
		Username:   strings.TrimSpace(parts[0]),
		Digest:     strings.TrimSpace(parts[1]),
		ClientInfo: strings.TrimSpace(parts[2]),
	}, nil
}

// HandleLogin authenticates a raw login body. On success it returns the
// full login response and the new session token. On any failure it
// returns a single login-result packet carrying -1 and an empty token.
func (s *Service) HandleLogin(ctx context.Context, body []byte) (response []byte, token string) {
	sess, response, err := s.Login(ctx, body)
	if err != nil {
		s.log.Warn().Err(err).Msg("login failed")
		return proto.LoginResult(proto.LoginFailed), ""
	}
	return response, sess.Token
}

// Login authenticates a raw login body, registers a new session and
// builds the login response for it.
func (s *Service) Login(ctx context.Context, body []byte) (*core.Session, []byte, error) {
	req, err := ParseLogin(body)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().
		Str("username", req.Username).
		Str("client", req.ClientInfo).
		Msg("login attempt")

	id, err := s.store.ValidateUser(ctx, req.Username, req.Digest)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: %s", ErrAuthenticationFailure, req.Username)
		}
		return nil, nil, fmt.Errorf("validate user: %w", err)
	}
	if id <= 0 || id > math.MaxInt32 {
		return nil, nil, fmt.Errorf("user id %d out of protocol range", id)
	}
	userID := int32(id)

	sess, err := s.register(userID, req.Username)
	if err != nil {
		return nil, nil, err
	}

	response := s.buildLoginResponse(sess)
	s.engine.Announce(sess)

	s.log.Info().
		Int32("user_id", userID).
		Str("username", req.Username).
		Msg("login succeeded")
	return sess, response, nil
}

// register mints a token that no live session holds and registers a
// session under it.
func (s *Service) register(userID int32, username string) (*core.Session, error) {
	reg := s.engine.Registry()
	for i := 0; i < mintAttempts; i++ {
		token, err := GenerateToken(s.tokens, userID, username)
		if err != nil {
			return nil, fmt.Errorf("generate token: %w", err)
		}
		sess := core.NewSession(token, userID, username)
		if reg.AddIfAbsent(token, sess) {
			return sess, nil
		}
	}
	return nil, errors.New("could not mint a unique session token")
}

func (s *Service) buildLoginResponse(sess *core.Session) []byte {
	var out []byte
	out = append(out, proto.ProtocolNegotiation(s.login.ProtocolVersion)...)
	out = append(out, proto.LoginResult(sess.UserID)...)
	out = append(out, proto.LoginPermissions(s.login.Permissions)...)
	out = append(out, s.engine.PresencePacket(sess)...)
	out = append(out, s.engine.StatsPacket(sess)...)
	out = append(out, s.engine.Roster(sess.UserID)...)
	out = append(out, proto.FriendsList(nil)...)
	out = append(out, s.engine.ChannelPackets()...)
	if s.login.MOTD != "" {
		out = append(out, proto.Notification(s.login.MOTD)...)
	}
	return out
}
