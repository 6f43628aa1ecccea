package core

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kolejker/OsaltServer/internal/proto"
)

// Options configure an Engine.
type Options struct {
	Channel         Channel
	BroadcastMode   BroadcastMode
	MaxPendingBytes int
}

// Engine owns the session registry and processes authenticated
// exchanges. Independent engines share no state.
type Engine struct {
	registry    *Registry
	dispatcher  *Dispatcher
	broadcaster Broadcaster
	profiles    ProfileSource
	channel     Channel
	log         *zerolog.Logger
}

// NewEngine builds an engine with every inbound handler registered.
func NewEngine(opts Options, profiles ProfileSource, logger *zerolog.Logger) (*Engine, error) {
	if opts.Channel.Name == "" {
		opts.Channel = DefaultChannel
	}
	if profiles == nil {
		profiles = StaticProfiles{Value: DefaultProfile()}
	}

	reg := NewRegistry(logger)
	b, err := NewBroadcaster(opts.BroadcastMode, reg, opts.MaxPendingBytes, logger)
	if err != nil {
		return nil, fmt.Errorf("init broadcaster: %w", err)
	}

	e := &Engine{
		registry:    reg,
		dispatcher:  NewDispatcher(logger),
		broadcaster: b,
		profiles:    profiles,
		channel:     opts.Channel,
		log:         logger,
	}
	e.registerHandlers()
	return e, nil
}

// Registry returns the session registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Channel returns the default channel.
func (e *Engine) Channel() Channel {
	return e.channel
}

// Session looks up a registered session.
func (e *Engine) Session(token string) (*Session, error) {
	s, ok := e.registry.Get(token)
	if !ok {
		return nil, ErrUnknownToken
	}
	return s, nil
}

// HandleAuthenticated processes one inbound buffer for token. The response
// starts with any packets staged for the session since its last exchange.
// found is false when the token is not registered.
func (e *Engine) HandleAuthenticated(token string, body []byte) (response []byte, found bool) {
	s, err := e.Session(token)
	if err != nil {
		return nil, false
	}

	e.log.Debug().
		Int32("user_id", s.UserID).
		Str("username", s.Username).
		Int("body_len", len(body)).
		Msg("authenticated exchange")

	response = s.Drain()
	response = append(response, e.dispatcher.Process(s, body)...)
	return response, true
}

// Logout removes the session for token and tells every other session the
// user quit.
func (e *Engine) Logout(token string) error {
	s, ok := e.registry.Remove(token)
	if !ok {
		return ErrUnknownToken
	}
	e.broadcaster.ToAll(s, proto.UserQuit(s.UserID, 0))
	return nil
}

// LogoutUser removes every session of userID and returns how many were removed.
func (e *Engine) LogoutUser(userID int32) int {
	removed := 0
	for token, s := range e.registry.All() {
		if s.UserID != userID {
			continue
		}
		if err := e.Logout(token); err == nil {
			removed++
		}
	}
	return removed
}

// Announce tells every other session that s came online. Inline delivery
// has no recipient buffers, so nothing is sent in that mode.
func (e *Engine) Announce(s *Session) {
	if _, inline := e.broadcaster.(*inlineBroadcaster); inline {
		return
	}
	packet := append(e.PresencePacket(s), e.StatsPacket(s)...)
	e.broadcaster.ToAll(s, packet)
}

// Notify broadcasts a notification to every session.
func (e *Engine) Notify(text string) {
	e.broadcaster.ToAll(nil, proto.Notification(text))
}

// PresencePacket builds the presence packet of s.
func (e *Engine) PresencePacket(s *Session) []byte {
	return proto.UserPresence(presenceOf(s, e.profiles.Profile(s.UserID)))
}

// StatsPacket builds the stats packet of s from its current live state.
func (e *Engine) StatsPacket(s *Session) []byte {
	return proto.UserStats(statsOf(s, e.profiles.Profile(s.UserID)))
}

// Roster builds presence and stats for every session not owned by
// userID, followed by a presence bundle of their ids. The bundle is
// omitted when there are none.
func (e *Engine) Roster(userID int32) []byte {
	var (
		out []byte
		ids []int32
	)
	for _, other := range e.registry.Others(userID) {
		ids = append(ids, other.UserID)
		out = append(out, e.PresencePacket(other)...)
		out = append(out, e.StatsPacket(other)...)
	}
	if len(ids) > 0 {
		out = append(out, proto.UserPresenceBundle(ids)...)
	}
	return out
}

// ChannelPackets builds the join acknowledgement, both availability
// variants and the list-complete marker for the default channel.
func (e *Engine) ChannelPackets() []byte {
	members := e.registry.Len()
	var out []byte
	out = append(out, proto.ChannelJoinSuccess(e.channel.Name)...)
	out = append(out, proto.ChannelAvailable(e.channel.Info(members, false))...)
	out = append(out, proto.ChannelAvailable(e.channel.Info(members, true))...)
	out = append(out, proto.ChannelListComplete()...)
	return out
}
