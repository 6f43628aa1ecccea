package core

import (
	"fmt"

	"github.com/rs/zerolog"
)

// BroadcastMode selects how broadcast packets reach their recipients.
type BroadcastMode string

const (
	// BroadcastQueue stages packets in every recipient's pending buffer;
	// the buffer is drained into that recipient's next response.
	BroadcastQueue BroadcastMode = "queue"
	// BroadcastInline appends one copy of the packet per recipient to the
	// sender's own response and delivers nothing to the recipients.
	BroadcastInline BroadcastMode = "inline"
)

// Broadcaster fans a packet out to a set of sessions. The returned bytes
// belong in the sender's response. A nil sender addresses every session.
type Broadcaster interface {
	ToAll(sender *Session, packet []byte) []byte
	ToChannel(channel string, sender *Session, packet []byte) []byte
}

// NewBroadcaster builds the broadcaster for mode. maxPending caps a
// session's staged bytes in queue mode; zero disables the cap.
func NewBroadcaster(mode BroadcastMode, reg *Registry, maxPending int, logger *zerolog.Logger) (Broadcaster, error) {
	switch mode {
	case BroadcastQueue, "":
		return &queueBroadcaster{reg: reg, maxPending: maxPending, log: logger}, nil
	case BroadcastInline:
		return &inlineBroadcaster{reg: reg}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBroadcastMode, mode)
	}
}

func recipients(reg *Registry, sender *Session) []*Session {
	if sender == nil {
		return reg.Sessions()
	}
	return reg.Others(sender.UserID)
}

type inlineBroadcaster struct {
	reg *Registry
}

func (b *inlineBroadcaster) ToAll(sender *Session, packet []byte) []byte {
	var out []byte
	for range recipients(b.reg, sender) {
		out = append(out, packet...)
	}
	return out
}

// ToChannel treats every session as a member since only one channel exists.
func (b *inlineBroadcaster) ToChannel(_ string, sender *Session, packet []byte) []byte {
	return b.ToAll(sender, packet)
}

type queueBroadcaster struct {
	reg        *Registry
	maxPending int
	log        *zerolog.Logger
}

func (b *queueBroadcaster) ToAll(sender *Session, packet []byte) []byte {
	for _, s := range recipients(b.reg, sender) {
		if !s.enqueue(packet, b.maxPending) {
			b.log.Warn().
				Int32("user_id", s.UserID).
				Int("pending", s.Pending()).
				Msg("pending buffer full, dropping packet")
		}
	}
	return nil
}

func (b *queueBroadcaster) ToChannel(_ string, sender *Session, packet []byte) []byte {
	return b.ToAll(sender, packet)
}
