package core

import (
	"math"

	"github.com/kolejker/OsaltServer/internal/proto"
)

// Channel is a statically known chat channel. Member count is derived
// from the registry whenever the channel is described.
type Channel struct {
	Name        string
	Description string
}

// DefaultChannel is the channel every client auto-joins.
var DefaultChannel = Channel{Name: "#osu", Description: "Main chat"}

// Info describes the channel for a channel-available packet.
func (c Channel) Info(members int, autoJoin bool) proto.ChannelInfo {
	return proto.ChannelInfo{
		Name:        c.Name,
		Description: c.Description,
		UserCount:   uint16(min(members, math.MaxUint16)),
		AutoJoin:    autoJoin,
	}
}
