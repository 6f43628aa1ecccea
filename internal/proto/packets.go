// Package proto implements the bancho binary wire format: primitive
// encodings, packet framing and builders for every outbound packet kind.
// All integers are little-endian.
package proto

import "strconv"

// PacketID identifies the payload carried by a frame.
type PacketID uint16

// Inbound packet ids (client -> server).
const (
	InChangeStatus        PacketID = 0
	InStatusUpdate        PacketID = 2 // deprecated
	InRequestStatusUpdate PacketID = 3
	InPong                PacketID = 4
	InSendMessage         PacketID = 25
	InJoinChannel         PacketID = 63
	InReceiveUpdates      PacketID = 79
	InStatsRequest        PacketID = 85
)

// Outbound packet ids (server -> client).
const (
	OutLoginResult         PacketID = 5
	OutChatMessage         PacketID = 7
	OutPing                PacketID = 8
	OutUserStats           PacketID = 11
	OutUserQuit            PacketID = 12
	OutNotification        PacketID = 24
	OutChannelJoinSuccess  PacketID = 64
	OutChannelAvailable    PacketID = 65
	OutChannelAutoJoin     PacketID = 67
	OutLoginPermissions    PacketID = 71
	OutFriendsList         PacketID = 72
	OutProtocolNegotiation PacketID = 75
	OutUserPresence        PacketID = 83
	OutChannelListComplete PacketID = 89
	OutUserPresenceSingle  PacketID = 95
	OutUserPresenceBundle  PacketID = 96
)

// HeaderSize is the fixed frame header length: id(2) + compression(1) + length(4).
const HeaderSize = 7

// LoginFailed is the login-result value sent for malformed or rejected logins.
const LoginFailed int32 = -1

// ChannelSigil prefixes every channel name.
const ChannelSigil = "#"

var inboundNames = map[PacketID]string{
	InChangeStatus:        "change_status",
	InStatusUpdate:        "status_update",
	InRequestStatusUpdate: "request_status_update",
	InPong:                "pong",
	InSendMessage:         "send_message",
	InJoinChannel:         "join_channel",
	InReceiveUpdates:      "receive_updates",
	InStatsRequest:        "stats_request",
}

// InboundName returns a readable name for an inbound id, used in logs.
func InboundName(id PacketID) string {
	if name, ok := inboundNames[id]; ok {
		return name
	}
	return "unknown_" + strconv.Itoa(int(id))
}

// Header is a decoded frame header.
type Header struct {
	ID          PacketID
	Compression uint8
	Length      uint32
}
