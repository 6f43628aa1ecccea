package proto

// Presence is a user's broadcastable identity snapshot.
type Presence struct {
	UserID      int32
	Username    string
	Timezone    int8 // UTC offset in hours
	CountryID   uint8
	Permissions uint8
	Mode        uint8
	Longitude   float32
	Latitude    float32
	Rank        int32
}

// Stats is a user's broadcastable activity and performance snapshot.
type Stats struct {
	UserID      int32
	Status      uint8
	StatusText  string
	BeatmapMD5  string
	Mods        uint32
	Mode        uint8
	BeatmapID   int32
	RankedScore int64
	Accuracy    float64 // accepts either a 0-1 or a 0-100 scale
	Playcount   int32
	TotalScore  int64
	Rank        int32
	PP          int32
}

// ChannelInfo describes a channel in a channel-available packet.
type ChannelInfo struct {
	Name        string
	Description string
	UserCount   uint16
	AutoJoin    bool
}

// Message is a chat message as delivered to recipients.
type Message struct {
	Sender   string
	SenderID int32
	Target   string
	Text     string
}

// ProtocolNegotiation builds packet 75.
func ProtocolNegotiation(version uint32) []byte {
	return CreatePacket(OutProtocolNegotiation, NewWriter().Uint32(version).Bytes())
}

// LoginResult builds packet 5. Negative ids are failure codes.
func LoginResult(userID int32) []byte {
	return CreatePacket(OutLoginResult, NewWriter().Int32(userID).Bytes())
}

// LoginPermissions builds packet 71.
func LoginPermissions(permissions uint32) []byte {
	return CreatePacket(OutLoginPermissions, NewWriter().Uint32(permissions).Bytes())
}

// UserPresence builds packet 83.
// Format: [id:4][username:str][tz+24:1][country:1][perms|mode<<5:1][lon:f4][lat:f4][rank:4]
func UserPresence(p Presence) []byte {
	w := NewWriter().
		Int32(p.UserID).
		String(p.Username).
		Uint8(uint8(int(p.Timezone) + 24)).
		Uint8(p.CountryID).
		Uint8(p.Permissions | p.Mode<<5).
		Float32(p.Longitude).
		Float32(p.Latitude).
		Int32(p.Rank)
	return CreatePacket(OutUserPresence, w.Bytes())
}

// UserPresenceSingle builds packet 95.
func UserPresenceSingle(userID int32) []byte {
	return CreatePacket(OutUserPresenceSingle, NewWriter().Int32(userID).Bytes())
}

// UserPresenceBundle builds packet 96.
func UserPresenceBundle(userIDs []int32) []byte {
	return CreatePacket(OutUserPresenceBundle, NewWriter().IntList(idList(userIDs)).Bytes())
}

// UserStats builds packet 11. Scores and playcount are clamped to zero,
// rank to one and accuracy is normalized with NormalizeAccuracy.
func UserStats(s Stats) []byte {
	w := NewWriter().
		Int32(s.UserID).
		Uint8(s.Status).
		String(s.StatusText).
		String(s.BeatmapMD5).
		Uint32(s.Mods).
		Uint8(s.Mode).
		Int32(s.BeatmapID).
		Uint64(uint64(max(0, s.RankedScore))).
		Float32(NormalizeAccuracy(s.Accuracy)).
		Int32(max(0, s.Playcount)).
		Uint64(uint64(max(0, s.TotalScore))).
		Int32(max(1, s.Rank)).
		Int32(max(0, s.PP))
	return CreatePacket(OutUserStats, w.Bytes())
}

// NormalizeAccuracy maps a 0-100 or 0-1 accuracy onto [0, 1].
func NormalizeAccuracy(acc float64) float32 {
	if acc > 1.0 {
		acc /= 100.0
	}
	return float32(min(1.0, max(0.0, acc)))
}

// UserQuit builds packet 12.
func UserQuit(userID int32, state uint8) []byte {
	return CreatePacket(OutUserQuit, NewWriter().Int32(userID).Uint8(state).Bytes())
}

// ChannelJoinSuccess builds packet 64.
func ChannelJoinSuccess(name string) []byte {
	return CreatePacket(OutChannelJoinSuccess, WriteString(name))
}

// ChannelAvailable builds packet 65, or 67 for auto-join channels.
func ChannelAvailable(ch ChannelInfo) []byte {
	w := NewWriter().
		String(ch.Name).
		String(ch.Description).
		Uint16(ch.UserCount)
	id := OutChannelAvailable
	if ch.AutoJoin {
		id = OutChannelAutoJoin
	}
	return CreatePacket(id, w.Bytes())
}

// ChannelListComplete builds packet 89.
func ChannelListComplete() []byte {
	return CreatePacket(OutChannelListComplete, nil)
}

// ChatMessage builds packet 7.
// Format: [sender:str][text:str][target:str][sender_id:4]
func ChatMessage(m Message) []byte {
	w := NewWriter().
		String(m.Sender).
		String(m.Text).
		String(m.Target).
		Int32(m.SenderID)
	return CreatePacket(OutChatMessage, w.Bytes())
}

// FriendsList builds packet 72.
func FriendsList(userIDs []int32) []byte {
	return CreatePacket(OutFriendsList, NewWriter().IntList(idList(userIDs)).Bytes())
}

// Ping builds packet 8.
func Ping() []byte {
	return CreatePacket(OutPing, nil)
}

// Notification builds packet 24.
func Notification(text string) []byte {
	return CreatePacket(OutNotification, WriteString(text))
}

func idList(ids []int32) []uint32 {
	out := make([]uint32, len(ids))
	for i, id := range ids {
		out[i] = uint32(id)
	}
	return out
}
