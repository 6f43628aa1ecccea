package core

import (
	"sync"
	"time"

	"github.com/kolejker/OsaltServer/internal/proto"
)

// Status is the client activity code carried in change-status and stats.
type Status uint8

const (
	StatusIdle Status = iota
	StatusAFK
	StatusPlaying
	StatusEditing
	StatusModding
	StatusMultiplayer
	StatusWatching
	StatusUnknown
	StatusTesting
	StatusSubmitting
	StatusPaused
	StatusLobby
	StatusMultiplaying
	StatusOsuDirect
)

// Mode is the game mode.
type Mode uint8

const (
	ModeOsu Mode = iota
	ModeTaiko
	ModeCatch
	ModeMania
)

// ParseStatus validates a decoded status byte.
func ParseStatus(b uint8) (Status, error) {
	if Status(b) > StatusOsuDirect {
		return 0, &proto.ProtocolError{Op: "parse status", Msg: "status out of range"}
	}
	return Status(b), nil
}

// ParseMode validates a decoded mode byte.
func ParseMode(b uint8) (Mode, error) {
	if Mode(b) > ModeMania {
		return 0, &proto.ProtocolError{Op: "parse mode", Msg: "mode out of range"}
	}
	return Mode(b), nil
}

// LiveState is the mutable part of a session, replaced as a whole by
// change-status.
type LiveState struct {
	Status     Status
	StatusText string
	BeatmapMD5 string
	Mods       uint32
	Mode       Mode
	BeatmapID  int32
}

// Session is one authenticated client. Token, UserID and Username never
// change after creation.
type Session struct {
	Token     string
	UserID    int32
	Username  string
	CreatedAt time.Time

	seq uint64

	mu      sync.Mutex
	state   LiveState
	pending []byte
}

// NewSession constructs a session with default live state.
func NewSession(token string, userID int32, username string) *Session {
	return &Session{
		Token:     token,
		UserID:    userID,
		Username:  username,
		CreatedAt: time.Now(),
	}
}

// State returns a copy of the live state.
func (s *Session) State() LiveState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) setState(st LiveState) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// enqueue stages packet bytes for the session's next exchange. It refuses
// the packet when limit > 0 and the pending buffer would exceed it.
func (s *Session) enqueue(packet []byte, limit int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit > 0 && len(s.pending)+len(packet) > limit {
		return false
	}
	s.pending = append(s.pending, packet...)
	return true
}

// Drain returns and clears the staged outbound bytes.
func (s *Session) Drain() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

// Pending returns the number of staged outbound bytes.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
