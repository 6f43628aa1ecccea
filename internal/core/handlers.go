package core

import (
	"strings"

	"github.com/kolejker/OsaltServer/internal/proto"
)

func (e *Engine) registerHandlers() {
	d := e.dispatcher
	d.Register(proto.InChangeStatus, HandlerFunc(e.handleChangeStatus))
	d.Register(proto.InStatusUpdate, HandlerFunc(e.handleStatusUpdate))
	d.Register(proto.InRequestStatusUpdate, HandlerFunc(e.handleStatsRequest))
	d.Register(proto.InPong, HandlerFunc(e.handlePong))
	d.Register(proto.InSendMessage, HandlerFunc(e.handleSendMessage))
	d.Register(proto.InJoinChannel, HandlerFunc(e.handleJoinChannel))
	d.Register(proto.InReceiveUpdates, HandlerFunc(e.handleReceiveUpdates))
	d.Register(proto.InStatsRequest, HandlerFunc(e.handleStatsRequest))
}

// decodeLiveState reads a change-status payload:
// [status:1][text:str][md5:str][mods:4][mode:1][beatmap_id:4]
func decodeLiveState(payload []byte) (LiveState, error) {
	r := proto.NewReader(payload)

	raw, err := r.ReadUint8()
	if err != nil {
		return LiveState{}, err
	}
	status, err := ParseStatus(raw)
	if err != nil {
		return LiveState{}, err
	}
	text, err := r.ReadString()
	if err != nil {
		return LiveState{}, err
	}
	md5, err := r.ReadString()
	if err != nil {
		return LiveState{}, err
	}
	mods, err := r.ReadUint32()
	if err != nil {
		return LiveState{}, err
	}
	raw, err = r.ReadUint8()
	if err != nil {
		return LiveState{}, err
	}
	mode, err := ParseMode(raw)
	if err != nil {
		return LiveState{}, err
	}
	beatmapID, err := r.ReadInt32()
	if err != nil {
		return LiveState{}, err
	}

	return LiveState{
		Status:     status,
		StatusText: text,
		BeatmapMD5: md5,
		Mods:       mods,
		Mode:       mode,
		BeatmapID:  beatmapID,
	}, nil
}

func (e *Engine) handleChangeStatus(s *Session, payload []byte) ([]byte, error) {
	st, err := decodeLiveState(payload)
	if err != nil {
		return nil, err
	}

	e.registry.UpdateState(s.Token, st)
	e.log.Debug().
		Int32("user_id", s.UserID).
		Uint8("status", uint8(st.Status)).
		Str("status_text", st.StatusText).
		Msg("status changed")

	return e.broadcaster.ToAll(s, e.StatsPacket(s)), nil
}

func (e *Engine) handleStatsRequest(s *Session, payload []byte) ([]byte, error) {
	ids, err := proto.ReadIntList(payload)
	if err != nil {
		return nil, err
	}

	byUser := make(map[int32]*Session)
	for _, other := range e.registry.Sessions() {
		if _, seen := byUser[other.UserID]; !seen {
			byUser[other.UserID] = other
		}
	}

	var out []byte
	for _, id := range ids {
		if target, ok := byUser[int32(id)]; ok {
			out = append(out, e.StatsPacket(target)...)
		}
	}

	e.log.Debug().
		Int32("user_id", s.UserID).
		Int("requested", len(ids)).
		Msg("stats requested")
	return out, nil
}

func (e *Engine) handleReceiveUpdates(s *Session, _ []byte) ([]byte, error) {
	return e.Roster(s.UserID), nil
}

func (e *Engine) handleJoinChannel(s *Session, payload []byte) ([]byte, error) {
	name, err := proto.ReadString(payload)
	if err != nil {
		return nil, err
	}
	if name != e.channel.Name {
		e.log.Debug().Int32("user_id", s.UserID).Str("channel", name).Msg("join of unknown channel")
		return nil, nil
	}
	return proto.ChannelJoinSuccess(name), nil
}

func (e *Engine) handleSendMessage(s *Session, payload []byte) ([]byte, error) {
	r := proto.NewReader(payload)
	target, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	text, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	if _, err := r.ReadString(); err != nil {
		return nil, err
	}

	if !strings.HasPrefix(target, proto.ChannelSigil) {
		e.log.Debug().Int32("user_id", s.UserID).Str("target", target).Msg("private messages are not supported")
		return nil, nil
	}

	e.log.Info().
		Str("username", s.Username).
		Str("channel", target).
		Str("text", text).
		Msg("chat message")

	packet := proto.ChatMessage(proto.Message{
		Sender:   s.Username,
		SenderID: s.UserID,
		Target:   target,
		Text:     text,
	})
	return e.broadcaster.ToChannel(target, s, packet), nil
}

func (e *Engine) handleStatusUpdate(s *Session, _ []byte) ([]byte, error) {
	e.log.Debug().Int32("user_id", s.UserID).Msg("deprecated status update")
	return nil, nil
}

func (e *Engine) handlePong(s *Session, _ []byte) ([]byte, error) {
	e.log.Debug().Int32("user_id", s.UserID).Msg("pong")
	return nil, nil
}
