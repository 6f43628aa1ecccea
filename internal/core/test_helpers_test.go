package core

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/kolejker/OsaltServer/internal/proto"
)

type frame struct {
	ID      proto.PacketID
	Payload []byte
}

func newTestEngine(t *testing.T, mode BroadcastMode) *Engine {
	t.Helper()

	logger := zerolog.Nop()
	e, err := NewEngine(Options{BroadcastMode: mode}, nil, &logger)
	require.NoError(t, err)
	return e
}

func addSession(e *Engine, token string, userID int32, username string) *Session {
	s := NewSession(token, userID, username)
	e.Registry().Add(token, s)
	return s
}

// splitFrames decodes a response buffer into frames, failing on any
// trailing garbage.
func splitFrames(t *testing.T, buf []byte) []frame {
	t.Helper()

	var frames []frame
	r := proto.NewReader(buf)
	for r.Remaining() > 0 {
		h, err := r.ReadHeader()
		require.NoError(t, err)
		payload, err := r.ReadBytes(int(h.Length))
		require.NoError(t, err)
		frames = append(frames, frame{ID: h.ID, Payload: payload})
	}
	return frames
}

func frameIDs(frames []frame) []proto.PacketID {
	ids := make([]proto.PacketID, len(frames))
	for i, f := range frames {
		ids[i] = f.ID
	}
	return ids
}

func changeStatusPayload(status uint8, text, md5 string, mods uint32, mode uint8, beatmapID int32) []byte {
	return proto.NewWriter().
		Uint8(status).
		String(text).
		String(md5).
		Uint32(mods).
		Uint8(mode).
		Int32(beatmapID).
		Bytes()
}

func statsUserID(t *testing.T, f frame) int32 {
	t.Helper()

	require.Equal(t, proto.OutUserStats, f.ID)
	id, err := proto.NewReader(f.Payload).ReadInt32()
	require.NoError(t, err)
	return id
}
