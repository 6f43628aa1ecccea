package core

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/kolejker/OsaltServer/internal/proto"
)

func newEchoDispatcher() (*Dispatcher, *[]proto.PacketID) {
	logger := zerolog.Nop()
	d := NewDispatcher(&logger)
	var seen []proto.PacketID

	d.Register(1, HandlerFunc(func(_ *Session, payload []byte) ([]byte, error) {
		seen = append(seen, 1)
		return payload, nil
	}))
	d.Register(2, HandlerFunc(func(_ *Session, _ []byte) ([]byte, error) {
		seen = append(seen, 2)
		return nil, errors.New("boom")
	}))
	return d, &seen
}

func TestDispatcherStopsAtOverrunningFrame(t *testing.T) {
	d, seen := newEchoDispatcher()
	s := NewSession("t", 1, "alice")

	body := proto.CreatePacket(1, []byte("ab"))
	body = append(body, proto.CreatePacket(1, []byte("cd"))...)

	bad := proto.CreatePacket(1, []byte("ef"))
	binary.LittleEndian.PutUint32(bad[3:7], 50)
	body = append(body, bad...)

	out := d.Process(s, body)
	assert.Equal(t, []byte("abcd"), out)
	assert.Equal(t, []proto.PacketID{1, 1}, *seen)
}

func TestDispatcherSkipsUnknownIDs(t *testing.T) {
	d, seen := newEchoDispatcher()
	s := NewSession("t", 1, "alice")

	body := proto.CreatePacket(200, []byte("zzz"))
	body = append(body, proto.CreatePacket(1, []byte("ok"))...)

	assert.Equal(t, []byte("ok"), d.Process(s, body))
	assert.Equal(t, []proto.PacketID{1}, *seen)
}

func TestDispatcherHandlerErrorEndsBuffer(t *testing.T) {
	d, seen := newEchoDispatcher()
	s := NewSession("t", 1, "alice")

	body := proto.CreatePacket(1, []byte("x"))
	body = append(body, proto.CreatePacket(2, nil)...)
	body = append(body, proto.CreatePacket(1, []byte("y"))...)

	assert.Equal(t, []byte("x"), d.Process(s, body))
	assert.Equal(t, []proto.PacketID{1, 2}, *seen)
}

func TestDispatcherIgnoresShortTail(t *testing.T) {
	d, seen := newEchoDispatcher()
	s := NewSession("t", 1, "alice")

	body := append(proto.CreatePacket(1, []byte("x")), 0x01, 0x00, 0x00)
	assert.Equal(t, []byte("x"), d.Process(s, body))
	assert.Len(t, *seen, 1)

	assert.Empty(t, d.Process(s, nil))
}
