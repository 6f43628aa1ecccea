package core

import (
	"github.com/rs/zerolog"

	"github.com/kolejker/OsaltServer/internal/proto"
)

// Handler processes one inbound packet payload for a session and returns
// the bytes to append to that session's response.
type Handler interface {
	Handle(s *Session, payload []byte) ([]byte, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(s *Session, payload []byte) ([]byte, error)

// Handle calls f(s, payload).
func (f HandlerFunc) Handle(s *Session, payload []byte) ([]byte, error) {
	return f(s, payload)
}

// Dispatcher splits an inbound buffer into frames and routes each frame
// to the handler registered for its packet id.
type Dispatcher struct {
	handlers map[proto.PacketID]Handler
	log      *zerolog.Logger
}

// NewDispatcher creates a dispatcher with no handlers.
func NewDispatcher(logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[proto.PacketID]Handler),
		log:      logger,
	}
}

// Register binds h to id, replacing any previous handler.
func (d *Dispatcher) Register(id proto.PacketID, h Handler) {
	d.handlers[id] = h
}

// Process handles every complete frame in body and concatenates the
// handler output. A frame whose declared length overruns the buffer ends
// processing. A failing handler also ends processing; output of earlier
// frames is kept. Unknown packet ids are skipped.
func (d *Dispatcher) Process(s *Session, body []byte) []byte {
	var out []byte
	r := proto.NewReader(body)

	for r.Remaining() >= proto.HeaderSize {
		h, err := r.ReadHeader()
		if err != nil {
			break
		}
		if uint64(h.Length) > uint64(r.Remaining()) {
			d.log.Warn().
				Uint16("packet_id", uint16(h.ID)).
				Uint32("length", h.Length).
				Int("remaining", r.Remaining()).
				Msg("packet length exceeds buffer")
			break
		}
		payload, _ := r.ReadBytes(int(h.Length))

		handler, ok := d.handlers[h.ID]
		if !ok {
			d.log.Debug().
				Uint16("packet_id", uint16(h.ID)).
				Uint32("length", h.Length).
				Msg("unhandled packet")
			continue
		}

		resp, err := handler.Handle(s, payload)
		if err != nil {
			d.log.Warn().Err(err).
				Str("packet", proto.InboundName(h.ID)).
				Int32("user_id", s.UserID).
				Msg("packet handler failed")
			break
		}
		out = append(out, resp...)
	}

	return out
}
