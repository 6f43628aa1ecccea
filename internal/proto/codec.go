package proto

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

const (
	stringEmpty   byte = 0x00
	stringPresent byte = 0x0b

	maxListLen = math.MaxUint16
)

// Writer appends primitives to an in-memory payload.
// Methods return the receiver so calls can be chained.
type Writer struct {
	buf []byte
}

// NewWriter creates an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Uint8 writes a single byte.
func (w *Writer) Uint8(v uint8) *Writer {
	w.buf = append(w.buf, v)
	return w
}

// Uint16 writes a uint16.
func (w *Writer) Uint16(v uint16) *Writer {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
	return w
}

// Uint32 writes a uint32.
func (w *Writer) Uint32(v uint32) *Writer {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
	return w
}

// Int32 writes an int32.
func (w *Writer) Int32(v int32) *Writer {
	return w.Uint32(uint32(v))
}

// Uint64 writes a uint64.
func (w *Writer) Uint64(v uint64) *Writer {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	return w
}

// Float32 writes an IEEE-754 float32.
func (w *Writer) Float32(v float32) *Writer {
	return w.Uint32(math.Float32bits(v))
}

// String writes a bancho string.
// Format: 0x00 for "", otherwise [0x0b][uleb128 length][utf-8 bytes].
func (w *Writer) String(s string) *Writer {
	if s == "" {
		w.buf = append(w.buf, stringEmpty)
		return w
	}
	w.buf = append(w.buf, stringPresent)
	w.buf = binary.AppendUvarint(w.buf, uint64(len(s)))
	w.buf = append(w.buf, s...)
	return w
}

// IntList writes [count:2][values:4*count]. Lists longer than 65535
// entries are truncated to fit the count field.
func (w *Writer) IntList(values []uint32) *Writer {
	if len(values) > maxListLen {
		values = values[:maxListLen]
	}
	w.Uint16(uint16(len(values)))
	for _, v := range values {
		w.Uint32(v)
	}
	return w
}

// Raw writes bytes verbatim.
func (w *Writer) Raw(p []byte) *Writer {
	w.buf = append(w.buf, p...)
	return w
}

// Bytes returns the written payload.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reader decodes primitives from a cursor into a byte buffer. Frames are
// packed back-to-back, so decoding never assumes the buffer ends where a
// value does.
type Reader struct {
	data []byte
	off  int
}

// NewReader creates a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset returns the cursor position.
func (r *Reader) Offset() int {
	return r.off
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

func (r *Reader) next(op string, n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, protocolError(op, "need %d bytes, have %d", n, r.Remaining())
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadUint8 reads a single byte.
func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.next("read uint8", 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadUint16 reads a uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.next("read uint16", 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadUint32 reads a uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.next("read uint32", 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadInt32 reads an int32.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadBytes reads exactly n bytes. The returned slice aliases the buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	return r.next("read bytes", n)
}

// ReadULEB128 reads an unsigned LEB128 value.
func (r *Reader) ReadULEB128() (uint64, error) {
	var (
		value uint64
		shift uint
	)
	for {
		b, err := r.ReadUint8()
		if err != nil {
			return 0, protocolError("read uleb128", "truncated length")
		}
		if shift >= 64 || (shift == 63 && b > 1) {
			return 0, protocolError("read uleb128", "length overflows 64 bits")
		}
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return value, nil
		}
		shift += 7
	}
}

// ReadString reads a bancho string.
func (r *Reader) ReadString() (string, error) {
	marker, err := r.ReadUint8()
	if err != nil {
		return "", protocolError("read string", "missing marker")
	}
	switch marker {
	case stringEmpty:
		return "", nil
	case stringPresent:
	default:
		return "", protocolError("read string", "unexpected marker 0x%02x", marker)
	}

	length, err := r.ReadULEB128()
	if err != nil {
		return "", err
	}
	if length > uint64(r.Remaining()) {
		return "", protocolError("read string", "length %d exceeds remaining %d", length, r.Remaining())
	}
	b, err := r.next("read string", int(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", protocolError("read string", "invalid utf-8")
	}
	return string(b), nil
}

// ReadIntList reads [count:2][values:4*count].
func (r *Reader) ReadIntList() ([]uint32, error) {
	count, err := r.ReadUint16()
	if err != nil {
		return nil, protocolError("read int list", "missing count")
	}
	if int(count)*4 > r.Remaining() {
		return nil, protocolError("read int list", "count %d exceeds remaining %d bytes", count, r.Remaining())
	}
	values := make([]uint32, 0, count)
	for i := 0; i < int(count); i++ {
		v, err := r.ReadUint32()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// ReadHeader reads a frame header. The payload length is not checked
// against the remaining bytes; callers decide how to treat an overrun.
func (r *Reader) ReadHeader() (Header, error) {
	if r.Remaining() < HeaderSize {
		return Header{}, protocolError("read header", "need %d bytes, have %d", HeaderSize, r.Remaining())
	}
	id, _ := r.ReadUint16()
	compression, _ := r.ReadUint8()
	length, _ := r.ReadUint32()
	return Header{ID: PacketID(id), Compression: compression, Length: length}, nil
}

// WriteString encodes s as a standalone bancho string.
func WriteString(s string) []byte {
	return NewWriter().String(s).Bytes()
}

// ReadString decodes a bancho string from the start of data.
func ReadString(data []byte) (string, error) {
	return NewReader(data).ReadString()
}

// WriteIntList encodes values as a standalone integer list.
func WriteIntList(values []uint32) []byte {
	return NewWriter().IntList(values).Bytes()
}

// ReadIntList decodes an integer list from the start of data.
func ReadIntList(data []byte) ([]uint32, error) {
	return NewReader(data).ReadIntList()
}

// CreatePacket frames payload as [id:2][compression=0:1][length:4][payload].
func CreatePacket(id PacketID, payload []byte) []byte {
	frame := make([]byte, HeaderSize, HeaderSize+len(payload))
	binary.LittleEndian.PutUint16(frame[0:2], uint16(id))
	frame[2] = 0
	binary.LittleEndian.PutUint32(frame[3:7], uint32(len(payload)))
	return append(frame, payload...)
}
