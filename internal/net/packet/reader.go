package packet

import (
	"encoding/binary"

	gonet "github.com/wraithgo/wraith/internal/net"
)

// Reader reads little-endian fields from a message payload. Reads past the
// end return zero values; Err reports whether that happened.
type Reader struct {
	opcode  byte
	data    []byte
	off     int
	short   bool
	charset *Charset
}

func NewReader(msg gonet.Message, cs *Charset) *Reader {
	if cs == nil {
		cs = UTF8
	}
	return &Reader{opcode: msg.Opcode, data: msg.Payload, charset: cs}
}

func (r *Reader) Opcode() byte { return r.opcode }

// Short reports whether any read ran past the payload.
func (r *Reader) Short() bool { return r.short }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

// ReadC reads 1 unsigned byte.
func (r *Reader) ReadC() byte {
	if r.off >= len(r.data) {
		r.short = true
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

// ReadH reads 2 bytes as little-endian uint16.
func (r *Reader) ReadH() uint16 {
	if r.off+2 > len(r.data) {
		r.short = true
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

// ReadD reads 4 bytes as little-endian int32.
func (r *Reader) ReadD() int32 {
	if r.off+4 > len(r.data) {
		r.short = true
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

// ReadS reads a null-terminated string in the reader's charset.
func (r *Reader) ReadS() string {
	start := r.off
	for r.off < len(r.data) {
		if r.data[r.off] == 0 {
			raw := r.data[start:r.off]
			r.off++
			return r.charset.Decode(raw)
		}
		r.off++
	}
	r.short = true
	return r.charset.Decode(r.data[start:r.off])
}
