package packet

import (
	"encoding/binary"

	gonet "github.com/wraithgo/wraith/internal/net"
)

// Writer builds a message payload. All multi-byte writes are little-endian.
type Writer struct {
	opcode  byte
	buf     []byte
	charset *Charset
}

func NewWriter(opcode byte, cs *Charset) *Writer {
	if cs == nil {
		cs = UTF8
	}
	return &Writer{opcode: opcode, buf: make([]byte, 0, 64), charset: cs}
}

// WriteC writes 1 byte.
func (w *Writer) WriteC(v byte) {
	w.buf = append(w.buf, v)
}

// WriteH writes 2 bytes little-endian.
func (w *Writer) WriteH(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteD writes 4 bytes little-endian.
func (w *Writer) WriteD(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
}

// WriteS writes a null-terminated string in the writer's charset.
func (w *Writer) WriteS(s string) {
	w.buf = append(w.buf, w.charset.Encode(s)...)
	w.buf = append(w.buf, 0)
}

// Message returns the built message. The payload aliases the writer's
// buffer; do not keep writing after sending it.
func (w *Writer) Message() gonet.Message {
	return gonet.Message{Opcode: w.opcode, Payload: w.buf}
}
