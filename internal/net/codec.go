package net

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Message is one decoded unit exchanged with a client.
type Message struct {
	Opcode  byte
	Payload []byte
}

// Codec turns a byte stream into Messages and back. Errors from the
// underlying stream are returned unchanged so callers can test them with
// errors.Is.
type Codec interface {
	ReadMessage(r io.Reader) (Message, error)
	WriteMessage(w io.Writer, m Message) error
}

// maxFrame is the largest total frame size the 2-byte header can carry.
const maxFrame = 0xFFFF

// FrameCodec reads and writes length-prefixed frames.
// Wire format: [2 bytes LE: total length including header][opcode][payload].
type FrameCodec struct{}

func (FrameCodec) ReadMessage(r io.Reader) (Message, error) {
	frame, err := ReadFrame(r)
	if err != nil {
		return Message{}, err
	}
	return Message{Opcode: frame[0], Payload: frame[1:]}, nil
}

func (FrameCodec) WriteMessage(w io.Writer, m Message) error {
	buf := make([]byte, 0, len(m.Payload)+1)
	buf = append(buf, m.Opcode)
	buf = append(buf, m.Payload...)
	return WriteFrame(w, buf)
}

// ReadFrame reads one frame from r and returns its body without the
// length header. The body is never empty.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [2]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}

	totalLen := int(binary.LittleEndian.Uint16(header[:]))
	bodyLen := totalLen - 2
	if bodyLen <= 0 {
		return nil, fmt.Errorf("invalid frame length: %d", totalLen)
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

// WriteFrame writes body as one frame in a single Write call.
func WriteFrame(w io.Writer, body []byte) error {
	totalLen := len(body) + 2
	if len(body) == 0 || totalLen > maxFrame {
		return fmt.Errorf("invalid frame body size: %d", len(body))
	}
	buf := make([]byte, totalLen)
	binary.LittleEndian.PutUint16(buf[:2], uint16(totalLen))
	copy(buf[2:], body)
	_, err := w.Write(buf)
	return err
}
