package main

import (
	gonet "github.com/wraithgo/wraith/internal/net"
	"github.com/wraithgo/wraith/internal/net/packet"
)

// Opcodes served by the built-in diagnostic handlers.
const (
	opPing   byte = 0x01
	opPong   byte = 0x02
	opStatus byte = 0x03
)

// frameSource is what the status handler reports on.
type frameSource interface {
	Frame() uint64
}

func registerHandlers(reg *packet.Registry, cs *packet.Charset, frames frameSource) {
	// Ping echoes its string back with the current frame number.
	reg.Register(opPing, func(c *gonet.Client, r *packet.Reader) error {
		text := r.ReadS()
		w := packet.NewWriter(opPong, cs)
		writeFrame(w, frames.Frame())
		w.WriteS(text)
		return c.SendMessage(w.Message())
	})
	reg.Register(opStatus, func(c *gonet.Client, _ *packet.Reader) error {
		w := packet.NewWriter(opStatus, cs)
		writeFrame(w, frames.Frame())
		return c.SendMessage(w.Message())
	})
}

// writeFrame sends a frame number as two D fields, low word first.
func writeFrame(w *packet.Writer, frame uint64) {
	w.WriteD(int32(uint32(frame)))
	w.WriteD(int32(uint32(frame >> 32)))
}

func readFrame(r *packet.Reader) uint64 {
	lo := uint32(r.ReadD())
	hi := uint32(r.ReadD())
	return uint64(hi)<<32 | uint64(lo)
}
