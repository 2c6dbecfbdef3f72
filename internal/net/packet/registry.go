package packet

import (
	"fmt"

	gonet "github.com/wraithgo/wraith/internal/net"
	"go.uber.org/zap"
)

// HandlerFunc handles one decoded message from a client.
type HandlerFunc func(c *gonet.Client, r *Reader) error

// Registry maps opcodes to handlers. It is a network-stage behavior: enable
// it on the network stage and every inbound message is routed through
// Receive. Only the frame goroutine touches it.
type Registry struct {
	handlers map[byte]HandlerFunc
	charset  *Charset
	log      *zap.Logger
}

func NewRegistry(cs *Charset, log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	if cs == nil {
		cs = UTF8
	}
	return &Registry{
		handlers: make(map[byte]HandlerFunc),
		charset:  cs,
		log:      log,
	}
}

// Register maps an opcode to a handler, replacing any previous one.
func (reg *Registry) Register(opcode byte, fn HandlerFunc) {
	reg.handlers[opcode] = fn
}

// Receive dispatches in to the handler for its opcode. Unknown opcodes are
// ignored.
func (reg *Registry) Receive(in gonet.Inbound) error {
	fn, ok := reg.handlers[in.Msg.Opcode]
	if !ok {
		reg.log.Debug("unknown opcode",
			zap.Uint8("opcode", in.Msg.Opcode),
			zap.Int("size", len(in.Msg.Payload)),
		)
		return nil
	}
	if err := fn(in.Client, NewReader(in.Msg, reg.charset)); err != nil {
		return fmt.Errorf("opcode %d: %w", in.Msg.Opcode, err)
	}
	return nil
}
