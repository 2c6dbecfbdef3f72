package system

import (
	"github.com/wraithgo/wraith/internal/core/event"
	"github.com/wraithgo/wraith/internal/core/pipeline"
	gonet "github.com/wraithgo/wraith/internal/net"
	"go.uber.org/zap"
)

// Receiver is the network capability: it is handed every inbound message.
type Receiver interface {
	Receive(in gonet.Inbound) error
}

// ClientSource is the part of the network server the stage consumes.
type ClientSource interface {
	NewClients() <-chan *gonet.Client
	DeadClients() <-chan *gonet.Client
	Inbound() <-chan gonet.Inbound
}

// NetworkStage runs first in the frame. It announces connected clients,
// hands up to maxPerTick queued messages to every Receiver and then
// announces disconnected clients, so a client's last messages are seen
// before its disconnect event. While the inbound queue still holds a
// backlog, disconnects wait for a later frame.
type NetworkStage struct {
	*pipeline.Base
	src        ClientSource
	bus        *event.Bus
	maxPerTick int
	delivered  uint64
	gone       []*gonet.Client // disconnected, not yet announced
}

func NewNetworkStage(order pipeline.Order, src ClientSource, bus *event.Bus, maxPerTick int, log *zap.Logger) (*NetworkStage, error) {
	prio, err := order.Priority(pipeline.KindNetwork)
	if err != nil {
		return nil, err
	}
	if maxPerTick <= 0 {
		maxPerTick = 64
	}
	return &NetworkStage{
		Base:       pipeline.NewBase("network", prio, log),
		src:        src,
		bus:        bus,
		maxPerTick: maxPerTick,
	}, nil
}

// Delivered returns the number of messages handed to receivers so far.
func (s *NetworkStage) Delivered() uint64 { return s.delivered }

func (s *NetworkStage) Run() {
	s.drainNew()
	s.drainInbound()
	s.drainDead()
}

func (s *NetworkStage) drainNew() {
	for {
		select {
		case c := <-s.src.NewClients():
			if s.bus != nil {
				event.Emit(s.bus, event.ClientConnected{Client: c})
			}
		default:
			return
		}
	}
}

func (s *NetworkStage) drainInbound() {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case in := <-s.src.Inbound():
			s.deliver(in)
		default:
			return
		}
	}
}

// drainDead collects disconnected clients and announces them once the
// inbound queue is empty. A client's messages are queued before its dead
// entry, so an empty queue seen after the read means they were delivered.
func (s *NetworkStage) drainDead() {
	for drained := false; !drained; {
		select {
		case c := <-s.src.DeadClients():
			s.gone = append(s.gone, c)
		default:
			drained = true
		}
	}
	if len(s.gone) == 0 || len(s.src.Inbound()) > 0 {
		return
	}
	for _, c := range s.gone {
		s.Log().Debug("client gone", zap.Uint64("client", c.ID))
		if s.bus != nil {
			event.Emit(s.bus, event.ClientDisconnected{Client: c})
		}
	}
	s.gone = s.gone[:0]
}

func (s *NetworkStage) deliver(in gonet.Inbound) {
	s.delivered++
	for _, b := range s.Behaviors() {
		r, ok := b.(Receiver)
		if !ok {
			continue
		}
		_ = s.Invoke(b, func() error { return r.Receive(in) })
	}
}

// EventStage delivers the events emitted during the previous frame.
type EventStage struct {
	*pipeline.Base
	bus *event.Bus
}

func NewEventStage(order pipeline.Order, bus *event.Bus, log *zap.Logger) (*EventStage, error) {
	prio, err := order.Priority(pipeline.KindEvents)
	if err != nil {
		return nil, err
	}
	return &EventStage{Base: pipeline.NewBase("events", prio, log), bus: bus}, nil
}

func (s *EventStage) Run() {
	s.bus.SwapBuffers()
	_ = s.Invoke(s.bus, func() error {
		s.bus.DispatchAll()
		return nil
	})
}
