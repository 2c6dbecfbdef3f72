package net

import (
	"net"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// Inbound is a message read from a client, queued for the frame goroutine.
type Inbound struct {
	Client *Client
	Msg    Message
}

// Server accepts TCP connections and reads from each client on its own
// goroutine. Connected clients, dead clients and inbound messages reach the
// frame goroutine through channels.
type Server struct {
	listener net.Listener
	codec    Codec
	opts     []ClientOption
	nextID   atomic.Uint64

	newConns chan *Client
	deadCh   chan *Client
	inbound  chan Inbound

	mu      sync.Mutex
	clients map[uint64]*Client

	closeCh   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	log       *zap.Logger
}

func NewServer(bindAddr string, codec Codec, inSize int, log *zap.Logger, opts ...ClientOption) (*Server, error) {
	ln, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}
	return newServer(ln, codec, inSize, log, opts...), nil
}

func newServer(ln net.Listener, codec Codec, inSize int, log *zap.Logger, opts ...ClientOption) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		listener: ln,
		codec:    codec,
		opts:     opts,
		newConns: make(chan *Client, 64),
		deadCh:   make(chan *Client, 64),
		inbound:  make(chan Inbound, inSize),
		clients:  make(map[uint64]*Client),
		closeCh:  make(chan struct{}),
		log:      log,
	}
}

// AcceptLoop runs in its own goroutine until Shutdown.
func (s *Server) AcceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.closeCh:
				return
			default:
			}
			s.log.Error("accept failed", zap.Error(err))
			continue
		}
		s.Attach(conn)
	}
}

// Attach wraps conn in a Client and starts its read loop. It is used by
// AcceptLoop and by tests that bring their own connections.
func (s *Server) Attach(conn net.Conn) *Client {
	id := s.nextID.Add(1)
	c := NewClient(conn, s.codec, id, s.log, s.opts...)

	s.mu.Lock()
	s.clients[id] = c
	s.mu.Unlock()

	s.log.Info("client connected",
		zap.Uint64("client", id),
		zap.String("peer", c.Connection().String()),
	)

	s.wg.Add(1)
	select {
	case <-s.closeCh:
		s.wg.Done()
		s.drop(c)
		return c
	default:
	}
	select {
	case s.newConns <- c:
	default:
		s.wg.Done()
		s.log.Warn("connect queue full, rejecting client", zap.Uint64("client", id))
		s.drop(c)
		return c
	}
	go s.readLoop(c)
	return c
}

func (s *Server) readLoop(c *Client) {
	defer s.wg.Done()
	defer s.drop(c)

	for {
		msg, err := c.ReadMessage()
		if err != nil {
			if !c.IsClosed() && !IsClosedErr(err) {
				s.log.Debug("read failed", zap.Uint64("client", c.ID), zap.Error(err))
			}
			return
		}
		// Block rather than drop: losing a message would desync the peer.
		// The wait only stalls this client's goroutine.
		select {
		case s.inbound <- Inbound{Client: c, Msg: msg}:
		case <-s.closeCh:
			return
		}
	}
}

func (s *Server) drop(c *Client) {
	_ = c.Kick()
	s.mu.Lock()
	_, ok := s.clients[c.ID]
	delete(s.clients, c.ID)
	s.mu.Unlock()
	if !ok {
		return
	}
	select {
	case s.deadCh <- c:
	default:
		s.log.Warn("dead-client queue full", zap.Uint64("client", c.ID))
	}
}

func (s *Server) NewClients() <-chan *Client  { return s.newConns }
func (s *Server) DeadClients() <-chan *Client { return s.deadCh }
func (s *Server) Inbound() <-chan Inbound     { return s.inbound }
func (s *Server) Addr() net.Addr              { return s.listener.Addr() }

// Clients returns the number of live clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Shutdown stops accepting, kicks every client and waits for the read
// goroutines to exit.
func (s *Server) Shutdown() {
	s.closeOnce.Do(func() {
		close(s.closeCh)
		s.listener.Close()

		s.mu.Lock()
		live := make([]*Client, 0, len(s.clients))
		for _, c := range s.clients {
			live = append(live, c)
		}
		s.mu.Unlock()
		for _, c := range live {
			_ = c.Kick()
		}
	})
	s.wg.Wait()
}
