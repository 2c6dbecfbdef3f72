package net

import (
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Connection identifies the peer of a Client.
type Connection struct {
	IP   string
	Port int
}

func (c Connection) String() string {
	return net.JoinHostPort(c.IP, strconv.Itoa(c.Port))
}

// Client is one connected peer. ReadMessage and SendMessage may be called
// from different goroutines; each direction is serialised separately.
type Client struct {
	ID uint64

	conn  net.Conn
	codec Codec
	peer  Connection

	readTimeout  time.Duration
	writeTimeout time.Duration

	rmu sync.Mutex
	wmu sync.Mutex

	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithTimeouts(read, write time.Duration) ClientOption {
	return func(c *Client) {
		c.readTimeout = read
		c.writeTimeout = write
	}
}

func NewClient(conn net.Conn, codec Codec, id uint64, log *zap.Logger, opts ...ClientOption) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		ID:    id,
		conn:  conn,
		codec: codec,
		peer:  peerOf(conn.RemoteAddr()),
		log:   log.With(zap.Uint64("client", id)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func peerOf(addr net.Addr) Connection {
	if addr == nil {
		return Connection{}
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return Connection{IP: tcp.IP.String(), Port: tcp.Port}
	}
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return Connection{IP: addr.String()}
	}
	p, _ := strconv.Atoi(port)
	return Connection{IP: host, Port: p}
}

// Connection returns the peer address.
func (c *Client) Connection() Connection { return c.peer }

// Kick closes the connection. Blocked reads and sends return with the
// transport's closed error.
func (c *Client) Kick() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		err = c.conn.Close()
		c.log.Debug("client kicked", zap.String("peer", c.peer.String()))
	})
	return err
}

func (c *Client) IsClosed() bool { return c.closed.Load() }

// ReadMessage blocks until the codec decodes one message. Transport
// failures are returned exactly as the codec reports them; there is no
// retry.
func (c *Client) ReadMessage() (Message, error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()
	if c.readTimeout > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.readTimeout)); err != nil {
			return Message{}, err
		}
	}
	return c.codec.ReadMessage(c.conn)
}

// SendMessage encodes m onto the connection. Errors are returned unchanged.
func (c *Client) SendMessage(m Message) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	return c.codec.WriteMessage(c.conn, m)
}

// IsClosedErr reports whether err means the connection is gone.
func IsClosedErr(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe)
}
