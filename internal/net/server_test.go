package net

import (
	"net"
	"testing"
	"time"
)

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting on channel")
	}
	var zero T
	return zero
}

func TestServerQueuesInboundAndReportsDeadClients(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("listen: %v", err)
	}
	srv := newServer(ln, FrameCodec{}, 8, nil)
	defer srv.Shutdown()

	local, remote := net.Pipe()
	c := srv.Attach(local)
	if got := waitFor(t, srv.NewClients()); got != c {
		t.Fatal("NewClients delivered a different client")
	}

	peer := NewClient(remote, FrameCodec{}, 99, nil)
	go peer.SendMessage(Message{Opcode: 4, Payload: []byte("x")})

	in := waitFor(t, srv.Inbound())
	if in.Client != c || in.Msg.Opcode != 4 || string(in.Msg.Payload) != "x" {
		t.Fatalf("inbound = %+v", in)
	}

	_ = peer.Kick()
	if dead := waitFor(t, srv.DeadClients()); dead != c {
		t.Fatal("DeadClients delivered a different client")
	}
	if srv.Clients() != 0 {
		t.Fatalf("Clients() = %d, want 0", srv.Clients())
	}
}

func TestServerAcceptLoop(t *testing.T) {
	srv, err := NewServer("127.0.0.1:0", FrameCodec{}, 8, nil)
	if err != nil {
		t.Skipf("listen: %v", err)
	}
	go srv.AcceptLoop()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	c := waitFor(t, srv.NewClients())
	if c.Connection().IP != "127.0.0.1" {
		t.Fatalf("peer = %+v", c.Connection())
	}

	srv.Shutdown()
	if !c.IsClosed() {
		t.Fatal("Shutdown should kick live clients")
	}
}
