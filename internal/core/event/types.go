package event

import gonet "github.com/wraithgo/wraith/internal/net"

// ClientConnected is emitted by the network stage for each new client.
type ClientConnected struct {
	Client *gonet.Client
}

// ClientDisconnected is emitted once a client's connection is gone.
type ClientDisconnected struct {
	Client *gonet.Client
}
