package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/3esharf1k/phone-book/lib/store"
	"github.com/3esharf1k/phone-book/rpc/codec"
	"github.com/3esharf1k/phone-book/rpc/common"
	"github.com/3esharf1k/phone-book/rpc/transport"
	"github.com/3esharf1k/phone-book/rpc/transport/conn"
	"github.com/3esharf1k/phone-book/rpc/transport/netpoll"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc")

// DefaultPollTimeout is used when the config does not set a poll timeout
const DefaultPollTimeout = 100 * time.Millisecond

// NewRPCServer creates a new RPC server
// It takes a config, the record store and the adapter that executes requests
//
// Usage:
//
//	s := server.NewRPCServer(
//		*config,
//		fstore.NewFileStore(config.StorePath),
//		server.NewRecordStoreServerAdapter(),
//	)
//
//	if err := s.Serve(ctx); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	recordStore store.IRecordStore,
	adapter IRPCServerAdapter,
) *RPCServer {
	if config.PollTimeout <= 0 {
		config.PollTimeout = DefaultPollTimeout
	}

	s := &RPCServer{
		config:  config,
		adapter: adapter,
		poller:  netpoll.New(),
		conns:   xsync.NewMapOf[int, *conn.Connection](),
	}
	s.metrics = newServerMetrics(s.conns.Size)
	s.store = &instrumentedStore{IRecordStore: recordStore, metrics: s.metrics}

	Logger.Infof("Created RPC Server")
	Logger.Infof(config.String())

	return s
}

// RPCServer accepts connections and drives all of them from a single readiness loop
type RPCServer struct {
	config   common.ServerConfig
	store    store.IRecordStore
	adapter  IRPCServerAdapter
	metrics  *serverMetrics
	poller   *netpoll.Poller
	listener *netpoll.Listener

	// conns is the working set of open connections keyed by file descriptor.
	// It is only modified by the loop, the metrics endpoint reads its size.
	conns *xsync.MapOf[int, *conn.Connection]
}

// Listen binds the listening socket. Serve calls it if it has not been called yet.
func (s *RPCServer) Listen() error {
	if s.listener != nil {
		return nil
	}
	ln, err := netpoll.Listen(s.config.Endpoint)
	if err != nil {
		return err
	}
	if err := s.poller.Register(ln.FD(), transport.InterestRead); err != nil {
		ln.Close()
		return fmt.Errorf("failed to register listener: %w", err)
	}
	s.listener = ln
	Logger.Infof("Listening on %s", ln.Addr())
	return nil
}

// Addr returns the address of the listening socket, nil before Listen
func (s *RPCServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve runs the readiness loop until ctx is cancelled or no registration is left.
// All connections are closed when it returns.
func (s *RPCServer) Serve(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	defer s.shutdown()

	if s.config.MetricsEndpoint != "" {
		s.metrics.serveHTTP(ctx, s.config.MetricsEndpoint)
	}

	for {
		select {
		case <-ctx.Done():
			Logger.Infof("shutting down: %v", ctx.Err())
			return nil
		default:
		}

		if s.poller.Len() == 0 {
			return nil
		}

		events, err := s.poller.Wait(s.config.PollTimeout)
		if err != nil {
			return fmt.Errorf("readiness wait failed: %w", err)
		}

		for _, ev := range events {
			if ev.FD == s.listener.FD() {
				s.accept()
				continue
			}
			c, ok := s.conns.Load(ev.FD)
			if !ok {
				continue
			}
			s.service(ev.FD, c, ev.Readable, ev.Writable)
		}
	}
}

// accept takes one pending connection from the listener and registers it for reading
func (s *RPCServer) accept() {
	tcpConn, err := s.listener.Accept()
	if errors.Is(err, transport.ErrWouldBlock) {
		return
	}
	if err != nil {
		Logger.Errorf("accept failed: %v", err)
		return
	}

	if err := transport.UpgradeConnection(tcpConn, s.config.TCP); err != nil {
		Logger.Warningf("failed to apply tcp options to %s: %v", tcpConn.RemoteAddr(), err)
	}

	sock, err := netpoll.NewSocket(tcpConn)
	if err != nil {
		Logger.Errorf("failed to wrap connection from %s: %v", tcpConn.RemoteAddr(), err)
		tcpConn.Close()
		return
	}
	if err := s.poller.Register(sock.FD(), transport.InterestRead); err != nil {
		Logger.Errorf("failed to register connection from %s: %v", sock.RemoteAddr(), err)
		sock.Close()
		return
	}

	role := &serverRole{store: s.store, adapter: s.adapter, metrics: s.metrics}
	c := conn.New(sock, s.poller.Watcher(sock.FD()), role, sock.RemoteAddr())
	s.conns.Store(sock.FD(), c)
	s.metrics.accepted.Inc()
	Logger.Infof("accepted connection %s from %s", c.ID(), c.Addr())
}

// service forwards one readiness notification. Any failure, including a panic,
// closes only the affected connection.
func (s *RPCServer) service(fd int, c *conn.Connection, readable, writable bool) {
	err := handleEvent(c, readable, writable)

	var protoErr *codec.ProtocolError
	switch {
	case err == nil:
	case errors.Is(err, transport.ErrPeerClosed):
		Logger.Debugf("connection %s: %s closed the connection", c.ID(), c.Addr())
	case errors.As(err, &protoErr):
		s.metrics.protocolErrors.Inc()
		Logger.Errorf("connection %s from %s: %v", c.ID(), c.Addr(), err)
	default:
		Logger.Errorf("connection %s from %s: %v", c.ID(), c.Addr(), err)
	}

	if err != nil || c.Closed() {
		s.drop(fd, c)
	}
}

func handleEvent(c *conn.Connection, readable, writable bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while handling connection: %v", r)
		}
	}()
	return c.HandleEvent(readable, writable)
}

// drop closes a connection and removes it from the working set
func (s *RPCServer) drop(fd int, c *conn.Connection) {
	if err := c.Close(); err != nil {
		Logger.Warningf("failed to close connection %s: %v", c.ID(), err)
	}
	s.conns.Delete(fd)
}

// shutdown closes every connection, the listener and the poller
func (s *RPCServer) shutdown() {
	s.conns.Range(func(fd int, c *conn.Connection) bool {
		s.drop(fd, c)
		return true
	})
	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			Logger.Warningf("failed to close listener: %v", err)
		}
	}
	_ = s.poller.Close()
}
