//go:build unix

package netpoll

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"github.com/3esharf1k/phone-book/rpc/transport"
	"golang.org/x/sys/unix"
)

// acceptTimeout bounds Accept when the listener was reported readable
const acceptTimeout = 10 * time.Millisecond

// --------------------------------------------------------------------------
// Socket
// --------------------------------------------------------------------------

// Socket implements transport.Socket on top of a net.Conn. Reads and writes
// go straight to the file descriptor and never wait for readiness.
type Socket struct {
	conn net.Conn
	raw  syscall.RawConn
	fd   int
}

// NewSocket wraps conn, which must expose its file descriptor (TCP and unix
// connections do)
func NewSocket(conn net.Conn) (*Socket, error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return nil, fmt.Errorf("connection of type %T has no file descriptor", conn)
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("failed to access raw connection: %w", err)
	}
	fd, err := rawFD(raw)
	if err != nil {
		return nil, err
	}
	return &Socket{conn: conn, raw: raw, fd: fd}, nil
}

// FD returns the file descriptor to register with a Poller
func (s *Socket) FD() int {
	return s.fd
}

// RemoteAddr returns the address of the peer
func (s *Socket) RemoteAddr() string {
	return s.conn.RemoteAddr().String()
}

func (s *Socket) Read(p []byte) (int, error) {
	var n int
	var opErr error
	err := s.raw.Read(func(fd uintptr) bool {
		n, opErr = unix.Read(int(fd), p)
		return true
	})
	if err == nil {
		err = opErr
	}
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

func (s *Socket) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	var n int
	var opErr error
	err := s.raw.Write(func(fd uintptr) bool {
		n, opErr = unix.Write(int(fd), p)
		return true
	})
	if err == nil {
		err = opErr
	}
	if err != nil {
		return 0, classify(err)
	}
	return n, nil
}

func (s *Socket) Close() error {
	return s.conn.Close()
}

// classify maps errno values to the transport errors
func classify(err error) error {
	switch {
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK), errors.Is(err, unix.EINTR):
		return transport.ErrWouldBlock
	case errors.Is(err, unix.ECONNRESET), errors.Is(err, unix.EPIPE):
		return fmt.Errorf("%w: %v", transport.ErrConnectionReset, err)
	default:
		return err
	}
}

func rawFD(raw syscall.RawConn) (int, error) {
	fd := -1
	if err := raw.Control(func(f uintptr) { fd = int(f) }); err != nil {
		return -1, fmt.Errorf("failed to read file descriptor: %w", err)
	}
	return fd, nil
}

// --------------------------------------------------------------------------
// Listener
// --------------------------------------------------------------------------

// Listener is a TCP listener whose file descriptor can be registered with a Poller
type Listener struct {
	ln *net.TCPListener
	fd int
}

// Listen creates a TCP listener on endpoint
func Listen(endpoint string) (*Listener, error) {
	addr, err := net.ResolveTCPAddr("tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", endpoint, err)
	}
	ln, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to create TCP socket: %w", err)
	}
	raw, err := ln.SyscallConn()
	if err != nil {
		ln.Close()
		return nil, fmt.Errorf("failed to access raw listener: %w", err)
	}
	fd, err := rawFD(raw)
	if err != nil {
		ln.Close()
		return nil, err
	}
	return &Listener{ln: ln, fd: fd}, nil
}

// FD returns the file descriptor to register with a Poller
func (l *Listener) FD() int {
	return l.fd
}

// Addr returns the bound address
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Accept accepts one pending connection. It returns transport.ErrWouldBlock if
// no connection arrives within a short grace period.
func (l *Listener) Accept() (*net.TCPConn, error) {
	if err := l.ln.SetDeadline(time.Now().Add(acceptTimeout)); err != nil {
		return nil, err
	}
	conn, err := l.ln.AcceptTCP()
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, transport.ErrWouldBlock
		}
		return nil, err
	}
	return conn, nil
}

// Close closes the listener
func (l *Listener) Close() error {
	return l.ln.Close()
}
