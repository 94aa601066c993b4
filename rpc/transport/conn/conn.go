package conn

import (
	"errors"
	"io"

	"github.com/3esharf1k/phone-book/rpc/codec"
	"github.com/3esharf1k/phone-book/rpc/transport"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

// ReadChunkSize is the maximum number of bytes read per readiness notification
const ReadChunkSize = 4096

// --------------------------------------------------------------------------
// Phase
// --------------------------------------------------------------------------

// Phase is the protocol position of a connection
type Phase uint8

const (
	PhaseAwaitingLengthPrefix Phase = iota
	PhaseAwaitingHeader
	PhaseAwaitingPayload
	PhaseReady
	PhaseSending
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingLengthPrefix:
		return "AwaitingLengthPrefix"
	case PhaseAwaitingHeader:
		return "AwaitingHeader"
	case PhaseAwaitingPayload:
		return "AwaitingPayload"
	case PhaseReady:
		return "Ready"
	case PhaseSending:
		return "Sending"
	case PhaseClosed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// --------------------------------------------------------------------------
// Role
// --------------------------------------------------------------------------

// Role produces the outgoing messages of one side of the protocol.
type Role interface {
	// Next is called with every decoded incoming message and returns the message
	// to send back. in is nil when the connection asks for its opening message,
	// which happens once on the first writable notification.
	//
	// A nil out sends nothing: with closeAfter set the connection closes right
	// away, otherwise it waits for the next incoming message. A non-nil out is
	// sent in full and, if closeAfter is set, the connection closes afterwards.
	Next(in *codec.Message) (out *codec.Message, closeAfter bool, err error)
}

// --------------------------------------------------------------------------
// Connection
// --------------------------------------------------------------------------

// Connection tracks the protocol phase and owns the receive and send buffers
// of one socket. It is driven by readiness notifications through HandleEvent
// and must only be used from a single goroutine.
type Connection struct {
	id      uuid.UUID
	addr    string
	socket  transport.Socket
	watcher transport.Watcher
	role    Role

	phase     Phase
	started   bool
	recv      []byte
	send      []byte
	chunk     []byte
	headerLen int
	header    *codec.Header

	closeAfterFlush bool
}

// New creates a connection in phase AwaitingLengthPrefix. addr is only used for logging.
func New(socket transport.Socket, watcher transport.Watcher, role Role, addr string) *Connection {
	return &Connection{
		id:      uuid.New(),
		addr:    addr,
		socket:  socket,
		watcher: watcher,
		role:    role,
		phase:   PhaseAwaitingLengthPrefix,
		chunk:   make([]byte, ReadChunkSize),
	}
}

// ID returns the unique id of the connection
func (c *Connection) ID() uuid.UUID {
	return c.id
}

// Addr returns the peer address
func (c *Connection) Addr() string {
	return c.addr
}

// Phase returns the current protocol phase
func (c *Connection) Phase() Phase {
	return c.phase
}

// Closed reports whether the connection has been closed
func (c *Connection) Closed() bool {
	return c.phase == PhaseClosed
}

// Buffered returns the number of received bytes not yet consumed by a phase
func (c *Connection) Buffered() int {
	return len(c.recv)
}

// HandleEvent processes one readiness notification. Reads are handled before
// writes. A returned error is fatal, the owner must close the connection.
func (c *Connection) HandleEvent(readable, writable bool) error {
	if c.Closed() {
		return nil
	}
	if readable {
		if err := c.read(); err != nil {
			return err
		}
	}
	if writable && !c.Closed() {
		if err := c.write(); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the multiplexer registration and closes the socket.
// Buffered data is discarded. Closing twice is a no-op.
func (c *Connection) Close() error {
	if c.Closed() {
		return nil
	}
	Logger.Debugf("closing connection %s to %s in phase %s", c.id, c.addr, c.phase)
	c.phase = PhaseClosed
	c.recv = nil
	c.send = nil
	c.header = nil
	return errors.Join(c.watcher.Release(), c.socket.Close())
}

// --------------------------------------------------------------------------
// Reading
// --------------------------------------------------------------------------

func (c *Connection) read() error {
	n, err := c.socket.Read(c.chunk)
	switch {
	case errors.Is(err, transport.ErrWouldBlock):
		return nil
	case errors.Is(err, io.EOF):
		return transport.ErrPeerClosed
	case err != nil:
		return err
	case n == 0:
		return transport.ErrPeerClosed
	}
	c.recv = append(c.recv, c.chunk[:n]...)
	return c.advance()
}

// advance moves through the receive phases as far as the buffered bytes allow
func (c *Connection) advance() error {
	for {
		switch c.phase {
		case PhaseAwaitingLengthPrefix:
			if len(c.recv) < codec.LengthPrefixSize {
				return nil
			}
			c.headerLen = codec.DecodeLengthPrefix(c.recv)
			c.recv = c.recv[codec.LengthPrefixSize:]
			c.phase = PhaseAwaitingHeader

		case PhaseAwaitingHeader:
			if len(c.recv) < c.headerLen {
				return nil
			}
			header, err := codec.DecodeHeader(c.recv[:c.headerLen])
			if err != nil {
				return err
			}
			c.header = header
			c.recv = c.recv[c.headerLen:]
			c.phase = PhaseAwaitingPayload

		case PhaseAwaitingPayload:
			if len(c.recv) < c.header.ContentLength {
				return nil
			}
			msg, err := codec.DecodeContent(c.header, c.recv[:c.header.ContentLength])
			if err != nil {
				return err
			}
			c.recv = c.recv[c.header.ContentLength:]
			c.phase = PhaseReady
			c.started = true

			out, closeAfter, err := c.role.Next(msg)
			if err != nil {
				return err
			}
			if err := c.queue(out, closeAfter); err != nil {
				return err
			}

		default:
			return nil
		}
	}
}

// --------------------------------------------------------------------------
// Writing
// --------------------------------------------------------------------------

func (c *Connection) write() error {
	// the initiating side produces its first message on the first writable notification
	if !c.started && c.phase == PhaseAwaitingLengthPrefix && len(c.recv) == 0 {
		c.started = true
		out, closeAfter, err := c.role.Next(nil)
		if err != nil {
			return err
		}
		if err := c.queue(out, closeAfter); err != nil {
			return err
		}
	}

	if c.phase != PhaseSending {
		return nil
	}

	n, err := c.socket.Write(c.send)
	if errors.Is(err, transport.ErrWouldBlock) {
		return nil
	}
	if err != nil {
		return err
	}
	c.send = c.send[n:]
	if len(c.send) > 0 {
		return nil
	}

	// send buffer drained
	if c.closeAfterFlush {
		return c.Close()
	}
	c.reset()
	if err := c.watcher.Watch(transport.InterestRead); err != nil {
		return err
	}
	// bytes of the next message may already be buffered
	return c.advance()
}

// queue appends the encoded message to the send buffer and switches to write
// interest, or handles the nil message cases described on Role.
func (c *Connection) queue(out *codec.Message, closeAfter bool) error {
	if out == nil {
		if closeAfter {
			return c.Close()
		}
		c.reset()
		return c.watcher.Watch(transport.InterestRead)
	}

	frame, err := codec.Encode(out)
	if err != nil {
		return err
	}
	c.send = append(c.send, frame...)
	c.closeAfterFlush = closeAfter
	c.phase = PhaseSending
	Logger.Debugf("connection %s: queued %d bytes for %s", c.id, len(frame), c.addr)
	return c.watcher.Watch(transport.InterestWrite)
}

// reset prepares the connection for the next exchange. Unconsumed received
// bytes are kept.
func (c *Connection) reset() {
	c.phase = PhaseAwaitingLengthPrefix
	c.headerLen = 0
	c.header = nil
	c.send = c.send[:0]
	c.closeAfterFlush = false
}
