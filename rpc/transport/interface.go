package transport

import (
	"errors"
	"strings"
)

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrWouldBlock is returned by a Socket if the operation cannot make progress
	// without blocking. It is not a failure, the caller retries on the next
	// readiness notification.
	ErrWouldBlock = errors.New("operation would block")
	// ErrPeerClosed reports an orderly shutdown by the remote side (a zero byte read)
	ErrPeerClosed = errors.New("peer closed")
	// ErrConnectionReset reports an abortive close by the remote side
	// (ECONNRESET or EPIPE). Clients reconnect and resend on this error.
	ErrConnectionReset = errors.New("connection reset by peer")
)

// --------------------------------------------------------------------------
// Readiness Interest
// --------------------------------------------------------------------------

// Interest is a set of readiness conditions a socket is watched for
type Interest uint8

const (
	InterestRead Interest = 1 << iota
	InterestWrite

	InterestNone      Interest = 0
	InterestReadWrite          = InterestRead | InterestWrite
)

func (i Interest) String() string {
	if i == InterestNone {
		return "none"
	}
	var parts []string
	if i&InterestRead != 0 {
		parts = append(parts, "read")
	}
	if i&InterestWrite != 0 {
		parts = append(parts, "write")
	}
	return strings.Join(parts, "|")
}

// --------------------------------------------------------------------------
// Socket and Watcher
// --------------------------------------------------------------------------

// Socket is a non-blocking byte stream
type Socket interface {
	// Read reads up to len(p) bytes. It returns ErrWouldBlock if no data is
	// available and (0, nil) once the peer has closed its side.
	Read(p []byte) (n int, err error)
	// Write writes as much of p as the socket accepts without blocking.
	// It returns ErrWouldBlock if nothing could be written.
	Write(p []byte) (n int, err error)
	// Close closes the socket
	Close() error
}

// Watcher controls the registration of one socket with a readiness multiplexer
type Watcher interface {
	// Watch replaces the set of conditions the socket is watched for
	Watch(interest Interest) error
	// Release removes the socket from the multiplexer
	Release() error
}
