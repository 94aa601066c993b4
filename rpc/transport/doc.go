// Package transport defines the socket level abstractions of the phonebook
// protocol. The connection state machine only talks to these interfaces, which
// keeps it independent of the readiness mechanism of the operating system.
//
// Key Components:
//
//   - Socket: A non-blocking byte stream. Reads and writes never block, they
//     return ErrWouldBlock instead.
//
//   - Watcher: The handle a connection uses to change which readiness conditions
//     (Interest) its socket is watched for, and to leave the multiplexer on close.
//
//   - Errors: ErrWouldBlock, ErrPeerClosed and ErrConnectionReset classify the
//     outcomes of socket operations. Only ErrConnectionReset triggers a reconnect.
//
//   - UpgradeConnection: Applies the configured TCP options to a connection.
//
// Subpackages:
//
//   - netpoll: A poll(2) based readiness multiplexer and a Socket implementation
//     on top of net.TCPConn.
//   - conn: The per connection protocol state machine.
package transport
