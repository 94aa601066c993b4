// Package netpoll provides the readiness multiplexer used by the phonebook
// client and server, together with socket types that plug into it.
//
// Poller wraps poll(2): file descriptors are registered with an Interest and
// Wait reports which of them are readable or writable. Error and hang up
// conditions are reported as readiness in every watched direction, so the next
// socket call surfaces the actual error.
//
// Socket implements transport.Socket for any net.Conn with a file descriptor.
// Reads and writes are issued directly on the descriptor (which the Go runtime
// already keeps in non-blocking mode), and errno values are mapped to
// transport.ErrWouldBlock and transport.ErrConnectionReset.
//
// The package is only built on unix systems.
package netpoll
