// Package rpc provides the communication layer between phonebook clients and
// the server.
//
// The package is organized into several subpackages:
//
//   - codec: The frame format. Every frame is a two byte length prefix, a JSON
//     header and a payload whose size, type and text encoding the header names.
//
//   - serializer: Payload serialization (JSON, msgpack) selected by content-type.
//
//   - common: Request and response payloads, configuration structures and logging.
//
//   - transport: Non-blocking sockets and readiness interest, the poll(2) based
//     multiplexer (netpoll) and the per connection state machine (conn).
//
//   - server: The server loop, accepting connections and answering requests
//     against a record store.
//
//   - client: The client session, sending requests and reconnecting after a
//     connection reset.
package rpc
