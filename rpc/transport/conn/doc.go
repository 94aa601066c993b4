// Package conn implements the per connection state machine of the phonebook
// protocol. The same Connection type runs on the server, where it answers
// requests, and in the client, where it sends them. The side specific behavior
// is supplied by a Role.
//
// A connection moves through these phases:
//
//	AwaitingLengthPrefix -> AwaitingHeader -> AwaitingPayload -> Ready -> Sending
//	        ^                                                               |
//	        +---------------------------------------------------------------+
//
// and ends in Closed. Each readable notification reads at most ReadChunkSize
// bytes and advances the phases as far as the buffered bytes allow. When a
// message is complete the Role produces the reply, which is buffered and
// written on writable notifications. Once the send buffer is drained the
// connection starts over, processing any bytes that already arrived, or
// closes if the Role asked for it.
//
// Errors returned from HandleEvent are fatal for the connection. The owner
// closes it and moves on; a zero byte read is reported as
// transport.ErrPeerClosed, which is an ordinary end of the conversation.
package conn
