// Package codec implements the wire format shared by the phonebook client and server.
//
// Every message on the wire is a frame of three consecutive parts:
//
//	[2 bytes, big endian: H][H bytes: UTF-8 JSON header][content-length bytes: payload]
//
// The header carries four keys, all of them required:
//
//   - byteorder: byte order of the sender ("little" or "big"), informational only
//   - content-type: how the payload is serialized ("text/json" or "application/msgpack")
//   - content-encoding: text encoding of the payload (any WHATWG label such as
//     "utf-8", "utf-16le" or "windows-1251"), or "binary" for no transcoding
//   - content-length: number of payload bytes after encoding
//
// The package does no I/O. The connection state machine feeds it with buffered
// bytes piece by piece (DecodeLengthPrefix, DecodeHeader, DecodeContent), while
// Decode handles a whole frame at once. Malformed frames are reported as
// *ProtocolError, which is fatal for the connection that produced them.
package codec
