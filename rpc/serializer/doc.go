// Package serializer converts request and response payloads to and from bytes.
// The serializer of a frame is selected by its content-type header.
//
// Key Components:
//
//   - IRPCSerializer: Core interface that all serializer implementations must satisfy.
//
//   - jsonSerializerImpl ("text/json"): The default format. Output is compact JSON
//     with non ASCII characters left unescaped, so the codec can transcode the text
//     to the content-encoding of the frame.
//
//   - msgpackSerializerImpl ("application/msgpack"): Binary format based on
//     vmihailenco/msgpack. It reuses the json struct tags, so both formats share
//     the same field names. Frames carrying msgpack use the "binary" content-encoding.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
//
// Usage:
//
//	s, err := serializer.ForContentType(msg.ContentType)
//	var req common.Message
//	err = s.Deserialize(msg.Content, &req)
package serializer
