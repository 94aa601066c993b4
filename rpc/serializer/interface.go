package serializer

import (
	"fmt"

	"github.com/3esharf1k/phone-book/rpc/codec"
)

// IRPCSerializer is the interface for all payload serializers
type IRPCSerializer interface {
	// ContentType returns the content-type header value that selects this serializer
	ContentType() string
	// Binary reports whether the payload is raw bytes (content-encoding "binary")
	// rather than text that can be transcoded
	Binary() bool
	// Serialize serializes a payload value (common.Message or common.Response) into a byte array
	// It returns the serialized byte array and an error if any
	Serialize(v any) ([]byte, error)
	// Deserialize deserializes a byte array into the value pointed to by v
	// It returns an error if any
	Deserialize(b []byte, v any) error
}

// ForContentType returns the serializer registered for a content-type header value
func ForContentType(contentType string) (IRPCSerializer, error) {
	switch contentType {
	case codec.ContentTypeJSON:
		return NewJSONSerializer(), nil
	case codec.ContentTypeMsgpack:
		return NewMsgpackSerializer(), nil
	default:
		return nil, fmt.Errorf("unsupported content-type %q", contentType)
	}
}

// ContentEncoding returns the content-encoding to use with s. Text formats use
// the preferred encoding (utf-8 if empty), binary formats always use "binary".
func ContentEncoding(s IRPCSerializer, preferred string) string {
	if s.Binary() {
		return codec.EncodingBinary
	}
	if preferred == "" {
		return codec.EncodingUTF8
	}
	return preferred
}
