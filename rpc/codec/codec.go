package codec

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	// LengthPrefixSize is the size of the big endian header length in front of every frame
	LengthPrefixSize = 2
	// MaxHeaderSize is the largest header that fits the length prefix
	MaxHeaderSize = math.MaxUint16

	ContentTypeJSON    = "text/json"
	ContentTypeMsgpack = "application/msgpack"

	EncodingUTF8   = "utf-8"
	EncodingBinary = "binary"
)

// requiredHeaderKeys lists the keys every header must carry
var requiredHeaderKeys = [...]string{"byteorder", "content-type", "content-encoding", "content-length"}

// ErrIncomplete is returned by Decode if the buffer does not hold a whole frame yet
var ErrIncomplete = errors.New("incomplete frame")

// NativeByteOrder is the byte order of the running machine ("little" or "big").
// It is sent in every header for information only.
var NativeByteOrder = func() string {
	var b [2]byte
	binary.NativeEndian.PutUint16(b[:], 1)
	if b[0] == 1 {
		return "little"
	}
	return "big"
}()

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Header is the JSON object that follows the length prefix. The field order is
// the key order on the wire.
type Header struct {
	ByteOrder       string `json:"byteorder"`
	ContentType     string `json:"content-type"`
	ContentEncoding string `json:"content-encoding"`
	ContentLength   int    `json:"content-length"`
}

// Message is a decoded frame. Content holds the payload after transcoding,
// i.e. UTF-8 text for text content types and the raw bytes for binary ones.
type Message struct {
	ContentType     string
	ContentEncoding string
	Content         []byte
}

// ProtocolError reports a malformed frame. It is fatal for the connection.
type ProtocolError struct {
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("protocol error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("protocol error: %s", e.Reason)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

func protocolError(reason string, err error) *ProtocolError {
	return &ProtocolError{Reason: reason, Err: err}
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// Encode builds the wire frame for msg: the 2 byte header length, the UTF-8 JSON
// header and the content encoded with msg.ContentEncoding.
func Encode(msg *Message) ([]byte, error) {
	payload, err := transcode(msg.ContentEncoding, msg.Content, true)
	if err != nil {
		return nil, err
	}

	header, err := json.Marshal(Header{
		ByteOrder:       NativeByteOrder,
		ContentType:     msg.ContentType,
		ContentEncoding: msg.ContentEncoding,
		ContentLength:   len(payload),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(header) > MaxHeaderSize {
		return nil, fmt.Errorf("header too large: %d bytes", len(header))
	}

	frame := make([]byte, LengthPrefixSize, LengthPrefixSize+len(header)+len(payload))
	binary.BigEndian.PutUint16(frame, uint16(len(header)))
	frame = append(frame, header...)
	frame = append(frame, payload...)
	return frame, nil
}

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// DecodeLengthPrefix returns the header length stored in the first two bytes of b.
// The caller must provide at least LengthPrefixSize bytes.
func DecodeLengthPrefix(b []byte) int {
	return int(binary.BigEndian.Uint16(b[:LengthPrefixSize]))
}

// DecodeHeader parses and validates a JSON header.
func DecodeHeader(b []byte) (*Header, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, protocolError("invalid header", err)
	}
	for _, key := range requiredHeaderKeys {
		if _, ok := raw[key]; !ok {
			return nil, protocolError(fmt.Sprintf("missing required header %q", key), nil)
		}
	}

	var h Header
	if err := json.Unmarshal(b, &h); err != nil {
		return nil, protocolError("invalid header value", err)
	}
	if h.ContentLength < 0 {
		return nil, protocolError(fmt.Sprintf("negative content-length %d", h.ContentLength), nil)
	}
	return &h, nil
}

// DecodeContent turns the payload described by h into a Message.
// len(payload) must equal h.ContentLength.
func DecodeContent(h *Header, payload []byte) (*Message, error) {
	if len(payload) != h.ContentLength {
		return nil, protocolError(fmt.Sprintf("payload has %d bytes, header announced %d", len(payload), h.ContentLength), nil)
	}
	content, err := transcode(h.ContentEncoding, payload, false)
	if err != nil {
		return nil, err
	}
	return &Message{
		ContentType:     h.ContentType,
		ContentEncoding: h.ContentEncoding,
		Content:         content,
	}, nil
}

// Decode decodes the first frame in buf. It returns the message and the number
// of bytes consumed, or ErrIncomplete if buf does not hold a whole frame yet.
func Decode(buf []byte) (*Message, int, error) {
	if len(buf) < LengthPrefixSize {
		return nil, 0, ErrIncomplete
	}
	headerEnd := LengthPrefixSize + DecodeLengthPrefix(buf)
	if len(buf) < headerEnd {
		return nil, 0, ErrIncomplete
	}
	h, err := DecodeHeader(buf[LengthPrefixSize:headerEnd])
	if err != nil {
		return nil, 0, err
	}
	end := headerEnd + h.ContentLength
	if len(buf) < end {
		return nil, 0, ErrIncomplete
	}
	msg, err := DecodeContent(h, buf[headerEnd:end])
	if err != nil {
		return nil, 0, err
	}
	return msg, end, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// lookupEncoding resolves a content-encoding name. A nil encoding means the
// payload is passed through unchanged.
func lookupEncoding(name string) (encoding.Encoding, error) {
	if strings.EqualFold(name, EncodingBinary) {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, protocolError(fmt.Sprintf("unsupported content-encoding %q", name), err)
	}
	return enc, nil
}

// transcode converts between UTF-8 and the named encoding. toWire selects the
// direction (UTF-8 to wire when true).
func transcode(name string, b []byte, toWire bool) ([]byte, error) {
	enc, err := lookupEncoding(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return b, nil
	}
	var out []byte
	if toWire {
		out, err = enc.NewEncoder().Bytes(b)
	} else {
		out, err = enc.NewDecoder().Bytes(b)
	}
	if err != nil {
		return nil, protocolError(fmt.Sprintf("failed to transcode %s content", name), err)
	}
	if !toWire && !validDecoding(enc, b, out) {
		return nil, protocolError(fmt.Sprintf("content is not valid %s", name), nil)
	}
	return out, nil
}

// validDecoding reports whether decoded is a faithful decoding of raw. The
// x/text decoders substitute U+FFFD for invalid input, so a replacement
// character is only accepted if it encodes back to the original bytes.
func validDecoding(enc encoding.Encoding, raw, decoded []byte) bool {
	if !bytes.ContainsRune(decoded, utf8.RuneError) {
		return true
	}
	back, err := enc.NewEncoder().Bytes(decoded)
	return err == nil && bytes.Equal(back, raw)
}
