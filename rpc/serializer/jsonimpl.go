package serializer

import (
	"bytes"
	"encoding/json"

	"github.com/3esharf1k/phone-book/rpc/codec"
)

// NewJSONSerializer creates a new serializer using json encoding
func NewJSONSerializer() IRPCSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IRPCSerializer interface using json encoding
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) ContentType() string {
	return codec.ContentTypeJSON
}

func (j jsonSerializerImpl) Binary() bool {
	return false
}

func (j jsonSerializerImpl) Serialize(v any) ([]byte, error) {
	// non ASCII text is kept as is, the codec transcodes it
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (j jsonSerializerImpl) Deserialize(b []byte, v any) error {
	return json.Unmarshal(b, v)
}
